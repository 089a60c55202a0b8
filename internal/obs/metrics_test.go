package obs

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bondtrading/internal/bus"
	"bondtrading/internal/schema"
)

func TestListenerCountsNotifications(t *testing.T) {
	m := NewMetrics()
	store := bus.NewStore[string, int]("numbers")
	store.AddListener(Listener[int](m, schema.EventTrade))

	_, err := store.Upsert("a", 1)
	require.NoError(t, err)
	_, err = store.Upsert("a", 2)
	require.NoError(t, err)
	_, err = store.Upsert("b", 1)
	require.NoError(t, err)

	snap := m.Snapshot()
	assert.Equal(t, EventCount{Adds: 2, Updates: 1}, snap.Events[schema.EventTrade])
}

func TestConnectorCountsOnlySuccess(t *testing.T) {
	m := NewMetrics()
	fail := true
	c := Connector[int](m, schema.EventRisk, bus.ConnectorFunc[int](func(int) error {
		if fail {
			return errors.New("disk full")
		}
		return nil
	}))
	require.Error(t, c.Publish(1))
	fail = false
	require.NoError(t, c.Publish(1))
	assert.Equal(t, uint64(1), m.Snapshot().Published[schema.EventRisk])
}

func TestLatencyStats(t *testing.T) {
	var l LatencyStats
	l.Observe(10 * time.Millisecond)
	l.Observe(30 * time.Millisecond)
	l.Observe(-time.Millisecond)
	snap := l.Snapshot()
	assert.Equal(t, uint64(2), snap.Count)
	assert.Equal(t, 10*time.Millisecond, snap.Min)
	assert.Equal(t, 30*time.Millisecond, snap.Max)
	assert.Equal(t, 20*time.Millisecond, snap.Avg)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveEvent(schema.EventGUI, schema.EventKindAdd)
	m.IncThrottleDrop()
	m.ObserveRecord(time.Second)
	assert.Equal(t, Snapshot{}, m.Snapshot())
}

func TestSequence(t *testing.T) {
	s := NewSequence(0)
	assert.Equal(t, uint64(1), s.Next())
	assert.Equal(t, uint64(2), s.Next())
	assert.Equal(t, uint64(2), s.Last())
}
