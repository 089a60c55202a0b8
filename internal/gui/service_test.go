package gui

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bondtrading/internal/bus"
	"bondtrading/internal/obs"
	"bondtrading/internal/schema"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Set(d time.Duration) { c.t = time.Unix(1_700_000_000, 0).Add(d) }

func TestThrottleDropsFastUpdates(t *testing.T) {
	clock := &fakeClock{}
	metrics := obs.NewMetrics()
	var published []decimal.Decimal
	svc := NewService(300*time.Millisecond, bus.ConnectorFunc[schema.Price](func(p schema.Price) error {
		published = append(published, p.Mid)
		return nil
	}), WithClock(clock.Now), WithMetrics(metrics))

	product := schema.Product{ProductID: "A"}
	for _, ms := range []int64{0, 100, 350} {
		clock.Set(time.Duration(ms) * time.Millisecond)
		require.NoError(t, svc.OnMessage(schema.Price{Product: product, Mid: decimal.NewFromInt(ms)}))
	}

	require.Len(t, published, 2)
	assert.True(t, published[0].Equal(decimal.NewFromInt(0)))
	assert.True(t, published[1].Equal(decimal.NewFromInt(350)))
	assert.Equal(t, uint64(1), metrics.Snapshot().ThrottleDrops)
}

func TestThrottleBoundaryIsExclusive(t *testing.T) {
	clock := &fakeClock{}
	count := 0
	svc := NewService(0, bus.ConnectorFunc[schema.Price](func(schema.Price) error {
		count++
		return nil
	}), WithClock(clock.Now))

	l := svc.PricingListener()
	clock.Set(0)
	require.NoError(t, l.ProcessAdd(schema.Price{}))
	clock.Set(DefaultThrottle)
	require.NoError(t, l.ProcessUpdate(schema.Price{}))
	clock.Set(DefaultThrottle + time.Millisecond)
	require.NoError(t, l.ProcessUpdate(schema.Price{}))
	assert.Equal(t, 2, count)
}
