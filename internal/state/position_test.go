package state

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bondtrading/internal/bus"
	"bondtrading/internal/schema"
	"bondtrading/pkg/exception"
)

var (
	productA = schema.Product{ProductID: "91282CME8"}
	productB = schema.Product{ProductID: "912810UF3"}
)

func trade(p schema.Product, id, book string, qty int64, side schema.Side) schema.Trade {
	return schema.Trade{Product: p, TradeID: id, Book: book, Quantity: qty, Side: side}
}

func TestAddTradeIsCumulative(t *testing.T) {
	svc := NewPositionService()
	require.NoError(t, svc.AddTrade(trade(productA, "1", "TRSY1", 100, schema.SideBuy)))
	require.NoError(t, svc.AddTrade(trade(productA, "2", "TRSY1", 30, schema.SideSell)))

	pos, err := svc.GetData(productA.ProductID)
	require.NoError(t, err)
	assert.Equal(t, int64(70), pos.Aggregate())
	assert.Equal(t, int64(70), pos.Book("TRSY1"))

	require.NoError(t, svc.AddTrade(trade(productA, "3", "TRSY2", 50, schema.SideSell)))
	pos, err = svc.GetData(productA.ProductID)
	require.NoError(t, err)
	assert.Equal(t, int64(70), pos.Book("TRSY1"))
	assert.Equal(t, int64(-50), pos.Book("TRSY2"))
	assert.Equal(t, int64(20), pos.Aggregate())
}

func TestAddTradeNotifiesAddThenUpdate(t *testing.T) {
	svc := NewPositionService()
	var kinds []string
	var seen []schema.Position
	svc.AddListener(bus.ListenerFuncs[schema.Position]{
		OnAdd: func(p schema.Position) error {
			kinds = append(kinds, "add")
			seen = append(seen, p)
			return nil
		},
		OnUpdate: func(p schema.Position) error {
			kinds = append(kinds, "update")
			seen = append(seen, p)
			return nil
		},
	})

	l := svc.TradeListener()
	require.NoError(t, l.ProcessAdd(trade(productA, "1", "TRSY1", 100, schema.SideBuy)))
	require.NoError(t, l.ProcessAdd(trade(productA, "2", "TRSY1", 100, schema.SideBuy)))
	require.NoError(t, l.ProcessAdd(trade(productB, "3", "TRSY1", 100, schema.SideBuy)))

	assert.Equal(t, []string{"add", "update", "add"}, kinds)
	// listeners receive copies
	assert.Equal(t, int64(100), seen[0].Aggregate())
	assert.Equal(t, int64(200), seen[1].Aggregate())
}

func TestGetDataUnknownProduct(t *testing.T) {
	svc := NewPositionService()
	_, err := svc.GetData("missing")
	assert.ErrorIs(t, err, exception.ErrNotFound)
}

func TestSnapshotRoundTrip(t *testing.T) {
	reg := schema.NewRegistry()
	require.NoError(t, reg.Add(productA))
	require.NoError(t, reg.Add(productB))

	svc := NewPositionService()
	require.NoError(t, svc.AddTrade(trade(productA, "1", "TRSY1", 100, schema.SideBuy)))
	require.NoError(t, svc.AddTrade(trade(productA, "2", "TRSY2", 40, schema.SideSell)))
	require.NoError(t, svc.AddTrade(trade(productB, "3", "TRSY3", 7, schema.SideBuy)))

	path := filepath.Join(t.TempDir(), "out", "positions.json")
	snap := svc.SnapshotWithMeta(42)
	require.Len(t, snap.Positions, 3)
	require.NoError(t, WriteSnapshot(path, snap))

	loaded, err := ReadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), loaded.LastSeq)
	require.NoError(t, CompareSnapshots(snap, loaded))

	restored := NewPositionService()
	positions, err := restored.ApplySnapshot(loaded, reg)
	require.NoError(t, err)
	require.Len(t, positions, 2)
	pos, err := restored.GetData(productA.ProductID)
	require.NoError(t, err)
	assert.Equal(t, int64(60), pos.Aggregate())
	require.NoError(t, CompareSnapshots(snap, restored.Snapshot()))
}

func TestCompareSnapshotsMismatch(t *testing.T) {
	a := Snapshot{Positions: []PositionEntry{{ProductID: "A", Book: "TRSY1", Qty: 1}}}
	b := Snapshot{Positions: []PositionEntry{{ProductID: "A", Book: "TRSY1", Qty: 2}}}
	c := Snapshot{Positions: []PositionEntry{{ProductID: "A", Book: "TRSY2", Qty: 1}}}
	require.Error(t, CompareSnapshots(a, b))
	require.Error(t, CompareSnapshots(a, c))
	require.Error(t, CompareSnapshots(a, Snapshot{}))
}

func TestReadSnapshotMissingFile(t *testing.T) {
	_, err := ReadSnapshot(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, exception.ErrIOFailure)
}
