package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanun0323/pkg/sys"

	"bondtrading/internal/bus"
	"bondtrading/internal/ops"
	"bondtrading/internal/schema"
	"bondtrading/internal/state"
	"bondtrading/pkg/exception"
	"bondtrading/pkg/fraction"
)

type recorder[V any] struct {
	got []V
}

func (r *recorder[V]) Publish(v V) error {
	r.got = append(r.got, v)
	return nil
}

type memorySinks struct {
	executions recorder[schema.ExecutionOrder]
	positions  recorder[schema.Position]
	risk       recorder[schema.PV01]
	streaming  recorder[schema.PriceStream]
	inquiries  recorder[schema.Inquiry]
	gui        recorder[schema.Price]
}

func (m *memorySinks) sinks() *Sinks {
	return &Sinks{
		Executions: &m.executions,
		Positions:  &m.positions,
		Risk:       &m.risk,
		Streaming:  &m.streaming,
		Inquiries:  &m.inquiries,
		GUI:        &m.gui,
	}
}

func bookLine(id string, midTicks, spreadTicks int64) string {
	var sb strings.Builder
	sb.WriteString(id)
	for k := int64(0); k < schema.BookDepth; k++ {
		fmt.Fprintf(&sb, ",%s,%d", fraction.Format(fraction.FromTicks(midTicks-spreadTicks/2-k)), 10_000_000)
	}
	for k := int64(0); k < schema.BookDepth; k++ {
		fmt.Fprintf(&sb, ",%s,%d", fraction.Format(fraction.FromTicks(midTicks+spreadTicks/2+k)), 20_000_000)
	}
	return sb.String()
}

func writeInputs(t *testing.T, files map[string][]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, lines := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	}
	return dir
}

func loadConfig(t *testing.T, inputDir string) ops.Loaded {
	t.Helper()
	loaded, err := ops.Resolve(ops.FileConfig{IO: ops.IOConfig{InputDir: inputDir}})
	require.NoError(t, err)
	return loaded
}

func TestRunEndToEnd(t *testing.T) {
	dir := writeInputs(t, map[string][]string{
		"inquiries.txt": {
			"91282CME8,I1,0,1000000",
			"91282CME8,I1,0,1000000",
		},
		"prices.txt": {
			"91282CME8,99-160,0-002",
			"91282CME8,99-16+,0-004",
			"91282CME8,99-170,0-002",
		},
		"trades.txt": {
			"91282CME8,T1,99.0,TRSY1,1000000,0",
			"91282CME8,T2,99.0,TRSY2,400000,1",
			"91282CME8,T1,99.0,TRSY3,1000000,0",
			"XXXXXXXXX,T9,99.0,TRSY1,1000000,0",
		},
		"marketdata.txt": {
			bookLine("91282CME8", 100*256, 2),
			bookLine("91282CME8", 100*256, 8),
		},
	})

	var mem memorySinks
	fixed := time.Date(2024, 12, 20, 9, 30, 0, 0, time.UTC)
	ids := 0
	p, err := New(loadConfig(t, dir), mem.sinks(),
		WithClock(func() time.Time { return fixed }),
		WithTradeID(func() string { ids++; return fmt.Sprintf("EXEC%d", ids) }),
	)
	require.NoError(t, err)

	var report Report
	alloc, bytes := sys.MeasureMem(func() {
		report, err = p.Run(context.Background())
	})
	t.Logf("a: %d, b: %d", alloc, bytes)
	require.NoError(t, err)

	require.Len(t, report.Inputs, 4)
	assert.Equal(t, []string{"inquiries", "prices", "trades", "marketdata"}, []string{
		report.Inputs[0].Name, report.Inputs[1].Name, report.Inputs[2].Name, report.Inputs[3].Name,
	})
	assert.Equal(t, 11, report.Records())
	assert.Equal(t, 3, report.Failures())
	assert.Equal(t, 1, report.Inputs[0].Failures)
	assert.Equal(t, 2, report.Inputs[2].Failures)

	require.Len(t, mem.inquiries.got, 1)
	assert.Equal(t, schema.InquiryStateDone, mem.inquiries.got[0].State)
	assert.True(t, mem.inquiries.got[0].Price.Equal(decimal.NewFromInt(100)))

	assert.Len(t, mem.streaming.got, 3)
	assert.Len(t, mem.gui.got, 1)

	require.Len(t, mem.executions.got, 1)
	exec := mem.executions.got[0]
	assert.Equal(t, "Order_1", exec.OrderID)
	assert.Equal(t, schema.PricingSideBid, exec.Side)
	assert.Equal(t, schema.MarketCME, exec.Market)

	booked, err := p.Trades.GetData("EXEC1")
	require.NoError(t, err)
	assert.Equal(t, schema.SideSell, booked.Side)
	assert.Equal(t, "TRSY1", booked.Book)
	assert.Equal(t, int64(10_000_000), booked.Quantity)

	pos, err := p.Positions.GetData("91282CME8")
	require.NoError(t, err)
	assert.Equal(t, int64(-9_000_000), pos.Book("TRSY1"))
	assert.Equal(t, int64(-400_000), pos.Book("TRSY2"))
	assert.Equal(t, int64(-9_400_000), pos.Aggregate())
	assert.Len(t, mem.positions.got, 3)
	assert.Len(t, mem.risk.got, 3)

	r, err := p.Risk.GetData("91282CME8")
	require.NoError(t, err)
	assert.True(t, r.PV01.Equal(decimal.RequireFromString("-179192.2")), r.PV01.String())

	buckets := p.BucketedRisk()
	require.Len(t, buckets, 3)
	assert.Equal(t, "FrontEnd", buckets[0].Sector.Name)
	assert.True(t, buckets[0].PV01.Equal(r.PV01))
	assert.True(t, buckets[1].PV01.IsZero())

	snap := p.Metrics().Snapshot()
	assert.Equal(t, uint64(3), snap.RecordFailures)
	assert.Equal(t, uint64(2), snap.ThrottleDrops)
	assert.Equal(t, uint64(1), snap.Published[schema.EventExecution])
	assert.Equal(t, uint64(2), snap.Events[schema.EventOrderBook].Adds+snap.Events[schema.EventOrderBook].Updates)
}

func TestRunAbortsOnMissingInput(t *testing.T) {
	dir := writeInputs(t, map[string][]string{
		"inquiries.txt": {"91282CME8,I1,0,1000000"},
	})
	var mem memorySinks
	p, err := New(loadConfig(t, dir), mem.sinks())
	require.NoError(t, err)

	report, err := p.Run(context.Background())
	assert.ErrorIs(t, err, exception.ErrIOFailure)
	require.Len(t, report.Inputs, 2)
	assert.Equal(t, 1, report.Inputs[0].Records)
}

func TestRunStopsOnCancel(t *testing.T) {
	dir := writeInputs(t, map[string][]string{
		"inquiries.txt": {"91282CME8,I1,0,1000000"},
	})
	var mem memorySinks
	p, err := New(loadConfig(t, dir), mem.sinks())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, mem.inquiries.got)
}

func TestNewRequiresSinks(t *testing.T) {
	_, err := New(loadConfig(t, t.TempDir()), &Sinks{})
	assert.ErrorIs(t, err, exception.ErrNilInstance)
}

func TestGraph(t *testing.T) {
	var mem memorySinks
	p, err := New(loadConfig(t, t.TempDir()), mem.sinks())
	require.NoError(t, err)
	g := p.Graph()

	assert.Equal(t, []string{NodeExecution, NodeTradeBooking, NodePosition, NodeRisk},
		g.Path(NodeExecution, NodeRisk))
	assert.Equal(t, []string{NodeMarketData, NodeAlgoExecution, NodeExecution, NodeHistoryExecutions},
		g.Path(NodeMarketData, NodeHistoryExecutions))
	assert.Nil(t, g.Path(NodePricing, NodeTradeBooking))
	assert.Equal(t, []string{NodeGUI, NodeAlgoStreaming}, g.Downstream(NodePricing))
	require.NoError(t, g.Validate())

	g.Connect(NodeRisk, NodeRisk, false)
	assert.ErrorIs(t, g.Validate(), exception.ErrInvalidState)
}

func TestQueueDrainsBetweenRecords(t *testing.T) {
	var mem memorySinks
	p, err := New(loadConfig(t, t.TempDir()), mem.sinks())
	require.NoError(t, err)

	seen := 0
	p.Inquiries.AddListener(bus.ListenerFuncs[schema.Inquiry]{OnUpdate: func(inq schema.Inquiry) error {
		seen++
		assert.Equal(t, schema.InquiryStateDone, inq.State)
		return nil
	}})

	require.NoError(t, p.Inquiries.OnMessage(schema.Inquiry{
		InquiryID: "I7",
		Product:   schema.Product{ProductID: "91282CME8"},
		State:     schema.InquiryStateReceived,
	}))
	assert.Equal(t, 0, seen)
	assert.Equal(t, 1, p.queue.Len())
	require.NoError(t, p.queue.Drain(context.Background()))
	assert.Equal(t, 1, seen)
}

func TestFailedRecordDropsDeferredTasks(t *testing.T) {
	dir := writeInputs(t, map[string][]string{
		"inquiries.txt":  {"91282CME8,I1,0,1000000", "91282CME8,I2,1,2000000"},
		"prices.txt":     {},
		"trades.txt":     {},
		"marketdata.txt": {},
	})
	var mem memorySinks
	p, err := New(loadConfig(t, dir), mem.sinks())
	require.NoError(t, err)

	p.Inquiries.AddListener(bus.ForwardAdds(func(inq schema.Inquiry) error {
		if inq.InquiryID == "I1" {
			return fmt.Errorf("%w: reject %s", exception.ErrInvalidState, inq.InquiryID)
		}
		return nil
	}))

	report, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Inputs[0].Failures)
	require.Len(t, mem.inquiries.got, 1)
	assert.Equal(t, "I2", mem.inquiries.got[0].InquiryID)

	inq, err := p.Inquiries.GetData("I1")
	require.NoError(t, err)
	assert.Equal(t, schema.InquiryStateQuoted, inq.State)
}

func TestRestorePositionsFeedsRisk(t *testing.T) {
	dir := writeInputs(t, map[string][]string{
		"inquiries.txt":  {},
		"prices.txt":     {},
		"trades.txt":     {},
		"marketdata.txt": {},
	})
	var mem memorySinks
	loaded := loadConfig(t, dir)
	p, err := New(loaded, mem.sinks())
	require.NoError(t, err)

	n, err := p.RestorePositions(state.Snapshot{Positions: []state.PositionEntry{
		{ProductID: "91282CME8", Book: "TRSY1", Qty: 1_000_000},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = p.Run(context.Background())
	require.NoError(t, err)

	product, err := loaded.Registry.GetData("91282CME8")
	require.NoError(t, err)
	want := product.PV01.Mul(decimal.NewFromInt(1_000_000))

	r, err := p.Risk.GetData("91282CME8")
	require.NoError(t, err)
	assert.True(t, r.PV01.Equal(want), r.PV01.String())
	require.Len(t, mem.risk.got, 1)

	buckets := p.BucketedRisk()
	assert.Equal(t, "FrontEnd", buckets[0].Sector.Name)
	assert.True(t, buckets[0].PV01.Equal(want), buckets[0].PV01.String())

	_, err = p.RestorePositions(state.Snapshot{Positions: []state.PositionEntry{{ProductID: "NOPE", Book: "TRSY1", Qty: 1}}})
	assert.ErrorIs(t, err, exception.ErrNotFound)
}
