package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yanun0323/logs"

	"bondtrading/internal/algo"
	"bondtrading/internal/bus"
	"bondtrading/internal/connector"
	"bondtrading/internal/execution"
	"bondtrading/internal/gui"
	"bondtrading/internal/historical"
	"bondtrading/internal/inquiry"
	"bondtrading/internal/marketdata"
	"bondtrading/internal/obs"
	"bondtrading/internal/ops"
	"bondtrading/internal/pricing"
	"bondtrading/internal/risk"
	"bondtrading/internal/schema"
	"bondtrading/internal/state"
	"bondtrading/internal/streaming"
	"bondtrading/internal/trade"
	"bondtrading/pkg/exception"
)

// Option configures a Pipeline.
type Option func(*options)

type options struct {
	now     func() time.Time
	metrics *obs.Metrics
	tradeID func() string
}

// WithClock replaces the wall clock used by the display throttle.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithMetrics(m *obs.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTradeID replaces the generator of ids for trades booked from
// executions.
func WithTradeID(fn func() string) Option {
	return func(o *options) { o.tradeID = fn }
}

// Pipeline owns every service of one run.
type Pipeline struct {
	cfg     ops.Loaded
	metrics *obs.Metrics
	queue   *bus.Queue
	graph   *Graph

	MarketData    *marketdata.Service
	Pricing       *pricing.Service
	AlgoExecution *algo.ExecutionService
	Execution     *execution.Service
	AlgoStreaming *algo.StreamingService
	Streaming     *streaming.Service
	Trades        *trade.Service
	Positions     *state.PositionService
	Risk          *risk.Service
	Inquiries     *inquiry.Service
	GUI           *gui.Service

	historyExecutions *historical.Service[schema.ExecutionOrder]
	historyPositions  *historical.Service[schema.Position]
	historyRisk       *historical.Service[schema.PV01]
	historyStreaming  *historical.Service[schema.PriceStream]
	historyInquiries  *historical.Service[schema.Inquiry]
	historyGUI        *historical.Service[schema.Price]
}

// New builds the services and registers every listener.
func New(cfg ops.Loaded, sinks *Sinks, opts ...Option) (*Pipeline, error) {
	o := options{now: time.Now, tradeID: uuid.NewString}
	for _, opt := range opts {
		opt(&o)
	}
	if o.metrics == nil {
		o.metrics = obs.NewMetrics()
	}
	if cfg.Registry == nil {
		return nil, exception.ErrNilInstance
	}
	if sinks == nil {
		return nil, exception.ErrNilInstance
	}
	if err := sinks.validate(); err != nil {
		return nil, err
	}

	m := o.metrics
	p := &Pipeline{
		cfg:     cfg,
		metrics: m,
		queue:   bus.NewQueue(cfg.IO.QueueSize),
		graph:   NewGraph(),

		historyExecutions: historical.NewService("executions", schema.ExecutionOrder.Key, obs.Connector(m, schema.EventExecution, sinks.Executions)),
		historyPositions:  historical.NewService("positions", schema.Position.Key, obs.Connector(m, schema.EventPosition, sinks.Positions)),
		historyRisk:       historical.NewService("risk", schema.PV01.Key, obs.Connector(m, schema.EventRisk, sinks.Risk)),
		historyStreaming:  historical.NewService("streaming", schema.PriceStream.Key, obs.Connector(m, schema.EventPriceStream, sinks.Streaming)),
		historyInquiries:  historical.NewService("allinquiries", schema.Inquiry.Key, obs.Connector(m, schema.EventInquiry, sinks.Inquiries)),
		historyGUI:        historical.NewService("gui", schema.Price.Key, obs.Connector(m, schema.EventGUI, sinks.GUI)),
	}

	var err error
	if p.AlgoExecution, err = algo.NewExecutionService(cfg.Execution); err != nil {
		return nil, err
	}
	if p.AlgoStreaming, err = algo.NewStreamingService(cfg.Streaming); err != nil {
		return nil, err
	}
	p.MarketData = marketdata.NewService()
	p.Pricing = pricing.NewService()
	p.Execution = execution.NewService(cfg.Market)
	p.Streaming = streaming.NewService()
	p.Trades = trade.NewService()
	p.Positions = state.NewPositionService()
	p.Risk = risk.NewService(cfg.Risk, m)
	p.Inquiries = inquiry.NewService(cfg.QuotePrice, bus.ConnectorFunc[schema.Inquiry](p.historyInquiries.OnMessage))
	p.GUI = gui.NewService(cfg.Throttle, bus.ConnectorFunc[schema.Price](p.historyGUI.OnMessage), gui.WithClock(o.now), gui.WithMetrics(m))

	p.wire(o)
	if err := p.graph.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Pipeline) wire(o options) {
	m, g := p.metrics, p.graph

	p.Inquiries.AddListener(p.Inquiries.ConfirmListener(p.queue))
	g.Connect(NodeInquiry, NodeInquiry, true)
	g.Connect(NodeInquiry, NodeHistoryInquiries, false)

	p.Pricing.AddListener(p.GUI.PricingListener())
	g.Connect(NodePricing, NodeGUI, false)
	g.Connect(NodeGUI, NodeHistoryGUI, false)

	p.Pricing.AddListener(p.AlgoStreaming.PricingListener())
	g.Connect(NodePricing, NodeAlgoStreaming, false)
	p.AlgoStreaming.AddListener(p.Streaming.AlgoListener())
	g.Connect(NodeAlgoStreaming, NodeStreaming, false)
	p.Streaming.AddListener(p.historyStreaming.Listener())
	g.Connect(NodeStreaming, NodeHistoryStreaming, false)

	p.Trades.AddListener(p.Positions.TradeListener())
	g.Connect(NodeTradeBooking, NodePosition, false)
	p.Positions.AddListener(p.historyPositions.Listener())
	g.Connect(NodePosition, NodeHistoryPositions, false)
	p.Positions.AddListener(p.Risk.PositionListener())
	g.Connect(NodePosition, NodeRisk, false)
	p.Risk.AddListener(p.historyRisk.Listener())
	g.Connect(NodeRisk, NodeHistoryRisk, false)

	p.MarketData.AddListener(p.AlgoExecution.MarketDataListener())
	g.Connect(NodeMarketData, NodeAlgoExecution, false)
	p.AlgoExecution.AddListener(p.Execution.AlgoListener())
	g.Connect(NodeAlgoExecution, NodeExecution, false)
	p.Execution.AddListener(p.historyExecutions.Listener())
	g.Connect(NodeExecution, NodeHistoryExecutions, false)
	p.Execution.AddListener(trade.NewExecutionListener(p.Trades, p.cfg.Books, o.tradeID))
	g.Connect(NodeExecution, NodeTradeBooking, false)

	p.MarketData.AddListener(obs.Listener[schema.OrderBook](m, schema.EventOrderBook))
	p.Pricing.AddListener(obs.Listener[schema.Price](m, schema.EventPrice))
	p.AlgoExecution.AddListener(obs.Listener[schema.AlgoExecution](m, schema.EventAlgoExecution))
	p.Execution.AddListener(obs.Listener[schema.ExecutionOrder](m, schema.EventExecution))
	p.AlgoStreaming.AddListener(obs.Listener[schema.AlgoStream](m, schema.EventAlgoStream))
	p.Streaming.AddListener(obs.Listener[schema.PriceStream](m, schema.EventPriceStream))
	p.Trades.AddListener(obs.Listener[schema.Trade](m, schema.EventTrade))
	p.Positions.AddListener(obs.Listener[schema.Position](m, schema.EventPosition))
	p.Risk.AddListener(obs.Listener[schema.PV01](m, schema.EventRisk))
	p.Inquiries.AddListener(obs.Listener[schema.Inquiry](m, schema.EventInquiry))
	p.GUI.AddListener(obs.Listener[schema.Price](m, schema.EventGUI))
}

func (p *Pipeline) Graph() *Graph { return p.graph }

func (p *Pipeline) Metrics() *obs.Metrics { return p.metrics }

// InputReport summarizes one input file.
type InputReport struct {
	Name     string
	Path     string
	Records  int
	Failures int
}

// Report summarizes a run.
type Report struct {
	Inputs  []InputReport
	Elapsed time.Duration
}

func (r Report) Records() (n int) {
	for _, in := range r.Inputs {
		n += in.Records
	}
	return n
}

func (r Report) Failures() (n int) {
	for _, in := range r.Inputs {
		n += in.Failures
	}
	return n
}

type source struct {
	name     string
	path     string
	dispatch func(line string) error
}

// Run processes inquiries, prices, trades and market data, in that order.
// A record that fails is logged and skipped; an I/O failure or a cancelled
// context stops the run.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	reg := p.cfg.Registry
	io := p.cfg.IO
	sources := []source{
		{"inquiries", io.InputPath(io.Inputs.Inquiries), feed(reg, connector.ParseInquiry, p.Inquiries.OnMessage)},
		{"prices", io.InputPath(io.Inputs.Prices), feed(reg, connector.ParsePrice, p.Pricing.OnMessage)},
		{"trades", io.InputPath(io.Inputs.Trades), feed(reg, connector.ParseTrade, p.Trades.OnMessage)},
		{"marketdata", io.InputPath(io.Inputs.MarketData), feed(reg, connector.ParseOrderBook, p.MarketData.OnMessage)},
	}

	start := time.Now()
	report := Report{Inputs: make([]InputReport, 0, len(sources))}

	for _, src := range sources {
		in, err := p.process(ctx, src)
		report.Inputs = append(report.Inputs, in)
		if err != nil {
			report.Elapsed = time.Since(start)
			return report, err
		}
		logs.Infof("input %s done, records: %d, failures: %d", in.Name, in.Records, in.Failures)
	}
	report.Elapsed = time.Since(start)
	return report, nil
}

func (p *Pipeline) process(ctx context.Context, src source) (InputReport, error) {
	report := InputReport{Name: src.name, Path: src.path}
	n, err := connector.NewInput(src.name, src.path).Read(ctx, func(lineNo int, line string) error {
		begin := time.Now()
		err := src.dispatch(line)
		if err == nil {
			err = p.queue.Drain(ctx)
		} else {
			p.queue.Reset()
		}
		p.metrics.ObserveRecord(time.Since(begin))
		if err == nil {
			return nil
		}
		if errors.Is(err, exception.ErrIOFailure) || ctx.Err() != nil {
			return err
		}
		report.Failures++
		p.metrics.IncRecordFailure()
		logs.Warnf("skip %s record, line: %d, err: %+v", src.name, lineNo, err)
		return nil
	})
	report.Records = n
	return report, err
}

func feed[V any](reg *schema.Registry, parse connector.Parser[V], onMessage func(V) error) func(string) error {
	return func(line string) error {
		v, err := parse(reg, line)
		if err != nil {
			return err
		}
		return onMessage(v)
	}
}

// RestorePositions seeds positions from a snapshot and recomputes risk for
// every restored product.
func (p *Pipeline) RestorePositions(snap state.Snapshot) (int, error) {
	positions, err := p.Positions.ApplySnapshot(snap, p.cfg.Registry)
	if err != nil {
		return 0, err
	}
	for _, pos := range positions {
		if err := p.Risk.AddPosition(pos); err != nil {
			return 0, fmt.Errorf("restore risk %s: %w", pos.Key(), err)
		}
	}
	return len(positions), nil
}

// BucketedRisk aggregates risk for every configured sector.
func (p *Pipeline) BucketedRisk() []schema.SectorPV01 {
	out := make([]schema.SectorPV01, 0, len(p.cfg.Sectors))
	for _, sector := range p.cfg.Sectors {
		out = append(out, p.Risk.GetBucketedRisk(sector))
	}
	return out
}
