package algo

import (
	"fmt"

	"github.com/yanun0323/logs"

	"bondtrading/internal/bus"
	"bondtrading/internal/schema"
)

var _ bus.Service[string, schema.AlgoExecution] = (*ExecutionService)(nil)

// ExecutionService crosses the spread with a market order whenever the top
// of book is tight enough, alternating sides on every order.
type ExecutionService struct {
	store   *bus.Store[string, schema.AlgoExecution]
	cfg     ExecutionConfig
	side    schema.PricingSide
	counter uint64
}

// NewExecutionService creates an execution algorithm starting on the bid.
func NewExecutionService(cfg ExecutionConfig) (*ExecutionService, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &ExecutionService{
		store:   bus.NewStore[string, schema.AlgoExecution]("algo-execution"),
		cfg:     cfg,
		side:    schema.PricingSideBid,
		counter: 1,
	}, nil
}

// Execute inspects a book and emits at most one order. It reports whether an
// order was emitted; a wide spread is not an error.
func (s *ExecutionService) Execute(book schema.OrderBook) (bool, error) {
	if err := book.Validate(); err != nil {
		return false, err
	}
	top := book.BestBidOffer()
	spread := top.Spread()
	if spread.GreaterThan(s.cfg.SpreadThreshold) {
		logs.Debugf("algo execution skipped, product: %s, spread: %s", book.Key(), spread)
		return false, nil
	}

	level := top.Bid
	if s.side == schema.PricingSideOffer {
		level = top.Offer
	}
	algo := schema.AlgoExecution{Order: schema.ExecutionOrder{
		Product:         book.Product,
		Side:            s.side,
		OrderID:         fmt.Sprintf("%s%d", s.cfg.OrderIDPrefix, s.counter),
		OrderType:       schema.OrderTypeMarket,
		Price:           level.Price,
		VisibleQuantity: level.Quantity,
	}}
	s.side = s.side.Opposite()
	s.counter++

	_, err := s.store.Upsert(algo.Key(), algo)
	return true, err
}

// OnMessage records an externally created algo execution.
func (s *ExecutionService) OnMessage(a schema.AlgoExecution) error {
	_, err := s.store.Upsert(a.Key(), a)
	return err
}

func (s *ExecutionService) GetData(orderID string) (schema.AlgoExecution, error) {
	return s.store.GetData(orderID)
}

func (s *ExecutionService) AddListener(l bus.Listener[schema.AlgoExecution]) { s.store.AddListener(l) }

func (s *ExecutionService) Listeners() []bus.Listener[schema.AlgoExecution] {
	return s.store.Listeners()
}

// NextSide returns the side of the next emitted order.
func (s *ExecutionService) NextSide() schema.PricingSide { return s.side }

// MarketDataListener feeds every book add and update into Execute.
func (s *ExecutionService) MarketDataListener() bus.Listener[schema.OrderBook] {
	return bus.Forward(func(book schema.OrderBook) error {
		_, err := s.Execute(book)
		return err
	})
}
