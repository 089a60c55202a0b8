// Package execution sends orders to a market and records them by order id.
package execution

import (
	"github.com/yanun0323/logs"

	"bondtrading/internal/bus"
	"bondtrading/internal/schema"
)

var _ bus.Service[string, schema.ExecutionOrder] = (*Service)(nil)

// Service records executed orders keyed by order id.
type Service struct {
	store  *bus.Store[string, schema.ExecutionOrder]
	market schema.Market
}

// NewService creates an execution service. Orders arriving through
// OnMessage are executed on market.
func NewService(market schema.Market) *Service {
	if market == schema.MarketUnknown {
		market = schema.MarketCME
	}
	return &Service{
		store:  bus.NewStore[string, schema.ExecutionOrder]("execution"),
		market: market,
	}
}

// ExecuteOrder executes an order on a market and notifies listeners.
func (s *Service) ExecuteOrder(order schema.ExecutionOrder, market schema.Market) error {
	order.Market = market
	kind, err := s.store.Upsert(order.Key(), order)
	logs.Debugf("execution %s, order: %s, market: %s, side: %s", kind, order.OrderID, market, order.Side)
	return err
}

// OnMessage executes an order on the default market.
func (s *Service) OnMessage(order schema.ExecutionOrder) error {
	return s.ExecuteOrder(order, s.market)
}

func (s *Service) GetData(orderID string) (schema.ExecutionOrder, error) {
	return s.store.GetData(orderID)
}

func (s *Service) AddListener(l bus.Listener[schema.ExecutionOrder]) { s.store.AddListener(l) }

func (s *Service) Listeners() []bus.Listener[schema.ExecutionOrder] { return s.store.Listeners() }

// AlgoListener executes every new algo order on the default market.
func (s *Service) AlgoListener() bus.Listener[schema.AlgoExecution] {
	return bus.ForwardAdds(func(a schema.AlgoExecution) error {
		return s.OnMessage(a.Order)
	})
}
