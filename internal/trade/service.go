// Package trade books fills into named books.
package trade

import (
	"fmt"

	"bondtrading/internal/bus"
	"bondtrading/internal/schema"
	"bondtrading/pkg/exception"
)

var _ bus.Service[string, schema.Trade] = (*Service)(nil)

// Service records booked trades keyed by trade id. Trades are never
// updated or removed.
type Service struct {
	store *bus.Store[string, schema.Trade]
}

// NewService creates an empty trade booking service.
func NewService() *Service {
	return &Service{store: bus.NewStore[string, schema.Trade]("trade-booking")}
}

// BookTrade records a new trade and notifies listeners.
func (s *Service) BookTrade(t schema.Trade) error {
	if t.TradeID == "" {
		return fmt.Errorf("%w: empty trade id", exception.ErrMalformedRecord)
	}
	if t.Side != schema.SideBuy && t.Side != schema.SideSell {
		return fmt.Errorf("%w: trade %s side %s", exception.ErrMalformedRecord, t.TradeID, t.Side)
	}
	if t.Quantity <= 0 {
		return fmt.Errorf("%w: trade %s quantity %d", exception.ErrMalformedRecord, t.TradeID, t.Quantity)
	}
	if s.store.Contains(t.TradeID) {
		return fmt.Errorf("%w: %s", exception.ErrDuplicateTrade, t.TradeID)
	}
	_, err := s.store.Upsert(t.Key(), t)
	return err
}

func (s *Service) OnMessage(t schema.Trade) error { return s.BookTrade(t) }

func (s *Service) GetData(tradeID string) (schema.Trade, error) { return s.store.GetData(tradeID) }

func (s *Service) AddListener(l bus.Listener[schema.Trade]) { s.store.AddListener(l) }

func (s *Service) Listeners() []bus.Listener[schema.Trade] { return s.store.Listeners() }
