package pricing

import (
	"bondtrading/internal/bus"
	"bondtrading/internal/schema"
)

var _ bus.Service[string, schema.Price] = (*Service)(nil)

// Service keeps the latest internal price per product.
type Service struct {
	store *bus.Store[string, schema.Price]
}

// NewService creates an empty pricing service.
func NewService() *Service {
	return &Service{store: bus.NewStore[string, schema.Price]("pricing")}
}

// OnMessage records a price and notifies listeners.
func (s *Service) OnMessage(p schema.Price) error {
	_, err := s.store.Upsert(p.Key(), p)
	return err
}

func (s *Service) GetData(productID string) (schema.Price, error) { return s.store.GetData(productID) }

func (s *Service) AddListener(l bus.Listener[schema.Price]) { s.store.AddListener(l) }

func (s *Service) Listeners() []bus.Listener[schema.Price] { return s.store.Listeners() }
