package streaming

import (
	"bondtrading/internal/bus"
	"bondtrading/internal/schema"
)

var _ bus.Service[string, schema.PriceStream] = (*Service)(nil)

// Service publishes two-way price streams keyed by product.
type Service struct {
	store *bus.Store[string, schema.PriceStream]
}

// NewService creates an empty streaming service.
func NewService() *Service {
	return &Service{store: bus.NewStore[string, schema.PriceStream]("streaming")}
}

// PublishPrice records a stream and notifies listeners.
func (s *Service) PublishPrice(stream schema.PriceStream) error {
	_, err := s.store.Upsert(stream.Key(), stream)
	return err
}

func (s *Service) OnMessage(stream schema.PriceStream) error { return s.PublishPrice(stream) }

func (s *Service) GetData(productID string) (schema.PriceStream, error) {
	return s.store.GetData(productID)
}

func (s *Service) AddListener(l bus.Listener[schema.PriceStream]) { s.store.AddListener(l) }

func (s *Service) Listeners() []bus.Listener[schema.PriceStream] { return s.store.Listeners() }

// AlgoListener publishes every algo stream add and update.
func (s *Service) AlgoListener() bus.Listener[schema.AlgoStream] {
	return bus.Forward(func(a schema.AlgoStream) error {
		return s.PublishPrice(a.Stream)
	})
}
