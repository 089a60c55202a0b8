package algo

import (
	"bondtrading/internal/bus"
	"bondtrading/internal/schema"
)

var _ bus.Service[string, schema.AlgoStream] = (*StreamingService)(nil)

// StreamingService turns internal prices into two-way quotes, rotating the
// visible size through the configured tiers.
type StreamingService struct {
	store *bus.Store[string, schema.AlgoStream]
	cfg   StreamingConfig
	next  int
}

// NewStreamingService creates a streaming algorithm starting at the first tier.
func NewStreamingService(cfg StreamingConfig) (*StreamingService, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &StreamingService{
		store: bus.NewStore[string, schema.AlgoStream]("algo-streaming"),
		cfg:   cfg,
	}, nil
}

// PublishPrice builds a quote from p and notifies listeners. The tier
// advances after every quote.
func (s *StreamingService) PublishPrice(p schema.Price) error {
	visible := s.cfg.Tiers[s.next]
	hidden := visible * HiddenMultiple
	s.next = (s.next + 1) % len(s.cfg.Tiers)

	stream := schema.AlgoStream{Stream: schema.PriceStream{
		Product: p.Product,
		Bid: schema.PriceStreamOrder{
			Price:           p.Bid(),
			VisibleQuantity: visible,
			HiddenQuantity:  hidden,
			Side:            schema.PricingSideBid,
		},
		Offer: schema.PriceStreamOrder{
			Price:           p.Offer(),
			VisibleQuantity: visible,
			HiddenQuantity:  hidden,
			Side:            schema.PricingSideOffer,
		},
	}}
	_, err := s.store.Upsert(stream.Key(), stream)
	return err
}

// OnMessage records an externally created algo stream.
func (s *StreamingService) OnMessage(a schema.AlgoStream) error {
	_, err := s.store.Upsert(a.Key(), a)
	return err
}

func (s *StreamingService) GetData(productID string) (schema.AlgoStream, error) {
	return s.store.GetData(productID)
}

func (s *StreamingService) AddListener(l bus.Listener[schema.AlgoStream]) { s.store.AddListener(l) }

func (s *StreamingService) Listeners() []bus.Listener[schema.AlgoStream] { return s.store.Listeners() }

// PricingListener feeds every price add and update into PublishPrice.
func (s *StreamingService) PricingListener() bus.Listener[schema.Price] {
	return bus.Forward(s.PublishPrice)
}
