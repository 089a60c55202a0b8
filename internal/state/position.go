package state

import (
	"bondtrading/internal/bus"
	"bondtrading/internal/schema"
)

var _ bus.Service[string, schema.Position] = (*PositionService)(nil)

// PositionService accumulates booked trades into per-book positions.
type PositionService struct {
	store *bus.Store[string, schema.Position]
}

// NewPositionService creates an empty position service.
func NewPositionService() *PositionService {
	return &PositionService{store: bus.NewStore[string, schema.Position]("position")}
}

// AddTrade applies a trade to the position of its product and notifies
// listeners with a copy of the new position.
func (s *PositionService) AddTrade(t schema.Trade) error {
	pos, err := s.store.GetData(t.Product.ProductID)
	if err != nil {
		pos = schema.NewPosition(t.Product)
	}
	pos.Books[t.Book] += t.Signed()
	return s.put(pos)
}

// OnMessage replaces the position of a product.
func (s *PositionService) OnMessage(pos schema.Position) error {
	return s.put(pos.Clone())
}

func (s *PositionService) put(pos schema.Position) error {
	kind := schema.EventKindUpdate
	if s.store.Put(pos.Key(), pos) {
		kind = schema.EventKindAdd
	}
	return s.store.Notify(kind, pos.Clone())
}

func (s *PositionService) GetData(productID string) (schema.Position, error) {
	pos, err := s.store.GetData(productID)
	if err != nil {
		return schema.Position{}, err
	}
	return pos.Clone(), nil
}

func (s *PositionService) AddListener(l bus.Listener[schema.Position]) { s.store.AddListener(l) }

func (s *PositionService) Listeners() []bus.Listener[schema.Position] { return s.store.Listeners() }

// Count returns the number of tracked products.
func (s *PositionService) Count() int { return s.store.Len() }

// TradeListener applies every booked trade.
func (s *PositionService) TradeListener() bus.Listener[schema.Trade] {
	return bus.ForwardAdds(s.AddTrade)
}
