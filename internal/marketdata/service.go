// Package marketdata keeps the latest order book per product and answers
// top-of-book and depth queries.
package marketdata

import (
	"fmt"

	"github.com/shopspring/decimal"

	"bondtrading/internal/bus"
	"bondtrading/internal/schema"
	"bondtrading/pkg/exception"
)

var _ bus.Service[string, schema.OrderBook] = (*Service)(nil)

// Service stores order books keyed by product identifier.
type Service struct {
	store *bus.Store[string, schema.OrderBook]
}

// NewService creates an empty market data service.
func NewService() *Service {
	return &Service{store: bus.NewStore[string, schema.OrderBook]("marketdata")}
}

// OnMessage records a book and notifies listeners.
func (s *Service) OnMessage(book schema.OrderBook) error {
	if err := book.Validate(); err != nil {
		return err
	}
	book = book.Clone()
	_, err := s.store.Upsert(book.Key(), book)
	return err
}

func (s *Service) GetData(productID string) (schema.OrderBook, error) {
	book, err := s.store.GetData(productID)
	if err != nil {
		return schema.OrderBook{}, fmt.Errorf("%w: %s", exception.ErrOrderBookNotFound, productID)
	}
	return book.Clone(), nil
}

func (s *Service) AddListener(l bus.Listener[schema.OrderBook]) { s.store.AddListener(l) }

func (s *Service) Listeners() []bus.Listener[schema.OrderBook] { return s.store.Listeners() }

// GetBestBidOffer returns level 0 of the latest book for a product.
func (s *Service) GetBestBidOffer(productID string) (schema.BidOffer, error) {
	book, err := s.store.GetData(productID)
	if err != nil {
		return schema.BidOffer{}, fmt.Errorf("%w: %s", exception.ErrOrderBookNotFound, productID)
	}
	return book.BestBidOffer(), nil
}

// AggregateDepth collapses each side of the latest book into one level whose
// price is the volume weighted average and whose quantity is the total.
func (s *Service) AggregateDepth(productID string) (schema.OrderBook, error) {
	book, err := s.store.GetData(productID)
	if err != nil {
		return schema.OrderBook{}, fmt.Errorf("%w: %s", exception.ErrOrderBookNotFound, productID)
	}
	bid, err := aggregate(book.Bids, schema.PricingSideBid)
	if err != nil {
		return schema.OrderBook{}, fmt.Errorf("aggregate %s bids: %w", productID, err)
	}
	offer, err := aggregate(book.Offers, schema.PricingSideOffer)
	if err != nil {
		return schema.OrderBook{}, fmt.Errorf("aggregate %s offers: %w", productID, err)
	}
	return schema.OrderBook{
		Product: book.Product,
		Bids:    []schema.Order{bid},
		Offers:  []schema.Order{offer},
	}, nil
}

func aggregate(levels []schema.Order, side schema.PricingSide) (schema.Order, error) {
	notional := decimal.Zero
	var qty int64
	for _, level := range levels {
		notional = notional.Add(level.Price.Mul(decimal.NewFromInt(level.Quantity)))
		qty += level.Quantity
	}
	if qty == 0 {
		return schema.Order{}, exception.ErrZeroVolume
	}
	return schema.Order{
		Price:    notional.Div(decimal.NewFromInt(qty)),
		Quantity: qty,
		Side:     side,
	}, nil
}
