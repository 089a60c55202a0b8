package trade

import (
	"fmt"

	"github.com/google/uuid"

	"bondtrading/internal/schema"
	"bondtrading/pkg/exception"
)

// DefaultBooks are the books executions are booked into, in rotation.
var DefaultBooks = []string{"TRSY1", "TRSY2", "TRSY3"}

// ExecutionListener books every executed order as a trade. Books are
// assigned round-robin. Lifting an offer books a buy and hitting a bid books
// a sell.
type ExecutionListener struct {
	svc     *Service
	books   []string
	next    int
	tradeID func() string
}

// NewExecutionListener creates a listener booking into svc. A nil tradeID
// generator falls back to random UUIDs.
func NewExecutionListener(svc *Service, books []string, tradeID func() string) *ExecutionListener {
	if len(books) == 0 {
		books = DefaultBooks
	}
	if tradeID == nil {
		tradeID = uuid.NewString
	}
	return &ExecutionListener{
		svc:     svc,
		books:   append([]string(nil), books...),
		tradeID: tradeID,
	}
}

func (l *ExecutionListener) ProcessAdd(order schema.ExecutionOrder) error {
	side := tradeSide(order.Side)
	if side == schema.SideUnknown {
		return fmt.Errorf("%w: order %s side %s", exception.ErrMalformedRecord, order.OrderID, order.Side)
	}
	book := l.books[l.next]
	l.next = (l.next + 1) % len(l.books)
	return l.svc.BookTrade(schema.Trade{
		Product:  order.Product,
		TradeID:  l.tradeID(),
		Price:    order.Price,
		Book:     book,
		Quantity: order.Quantity(),
		Side:     side,
	})
}

func (l *ExecutionListener) ProcessRemove(schema.ExecutionOrder) error { return nil }

func (l *ExecutionListener) ProcessUpdate(schema.ExecutionOrder) error { return nil }

func tradeSide(side schema.PricingSide) schema.Side {
	switch side {
	case schema.PricingSideOffer:
		return schema.SideBuy
	case schema.PricingSideBid:
		return schema.SideSell
	default:
		return schema.SideUnknown
	}
}
