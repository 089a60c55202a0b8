package trade

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bondtrading/internal/bus"
	"bondtrading/internal/schema"
	"bondtrading/pkg/exception"
)

var product = schema.Product{ProductID: "91282CLW9"}

func TestBookTradeRejectsDuplicates(t *testing.T) {
	svc := NewService()
	adds := 0
	svc.AddListener(bus.ForwardAdds(func(schema.Trade) error {
		adds++
		return nil
	}))

	tr := schema.Trade{Product: product, TradeID: "T1", Book: "TRSY1", Quantity: 100, Side: schema.SideBuy}
	require.NoError(t, svc.BookTrade(tr))
	assert.ErrorIs(t, svc.BookTrade(tr), exception.ErrDuplicateTrade)
	assert.ErrorIs(t, svc.BookTrade(tr), exception.ErrInvalidState)
	assert.Equal(t, 1, adds)

	assert.ErrorIs(t, svc.BookTrade(schema.Trade{Quantity: 1}), exception.ErrMalformedRecord)
}

func TestBookTradeRejectsUnknownSide(t *testing.T) {
	svc := NewService()
	adds := 0
	svc.AddListener(bus.ForwardAdds(func(schema.Trade) error {
		adds++
		return nil
	}))

	err := svc.BookTrade(schema.Trade{Product: product, TradeID: "T9", Book: "TRSY1", Quantity: 500})
	require.ErrorIs(t, err, exception.ErrMalformedRecord)
	assert.Equal(t, 0, adds)
	_, err = svc.GetData("T9")
	assert.ErrorIs(t, err, exception.ErrNotFound)

	l := NewExecutionListener(svc, nil, func() string { return "EX1" })
	err = l.ProcessAdd(schema.ExecutionOrder{Product: product, OrderID: "Order_1", VisibleQuantity: 10})
	require.ErrorIs(t, err, exception.ErrMalformedRecord)
	assert.Equal(t, 0, adds)

	require.NoError(t, l.ProcessAdd(schema.ExecutionOrder{Product: product, OrderID: "Order_2", Side: schema.PricingSideBid, VisibleQuantity: 10}))
	tr, err := svc.GetData("EX1")
	require.NoError(t, err)
	assert.Equal(t, "TRSY1", tr.Book)
}

func TestExecutionListenerBooksRoundRobin(t *testing.T) {
	svc := NewService()
	var trades []schema.Trade
	svc.AddListener(bus.ForwardAdds(func(tr schema.Trade) error {
		trades = append(trades, tr)
		return nil
	}))

	n := 0
	l := NewExecutionListener(svc, nil, func() string {
		n++
		return fmt.Sprintf("EX%d", n)
	})
	for i, side := range []schema.PricingSide{schema.PricingSideBid, schema.PricingSideOffer, schema.PricingSideBid, schema.PricingSideOffer} {
		require.NoError(t, l.ProcessAdd(schema.ExecutionOrder{
			Product:         product,
			OrderID:         fmt.Sprintf("Order_%d", i+1),
			Side:            side,
			Price:           decimal.NewFromInt(100),
			VisibleQuantity: 10,
			HiddenQuantity:  5,
		}))
	}
	require.NoError(t, l.ProcessUpdate(schema.ExecutionOrder{OrderID: "Order_1"}))

	require.Len(t, trades, 4)
	assert.Equal(t, []string{"TRSY1", "TRSY2", "TRSY3", "TRSY1"}, []string{trades[0].Book, trades[1].Book, trades[2].Book, trades[3].Book})
	assert.Equal(t, schema.SideSell, trades[0].Side)
	assert.Equal(t, schema.SideBuy, trades[1].Side)
	assert.Equal(t, int64(15), trades[0].Quantity)
	assert.Equal(t, "EX1", trades[0].TradeID)
}

func TestExecutionListenerDefaultIDsAreUUIDs(t *testing.T) {
	svc := NewService()
	l := NewExecutionListener(svc, []string{"B"}, nil)
	require.NoError(t, l.ProcessAdd(schema.ExecutionOrder{Product: product, Side: schema.PricingSideOffer, VisibleQuantity: 1}))
	require.NoError(t, l.ProcessAdd(schema.ExecutionOrder{Product: product, Side: schema.PricingSideOffer, VisibleQuantity: 1}))

	var ids []string
	svc.AddListener(bus.ForwardAdds(func(tr schema.Trade) error {
		ids = append(ids, tr.TradeID)
		return nil
	}))
	require.NoError(t, l.ProcessAdd(schema.ExecutionOrder{Product: product, Side: schema.PricingSideBid, VisibleQuantity: 1}))
	require.Len(t, ids, 1)
	_, err := uuid.Parse(ids[0])
	require.NoError(t, err)
}
