package schema

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceBidOffer(t *testing.T) {
	p := Price{Mid: decimal.NewFromInt(100), Spread: decimal.RequireFromString("0.0078125")}
	assert.True(t, p.Bid().Equal(decimal.RequireFromString("99.99609375")))
	assert.True(t, p.Offer().Equal(decimal.RequireFromString("100.00390625")))
}

func TestPositionAggregateAndClone(t *testing.T) {
	pos := NewPosition(Product{ProductID: "A"})
	pos.Books["TRSY1"] = 100
	pos.Books["TRSY2"] = -30
	assert.Equal(t, int64(70), pos.Aggregate())

	cp := pos.Clone()
	cp.Books["TRSY1"] = 0
	assert.Equal(t, int64(100), pos.Book("TRSY1"))
}

func TestOrderBookValidate(t *testing.T) {
	book := OrderBook{Product: Product{ProductID: "A"}, Bids: make([]Order, BookDepth), Offers: make([]Order, BookDepth)}
	require.NoError(t, book.Validate())
	book.Offers = book.Offers[:4]
	require.Error(t, book.Validate())
}

func TestTradeSigned(t *testing.T) {
	assert.Equal(t, int64(5), Trade{Quantity: 5, Side: SideBuy}.Signed())
	assert.Equal(t, int64(-5), Trade{Quantity: 5, Side: SideSell}.Signed())
	assert.Equal(t, PricingSideOffer, PricingSideBid.Opposite())
}
