package schema

import (
	"fmt"
	"maps"

	"github.com/shopspring/decimal"

	"bondtrading/pkg/exception"
)

// BookDepth is the number of price levels on each side of an order book.
const BookDepth = 5

// PricingSide is the side of a quote or book level.
type PricingSide uint8

const (
	PricingSideUnknown PricingSide = iota
	PricingSideBid
	PricingSideOffer
)

func (s PricingSide) String() string {
	switch s {
	case PricingSideBid:
		return "BID"
	case PricingSideOffer:
		return "OFFER"
	default:
		return "UNKNOWN"
	}
}

// Opposite returns the other side of the book.
func (s PricingSide) Opposite() PricingSide {
	switch s {
	case PricingSideBid:
		return PricingSideOffer
	case PricingSideOffer:
		return PricingSideBid
	default:
		return PricingSideUnknown
	}
}

// Side is the direction of a trade or inquiry.
type Side uint8

const (
	SideUnknown Side = iota
	SideBuy
	SideSell
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// OrderType describes how an execution order works the market.
type OrderType uint8

const (
	OrderTypeUnknown OrderType = iota
	OrderTypeFOK
	OrderTypeIOC
	OrderTypeMarket
	OrderTypeLimit
	OrderTypeStop
)

func (t OrderType) String() string {
	switch t {
	case OrderTypeFOK:
		return "FOK"
	case OrderTypeIOC:
		return "IOC"
	case OrderTypeMarket:
		return "MARKET"
	case OrderTypeLimit:
		return "LIMIT"
	case OrderTypeStop:
		return "STOP"
	default:
		return "UNKNOWN"
	}
}

// Market is an execution venue.
type Market uint8

const (
	MarketUnknown Market = iota
	MarketBrokerTec
	MarketESpeed
	MarketCME
)

func (m Market) String() string {
	switch m {
	case MarketBrokerTec:
		return "BROKERTEC"
	case MarketESpeed:
		return "ESPEED"
	case MarketCME:
		return "CME"
	default:
		return "UNKNOWN"
	}
}

// ParseMarket maps a configured venue name to a Market.
func ParseMarket(s string) (Market, error) {
	switch s {
	case "BROKERTEC":
		return MarketBrokerTec, nil
	case "ESPEED":
		return MarketESpeed, nil
	case "CME", "":
		return MarketCME, nil
	default:
		return MarketUnknown, fmt.Errorf("unsupported market: %s", s)
	}
}

// InquiryState is the negotiation state of a customer inquiry.
type InquiryState uint8

const (
	InquiryStateUnknown InquiryState = iota
	InquiryStateReceived
	InquiryStateQuoted
	InquiryStateDone
)

func (s InquiryState) String() string {
	switch s {
	case InquiryStateReceived:
		return "RECEIVED"
	case InquiryStateQuoted:
		return "QUOTED"
	case InquiryStateDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// Order is a single level of an order book.
type Order struct {
	Price    decimal.Decimal
	Quantity int64
	Side     PricingSide
}

// BidOffer is the best bid and offer of a book.
type BidOffer struct {
	Bid   Order
	Offer Order
}

// Spread returns the offer price minus the bid price.
func (b BidOffer) Spread() decimal.Decimal {
	return b.Offer.Price.Sub(b.Bid.Price)
}

// OrderBook holds BookDepth levels per side, best first.
type OrderBook struct {
	Product Product
	Bids    []Order
	Offers  []Order
}

func (b OrderBook) Key() string { return b.Product.ProductID }

// Validate checks the level count on both sides.
func (b OrderBook) Validate() error {
	if len(b.Bids) != BookDepth || len(b.Offers) != BookDepth {
		return fmt.Errorf("%w: %s bids=%d offers=%d", exception.ErrBookDepth, b.Product.ProductID, len(b.Bids), len(b.Offers))
	}
	return nil
}

// BestBidOffer returns level 0 of both sides. The book must be valid.
func (b OrderBook) BestBidOffer() BidOffer {
	return BidOffer{Bid: b.Bids[0], Offer: b.Offers[0]}
}

// Clone returns a copy that shares no level slices with b.
func (b OrderBook) Clone() OrderBook {
	b.Bids = append([]Order(nil), b.Bids...)
	b.Offers = append([]Order(nil), b.Offers...)
	return b
}

// Price is an internal mid price and bid/offer spread.
type Price struct {
	Product Product
	Mid     decimal.Decimal
	Spread  decimal.Decimal
}

func (p Price) Key() string { return p.Product.ProductID }

var two = decimal.NewFromInt(2)

// Bid returns mid minus half the spread.
func (p Price) Bid() decimal.Decimal { return p.Mid.Sub(p.Spread.Div(two)) }

// Offer returns mid plus half the spread.
func (p Price) Offer() decimal.Decimal { return p.Mid.Add(p.Spread.Div(two)) }

// PriceStreamOrder is one side of a two-way quote.
type PriceStreamOrder struct {
	Price           decimal.Decimal
	VisibleQuantity int64
	HiddenQuantity  int64
	Side            PricingSide
}

// PriceStream is a two-way quote for a product.
type PriceStream struct {
	Product Product
	Bid     PriceStreamOrder
	Offer   PriceStreamOrder
}

func (s PriceStream) Key() string { return s.Product.ProductID }

// AlgoStream wraps a price stream produced by the streaming algorithm.
type AlgoStream struct {
	Stream PriceStream
}

func (s AlgoStream) Key() string { return s.Stream.Key() }

// ExecutionOrder is an order sent to a market.
type ExecutionOrder struct {
	Product         Product
	Side            PricingSide
	OrderID         string
	OrderType       OrderType
	Price           decimal.Decimal
	VisibleQuantity int64
	HiddenQuantity  int64
	ParentOrderID   string
	IsChildOrder    bool
	// Market is set once the order has been executed.
	Market Market
}

func (o ExecutionOrder) Key() string { return o.OrderID }

// Quantity returns visible plus hidden quantity.
func (o ExecutionOrder) Quantity() int64 { return o.VisibleQuantity + o.HiddenQuantity }

// AlgoExecution wraps an execution order produced by the execution algorithm.
type AlgoExecution struct {
	Order ExecutionOrder
}

func (a AlgoExecution) Key() string { return a.Order.OrderID }

// Trade is a booked fill. Trades are immutable once booked.
type Trade struct {
	Product  Product
	TradeID  string
	Price    decimal.Decimal
	Book     string
	Quantity int64
	Side     Side
}

func (t Trade) Key() string { return t.TradeID }

// Signed returns the quantity with a negative sign for sells.
func (t Trade) Signed() int64 {
	switch t.Side {
	case SideBuy:
		return t.Quantity
	case SideSell:
		return -t.Quantity
	default:
		return 0
	}
}

// Position is the net position of a product across books.
type Position struct {
	Product Product
	Books   map[string]int64
}

// NewPosition creates an empty position for a product.
func NewPosition(p Product) Position {
	return Position{Product: p, Books: make(map[string]int64)}
}

func (p Position) Key() string { return p.Product.ProductID }

// Book returns the signed quantity held in one book.
func (p Position) Book(book string) int64 { return p.Books[book] }

// Aggregate returns the sum over all books.
func (p Position) Aggregate() int64 {
	var sum int64
	for _, qty := range p.Books {
		sum += qty
	}
	return sum
}

// Clone returns a copy that shares no map with p.
func (p Position) Clone() Position {
	p.Books = maps.Clone(p.Books)
	if p.Books == nil {
		p.Books = make(map[string]int64)
	}
	return p
}

// PV01 is the risk of a single product.
type PV01 struct {
	Product  Product
	PV01     decimal.Decimal
	Quantity int64
}

func (r PV01) Key() string { return r.Product.ProductID }

// SectorPV01 is the aggregated risk of a bucketed sector.
type SectorPV01 struct {
	Sector   BucketedSector
	PV01     decimal.Decimal
	Quantity int64
}

// Inquiry is a customer request for quote.
type Inquiry struct {
	InquiryID string
	Product   Product
	Side      Side
	Quantity  int64
	Price     decimal.Decimal
	State     InquiryState
}

func (i Inquiry) Key() string { return i.InquiryID }
