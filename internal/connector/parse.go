package connector

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"bondtrading/internal/schema"
	"bondtrading/pkg/exception"
	"bondtrading/pkg/fraction"
)

// Parser turns one input line into a domain value.
type Parser[V any] func(reg *schema.Registry, line string) (V, error)

const (
	orderBookFields = 1 + 4*schema.BookDepth
	priceFields     = 3
	tradeFields     = 6
	inquiryFields   = 4
)

// ParseOrderBook reads "id,bid1,bidQty1..bid5,bidQty5,offer1,offerQty1..offer5,offerQty5"
// with fractional prices.
func ParseOrderBook(reg *schema.Registry, line string) (schema.OrderBook, error) {
	fields, err := split(line, orderBookFields)
	if err != nil {
		return schema.OrderBook{}, err
	}
	product, err := reg.GetData(fields[0])
	if err != nil {
		return schema.OrderBook{}, err
	}
	book := schema.OrderBook{
		Product: product,
		Bids:    make([]schema.Order, 0, schema.BookDepth),
		Offers:  make([]schema.Order, 0, schema.BookDepth),
	}
	for i := 0; i < schema.BookDepth; i++ {
		bid, err := parseLevel(fields[1+2*i], fields[2+2*i], schema.PricingSideBid)
		if err != nil {
			return schema.OrderBook{}, err
		}
		offer, err := parseLevel(fields[1+2*schema.BookDepth+2*i], fields[2+2*schema.BookDepth+2*i], schema.PricingSideOffer)
		if err != nil {
			return schema.OrderBook{}, err
		}
		book.Bids = append(book.Bids, bid)
		book.Offers = append(book.Offers, offer)
	}
	return book, nil
}

// ParsePrice reads "id,mid,spread" with fractional prices.
func ParsePrice(reg *schema.Registry, line string) (schema.Price, error) {
	fields, err := split(line, priceFields)
	if err != nil {
		return schema.Price{}, err
	}
	product, err := reg.GetData(fields[0])
	if err != nil {
		return schema.Price{}, err
	}
	mid, err := fraction.Parse(fields[1])
	if err != nil {
		return schema.Price{}, err
	}
	spread, err := fraction.Parse(fields[2])
	if err != nil {
		return schema.Price{}, err
	}
	return schema.Price{Product: product, Mid: mid, Spread: spread}, nil
}

// ParseTrade reads "id,tradeId,price,book,quantity,side" where side 0 is a
// buy and 1 a sell.
func ParseTrade(reg *schema.Registry, line string) (schema.Trade, error) {
	fields, err := split(line, tradeFields)
	if err != nil {
		return schema.Trade{}, err
	}
	product, err := reg.GetData(fields[0])
	if err != nil {
		return schema.Trade{}, err
	}
	price, err := decimal.NewFromString(fields[2])
	if err != nil {
		return schema.Trade{}, fmt.Errorf("%w: price %q", exception.ErrMalformedRecord, fields[2])
	}
	qty, err := parseQuantity(fields[4])
	if err != nil {
		return schema.Trade{}, err
	}
	side, err := parseSide(fields[5])
	if err != nil {
		return schema.Trade{}, err
	}
	return schema.Trade{
		Product:  product,
		TradeID:  fields[1],
		Price:    price,
		Book:     fields[3],
		Quantity: qty,
		Side:     side,
	}, nil
}

// ParseInquiry reads "id,inquiryId,side,quantity". Parsed inquiries start
// RECEIVED.
func ParseInquiry(reg *schema.Registry, line string) (schema.Inquiry, error) {
	fields, err := split(line, inquiryFields)
	if err != nil {
		return schema.Inquiry{}, err
	}
	product, err := reg.GetData(fields[0])
	if err != nil {
		return schema.Inquiry{}, err
	}
	side, err := parseSide(fields[2])
	if err != nil {
		return schema.Inquiry{}, err
	}
	qty, err := parseQuantity(fields[3])
	if err != nil {
		return schema.Inquiry{}, err
	}
	return schema.Inquiry{
		InquiryID: fields[1],
		Product:   product,
		Side:      side,
		Quantity:  qty,
		Price:     decimal.Zero,
		State:     schema.InquiryStateReceived,
	}, nil
}

func split(line string, want int) ([]string, error) {
	fields := strings.Split(line, ",")
	if len(fields) != want {
		return nil, fmt.Errorf("%w: expected %d fields, got %d", exception.ErrMalformedRecord, want, len(fields))
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields, nil
}

func parseLevel(price, qty string, side schema.PricingSide) (schema.Order, error) {
	p, err := fraction.Parse(price)
	if err != nil {
		return schema.Order{}, err
	}
	q, err := parseQuantity(qty)
	if err != nil {
		return schema.Order{}, err
	}
	return schema.Order{Price: p, Quantity: q, Side: side}, nil
}

func parseQuantity(s string) (int64, error) {
	q, err := strconv.ParseInt(s, 10, 64)
	if err != nil || q < 0 {
		return 0, fmt.Errorf("%w: quantity %q", exception.ErrMalformedRecord, s)
	}
	return q, nil
}

func parseSide(s string) (schema.Side, error) {
	switch s {
	case "0", "BUY":
		return schema.SideBuy, nil
	case "1", "SELL":
		return schema.SideSell, nil
	default:
		return schema.SideUnknown, fmt.Errorf("%w: side %q", exception.ErrMalformedRecord, s)
	}
}
