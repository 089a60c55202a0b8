package connector

import (
	"strconv"
	"time"

	"bondtrading/internal/schema"
)

// TimeLayout is the timestamp layout written at the head of every output line.
const TimeLayout = "2006-01-02 15:04:05.000000"

// Record is one output line. Columns is its csv rendering; the struct itself
// is the jsonl rendering.
type Record interface {
	Columns() []string
}

// Encoder renders a value stamped at ts.
type Encoder[V any] func(ts time.Time, v V) Record

type ExecutionRecord struct {
	Time          string `json:"time"`
	ProductID     string `json:"productId"`
	Side          string `json:"side"`
	OrderID       string `json:"orderId"`
	OrderType     string `json:"orderType"`
	Price         string `json:"price"`
	Visible       int64  `json:"visibleQuantity"`
	Hidden        int64  `json:"hiddenQuantity"`
	ParentOrderID string `json:"parentOrderId"`
	IsChild       bool   `json:"isChildOrder"`
	Market        string `json:"market"`
}

func (r ExecutionRecord) Columns() []string {
	return []string{
		r.Time, r.ProductID, r.Side, r.OrderID, r.OrderType, r.Price,
		itoa(r.Visible), itoa(r.Hidden), r.ParentOrderID, strconv.FormatBool(r.IsChild), r.Market,
	}
}

func EncodeExecution(ts time.Time, o schema.ExecutionOrder) Record {
	return ExecutionRecord{
		Time:          ts.Format(TimeLayout),
		ProductID:     o.Product.ProductID,
		Side:          o.Side.String(),
		OrderID:       o.OrderID,
		OrderType:     o.OrderType.String(),
		Price:         o.Price.String(),
		Visible:       o.VisibleQuantity,
		Hidden:        o.HiddenQuantity,
		ParentOrderID: o.ParentOrderID,
		IsChild:       o.IsChildOrder,
		Market:        o.Market.String(),
	}
}

type PositionRecord struct {
	Time      string `json:"time"`
	ProductID string `json:"productId"`
	Aggregate int64  `json:"aggregate"`
}

func (r PositionRecord) Columns() []string {
	return []string{r.Time, r.ProductID, itoa(r.Aggregate)}
}

func EncodePosition(ts time.Time, p schema.Position) Record {
	return PositionRecord{
		Time:      ts.Format(TimeLayout),
		ProductID: p.Product.ProductID,
		Aggregate: p.Aggregate(),
	}
}

type RiskRecord struct {
	Time      string `json:"time"`
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
	PV01      string `json:"pv01"`
}

func (r RiskRecord) Columns() []string {
	return []string{r.Time, r.ProductID, itoa(r.Quantity), r.PV01}
}

func EncodeRisk(ts time.Time, r schema.PV01) Record {
	return RiskRecord{
		Time:      ts.Format(TimeLayout),
		ProductID: r.Product.ProductID,
		Quantity:  r.Quantity,
		PV01:      r.PV01.String(),
	}
}

type StreamRecord struct {
	Time         string `json:"time"`
	ProductID    string `json:"productId"`
	BidPrice     string `json:"bidPrice"`
	BidVisible   int64  `json:"bidVisible"`
	BidHidden    int64  `json:"bidHidden"`
	OfferPrice   string `json:"offerPrice"`
	OfferVisible int64  `json:"offerVisible"`
	OfferHidden  int64  `json:"offerHidden"`
}

func (r StreamRecord) Columns() []string {
	return []string{
		r.Time, r.ProductID,
		r.BidPrice, itoa(r.BidVisible), itoa(r.BidHidden),
		r.OfferPrice, itoa(r.OfferVisible), itoa(r.OfferHidden),
	}
}

func EncodeStream(ts time.Time, s schema.PriceStream) Record {
	return StreamRecord{
		Time:         ts.Format(TimeLayout),
		ProductID:    s.Product.ProductID,
		BidPrice:     s.Bid.Price.String(),
		BidVisible:   s.Bid.VisibleQuantity,
		BidHidden:    s.Bid.HiddenQuantity,
		OfferPrice:   s.Offer.Price.String(),
		OfferVisible: s.Offer.VisibleQuantity,
		OfferHidden:  s.Offer.HiddenQuantity,
	}
}

type InquiryRecord struct {
	Time      string `json:"time"`
	InquiryID string `json:"inquiryId"`
	ProductID string `json:"productId"`
	Side      string `json:"side"`
	Quantity  int64  `json:"quantity"`
	Price     string `json:"price"`
	State     string `json:"state"`
}

func (r InquiryRecord) Columns() []string {
	return []string{r.Time, r.InquiryID, r.ProductID, r.Side, itoa(r.Quantity), r.Price, r.State}
}

func EncodeInquiry(ts time.Time, i schema.Inquiry) Record {
	return InquiryRecord{
		Time:      ts.Format(TimeLayout),
		InquiryID: i.InquiryID,
		ProductID: i.Product.ProductID,
		Side:      i.Side.String(),
		Quantity:  i.Quantity,
		Price:     i.Price.String(),
		State:     i.State.String(),
	}
}

type GUIRecord struct {
	Time      string `json:"time"`
	ProductID string `json:"productId"`
	Bid       string `json:"bid"`
	Offer     string `json:"offer"`
}

func (r GUIRecord) Columns() []string {
	return []string{r.Time, r.ProductID, r.Bid, r.Offer}
}

func EncodeGUI(ts time.Time, p schema.Price) Record {
	return GUIRecord{
		Time:      ts.Format(TimeLayout),
		ProductID: p.Product.ProductID,
		Bid:       p.Bid().String(),
		Offer:     p.Offer().String(),
	}
}

func itoa(v int64) string { return strconv.FormatInt(v, 10) }
