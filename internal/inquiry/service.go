// Package inquiry negotiates customer inquiries from RECEIVED through QUOTED
// to DONE.
package inquiry

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/logs"

	"bondtrading/internal/bus"
	"bondtrading/internal/schema"
	"bondtrading/pkg/exception"
)

var _ bus.Service[string, schema.Inquiry] = (*Service)(nil)

// DefaultQuotePrice is the price every inquiry is quoted at.
var DefaultQuotePrice = decimal.NewFromInt(100)

// Service holds inquiries keyed by inquiry id. Completed inquiries are
// persisted through the connector exactly once.
type Service struct {
	store      *bus.Store[string, schema.Inquiry]
	quotePrice decimal.Decimal
	persist    bus.Connector[schema.Inquiry]
}

// NewService creates an inquiry service. A zero quotePrice uses
// DefaultQuotePrice. persist may be nil.
func NewService(quotePrice decimal.Decimal, persist bus.Connector[schema.Inquiry]) *Service {
	if quotePrice.IsZero() {
		quotePrice = DefaultQuotePrice
	}
	return &Service{
		store:      bus.NewStore[string, schema.Inquiry]("inquiry"),
		quotePrice: quotePrice,
		persist:    persist,
	}
}

// OnMessage applies an incoming inquiry to the negotiation.
func (s *Service) OnMessage(inq schema.Inquiry) error {
	stored, err := s.store.GetData(inq.InquiryID)
	exists := err == nil

	action, err := Transition(stored.State, exists, inq.State)
	if err != nil {
		return fmt.Errorf("inquiry %s: %w", inq.InquiryID, err)
	}

	switch action {
	case ActionQuote:
		s.store.Put(inq.InquiryID, inq)
		return s.SendQuote(inq.InquiryID, s.quotePrice)
	case ActionComplete:
		stored.State = schema.InquiryStateDone
		s.store.Put(stored.InquiryID, stored)
		if s.persist != nil {
			if err := s.persist.Publish(stored); err != nil {
				return fmt.Errorf("persist inquiry %s: %w", stored.InquiryID, err)
			}
		}
		logs.Debugf("inquiry done, id: %s, price: %s", stored.InquiryID, stored.Price)
		return s.store.Notify(schema.EventKindUpdate, stored)
	default:
		return nil
	}
}

// SendQuote prices an inquiry and moves it to QUOTED. The first quote
// notifies add; a re-quote notifies update.
func (s *Service) SendQuote(inquiryID string, price decimal.Decimal) error {
	inq, err := s.store.GetData(inquiryID)
	if err != nil {
		return fmt.Errorf("%w: %s", exception.ErrInquiryNotFound, inquiryID)
	}
	if inq.State == schema.InquiryStateDone {
		return fmt.Errorf("%w: quote on done inquiry %s", exception.ErrInvalidTransition, inquiryID)
	}
	kind := schema.EventKindUpdate
	if inq.State != schema.InquiryStateQuoted {
		kind = schema.EventKindAdd
	}
	inq.Price = price
	inq.State = schema.InquiryStateQuoted
	s.store.Put(inquiryID, inq)
	return s.store.Notify(kind, inq)
}

func (s *Service) GetData(inquiryID string) (schema.Inquiry, error) {
	return s.store.GetData(inquiryID)
}

func (s *Service) AddListener(l bus.Listener[schema.Inquiry]) { s.store.AddListener(l) }

func (s *Service) Listeners() []bus.Listener[schema.Inquiry] { return s.store.Listeners() }

// ConfirmListener confirms every new quote by resubmitting the inquiry as
// QUOTED. The resubmission is posted to q and runs once the current dispatch
// has returned.
func (s *Service) ConfirmListener(q *bus.Queue) bus.Listener[schema.Inquiry] {
	return bus.ForwardAdds(func(inq schema.Inquiry) error {
		inq.State = schema.InquiryStateQuoted
		return q.TryPublish(func() error {
			return s.OnMessage(inq)
		})
	})
}
