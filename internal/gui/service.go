// Package gui throttles price updates before they reach a display.
package gui

import (
	"time"

	"github.com/yanun0323/logs"

	"bondtrading/internal/bus"
	"bondtrading/internal/obs"
	"bondtrading/internal/schema"
)

// DefaultThrottle is the minimum interval between two published prices.
const DefaultThrottle = 300 * time.Millisecond

var _ bus.Service[string, schema.Price] = (*Service)(nil)

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics counts dropped updates.
func WithMetrics(m *obs.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// Service forwards a price only when more than the throttle interval has
// passed since the last forwarded one. Other updates are dropped. The first
// update is always forwarded.
type Service struct {
	store    *bus.Store[string, schema.Price]
	out      bus.Connector[schema.Price]
	interval time.Duration
	now      func() time.Time
	metrics  *obs.Metrics

	last     time.Time
	accepted bool
}

// NewService creates a throttled publisher writing to out. A non-positive
// interval uses DefaultThrottle.
func NewService(interval time.Duration, out bus.Connector[schema.Price], opts ...Option) *Service {
	if interval <= 0 {
		interval = DefaultThrottle
	}
	s := &Service{
		store:    bus.NewStore[string, schema.Price]("gui"),
		out:      out,
		interval: interval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnMessage publishes p unless it arrives within the throttle interval.
func (s *Service) OnMessage(p schema.Price) error {
	now := s.now()
	if s.accepted && now.Sub(s.last) <= s.interval {
		s.metrics.IncThrottleDrop()
		logs.Debugf("gui update dropped, product: %s, elapsed: %s", p.Key(), now.Sub(s.last))
		return nil
	}
	s.accepted = true
	s.last = now

	if s.out != nil {
		if err := s.out.Publish(p); err != nil {
			return err
		}
	}
	_, err := s.store.Upsert(p.Key(), p)
	return err
}

func (s *Service) GetData(productID string) (schema.Price, error) { return s.store.GetData(productID) }

func (s *Service) AddListener(l bus.Listener[schema.Price]) { s.store.AddListener(l) }

func (s *Service) Listeners() []bus.Listener[schema.Price] { return s.store.Listeners() }

// PricingListener throttles every price add and update.
func (s *Service) PricingListener() bus.Listener[schema.Price] {
	return bus.Forward(s.OnMessage)
}
