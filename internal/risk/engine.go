package risk

import (
	"github.com/shopspring/decimal"
	"github.com/yanun0323/logs"

	"bondtrading/internal/bus"
	"bondtrading/internal/obs"
	"bondtrading/internal/schema"
)

var _ bus.Service[string, schema.PV01] = (*Service)(nil)

// Config defines optional risk limits.
type Config struct {
	// MaxAbsPV01 bounds the absolute PV01 of a single product. Zero disables
	// the check. A breach is reported but never blocks the update.
	MaxAbsPV01 decimal.Decimal
}

// Service derives PV01 risk from positions, keyed by product.
type Service struct {
	store   *bus.Store[string, schema.PV01]
	cfg     Config
	metrics *obs.Metrics
}

// NewService creates an empty risk service. metrics may be nil.
func NewService(cfg Config, metrics *obs.Metrics) *Service {
	return &Service{
		store:   bus.NewStore[string, schema.PV01]("risk"),
		cfg:     cfg,
		metrics: metrics,
	}
}

// AddPosition recomputes the risk of a position's product and notifies
// listeners.
func (s *Service) AddPosition(pos schema.Position) error {
	qty := pos.Aggregate()
	return s.OnMessage(schema.PV01{
		Product:  pos.Product,
		PV01:     pos.Product.PV01.Mul(decimal.NewFromInt(qty)),
		Quantity: qty,
	})
}

// OnMessage records the risk of a product.
func (s *Service) OnMessage(r schema.PV01) error {
	s.checkLimit(r)
	_, err := s.store.Upsert(r.Key(), r)
	return err
}

func (s *Service) GetData(productID string) (schema.PV01, error) { return s.store.GetData(productID) }

func (s *Service) AddListener(l bus.Listener[schema.PV01]) { s.store.AddListener(l) }

func (s *Service) Listeners() []bus.Listener[schema.PV01] { return s.store.Listeners() }

// GetBucketedRisk sums PV01 and quantity over the sector's products. Products
// without recorded risk are skipped.
func (s *Service) GetBucketedRisk(sector schema.BucketedSector) schema.SectorPV01 {
	out := schema.SectorPV01{Sector: sector, PV01: decimal.Zero}
	for _, p := range sector.Products {
		r, err := s.store.GetData(p.ProductID)
		if err != nil {
			continue
		}
		out.PV01 = out.PV01.Add(r.PV01)
		out.Quantity += r.Quantity
	}
	return out
}

// PositionListener recomputes risk on every position add and update.
func (s *Service) PositionListener() bus.Listener[schema.Position] {
	return bus.Forward(s.AddPosition)
}

func (s *Service) checkLimit(r schema.PV01) {
	if !s.cfg.MaxAbsPV01.IsPositive() || r.PV01.Abs().LessThanOrEqual(s.cfg.MaxAbsPV01) {
		return
	}
	s.metrics.IncRiskBreach()
	logs.Warnf("pv01 limit breached, product: %s, pv01: %s, limit: %s", r.Product.ProductID, r.PV01, s.cfg.MaxAbsPV01)
}
