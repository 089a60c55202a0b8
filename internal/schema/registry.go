package schema

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"bondtrading/pkg/exception"
)

// IDType is the identifier scheme of a product.
type IDType uint8

const (
	IDTypeUnknown IDType = iota
	IDTypeCUSIP
	IDTypeISIN
)

func (t IDType) String() string {
	switch t {
	case IDTypeCUSIP:
		return "CUSIP"
	case IDTypeISIN:
		return "ISIN"
	default:
		return "UNKNOWN"
	}
}

// ParseIDType maps a configured name to an IDType.
func ParseIDType(s string) (IDType, error) {
	switch s {
	case "CUSIP", "cusip", "":
		return IDTypeCUSIP, nil
	case "ISIN", "isin":
		return IDTypeISIN, nil
	default:
		return IDTypeUnknown, fmt.Errorf("unsupported id type: %s", s)
	}
}

// ProductType is the asset class of a product.
type ProductType uint8

const (
	ProductTypeUnknown ProductType = iota
	ProductTypeBond
)

func (t ProductType) String() string {
	if t == ProductTypeBond {
		return "BOND"
	}
	return "UNKNOWN"
}

// Product is immutable reference data for a tradable bond.
type Product struct {
	ProductID string
	IDType    IDType
	Type      ProductType
	Ticker    string
	Coupon    decimal.Decimal
	Maturity  time.Time
	// PV01 is the price value of a basis point per unit of position.
	PV01 decimal.Decimal
}

// BucketedSector is a named group of products reported in aggregate.
type BucketedSector struct {
	Name     string
	Products []Product
}

// Registry stores product reference data. It is populated once at startup
// and read-only afterwards.
type Registry struct {
	products []Product
	byID     map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]int)}
}

// Add registers a new product.
func (r *Registry) Add(p Product) error {
	if p.ProductID == "" {
		return fmt.Errorf("product id is empty")
	}
	if _, ok := r.byID[p.ProductID]; ok {
		return fmt.Errorf("product already exists: %s", p.ProductID)
	}
	if p.Type == ProductTypeUnknown {
		p.Type = ProductTypeBond
	}
	r.byID[p.ProductID] = len(r.products)
	r.products = append(r.products, p)
	return nil
}

// GetData returns the product for an identifier.
func (r *Registry) GetData(productID string) (Product, error) {
	p, ok := r.Product(productID)
	if !ok {
		return Product{}, fmt.Errorf("%w: %s", exception.ErrProductNotFound, productID)
	}
	return p, nil
}

// Product returns the product for an identifier.
func (r *Registry) Product(productID string) (Product, bool) {
	if r == nil {
		return Product{}, false
	}
	idx, ok := r.byID[productID]
	if !ok {
		return Product{}, false
	}
	return r.products[idx], true
}

// Products returns all products in insertion order.
func (r *Registry) Products() []Product {
	if r == nil {
		return nil
	}
	out := make([]Product, len(r.products))
	copy(out, r.products)
	return out
}

// Count returns the number of registered products.
func (r *Registry) Count() int {
	if r == nil {
		return 0
	}
	return len(r.products)
}

// Sector resolves product identifiers into a bucketed sector.
func (r *Registry) Sector(name string, productIDs ...string) (BucketedSector, error) {
	if name == "" {
		return BucketedSector{}, fmt.Errorf("sector name is empty")
	}
	sector := BucketedSector{Name: name, Products: make([]Product, 0, len(productIDs))}
	for _, id := range productIDs {
		p, err := r.GetData(id)
		if err != nil {
			return BucketedSector{}, fmt.Errorf("sector %s: %w", name, err)
		}
		sector.Products = append(sector.Products, p)
	}
	return sector, nil
}
