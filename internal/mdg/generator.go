// Package mdg generates synthetic input files for the trading pipeline.
package mdg

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"

	"bondtrading/internal/obs"
	"bondtrading/internal/schema"
	"bondtrading/pkg/exception"
	"bondtrading/pkg/fraction"
)

const ticksPerPoint = 256

var (
	bookVolumes    = []int64{10_000_000, 20_000_000, 30_000_000, 40_000_000, 50_000_000}
	tradeVolumes   = []int64{1_000_000, 2_000_000, 3_000_000, 4_000_000, 5_000_000}
	tradePrices    = []decimal.Decimal{decimal.NewFromInt(99), decimal.NewFromInt(100)}
	tradeBooks     = []string{"TRSY1", "TRSY2", "TRSY3"}
	priceSpreads   = []int64{2, 3, 4}
	minBookSpread  = int64(2)
	maxBookSpread  = int64(8)
	bookSpreadStep = int64(2)
)

// Config controls how many rows are generated per product.
type Config struct {
	ProductIDs          []string
	PriceRows           int
	BookRows            int
	TradesPerProduct    int
	InquiriesPerProduct int
	Seed                uint64
	// LowPrice and HighPrice bound generated mids, in whole points.
	LowPrice  int64
	HighPrice int64
}

func (c Config) withDefaults() Config {
	if c.PriceRows == 0 {
		c.PriceRows = 1000
	}
	if c.BookRows == 0 {
		c.BookRows = 1000
	}
	if c.TradesPerProduct == 0 {
		c.TradesPerProduct = 10
	}
	if c.InquiriesPerProduct == 0 {
		c.InquiriesPerProduct = 10
	}
	if c.LowPrice == 0 && c.HighPrice == 0 {
		c.LowPrice, c.HighPrice = 99, 101
	}
	return c
}

func (c Config) Validate() error {
	if len(c.ProductIDs) == 0 {
		return fmt.Errorf("%w: no products to generate", exception.ErrInvalidArgument)
	}
	if c.PriceRows < 0 || c.BookRows < 0 || c.TradesPerProduct < 0 || c.InquiriesPerProduct < 0 {
		return fmt.Errorf("%w: row counts must be >= 0", exception.ErrInvalidArgument)
	}
	if c.LowPrice <= 0 || c.HighPrice <= c.LowPrice {
		return fmt.Errorf("%w: price range [%d, %d) is empty", exception.ErrInvalidArgument, c.LowPrice, c.HighPrice)
	}
	return nil
}

// ProductIDs lists the registry's products in registration order.
func ProductIDs(reg *schema.Registry) []string {
	products := reg.Products()
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ProductID)
	}
	return ids
}

// Generator writes deterministic input files for a seed.
type Generator struct {
	cfg      Config
	rng      *rand.Rand
	tradeSeq *obs.Sequence
	inqSeq   *obs.Sequence
}

func NewGenerator(cfg Config) (*Generator, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Generator{
		cfg:      cfg,
		rng:      rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		tradeSeq: obs.NewSequence(0),
		inqSeq:   obs.NewSequence(0),
	}, nil
}

// Prices writes "id,mid,spread" rows with random mids and a spread of
// 2, 3 or 4 256ths.
func (g *Generator) Prices(w io.Writer) error {
	low := g.cfg.LowPrice * ticksPerPoint
	width := (g.cfg.HighPrice - g.cfg.LowPrice) * ticksPerPoint
	return g.write(w, g.cfg.PriceRows, func(id string, _ int) string {
		mid := low + g.rng.Int64N(width)
		spread := priceSpreads[g.rng.IntN(len(priceSpreads))]
		return id + "," + ticks(mid) + "," + ticks(spread)
	})
}

// MarketData writes full-depth books. The inside spread steps 2, 4, 6, 8
// and back down in 256ths; each deeper level is one 256th wider. Level
// volumes rotate through 10mm to 50mm.
func (g *Generator) MarketData(w io.Writer) error {
	var (
		vol    int
		spread = minBookSpread
		step   = bookSpreadStep
	)
	low := g.cfg.LowPrice * ticksPerPoint
	width := (g.cfg.HighPrice-g.cfg.LowPrice)*ticksPerPoint + 1
	return g.write(w, g.cfg.BookRows, func(id string, _ int) string {
		mid := low + g.rng.Int64N(width)
		var sb strings.Builder
		sb.WriteString(id)
		for k := int64(0); k < schema.BookDepth; k++ {
			sb.WriteString("," + ticks(mid-spread/2-k) + "," + strconv.FormatInt(bookVolumes[vol], 10))
			vol = (vol + 1) % len(bookVolumes)
		}
		for k := int64(0); k < schema.BookDepth; k++ {
			sb.WriteString("," + ticks(mid+spread/2+k) + "," + strconv.FormatInt(bookVolumes[vol], 10))
			vol = (vol + 1) % len(bookVolumes)
		}

		spread += step
		if spread >= maxBookSpread || spread <= minBookSpread {
			step = -step
		}
		return sb.String()
	})
}

// Trades writes "id,tradeId,price,book,quantity,side" rows rotating price,
// book, volume and side.
func (g *Generator) Trades(w io.Writer) error {
	var i int
	return g.write(w, g.cfg.TradesPerProduct, func(id string, _ int) string {
		row := fmt.Sprintf("%s,T%08d,%s,%s,%d,%d",
			id,
			g.tradeSeq.Next(),
			tradePrices[i%len(tradePrices)].StringFixed(1),
			tradeBooks[i%len(tradeBooks)],
			tradeVolumes[i%len(tradeVolumes)],
			i%2,
		)
		i++
		return row
	})
}

// Inquiries writes "id,inquiryId,side,quantity" rows rotating side and
// volume.
func (g *Generator) Inquiries(w io.Writer) error {
	var i int
	return g.write(w, g.cfg.InquiriesPerProduct, func(id string, _ int) string {
		row := fmt.Sprintf("%s,I%08d,%d,%d", id, g.inqSeq.Next(), i%2, tradeVolumes[i%len(tradeVolumes)])
		i++
		return row
	})
}

// Files names the generated files inside a directory.
type Files struct {
	MarketData string
	Prices     string
	Trades     string
	Inquiries  string
}

// WriteAll generates every input file under dir.
func (g *Generator) WriteAll(dir string, files Files) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", exception.ErrIOFailure, errors.Wrap(err, "create input dir").With("dir", dir))
	}
	steps := []struct {
		name string
		fn   func(io.Writer) error
	}{
		{files.Prices, g.Prices},
		{files.MarketData, g.MarketData},
		{files.Trades, g.Trades},
		{files.Inquiries, g.Inquiries},
	}
	for _, step := range steps {
		if err := writeFile(filepath.Join(dir, step.name), step.fn); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) write(w io.Writer, rows int, row func(id string, n int) string) error {
	for _, id := range g.cfg.ProductIDs {
		for n := 0; n < rows; n++ {
			if _, err := io.WriteString(w, row(id, n)+"\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", exception.ErrIOFailure, errors.Wrap(err, "create input file").With("path", path))
	}
	defer f.Close()

	buf := bufio.NewWriter(f)
	if err := fn(buf); err != nil {
		return fmt.Errorf("%w: %w", exception.ErrIOFailure, errors.Wrap(err, "write input file").With("path", path))
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("%w: %w", exception.ErrIOFailure, errors.Wrap(err, "flush input file").With("path", path))
	}
	return f.Close()
}

func ticks(n int64) string { return fraction.Format(fraction.FromTicks(n)) }
