package ops

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"bondtrading/internal/algo"
	"bondtrading/internal/connector"
	"bondtrading/internal/gui"
	"bondtrading/internal/inquiry"
	"bondtrading/internal/risk"
	"bondtrading/internal/schema"
	"bondtrading/internal/trade"
	"bondtrading/pkg/conn"
)

// FileConfig mirrors the config file layout. Every section is optional.
type FileConfig struct {
	Products  []ProductConfig `json:"products" yaml:"products"`
	Sectors   []SectorConfig  `json:"sectors" yaml:"sectors"`
	Algo      AlgoConfig      `json:"algo" yaml:"algo"`
	Trade     TradeConfig     `json:"trade" yaml:"trade"`
	Inquiry   InquiryConfig   `json:"inquiry" yaml:"inquiry"`
	GUI       GUIConfig       `json:"gui" yaml:"gui"`
	Risk      RiskConfig      `json:"risk" yaml:"risk"`
	IO        IOConfig        `json:"io" yaml:"io"`
	Profiling Profiling       `json:"profiling" yaml:"profiling"`
}

// ProductConfig describes one bond. Name is a short alias sectors may refer
// to.
type ProductConfig struct {
	Name     string `json:"name" yaml:"name"`
	ID       string `json:"id" yaml:"id"`
	IDType   string `json:"idType" yaml:"idType"`
	Ticker   string `json:"ticker" yaml:"ticker"`
	Coupon   string `json:"coupon" yaml:"coupon"`
	Maturity string `json:"maturity" yaml:"maturity"`
	PV01     string `json:"pv01" yaml:"pv01"`
}

// SectorConfig lists products by id or alias.
type SectorConfig struct {
	Name     string   `json:"name" yaml:"name"`
	Products []string `json:"products" yaml:"products"`
}

type AlgoConfig struct {
	SpreadThreshold string  `json:"spreadThreshold" yaml:"spreadThreshold"`
	Market          string  `json:"market" yaml:"market"`
	Tiers           []int64 `json:"tiers" yaml:"tiers"`
}

type TradeConfig struct {
	Books []string `json:"books" yaml:"books"`
}

type InquiryConfig struct {
	QuotePrice string `json:"quotePrice" yaml:"quotePrice"`
}

type GUIConfig struct {
	Throttle Duration `json:"throttle" yaml:"throttle"`
}

type RiskConfig struct {
	MaxAbsPV01 string `json:"maxAbsPv01" yaml:"maxAbsPv01"`
}

type IOConfig struct {
	InputDir  string              `json:"inputDir" yaml:"inputDir"`
	Inputs    InputFiles          `json:"inputs" yaml:"inputs"`
	OutputDir string              `json:"outputDir" yaml:"outputDir"`
	Outputs   OutputFiles         `json:"outputs" yaml:"outputs"`
	Format    string              `json:"format" yaml:"format"`
	FlushEach bool                `json:"flushEach" yaml:"flushEach"`
	Sink      string              `json:"sink" yaml:"sink"`
	QueueSize int                 `json:"queueSize" yaml:"queueSize"`
	Postgres  conn.PostgresConfig `json:"postgres" yaml:"postgres"`
}

// InputFiles are file names relative to the input directory.
type InputFiles struct {
	MarketData string `json:"marketData" yaml:"marketData"`
	Prices     string `json:"prices" yaml:"prices"`
	Trades     string `json:"trades" yaml:"trades"`
	Inquiries  string `json:"inquiries" yaml:"inquiries"`
}

// OutputFiles are base names relative to the output directory. The
// extension follows the output format.
type OutputFiles struct {
	Executions string `json:"executions" yaml:"executions"`
	Positions  string `json:"positions" yaml:"positions"`
	Risk       string `json:"risk" yaml:"risk"`
	Streaming  string `json:"streaming" yaml:"streaming"`
	Inquiries  string `json:"inquiries" yaml:"inquiries"`
	GUI        string `json:"gui" yaml:"gui"`
}

type Profiling struct {
	ServerAddress   string `json:"serverAddress" yaml:"serverAddress"`
	ApplicationName string `json:"applicationName" yaml:"applicationName"`
}

// Sink selects where historical records go.
type Sink string

const (
	SinkFile     Sink = "file"
	SinkPostgres Sink = "postgres"
	SinkBoth     Sink = "both"
)

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Registry   *schema.Registry
	Sectors    []schema.BucketedSector
	Execution  algo.ExecutionConfig
	Streaming  algo.StreamingConfig
	Market     schema.Market
	Books      []string
	QuotePrice decimal.Decimal
	Throttle   time.Duration
	Risk       risk.Config
	IO         IO
	Profiling  Profiling
}

// IO is the resolved input and output layout.
type IO struct {
	InputDir  string
	Inputs    InputFiles
	OutputDir string
	Outputs   OutputFiles
	Format    connector.Format
	FlushEach bool
	Sink      Sink
	QueueSize int
	Postgres  conn.PostgresConfig
}

// InputPath joins name onto the input directory.
func (io IO) InputPath(name string) string { return filepath.Join(io.InputDir, name) }

// OutputPath joins base and the format extension onto the output directory.
func (io IO) OutputPath(base string) string {
	return filepath.Join(io.OutputDir, base+io.Format.Ext())
}

// Load reads a JSON or YAML config file, by extension, and resolves it. An
// empty path resolves the defaults.
func Load(path string) (Loaded, error) {
	var cfg FileConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Loaded{}, err
		}
		if err := Decode(filepath.Ext(path), data, &cfg); err != nil {
			return Loaded{}, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	return Resolve(cfg)
}

// Decode unmarshals data according to the file extension.
func Decode(ext string, data []byte, cfg *FileConfig) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	case ".json", "":
		return json.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("unsupported config extension: %s", ext)
	}
}

// Resolve applies defaults and builds the registry.
func Resolve(cfg FileConfig) (Loaded, error) {
	products := cfg.Products
	if len(products) == 0 {
		products = defaultProducts
	}
	registry, aliases, err := buildRegistry(products)
	if err != nil {
		return Loaded{}, err
	}

	sectorCfg := cfg.Sectors
	if len(sectorCfg) == 0 && len(cfg.Products) == 0 {
		sectorCfg = defaultSectors
	}
	sectors := make([]schema.BucketedSector, 0, len(sectorCfg))
	for _, sc := range sectorCfg {
		ids := make([]string, 0, len(sc.Products))
		for _, ref := range sc.Products {
			if id, ok := aliases[ref]; ok {
				ref = id
			}
			ids = append(ids, ref)
		}
		sector, err := registry.Sector(sc.Name, ids...)
		if err != nil {
			return Loaded{}, fmt.Errorf("sectors: %w", err)
		}
		sectors = append(sectors, sector)
	}

	execution := algo.DefaultExecutionConfig()
	if cfg.Algo.SpreadThreshold != "" {
		if execution.SpreadThreshold, err = parseDecimal("algo.spreadThreshold", cfg.Algo.SpreadThreshold); err != nil {
			return Loaded{}, err
		}
		if !execution.SpreadThreshold.IsPositive() {
			return Loaded{}, fmt.Errorf("algo.spreadThreshold must be > 0")
		}
	}
	if err := execution.Validate(); err != nil {
		return Loaded{}, err
	}

	streaming := algo.DefaultStreamingConfig()
	if len(cfg.Algo.Tiers) != 0 {
		streaming.Tiers = append([]int64(nil), cfg.Algo.Tiers...)
	}
	if err := streaming.Validate(); err != nil {
		return Loaded{}, err
	}

	market, err := schema.ParseMarket(strings.ToUpper(cfg.Algo.Market))
	if err != nil {
		return Loaded{}, fmt.Errorf("algo.market: %w", err)
	}

	books := cfg.Trade.Books
	if len(books) == 0 {
		books = trade.DefaultBooks
	}
	for i, b := range books {
		if b == "" {
			return Loaded{}, fmt.Errorf("trade.books[%d] is empty", i)
		}
	}

	quote := inquiry.DefaultQuotePrice
	if cfg.Inquiry.QuotePrice != "" {
		if quote, err = parseDecimal("inquiry.quotePrice", cfg.Inquiry.QuotePrice); err != nil {
			return Loaded{}, err
		}
		if !quote.IsPositive() {
			return Loaded{}, fmt.Errorf("inquiry.quotePrice must be > 0")
		}
	}

	throttle := cfg.GUI.Throttle.Duration()
	if throttle == 0 {
		throttle = gui.DefaultThrottle
	}
	if throttle < 0 {
		return Loaded{}, fmt.Errorf("gui.throttle must be >= 0")
	}

	var riskCfg risk.Config
	if cfg.Risk.MaxAbsPV01 != "" {
		if riskCfg.MaxAbsPV01, err = parseDecimal("risk.maxAbsPv01", cfg.Risk.MaxAbsPV01); err != nil {
			return Loaded{}, err
		}
		if riskCfg.MaxAbsPV01.IsNegative() {
			return Loaded{}, fmt.Errorf("risk.maxAbsPv01 must be >= 0")
		}
	}

	io, err := resolveIO(cfg.IO)
	if err != nil {
		return Loaded{}, err
	}

	return Loaded{
		Registry:   registry,
		Sectors:    sectors,
		Execution:  execution,
		Streaming:  streaming,
		Market:     market,
		Books:      append([]string(nil), books...),
		QuotePrice: quote,
		Throttle:   throttle,
		Risk:       riskCfg,
		IO:         io,
		Profiling:  cfg.Profiling,
	}, nil
}

func buildRegistry(products []ProductConfig) (*schema.Registry, map[string]string, error) {
	reg := schema.NewRegistry()
	aliases := make(map[string]string, len(products))
	for i, pc := range products {
		field := fmt.Sprintf("products[%d]", i)
		idType, err := schema.ParseIDType(pc.IDType)
		if err != nil {
			return nil, nil, fmt.Errorf("%s.idType: %w", field, err)
		}
		p := schema.Product{
			ProductID: pc.ID,
			IDType:    idType,
			Type:      schema.ProductTypeBond,
			Ticker:    pc.Ticker,
		}
		if pc.Coupon != "" {
			if p.Coupon, err = parseDecimal(field+".coupon", pc.Coupon); err != nil {
				return nil, nil, err
			}
		}
		if pc.PV01 != "" {
			if p.PV01, err = parseDecimal(field+".pv01", pc.PV01); err != nil {
				return nil, nil, err
			}
		}
		if pc.Maturity != "" {
			if p.Maturity, err = time.Parse(maturityLayout, pc.Maturity); err != nil {
				return nil, nil, fmt.Errorf("%s.maturity: %w", field, err)
			}
		}
		if err := reg.Add(p); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", field, err)
		}
		if pc.Name != "" {
			aliases[pc.Name] = pc.ID
		}
	}
	return reg, aliases, nil
}

func resolveIO(cfg IOConfig) (IO, error) {
	format, err := connector.ParseFormat(cfg.Format)
	if err != nil {
		return IO{}, fmt.Errorf("io.format: %w", err)
	}

	sink := Sink(strings.ToLower(cfg.Sink))
	switch sink {
	case "":
		sink = SinkFile
	case SinkFile:
	case SinkPostgres, SinkBoth:
		if !cfg.Postgres.Enabled() {
			return IO{}, fmt.Errorf("io.postgres must be set for sink %s", sink)
		}
	default:
		return IO{}, fmt.Errorf("io.sink: unsupported sink %q", cfg.Sink)
	}

	out := IO{
		InputDir:  or(cfg.InputDir, defaultInputDir),
		OutputDir: or(cfg.OutputDir, defaultOutputDir),
		Inputs: InputFiles{
			MarketData: or(cfg.Inputs.MarketData, defaultInputs.MarketData),
			Prices:     or(cfg.Inputs.Prices, defaultInputs.Prices),
			Trades:     or(cfg.Inputs.Trades, defaultInputs.Trades),
			Inquiries:  or(cfg.Inputs.Inquiries, defaultInputs.Inquiries),
		},
		Outputs: OutputFiles{
			Executions: or(cfg.Outputs.Executions, defaultOutputs.Executions),
			Positions:  or(cfg.Outputs.Positions, defaultOutputs.Positions),
			Risk:       or(cfg.Outputs.Risk, defaultOutputs.Risk),
			Streaming:  or(cfg.Outputs.Streaming, defaultOutputs.Streaming),
			Inquiries:  or(cfg.Outputs.Inquiries, defaultOutputs.Inquiries),
			GUI:        or(cfg.Outputs.GUI, defaultOutputs.GUI),
		},
		Format:    format,
		FlushEach: cfg.FlushEach,
		Sink:      sink,
		QueueSize: cfg.QueueSize,
		Postgres:  cfg.Postgres,
	}
	if out.QueueSize <= 0 {
		out.QueueSize = defaultQueueSize
	}
	return out, nil
}

func parseDecimal(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: invalid decimal %q", field, s)
	}
	return d, nil
}

func or(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
