package ops

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bondtrading/internal/connector"
	"bondtrading/internal/schema"
)

func TestLoadDefaults(t *testing.T) {
	loaded, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7, loaded.Registry.Count())
	t10, err := loaded.Registry.GetData("91282CLW9")
	require.NoError(t, err)
	assert.True(t, t10.PV01.Equal(decimal.RequireFromString("0.081718")))
	assert.Equal(t, 2034, t10.Maturity.Year())
	assert.Equal(t, schema.IDTypeCUSIP, t10.IDType)

	require.Len(t, loaded.Sectors, 3)
	assert.Equal(t, "Belly", loaded.Sectors[1].Name)
	assert.Len(t, loaded.Sectors[1].Products, 3)

	assert.Equal(t, schema.MarketCME, loaded.Market)
	assert.Equal(t, []string{"TRSY1", "TRSY2", "TRSY3"}, loaded.Books)
	assert.Equal(t, 300*time.Millisecond, loaded.Throttle)
	assert.True(t, loaded.QuotePrice.Equal(decimal.NewFromInt(100)))
	assert.True(t, loaded.Risk.MaxAbsPV01.IsZero())
	assert.Equal(t, []int64{1_000_000, 2_000_000}, loaded.Streaming.Tiers)

	assert.Equal(t, connector.FormatCSV, loaded.IO.Format)
	assert.Equal(t, SinkFile, loaded.IO.Sink)
	assert.Equal(t, filepath.Join("data/input", "prices.txt"), loaded.IO.InputPath(loaded.IO.Inputs.Prices))
	assert.Equal(t, filepath.Join("data/output", "allinquiries.txt"), loaded.IO.OutputPath(loaded.IO.Outputs.Inquiries))
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trader.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
products:
  - name: T2
    id: 91282CME8
    ticker: T
    coupon: "4.125"
    maturity: "2026-11-30"
    pv01: "0.019063"
  - name: T30
    id: 912810UE6
    pv01: "0.173594"
sectors:
  - name: Wings
    products: [T2, 912810UE6]
algo:
  market: brokertec
  spreadThreshold: "0.00390625"
  tiers: [500000]
gui:
  throttle: 1s
risk:
  maxAbsPv01: "50000"
io:
  format: jsonl
  outputDir: /tmp/out
`), 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Registry.Count())
	require.Len(t, loaded.Sectors, 1)
	assert.Equal(t, "912810UE6", loaded.Sectors[0].Products[1].ProductID)
	assert.Equal(t, schema.MarketBrokerTec, loaded.Market)
	assert.True(t, loaded.Execution.SpreadThreshold.Equal(decimal.RequireFromString("0.00390625")))
	assert.Equal(t, []int64{500000}, loaded.Streaming.Tiers)
	assert.Equal(t, time.Second, loaded.Throttle)
	assert.True(t, loaded.Risk.MaxAbsPV01.Equal(decimal.NewFromInt(50000)))
	assert.Equal(t, "/tmp/out/gui.jsonl", loaded.IO.OutputPath(loaded.IO.Outputs.GUI))
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trader.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"gui":{"throttle":150},"trade":{"books":["A","B"]},"inquiry":{"quotePrice":"99.5"}}`), 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 150*time.Millisecond, loaded.Throttle)
	assert.Equal(t, []string{"A", "B"}, loaded.Books)
	assert.True(t, loaded.QuotePrice.Equal(decimal.RequireFromString("99.5")))
	assert.Len(t, loaded.Sectors, 3)
}

func TestResolveRejects(t *testing.T) {
	cases := map[string]FileConfig{
		"unknown sector product": {Sectors: []SectorConfig{{Name: "X", Products: []string{"NOPE"}}}},
		"bad market":             {Algo: AlgoConfig{Market: "NYSE"}},
		"bad tier":               {Algo: AlgoConfig{Tiers: []int64{0}}},
		"bad pv01":               {Products: []ProductConfig{{ID: "A", PV01: "x"}}},
		"duplicate product":      {Products: []ProductConfig{{ID: "A"}, {ID: "A"}}},
		"bad format":             {IO: IOConfig{Format: "xml"}},
		"postgres without dsn":   {IO: IOConfig{Sink: "postgres"}},
		"empty book":             {Trade: TradeConfig{Books: []string{""}}},
		"negative limit":         {Risk: RiskConfig{MaxAbsPV01: "-1"}},
		"zero spread threshold":  {Algo: AlgoConfig{SpreadThreshold: "0"}},
		"zero quote price":       {Inquiry: InquiryConfig{QuotePrice: "0.00"}},
	}
	for name, cfg := range cases {
		if _, err := Resolve(cfg); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trader.toml")
	require.NoError(t, os.WriteFile(path, []byte("x = 1"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
