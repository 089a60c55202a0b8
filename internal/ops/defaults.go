package ops

// defaultProducts are the on-the-run Treasuries the desk trades.
var defaultProducts = []ProductConfig{
	{Name: "T2", ID: "91282CME8", Ticker: "T", Coupon: "4.0", Maturity: "2026-11-30", PV01: "0.019063"},
	{Name: "T3", ID: "91282CMB4", Ticker: "T", Coupon: "4.0", Maturity: "2027-12-15", PV01: "0.028002"},
	{Name: "T5", ID: "91282CMD0", Ticker: "T", Coupon: "4.0", Maturity: "2029-12-31", PV01: "0.044902"},
	{Name: "T7", ID: "91282CMC2", Ticker: "T", Coupon: "4.0", Maturity: "2031-12-31", PV01: "0.060510"},
	{Name: "T10", ID: "91282CLW9", Ticker: "T", Coupon: "4.0", Maturity: "2034-11-15", PV01: "0.081718"},
	{Name: "T20", ID: "912810UF3", Ticker: "T", Coupon: "4.0", Maturity: "2044-11-15", PV01: "0.136657"},
	{Name: "T30", ID: "912810UE6", Ticker: "T", Coupon: "4.0", Maturity: "2054-11-15", PV01: "0.173594"},
}

var defaultSectors = []SectorConfig{
	{Name: "FrontEnd", Products: []string{"T2", "T3"}},
	{Name: "Belly", Products: []string{"T5", "T7", "T10"}},
	{Name: "LongEnd", Products: []string{"T20", "T30"}},
}

const (
	defaultInputDir  = "data/input"
	defaultOutputDir = "data/output"
	defaultQueueSize = 1024
	maturityLayout   = "2006-01-02"
)

var defaultInputs = InputFiles{
	MarketData: "marketdata.txt",
	Prices:     "prices.txt",
	Trades:     "trades.txt",
	Inquiries:  "inquiries.txt",
}

var defaultOutputs = OutputFiles{
	Executions: "executions",
	Positions:  "positions",
	Risk:       "risk",
	Streaming:  "streaming",
	Inquiries:  "allinquiries",
	GUI:        "gui",
}
