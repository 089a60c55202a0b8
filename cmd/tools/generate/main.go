package main

import (
	"flag"
	"os"

	"github.com/yanun0323/logs"

	"bondtrading/internal/mdg"
	"bondtrading/internal/ops"
)

func main() {
	configPath := flag.String("config", "", "Path to JSON or YAML config (empty: defaults)")
	dir := flag.String("dir", "", "Output directory for input files (default: config input dir)")
	seed := flag.Uint64("seed", 1, "Random seed")
	priceRows := flag.Int("prices", 1000, "Price rows per product")
	bookRows := flag.Int("books", 1000, "Order book rows per product")
	trades := flag.Int("trades", 10, "Trades per product")
	inquiries := flag.Int("inquiries", 10, "Inquiries per product")
	flag.Parse()

	loaded, err := ops.Load(*configPath)
	if err != nil {
		logs.Errorf("config load failed: %+v", err)
		os.Exit(1)
	}
	if *dir == "" {
		*dir = loaded.IO.InputDir
	}

	g, err := mdg.NewGenerator(mdg.Config{
		ProductIDs:          mdg.ProductIDs(loaded.Registry),
		PriceRows:           *priceRows,
		BookRows:            *bookRows,
		TradesPerProduct:    *trades,
		InquiriesPerProduct: *inquiries,
		Seed:                *seed,
	})
	if err != nil {
		logs.Errorf("generator init failed: %+v", err)
		os.Exit(1)
	}

	in := loaded.IO.Inputs
	if err := g.WriteAll(*dir, mdg.Files{
		MarketData: in.MarketData,
		Prices:     in.Prices,
		Trades:     in.Trades,
		Inquiries:  in.Inquiries,
	}); err != nil {
		logs.Errorf("generate failed: %+v", err)
		os.Exit(1)
	}
	logs.Infof("input files written, dir: %s, products: %d", *dir, loaded.Registry.Count())
}
