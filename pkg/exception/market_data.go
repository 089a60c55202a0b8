package exception

import "fmt"

var (
	ErrProductNotFound   = fmt.Errorf("product: %w", ErrNotFound)
	ErrOrderBookNotFound = fmt.Errorf("market data: order book %w", ErrNotFound)
	ErrBookDepth         = fmt.Errorf("market data: order book depth mismatch: %w", ErrInvalidState)
	ErrZeroVolume        = fmt.Errorf("market data: zero total volume: %w", ErrInvalidState)
)
