package algo

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	defaultOrderIDPrefix = "Order_"

	// HiddenMultiple is hidden size as a multiple of visible size.
	HiddenMultiple = 2
)

var (
	// DefaultSpreadThreshold is the widest spread, 1/128, at which the
	// execution algorithm crosses the market.
	DefaultSpreadThreshold = decimal.NewFromInt(1).Div(decimal.NewFromInt(128))

	// DefaultTiers are the visible sizes the streaming algorithm rotates through.
	DefaultTiers = []int64{1_000_000, 2_000_000}
)

// ExecutionConfig controls the execution algorithm.
type ExecutionConfig struct {
	SpreadThreshold decimal.Decimal
	OrderIDPrefix   string
}

// DefaultExecutionConfig returns the reference configuration.
func DefaultExecutionConfig() ExecutionConfig {
	return ExecutionConfig{
		SpreadThreshold: DefaultSpreadThreshold,
		OrderIDPrefix:   defaultOrderIDPrefix,
	}
}

func (c ExecutionConfig) withDefaults() ExecutionConfig {
	if c.SpreadThreshold.IsZero() {
		c.SpreadThreshold = DefaultSpreadThreshold
	}
	if c.OrderIDPrefix == "" {
		c.OrderIDPrefix = defaultOrderIDPrefix
	}
	return c
}

// Validate checks if the configuration is usable.
func (c ExecutionConfig) Validate() error {
	if c.SpreadThreshold.IsNegative() {
		return fmt.Errorf("invalid execution config: SpreadThreshold must be >= 0")
	}
	return nil
}

// StreamingConfig controls the streaming algorithm.
type StreamingConfig struct {
	Tiers []int64
}

// DefaultStreamingConfig returns the reference configuration.
func DefaultStreamingConfig() StreamingConfig {
	return StreamingConfig{Tiers: append([]int64(nil), DefaultTiers...)}
}

func (c StreamingConfig) withDefaults() StreamingConfig {
	if len(c.Tiers) == 0 {
		c.Tiers = append([]int64(nil), DefaultTiers...)
	}
	return c
}

// Validate checks if the configuration is usable.
func (c StreamingConfig) Validate() error {
	for i, tier := range c.Tiers {
		if tier <= 0 {
			return fmt.Errorf("invalid streaming config: Tiers[%d] must be > 0", i)
		}
	}
	return nil
}
