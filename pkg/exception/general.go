package exception

import (
	"fmt"

	"github.com/yanun0323/errors"
)

// Taxonomy errors. Every error returned by the pipeline wraps one of these.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrIOFailure    = errors.New("io failure")
)

// General errors
var (
	ErrNilInstance       = errors.New("nil instance")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrMalformedRecord   = fmt.Errorf("malformed record: %w", ErrInvalidArgument)
	ErrReentrantDispatch = fmt.Errorf("service: re-entrant dispatch: %w", ErrInvalidState)
	ErrQueueFull         = fmt.Errorf("deferred queue full: %w", ErrInvalidState)
)
