package exception

import "fmt"

var (
	ErrDuplicateTrade    = fmt.Errorf("trade: already booked: %w", ErrInvalidState)
	ErrInquiryNotFound   = fmt.Errorf("inquiry: %w", ErrNotFound)
	ErrInvalidTransition = fmt.Errorf("inquiry: invalid state transition: %w", ErrInvalidState)
)
