package inquiry

import (
	"fmt"

	"bondtrading/internal/schema"
	"bondtrading/pkg/exception"
)

// Action is what the service does with an incoming inquiry.
type Action uint8

const (
	ActionNone Action = iota
	// ActionQuote stores a new inquiry and quotes it.
	ActionQuote
	// ActionComplete closes a quoted inquiry.
	ActionComplete
)

// Transition decides how an incoming inquiry moves the negotiation. current
// is the stored state and exists reports whether the inquiry is known.
//
//	incoming  stored     result
//	RECEIVED  none       quote
//	QUOTED    QUOTED     complete
//	QUOTED    none       not found
//	anything else        invalid transition
func Transition(current schema.InquiryState, exists bool, incoming schema.InquiryState) (Action, error) {
	switch incoming {
	case schema.InquiryStateReceived:
		if !exists {
			return ActionQuote, nil
		}
	case schema.InquiryStateQuoted:
		if !exists {
			return ActionNone, exception.ErrInquiryNotFound
		}
		if current == schema.InquiryStateQuoted {
			return ActionComplete, nil
		}
	}
	if !exists {
		return ActionNone, fmt.Errorf("%w: new inquiry in state %s", exception.ErrInvalidTransition, incoming)
	}
	return ActionNone, fmt.Errorf("%w: %s -> %s", exception.ErrInvalidTransition, current, incoming)
}
