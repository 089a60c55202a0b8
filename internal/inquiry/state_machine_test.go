package inquiry

import (
	"errors"
	"testing"

	"bondtrading/internal/schema"
	"bondtrading/pkg/exception"
)

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		name     string
		current  schema.InquiryState
		exists   bool
		incoming schema.InquiryState
		action   Action
		err      error
	}{
		{"new received", schema.InquiryStateUnknown, false, schema.InquiryStateReceived, ActionQuote, nil},
		{"confirm quoted", schema.InquiryStateQuoted, true, schema.InquiryStateQuoted, ActionComplete, nil},
		{"confirm unknown", schema.InquiryStateUnknown, false, schema.InquiryStateQuoted, ActionNone, exception.ErrNotFound},
		{"duplicate received", schema.InquiryStateQuoted, true, schema.InquiryStateReceived, ActionNone, exception.ErrInvalidState},
		{"confirm done", schema.InquiryStateDone, true, schema.InquiryStateQuoted, ActionNone, exception.ErrInvalidState},
		{"inject done", schema.InquiryStateQuoted, true, schema.InquiryStateDone, ActionNone, exception.ErrInvalidState},
		{"inject new done", schema.InquiryStateUnknown, false, schema.InquiryStateDone, ActionNone, exception.ErrInvalidState},
		{"inject unknown", schema.InquiryStateQuoted, true, schema.InquiryStateUnknown, ActionNone, exception.ErrInvalidState},
	}
	for _, tc := range cases {
		action, err := Transition(tc.current, tc.exists, tc.incoming)
		if action != tc.action {
			t.Fatalf("%s: action mismatch: got %d want %d", tc.name, action, tc.action)
		}
		if tc.err == nil && err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if tc.err != nil && !errors.Is(err, tc.err) {
			t.Fatalf("%s: error mismatch: got %v want %v", tc.name, err, tc.err)
		}
	}
}
