package obs

import "sync/atomic"

// Sequence hands out increasing record sequence numbers, starting after seed.
type Sequence struct {
	last uint64
}

// NewSequence returns a sequence whose first value is seed+1.
func NewSequence(seed uint64) *Sequence {
	return &Sequence{last: seed}
}

// Next returns the next sequence number.
func (s *Sequence) Next() uint64 {
	if s == nil {
		return 0
	}
	return atomic.AddUint64(&s.last, 1)
}

// Last returns the most recently issued sequence number.
func (s *Sequence) Last() uint64 {
	if s == nil {
		return 0
	}
	return atomic.LoadUint64(&s.last)
}
