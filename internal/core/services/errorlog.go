package services

import "github.com/trblackw/teton-tracker-sub001/internal/core/domain"

// errorRing is a fixed-capacity ring buffer of poll errors. Appending
// beyond capacity evicts the oldest entry in O(1); relative order of the
// retained entries is preserved.
type errorRing struct {
	buf   []domain.PollError
	start int
	count int
}

func newErrorRing(capacity int) *errorRing {
	return &errorRing{buf: make([]domain.PollError, capacity)}
}

// Append adds an entry, evicting the oldest when full.
func (r *errorRing) Append(e domain.PollError) {
	if r.count < len(r.buf) {
		r.buf[(r.start+r.count)%len(r.buf)] = e
		r.count++
		return
	}
	r.buf[r.start] = e
	r.start = (r.start + 1) % len(r.buf)
}

// Len returns the number of retained entries.
func (r *errorRing) Len() int {
	return r.count
}

// Snapshot returns the retained entries oldest first, as a fresh slice.
func (r *errorRing) Snapshot() []domain.PollError {
	out := make([]domain.PollError, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}
