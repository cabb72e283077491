package ratchet

import (
	"sync"

	"github.com/chainnote/e2e/errs"
)

// ReplayWindow is the half-width W of the accepted counter window around
// a peer's highest seen counter (spec.md §4.E).
const ReplayWindow = 200

// overflowWarningMargin is how close send_counter may get to wrapping
// before ApproachingOverflow reports true. Producers nearing this margin
// should consider re-keying (spec.md §4.E note on the 2^32 wrap case)
// rather than relying on wrap-around.
const overflowWarningMargin = 1 << 20

// SendState tracks the monotonically advancing send counter for one
// contact's PSK ratchet.
type SendState struct {
	mu      sync.Mutex
	counter uint32
}

// NewSendState restores send state from a persisted counter (e.g. when
// loading a contact's PSK record from storage).
func NewSendState(counter uint32) *SendState {
	return &SendState{counter: counter}
}

// Counter returns the current (not-yet-issued) send counter value.
func (s *SendState) Counter() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counter
}

// NextSendCounter implements spec.md §4.E's three-step advancement:
// read the current counter to return, compute the wrapped-around next
// value, persist it, and only then update the in-memory cache. If
// persist returns an error, the in-memory counter is left untouched so
// it cannot diverge from what was actually written to disk.
func (s *SendState) NextSendCounter(persist func(next uint32) error) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.counter
	next := current + 1 // uint32 wrap-around is intentional

	if err := persist(next); err != nil {
		return 0, err
	}
	s.counter = next
	return current, nil
}

// ApproachingOverflow reports whether the send counter is close enough
// to its 32-bit wrap point that the caller should consider re-keying
// instead of continuing to rely on wrap-around.
func (s *SendState) ApproachingOverflow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counter > ^uint32(0)-overflowWarningMargin
}

// ReceiveState tracks the replay set and high-water mark for counters
// received from one contact's PSK ratchet.
type ReceiveState struct {
	mu              sync.Mutex
	peerLastCounter uint32
	seenCounters    map[uint32]struct{}
}

// NewReceiveState restores receive state from persisted values.
func NewReceiveState(peerLastCounter uint32, seen []uint32) *ReceiveState {
	set := make(map[uint32]struct{}, len(seen))
	for _, c := range seen {
		set[c] = struct{}{}
	}
	return &ReceiveState{peerLastCounter: peerLastCounter, seenCounters: set}
}

// window returns the current [lo, hi] acceptance bounds around
// peerLastCounter. Computed in uint64 to avoid wrap-around at the edges
// of the uint32 range.
func (r *ReceiveState) window() (lo, hi uint64) {
	last := uint64(r.peerLastCounter)
	if last >= ReplayWindow {
		lo = last - ReplayWindow
	}
	hi = last + ReplayWindow
	return lo, hi
}

// ValidateCounter checks replay and window membership without mutating
// state, per spec.md §4.E's two-phase receive protocol. The caller must
// perform AEAD decryption between ValidateCounter and RecordReceive, and
// must skip RecordReceive entirely if decryption fails.
func (r *ReceiveState) ValidateCounter(c uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, seen := r.seenCounters[c]; seen {
		return errs.ErrPskCounterReplay
	}
	lo, hi := r.window()
	if uint64(c) < lo || uint64(c) > hi {
		return errs.ErrPskCounterOutOfRange
	}
	return nil
}

// RecordReceive commits counter c as accepted: it is added to the replay
// set, the high-water mark advances if c is new-highest, and entries
// that fall below the new lower bound are pruned so the replay set stays
// bounded by 2*ReplayWindow+1 entries.
func (r *ReceiveState) RecordReceive(c uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.seenCounters == nil {
		r.seenCounters = make(map[uint32]struct{})
	}
	r.seenCounters[c] = struct{}{}
	if c > r.peerLastCounter {
		r.peerLastCounter = c
	}

	lo, _ := r.window()
	for seen := range r.seenCounters {
		if uint64(seen) < lo {
			delete(r.seenCounters, seen)
		}
	}
}

// PeerLastCounter returns the highest counter accepted from this peer so far.
func (r *ReceiveState) PeerLastCounter() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.peerLastCounter
}

// Snapshot returns the state needed to persist and later restore this
// ReceiveState via NewReceiveState.
func (r *ReceiveState) Snapshot() (peerLastCounter uint32, seen []uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen = make([]uint32, 0, len(r.seenCounters))
	for c := range r.seenCounters {
		seen = append(seen, c)
	}
	return r.peerLastCounter, seen
}

// ValidateAndRecordReceive is a one-phase convenience wrapper for callers
// that decrypt eagerly and only need commit-on-success semantics (e.g.
// tests, or a decrypt function that owns both steps internally). decrypt
// is invoked only if validation passes, and RecordReceive is invoked only
// if decrypt succeeds.
func (r *ReceiveState) ValidateAndRecordReceive(c uint32, decrypt func() error) error {
	if err := r.ValidateCounter(c); err != nil {
		return err
	}
	if err := decrypt(); err != nil {
		return err
	}
	r.RecordReceive(c)
	return nil
}
