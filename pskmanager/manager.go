// Package pskmanager owns the contact/state caches the PSK ratchet
// protocol needs per correspondent, and persists them through a
// pskmanager/store.Store backend. It follows spec.md §5's concurrency
// model: one critical section per contact spans read-state, persist, and
// cache-update, so concurrent next-send-counter calls on the same contact
// are serialized and the in-memory cache never diverges from what was
// durably written. The per-message PSK is derived from the issued counter
// after that critical section has ended.
//
// Grounded on the teacher's core/session/manager.go (mutex-guarded map
// manager owning per-session state), generalized from its hand-rolled
// in-flight map (crypto/rotation/rotator.go) to golang.org/x/sync's
// singleflight, which collapses concurrent cache-miss loads of the same
// contact into one store round trip.
package pskmanager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/chainnote/e2e/pskmanager/store"
	"github.com/chainnote/e2e/ratchet"
)

type contactState struct {
	contact *Contact
	send    *ratchet.SendState
	recv    *ratchet.ReceiveState
}

// Manager caches PSK contacts and their ratchet state, persisting
// through store.
type Manager struct {
	store store.Store

	mu       sync.RWMutex
	contacts map[string]*contactState

	loadGroup singleflight.Group
}

// NewManager builds a Manager backed by backend.
func NewManager(backend store.Store) *Manager {
	return &Manager{
		store:    backend,
		contacts: make(map[string]*contactState),
	}
}

// AddContact persists a new (or updated) contact record and seeds its
// cache entry with a fresh ratchet state, so a freshly-added contact
// doesn't need a round trip to storage before its first send/receive.
func (m *Manager) AddContact(ctx context.Context, c *Contact) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	rec := &store.Contact{
		Address:    c.Address,
		StaticPub:  c.StaticPub,
		InitialPSK: c.InitialPSK,
		Label:      c.Label,
		CreatedAt:  c.CreatedAt,
	}
	if err := m.store.SaveContact(ctx, rec); err != nil {
		return fmt.Errorf("save contact %s: %w", c.Address, err)
	}

	cp := *c
	cs := &contactState{
		contact: &cp,
		send:    ratchet.NewSendState(0),
		recv:    ratchet.NewReceiveState(0, nil),
	}
	m.mu.Lock()
	m.contacts[c.Address] = cs
	m.mu.Unlock()
	return nil
}

// GetContact returns the cached contact, loading it from storage on a
// cache miss.
func (m *Manager) GetContact(ctx context.Context, address string) (*Contact, error) {
	cs, err := m.load(ctx, address)
	if err != nil {
		return nil, err
	}
	cp := *cs.contact
	return &cp, nil
}

// ListContacts returns every known contact address, straight from
// storage (the cache may not yet hold every persisted contact).
func (m *Manager) ListContacts(ctx context.Context) ([]string, error) {
	return m.store.ListContacts(ctx)
}

// SendState returns the cached SendState for address and a persist
// function bound to this manager's store, suitable for passing straight
// into pskmessage.Encrypt / EncryptKeyPublish.
func (m *Manager) SendState(ctx context.Context, address string) (*ratchet.SendState, func(next uint32) error, error) {
	cs, err := m.load(ctx, address)
	if err != nil {
		return nil, nil, err
	}
	persist := func(next uint32) error {
		peerLast, seen := cs.recv.Snapshot()
		return m.store.SaveState(ctx, address, store.State{
			SendCounter:     next,
			PeerLastCounter: peerLast,
			SeenCounters:    seen,
		})
	}
	return cs.send, persist, nil
}

// ReceiveState returns the cached ReceiveState for address, for passing
// into pskmessage.Decrypt / dispatch's PSKResolver.
func (m *Manager) ReceiveState(ctx context.Context, address string) (*ratchet.ReceiveState, error) {
	cs, err := m.load(ctx, address)
	if err != nil {
		return nil, err
	}
	return cs.recv, nil
}

// PersistReceiveState writes the current receive-side state for address
// to storage. Callers invoke this after a successful
// ValidateAndRecordReceive, so state persists only once a message has
// actually been committed (spec.md §5: ratchet state is never mutated on
// a failed decryption path, and that includes never persisting on one).
func (m *Manager) PersistReceiveState(ctx context.Context, address string) error {
	cs, err := m.load(ctx, address)
	if err != nil {
		return err
	}
	peerLast, seen := cs.recv.Snapshot()
	return m.store.SaveState(ctx, address, store.State{
		SendCounter:     cs.send.Counter(),
		PeerLastCounter: peerLast,
		SeenCounters:    seen,
	})
}

// load returns the cached contactState for address, populating the
// cache from storage on a miss. Concurrent misses for the same address
// collapse into a single store round trip via singleflight.
func (m *Manager) load(ctx context.Context, address string) (*contactState, error) {
	m.mu.RLock()
	cs, ok := m.contacts[address]
	m.mu.RUnlock()
	if ok {
		return cs, nil
	}

	v, err, _ := m.loadGroup.Do(address, func() (interface{}, error) {
		m.mu.RLock()
		if cs, ok := m.contacts[address]; ok {
			m.mu.RUnlock()
			return cs, nil
		}
		m.mu.RUnlock()

		rec, err := m.store.LoadContact(ctx, address)
		if err != nil {
			return nil, err
		}
		st, err := m.store.LoadState(ctx, address)
		if err != nil {
			return nil, err
		}

		cs := &contactState{
			contact: &Contact{
				Address:    rec.Address,
				StaticPub:  rec.StaticPub,
				InitialPSK: rec.InitialPSK,
				Label:      rec.Label,
				CreatedAt:  rec.CreatedAt,
			},
			send: ratchet.NewSendState(st.SendCounter),
			recv: ratchet.NewReceiveState(st.PeerLastCounter, st.SeenCounters),
		}

		m.mu.Lock()
		m.contacts[address] = cs
		m.mu.Unlock()
		return cs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*contactState), nil
}
