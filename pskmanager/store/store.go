// Package store defines the persistence surface the PSK manager needs,
// and the memory/file/postgres backends that implement it (spec.md §6:
// "Persisted state layout"). Grounded on the teacher's
// crypto.KeyStorage-family interfaces (crypto/storage/memory.go,
// pkg/agent/crypto/storage/file.go) and pkg/storage/postgres's
// pgx-backed session store.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrContactNotFound is returned when a contact record has never been
// saved for the requested address.
var ErrContactNotFound = errors.New("store: contact not found")

// Contact is the persisted record identifying a PSK correspondent.
type Contact struct {
	Address    string
	StaticPub  [32]byte
	InitialPSK [32]byte
	Label      string
	CreatedAt  time.Time
}

// State is the persisted PSK ratchet state for one contact: the local
// send counter, and the receive side's high-water mark plus the set of
// individually-seen counters within the replay window (spec.md §4.E).
type State struct {
	SendCounter     uint32
	PeerLastCounter uint32
	SeenCounters    []uint32
}

// Store is the persistence surface the PSK manager depends on. Every
// method takes a context since file and Postgres implementations perform
// blocking I/O (spec.md §5: PSK manager persistence is a suspension
// point).
type Store interface {
	SaveContact(ctx context.Context, contact *Contact) error
	LoadContact(ctx context.Context, address string) (*Contact, error)
	ListContacts(ctx context.Context) ([]string, error)

	SaveState(ctx context.Context, address string, state State) error
	LoadState(ctx context.Context, address string) (State, error)
}
