package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists contacts and ratchet state in Postgres,
// grounded on the teacher's pkg/storage/postgres/sessions.go SessionStore
// (pgxpool.Pool, parameterized queries, pgx.ErrNoRows → sentinel error
// translation).
//
// Expected schema:
//
//	CREATE TABLE psk_contacts (
//	    address     TEXT PRIMARY KEY,
//	    static_pub  BYTEA NOT NULL,
//	    initial_psk BYTEA NOT NULL,
//	    label       TEXT NOT NULL DEFAULT '',
//	    created_at  TIMESTAMPTZ NOT NULL
//	);
//	CREATE TABLE psk_states (
//	    address           TEXT PRIMARY KEY REFERENCES psk_contacts(address),
//	    send_counter      BIGINT NOT NULL,
//	    peer_last_counter BIGINT NOT NULL,
//	    seen_counters     BIGINT[] NOT NULL
//	);
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore wraps an already-connected pool.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) SaveContact(ctx context.Context, contact *Contact) error {
	const query = `
		INSERT INTO psk_contacts (address, static_pub, initial_psk, label, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (address) DO UPDATE SET
			static_pub = EXCLUDED.static_pub,
			initial_psk = EXCLUDED.initial_psk,
			label = EXCLUDED.label
	`
	_, err := s.db.Exec(ctx, query,
		contact.Address, contact.StaticPub[:], contact.InitialPSK[:], contact.Label, contact.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("save psk contact: %w", err)
	}
	return nil
}

func (s *PostgresStore) LoadContact(ctx context.Context, address string) (*Contact, error) {
	const query = `
		SELECT address, static_pub, initial_psk, label, created_at
		FROM psk_contacts WHERE address = $1
	`
	var c Contact
	var staticPub, psk []byte
	err := s.db.QueryRow(ctx, query, address).Scan(&c.Address, &staticPub, &psk, &c.Label, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrContactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load psk contact: %w", err)
	}
	copy(c.StaticPub[:], staticPub)
	copy(c.InitialPSK[:], psk)
	return &c, nil
}

func (s *PostgresStore) ListContacts(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT address FROM psk_contacts ORDER BY address`)
	if err != nil {
		return nil, fmt.Errorf("list psk contacts: %w", err)
	}
	defer rows.Close()

	var addrs []string
	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return nil, fmt.Errorf("scan psk contact address: %w", err)
		}
		addrs = append(addrs, addr)
	}
	return addrs, rows.Err()
}

func (s *PostgresStore) SaveState(ctx context.Context, address string, state State) error {
	seen := make([]int64, len(state.SeenCounters))
	for i, c := range state.SeenCounters {
		seen[i] = int64(c)
	}
	const query = `
		INSERT INTO psk_states (address, send_counter, peer_last_counter, seen_counters)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (address) DO UPDATE SET
			send_counter = EXCLUDED.send_counter,
			peer_last_counter = EXCLUDED.peer_last_counter,
			seen_counters = EXCLUDED.seen_counters
	`
	_, err := s.db.Exec(ctx, query, address, int64(state.SendCounter), int64(state.PeerLastCounter), seen)
	if err != nil {
		return fmt.Errorf("save psk state: %w", err)
	}
	return nil
}

func (s *PostgresStore) LoadState(ctx context.Context, address string) (State, error) {
	const query = `
		SELECT send_counter, peer_last_counter, seen_counters
		FROM psk_states WHERE address = $1
	`
	var sendCounter, peerLast int64
	var seen []int64
	err := s.db.QueryRow(ctx, query, address).Scan(&sendCounter, &peerLast, &seen)
	if errors.Is(err, pgx.ErrNoRows) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("load psk state: %w", err)
	}

	seenCounters := make([]uint32, len(seen))
	for i, c := range seen {
		seenCounters[i] = uint32(c)
	}
	return State{
		SendCounter:     uint32(sendCounter),
		PeerLastCounter: uint32(peerLast),
		SeenCounters:    seenCounters,
	}, nil
}

var _ Store = (*PostgresStore)(nil)
