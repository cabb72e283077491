package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_ContactRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	c := &Contact{Address: "addr1", Label: "Alice", CreatedAt: time.Now()}
	c.StaticPub[0] = 0xAB
	c.InitialPSK[0] = 0xCD
	require.NoError(t, s.SaveContact(ctx, c))

	got, err := s.LoadContact(ctx, "addr1")
	require.NoError(t, err)
	assert.Equal(t, c.Address, got.Address)
	assert.Equal(t, c.StaticPub, got.StaticPub)
	assert.Equal(t, c.InitialPSK, got.InitialPSK)
}

func TestMemoryStore_LoadMissingContact(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.LoadContact(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrContactNotFound)
}

func TestMemoryStore_ListContactsSorted(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.SaveContact(ctx, &Contact{Address: "zebra"}))
	require.NoError(t, s.SaveContact(ctx, &Contact{Address: "alpha"}))

	addrs, err := s.ListContacts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zebra"}, addrs)
}

func TestMemoryStore_StateRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	st := State{SendCounter: 3, PeerLastCounter: 7, SeenCounters: []uint32{5, 6, 7}}
	require.NoError(t, s.SaveState(ctx, "addr1", st))

	got, err := s.LoadState(ctx, "addr1")
	require.NoError(t, err)
	assert.Equal(t, st, got)
}

func TestMemoryStore_LoadMissingStateIsZeroValue(t *testing.T) {
	s := NewMemoryStore()
	got, err := s.LoadState(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, State{}, got)
}
