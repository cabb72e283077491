package identitystore

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadRoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	require.NoError(t, s.Save("alice", priv))

	got, err := s.Load("alice")
	require.NoError(t, err)
	assert.Equal(t, priv, got)
}

func TestLoad_NotFound(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	_, err = s.Load("nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSave_RejectsPathTraversal(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	err = s.Save("../escape", priv)
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestList_ReturnsAllIDs(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	require.NoError(t, s.Save("bob", priv))
	require.NoError(t, s.Save("alice", priv))

	ids, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, ids)
}
