package ratchet

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainnote/e2e/errs"
)

func TestDerivePSK_Deterministic(t *testing.T) {
	var initial [32]byte
	copy(initial[:], []byte("0123456789abcdef0123456789abcde"))

	k1, err := DerivePSK(initial, 42)
	require.NoError(t, err)
	k2, err := DerivePSK(initial, 42)
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
}

func TestDerivePSK_DifferentCounterDiffers(t *testing.T) {
	var initial [32]byte
	copy(initial[:], []byte("0123456789abcdef0123456789abcde"))

	k1, err := DerivePSK(initial, 1)
	require.NoError(t, err)
	k2, err := DerivePSK(initial, 2)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)
}

func TestSendState_AdvancesAndPersistsFirst(t *testing.T) {
	s := NewSendState(0)

	var persisted []uint32
	c0, err := s.NextSendCounter(func(next uint32) error {
		persisted = append(persisted, next)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(0), c0)
	assert.Equal(t, uint32(1), s.Counter())

	c1, err := s.NextSendCounter(func(next uint32) error { persisted = append(persisted, next); return nil })
	require.NoError(t, err)
	assert.Equal(t, uint32(1), c1)
	assert.Equal(t, []uint32{1, 2}, persisted)
}

func TestSendState_PersistFailureLeavesCacheUnchanged(t *testing.T) {
	s := NewSendState(5)
	boom := errors.New("disk full")

	_, err := s.NextSendCounter(func(next uint32) error { return boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, uint32(5), s.Counter())
}

func TestSendState_WrapsOnOverflow(t *testing.T) {
	s := NewSendState(^uint32(0))
	c, err := s.NextSendCounter(func(next uint32) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, ^uint32(0), c)
	assert.Equal(t, uint32(0), s.Counter())
}

func TestSendState_ApproachingOverflow(t *testing.T) {
	fresh := NewSendState(0)
	assert.False(t, fresh.ApproachingOverflow())

	nearEnd := NewSendState(^uint32(0) - 10)
	assert.True(t, nearEnd.ApproachingOverflow())
}

func TestReceiveState_FirstCounterAcceptedInWindow(t *testing.T) {
	r := NewReceiveState(0, nil)
	require.NoError(t, r.ValidateCounter(0))
	require.NoError(t, r.ValidateCounter(ReplayWindow))
	assert.ErrorIs(t, r.ValidateCounter(ReplayWindow+1), errs.ErrPskCounterOutOfRange)
}

func TestReceiveState_CommitAdvancesHighWaterMark(t *testing.T) {
	r := NewReceiveState(0, nil)
	require.NoError(t, r.ValidateCounter(10))
	r.RecordReceive(10)
	assert.Equal(t, uint32(10), r.PeerLastCounter())

	require.NoError(t, r.ValidateCounter(10 + ReplayWindow))
	r.RecordReceive(10 + ReplayWindow)
	assert.Equal(t, uint32(10+ReplayWindow), r.PeerLastCounter())
}

func TestReceiveState_ReplayRejected(t *testing.T) {
	r := NewReceiveState(0, nil)
	require.NoError(t, r.ValidateCounter(5))
	r.RecordReceive(5)

	assert.ErrorIs(t, r.ValidateCounter(5), errs.ErrPskCounterReplay)
}

func TestReceiveState_OutOfRangeBelowWindow(t *testing.T) {
	r := NewReceiveState(1000, nil)
	assert.ErrorIs(t, r.ValidateCounter(1000-ReplayWindow-1), errs.ErrPskCounterOutOfRange)
	require.NoError(t, r.ValidateCounter(1000-ReplayWindow))
}

func TestReceiveState_PruningBoundsSeenSet(t *testing.T) {
	r := NewReceiveState(0, nil)
	for c := uint32(0); c <= 3*ReplayWindow; c++ {
		if err := r.ValidateCounter(c); err == nil {
			r.RecordReceive(c)
		}
	}
	assert.LessOrEqual(t, len(r.seenCounters), 2*ReplayWindow+1)
}

func TestReceiveState_DecryptionFailureDoesNotBurnCounter(t *testing.T) {
	r := NewReceiveState(0, nil)
	require.NoError(t, r.ValidateCounter(7))
	// simulate: caller's AEAD open fails, so recordReceive is never called.

	require.NoError(t, r.ValidateCounter(7))
}

func TestValidateAndRecordReceive_CommitsOnlyOnSuccess(t *testing.T) {
	r := NewReceiveState(0, nil)
	boom := errors.New("bad tag")

	err := r.ValidateAndRecordReceive(3, func() error { return boom })
	require.ErrorIs(t, err, boom)
	require.NoError(t, r.ValidateCounter(3)) // not burned: still valid to try again

	require.NoError(t, r.ValidateAndRecordReceive(3, func() error { return nil }))
	assert.ErrorIs(t, r.ValidateCounter(3), errs.ErrPskCounterReplay)
}

func TestReceiveState_SnapshotRoundTrips(t *testing.T) {
	r := NewReceiveState(0, nil)
	r.RecordReceive(5)
	r.RecordReceive(9)

	peerLast, seen := r.Snapshot()
	assert.Equal(t, uint32(9), peerLast)
	assert.ElementsMatch(t, []uint32{5, 9}, seen)

	restored := NewReceiveState(peerLast, seen)
	assert.ErrorIs(t, restored.ValidateCounter(5), errs.ErrPskCounterReplay)
	require.NoError(t, restored.ValidateCounter(10))
}
