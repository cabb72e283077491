package discovery

import (
	"context"
	"crypto/ed25519"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainnote/e2e/chainclient"
	"github.com/chainnote/e2e/errs"
	"github.com/chainnote/e2e/identity"
	"github.com/chainnote/e2e/message"
	"github.com/chainnote/e2e/signverify"
)

type announcer struct {
	edPub  ed25519.PublicKey
	edPriv ed25519.PrivateKey
	kp     *identity.AgreementKeyPair
}

func genAnnouncer(t *testing.T) *announcer {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	kp, err := identity.DeriveFromEd25519PrivateKey(priv)
	require.NoError(t, err)
	return &announcer{edPub: pub, edPriv: priv, kp: kp}
}

func unsignedKeyPublishTx(t *testing.T, a *announcer, from string, at time.Time) chainclient.Transaction {
	t.Helper()
	env, err := message.EncryptKeyPublish(a.kp, a.kp.PublicKey)
	require.NoError(t, err)
	return chainclient.Transaction{From: from, To: from, Note: env.Emit(), Timestamp: at}
}

func signedKeyPublishTx(t *testing.T, a *announcer, from string, at time.Time) chainclient.Transaction {
	t.Helper()
	sig := signverify.Sign(a.edPriv, a.kp.PublicKey)
	env, err := message.EncryptKeyPublishSigned(a.kp, a.kp.PublicKey, sig)
	require.NoError(t, err)
	return chainclient.Transaction{From: from, To: from, Note: env.Emit(), Timestamp: at}
}

func TestDiscover_SignedPreferredOverLaterUnsigned(t *testing.T) {
	const addr = "peer-address"
	p1 := genAnnouncer(t)
	p2 := genAnnouncer(t)
	p3 := genAnnouncer(t)

	now := time.Now()
	mc := chainclient.NewMockClient(func() time.Time { return now })
	mc.SetFrom(addr)

	// Oldest first on-chain: (c) unsigned P3, (b) signed P2, (a) unsigned P1.
	// MockClient.PaymentsInvolving returns most-recent-first, so submitting
	// in this order makes P1 the most recent.
	_, err := mc.SubmitPayment(context.Background(), addr, 0, unsignedKeyPublishTx(t, p3, addr, now).Note, nil)
	require.NoError(t, err)
	_, err = mc.SubmitPayment(context.Background(), addr, 0, signedKeyPublishTx(t, p2, addr, now).Note, nil)
	require.NoError(t, err)
	_, err = mc.SubmitPayment(context.Background(), addr, 0, unsignedKeyPublishTx(t, p1, addr, now).Note, nil)
	require.NoError(t, err)

	s := NewScanner(mc)
	result, err := s.Discover(context.Background(), addr, p2.edPub, 10)
	require.NoError(t, err)
	assert.Equal(t, p2.kp.PublicKey, result.PublicKey)
	assert.True(t, result.IsVerified)
}

func TestDiscover_FallsBackToUnsignedWhenNoneSigned(t *testing.T) {
	const addr = "peer-address"
	p1 := genAnnouncer(t)

	mc := chainclient.NewMockClient(nil)
	mc.SetFrom(addr)
	_, err := mc.SubmitPayment(context.Background(), addr, 0, unsignedKeyPublishTx(t, p1, addr, time.Now()).Note, nil)
	require.NoError(t, err)

	s := NewScanner(mc)
	result, err := s.Discover(context.Background(), addr, p1.edPub, 10)
	require.NoError(t, err)
	assert.Equal(t, p1.kp.PublicKey, result.PublicKey)
	assert.False(t, result.IsVerified)
}

func TestDiscover_WrongSignerNeverVerifies(t *testing.T) {
	const addr = "peer-address"
	p1 := genAnnouncer(t)
	imposter := genAnnouncer(t)

	mc := chainclient.NewMockClient(nil)
	mc.SetFrom(addr)
	_, err := mc.SubmitPayment(context.Background(), addr, 0, signedKeyPublishTx(t, p1, addr, time.Now()).Note, nil)
	require.NoError(t, err)

	s := NewScanner(mc)
	result, err := s.Discover(context.Background(), addr, imposter.edPub, 10)
	require.ErrorIs(t, err, errs.ErrPublicKeyNotFound)
	assert.Nil(t, result)
}

func TestDiscover_NotFound(t *testing.T) {
	mc := chainclient.NewMockClient(nil)
	s := NewScanner(mc)
	_, err := s.Discover(context.Background(), "nobody", nil, 10)
	assert.Error(t, err)
}

func TestDiscover_IgnoresOtherAddressesAndUnrelatedNotes(t *testing.T) {
	const addr = "peer-address"
	p1 := genAnnouncer(t)

	mc := chainclient.NewMockClient(nil)
	mc.SetFrom("someone-else")
	_, err := mc.SubmitPayment(context.Background(), "someone-else", 0, unsignedKeyPublishTx(t, p1, "someone-else", time.Now()).Note, nil)
	require.NoError(t, err)

	mc.SetFrom(addr)
	_, err = mc.SubmitPayment(context.Background(), addr, 0, []byte{0xFF, 0xFF, 0xFF}, nil)
	require.NoError(t, err)

	s := NewScanner(mc)
	_, err = s.Discover(context.Background(), addr, p1.edPub, 10)
	assert.Error(t, err)
}

func TestPollUntilFound_SucceedsOncePublished(t *testing.T) {
	const addr = "peer-address"
	p1 := genAnnouncer(t)
	mc := chainclient.NewMockClient(nil)
	s := NewScanner(mc)

	go func() {
		time.Sleep(50 * time.Millisecond)
		mc.SetFrom(addr)
		mc.SubmitPayment(context.Background(), addr, 0, unsignedKeyPublishTx(t, p1, addr, time.Now()).Note, nil)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	result, err := s.PollUntilFound(ctx, addr, p1.edPub, 10)
	require.NoError(t, err)
	assert.Equal(t, p1.kp.PublicKey, result.PublicKey)
}

func TestPollUntilFound_CancelledReturnsNotFound(t *testing.T) {
	mc := chainclient.NewMockClient(nil)
	s := NewScanner(mc)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := s.PollUntilFound(ctx, "nobody", nil, 10)
	assert.Error(t, err)
}
