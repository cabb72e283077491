package message

import (
	"crypto/ed25519"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainnote/e2e/envelope"
	"github.com/chainnote/e2e/errs"
	"github.com/chainnote/e2e/identity"
)

func genIdentity(t *testing.T) *identity.AgreementKeyPair {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	kp, err := identity.DeriveFromEd25519PrivateKey(priv)
	require.NoError(t, err)
	return kp
}

func TestEncryptDecrypt_RecipientReadsPlainText(t *testing.T) {
	sender := genIdentity(t)
	recipient := genIdentity(t)

	env, err := Encrypt(sender, recipient.PublicKey, "Hello, Algorand!", nil)
	require.NoError(t, err)

	wire := env.Emit()
	parsed, err := envelope.ParseStandard(wire)
	require.NoError(t, err)

	got, err := Decrypt(recipient, parsed)
	require.NoError(t, err)
	assert.False(t, got.Filtered)
	assert.Equal(t, "Hello, Algorand!", got.Text)
}

func TestEncryptDecrypt_SenderReadsOwnMessage(t *testing.T) {
	sender := genIdentity(t)
	recipient := genIdentity(t)

	env, err := Encrypt(sender, recipient.PublicKey, "only you and I", nil)
	require.NoError(t, err)

	got, err := Decrypt(sender, env)
	require.NoError(t, err)
	assert.Equal(t, "only you and I", got.Text)
}

func TestEncryptDecrypt_SelfMessage(t *testing.T) {
	self := genIdentity(t)

	env, err := Encrypt(self, self.PublicKey, "note to self", nil)
	require.NoError(t, err)

	got, err := Decrypt(self, env)
	require.NoError(t, err)
	assert.Equal(t, "note to self", got.Text)
}

func TestDecrypt_ThirdPartyCannotRead(t *testing.T) {
	sender := genIdentity(t)
	recipient := genIdentity(t)
	eavesdropper := genIdentity(t)

	env, err := Encrypt(sender, recipient.PublicKey, "secret", nil)
	require.NoError(t, err)

	_, err = Decrypt(eavesdropper, env)
	assert.Error(t, err)
}

func TestEncrypt_MessageTooLarge(t *testing.T) {
	sender := genIdentity(t)
	recipient := genIdentity(t)

	atBound := strings.Repeat("a", envelope.StandardPayloadBound)
	_, err := Encrypt(sender, recipient.PublicKey, atBound, nil)
	require.NoError(t, err)

	overBound := strings.Repeat("a", envelope.StandardPayloadBound+1)
	_, err = Encrypt(sender, recipient.PublicKey, overBound, nil)
	require.Error(t, err)
	var tooLarge *errs.MessageTooLarge
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, envelope.StandardPayloadBound, tooLarge.MaxSize)
}

func TestEncryptDecrypt_ReplyContextTruncatesPreview(t *testing.T) {
	sender := genIdentity(t)
	recipient := genIdentity(t)

	longPreview := strings.Repeat("x", 120)
	env, err := Encrypt(sender, recipient.PublicKey, "replying", &ReplyRef{
		TxID:    "TXID123",
		Preview: longPreview,
	})
	require.NoError(t, err)

	got, err := Decrypt(recipient, env)
	require.NoError(t, err)
	assert.Equal(t, "replying", got.Text)
	assert.Equal(t, "TXID123", got.ReplyToID)
	assert.Len(t, got.ReplyToPreview, 80)
	assert.True(t, strings.HasSuffix(got.ReplyToPreview, "..."))
}

func TestEncryptDecrypt_EmptyTextReplyKeepsReplyFields(t *testing.T) {
	sender := genIdentity(t)
	recipient := genIdentity(t)

	env, err := Encrypt(sender, recipient.PublicKey, "", &ReplyRef{
		TxID:    "TXID456",
		Preview: "original message",
	})
	require.NoError(t, err)

	got, err := Decrypt(recipient, env)
	require.NoError(t, err)
	assert.Equal(t, "", got.Text)
	assert.Equal(t, "TXID456", got.ReplyToID)
	assert.Equal(t, "original message", got.ReplyToPreview)
}

func TestEncryptDecrypt_KeyPublishIsFiltered(t *testing.T) {
	sender := genIdentity(t)
	recipient := genIdentity(t)

	env, err := EncryptKeyPublish(sender, recipient.PublicKey)
	require.NoError(t, err)

	got, err := Decrypt(recipient, env)
	require.NoError(t, err)
	assert.True(t, got.Filtered)
	assert.Empty(t, got.Text)
}

func TestDecrypt_TamperedPayloadFails(t *testing.T) {
	sender := genIdentity(t)
	recipient := genIdentity(t)

	env, err := Encrypt(sender, recipient.PublicKey, "hello", nil)
	require.NoError(t, err)
	env.Payload[0] ^= 0x01

	_, err = Decrypt(recipient, env)
	assert.ErrorIs(t, err, errs.ErrDecryptionFailed)
}

func TestEncrypt_DifferentMessagesDifferentEnvelopes(t *testing.T) {
	sender := genIdentity(t)
	recipient := genIdentity(t)

	env1, err := Encrypt(sender, recipient.PublicKey, "same text", nil)
	require.NoError(t, err)
	env2, err := Encrypt(sender, recipient.PublicKey, "same text", nil)
	require.NoError(t, err)

	assert.NotEqual(t, env1.EphemeralPub, env2.EphemeralPub)
	assert.NotEqual(t, env1.Nonce, env2.Nonce)
	assert.NotEqual(t, env1.Payload, env2.Payload)
}
