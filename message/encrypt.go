// Package message implements the standard (non-ratcheted) encryptor and
// decryptor: ephemeral-ECDH-per-message envelopes that both the recipient
// and the sender can open, grounded on the teacher's
// crypto/keys.EncryptWithEd25519Peer/DecryptWithEd25519Peer pattern
// generalized to the spec's two-key (K_rcv, K_snd) sender-readable-copy
// design (spec.md §4.D).
package message

import (
	"github.com/chainnote/e2e/aeadcore"
	"github.com/chainnote/e2e/ecdhutil"
	"github.com/chainnote/e2e/envelope"
	"github.com/chainnote/e2e/errs"
	"github.com/chainnote/e2e/identity"
)

// Encrypt seals plaintext (or, when reply is non-nil, a structured
// {text, replyTo} payload) into a standard envelope addressed to
// recipientStaticPub, readable by both the recipient and the sender.
func Encrypt(sender *identity.AgreementKeyPair, recipientStaticPub [32]byte, text string, reply *ReplyRef) (*envelope.StandardEnvelope, error) {
	plaintext, err := encodePlaintext(text, reply)
	if err != nil {
		return nil, errs.Wrap(errs.ErrEncodingFailed, err.Error())
	}
	return encryptPlaintext(sender, recipientStaticPub, plaintext)
}

// EncryptKeyPublish builds a key-publish envelope announcing sender's
// key-agreement public key. Unlike Encrypt, the payload is carried as
// plaintext rather than AEAD-sealed: a key-publish transaction exists
// precisely so that any third party can discover the announced key
// (spec.md §4.H), and X25519 ECDH confidentiality would make that
// impossible for anyone but the announcer themselves. recipientStaticPub
// is accepted for call-site symmetry with Encrypt (a key-publish
// transaction is a self-payment, so it is normally sender.PublicKey) but
// does not affect the wire bytes.
func EncryptKeyPublish(sender *identity.AgreementKeyPair, recipientStaticPub [32]byte) (*envelope.StandardEnvelope, error) {
	return &envelope.StandardEnvelope{SenderStaticPub: sender.PublicKey, Payload: EncodeKeyPublish()}, nil
}

// EncryptKeyPublishSigned builds a key-publish envelope carrying a
// signature over the announced key-agreement public key (spec.md §4.G),
// so discovery's signed-preferred pass can verify it without needing to
// share any secret with the announcer.
func EncryptKeyPublishSigned(sender *identity.AgreementKeyPair, recipientStaticPub [32]byte, signature []byte) (*envelope.StandardEnvelope, error) {
	return &envelope.StandardEnvelope{SenderStaticPub: sender.PublicKey, Payload: EncodeKeyPublishSigned(signature)}, nil
}

func encryptPlaintext(sender *identity.AgreementKeyPair, recipientStaticPub [32]byte, plaintext []byte) (*envelope.StandardEnvelope, error) {
	if len(plaintext) > envelope.StandardPayloadBound {
		return nil, errs.NewMessageTooLarge(envelope.StandardPayloadBound)
	}

	ephemeral, err := ecdhutil.GenerateEphemeral()
	if err != nil {
		return nil, err
	}

	// Step 2-3: K_rcv = HKDF(ECDH(e_priv, recipient_pub)), bound to both
	// static identities.
	sRcv, err := ecdhutil.X25519ECDH(ephemeral.PrivateScalar, recipientStaticPub)
	if err != nil {
		return nil, err
	}
	kRcv, err := deriveRcvKey(sRcv, sender.PublicKey, recipientStaticPub)
	if err != nil {
		return nil, err
	}

	nonce, err := aeadcore.NewNonce()
	if err != nil {
		return nil, err
	}

	sealedPayload, err := aeadcore.Seal(kRcv, nonce, plaintext)
	if err != nil {
		return nil, err
	}

	// Step 4: K_snd = HKDF(ECDH(e_priv, sender_pub)), salt = e_pub, so the
	// sender can recover kRcv and read their own sent message.
	sSnd, err := ecdhutil.X25519ECDH(ephemeral.PrivateScalar, sender.PublicKey)
	if err != nil {
		return nil, err
	}
	kSnd, err := deriveSndKey(sSnd, ephemeral.PublicKey, sender.PublicKey)
	if err != nil {
		return nil, err
	}

	// Step 5: seal kRcv itself under kSnd, reusing the same nonce — safe
	// because the two seals use distinct keys (spec.md §9(c)).
	sealedKeyBytes, err := aeadcore.Seal(kSnd, nonce, kRcv[:])
	if err != nil {
		return nil, err
	}

	env := &envelope.StandardEnvelope{
		SenderStaticPub: sender.PublicKey,
		EphemeralPub:    ephemeral.PublicKey,
		Nonce:           nonce,
		Payload:         sealedPayload,
	}
	copy(env.SealedSenderKey[:], sealedKeyBytes)
	return env, nil
}
