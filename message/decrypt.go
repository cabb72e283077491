package message

import (
	"github.com/chainnote/e2e/aeadcore"
	"github.com/chainnote/e2e/ecdhutil"
	"github.com/chainnote/e2e/envelope"
	"github.com/chainnote/e2e/identity"
)

// Decrypted is the result of successfully opening a standard envelope.
type Decrypted struct {
	Filtered       bool
	Text           string
	ReplyToID      string
	ReplyToPreview string
}

// Decrypt opens a standard envelope as self. Role (sender vs. recipient)
// is detected by comparing self's static public key against the
// envelope's SenderStaticPub (spec.md §4.D step 1); each role derives a
// different key to open the same payload.
func Decrypt(self *identity.AgreementKeyPair, env *envelope.StandardEnvelope) (*Decrypted, error) {
	if _, ok := TryDecodeKeyPublish(env.Payload); ok {
		return &Decrypted{Filtered: true}, nil
	}

	var kRcv [aeadcore.KeySize]byte
	var err error

	if self.PublicKey == env.SenderStaticPub {
		kRcv, err = recoverAsSender(self, env)
	} else {
		kRcv, err = deriveAsRecipient(self, env)
	}
	if err != nil {
		return nil, err
	}

	plaintext, err := aeadcore.Open(kRcv, env.Nonce, env.Payload)
	if err != nil {
		return nil, err
	}

	decoded, err := decodePlaintext(plaintext)
	if err != nil {
		return nil, err
	}
	return &Decrypted{
		Filtered:       decoded.Filtered,
		Text:           decoded.Text,
		ReplyToID:      decoded.ReplyToID,
		ReplyToPreview: decoded.ReplyToPreview,
	}, nil
}

// deriveAsRecipient reconstructs K_rcv directly: ECDH(self_priv, e_pub)
// equals the sender's ECDH(e_priv, recipient_pub).
func deriveAsRecipient(self *identity.AgreementKeyPair, env *envelope.StandardEnvelope) ([aeadcore.KeySize]byte, error) {
	s, err := ecdhutil.X25519ECDH(self.PrivateScalar, env.EphemeralPub)
	if err != nil {
		return [aeadcore.KeySize]byte{}, err
	}
	return deriveRcvKey(s, env.SenderStaticPub, self.PublicKey)
}

// recoverAsSender reconstructs K_snd and uses it to open the sealed copy
// of K_rcv carried in the envelope, letting the original sender re-read
// their own message.
func recoverAsSender(self *identity.AgreementKeyPair, env *envelope.StandardEnvelope) ([aeadcore.KeySize]byte, error) {
	s, err := ecdhutil.X25519ECDH(self.PrivateScalar, env.EphemeralPub)
	if err != nil {
		return [aeadcore.KeySize]byte{}, err
	}
	kSnd, err := deriveSndKey(s, env.EphemeralPub, env.SenderStaticPub)
	if err != nil {
		return [aeadcore.KeySize]byte{}, err
	}
	rawKey, err := aeadcore.Open(kSnd, env.Nonce, env.SealedSenderKey[:])
	if err != nil {
		return [aeadcore.KeySize]byte{}, err
	}
	var kRcv [aeadcore.KeySize]byte
	copy(kRcv[:], rawKey)
	return kRcv, nil
}
