package pskmessage

import (
	"github.com/chainnote/e2e/aeadcore"
	"github.com/chainnote/e2e/ecdhutil"
	"github.com/chainnote/e2e/envelope"
	"github.com/chainnote/e2e/identity"
	"github.com/chainnote/e2e/message"
	"github.com/chainnote/e2e/ratchet"
)

// Decrypt opens a PSK envelope as self. As in message/, role is detected
// by comparing self's static public key to the envelope's
// SenderStaticPub: the sender reopens their own sealed-copy of the
// message key and never touches receiveState; the recipient runs the
// full validate-decrypt-record protocol of spec.md §4.F, so a failed
// AEAD open never burns the counter.
func Decrypt(
	self *identity.AgreementKeyPair,
	env *envelope.PskEnvelope,
	initialPSK [32]byte,
	receiveState *ratchet.ReceiveState,
) (*message.Decoded, error) {
	var plaintext []byte
	var err error

	if self.PublicKey == env.SenderStaticPub {
		plaintext, err = decryptAsSender(self, env)
		if err != nil {
			return nil, err
		}
	} else {
		plaintext, err = decryptAsRecipient(self, env, initialPSK, receiveState)
		if err != nil {
			return nil, err
		}
	}

	return message.DecodePlaintext(plaintext)
}

func decryptAsRecipient(self *identity.AgreementKeyPair, env *envelope.PskEnvelope, initialPSK [32]byte, receiveState *ratchet.ReceiveState) ([]byte, error) {
	if err := receiveState.ValidateCounter(env.Counter); err != nil {
		return nil, err
	}

	pskC, err := ratchet.DerivePSK(initialPSK, env.Counter)
	if err != nil {
		return nil, err
	}

	sRcv, err := ecdhutil.X25519ECDH(self.PrivateScalar, env.EphemeralPub)
	if err != nil {
		return nil, err
	}
	kMsg, err := deriveMessageKey(sRcv, pskC, env.SenderStaticPub, self.PublicKey)
	if err != nil {
		return nil, err
	}

	plaintext, err := aeadcore.Open(kMsg, env.Nonce, env.Payload)
	if err != nil {
		// Decryption failed: do not call RecordReceive, so the counter
		// remains available for a later, correctly-keyed attempt.
		return nil, err
	}

	receiveState.RecordReceive(env.Counter)
	return plaintext, nil
}

func decryptAsSender(self *identity.AgreementKeyPair, env *envelope.PskEnvelope) ([]byte, error) {
	sSnd, err := ecdhutil.X25519ECDH(self.PrivateScalar, env.EphemeralPub)
	if err != nil {
		return nil, err
	}
	kSnd, err := deriveSndKey(sSnd, env.EphemeralPub, env.SenderStaticPub)
	if err != nil {
		return nil, err
	}
	rawKey, err := aeadcore.Open(kSnd, env.Nonce, env.SealedSenderKey[:])
	if err != nil {
		return nil, err
	}
	var kMsg [aeadcore.KeySize]byte
	copy(kMsg[:], rawKey)

	return aeadcore.Open(kMsg, env.Nonce, env.Payload)
}
