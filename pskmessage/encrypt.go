// Package pskmessage implements the PSK-ratcheted encryptor/decryptor
// (spec.md §4.F): a hybrid of one-time ephemeral ECDH (as in message/)
// and a counter-indexed pre-shared key (ratchet/), so the channel stays
// secure if either secret alone leaks. Grounded the same way as
// message/, combined with ratchet/'s counter state machine.
package pskmessage

import (
	"github.com/chainnote/e2e/aeadcore"
	"github.com/chainnote/e2e/ecdhutil"
	"github.com/chainnote/e2e/envelope"
	"github.com/chainnote/e2e/errs"
	"github.com/chainnote/e2e/identity"
	"github.com/chainnote/e2e/message"
	"github.com/chainnote/e2e/ratchet"
)

// Encrypt seals text (or a structured reply payload) into a PSK
// envelope. It draws the next send counter from sendState (persisting it
// via persist before the in-memory counter advances), derives PSK_c for
// that counter, and combines it with a fresh ephemeral ECDH secret.
func Encrypt(
	sender *identity.AgreementKeyPair,
	recipientStaticPub [32]byte,
	initialPSK [32]byte,
	sendState *ratchet.SendState,
	persist func(next uint32) error,
	text string,
	reply *message.ReplyRef,
) (*envelope.PskEnvelope, error) {
	plaintext, err := message.EncodePlaintext(text, reply)
	if err != nil {
		return nil, errs.Wrap(errs.ErrEncodingFailed, err.Error())
	}
	return encryptPlaintext(sender, recipientStaticPub, initialPSK, sendState, persist, plaintext)
}

// EncryptKeyPublish seals the reserved key-publish marker into a PSK
// envelope (rarely used — key-publish envelopes are normally standard
// envelopes so any peer can discover them without sharing a PSK first,
// but the ratcheted form is available for contacts that have already
// exchanged a PSK).
func EncryptKeyPublish(
	sender *identity.AgreementKeyPair,
	recipientStaticPub [32]byte,
	initialPSK [32]byte,
	sendState *ratchet.SendState,
	persist func(next uint32) error,
) (*envelope.PskEnvelope, error) {
	return encryptPlaintext(sender, recipientStaticPub, initialPSK, sendState, persist, message.EncodeKeyPublish())
}

func encryptPlaintext(
	sender *identity.AgreementKeyPair,
	recipientStaticPub [32]byte,
	initialPSK [32]byte,
	sendState *ratchet.SendState,
	persist func(next uint32) error,
	plaintext []byte,
) (*envelope.PskEnvelope, error) {
	if len(plaintext) > envelope.PSKPayloadBound {
		return nil, errs.NewMessageTooLarge(envelope.PSKPayloadBound)
	}

	counter, err := sendState.NextSendCounter(persist)
	if err != nil {
		return nil, err
	}

	pskC, err := ratchet.DerivePSK(initialPSK, counter)
	if err != nil {
		return nil, err
	}

	ephemeral, err := ecdhutil.GenerateEphemeral()
	if err != nil {
		return nil, err
	}

	sRcv, err := ecdhutil.X25519ECDH(ephemeral.PrivateScalar, recipientStaticPub)
	if err != nil {
		return nil, err
	}
	kMsg, err := deriveMessageKey(sRcv, pskC, sender.PublicKey, recipientStaticPub)
	if err != nil {
		return nil, err
	}

	nonce, err := aeadcore.NewNonce()
	if err != nil {
		return nil, err
	}

	sealedPayload, err := aeadcore.Seal(kMsg, nonce, plaintext)
	if err != nil {
		return nil, err
	}

	sSnd, err := ecdhutil.X25519ECDH(ephemeral.PrivateScalar, sender.PublicKey)
	if err != nil {
		return nil, err
	}
	kSnd, err := deriveSndKey(sSnd, ephemeral.PublicKey, sender.PublicKey)
	if err != nil {
		return nil, err
	}
	sealedKeyBytes, err := aeadcore.Seal(kSnd, nonce, kMsg[:])
	if err != nil {
		return nil, err
	}

	env := &envelope.PskEnvelope{
		Counter:         counter,
		SenderStaticPub: sender.PublicKey,
		EphemeralPub:    ephemeral.PublicKey,
		Nonce:           nonce,
		Payload:         sealedPayload,
	}
	copy(env.SealedSenderKey[:], sealedKeyBytes)
	return env, nil
}
