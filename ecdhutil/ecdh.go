// Package ecdhutil provides the X25519 ECDH primitives shared by the
// standard and PSK encryptors, grounded on the teacher's
// crypto/keys/x25519.go (DeriveSharedSecret, GenerateX25519KeyPair) —
// crypto/ecdh rather than a hand-rolled scalar multiplication.
package ecdhutil

import (
	"crypto/ecdh"
	"crypto/rand"

	"github.com/chainnote/e2e/errs"
	"github.com/chainnote/e2e/identity"
)

// X25519ECDH computes the raw X25519 shared secret between a local
// scalar and a peer's public key.
func X25519ECDH(privScalar [32]byte, peerPub [32]byte) ([]byte, error) {
	curve := ecdh.X25519()
	priv, err := curve.NewPrivateKey(privScalar[:])
	if err != nil {
		return nil, errs.Wrap(errs.ErrKeyDerivationFailed, err.Error())
	}
	pub, err := curve.NewPublicKey(peerPub[:])
	if err != nil {
		return nil, errs.Wrap(errs.ErrInvalidPublicKey, err.Error())
	}
	shared, err := priv.ECDH(pub)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKeyDerivationFailed, err.Error())
	}
	return shared, nil
}

// GenerateEphemeral produces a fresh X25519 key pair for a single message.
func GenerateEphemeral() (*identity.AgreementKeyPair, error) {
	priv, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return nil, errs.Wrap(errs.ErrRandomGenerationFailed, err.Error())
	}
	kp := &identity.AgreementKeyPair{}
	copy(kp.PrivateScalar[:], priv.Bytes())
	copy(kp.PublicKey[:], priv.PublicKey().Bytes())
	return kp, nil
}
