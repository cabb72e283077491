// Package identity derives a Curve25519 key-agreement key pair from an
// Ed25519 signing identity, and encodes/decodes 32-byte key-agreement
// public keys.
//
// The derivation is grounded on the teacher's crypto/keys/x25519.go
// conversion helpers (convertEd25519PrivToX25519 / convertEd25519PubToX25519):
// the Ed25519 private seed is hashed with SHA-512 and clamped per
// RFC 8032 §5.1.5 to produce the X25519 scalar, and the Ed25519 public
// point is decompressed to its Montgomery-form X25519 public key with
// filippo.io/edwards25519. One mnemonic, two uses: a peer who has only the
// signing public key still cannot compute the key-agreement public key
// without it being announced on-chain.
package identity

import (
	"crypto/ed25519"
	"crypto/sha512"
	"fmt"

	"filippo.io/edwards25519"

	"github.com/chainnote/e2e/errs"
)

// PublicKeySize is the length in bytes of an encoded key-agreement public key.
const PublicKeySize = 32

// AgreementKeyPair is the X25519 key-agreement key pair derived from a
// signing identity. PrivateScalar must never be logged or persisted
// outside of the owning account's key store.
type AgreementKeyPair struct {
	PrivateScalar [32]byte
	PublicKey     [32]byte
}

// DeriveFromEd25519Seed derives a deterministic X25519 key pair from an
// Ed25519 seed. Repeated derivation from the same seed yields the same
// pair.
func DeriveFromEd25519Seed(seed []byte) (*AgreementKeyPair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, errs.Wrap(errs.ErrKeyDerivationFailed, fmt.Sprintf("seed must be %d bytes", ed25519.SeedSize))
	}

	edPriv := ed25519.NewKeyFromSeed(seed)
	edPub, ok := edPriv.Public().(ed25519.PublicKey)
	if !ok {
		return nil, errs.Wrap(errs.ErrKeyDerivationFailed, "unexpected public key type")
	}

	scalar, err := privScalarFromEd25519(edPriv)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKeyDerivationFailed, err.Error())
	}

	pub, err := pubFromEd25519(edPub)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKeyDerivationFailed, err.Error())
	}

	kp := &AgreementKeyPair{}
	copy(kp.PrivateScalar[:], scalar)
	copy(kp.PublicKey[:], pub)
	return kp, nil
}

// DeriveFromEd25519PrivateKey derives the key pair directly from a
// standard-library Ed25519 private key (e.g. the signing identity's
// existing key, rather than a raw seed).
func DeriveFromEd25519PrivateKey(priv ed25519.PrivateKey) (*AgreementKeyPair, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, errs.Wrap(errs.ErrKeyDerivationFailed, "invalid ed25519 private key length")
	}
	return DeriveFromEd25519Seed(priv.Seed())
}

// privScalarFromEd25519 implements RFC 8032 §5.1.5 clamping over the
// SHA-512 hash of the seed.
func privScalarFromEd25519(priv ed25519.PrivateKey) ([]byte, error) {
	seed := priv.Seed()
	h := sha512.Sum512(seed)
	h[0] &= 248
	h[31] &= 127
	h[31] |= 64
	out := make([]byte, 32)
	copy(out, h[:32])
	return out, nil
}

// pubFromEd25519 decompresses an Ed25519 public point and converts it to
// its Montgomery-form X25519 public key.
func pubFromEd25519(pub ed25519.PublicKey) ([]byte, error) {
	if len(pub) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("bad ed25519 public key length: %d", len(pub))
	}
	p, err := new(edwards25519.Point).SetBytes(pub)
	if err != nil {
		return nil, fmt.Errorf("invalid ed25519 public key: %w", err)
	}
	return p.BytesMontgomery(), nil
}

// EncodePublicKey returns the 32 raw bytes of a key-agreement public key.
func EncodePublicKey(pub [32]byte) []byte {
	out := make([]byte, PublicKeySize)
	copy(out, pub[:])
	return out
}

// DecodePublicKey parses a key-agreement public key from exactly 32 bytes.
func DecodePublicKey(b []byte) ([32]byte, error) {
	var out [32]byte
	if len(b) != PublicKeySize {
		return out, errs.Wrap(errs.ErrInvalidPublicKey, fmt.Sprintf("expected %d bytes, got %d", PublicKeySize, len(b)))
	}
	copy(out[:], b)
	return out, nil
}
