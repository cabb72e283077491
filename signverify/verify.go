// Package signverify checks the optional signature a key-publish
// envelope carries over its own announced key-agreement public key
// (spec.md §4.G), grounded on the teacher's crypto/keys/ed25519.go
// Sign/Verify and did/verification.go's MetadataVerifier pattern of
// checking a signature against an expected signer identity.
package signverify

import (
	"crypto/ed25519"

	"github.com/chainnote/e2e/errs"
)

// Sign produces the signature a key-publish envelope carries: the
// account's Ed25519 signing key over the raw bytes of its own
// key-agreement public key.
func Sign(signer ed25519.PrivateKey, agreementPub [32]byte) []byte {
	return ed25519.Sign(signer, agreementPub[:])
}

// Verify checks that signature is valid for agreementPub under
// expectedSigner. Any key whose signature fails this check must be
// refused, never silently treated as unsigned.
func Verify(expectedSigner ed25519.PublicKey, agreementPub [32]byte, signature []byte) error {
	if len(expectedSigner) != ed25519.PublicKeySize {
		return errs.Wrap(errs.ErrInvalidSignature, "invalid signer public key length")
	}
	if !ed25519.Verify(expectedSigner, agreementPub[:], signature) {
		return errs.ErrInvalidSignature
	}
	return nil
}
