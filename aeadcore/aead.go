// Package aeadcore provides the authenticated-encryption primitive shared
// by the standard and PSK encryptors: ChaCha20-Poly1305 with a 12-byte
// nonce and 16-byte tag, grounded on the teacher's core/session.SecureSession
// cipher choice (golang.org/x/crypto/chacha20poly1305).
package aeadcore

import (
	"crypto/rand"
	"io"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/chainnote/e2e/errs"
)

// KeySize is the AEAD key size in bytes.
const KeySize = chacha20poly1305.KeySize

// NonceSize is the AEAD nonce size in bytes.
const NonceSize = chacha20poly1305.NonceSize

// TagSize is the AEAD authentication tag size in bytes.
const TagSize = 16

// NewNonce generates a fresh 12-byte nonce from a cryptographically
// strong source. Nonces must never be reused under the same key; callers
// that need the "same nonce, different key" pattern (message.Encrypt and
// pskmessage.Encrypt seal the payload and the sender's key copy under one
// nonce) must generate the nonce once and pass it to both Seal calls
// explicitly.
func NewNonce() ([NonceSize]byte, error) {
	var nonce [NonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nonce, errs.Wrap(errs.ErrRandomGenerationFailed, err.Error())
	}
	return nonce, nil
}

// Seal encrypts plaintext under key and nonce, returning ciphertext||tag.
func Seal(key [KeySize]byte, nonce [NonceSize]byte, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, errs.Wrap(errs.ErrEncodingFailed, err.Error())
	}
	return aead.Seal(nil, nonce[:], plaintext, nil), nil
}

// Open decrypts a ciphertext||tag block produced by Seal. It returns
// ErrDecryptionFailed on any failure (tag mismatch, truncated input,
// wrong key) without distinguishing the cause to the caller.
func Open(key [KeySize]byte, nonce [NonceSize]byte, sealed []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, errs.ErrDecryptionFailed
	}
	if len(sealed) < TagSize {
		return nil, errs.ErrDecryptionFailed
	}
	plaintext, err := aead.Open(nil, nonce[:], sealed, nil)
	if err != nil {
		return nil, errs.ErrDecryptionFailed
	}
	return plaintext, nil
}
