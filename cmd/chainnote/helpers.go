package main

import (
	"encoding/base64"
	"fmt"

	"github.com/chainnote/e2e/identity"
	"github.com/chainnote/e2e/identitystore"
)

// loadAgreementKeyPair loads the Ed25519 identity selected by the
// persistent --identity/--identity-dir flags and derives its X25519
// key-agreement key pair.
func loadAgreementKeyPair() (*identity.AgreementKeyPair, error) {
	store, err := identitystore.New(identityDir)
	if err != nil {
		return nil, fmt.Errorf("open identity store: %w", err)
	}
	priv, err := store.Load(identityID)
	if err != nil {
		return nil, fmt.Errorf("load identity %q: %w", identityID, err)
	}
	return identity.DeriveFromEd25519PrivateKey(priv)
}

func decodeStaticPub(b64 string) ([32]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return [32]byte{}, fmt.Errorf("decode public key: %w", err)
	}
	return identity.DecodePublicKey(raw)
}
