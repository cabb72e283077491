// Package identitystore persists an account's Ed25519 signing identity
// to a local directory, the way the key material a chainnote identity's
// X25519 agreement key pair (identity.DeriveFromEd25519PrivateKey) is
// derived from must be kept across CLI invocations.
//
// Grounded on the teacher's pkg/agent/crypto/storage/file.go (file-based
// key storage: os.MkdirAll(dir, 0700), one JSON file per key ID,
// path-traversal-safe IDs), simplified to the single format this module
// needs (raw Ed25519 seed, base64-encoded) rather than JWK/PEM — there is
// only ever one key type here.
package identitystore

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidID is returned when id contains characters unsafe for
// filesystem use.
var ErrInvalidID = errors.New("identitystore: invalid id")

// ErrNotFound is returned when no identity is stored under id.
var ErrNotFound = errors.New("identitystore: identity not found")

type keyFileData struct {
	Type string `json:"type"`
	Seed string `json:"seed"` // base64 standard encoding of the 32-byte Ed25519 seed
}

// Store persists Ed25519 signing identities under a directory, one JSON
// file per id.
type Store struct {
	dir string
}

// New creates a Store rooted at dir, creating it (owner-only permissions)
// if it doesn't exist.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create identity store directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func validateID(id string) error {
	if id == "" || strings.ContainsAny(id, "/\\") || strings.Contains(id, "..") {
		return ErrInvalidID
	}
	return nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Save writes priv under id, overwriting any existing identity.
func (s *Store) Save(id string, priv ed25519.PrivateKey) error {
	if err := validateID(id); err != nil {
		return err
	}
	data := keyFileData{
		Type: "ed25519",
		Seed: base64.StdEncoding.EncodeToString(priv.Seed()),
	}
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	if err := os.WriteFile(s.path(id), raw, 0600); err != nil {
		return fmt.Errorf("write identity file: %w", err)
	}
	return nil
}

// Load reads the Ed25519 private key stored under id.
func (s *Store) Load(id string) (ed25519.PrivateKey, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(s.path(id))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read identity file: %w", err)
	}

	var data keyFileData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse identity file: %w", err)
	}
	seed, err := base64.StdEncoding.DecodeString(data.Seed)
	if err != nil {
		return nil, fmt.Errorf("decode identity seed: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("identity seed has wrong length: %d", len(seed))
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

// List returns every stored identity id, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list identity store: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".json"); ok {
			ids = append(ids, name)
		}
	}
	return ids, nil
}
