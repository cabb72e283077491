package store

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// FileStore persists one JSON file per contact record and one per state
// record, both with ISO-8601 timestamps and sorted keys, under a
// 0700-permission directory (spec.md §6). Grounded on the teacher's
// pkg/agent/crypto/storage/file.go fileKeyStorage (MkdirAll(0700),
// path-traversal-safe filenames, one file per record).
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates (if needed) dir with owner-only permissions and
// returns a FileStore rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create psk store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// validateAddress rejects addresses that would escape dir as a path
// component, mirroring the teacher's validateKeyID.
func validateAddress(address string) error {
	if address == "" || strings.ContainsAny(address, "/\\") || strings.Contains(address, "..") {
		return fmt.Errorf("invalid contact address: %q", address)
	}
	return nil
}

func (s *FileStore) contactPath(address string) string {
	return filepath.Join(s.dir, address+".contact.json")
}

func (s *FileStore) statePath(address string) string {
	return filepath.Join(s.dir, address+".state.json")
}

func (s *FileStore) SaveContact(ctx context.Context, contact *Contact) error {
	if err := validateAddress(contact.Address); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	obj := map[string]interface{}{
		"address":     contact.Address,
		"static_pub":  base64.StdEncoding.EncodeToString(contact.StaticPub[:]),
		"initial_psk": base64.StdEncoding.EncodeToString(contact.InitialPSK[:]),
		"label":       contact.Label,
		"created_at":  contact.CreatedAt.UTC().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal contact record: %w", err)
	}
	return os.WriteFile(s.contactPath(contact.Address), data, 0600)
}

func (s *FileStore) LoadContact(ctx context.Context, address string) (*Contact, error) {
	if err := validateAddress(address); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.contactPath(address))
	if os.IsNotExist(err) {
		return nil, ErrContactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read contact record: %w", err)
	}

	var obj struct {
		Address    string `json:"address"`
		StaticPub  string `json:"static_pub"`
		InitialPSK string `json:"initial_psk"`
		Label      string `json:"label"`
		CreatedAt  string `json:"created_at"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("unmarshal contact record: %w", err)
	}

	c := &Contact{Address: obj.Address, Label: obj.Label}
	if staticPub, err := base64.StdEncoding.DecodeString(obj.StaticPub); err == nil {
		copy(c.StaticPub[:], staticPub)
	}
	if psk, err := base64.StdEncoding.DecodeString(obj.InitialPSK); err == nil {
		copy(c.InitialPSK[:], psk)
	}
	if t, err := time.Parse(time.RFC3339, obj.CreatedAt); err == nil {
		c.CreatedAt = t
	}
	return c, nil
}

func (s *FileStore) ListContacts(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read psk store directory: %w", err)
	}
	var addrs []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".contact.json"); ok {
			addrs = append(addrs, name)
		}
	}
	sort.Strings(addrs)
	return addrs, nil
}

func (s *FileStore) SaveState(ctx context.Context, address string, state State) error {
	if err := validateAddress(address); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := append([]uint32(nil), state.SeenCounters...)
	sort.Slice(seen, func(i, j int) bool { return seen[i] < seen[j] })

	obj := map[string]interface{}{
		"send_counter":      state.SendCounter,
		"peer_last_counter": state.PeerLastCounter,
		"seen_counters":     seen,
		"updated_at":        time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state record: %w", err)
	}
	return os.WriteFile(s.statePath(address), data, 0600)
}

func (s *FileStore) LoadState(ctx context.Context, address string) (State, error) {
	if err := validateAddress(address); err != nil {
		return State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.statePath(address))
	if os.IsNotExist(err) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("read state record: %w", err)
	}

	var obj struct {
		SendCounter     uint32   `json:"send_counter"`
		PeerLastCounter uint32   `json:"peer_last_counter"`
		SeenCounters    []uint32 `json:"seen_counters"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return State{}, fmt.Errorf("unmarshal state record: %w", err)
	}
	return State{
		SendCounter:     obj.SendCounter,
		PeerLastCounter: obj.PeerLastCounter,
		SeenCounters:    obj.SeenCounters,
	}, nil
}

var _ Store = (*FileStore)(nil)
