package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/chainnote/e2e/chainclient"
)

func writeFixture(t *testing.T, txs []chainclient.Transaction) string {
	t.Helper()
	raw, err := json.Marshal(txs)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	path := filepath.Join(t.TempDir(), "txs.json")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestFixtureIndexer_FiltersByAddressAndNote(t *testing.T) {
	path := writeFixture(t, []chainclient.Transaction{
		{ID: "1", From: "alice", To: "bob", Note: []byte("hello")},
		{ID: "2", From: "carol", To: "bob", Note: []byte("irrelevant")},
		{ID: "3", From: "alice", To: "dave", Note: nil},
	})

	idx, err := newFixtureIndexer(path)
	if err != nil {
		t.Fatalf("newFixtureIndexer: %v", err)
	}

	txs, err := idx.PaymentsInvolving(context.Background(), "alice", 10)
	if err != nil {
		t.Fatalf("PaymentsInvolving: %v", err)
	}
	if len(txs) != 1 || txs[0].ID != "1" {
		t.Fatalf("expected only tx 1 involving alice with a note, got %+v", txs)
	}
}

func TestFixtureIndexer_RespectsLimit(t *testing.T) {
	path := writeFixture(t, []chainclient.Transaction{
		{ID: "1", From: "alice", To: "bob", Note: []byte("a")},
		{ID: "2", From: "alice", To: "bob", Note: []byte("b")},
		{ID: "3", From: "alice", To: "bob", Note: []byte("c")},
	})

	idx, err := newFixtureIndexer(path)
	if err != nil {
		t.Fatalf("newFixtureIndexer: %v", err)
	}

	txs, err := idx.PaymentsInvolving(context.Background(), "alice", 2)
	if err != nil {
		t.Fatalf("PaymentsInvolving: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 txs, got %d", len(txs))
	}
}

func TestFixtureIndexer_MissingFile(t *testing.T) {
	if _, err := newFixtureIndexer(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing fixture file")
	}
}
