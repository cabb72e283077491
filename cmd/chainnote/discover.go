package main

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/chainnote/e2e/chainclient"
	"github.com/chainnote/e2e/discovery"
)

var (
	discoverAddress     string
	discoverSigner      string
	discoverFixturePath string
	discoverSearchDepth int
	discoverPoll        bool
	discoverTimeout     time.Duration
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Scan a peer's transaction history for a published key-agreement key",
	Long: `Run the two-pass key-publish scan of spec.md §4.H over a peer's
payment-transaction history, preferring a signed publication over an
unsigned one regardless of recency.

This module does not implement a live chain indexer (spec.md §1): point
--fixture at a JSON file of chainclient.Transaction records exported
from a real indexer, or at output captured for testing.`,
	Example: `  chainnote discover --address ABCD --signer <base64-ed25519-pubkey> --fixture txs.json`,
	RunE:    runDiscover,
}

func init() {
	discoverCmd.Flags().StringVar(&discoverAddress, "address", "", "peer address to scan")
	discoverCmd.Flags().StringVar(&discoverSigner, "signer", "", "peer's base64 Ed25519 signing public key")
	discoverCmd.Flags().StringVar(&discoverFixturePath, "fixture", "", "path to a JSON file of chainclient.Transaction records")
	discoverCmd.Flags().IntVar(&discoverSearchDepth, "search-depth", 500, "maximum number of recent transactions to scan")
	discoverCmd.Flags().BoolVar(&discoverPoll, "poll", false, "keep retrying with jittered backoff until found or --timeout elapses")
	discoverCmd.Flags().DurationVar(&discoverTimeout, "timeout", 30*time.Second, "deadline for --poll")
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	if discoverAddress == "" || discoverSigner == "" || discoverFixturePath == "" {
		return fmt.Errorf("--address, --signer, and --fixture are required")
	}

	signerRaw, err := base64.StdEncoding.DecodeString(discoverSigner)
	if err != nil {
		return fmt.Errorf("decode signer: %w", err)
	}
	if len(signerRaw) != ed25519.PublicKeySize {
		return fmt.Errorf("signer must decode to %d bytes, got %d", ed25519.PublicKeySize, len(signerRaw))
	}

	indexer, err := newFixtureIndexer(discoverFixturePath)
	if err != nil {
		return fmt.Errorf("load fixture: %w", err)
	}
	scanner := discovery.NewScanner(indexer)

	ctx := cmd.Context()
	var result *discovery.Result
	if discoverPoll {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, discoverTimeout)
		defer cancel()
		result, err = scanner.PollUntilFound(ctx, discoverAddress, ed25519.PublicKey(signerRaw), discoverSearchDepth)
	} else {
		result, err = scanner.Discover(ctx, discoverAddress, ed25519.PublicKey(signerRaw), discoverSearchDepth)
	}
	if err != nil {
		return fmt.Errorf("discover: %w", err)
	}

	fmt.Printf("Agreement public key: %s\n", base64.StdEncoding.EncodeToString(result.PublicKey[:]))
	fmt.Printf("Verified signature:   %v\n", result.IsVerified)
	return nil
}

// fixtureIndexer is a chainclient.IndexerClient backed by a static JSON
// file, standing in for a live chain indexer (spec.md §1: no chain
// client implementation lives in this module).
type fixtureIndexer struct {
	txs []chainclient.Transaction
}

func newFixtureIndexer(path string) (*fixtureIndexer, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var txs []chainclient.Transaction
	if err := json.Unmarshal(raw, &txs); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &fixtureIndexer{txs: txs}, nil
}

func (f *fixtureIndexer) PaymentsInvolving(ctx context.Context, address string, limit int) ([]chainclient.Transaction, error) {
	var out []chainclient.Transaction
	for _, tx := range f.txs {
		if tx.From != address && tx.To != address {
			continue
		}
		if len(tx.Note) == 0 {
			continue
		}
		out = append(out, tx)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}
