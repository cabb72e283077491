// Package discovery scans a peer's on-chain transaction history for a
// published key-agreement public key (spec.md §4.H), preferring a
// signed publication over an unsigned one regardless of recency. It also
// offers a polling variant for callers that want to wait for a key that
// hasn't been published yet, using the jittered exponential backoff of
// spec.md §5, grounded on the teacher's retryWithBackoff
// (crypto/chain/ethereum/enhanced_provider.go) generalized to context
// cancellation the way did/manager.go and did/resolver.go wrap chain
// calls behind a context-aware resolver.
package discovery

import (
	"context"
	"crypto/ed25519"
	"math/rand"
	"time"

	"github.com/chainnote/e2e/chainclient"
	"github.com/chainnote/e2e/envelope"
	"github.com/chainnote/e2e/errs"
	"github.com/chainnote/e2e/message"
	"github.com/chainnote/e2e/signverify"
)

// Result is the discovered-key output of spec.md §6.
type Result struct {
	PublicKey  [32]byte
	IsVerified bool
}

// Scanner discovers a peer's key-agreement public key from their
// transaction history via an IndexerClient.
type Scanner struct {
	indexer chainclient.IndexerClient
}

// NewScanner builds a Scanner backed by indexer.
func NewScanner(indexer chainclient.IndexerClient) *Scanner {
	return &Scanner{indexer: indexer}
}

// Discover runs the two-pass scan described in spec.md §4.H over up to
// searchDepth of the peer's most recent transactions. expectedSigner is
// the Ed25519 signing identity a valid signature must verify against;
// resolving it from address is outside this module's scope (spec.md §1:
// no chain client implementation lives here).
func (s *Scanner) Discover(ctx context.Context, address string, expectedSigner ed25519.PublicKey, searchDepth int) (*Result, error) {
	txs, err := s.indexer.PaymentsInvolving(ctx, address, searchDepth)
	if err != nil {
		return nil, err
	}

	candidates := extractKeyPublishes(txs, address)

	// First pass: signed only.
	for _, c := range candidates {
		if c.signature == nil {
			continue
		}
		if signverify.Verify(expectedSigner, c.pub, c.signature) == nil {
			return &Result{PublicKey: c.pub, IsVerified: true}, nil
		}
	}

	// Second pass: envelopes without a signature at all.
	for _, c := range candidates {
		if c.signature != nil {
			continue
		}
		return &Result{PublicKey: c.pub, IsVerified: false}, nil
	}

	return nil, errs.Wrap(errs.ErrPublicKeyNotFound, address)
}

type candidate struct {
	pub       [32]byte
	signature []byte
}

// extractKeyPublishes walks txs (assumed most-recent-first, per
// IndexerClient.PaymentsInvolving) and returns every valid key-publish
// envelope authored by address, preserving order.
func extractKeyPublishes(txs []chainclient.Transaction, address string) []candidate {
	var out []candidate
	for _, tx := range txs {
		if tx.From != address {
			continue
		}
		env, err := envelope.ParseStandard(tx.Note)
		if err != nil {
			continue
		}
		decoded, ok := message.TryDecodeKeyPublish(env.Payload)
		if !ok {
			continue
		}
		out = append(out, candidate{pub: env.SenderStaticPub, signature: decoded.KeyPublishSignature})
	}
	return out
}

// Backoff parameters for PollUntilFound (spec.md §5).
const (
	backoffStart  = 500 * time.Millisecond
	backoffFactor = 1.5
	backoffCap    = 5 * time.Second
	jitterFrac    = 0.2
)

// PollUntilFound repeatedly calls Discover until it succeeds, ctx is
// cancelled, or the deadline embedded in ctx elapses, sleeping between
// attempts with jittered exponential backoff. A cancelled or timed-out
// poll returns ErrPublicKeyNotFound rather than the context's error
// (spec.md §5: "a cancelled wait returns 'not found' without raising").
// Individual-iteration errors (indexer hiccups) are swallowed; the loop
// keeps trying until the deadline.
func (s *Scanner) PollUntilFound(ctx context.Context, address string, expectedSigner ed25519.PublicKey, searchDepth int) (*Result, error) {
	delay := backoffStart
	for {
		if result, err := s.Discover(ctx, address, expectedSigner, searchDepth); err == nil {
			return result, nil
		}

		sleep := jitter(delay)
		select {
		case <-ctx.Done():
			return nil, errs.Wrap(errs.ErrPublicKeyNotFound, address)
		case <-time.After(sleep):
		}

		delay = time.Duration(float64(delay) * backoffFactor)
		if delay > backoffCap {
			delay = backoffCap
		}
	}
}

// jitter applies ±20% jitter to d.
func jitter(d time.Duration) time.Duration {
	spread := float64(d) * jitterFrac
	offset := (rand.Float64()*2 - 1) * spread
	return time.Duration(float64(d) + offset)
}
