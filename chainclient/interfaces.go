// Package chainclient defines the collaborator surface the core crypto
// layer depends on but never implements: submitting payment transactions
// whose note carries an envelope, waiting for confirmation, and querying
// an indexer for a peer's transaction history (spec.md §6). Grounded on
// the teacher's crypto/chain/types.go ChainProvider/ChainRegistry
// interface shape, narrowed to exactly the operations this spec's core
// needs — no chain implementation lives in this module.
package chainclient

import (
	"context"
	"time"
)

// Transaction is the subset of a chain payment transaction the core
// cares about: the address pair, the note bytes (an envelope, or
// unrelated chain traffic the caller must be prepared to ignore), and
// enough metadata to order a peer's history during discovery.
type Transaction struct {
	ID        string
	From      string
	To        string
	Note      []byte
	Amount    uint64
	Timestamp time.Time
	Confirmed bool
}

// TxParams carries the chain-specific parameters (fee, sequence/nonce,
// genesis hash, etc.) a caller needs to build and sign a transaction.
// Kept opaque here since the core never inspects it — only the chain
// client and its signer do.
type TxParams struct {
	ChainID string
	Fee     uint64
	Extra   map[string]interface{}
}

// ChainClient is the minimal surface the core message/PSK layers need to
// move envelope bytes onto the chain and learn when they land.
type ChainClient interface {
	// FetchTxParams retrieves the parameters needed to build a new
	// transaction (fee, chain id, etc.).
	FetchTxParams(ctx context.Context) (*TxParams, error)

	// SubmitPayment submits a signed payment transaction whose note is
	// exactly noteBytes (at most 1024 bytes, spec.md §3) and whose
	// amount is at least the network minimum (spec.md §6). Returns the
	// transaction id.
	SubmitPayment(ctx context.Context, to string, amount uint64, noteBytes []byte, params *TxParams) (string, error)

	// WaitForConfirmation blocks until txID is included or the deadline
	// embedded in ctx elapses, using exponential backoff with jitter
	// (spec.md §5): 0.5s initial, ×1.5 growth, 5.0s cap, ±20% jitter.
	// A cancelled or timed-out wait returns found=false, err=nil.
	WaitForConfirmation(ctx context.Context, txID string) (found bool, err error)
}

// IndexerClient queries an indexer for an address's payment history,
// used by key discovery (spec.md §4.H) and conversation reconstruction.
type IndexerClient interface {
	// PaymentsInvolving returns payment transactions (with non-empty
	// note bytes) involving address, most recent first, bounded by
	// limit. Implementations filter out non-payment transaction types.
	PaymentsInvolving(ctx context.Context, address string, limit int) ([]Transaction, error)
}
