package chainclient

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockClient is an in-memory ChainClient + IndexerClient test double: it
// stores submitted payments and serves them back through
// PaymentsInvolving, so message/pskmessage/discovery tests can exercise
// the full envelope round-trip through a fake chain without any real
// network dependency.
type MockClient struct {
	mu          sync.Mutex
	txs         []Transaction
	now         func() time.Time
	defaultFrom string
}

// NewMockClient builds an empty mock chain. now lets tests control
// transaction timestamps deterministically; pass nil to use time.Now.
func NewMockClient(now func() time.Time) *MockClient {
	if now == nil {
		now = time.Now
	}
	return &MockClient{now: now}
}

func (m *MockClient) FetchTxParams(ctx context.Context) (*TxParams, error) {
	return &TxParams{ChainID: "mock", Fee: 1}, nil
}

func (m *MockClient) SubmitPayment(ctx context.Context, to string, amount uint64, noteBytes []byte, params *TxParams) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	from := m.defaultFrom
	if from == "" {
		from = "mock-sender"
	}

	id := uuid.NewString()
	m.txs = append(m.txs, Transaction{
		ID:        id,
		From:      from,
		To:        to,
		Note:      append([]byte(nil), noteBytes...),
		Amount:    amount,
		Timestamp: m.now(),
		Confirmed: true,
	})
	return id, nil
}

func (m *MockClient) WaitForConfirmation(ctx context.Context, txID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tx := range m.txs {
		if tx.ID == txID && tx.Confirmed {
			return true, nil
		}
	}
	return false, nil
}

// PaymentsInvolving returns the mock's transactions addressed to or from
// address, most recent first, bounded by limit.
func (m *MockClient) PaymentsInvolving(ctx context.Context, address string, limit int) ([]Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []Transaction
	for i := len(m.txs) - 1; i >= 0; i-- {
		tx := m.txs[i]
		if tx.From == address || tx.To == address {
			matched = append(matched, tx)
			if limit > 0 && len(matched) >= limit {
				break
			}
		}
	}
	return matched, nil
}

// SetFrom lets tests override the synthetic "from" address used by
// SubmitPayment (e.g. to simulate a specific sender identity).
func (m *MockClient) SetFrom(from string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultFrom = from
}

var _ ChainClient = (*MockClient)(nil)
var _ IndexerClient = (*MockClient)(nil)
