package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lotuskitchen/lotuskitchen/internal/shared"
)

// Store guards the append-only transaction ledger. Every entry passes
// through Append, which is the only write path; there is no update or
// delete anywhere in the package.
type Store struct {
	repo ListerPort
	now  func() time.Time
}

// ListerPort is the read side the store needs for queries.
type ListerPort interface {
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error)
}

// NewStore constructs a Store.
func NewStore(repo ListerPort) *Store {
	return &Store{repo: repo, now: func() time.Time { return time.Now() }}
}

// WithNow overrides the store clock for testing.
func (s *Store) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Append validates the entry, stamps id and timestamp, and persists it
// inside the caller's transaction. The total must equal the sum of line
// costs; the ledger never trusts a caller-computed total.
func (s *Store) Append(ctx context.Context, tx TxRepository, t *Transaction) error {
	if len(t.Lines) == 0 {
		return shared.Validationf("transaction requires at least one line")
	}
	var sum int64
	for _, line := range t.Lines {
		if line.Quantity <= 0 {
			return shared.Validationf("line quantity for %q must be positive", line.Name)
		}
		if line.Cost < 0 {
			return shared.Validationf("line cost for %q must not be negative", line.Name)
		}
		sum += line.Cost
	}
	if t.TotalAmount != sum {
		return shared.Validationf("transaction total %d does not match line costs %d", t.TotalAmount, sum)
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now()
	}
	return tx.InsertTransaction(ctx, *t)
}

// Query returns ledger entries matching the filter, newest first. The
// result is a plain slice so repeated calls restart from scratch.
func (s *Store) Query(ctx context.Context, filter TransactionFilter) ([]Transaction, error) {
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return nil, shared.Validationf("invalid date range: to precedes from")
	}
	return s.repo.ListTransactions(ctx, filter)
}
