// Package memory is an in-process sheets.LedgerWriter for development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	ports "expensetracker/internal/sheets"
)

type Ledger struct {
	mu   sync.Mutex
	rows map[int64]ports.LedgerRow
}

func New() *Ledger {
	return &Ledger{rows: make(map[int64]ports.LedgerRow)}
}

var _ ports.LedgerWriter = (*Ledger)(nil)

func (l *Ledger) Upsert(_ context.Context, row ports.LedgerRow) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rows[row.TransactionID] = row
	return fmt.Sprintf("memory:%d", row.TransactionID), nil
}

func (l *Ledger) Remove(_ context.Context, transactionID int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.rows, transactionID)
	return nil
}

// Rows returns a snapshot ordered by transaction id.
func (l *Ledger) Rows() []ports.LedgerRow {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]ports.LedgerRow, 0, len(l.rows))
	for _, r := range l.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TransactionID < out[j].TransactionID })
	return out
}
