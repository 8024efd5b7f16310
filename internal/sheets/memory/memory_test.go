package memory

import (
	"context"
	"testing"

	ports "expensetracker/internal/sheets"
)

func TestLedger_UpsertAndRemove(t *testing.T) {
	l := New()
	ctx := context.Background()

	if _, err := l.Upsert(ctx, ports.LedgerRow{TransactionID: 2, Amount: 10}); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Upsert(ctx, ports.LedgerRow{TransactionID: 1, Amount: 5}); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Upsert(ctx, ports.LedgerRow{TransactionID: 2, Amount: 15}); err != nil {
		t.Fatal(err)
	}

	rows := l.Rows()
	if len(rows) != 2 || rows[0].TransactionID != 1 || rows[1].Amount != 15 {
		t.Fatalf("unexpected rows %+v", rows)
	}

	if err := l.Remove(ctx, 2); err != nil {
		t.Fatal(err)
	}
	if err := l.Remove(ctx, 2); err != nil {
		t.Fatal(err)
	}
	if len(l.Rows()) != 1 {
		t.Fatalf("expected one row left, got %+v", l.Rows())
	}
}
