package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	goption "google.golang.org/api/option"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
	ports "expensetracker/internal/sheets"
)

// fakeSheets serves the subset of the Sheets values API the client uses.
type fakeSheets struct {
	mu      sync.Mutex
	column  [][]any
	updates []string
	clears  []string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	switch {
	case r.Method == http.MethodGet:
		json.NewEncoder(w).Encode(map[string]any{"values": f.column})
	case r.Method == http.MethodPut:
		f.updates = append(f.updates, path[strings.LastIndex(path, "/")+1:])
		json.NewEncoder(w).Encode(map[string]any{})
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":clear"):
		f.clears = append(f.clears, path)
		json.NewEncoder(w).Encode(map[string]any{})
	default:
		http.Error(w, "unexpected "+r.Method+" "+path, http.StatusBadRequest)
	}
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), Options{
		SpreadsheetID: "sheet-id",
		SheetName:     "Ledger",
		ClientOptions: []goption.ClientOption{
			goption.WithEndpoint(srv.URL + "/"),
			goption.WithoutAuthentication(),
		},
	}, log.Discard())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func testRow(id int64) ports.LedgerRow {
	return ports.LedgerRow{
		TransactionID: id,
		Date:          core.NewDate(2025, 6, 1),
		Category:      "🍔 Food",
		Type:          core.Expense,
		Amount:        20,
	}
}

func TestNew_RequiresSettings(t *testing.T) {
	if _, err := New(context.Background(), Options{SheetName: "Ledger"}, log.Discard()); err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
	if _, err := New(context.Background(), Options{SpreadsheetID: "x", SheetName: "Ledger"}, log.Discard()); err == nil {
		t.Fatal("expected error for missing credentials")
	}
}

func TestFindRow(t *testing.T) {
	values := [][]any{{"ID"}, {"3"}, {}, {" 7 "}}
	if got := findRow(values, 7); got != 4 {
		t.Fatalf("expected row 4, got %d", got)
	}
	if got := findRow(values, 9); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestUpsert_WritesHeaderOnEmptySheet(t *testing.T) {
	fake := &fakeSheets{}
	c := newTestClient(t, fake)

	ref, err := c.Upsert(context.Background(), testRow(1))
	if err != nil {
		t.Fatal(err)
	}
	if ref != "Ledger!A2:F2" {
		t.Fatalf("unexpected ref %q", ref)
	}
	if len(fake.updates) != 2 || !strings.Contains(fake.updates[0], "A1:F1") {
		t.Fatalf("expected header then row, got %v", fake.updates)
	}
}

func TestUpsert_ReplacesExistingRow(t *testing.T) {
	fake := &fakeSheets{column: [][]any{{"ID"}, {"4"}, {"5"}}}
	c := newTestClient(t, fake)

	ref, err := c.Upsert(context.Background(), testRow(4))
	if err != nil {
		t.Fatal(err)
	}
	if ref != "Ledger!A2:F2" {
		t.Fatalf("expected existing row 2, got %q", ref)
	}

	ref, err = c.Upsert(context.Background(), testRow(6))
	if err != nil {
		t.Fatal(err)
	}
	if ref != "Ledger!A4:F4" {
		t.Fatalf("expected appended row 4, got %q", ref)
	}
}

func TestRemove(t *testing.T) {
	fake := &fakeSheets{column: [][]any{{"ID"}, {"4"}}}
	c := newTestClient(t, fake)

	if err := c.Remove(context.Background(), 4); err != nil {
		t.Fatal(err)
	}
	if err := c.Remove(context.Background(), 99); err != nil {
		t.Fatal(err)
	}
	if len(fake.clears) != 1 || !strings.Contains(fake.clears[0], "A2:F2") {
		t.Fatalf("expected one clear of row 2, got %v", fake.clears)
	}
}
