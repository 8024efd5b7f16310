package core

import (
	"testing"
)

func tx(id, categoryID, amount int64, d Date, c Category) TransactionWithCategory {
	return TransactionWithCategory{
		Transaction: Transaction{ID: id, CategoryID: categoryID, Amount: amount, Date: d},
		Category:    c,
	}
}

func TestWindowEnding(t *testing.T) {
	today := NewDate(2025, 3, 3)
	w := WindowEnding(today)
	days := w.Days()
	if len(days) != WindowDays {
		t.Fatalf("expected %d days, got %d", WindowDays, len(days))
	}
	if !days[0].SameDay(NewDate(2025, 2, 25)) || !days[6].SameDay(today) {
		t.Fatalf("unexpected window %s..%s", days[0], days[6])
	}
}

func TestSummarizeFoodScenario(t *testing.T) {
	today := NewDate(2025, 6, 15)
	food := Category{ID: 1, Title: "Food", Type: Expense}
	s := Summarize(WindowEnding(today), []TransactionWithCategory{
		tx(1, 1, 20, today, food),
		tx(2, 1, 30, today.AddDays(-1), food),
	})

	if s.TotalExpense != 50 || s.TotalIncome != 0 || s.Balance != -50 {
		t.Fatalf("unexpected totals %+v", s)
	}
	if len(s.ByCategory) != 1 || s.ByCategory[0].Label != "Food" || s.ByCategory[0].Amount != 50 {
		t.Fatalf("unexpected breakdown %+v", s.ByCategory)
	}
	if len(s.Series) != 7 {
		t.Fatalf("expected 7 series entries, got %d", len(s.Series))
	}
	for i, p := range s.Series {
		var want int64
		switch i {
		case 6:
			want = 20
		case 5:
			want = 30
		}
		if p.Expense != want || p.Income != 0 {
			t.Fatalf("day %d (%s): expected expense %d, got %+v", i, p.Day, want, p)
		}
	}
}

func TestSummarizeBreakdownAndBalance(t *testing.T) {
	today := NewDate(2025, 1, 2)
	salary := Category{ID: 1, Title: "Salary", Icon: "💰", Type: Income}
	rent := Category{ID: 2, Title: "Rent", Icon: "🏠", Type: Expense}
	fun := Category{ID: 3, Title: "Fun", Type: "expense"}
	broken := Category{ID: 4, Title: "Legacy", Type: "unknown"}

	s := Summarize(WindowEnding(today), []TransactionWithCategory{
		tx(1, 1, 3000, today.AddDays(-3), salary),
		tx(2, 2, 1200, today.AddDays(-2), rent),
		tx(3, 3, 40, today, fun),
		tx(4, 3, 60, today, fun),
		tx(5, 4, 999, today, broken),
		tx(6, 2, 500, today.AddDays(-7), rent),
		tx(7, 2, 500, today.AddDays(1), rent),
	})

	if s.TotalIncome != 3000 || s.TotalExpense != 1300 {
		t.Fatalf("unexpected totals income=%d expense=%d", s.TotalIncome, s.TotalExpense)
	}
	if s.Balance != s.TotalIncome-s.TotalExpense {
		t.Fatalf("balance %d does not match totals", s.Balance)
	}
	if len(s.ByCategory) != 2 {
		t.Fatalf("expected 2 breakdown entries, got %+v", s.ByCategory)
	}
	if s.ByCategory[0].Label != "🏠 Rent" || s.ByCategory[0].Formatted != "$1,200" {
		t.Fatalf("unexpected first entry %+v", s.ByCategory[0])
	}
	if s.ByCategory[1].Label != "Fun" || s.ByCategory[1].Amount != 100 {
		t.Fatalf("unexpected second entry %+v", s.ByCategory[1])
	}
	if got := s.Share(s.ByCategory[0]); got != 92 {
		t.Fatalf("expected share 92, got %d", got)
	}
	for _, p := range s.Series {
		if p.Income < 0 || p.Expense < 0 {
			t.Fatalf("negative series point %+v", p)
		}
	}
}

func TestEmptySummary(t *testing.T) {
	s := EmptySummary(WindowEnding(NewDate(2025, 1, 1)))
	if s.TotalIncome != 0 || s.TotalExpense != 0 || s.Balance != 0 {
		t.Fatalf("expected zero totals, got %+v", s)
	}
	if len(s.Series) != 0 || len(s.ByCategory) != 0 {
		t.Fatalf("expected empty series and breakdown, got %+v", s)
	}
}
