package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseCategoryType(t *testing.T) {
	cases := []struct {
		in   string
		want CategoryType
		ok   bool
	}{
		{"Income", Income, true},
		{"expense", Expense, true},
		{" EXPENSE ", Expense, true},
		{"", "", false},
		{"Transfer", "", false},
	}
	for _, tc := range cases {
		got, err := ParseCategoryType(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.want, got, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidCategoryType) {
			t.Fatalf("%q expected ErrInvalidCategoryType, got %v", tc.in, err)
		}
	}
}

func TestTitleWithIcon(t *testing.T) {
	if got := (Category{Title: "Food"}).TitleWithIcon(); got != "Food" {
		t.Fatalf("got %q", got)
	}
	if got := (Category{Title: "Food", Icon: "🍔"}).TitleWithIcon(); got != "🍔 Food" {
		t.Fatalf("got %q", got)
	}
}

func TestFormattedAmount(t *testing.T) {
	exp := TransactionWithCategory{Transaction: Transaction{Amount: 1250}, Category: Category{Type: Expense}}
	if got := exp.FormattedAmount(); got != "- $1,250" {
		t.Fatalf("expense: got %q", got)
	}
	inc := TransactionWithCategory{Transaction: Transaction{Amount: 20}, Category: Category{Type: Income}}
	if got := inc.FormattedAmount(); got != "+ $20" {
		t.Fatalf("income: got %q", got)
	}
}

func TestCategoryValidate(t *testing.T) {
	cases := []struct {
		name  string
		c     Category
		field string
		msg   string
	}{
		{"ok", Category{Title: "Food", Type: Expense}, "", ""},
		{"ok with icon", Category{Title: "Salary", Icon: "💰", Type: Income}, "", ""},
		{"missing title", Category{Title: "  ", Type: Expense}, FieldTitle, MsgTitleRequired},
		{"long title", Category{Title: strings.Repeat("a", 51), Type: Expense}, FieldTitle, MsgTitleTooLong},
		{"title at limit", Category{Title: strings.Repeat("a", 50), Type: Expense}, "", ""},
		{"long icon", Category{Title: "Food", Icon: "abcdef", Type: Expense}, FieldIcon, MsgIconTooLong},
		{"missing type", Category{Title: "Food"}, FieldType, MsgTypeRequired},
		{"bad type", Category{Title: "Food", Type: "Transfer"}, FieldType, MsgTypeInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.c.Validate()
			if tc.field == "" {
				if err != nil {
					t.Fatalf("expected ok, got %v", err)
				}
				return
			}
			v, ok := AsValidation(err)
			if !ok {
				t.Fatalf("expected validation error, got %v", err)
			}
			if got := v.Message(tc.field); got != tc.msg {
				t.Fatalf("field %s: expected %q, got %q", tc.field, tc.msg, got)
			}
		})
	}
}

func TestTransactionValidate(t *testing.T) {
	today := NewDate(2025, 6, 15)
	good := Transaction{CategoryID: 1, Amount: 20, Date: today}

	cases := []struct {
		name   string
		mutate func(*Transaction)
		field  string
		cause  error
	}{
		{"ok", func(*Transaction) {}, "", nil},
		{"no category", func(tx *Transaction) { tx.CategoryID = 0 }, FieldCategory, nil},
		{"zero amount", func(tx *Transaction) { tx.Amount = 0 }, FieldAmount, ErrInvalidAmount},
		{"long note", func(tx *Transaction) { tx.Note = strings.Repeat("n", 76) }, FieldNote, nil},
		{"missing date", func(tx *Transaction) { tx.Date = Date{} }, FieldDate, nil},
		{"tomorrow", func(tx *Transaction) { tx.Date = today.AddDays(1) }, FieldDate, ErrFutureDate},
		{"five years ago", func(tx *Transaction) { tx.Date = today.AddYears(-5) }, "", nil},
		{"older than five years", func(tx *Transaction) { tx.Date = today.AddYears(-5).AddDays(-1) }, FieldDate, ErrDateTooOld},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := good
			tc.mutate(&tx)
			err := tx.Validate(today)
			if tc.field == "" {
				if err != nil {
					t.Fatalf("expected ok, got %v", err)
				}
				return
			}
			v, ok := AsValidation(err)
			if !ok || v.Message(tc.field) == "" {
				t.Fatalf("expected error on %s, got %v", tc.field, err)
			}
			if tc.cause != nil && !errors.Is(err, tc.cause) {
				t.Fatalf("expected cause %v in %v", tc.cause, err)
			}
		})
	}
}

func TestTransactionValidateOnLeapDay(t *testing.T) {
	today := NewDate(2024, 2, 29)
	tx := Transaction{CategoryID: 1, Amount: 20, Date: NewDate(2019, 2, 28)}
	if err := tx.Validate(today); err != nil {
		t.Fatalf("Feb 28 five years back should be accepted, got %v", err)
	}
	tx.Date = NewDate(2019, 2, 27)
	if err := tx.Validate(today); !errors.Is(err, ErrDateTooOld) {
		t.Fatalf("expected ErrDateTooOld, got %v", err)
	}
}

func TestAddYears(t *testing.T) {
	tests := []struct {
		from Date
		n    int
		want Date
	}{
		{NewDate(2024, 2, 29), -5, NewDate(2019, 2, 28)},
		{NewDate(2024, 2, 29), -4, NewDate(2020, 2, 29)},
		{NewDate(2023, 12, 31), 1, NewDate(2024, 12, 31)},
		{NewDate(2025, 6, 15), -5, NewDate(2020, 6, 15)},
	}
	for _, tt := range tests {
		if got := tt.from.AddYears(tt.n); !got.SameDay(tt.want) {
			t.Errorf("%s.AddYears(%d) = %s, want %s", tt.from, tt.n, got, tt.want)
		}
	}
}

func TestTitleKey(t *testing.T) {
	tests := []struct {
		a, b string
		same bool
	}{
		{"Food", " food ", true},
		{"Épicerie", "épicerie", true},
		{"ΣΟΦΙΑ", "σοφια", true},
		{"Food", "Fuel", false},
	}
	for _, tt := range tests {
		if got := TitleKey(tt.a) == TitleKey(tt.b); got != tt.same {
			t.Errorf("TitleKey(%q) == TitleKey(%q) is %v, want %v", tt.a, tt.b, got, tt.same)
		}
	}
}

func TestTodayUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	now := time.Date(2025, 6, 15, 20, 0, 0, 0, time.UTC)
	if got := Today(now, loc); !got.SameDay(NewDate(2025, 6, 16)) {
		t.Fatalf("expected 2025-06-16, got %s", got)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-07")
	if err != nil {
		t.Fatal(err)
	}
	if d.String() != "2025-03-07" || d.Label() != "07-Mar" {
		t.Fatalf("unexpected formatting %s / %s", d.String(), d.Label())
	}
	if _, err := ParseDate("07/03/2025"); err == nil {
		t.Fatal("expected error")
	}
}
