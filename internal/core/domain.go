package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

const (
	Income  CategoryType = "Income"
	Expense CategoryType = "Expense"
)

const (
	TitleMaxLen = 50
	IconMaxLen  = 5
	NoteMaxLen  = 75

	// MaxAgeYears bounds how far in the past a transaction date may lie.
	MaxAgeYears = 5

	dateLayout  = "2006-01-02"
	labelLayout = "02-Jan"
)

type (
	// CategoryType is the closed set of category kinds.
	CategoryType string

	// Date is a calendar day stored as midnight UTC.
	Date struct {
		time.Time
	}

	Category struct {
		ID    int64        `json:"id"`
		Title string       `json:"title"`
		Icon  string       `json:"icon"`
		Type  CategoryType `json:"type"`
	}

	Transaction struct {
		ID         int64  `json:"id"`
		CategoryID int64  `json:"category_id"`
		Amount     int64  `json:"amount"`
		Note       string `json:"note"`
		Date       Date   `json:"date"`
	}

	// TransactionWithCategory is a transaction joined with the category it references.
	TransactionWithCategory struct {
		Transaction
		Category Category `json:"category"`
	}
)

// CategoryTypes lists the valid category types in display order.
var CategoryTypes = []CategoryType{Expense, Income}

// ParseCategoryType matches s case-insensitively against the known types.
func ParseCategoryType(s string) (CategoryType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return Income, nil
	case "expense":
		return Expense, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategoryType, s)
}

func (t CategoryType) Valid() bool {
	return t == Income || t == Expense
}

func (t CategoryType) String() string { return string(t) }

// TitleWithIcon is the display label used by lists, selects and charts.
func (c Category) TitleWithIcon() string {
	if c.Icon == "" {
		return c.Title
	}
	return c.Icon + " " + c.Title
}

// TitleKey is the Unicode case-folded form of a category title. Two titles
// with the same key are duplicates.
func TitleKey(title string) string {
	return cases.Fold().String(strings.TrimSpace(title))
}

// IsNew reports whether the category has not been persisted yet.
func (c Category) IsNew() bool { return c.ID == 0 }

func (t Transaction) IsNew() bool { return t.ID == 0 }

// FormattedAmount renders the amount with a sign derived from the category type.
func (t TransactionWithCategory) FormattedAmount() string {
	sign := "+ "
	if t.Category.Type == Expense {
		sign = "- "
	}
	return sign + FormatCurrency(t.Amount)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// Today returns the current calendar day in loc.
func Today(now time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	return DateOf(now.In(loc))
}

// ParseDate parses an ISO "YYYY-MM-DD" day.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// AddYears moves d by n years. Feb 29 lands on Feb 28 when the target year
// is not a leap year.
func (d Date) AddYears(n int) Date {
	y, m, day := d.Date()
	if last := daysIn(y+n, m); day > last {
		day = last
	}
	return NewDate(y+n, int(m), day)
}

func daysIn(year int, m time.Month) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Before reports whether d is an earlier day than o.
func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }

// After reports whether d is a later day than o.
func (d Date) After(o Date) bool { return d.Time.After(o.Time) }

// SameDay compares calendar days only.
func (d Date) SameDay(o Date) bool {
	return d.Year() == o.Year() && d.YearDay() == o.YearDay()
}

// String formats the date as YYYY-MM-DD, the form and storage representation.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// Label is the short chart label, e.g. "07-Mar".
func (d Date) Label() string {
	return d.Format(labelLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
