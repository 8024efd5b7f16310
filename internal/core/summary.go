package core

import (
	"sort"
	"strings"
)

const (
	// WindowDays is the length of the dashboard window, today included.
	WindowDays = 7
	// RecentLimit is the size of the recent activity feed.
	RecentLimit = 5
)

// Window is an inclusive range of calendar days.
type Window struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// WindowEnding returns the WindowDays-long window whose last day is today.
func WindowEnding(today Date) Window {
	return Window{Start: today.AddDays(-(WindowDays - 1)), End: today}
}

func (w Window) Contains(d Date) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

// Days lists every day of the window, oldest first.
func (w Window) Days() []Date {
	var days []Date
	for d := w.Start; !d.After(w.End); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// CategoryTotal is one slice of the expense breakdown.
type CategoryTotal struct {
	CategoryID int64  `json:"category_id"`
	Label      string `json:"label"`
	Amount     int64  `json:"amount"`
	Formatted  string `json:"formatted"`
}

// DayTotal is one point of the daily income/expense series.
type DayTotal struct {
	Day     Date  `json:"day"`
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
}

// Summary is the aggregated view of one window.
type Summary struct {
	Window       Window          `json:"window"`
	TotalIncome  int64           `json:"total_income"`
	TotalExpense int64           `json:"total_expense"`
	Balance      int64           `json:"balance"`
	ByCategory   []CategoryTotal `json:"by_category"`
	Series       []DayTotal      `json:"series"`
}

// Summarize aggregates txs over w. Transactions outside the window or whose
// category type cannot be resolved are ignored.
func Summarize(w Window, txs []TransactionWithCategory) Summary {
	s := Summary{Window: w}

	days := w.Days()
	s.Series = make([]DayTotal, len(days))
	for i, d := range days {
		s.Series[i] = DayTotal{Day: d}
	}

	byCategory := make(map[int64]*CategoryTotal)
	for _, tx := range txs {
		if !w.Contains(tx.Date) {
			continue
		}
		typ, err := ParseCategoryType(string(tx.Category.Type))
		if err != nil {
			continue
		}
		idx := dayIndex(days, tx.Date)
		switch typ {
		case Income:
			s.TotalIncome += tx.Amount
			if idx >= 0 {
				s.Series[idx].Income += tx.Amount
			}
		case Expense:
			s.TotalExpense += tx.Amount
			if idx >= 0 {
				s.Series[idx].Expense += tx.Amount
			}
			ct, ok := byCategory[tx.CategoryID]
			if !ok {
				ct = &CategoryTotal{CategoryID: tx.CategoryID, Label: tx.Category.TitleWithIcon()}
				byCategory[tx.CategoryID] = ct
			}
			ct.Amount += tx.Amount
		}
	}
	s.Balance = s.TotalIncome - s.TotalExpense

	s.ByCategory = make([]CategoryTotal, 0, len(byCategory))
	for _, ct := range byCategory {
		ct.Formatted = FormatCurrency(ct.Amount)
		s.ByCategory = append(s.ByCategory, *ct)
	}
	sort.Slice(s.ByCategory, func(i, j int) bool {
		a, b := s.ByCategory[i], s.ByCategory[j]
		if a.Amount != b.Amount {
			return a.Amount > b.Amount
		}
		return strings.ToLower(a.Label) < strings.ToLower(b.Label)
	})
	return s
}

func dayIndex(days []Date, d Date) int {
	for i, day := range days {
		if day.SameDay(d) {
			return i
		}
	}
	return -1
}

// EmptySummary is the zeroed summary shown when data cannot be loaded: no
// breakdown and no series.
func EmptySummary(w Window) Summary {
	return Summary{Window: w, ByCategory: []CategoryTotal{}, Series: []DayTotal{}}
}

// Share returns the percentage of the total expense a category represents.
func (s Summary) Share(ct CategoryTotal) int {
	if s.TotalExpense == 0 {
		return 0
	}
	return int(ct.Amount * 100 / s.TotalExpense)
}
