package http

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"expensetracker/internal/core"
)

const (
	maxFormBytes = 64 << 10

	// MsgDateInvalid is reported when the date field is not YYYY-MM-DD.
	MsgDateInvalid = "Date must be a valid date."
)

var errInvalidID = errors.New("invalid id")

// CategoryForm is the category editor's state, including raw input to echo
// back when validation fails.
type CategoryForm struct {
	ID     int64
	Title  string
	Icon   string
	Type   string
	Types  []core.CategoryType
	Errors map[string]string
	Notice string
}

func (f CategoryForm) IsNew() bool { return f.ID == 0 }

func categoryFormFrom(c core.Category) CategoryForm {
	return CategoryForm{ID: c.ID, Title: c.Title, Icon: c.Icon, Type: string(c.Type), Types: core.CategoryTypes}
}

// TransactionForm is the transaction editor's state.
type TransactionForm struct {
	ID         int64
	CategoryID int64
	Amount     string
	Note       string
	Date       string
	MaxDate    string
	Options    []core.Category
	Errors     map[string]string
	Notice     string
}

func (f TransactionForm) IsNew() bool { return f.ID == 0 }

func transactionFormFrom(t core.Transaction) TransactionForm {
	amount := ""
	if t.Amount != 0 {
		amount = strconv.FormatInt(t.Amount, 10)
	}
	return TransactionForm{
		ID:         t.ID,
		CategoryID: t.CategoryID,
		Amount:     amount,
		Note:       t.Note,
		Date:       t.Date.String(),
	}
}

// parseForm bounds the body size before parsing.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	return r.ParseForm()
}

// parseID reads a non-negative integer id. Empty means zero, i.e. "new".
func parseID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// parseCategory maps the posted form onto a category. The type is matched
// case-insensitively; anything unknown is kept verbatim so validation can
// report it.
func parseCategory(form url.Values) (core.Category, CategoryForm, error) {
	f := CategoryForm{
		Title: sanitizeInput(form.Get("Title")),
		Icon:  sanitizeInput(form.Get("Icon")),
		Type:  sanitizeInput(form.Get("Type")),
		Types: core.CategoryTypes,
	}
	id, err := parseID(form.Get("ID"))
	if err != nil {
		return core.Category{}, f, err
	}
	f.ID = id

	c := core.Category{ID: id, Title: f.Title, Icon: f.Icon, Type: core.CategoryType(f.Type)}
	if typ, err := core.ParseCategoryType(f.Type); err == nil {
		c.Type = typ
		f.Type = string(typ)
	}
	return c, f, nil
}

// parseTransaction maps the posted form onto a transaction. Values that
// cannot be parsed are reported as field errors in the returned
// ValidationError; the transaction carries zero values for them.
func parseTransaction(form url.Values) (core.Transaction, TransactionForm, *core.ValidationError, error) {
	f := TransactionForm{
		Amount: sanitizeInput(form.Get("Amount")),
		Note:   sanitizeInput(form.Get("Note")),
		Date:   sanitizeInput(form.Get("Date")),
	}
	id, err := parseID(form.Get("ID"))
	if err != nil {
		return core.Transaction{}, f, nil, err
	}
	f.ID = id

	parseErrs := &core.ValidationError{}
	t := core.Transaction{ID: id, Note: f.Note}

	// An unparsable category id is the same as choosing none.
	if cid, err := parseID(form.Get("CategoryID")); err == nil {
		t.CategoryID = cid
		f.CategoryID = cid
	}

	if f.Amount != "" {
		amount, err := core.ParseAmount(f.Amount)
		if err != nil {
			parseErrs.AddCause(core.FieldAmount, core.MsgAmountInvalid, core.ErrInvalidAmount)
		} else {
			t.Amount = amount
		}
	}

	if f.Date != "" {
		d, err := core.ParseDate(f.Date)
		if err != nil {
			parseErrs.Add(core.FieldDate, MsgDateInvalid)
		} else {
			t.Date = d
		}
	}

	if parseErrs.OrNil() == nil {
		return t, f, nil, nil
	}
	return t, f, parseErrs, nil
}

// mergeValidation appends b's fields after a's, so a's messages win in
// ByField.
func mergeValidation(a *core.ValidationError, b error) *core.ValidationError {
	if v, ok := core.AsValidation(b); ok {
		a.Fields = append(a.Fields, v.Fields...)
	}
	return a
}

// sanitizeInput trims whitespace and drops control characters other than
// tab and newlines.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
