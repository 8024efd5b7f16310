package http

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"", 0, false},
		{"  ", 0, false},
		{"12", 12, false},
		{" 7 ", 7, false},
		{"-1", 0, true},
		{"abc", 0, true},
		{"1.5", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseID(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, errInvalidID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name     string
		form     url.Values
		wantType core.CategoryType
		wantForm string
	}{
		{
			name:     "canonical type",
			form:     url.Values{"Title": {" Food "}, "Icon": {"🍔"}, "Type": {"Expense"}},
			wantType: core.Expense,
			wantForm: "Expense",
		},
		{
			name:     "type matched case-insensitively",
			form:     url.Values{"Title": {"Salary"}, "Type": {"income"}},
			wantType: core.Income,
			wantForm: "Income",
		},
		{
			name:     "unknown type kept for validation",
			form:     url.Values{"Title": {"Misc"}, "Type": {"Other"}},
			wantType: core.CategoryType("Other"),
			wantForm: "Other",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, f, err := parseCategory(tt.form)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, c.Type)
			assert.Equal(t, tt.wantForm, f.Type)
			assert.Equal(t, f.Title, c.Title)
			assert.True(t, f.IsNew())
			assert.Equal(t, core.CategoryTypes, f.Types)
		})
	}

	_, _, err := parseCategory(url.Values{"ID": {"x"}, "Title": {"Food"}})
	assert.ErrorIs(t, err, errInvalidID)
}

func TestParseTransaction(t *testing.T) {
	t.Run("valid form", func(t *testing.T) {
		tx, f, parseErrs, err := parseTransaction(url.Values{
			"ID":         {"3"},
			"CategoryID": {"2"},
			"Amount":     {"$1,250"},
			"Note":       {"  rent  "},
			"Date":       {"2024-03-01"},
		})
		require.NoError(t, err)
		assert.Nil(t, parseErrs)
		assert.Equal(t, int64(3), tx.ID)
		assert.Equal(t, int64(2), tx.CategoryID)
		assert.Equal(t, int64(1250), tx.Amount)
		assert.Equal(t, "rent", tx.Note)
		assert.True(t, tx.Date.SameDay(core.NewDate(2024, 3, 1)))
		assert.Equal(t, "$1,250", f.Amount, "raw input is echoed back")
		assert.False(t, f.IsNew())
	})

	t.Run("unparsable values become field errors", func(t *testing.T) {
		tx, f, parseErrs, err := parseTransaction(url.Values{
			"CategoryID": {"abc"},
			"Amount":     {"12.5"},
			"Date":       {"03/01/2024"},
		})
		require.NoError(t, err)
		require.NotNil(t, parseErrs)
		assert.Equal(t, core.MsgAmountInvalid, parseErrs.Message(core.FieldAmount))
		assert.Equal(t, MsgDateInvalid, parseErrs.Message(core.FieldDate))
		assert.ErrorIs(t, parseErrs, core.ErrInvalidAmount)
		assert.Zero(t, tx.CategoryID)
		assert.Zero(t, tx.Amount)
		assert.True(t, tx.Date.IsZero())
		assert.Equal(t, "12.5", f.Amount)
	})

	t.Run("empty values are left to validation", func(t *testing.T) {
		_, _, parseErrs, err := parseTransaction(url.Values{})
		require.NoError(t, err)
		assert.Nil(t, parseErrs)
	})

	t.Run("bad id", func(t *testing.T) {
		_, _, _, err := parseTransaction(url.Values{"ID": {"-4"}})
		assert.ErrorIs(t, err, errInvalidID)
	})
}

func TestMergeValidationParseMessagesWin(t *testing.T) {
	parseErrs := core.NewFieldError(core.FieldAmount, core.MsgAmountInvalid, core.ErrInvalidAmount)
	tx := core.Transaction{CategoryID: 0, Amount: 0}

	merged := mergeValidation(parseErrs, tx.Validate(core.NewDate(2024, 3, 10)))
	byField := merged.ByField()

	assert.Equal(t, core.MsgAmountInvalid, byField[core.FieldAmount])
	assert.Equal(t, core.MsgSelectCategory, byField[core.FieldCategory])
	assert.Equal(t, core.MsgDateRequired, byField[core.FieldDate])
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "hello world", sanitizeInput("  hello\x00 world\x07 "))
	assert.Equal(t, "a\tb\nc", sanitizeInput("a\tb\nc"))
}

func TestTransactionFormFrom(t *testing.T) {
	f := transactionFormFrom(core.Transaction{Date: core.NewDate(2024, 1, 5)})
	assert.Equal(t, "", f.Amount)
	assert.Equal(t, "2024-01-05", f.Date)

	f = transactionFormFrom(core.Transaction{ID: 9, Amount: 40})
	assert.Equal(t, "40", f.Amount)
	assert.False(t, f.IsNew())
}
