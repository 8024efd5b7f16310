package core

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Form field names shared by validation and the HTTP layer.
const (
	FieldTitle    = "Title"
	FieldIcon     = "Icon"
	FieldType     = "Type"
	FieldCategory = "CategoryID"
	FieldAmount   = "Amount"
	FieldNote     = "Note"
	FieldDate     = "Date"
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidCategoryType = errors.New("invalid category type")
	ErrDuplicateTitle      = errors.New("duplicate category title")
	ErrUnknownCategory     = errors.New("unknown category")
	ErrFutureDate          = errors.New("date in the future")
	ErrDateTooOld          = errors.New("date too old")
	ErrCategoryInUse       = errors.New("category has transactions")
)

const (
	MsgTitleRequired   = "Title is required."
	MsgTitleTooLong    = "Title cannot exceed 50 characters."
	MsgIconTooLong     = "Icon cannot exceed 5 characters."
	MsgTypeRequired    = "Type is required."
	MsgTypeInvalid     = "Type must be either 'Income' or 'Expense'."
	MsgDuplicateTitle  = "A category with this title already exists."
	MsgSelectCategory  = "Please select a category."
	MsgAmountPositive  = "Amount should be greater than 0."
	MsgNoteTooLong     = "Note cannot exceed 75 characters."
	MsgDateRequired    = "Date is required."
	MsgDateFuture      = "Date cannot be in the future."
	MsgDateTooOld      = "Date cannot be more than 5 years ago."
	MsgUnknownCategory = "Selected category does not exist."
	MsgCategoryInUse   = "Cannot delete this category because it has associated transactions."
)

// FieldError is a single message attached to a form field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects field messages. Sentinel causes attached with
// AddCause are visible to errors.Is.
type ValidationError struct {
	Fields []FieldError
	causes []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() []error { return e.causes }

func (e *ValidationError) Add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: msg})
}

func (e *ValidationError) AddCause(field, msg string, cause error) {
	e.Add(field, msg)
	e.causes = append(e.causes, cause)
}

// Message returns the first message recorded for field.
func (e *ValidationError) Message(field string) string {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}

// ByField indexes the first message per field, the shape templates consume.
func (e *ValidationError) ByField() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		if _, ok := out[f.Field]; !ok {
			out[f.Field] = f.Message
		}
	}
	return out
}

// OrNil returns nil when nothing was recorded.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// NewFieldError builds a single-field validation error carrying cause.
func NewFieldError(field, msg string, cause error) *ValidationError {
	v := &ValidationError{}
	if cause != nil {
		v.AddCause(field, msg, cause)
	} else {
		v.Add(field, msg)
	}
	return v
}

// AsValidation unwraps err to a *ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// Normalize trims user supplied text fields.
func (c *Category) Normalize() {
	c.Title = strings.TrimSpace(c.Title)
	c.Icon = strings.TrimSpace(c.Icon)
}

// Validate checks field constraints. Title uniqueness needs the store and is
// checked by the service.
func (c Category) Validate() error {
	v := &ValidationError{}
	switch n := utf8.RuneCountInString(strings.TrimSpace(c.Title)); {
	case n == 0:
		v.Add(FieldTitle, MsgTitleRequired)
	case n > TitleMaxLen:
		v.Add(FieldTitle, MsgTitleTooLong)
	}
	if utf8.RuneCountInString(c.Icon) > IconMaxLen {
		v.Add(FieldIcon, MsgIconTooLong)
	}
	switch {
	case c.Type == "":
		v.Add(FieldType, MsgTypeRequired)
	case !c.Type.Valid():
		v.AddCause(FieldType, MsgTypeInvalid, ErrInvalidCategoryType)
	}
	return v.OrNil()
}

func (t *Transaction) Normalize() {
	t.Note = strings.TrimSpace(t.Note)
}

// Validate checks field constraints and the date range relative to today.
// Category existence is checked by the service.
func (t Transaction) Validate(today Date) error {
	v := &ValidationError{}
	if t.CategoryID < 1 {
		v.Add(FieldCategory, MsgSelectCategory)
	}
	if t.Amount < 1 {
		v.AddCause(FieldAmount, MsgAmountPositive, ErrInvalidAmount)
	}
	if utf8.RuneCountInString(t.Note) > NoteMaxLen {
		v.Add(FieldNote, MsgNoteTooLong)
	}
	switch {
	case t.Date.IsZero():
		v.Add(FieldDate, MsgDateRequired)
	case t.Date.After(today):
		v.AddCause(FieldDate, MsgDateFuture, ErrFutureDate)
	case t.Date.Before(today.AddYears(-MaxAgeYears)):
		v.AddCause(FieldDate, MsgDateTooOld, ErrDateTooOld)
	}
	return v.OrNil()
}
