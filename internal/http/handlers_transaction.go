package http

import (
	"errors"
	"net/http"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/services"
	"expensetracker/internal/storage"
)

const (
	MsgTransactionSaved      = "Transaction saved successfully."
	MsgTransactionDeleted    = "Transaction deleted successfully."
	MsgTransactionNotFound   = "Transaction not found."
	MsgTransactionsFailed    = "Unable to load transactions. Please try again later."
	MsgTransactionSaveFailed = "Unable to save the transaction. Please try again later."
	MsgTransactionDelFailed  = "Unable to delete the transaction. Please try again later."
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.deps.Transactions.List(r.Context())
	if err != nil {
		s.logFailure(r, "Failed to list transactions", err, log.ComponentTransaction, log.OpList)
		s.render(w, r, http.StatusInternalServerError, "transactions", page{
			Title:  "Transactions",
			Active: "transactions",
			Flash:  &Flash{Kind: FlashError, Message: MsgTransactionsFailed},
			Data:   []core.TransactionWithCategory{},
		})
		return
	}
	s.render(w, r, http.StatusOK, "transactions", page{Title: "Transactions", Active: "transactions", Data: txs})
}

func (s *Server) handleEditTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := parseID(r.URL.Query().Get("id"))
	if err != nil {
		s.renderError(w, r, http.StatusNotFound, MsgTransactionNotFound)
		return
	}

	form := transactionFormFrom(s.deps.Transactions.Draft())
	if id != 0 {
		t, err := s.deps.Transactions.Get(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			s.renderError(w, r, http.StatusNotFound, MsgTransactionNotFound)
			return
		}
		if err != nil {
			s.logFailure(r, "Failed to load transaction", err, log.ComponentTransaction, log.OpRead)
			s.renderError(w, r, http.StatusInternalServerError, MsgTransactionsFailed)
			return
		}
		form = transactionFormFrom(t.Transaction)
	}
	s.renderTransactionForm(w, r, http.StatusOK, form)
}

func (s *Server) handleSaveTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := parseForm(w, r); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Invalid request.")
		return
	}
	t, form, parseErrs, err := parseTransaction(r.PostForm)
	if err != nil {
		s.renderError(w, r, http.StatusNotFound, MsgTransactionNotFound)
		return
	}

	if parseErrs != nil {
		// Report the remaining field problems alongside the parse errors.
		t.Normalize()
		merged := mergeValidation(parseErrs, t.Validate(s.deps.Transactions.Today()))
		logRejected(r, log.ComponentTransaction, merged)
		form.Errors = merged.ByField()
		s.renderTransactionForm(w, r, http.StatusUnprocessableEntity, form)
		return
	}

	_, err = s.deps.Transactions.Save(ctx, t)
	if v, ok := core.AsValidation(err); ok {
		logRejected(r, log.ComponentTransaction, v)
		form.Errors = v.ByField()
		s.renderTransactionForm(w, r, http.StatusUnprocessableEntity, form)
		return
	}
	if errors.Is(err, storage.ErrNotFound) {
		s.renderError(w, r, http.StatusNotFound, MsgTransactionNotFound)
		return
	}
	if err != nil {
		s.logFailure(r, "Failed to save transaction", err, log.ComponentTransaction, log.OpUpdate)
		form.Notice = MsgTransactionSaveFailed
		s.renderTransactionForm(w, r, http.StatusInternalServerError, form)
		return
	}

	redirectWithFlash(w, r, "/transactions", Flash{Kind: FlashSuccess, Message: MsgTransactionSaved})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil || id == 0 {
		redirectWithFlash(w, r, "/transactions", Flash{Kind: FlashError, Message: MsgTransactionNotFound})
		return
	}

	err = s.deps.Transactions.Delete(r.Context(), id)
	switch {
	case err == nil:
		redirectWithFlash(w, r, "/transactions", Flash{Kind: FlashSuccess, Message: MsgTransactionDeleted})
	case errors.Is(err, storage.ErrNotFound):
		redirectWithFlash(w, r, "/transactions", Flash{Kind: FlashError, Message: MsgTransactionNotFound})
	default:
		s.logFailure(r, "Failed to delete transaction", err, log.ComponentTransaction, log.OpDelete)
		redirectWithFlash(w, r, "/transactions", Flash{Kind: FlashError, Message: MsgTransactionDelFailed})
	}
}

// renderTransactionForm fills in the category options. A failure to load
// them still renders the form, with only the placeholder option.
func (s *Server) renderTransactionForm(w http.ResponseWriter, r *http.Request, status int, form TransactionForm) {
	opts, err := s.deps.Transactions.CategoryOptions(r.Context())
	if err != nil {
		s.logFailure(r, "Failed to load category options", err, log.ComponentTransaction, log.OpList)
		opts = []core.Category{{Title: services.ChooseCategoryLabel}}
		if form.Notice == "" {
			form.Notice = MsgCategoriesFailed
		}
	}
	form.Options = opts
	form.MaxDate = s.deps.Transactions.Today().String()

	title := "Edit Transaction"
	if form.IsNew() {
		title = "New Transaction"
	}
	var flash *Flash
	if form.Notice != "" {
		flash = &Flash{Kind: FlashError, Message: form.Notice}
	}
	s.render(w, r, status, "transaction_form", page{Title: title, Active: "transactions", Flash: flash, Data: form})
}
