package http

import (
	"bytes"
	"net/http"

	"expensetracker/internal/export"
	"expensetracker/internal/log"
)

func (s *Server) handleExportTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	txs, err := s.deps.Transactions.List(ctx)
	if err != nil {
		s.logFailure(r, "Failed to list transactions for export", err, log.ComponentTransaction, log.OpExport)
		redirectWithFlash(w, r, "/transactions", Flash{Kind: FlashError, Message: MsgTransactionsFailed})
		return
	}

	var buf bytes.Buffer
	if err := export.WriteTransactions(&buf, txs); err != nil {
		s.logFailure(r, "Failed to build workbook", err, log.ComponentTransaction, log.OpExport)
		redirectWithFlash(w, r, "/transactions", Flash{Kind: FlashError, Message: MsgTransactionsFailed})
		return
	}

	filename := "transactions-" + s.deps.Transactions.Today().String() + ".xlsx"
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())

	log.FromContext(ctx).WithComponent(log.ComponentTransaction).InfoContext(ctx, "Transactions exported",
		log.FieldOperation, log.OpExport, "count", len(txs))
}
