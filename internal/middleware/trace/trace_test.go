package trace

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/log"
)

func TestMiddleware_AssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Format: "json", Output: &buf})
	m := NewMiddleware(logger, func(*http.Request) string { return "203.0.113.9" })

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		log.FromContext(r.Context()).InfoContext(r.Context(), "inside")
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/categories", nil))

	require.True(t, strings.HasPrefix(seen, "req_"))
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	assert.Contains(t, buf.String(), `"request_id":"`+seen+`"`)
	assert.Contains(t, buf.String(), `"status_code":418`)
	assert.Contains(t, buf.String(), `"client_ip":"203.0.113.9"`)
	assert.Equal(t, int64(1), m.GetMetrics().TotalRequests)
}

func TestMiddleware_HonoursIncomingRequestID(t *testing.T) {
	m := NewMiddleware(log.Discard(), nil)
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, int64(1), m.GetMetrics().ServerErrors)
}
