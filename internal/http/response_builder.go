package http

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"expensetracker/internal/log"
	"expensetracker/internal/middleware/trace"
)

const flashCookie = "flash"

// FlashKind selects how a one-shot notice is styled.
type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

// Flash is a notice carried across a redirect in a short lived cookie.
type Flash struct {
	Kind    FlashKind
	Message string
}

func (f Flash) encode() string {
	return base64.RawURLEncoding.EncodeToString([]byte(string(f.Kind) + "|" + f.Message))
}

func decodeFlash(v string) (Flash, bool) {
	raw, err := base64.RawURLEncoding.DecodeString(v)
	if err != nil {
		return Flash{}, false
	}
	kind, msg, ok := strings.Cut(string(raw), "|")
	if !ok || msg == "" {
		return Flash{}, false
	}
	switch FlashKind(kind) {
	case FlashSuccess, FlashError:
		return Flash{Kind: FlashKind(kind), Message: msg}, true
	}
	return Flash{}, false
}

// setFlash stores f for the next page view.
func setFlash(w http.ResponseWriter, f Flash) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    f.encode(),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash reads and clears the pending notice, if any.
func popFlash(w http.ResponseWriter, r *http.Request) *Flash {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	f, ok := decodeFlash(c.Value)
	if !ok {
		return nil
	}
	return &f
}

// redirectWithFlash implements post/redirect/get with a notice.
func redirectWithFlash(w http.ResponseWriter, r *http.Request, target string, f Flash) {
	setFlash(w, f)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// page is what every template receives.
type page struct {
	Title  string
	Active string
	Flash  *Flash
	Data   any
}

// render executes a page into a buffer first so a template failure never
// leaves a half written response.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, p page) {
	logger := log.FromContext(r.Context()).WithComponent(log.ComponentTemplate)

	t, ok := s.templates[name]
	if !ok {
		logger.ErrorContext(r.Context(), "Template not loaded", "template", name)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	if p.Flash == nil {
		p.Flash = popFlash(w, r)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		logger.ErrorContext(r.Context(), "Template execution failed",
			log.NewFields().WithOperation(log.OpRender).WithError(err).ToSlice()...)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError shows the error page with message.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.render(w, r, status, "error", page{
		Title: http.StatusText(status),
		Flash: &Flash{Kind: FlashError, Message: message},
		Data: struct {
			Status    int
			RequestID string
		}{status, trace.GetRequestID(r.Context())},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
