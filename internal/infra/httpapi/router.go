package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"coworking_compliance/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// Runner is the part of the compliance runner the HTTP layer needs.
type Runner interface {
	Run(ctx context.Context) *app.Report
	LastReport() *app.Report
}

type Handler struct {
	runner      Runner
	logger      *logrus.Entry
	passTimeout time.Duration
}

// NewRouter builds the admin API. The manual trigger is exposed on both GET
// and POST; both invoke the exact same pass as the cron trigger.
func NewRouter(runner Runner, logger *logrus.Entry, passTimeout time.Duration) http.Handler {
	h := &Handler{runner: runner, logger: logger, passTimeout: passTimeout}

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("ok"))
		})
		r.Route("/compliance", func(r chi.Router) {
			r.Get("/run", h.runPass)
			r.Post("/run", h.runPass)
			r.Get("/last", h.lastReport)
		})
	})
	return r
}

func (h *Handler) runPass(w http.ResponseWriter, r *http.Request) {
	h.logger.WithField("remote", r.RemoteAddr).Info("Manual compliance pass requested")
	ctx, cancel := context.WithTimeout(r.Context(), h.passTimeout)
	defer cancel()
	report := h.runner.Run(ctx)
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) lastReport(w http.ResponseWriter, _ *http.Request) {
	report := h.runner.LastReport()
	if report == nil {
		writeErr(w, http.StatusNotFound, "no compliance pass has run yet")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
