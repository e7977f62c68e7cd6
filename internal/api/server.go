// Package api exposes the day-queue operations over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"turnboard/internal/dayerr"
	"turnboard/internal/service"
)

// SummaryExporter renders an end-of-day summary as an xlsx workbook.
type SummaryExporter interface {
	WriteSummary(summary *service.Summary) ([]byte, error)
}

type HTTPServer struct {
	svc      *service.Service
	exporter SummaryExporter
	log      zerolog.Logger
	apiKey   string
	limiter  *rate.Limiter
}

// Options tunes the optional middleware. A zero APIKey disables auth; a zero
// RateLimitRPS disables rate limiting.
type Options struct {
	APIKey         string
	RateLimitRPS   float64
	RateLimitBurst int
}

func NewHTTPServer(svc *service.Service, exporter SummaryExporter, logger zerolog.Logger, opts Options) *HTTPServer {
	s := &HTTPServer{
		svc:      svc,
		exporter: exporter,
		log:      logger,
		apiKey:   opts.APIKey,
	}
	if opts.RateLimitRPS > 0 {
		burst := opts.RateLimitBurst
		if burst <= 0 {
			burst = int(opts.RateLimitRPS)
			if burst < 1 {
				burst = 1
			}
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), burst)
	}
	return s
}

// Handler builds the route table with auth and rate-limit middleware applied.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/days", s.handleCreateDay)
	mux.HandleFunc("GET /api/days", s.handleListDays)
	mux.HandleFunc("GET /api/days/available-dates", s.handleAvailableDates)
	mux.HandleFunc("GET /api/days/{date}", s.handleGetDay)
	mux.HandleFunc("POST /api/days/{date}/secure-delete", s.handleSecureDelete)
	mux.HandleFunc("POST /api/days/{date}/end-day", s.handleEndDay)
	mux.HandleFunc("POST /api/days/{date}/close-day", s.handleCloseDay)
	mux.HandleFunc("POST /api/days/{date}/unfreeze", s.handleUnfreeze)
	mux.HandleFunc("GET /api/days/{date}/summary", s.handleSummary)
	mux.HandleFunc("GET /api/days/{date}/summary/export", s.handleSummaryExport)
	mux.HandleFunc("GET /api/days/{date}/recommend", s.handleRecommend)
	mux.HandleFunc("GET /api/days/{date}/checklist", s.handleGetChecklists)
	mux.HandleFunc("POST /api/days/{date}/checklist", s.handleToggleChecklist)

	mux.HandleFunc("POST /api/days/{date}/rows/clock-in", s.handleClockIn)
	mux.HandleFunc("POST /api/days/{date}/rows/clock-out", s.handleClockOut)
	mux.HandleFunc("POST /api/days/{date}/rows/{rowNumber}/toggle-break", s.handleToggleBreak)
	mux.HandleFunc("DELETE /api/days/{date}/rows/{rowNumber}", s.handleDeleteRow)
	mux.HandleFunc("PUT /api/days/{date}/rows/reorder", s.handleReorderRows)

	mux.HandleFunc("POST /api/days/{date}/seatings", s.handleCreateSeating)
	mux.HandleFunc("PUT /api/days/{date}/seatings/{seatingID}", s.handleUpdateSeating)
	mux.HandleFunc("DELETE /api/days/{date}/seatings/{seatingID}", s.handleDeleteSeating)

	var h http.Handler = mux
	if s.apiKey != "" {
		h = s.authMiddleware(h)
	}
	if s.limiter != nil {
		h = s.rateLimitMiddleware(h)
	}
	return h
}

// Start runs the server until ctx is canceled, then shuts down gracefully.
func (s *HTTPServer) Start(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.log.Info().Int("port", port).Msg("api server started")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *HTTPServer) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != s.apiKey {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *HTTPServer) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps error kinds to HTTP status codes.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dayerr.ErrInvalidInput), errors.Is(err, dayerr.ErrPreconditionFailed):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, dayerr.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, dayerr.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.log.Error().Err(err).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeBody(r *http.Request, v any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}
