package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/maruel/ksid"
)

type requestIDKey struct{}

// RequestID returns the ID assigned to the request by LogRequests, or the
// zero ID.
func RequestID(ctx context.Context) ksid.ID {
	id, _ := ctx.Value(requestIDKey{}).(ksid.ID)
	return id
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// LogRequests assigns every request an ID, returned in the X-Request-Id
// header, and logs one line per request once it completes.
func LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := ksid.NewID()
		w.Header().Set("X-Request-Id", id.String())
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))
		level := slog.LevelInfo
		if rec.status >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		slog.Log(ctx, level, "http", "id", id.String(), "method", r.Method, "path", r.URL.Path, "status", rec.status, "dur", time.Since(start))
	})
}
