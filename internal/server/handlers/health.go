package handlers

import (
	"context"

	"github.com/maruel/wordbook/internal/wordbook"
)

// HealthRequest is the request type for health check (empty).
type HealthRequest struct{}

// Validate implements Validatable.
func (*HealthRequest) Validate() error { return nil }

// HealthResponse is the response for health check.
type HealthResponse struct {
	Status  string              `json:"status"`
	Version string              `json:"version"`
	Cache   wordbook.CacheStats `json:"cache"`
}

// Health returns the health status of the server. It never calls Notion.
func (h *Handler) Health(ctx context.Context, req *HealthRequest) (*HealthResponse, error) {
	return &HealthResponse{
		Status:  "ok",
		Version: h.version,
		Cache:   h.svc.Cache().Stats(),
	}, nil
}
