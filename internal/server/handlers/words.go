package handlers

import (
	"context"
	"strconv"
	"strings"

	apierrors "github.com/maruel/wordbook/internal/errors"
	"github.com/maruel/wordbook/internal/wordbook"
)

// ListWordsRequest lists the words not yet mastered.
type ListWordsRequest struct {
	// Section, when set, keeps only the words of that section.
	Section string `query:"section"`

	section *int
}

// Validate implements Validatable.
func (r *ListWordsRequest) Validate() error {
	if r.Section == "" {
		return nil
	}
	n, err := strconv.Atoi(r.Section)
	if err != nil {
		return apierrors.BadRequest("section must be an integer").WithDetail("section", r.Section)
	}
	r.section = &n
	return nil
}

// ListWordsResponse is the review set of words.
type ListWordsResponse struct {
	Words []wordbook.Word `json:"words"`
	Total int             `json:"total"`
}

// ListWords returns the words not yet mastered.
func (h *Handler) ListWords(ctx context.Context, req *ListWordsRequest) (*ListWordsResponse, error) {
	words, err := h.svc.GetWords(ctx)
	if err != nil {
		return nil, APIError(err)
	}
	if req.section != nil {
		words = wordbook.FilterSection(words, *req.section)
	}
	if words == nil {
		words = []wordbook.Word{}
	}
	return &ListWordsResponse{Words: words, Total: len(words)}, nil
}

// UpdateWordStatusRequest sets the status of one word.
type UpdateWordStatusRequest struct {
	ID     string `path:"id"`
	Status string `json:"status"`

	status wordbook.Status
}

// Validate implements Validatable.
func (r *UpdateWordStatusRequest) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return apierrors.MissingField("id")
	}
	if r.Status == "" {
		return apierrors.MissingField("status")
	}
	s, err := wordbook.ParseStatus(r.Status)
	if err != nil {
		e := apierrors.BadRequest(err.Error())
		labels := make([]string, 0, 4)
		for _, st := range wordbook.Statuses() {
			labels = append(labels, string(st))
		}
		return e.WithDetail("allowed", labels)
	}
	r.status = s
	return nil
}

// UpdateWordStatusResponse echoes the applied status.
type UpdateWordStatusResponse struct {
	ID     string          `json:"id"`
	Status wordbook.Status `json:"status"`
}

// UpdateWordStatus patches the status of a word page in Notion.
func (h *Handler) UpdateWordStatus(ctx context.Context, req *UpdateWordStatusRequest) (*UpdateWordStatusResponse, error) {
	if err := h.svc.UpdateWordStatus(ctx, req.ID, req.status); err != nil {
		return nil, APIError(err)
	}
	return &UpdateWordStatusResponse{ID: req.ID, Status: req.status}, nil
}
