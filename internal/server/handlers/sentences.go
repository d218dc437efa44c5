package handlers

import (
	"context"

	apierrors "github.com/maruel/wordbook/internal/errors"
	"github.com/maruel/wordbook/internal/wordbook"
)

// ListSentencesRequest lists the sentences with unmastered words.
type ListSentencesRequest struct {
	Query string `query:"q"`
}

// Validate implements Validatable.
func (*ListSentencesRequest) Validate() error { return nil }

// ListSentencesResponse is the review set of sentences.
type ListSentencesResponse struct {
	Sentences []wordbook.Sentence `json:"sentences"`
	Total     int                 `json:"total"`
}

// ListSentences returns the sentences still containing unmastered words.
func (h *Handler) ListSentences(ctx context.Context, req *ListSentencesRequest) (*ListSentencesResponse, error) {
	sentences, err := h.svc.GetSentences(ctx, req.Query)
	if err != nil {
		return nil, APIError(err)
	}
	return &ListSentencesResponse{Sentences: sentences, Total: len(sentences)}, nil
}

// GetSentenceTextRequest fetches the text of one sentence page.
type GetSentenceTextRequest struct {
	ID string `path:"id"`
}

// Validate implements Validatable.
func (r *GetSentenceTextRequest) Validate() error {
	if r.ID == "" {
		return apierrors.MissingField("id")
	}
	return nil
}

// SentenceTextResponse is the text of one sentence page. Text is empty when
// the page has none.
type SentenceTextResponse struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// GetSentenceText returns the example sentence stored on a sentence page.
func (h *Handler) GetSentenceText(ctx context.Context, req *GetSentenceTextRequest) (*SentenceTextResponse, error) {
	text, err := h.svc.GetSentenceText(ctx, req.ID)
	if err != nil {
		return nil, APIError(err)
	}
	return &SentenceTextResponse{ID: req.ID, Text: text}, nil
}

// GetSentenceTextsRequest resolves several sentence pages at once.
type GetSentenceTextsRequest struct {
	IDs []string `json:"ids"`
	// Limit caps the number of IDs looked up. Zero means the server default.
	Limit int `json:"limit,omitempty"`
}

// Validate implements Validatable.
func (r *GetSentenceTextsRequest) Validate() error {
	if r.Limit < 0 {
		return apierrors.BadRequest("limit must not be negative")
	}
	return nil
}

// SentenceTextsResponse lists the non-empty texts in request order.
type SentenceTextsResponse struct {
	Texts []string `json:"texts"`
}

// GetSentenceTexts resolves sentence IDs to their texts.
func (h *Handler) GetSentenceTexts(ctx context.Context, req *GetSentenceTextsRequest) (*SentenceTextsResponse, error) {
	texts, err := h.svc.GetSentenceTexts(ctx, req.IDs, req.Limit)
	if err != nil {
		return nil, APIError(err)
	}
	if texts == nil {
		texts = []string{}
	}
	return &SentenceTextsResponse{Texts: texts}, nil
}
