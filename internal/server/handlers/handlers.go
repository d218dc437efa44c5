// Package handlers implements the JSON API over the word book service.
package handlers

import (
	"errors"
	"net/http"

	apierrors "github.com/maruel/wordbook/internal/errors"
	"github.com/maruel/wordbook/internal/notion"
	"github.com/maruel/wordbook/internal/wordbook"
)

// Validatable is implemented by every request type.
type Validatable interface {
	Validate() error
}

// Handler serves the word book endpoints.
type Handler struct {
	svc     *wordbook.Service
	version string
}

// New returns a Handler backed by svc.
func New(svc *wordbook.Service, version string) *Handler {
	return &Handler{svc: svc, version: version}
}

// APIError converts a service error to its API representation.
//
// Rejected input is a 400, a page unknown to Notion a 404, any other failed
// Notion call a 502.
func APIError(err error) error {
	var ews apierrors.ErrorWithStatus
	if errors.As(err, &ews) {
		return err
	}
	if errors.Is(err, wordbook.ErrUnknownStatus) || errors.Is(err, wordbook.ErrEmptyPageID) {
		return apierrors.BadRequest(err.Error())
	}
	var ne *notion.Error
	if errors.As(err, &ne) && ne.Status == http.StatusNotFound {
		return apierrors.NotFound("page").Wrap(err)
	}
	var te *wordbook.TransportError
	var me *wordbook.MutationError
	if errors.As(err, &te) || errors.As(err, &me) {
		e := apierrors.Upstream("notion request failed").Wrap(err)
		if ne != nil {
			e.WithDetail("notion_status", ne.Status)
			if ne.Code != "" {
				e.WithDetail("notion_code", ne.Code)
			}
		}
		return e
	}
	return err
}
