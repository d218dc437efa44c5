package server

import (
	"net/http"

	"github.com/maruel/wordbook/internal/server/handlers"
	"github.com/maruel/wordbook/internal/wordbook"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(svc *wordbook.Service, version string) http.Handler {
	mux := http.NewServeMux()
	h := handlers.New(svc, version)

	mux.Handle("GET /api/health", Wrap(h.Health))

	mux.Handle("GET /api/words", Wrap(h.ListWords))
	mux.Handle("PUT /api/words/{id}/status", Wrap(h.UpdateWordStatus))

	mux.Handle("GET /api/sentences", Wrap(h.ListSentences))
	mux.Handle("GET /api/sentences/{id}/text", Wrap(h.GetSentenceText))
	mux.Handle("POST /api/sentences/texts", Wrap(h.GetSentenceTexts))

	return LogRequests(mux)
}
