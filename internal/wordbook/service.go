// Exposes the review set and status updates to UI collaborators.

package wordbook

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/maruel/wordbook/internal/notion"
)

// Cache keys of the aggregate fetches.
const (
	KeyWords     = "words"
	KeySentences = "sentences"
)

// DefaultLookupCap bounds how many sentence IDs GetSentenceTexts resolves
// per call.
const DefaultLookupCap = 10

// Upstream is the subset of the Notion API the service consumes.
type Upstream interface {
	QueryDatabaseAll(ctx context.Context, databaseID string, opts *notion.QueryOptions) ([]notion.Page, error)
	GetPage(ctx context.Context, id string) (*notion.Page, error)
	UpdatePageProperties(ctx context.Context, id string, props map[string]notion.PropertyPatch) (*notion.Page, error)
}

// Collections describes where words and sentences live and how to read them.
type Collections struct {
	WordsDatabaseID     string
	Words               *Schema
	SentencesDatabaseID string
	Sentences           *Schema
	// ExampleSentenceProperty is the property read from a sentence page by
	// GetSentenceText.
	ExampleSentenceProperty string
}

// DefaultCollections returns the layout of the reference word book.
func DefaultCollections() Collections {
	return Collections{
		WordsDatabaseID: "2230dc53-a13b-8007-91d2-c3ed98f8dc95",
		Words: MustSchema(map[Role][]string{
			RoleSection:      {"Section"},
			RoleSequence:     {"Example No", "No"},
			RoleStatus:       {"Status"},
			RoleSentences:    {"Example No", "Example sentences"},
			RoleSentenceText: {"Example sentence"},
		}),
		SentencesDatabaseID: "2230dc53-a13b-8055-9c36-cbe6162846ef",
		Sentences: MustSchema(map[Role][]string{
			RoleSection:    {"Section"},
			RoleSequence:   {"No"},
			RoleUnmastered: {"Unmastered Words"},
		}),
		ExampleSentenceProperty: "Example sentence",
	}
}

// Service serves words and sentences from a TTL cache in front of Notion.
//
// All remote calls are sequential; the service starts no goroutines.
type Service struct {
	upstream  *Resource[Upstream]
	cache     *Cache
	lookupCap int

	mu   sync.RWMutex
	cols Collections
}

// NewService returns a Service. connect is called once, on first use, to
// obtain the upstream client. lookupCap <= 0 means DefaultLookupCap.
func NewService(connect func() (Upstream, error), cache *Cache, cols Collections, lookupCap int) *Service {
	if lookupCap <= 0 {
		lookupCap = DefaultLookupCap
	}
	return &Service{
		upstream:  NewResource(connect),
		cache:     cache,
		lookupCap: lookupCap,
		cols:      cols,
	}
}

// Cache returns the value cache.
func (s *Service) Cache() *Cache {
	return s.cache
}

// Collections returns the current collection layout.
func (s *Service) Collections() Collections {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cols
}

// SetCollections replaces the collection layout and flushes every cached
// value derived from the previous one.
func (s *Service) SetCollections(cols Collections) {
	s.mu.Lock()
	s.cols = cols
	s.mu.Unlock()
	s.cache.Flush()
}

func (s *Service) client(op string) (Upstream, error) {
	up, err := s.upstream.Get()
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("connect: %w", err)}
	}
	return up, nil
}

// GetWords returns the words not yet mastered, in collection order.
func (s *Service) GetWords(ctx context.Context) ([]Word, error) {
	cols := s.Collections()
	words, err := Memo(ctx, s.cache, KeyWords, func(ctx context.Context) ([]Word, error) {
		pages, err := s.fetchAll(ctx, "fetch words", cols.WordsDatabaseID)
		if err != nil {
			return nil, err
		}
		words := ReviewWords(pages, cols.Words)
		slog.InfoContext(ctx, "Fetched words", "pages", len(pages), "unmastered", len(words))
		return words, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]Word(nil), words...), nil
}

// GetSentences returns the sentences that still contain unmastered words,
// ordered by section and number. When query is not empty, only sentences
// whose unmastered words contain it (case-insensitively) are returned.
func (s *Service) GetSentences(ctx context.Context, query string) ([]Sentence, error) {
	cols := s.Collections()
	sentences, err := Memo(ctx, s.cache, KeySentences, func(ctx context.Context) ([]Sentence, error) {
		pages, err := s.fetchAll(ctx, "fetch sentences", cols.SentencesDatabaseID)
		if err != nil {
			return nil, err
		}
		sentences := ReviewSentences(pages, cols.Sentences)
		slog.InfoContext(ctx, "Fetched sentences", "pages", len(pages), "unmastered", len(sentences))
		return sentences, nil
	})
	if err != nil {
		return nil, err
	}
	return FilterSentences(sentences, query), nil
}

func (s *Service) fetchAll(ctx context.Context, op, databaseID string) ([]notion.Page, error) {
	up, err := s.client(op)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	pages, err := up.QueryDatabaseAll(ctx, databaseID, nil)
	if err != nil {
		slog.WarnContext(ctx, "Fetch failed", "op", op, "database", databaseID, "err", err)
		return nil, &TransportError{Op: op, Err: err}
	}
	slog.DebugContext(ctx, "Fetched collection", "database", databaseID, "pages", len(pages), "duration", time.Since(start))
	return pages, nil
}

// GetSentenceText returns the example sentence stored on a sentence page, or
// "" when the page has none. An empty id yields "".
func (s *Service) GetSentenceText(ctx context.Context, sentenceID string) (string, error) {
	if sentenceID == "" {
		return "", nil
	}
	prop := s.Collections().ExampleSentenceProperty
	return Memo(ctx, s.cache, "sentence_text:"+sentenceID, func(ctx context.Context) (string, error) {
		up, err := s.client("retrieve sentence")
		if err != nil {
			return "", err
		}
		page, err := up.GetPage(ctx, sentenceID)
		if err != nil {
			slog.WarnContext(ctx, "Failed to retrieve sentence", "id", sentenceID, "err", err)
			return "", &TransportError{Op: "retrieve sentence " + sentenceID, Err: err}
		}
		name, pv, ok := lookupProperty(page, prop)
		if !ok {
			return "", nil
		}
		f := notion.Extract(name, &pv)
		if f.Kind != notion.FieldText {
			return "", nil
		}
		return f.Text, nil
	})
}

// GetSentenceTexts resolves sentence IDs to their text, one at a time, and
// returns the non-empty ones in input order. At most limit IDs are looked up;
// limit <= 0 means the service default.
func (s *Service) GetSentenceTexts(ctx context.Context, sentenceIDs []string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = s.lookupCap
	}
	ids := sentenceIDs[:min(limit, len(sentenceIDs))]
	key := fmt.Sprintf("sentence_texts:%d:%s", limit, strings.Join(ids, ","))
	texts, err := Memo(ctx, s.cache, key, func(ctx context.Context) ([]string, error) {
		texts := make([]string, 0, len(ids))
		for _, id := range ids {
			t, err := s.GetSentenceText(ctx, id)
			if err != nil {
				return nil, err
			}
			if t != "" {
				texts = append(texts, t)
			}
		}
		return texts, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]string(nil), texts...), nil
}

// UpdateWordStatus sets the status of one word page.
//
// Only the status property is sent. On success the cached word list is
// invalidated so the next GetWords reflects the change. On failure the cache
// is untouched and the error is returned without retrying.
func (s *Service) UpdateWordStatus(ctx context.Context, pageID string, status Status) error {
	if pageID == "" {
		return ErrEmptyPageID
	}
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}
	prop := s.Collections().Words.Property(RoleStatus)
	if prop == "" {
		prop = "Status"
	}
	up, err := s.upstream.Get()
	if err != nil {
		return &MutationError{PageID: pageID, Status: status, Err: fmt.Errorf("connect: %w", err)}
	}
	patch := map[string]notion.PropertyPatch{
		prop: {Status: &notion.OptionRef{Name: string(status)}},
	}
	if _, err := up.UpdatePageProperties(ctx, pageID, patch); err != nil {
		slog.WarnContext(ctx, "Status update failed", "page", pageID, "status", status, "err", err)
		return &MutationError{PageID: pageID, Status: status, Err: err}
	}
	s.cache.Invalidate(KeyWords)
	slog.InfoContext(ctx, "Updated word status", "page", pageID, "status", status)
	return nil
}

// FilterSection returns the words of one section.
func FilterSection(words []Word, section int) []Word {
	var out []Word
	for i := range words {
		if words[i].Section != nil && *words[i].Section == section {
			out = append(out, words[i])
		}
	}
	return out
}

// FilterSentences returns the sentences whose unmastered words contain query,
// ignoring case. An empty query returns a copy of all sentences.
func FilterSentences(sentences []Sentence, query string) []Sentence {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]Sentence, 0, len(sentences))
	for i := range sentences {
		if query == "" || strings.Contains(strings.ToLower(sentences[i].UnmasteredWords), query) {
			out = append(out, sentences[i])
		}
	}
	return out
}

// lookupProperty finds a property by exact name, then case-insensitively.
func lookupProperty(page *notion.Page, name string) (string, notion.PropertyValue, bool) {
	if pv, ok := page.Properties[name]; ok {
		return name, pv, true
	}
	for n, pv := range page.Properties {
		if strings.EqualFold(strings.TrimSpace(n), strings.TrimSpace(name)) {
			return n, pv, true
		}
	}
	return "", notion.PropertyValue{}, false
}
