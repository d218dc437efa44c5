// Defines the normalized word and sentence records.

package wordbook

import "strings"

// Word is a vocabulary entry from the words collection.
type Word struct {
	Section    *int   `json:"section,omitempty"`
	SequenceNo *int   `json:"sequence_no,omitempty"`
	Text       string `json:"text"`
	Status     Status `json:"status,omitempty"`
	// SentenceRefs are related sentence page IDs, in relation order. They are
	// not resolved eagerly; see Service.GetSentenceTexts.
	SentenceRefs []string `json:"sentence_refs,omitempty"`
	// InlineSentenceText is an example sentence rolled up onto the word.
	InlineSentenceText string `json:"inline_sentence_text,omitempty"`
	// PageID is the source page, the only key usable for updates.
	PageID string `json:"page_id"`
}

// Reviewable reports whether the word belongs to the review set: it has
// text and is not mastered.
func (w *Word) Reviewable() bool {
	return w.Text != "" && w.Status != StatusMastered
}

// Sentence is an example sentence from the sentences collection.
type Sentence struct {
	Section         *int   `json:"section,omitempty"`
	SequenceNo      *int   `json:"sequence_no,omitempty"`
	Text            string `json:"text"`
	UnmasteredWords string `json:"unmastered_words"`
	PageID          string `json:"page_id"`
}

// Reviewable reports whether the sentence has text and still contains
// unmastered words.
func (s *Sentence) Reviewable() bool {
	return s.Text != "" && strings.TrimSpace(s.UnmasteredWords) != ""
}

// compareOptInt orders nil after every value.
func compareOptInt(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	default:
		return 0
	}
}
