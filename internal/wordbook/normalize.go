// Builds Word and Sentence records from raw Notion pages.

package wordbook

import (
	"maps"
	"slices"

	"github.com/maruel/wordbook/internal/notion"
)

// record holds the role values collected from one page.
type record struct {
	text         string
	section      *int
	sequence     *int
	status       Status
	sentenceRefs []string
	sentenceText string
	unmastered   string
}

// collect walks the page properties once, in name order so that the result
// does not depend on map iteration, and keeps the first value found for each
// role.
func collect(page *notion.Page, s *Schema) record {
	var r record
	var title string
	filled := make(map[Role]bool)
	for _, name := range slices.Sorted(maps.Keys(page.Properties)) {
		pv := page.Properties[name]
		f := notion.Extract(name, &pv)
		if pv.Type == "title" && title == "" && f.Kind == notion.FieldText {
			title = f.Text
		}
		role, ok := s.Resolve(name, &f)
		if !ok || filled[role] {
			continue
		}
		switch role {
		case RoleText:
			r.text = f.Text
		case RoleSection, RoleSequence:
			n, ok := f.Int()
			if !ok {
				continue
			}
			if role == RoleSection {
				r.section = &n
			} else {
				r.sequence = &n
			}
		case RoleStatus:
			r.status = Status(f.Text)
		case RoleSentences:
			r.sentenceRefs = slices.Clone(f.IDs)
		case RoleSentenceText:
			r.sentenceText = f.Text
		case RoleUnmastered:
			r.unmastered = f.Text
		}
		filled[role] = true
	}
	if !filled[RoleText] {
		r.text = title
	}
	return r
}

// NormalizeWord builds a Word from a page of the words collection.
//
// The result is returned even when it is not Reviewable; filtering is the
// caller's decision.
func NormalizeWord(page *notion.Page, s *Schema) Word {
	r := collect(page, s)
	return Word{
		Section:            r.section,
		SequenceNo:         r.sequence,
		Text:               r.text,
		Status:             r.status,
		SentenceRefs:       r.sentenceRefs,
		InlineSentenceText: r.sentenceText,
		PageID:             page.ID,
	}
}

// NormalizeSentence builds a Sentence from a page of the sentences
// collection.
func NormalizeSentence(page *notion.Page, s *Schema) Sentence {
	r := collect(page, s)
	return Sentence{
		Section:         r.section,
		SequenceNo:      r.sequence,
		Text:            r.text,
		UnmasteredWords: r.unmastered,
		PageID:          page.ID,
	}
}

// ReviewWords normalizes pages and keeps the reviewable words, in page order.
func ReviewWords(pages []notion.Page, s *Schema) []Word {
	words := make([]Word, 0, len(pages))
	for i := range pages {
		if w := NormalizeWord(&pages[i], s); w.Reviewable() {
			words = append(words, w)
		}
	}
	return words
}

// ReviewSentences normalizes pages and keeps the reviewable sentences,
// ordered by section then sequence number.
func ReviewSentences(pages []notion.Page, s *Schema) []Sentence {
	sentences := make([]Sentence, 0, len(pages))
	for i := range pages {
		if st := NormalizeSentence(&pages[i], s); st.Reviewable() {
			sentences = append(sentences, st)
		}
	}
	slices.SortStableFunc(sentences, func(a, b Sentence) int {
		if c := compareOptInt(a.Section, b.Section); c != 0 {
			return c
		}
		return compareOptInt(a.SequenceNo, b.SequenceNo)
	})
	return sentences
}
