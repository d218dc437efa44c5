package wordbook

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maruel/wordbook/internal/notion"
)

func newTestService(t *testing.T) (*Service, *fakeUpstream, *manualClock) {
	t.Helper()
	up := newFakeUpstream()
	cols := DefaultCollections()
	up.databases[cols.WordsDatabaseID] = []notion.Page{
		wordPage("w1", "一", "Not sure", 1),
		wordPage("w2", "二", "Seen it", 1),
		wordPage("w3", "三", "Mastered", 2),
		wordPage("w4", "四", "Almost there", 2),
	}
	up.databases[cols.SentencesDatabaseID] = []notion.Page{
		page("s1", map[string]notion.PropertyValue{
			"Sentence":         titleProp("猫が好きです。"),
			"Section":          numberProp(2),
			"No":               numberProp(1),
			"Unmastered Words": formulaProp("猫"),
			"Example sentence": richProp("猫が好きです。"),
		}),
		page("s2", map[string]notion.PropertyValue{
			"Sentence":         titleProp("犬が走る。"),
			"Section":          numberProp(1),
			"No":               numberProp(3),
			"Unmastered Words": formulaProp("Dog, 走る"),
			"Example sentence": richProp("犬が走る。"),
		}),
		page("s3", map[string]notion.PropertyValue{
			"Sentence":         titleProp("空です。"),
			"Unmastered Words": formulaProp(" "),
		}),
	}
	clk := newManualClock()
	svc := NewService(func() (Upstream, error) { return up, nil }, NewCache(clk, time.Minute), cols, 0)
	return svc, up, clk
}

func pageIDs[T interface{ Word | Sentence }](items []T) []string {
	var ids []string
	for _, it := range items {
		switch v := any(it).(type) {
		case Word:
			ids = append(ids, v.PageID)
		case Sentence:
			ids = append(ids, v.PageID)
		}
	}
	return ids
}

func TestServiceGetWords(t *testing.T) {
	ctx := t.Context()
	svc, up, clk := newTestService(t)

	words, err := svc.GetWords(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"w1", "w2", "w4"}, pageIDs(words))

	_, err = svc.GetWords(ctx)
	require.NoError(t, err)
	q, _, _ := up.counts()
	assert.Equal(t, 1, q, "second call within the ttl is served from cache")

	clk.Advance(time.Minute)
	_, err = svc.GetWords(ctx)
	require.NoError(t, err)
	q, _, _ = up.counts()
	assert.Equal(t, 2, q)

	words[0].Text = "mutated"
	again, err := svc.GetWords(ctx)
	require.NoError(t, err)
	assert.Equal(t, "一", again[0].Text, "callers get their own slice")

	assert.Equal(t, []string{"w4"}, pageIDs(FilterSection(again, 2)))
}

func TestServiceTransportError(t *testing.T) {
	ctx := t.Context()
	svc, up, _ := newTestService(t)
	up.set(func(f *fakeUpstream) { f.queryErr = errUpstream })

	_, err := svc.GetWords(ctx)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "fetch words", te.Op)
	require.ErrorIs(t, err, errUpstream)

	up.set(func(f *fakeUpstream) { f.queryErr = nil })
	words, err := svc.GetWords(ctx)
	require.NoError(t, err)
	assert.Len(t, words, 3)
	q, _, _ := up.counts()
	assert.Equal(t, 2, q, "the failure was not cached")
}

func TestServiceConnectError(t *testing.T) {
	svc := NewService(func() (Upstream, error) { return nil, errors.New("NOTION_TOKEN is not set") },
		NewCache(newManualClock(), time.Minute), DefaultCollections(), 0)
	_, err := svc.GetWords(t.Context())
	var te *TransportError
	require.ErrorAs(t, err, &te)
	err = svc.UpdateWordStatus(t.Context(), "w1", StatusMastered)
	var me *MutationError
	require.ErrorAs(t, err, &me)
}

func TestServiceGetSentences(t *testing.T) {
	ctx := t.Context()
	svc, up, _ := newTestService(t)

	all, err := svc.GetSentences(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"s2", "s1"}, pageIDs(all))

	dog, err := svc.GetSentences(ctx, "dog")
	require.NoError(t, err)
	assert.Equal(t, []string{"s2"}, pageIDs(dog))

	none, err := svc.GetSentences(ctx, "鳥")
	require.NoError(t, err)
	assert.Empty(t, none)

	q, _, _ := up.counts()
	assert.Equal(t, 1, q, "search is applied to the cached list")
}

func TestServiceSentenceTexts(t *testing.T) {
	ctx := t.Context()

	t.Run("single", func(t *testing.T) {
		svc, up, _ := newTestService(t)
		text, err := svc.GetSentenceText(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "猫が好きです。", text)

		text, err = svc.GetSentenceText(ctx, "s3")
		require.NoError(t, err)
		assert.Empty(t, text)

		text, err = svc.GetSentenceText(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, text)

		_, err = svc.GetSentenceText(ctx, "s1")
		require.NoError(t, err)
		_, g, _ := up.counts()
		assert.Equal(t, 2, g)
	})

	t.Run("batch skips empty and keeps order", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		texts, err := svc.GetSentenceTexts(ctx, []string{"s2", "s3", "", "s1"}, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"犬が走る。", "猫が好きです。"}, texts)
	})

	t.Run("cap", func(t *testing.T) {
		svc, up, _ := newTestService(t)
		ids := make([]string, 25)
		for i := range ids {
			ids[i] = "s1"
		}
		_, err := svc.GetSentenceTexts(ctx, []string{"s2", "s1", "s3"}, 2)
		require.NoError(t, err)
		_, g, _ := up.counts()
		assert.Equal(t, 2, g)

		texts, err := svc.GetSentenceTexts(ctx, ids, 0)
		require.NoError(t, err)
		assert.Len(t, texts, DefaultLookupCap)
	})

	t.Run("missing page aborts", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		_, err := svc.GetSentenceTexts(ctx, []string{"s1", "gone"}, 0)
		var te *TransportError
		require.ErrorAs(t, err, &te)
		var ne *notion.Error
		require.ErrorAs(t, err, &ne)
		assert.Equal(t, 404, ne.Status)
	})
}

func TestServiceUpdateWordStatus(t *testing.T) {
	ctx := t.Context()

	t.Run("visible before ttl", func(t *testing.T) {
		svc, up, _ := newTestService(t)
		words, err := svc.GetWords(ctx)
		require.NoError(t, err)
		require.Contains(t, pageIDs(words), "w2")

		require.NoError(t, svc.UpdateWordStatus(ctx, "w2", StatusMastered))
		require.Len(t, up.updates, 1)
		assert.Equal(t, map[string]notion.PropertyPatch{
			"Status": {Status: &notion.OptionRef{Name: "Mastered"}},
		}, up.updates[0])

		words, err = svc.GetWords(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"w1", "w4"}, pageIDs(words))
	})

	t.Run("failure keeps cache", func(t *testing.T) {
		svc, up, _ := newTestService(t)
		_, err := svc.GetWords(ctx)
		require.NoError(t, err)
		_, err = svc.GetSentenceText(ctx, "s1")
		require.NoError(t, err)
		up.set(func(f *fakeUpstream) { f.updateErr = &notion.Error{Status: 409, Code: "conflict_error", Message: "Conflict"} })

		err = svc.UpdateWordStatus(ctx, "w1", StatusSeenIt)
		var me *MutationError
		require.ErrorAs(t, err, &me)
		assert.Equal(t, "w1", me.PageID)
		assert.Equal(t, StatusSeenIt, me.Status)

		_, err = svc.GetWords(ctx)
		require.NoError(t, err)
		q, _, u := up.counts()
		assert.Equal(t, 1, q)
		assert.Equal(t, 1, u, "no retry")
	})

	t.Run("invalid input", func(t *testing.T) {
		svc, up, _ := newTestService(t)
		require.ErrorIs(t, svc.UpdateWordStatus(ctx, "", StatusMastered), ErrEmptyPageID)
		require.ErrorIs(t, svc.UpdateWordStatus(ctx, "w1", "Done"), ErrUnknownStatus)
		_, _, u := up.counts()
		assert.Zero(t, u)
	})
}

func TestServiceSetCollections(t *testing.T) {
	ctx := t.Context()
	svc, up, _ := newTestService(t)
	_, err := svc.GetWords(ctx)
	require.NoError(t, err)

	cols := svc.Collections()
	cols.WordsDatabaseID = "other"
	up.set(func(f *fakeUpstream) {
		f.databases["other"] = []notion.Page{wordPage("o1", "他", "Not sure", 9)}
	})
	svc.SetCollections(cols)

	words, err := svc.GetWords(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"o1"}, pageIDs(words))
}
