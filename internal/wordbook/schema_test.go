package wordbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maruel/wordbook/internal/notion"
)

func TestNewSchema(t *testing.T) {
	t.Run("unknown role", func(t *testing.T) {
		_, err := NewSchema(map[Role][]string{"Section": {"Section"}})
		require.Error(t, err)
	})
	t.Run("empty name", func(t *testing.T) {
		_, err := NewSchema(map[Role][]string{RoleStatus: {"  "}})
		require.Error(t, err)
	})
	t.Run("names", func(t *testing.T) {
		s, err := NewSchema(map[Role][]string{RoleSequence: {" Example No ", "No"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"Example No", "No"}, s.Names(RoleSequence))
		assert.Equal(t, "Example No", s.Property(RoleSequence))
		assert.Empty(t, s.Property(RoleStatus))
	})
}

func TestSchemaResolve(t *testing.T) {
	s := DefaultCollections().Words
	for _, tc := range []struct {
		name   string
		prop   string
		field  notion.Field
		want   Role
		wantOK bool
	}{
		{"sequence from number", "Example No", notion.Field{Kind: notion.FieldNumber, Number: 4}, RoleSequence, true},
		{"sequence from digits", "example no", notion.Field{Kind: notion.FieldText, Text: "4"}, RoleSequence, true},
		{"sentences from relation", "Example No", notion.Field{Kind: notion.FieldIDs, IDs: []string{"a"}}, RoleSentences, true},
		{"status label", "Status", notion.Field{Kind: notion.FieldLabel, Text: "Seen it"}, RoleStatus, true},
		{"status as text", "Status", notion.Field{Kind: notion.FieldText, Text: "Seen it"}, "", false},
		{"absent", "Section", notion.Field{}, "", false},
		{"unmapped", "Notes", notion.Field{Kind: notion.FieldText, Text: "x"}, "", false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := s.Resolve(tc.prop, &tc.field)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Sentence_Text ")
	require.NoError(t, err)
	assert.Equal(t, RoleSentenceText, r)
	_, err = ParseRole("title")
	require.Error(t, err)
}
