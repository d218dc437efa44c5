package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/maruel/wordbook/internal/notion"
	"github.com/maruel/wordbook/internal/wordbook"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestLoad(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("partial", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "wordbook.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
version: 1
words:
  database_id: words-db
  fields:
    status: [Progress]
    section: [Chapter]
cache:
  ttl: 15s
notion:
  requests_per_second: 1.5
`), 0o600))
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "words-db", cfg.Words.DatabaseID)
		assert.Equal(t, map[string][]string{"status": {"Progress"}, "section": {"Chapter"}}, cfg.Words.Fields,
			"fields replace the defaults instead of merging")
		assert.Equal(t, Default().Sentences, cfg.Sentences)
		assert.Equal(t, 15*time.Second, cfg.Cache.TTL)
		assert.Equal(t, wordbook.DefaultLookupCap, cfg.Cache.SentenceLookupCap)
		assert.InDelta(t, 1.5, cfg.Notion.RequestsPerSecond, 0)
		assert.Equal(t, notion.BaseURL, cfg.Notion.BaseURL)
		assert.Equal(t, "localhost:8080", cfg.HTTP.Addr)

		cols, err := cfg.Collections()
		require.NoError(t, err)
		assert.Equal(t, "Progress", cols.Words.Property(wordbook.RoleStatus))
		assert.Equal(t, "Example sentence", cols.ExampleSentenceProperty)
	})

	t.Run("syntax error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "wordbook.yaml")
		require.NoError(t, os.WriteFile(path, []byte("words: [\n"), 0o600))
		_, err := Load(path)
		require.ErrorContains(t, err, "failed to parse config")
	})
}

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		name string
		edit func(c *Config)
		want string
	}{
		{"version", func(c *Config) { c.Version = 2 }, "unsupported config version: 2"},
		{"words id", func(c *Config) { c.Words.DatabaseID = "" }, "words: database_id is required"},
		{"sentences id", func(c *Config) { c.Sentences.DatabaseID = "" }, "sentences: database_id is required"},
		{"unknown role", func(c *Config) { c.Words.Fields["title"] = []string{"Name"} }, `words: unknown role "title"`},
		{"empty name", func(c *Config) { c.Sentences.Fields["section"] = []string{""} }, "sentences: role section: empty property name"},
		{"ttl", func(c *Config) { c.Cache.TTL = -time.Second }, "cache: ttl must not be negative"},
		{"cap", func(c *Config) { c.Cache.SentenceLookupCap = -1 }, "cache: sentence_lookup_cap must not be negative"},
		{"rate", func(c *Config) { c.Notion.RequestsPerSecond = -1 }, "notion: requests_per_second must not be negative"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			tc.edit(c)
			require.ErrorContains(t, c.Validate(), tc.want)
		})
	}
	require.NoError(t, Default().Validate())
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"WORDBOOK_WORDS_DB": "w",
		"WORDBOOK_HTTP":     ":9000",
	}
	c := Default()
	c.ApplyEnv(func(k string) string { return env[k] })
	assert.Equal(t, "w", c.Words.DatabaseID)
	assert.Equal(t, Default().Sentences.DatabaseID, c.Sentences.DatabaseID)
	assert.Equal(t, ":9000", c.HTTP.Addr)
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Default().Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "ttl: 1m0s")
	cfg, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestJSONSchema(t *testing.T) {
	data, err := JSONSchema()
	require.NoError(t, err)
	var s struct {
		Title      string                     `json:"title"`
		Properties map[string]json.RawMessage `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(data, &s))
	assert.Equal(t, "wordbook configuration", s.Title)
	for _, key := range []string{"version", "words", "sentences", "cache", "notion", "http"} {
		assert.Contains(t, s.Properties, key)
	}
}

func TestNotionOptions(t *testing.T) {
	o := Default().NotionOptions()
	assert.Equal(t, notion.APIVersion, o.APIVersion)
	assert.Equal(t, 30*time.Second, o.Timeout)
	assert.Nil(t, o.Transport)
}
