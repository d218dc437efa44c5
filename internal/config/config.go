// Package config loads the wordbook configuration file.
//
// The file is YAML. Every key is optional; missing keys take the values of
// Default, which describe the reference word book. Secrets never live in the
// file: the Notion token comes from the environment or a .env file next to it.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/maruel/wordbook/internal/notion"
	"github.com/maruel/wordbook/internal/wordbook"
)

// DefaultPath is the configuration file used when none is specified.
const DefaultPath = "wordbook.yaml"

// Config is the root of the configuration file.
type Config struct {
	Version   int              `yaml:"version" jsonschema:"enum=1"`
	Words     CollectionConfig `yaml:"words"`
	Sentences CollectionConfig `yaml:"sentences"`
	Cache     CacheConfig      `yaml:"cache"`
	Notion    NotionConfig     `yaml:"notion"`
	HTTP      HTTPConfig       `yaml:"http"`
}

// CollectionConfig locates one Notion database and maps its properties.
type CollectionConfig struct {
	DatabaseID string `yaml:"database_id"`
	// Fields maps a role (section, sequence, status, ...) to the property
	// names that may carry it. Names match case-insensitively.
	Fields map[string][]string `yaml:"fields,omitempty"`
	// ExampleSentenceProperty is the property holding the sentence text on a
	// sentence page. Only meaningful for the sentences collection.
	ExampleSentenceProperty string `yaml:"example_sentence_property,omitempty"`
}

// CacheConfig tunes the value cache.
type CacheConfig struct {
	TTL               time.Duration `yaml:"ttl" jsonschema:"type=string"`
	SentenceLookupCap int           `yaml:"sentence_lookup_cap"`
}

// NotionConfig tunes the Notion API client.
type NotionConfig struct {
	BaseURL           string        `yaml:"base_url"`
	APIVersion        string        `yaml:"api_version"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Timeout           time.Duration `yaml:"timeout" jsonschema:"type=string"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration of the reference word book.
func Default() *Config {
	cols := wordbook.DefaultCollections()
	return &Config{
		Version: 1,
		Words: CollectionConfig{
			DatabaseID: cols.WordsDatabaseID,
			Fields: map[string][]string{
				string(wordbook.RoleSection):      {"Section"},
				string(wordbook.RoleSequence):     {"Example No", "No"},
				string(wordbook.RoleStatus):       {"Status"},
				string(wordbook.RoleSentences):    {"Example No", "Example sentences"},
				string(wordbook.RoleSentenceText): {"Example sentence"},
			},
		},
		Sentences: CollectionConfig{
			DatabaseID: cols.SentencesDatabaseID,
			Fields: map[string][]string{
				string(wordbook.RoleSection):    {"Section"},
				string(wordbook.RoleSequence):   {"No"},
				string(wordbook.RoleUnmastered): {"Unmastered Words"},
			},
			ExampleSentenceProperty: cols.ExampleSentenceProperty,
		},
		Cache: CacheConfig{
			TTL:               wordbook.DefaultTTL,
			SentenceLookupCap: wordbook.DefaultLookupCap,
		},
		Notion: NotionConfig{
			BaseURL:           notion.BaseURL,
			APIVersion:        notion.APIVersion,
			RequestsPerSecond: notion.RequestsPerSecond,
			Timeout:           30 * time.Second,
		},
		HTTP: HTTPConfig{Addr: "localhost:8080"},
	}
}

// Load reads the configuration at path. A missing file yields Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-specified config path
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates a configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.setDefaults(Default())
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// setDefaults fills zero values from d. A collection's fields are replaced as
// a whole, never merged, so that a role can be removed by omitting it.
func (c *Config) setDefaults(d *Config) {
	if c.Version == 0 {
		c.Version = d.Version
	}
	c.Words.setDefaults(&d.Words)
	c.Sentences.setDefaults(&d.Sentences)
	if c.Cache.TTL == 0 {
		c.Cache.TTL = d.Cache.TTL
	}
	if c.Cache.SentenceLookupCap == 0 {
		c.Cache.SentenceLookupCap = d.Cache.SentenceLookupCap
	}
	if c.Notion.BaseURL == "" {
		c.Notion.BaseURL = d.Notion.BaseURL
	}
	if c.Notion.APIVersion == "" {
		c.Notion.APIVersion = d.Notion.APIVersion
	}
	if c.Notion.RequestsPerSecond == 0 {
		c.Notion.RequestsPerSecond = d.Notion.RequestsPerSecond
	}
	if c.Notion.Timeout == 0 {
		c.Notion.Timeout = d.Notion.Timeout
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = d.HTTP.Addr
	}
}

func (c *CollectionConfig) setDefaults(d *CollectionConfig) {
	if c.DatabaseID == "" {
		c.DatabaseID = d.DatabaseID
	}
	if len(c.Fields) == 0 {
		c.Fields = maps.Clone(d.Fields)
	}
	if c.ExampleSentenceProperty == "" {
		c.ExampleSentenceProperty = d.ExampleSentenceProperty
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Version != 1 {
		return fmt.Errorf("unsupported config version: %d", c.Version)
	}
	if c.Words.DatabaseID == "" {
		return errors.New("words: database_id is required")
	}
	if c.Sentences.DatabaseID == "" {
		return errors.New("sentences: database_id is required")
	}
	if _, err := c.Words.schema(); err != nil {
		return fmt.Errorf("words: %w", err)
	}
	if _, err := c.Sentences.schema(); err != nil {
		return fmt.Errorf("sentences: %w", err)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache: ttl must not be negative: %s", c.Cache.TTL)
	}
	if c.Cache.SentenceLookupCap < 0 {
		return fmt.Errorf("cache: sentence_lookup_cap must not be negative: %d", c.Cache.SentenceLookupCap)
	}
	if c.Notion.RequestsPerSecond < 0 {
		return fmt.Errorf("notion: requests_per_second must not be negative: %g", c.Notion.RequestsPerSecond)
	}
	if c.Notion.Timeout < 0 {
		return fmt.Errorf("notion: timeout must not be negative: %s", c.Notion.Timeout)
	}
	return nil
}

func (c *CollectionConfig) schema() (*wordbook.Schema, error) {
	fields := make(map[wordbook.Role][]string, len(c.Fields))
	for _, name := range slices.Sorted(maps.Keys(c.Fields)) {
		role, err := wordbook.ParseRole(name)
		if err != nil {
			return nil, err
		}
		fields[role] = append(fields[role], c.Fields[name]...)
	}
	return wordbook.NewSchema(fields)
}

// ApplyEnv overrides settings from environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("WORDBOOK_WORDS_DB"); v != "" {
		c.Words.DatabaseID = v
	}
	if v := getenv("WORDBOOK_SENTENCES_DB"); v != "" {
		c.Sentences.DatabaseID = v
	}
	if v := getenv("WORDBOOK_HTTP"); v != "" {
		c.HTTP.Addr = v
	}
}

// Collections converts the collection settings for the service.
func (c *Config) Collections() (wordbook.Collections, error) {
	words, err := c.Words.schema()
	if err != nil {
		return wordbook.Collections{}, fmt.Errorf("words: %w", err)
	}
	sentences, err := c.Sentences.schema()
	if err != nil {
		return wordbook.Collections{}, fmt.Errorf("sentences: %w", err)
	}
	return wordbook.Collections{
		WordsDatabaseID:         c.Words.DatabaseID,
		Words:                   words,
		SentencesDatabaseID:     c.Sentences.DatabaseID,
		Sentences:               sentences,
		ExampleSentenceProperty: c.Sentences.ExampleSentenceProperty,
	}, nil
}

// NotionOptions returns the client options.
func (c *Config) NotionOptions() *notion.Options {
	return &notion.Options{
		BaseURL:           c.Notion.BaseURL,
		APIVersion:        c.Notion.APIVersion,
		RequestsPerSecond: c.Notion.RequestsPerSecond,
		Timeout:           c.Notion.Timeout,
	}
}

// Marshal returns the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// JSONSchema returns the JSON Schema of the configuration file, for editor
// completion.
func JSONSchema() ([]byte, error) {
	r := jsonschema.Reflector{FieldNameTag: "yaml", DoNotReference: true}
	s := r.Reflect(&Config{})
	s.Title = "wordbook configuration"
	return json.MarshalIndent(s, "", "  ")
}
