package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDotEnv(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))
	return dir
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		env, err := LoadDotEnv(t.TempDir())
		require.NoError(t, err)
		assert.Empty(t, env)
	})

	t.Run("values", func(t *testing.T) {
		dir := writeDotEnv(t, `
# Notion integration
NOTION_TOKEN=secret_abc
export WORDBOOK_HTTP = :9000
QUOTED="a \"b\""
SINGLE='raw value'
not a pair
`)
		env, err := LoadDotEnv(dir)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"NOTION_TOKEN":  "secret_abc",
			"WORDBOOK_HTTP": ":9000",
			"QUOTED":        `a "b"`,
			"SINGLE":        "raw value",
		}, env)
	})

	t.Run("unbalanced", func(t *testing.T) {
		_, err := LoadDotEnv(writeDotEnv(t, "A='x\n"))
		require.ErrorContains(t, err, "unbalanced single quotes")
	})

	t.Run("bad quoting", func(t *testing.T) {
		_, err := LoadDotEnv(writeDotEnv(t, "A=\"x\n"))
		require.ErrorContains(t, err, "failed to unquote A")
	})
}

func TestToken(t *testing.T) {
	dir := writeDotEnv(t, "NOTION_TOKEN=from-file\n")
	noEnv := func(string) string { return "" }
	withEnv := func(k string) string {
		if k == TokenEnv {
			return "from-env"
		}
		return ""
	}

	tok, err := Token("from-flag", withEnv, dir)
	require.NoError(t, err)
	assert.Equal(t, "from-flag", tok)

	tok, err = Token("", withEnv, dir)
	require.NoError(t, err)
	assert.Equal(t, "from-env", tok)

	tok, err = Token("", noEnv, dir)
	require.NoError(t, err)
	assert.Equal(t, "from-file", tok)

	_, err = Token("", noEnv, t.TempDir())
	require.ErrorIs(t, err, ErrNoToken)
}
