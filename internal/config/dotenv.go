// Loads secrets from the environment and .env files.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// TokenEnv is the environment variable holding the Notion integration token.
const TokenEnv = "NOTION_TOKEN"

// ErrNoToken is returned when no Notion token could be found.
var ErrNoToken = errors.New(TokenEnv + " is not set; pass -token, export it or add it to .env")

// LoadDotEnv parses the .env file in dir. A missing file yields an empty map.
func LoadDotEnv(dir string) (map[string]string, error) {
	env := make(map[string]string)
	path := filepath.Join(dir, ".env")
	envContent, err := os.ReadFile(path) //nolint:gosec // G304: path is derived from the config location
	if err != nil {
		if os.IsNotExist(err) {
			return env, nil
		}
		return nil, err
	}

	for line := range strings.SplitSeq(string(envContent), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)

		if strings.HasPrefix(val, "'") || strings.HasSuffix(val, "'") {
			if len(val) < 2 || !strings.HasPrefix(val, "'") || !strings.HasSuffix(val, "'") {
				return nil, fmt.Errorf("unbalanced single quotes in .env: %s", key)
			}
			val = val[1 : len(val)-1]
		} else if strings.HasPrefix(val, "\"") {
			unquoted, err := strconv.Unquote(val)
			if err != nil {
				return nil, fmt.Errorf("failed to unquote %s: %w", key, err)
			}
			val = unquoted
		}

		env[key] = val
	}
	return env, nil
}

// Token resolves the Notion token. The explicit value wins, then the
// environment, then the .env file in dir.
func Token(explicit string, getenv func(string) string, dir string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if v := getenv(TokenEnv); v != "" {
		return v, nil
	}
	env, err := LoadDotEnv(dir)
	if err != nil {
		return "", err
	}
	if v := env[TokenEnv]; v != "" {
		return v, nil
	}
	return "", ErrNoToken
}
