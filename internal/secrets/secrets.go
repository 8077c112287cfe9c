// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files and
// from a dotenv file.
//
// In the secrets directory each file is one secret: the filename is the key
// name and the trimmed contents are the value. Supported key files:
// hf-token, serpapi-key.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/pdiddy/research-supervisor/pkg/types"
)

// Key file names.
const (
	KeyHFToken = "hf-token"
	KeySerpAPI = "serpapi-key"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged and skipped.
func Load(dir string, logger *zap.Logger) (map[string]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadDotEnv sets environment variables from the dotenv file at path.
// Variables already present in the environment keep their values. A missing
// file is not an error.
func LoadDotEnv(path string) error {
	if err := gotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Fill copies secrets into credentials cfg leaves empty. It reports the keys
// it used.
func Fill(cfg *types.Config, secrets map[string]string) []string {
	var used []string
	if cfg.LLM.APIKey == "" {
		if v, ok := secrets[KeyHFToken]; ok {
			cfg.LLM.APIKey = v
			used = append(used, KeyHFToken)
		}
	}
	if cfg.Search.APIKey == "" {
		if v, ok := secrets[KeySerpAPI]; ok {
			cfg.Search.APIKey = v
			used = append(used, KeySerpAPI)
		}
	}
	return used
}
