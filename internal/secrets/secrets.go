// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: openai-api-key, openalex-email.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-engine/pkg/types"
)

// Key file names understood by Apply.
const (
	OpenAIAPIKey  = "openai-api-key"
	OpenAlexEmail = "openalex-email"
)

// Environment variables consulted when neither the config nor the secrets
// directory provides a value.
const (
	EnvOpenAIAPIKey  = "OPENAI_API_KEY"
	EnvOpenAlexEmail = "OPENALEX_EMAIL"
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

// Apply fills credentials the configuration left empty. A value already set
// in cfg wins, then the secrets file, then the environment variable.
func Apply(cfg *types.PipelineConfig, secrets map[string]string) {
	cfg.Generation.APIKey = first(cfg.Generation.APIKey, secrets[OpenAIAPIKey], os.Getenv(EnvOpenAIAPIKey))
	cfg.Search.OpenAlexEmail = first(cfg.Search.OpenAlexEmail, secrets[OpenAlexEmail], os.Getenv(EnvOpenAlexEmail))
}

func first(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
