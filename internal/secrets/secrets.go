// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: anthropic-api-key, gemini-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Key files recognized by the analysis pipeline.
const (
	KeyAnthropic = "anthropic-api-key"
	KeyGemini    = "gemini-api-key"
)

// envVars maps key files to the environment variables consulted when the
// key file is absent.
var envVars = map[string]string{
	KeyAnthropic: "ANTHROPIC_API_KEY",
	KeyGemini:    "GEMINI_API_KEY",
}

// KeyForProvider returns the key file holding credentials for a completion
// provider. An empty provider resolves to the Claude default.
func KeyForProvider(provider string) string {
	if provider == "gemini" {
		return KeyGemini
	}
	return KeyAnthropic
}

// APIKey resolves the credential for provider: the loaded secret when
// present, the provider's environment variable otherwise, "" when neither
// is set.
func APIKey(loaded map[string]string, provider string) string {
	key := KeyForProvider(provider)
	if v, ok := loaded[key]; ok {
		return v
	}
	return os.Getenv(envVars[key])
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
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
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}
