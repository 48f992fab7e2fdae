package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Environment variables carrying the external-provider credentials.
const (
	EnvGoogleCredentials = "GOOGLE_APPLICATION_CREDENTIALS_JSON"
	EnvOpenAIKey         = "OPENAI_API_KEY"
)

// GoogleCredentials returns the service-account JSON from the environment.
// Deployment environments often store the private key with escaped
// newlines; those are normalized back to real newlines.
func GoogleCredentials() ([]byte, error) {
	raw := os.Getenv(EnvGoogleCredentials)
	if raw == "" {
		return nil, errors.New("Google credentials not configured")
	}

	var creds map[string]any
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		return nil, fmt.Errorf("invalid Google credentials format: %w", err)
	}

	if key, ok := creds["private_key"].(string); ok {
		creds["private_key"] = strings.ReplaceAll(key, `\n`, "\n")
	}

	normalized, err := json.Marshal(creds)
	if err != nil {
		return nil, fmt.Errorf("encoding Google credentials: %w", err)
	}
	return normalized, nil
}

// OpenAIKey returns the completion-provider API key from the environment.
func OpenAIKey() (string, error) {
	key := os.Getenv(EnvOpenAIKey)
	if key == "" {
		return "", errors.New("OpenAI API key not configured")
	}
	return key, nil
}
