// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm is the completion client shared by every extraction engine. It
// picks a model backend, caches completions in SQLite, and can hand prompts to
// a human operator instead of a model.
package llm

import (
	"net/http"
	"slices"
	"strings"
)

// DefaultModel is used when neither flags nor configuration name a model.
const DefaultModel = "claude-sonnet-4-5-20250929"

// DefaultEmbeddingModel is used by the embedding commands.
const DefaultEmbeddingModel = "text-embedding-3-small"

// Backend provider names. The completion cache is keyed by model name, not
// provider.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Config is the client configuration an engine exposes for Settings to fill.
type Config struct {
	Model      string
	APIKey     string
	BaseURL    string
	MaxRetries int

	// CacheDBPath enables the completion cache when non-empty.
	CacheDBPath string

	// SkipAnnotators names annotators the engine must not run.
	SkipAnnotators []string

	// Interactive sends prompts to the operator instead of the API.
	Interactive bool

	HTTPClient *http.Client
}

// SetCacheDBPath sets the completion cache location.
func (c *Config) SetCacheDBPath(path string) { c.CacheDBPath = path }

// SetSkipAnnotators replaces the annotator skip list.
func (c *Config) SetSkipAnnotators(names []string) {
	c.SkipAnnotators = append([]string(nil), names...)
}

// Skips reports whether the named annotator is disabled.
func (c *Config) Skips(name string) bool {
	return slices.Contains(c.SkipAnnotators, name)
}

// Provider reports which backend serves the configured model.
func (c *Config) Provider() string {
	if strings.HasPrefix(strings.ToLower(c.model()), "claude") {
		return ProviderAnthropic
	}
	return ProviderOpenAI
}

func (c *Config) model() string {
	if c.Model == "" {
		return DefaultModel
	}
	return c.Model
}
