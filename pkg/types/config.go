// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by sources that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "ontoextract/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds shared settings for engines that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the API endpoint (OpenAI-compatible servers).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// MaxRetries is the number of retry attempts on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ClientSettings is the part of a completion client's configuration that
// Settings can populate.
type ClientSettings interface {
	SetCacheDBPath(path string)
	SetSkipAnnotators(names []string)
}

// Settings holds the process-wide options read once from the top-level
// command. It is built at startup and handed by reference to every engine
// constructed during the invocation.
type Settings struct {
	// CacheDB is the path to the SQLite completion cache.
	CacheDB string `json:"cache_db,omitempty" yaml:"cache_db,omitempty"`

	// SkipAnnotators names grounding steps that engines must not run.
	SkipAnnotators []string `json:"skip_annotators,omitempty" yaml:"skip_annotators,omitempty"`
}

// Set records the top-level options. Empty values leave the current field
// untouched; repeated calls overwrite earlier ones.
func (s *Settings) Set(cacheDB string, skipAnnotators []string) {
	if cacheDB != "" {
		s.CacheDB = cacheDB
	}
	if len(skipAnnotators) > 0 {
		s.SkipAnnotators = append([]string(nil), skipAnnotators...)
	}
}

// ApplyTo copies the non-empty fields onto a client configuration. Absent
// values are not propagated, so the client keeps its own defaults.
func (s *Settings) ApplyTo(c ClientSettings) {
	if s == nil || c == nil {
		return
	}
	if s.CacheDB != "" {
		c.SetCacheDBPath(s.CacheDB)
	}
	if len(s.SkipAnnotators) > 0 {
		c.SetSkipAnnotators(s.SkipAnnotators)
	}
}

// ExtractionConfig holds the per-invocation options of an extraction command.
type ExtractionConfig struct {
	AIConfig `yaml:",inline"`

	// Template names the schema the engine is bound to.
	Template string `json:"template" yaml:"template"`

	// TargetClass narrows extraction to a class other than the template root.
	TargetClass string `json:"target_class,omitempty" yaml:"target_class,omitempty"`

	// Recurse enables extraction of nested class-valued slots (default true).
	Recurse bool `json:"recurse" yaml:"recurse"`

	// Dictionary is an optional term → identifier file loaded before extraction.
	Dictionary string `json:"dictionary,omitempty" yaml:"dictionary,omitempty"`

	// AutoPrefix is the CURIE prefix for values no annotator could ground.
	AutoPrefix string `json:"auto_prefix,omitempty" yaml:"auto_prefix,omitempty"`

	// Interactive asks the operator for each completion instead of calling the API.
	Interactive bool `json:"interactive" yaml:"interactive"`
}
