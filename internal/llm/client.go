// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Client answers prompts through a backend, consulting the completion cache
// first when one is configured. The configuration is read on first use so
// Settings applied after construction still take effect.
type Client struct {
	cfg      *Config
	backend  Backend
	prompter Prompter

	cache       *Cache
	cacheOpened bool
}

// Option customizes a Client.
type Option func(*Client)

// WithBackend replaces the backend chosen from the model name.
func WithBackend(b Backend) Option {
	return func(c *Client) { c.backend = b }
}

// WithPrompter replaces the interactive prompter.
func WithPrompter(p Prompter) Option {
	return func(c *Client) { c.prompter = p }
}

// NewClient returns a client bound to cfg. A nil cfg uses defaults.
func NewClient(cfg *Config, opts ...Option) *Client {
	if cfg == nil {
		cfg = &Config{}
	}
	c := &Client{cfg: cfg}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the live configuration.
func (c *Client) Config() *Config { return c.cfg }

// Model returns the effective model name.
func (c *Client) Model() string { return c.cfg.model() }

// Complete returns the model's answer to prompt.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	model := c.cfg.model()

	if c.cfg.Interactive {
		p := c.prompter
		if p == nil {
			p = &SurveyPrompter{}
		}
		return p.Ask(ctx, prompt)
	}

	cache, err := c.openCache()
	if err != nil {
		return "", err
	}
	if cache != nil {
		if hit, ok, err := cache.Get(ctx, model, prompt); err != nil {
			return "", err
		} else if ok {
			log.Debug().Str("model", model).Int("prompt_len", len(prompt)).Msg("completion cache hit")
			return hit, nil
		}
	}

	log.Info().Str("model", model).Int("prompt_len", len(prompt)).Msg("requesting completion")
	out, err := c.backendFor().Complete(ctx, model, prompt)
	if err != nil {
		return "", fmt.Errorf("completing with %s: %w", model, err)
	}

	if cache != nil {
		if err := cache.Put(ctx, model, prompt, out); err != nil {
			log.Warn().Err(err).Msg("could not store completion")
		}
	}
	return out, nil
}

// Close releases the completion cache if it was opened.
func (c *Client) Close() error {
	if c.cache == nil {
		return nil
	}
	err := c.cache.Close()
	c.cache = nil
	return err
}

func (c *Client) openCache() (*Cache, error) {
	if c.cacheOpened {
		return c.cache, nil
	}
	c.cacheOpened = true
	if c.cfg.CacheDBPath == "" {
		return nil, nil
	}
	cache, err := OpenCache(c.cfg.CacheDBPath)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("path", c.cfg.CacheDBPath).Msg("opened completion cache")
	c.cache = cache
	return cache, nil
}

func (c *Client) backendFor() Backend {
	if c.backend != nil {
		return c.backend
	}
	switch c.cfg.Provider() {
	case ProviderAnthropic:
		c.backend = &AnthropicBackend{
			APIKey:     c.cfg.APIKey,
			BaseURL:    c.cfg.BaseURL,
			MaxRetries: c.cfg.MaxRetries,
			Client:     c.cfg.HTTPClient,
		}
	default:
		c.backend = NewOpenAIBackend(c.cfg.APIKey, c.cfg.BaseURL, c.cfg.HTTPClient)
	}
	return c.backend
}
