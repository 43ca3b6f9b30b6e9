// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine builds extraction engines for a template and exposes what
// each one can do through small capability interfaces. Commands ask for the
// capability they need with As and fail fast when the engine lacks it.
package engine

import (
	"context"
	"fmt"
	"net/http"
	"reflect"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/ontoextract/internal/enrich"
	"github.com/pdiddy/ontoextract/internal/llm"
	"github.com/pdiddy/ontoextract/internal/template"
	"github.com/pdiddy/ontoextract/pkg/types"
)

// Kind selects the engine variant.
type Kind string

const (
	// KindSPIRES fills a template's classes slot by slot from model output.
	KindSPIRES Kind = "spires"

	// KindEnrichment summarizes what a gene set has in common.
	KindEnrichment Kind = "enrichment"
)

// Engine is the common surface of every engine.
type Engine interface {
	Name() string
}

// Extractor turns text into an extraction result. An empty target class
// means the template's root class.
type Extractor interface {
	Extract(ctx context.Context, text, targetClass string) (*types.ExtractionResult, error)
}

// SchemaViewer exposes the template the engine was built for.
type SchemaViewer interface {
	SchemaView() *template.SchemaView
}

// ClientConfigurable exposes the engine's completion client configuration.
type ClientConfigurable interface {
	ClientConfig() *llm.Config
}

// DictionaryLoader accepts a term to identifier dictionary.
type DictionaryLoader interface {
	LoadDictionary(path string) error
}

// Summarizer summarizes a gene set.
type Summarizer interface {
	Summarize(ctx context.Context, gs types.GeneSet, opts enrich.SummarizeOptions) (*types.EnrichmentResult, error)
}

// Closer releases engine resources such as the completion cache.
type Closer interface {
	Close() error
}

// Options configures engine construction.
type Options struct {
	Model string

	// Recurse extracts class-valued slots with a nested prompt.
	Recurse bool

	// Settings is applied to the client configuration during construction.
	Settings *types.Settings

	// Templates resolves the template reference. Defaults to built-ins only.
	Templates *template.Registry

	Interactive bool

	// Dictionary is loaded before New returns when set.
	Dictionary string

	// AutoPrefix is the CURIE prefix for values no dictionary entry matched.
	AutoPrefix string

	APIKey     string
	BaseURL    string
	MaxRetries int
	HTTPClient *http.Client

	// ClientOptions are passed to the completion client, mainly for tests.
	ClientOptions []llm.Option
}

// New builds an engine of the given kind. Settings are applied before the
// engine is returned, so nothing built here can see unconfigured defaults.
func New(ctx context.Context, kind Kind, templateRef string, opts Options) (Engine, error) {
	cfg := &llm.Config{
		Model:       opts.Model,
		APIKey:      opts.APIKey,
		BaseURL:     opts.BaseURL,
		MaxRetries:  opts.MaxRetries,
		Interactive: opts.Interactive,
		HTTPClient:  opts.HTTPClient,
	}
	opts.Settings.ApplyTo(cfg)
	client := llm.NewClient(cfg, opts.ClientOptions...)

	var e Engine
	switch kind {
	case KindSPIRES, "":
		registry := opts.Templates
		if registry == nil {
			registry = template.NewRegistry()
		}
		view, err := registry.Load(ctx, templateRef)
		if err != nil {
			return nil, fmt.Errorf("resolving template %q: %w", templateRef, err)
		}
		e = newSPIRES(view, client, opts)
	case KindEnrichment:
		e = enrich.NewEngine(client)
	default:
		return nil, fmt.Errorf("unknown engine kind %q: %w", kind, types.ErrInvalidArgument)
	}

	if opts.Dictionary != "" {
		loader, err := As[DictionaryLoader](e)
		if err != nil {
			return nil, err
		}
		if err := loader.LoadDictionary(opts.Dictionary); err != nil {
			return nil, fmt.Errorf("loading dictionary %s: %w", opts.Dictionary, err)
		}
	}

	log.Debug().
		Str("engine", e.Name()).
		Str("template", templateRef).
		Str("model", client.Model()).
		Str("cache_db", cfg.CacheDBPath).
		Strs("skip_annotators", cfg.SkipAnnotators).
		Msg("engine ready")
	return e, nil
}

// As returns e as capability T, or ErrTypeMismatch when e lacks it.
func As[T any](e Engine) (T, error) {
	c, ok := e.(T)
	if !ok {
		var zero T
		name := "<nil>"
		if e != nil {
			name = e.Name()
		}
		return zero, fmt.Errorf("engine %s does not provide %v: %w", name, reflect.TypeOf((*T)(nil)).Elem(), types.ErrTypeMismatch)
	}
	return c, nil
}

// Close releases e's resources when it holds any.
func Close(e Engine) error {
	if c, ok := e.(Closer); ok {
		return c.Close()
	}
	return nil
}
