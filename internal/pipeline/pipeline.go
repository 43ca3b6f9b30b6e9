// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one extraction invocation: acquire the text once,
// hand it to the engine, apply slot overrides and dispatch the result to the
// output renderer.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/ontoextract/internal/acquire"
	"github.com/pdiddy/ontoextract/internal/engine"
	"github.com/pdiddy/ontoextract/internal/export"
	"github.com/pdiddy/ontoextract/internal/template"
	"github.com/pdiddy/ontoextract/pkg/types"
)

// Invocation is everything one extraction command needs.
type Invocation struct {
	Engine engine.Engine
	Source acquire.Source

	// TargetClass overrides the template's root class when set.
	TargetClass string

	// Overrides are raw "slot=value" assignments applied after extraction.
	Overrides []string

	// Format names the output renderer; empty means YAML.
	Format string

	// Output receives the rendered bytes once everything succeeded.
	Output io.Writer

	// After runs on the result before overrides; recipe-extract uses it to
	// record the page URL.
	After func(*types.ExtractionResult)
}

// Run executes the invocation and returns the result it wrote.
func Run(ctx context.Context, inv Invocation) (*types.ExtractionResult, error) {
	overrides, err := ParseOverrides(inv.Overrides)
	if err != nil {
		return nil, err
	}
	if _, err := engine.As[engine.Extractor](inv.Engine); err != nil {
		return nil, err
	}
	view := schemaView(inv.Engine)
	if err := checkSlots(view, inv.TargetClass, overrides); err != nil {
		return nil, err
	}

	text, err := acquire.Acquire(ctx, inv.Source)
	if err != nil {
		return nil, err
	}

	result, err := Extract(ctx, inv.Engine, text, inv.TargetClass)
	if err != nil {
		return nil, err
	}
	if inv.After != nil {
		inv.After(result)
	}

	if err := ApplyOverrides(result, overrides, view); err != nil {
		return nil, err
	}

	if err := export.Write(inv.Output, inv.Format, result, view); err != nil {
		return nil, err
	}
	return result, nil
}

// Extract runs the engine on text. An empty target class means the
// template's root class. A result that fails schema validation is still
// returned; the mismatch is logged as a warning.
func Extract(ctx context.Context, e engine.Engine, text, targetClass string) (*types.ExtractionResult, error) {
	ex, err := engine.As[engine.Extractor](e)
	if err != nil {
		return nil, err
	}
	view := schemaView(e)
	if view != nil && targetClass != "" {
		if _, err := view.Class(targetClass); err != nil {
			return nil, fmt.Errorf("target class: %w", err)
		}
	}

	log.Info().Int("chars", len([]rune(text))).Str("engine", e.Name()).Msg("extracting")
	log.Debug().Str("text", text).Msg("input text")

	result, err := ex.Extract(ctx, text, targetClass)
	if err != nil {
		return nil, fmt.Errorf("extraction: %w", err)
	}
	if result.Truncated() {
		log.Warn().Float64("truncation_factor", *result.TruncationFactor).Msg("input was truncated to fit the model")
	}
	if view != nil {
		if err := view.Validate(result.TargetClass, result.ExtractedObject); err != nil {
			log.Warn().Err(err).Str("class", result.TargetClass).Msg("extracted object does not match the template")
		}
	}
	return result, nil
}

func schemaView(e engine.Engine) *template.SchemaView {
	sv, err := engine.As[engine.SchemaViewer](e)
	if err != nil {
		return nil
	}
	return sv.SchemaView()
}
