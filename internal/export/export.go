// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export renders extraction results in the supported output
// formats. Each format has a Renderer; Write picks one by name, renders into
// a buffer and copies the bytes to the sink only when rendering succeeded.
package export

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/rs/zerolog/log"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/ontoextract/internal/template"
	"github.com/pdiddy/ontoextract/pkg/types"
)

// Renderer writes one extraction result in one format. The schema view may
// be nil; renderers that need it fail with ErrNoSchemaView.
type Renderer interface {
	Format() types.OutputFormat
	Render(w io.Writer, result *types.ExtractionResult, view *template.SchemaView) error
}

var renderers = map[types.OutputFormat]Renderer{
	types.FormatYAML:     yamlRenderer{},
	types.FormatJSON:     jsonRenderer{},
	types.FormatPickle:   pickleRenderer{},
	types.FormatMarkdown: markdownRenderer{},
	types.FormatHTML:     htmlRenderer{},
	types.FormatTurtle:   turtleRenderer{},
	types.FormatOWL:      owlRenderer{},
	types.FormatPDF:      pdfRenderer{},
}

// Lookup returns the renderer for a format name. Empty and unknown names
// get the YAML renderer; unknown ones are logged.
func Lookup(name string) Renderer {
	f, ok := types.ParseOutputFormat(name)
	if !ok && name != "" {
		log.Warn().Str("format", name).Str("fallback", string(f)).Msg("unknown output format")
	}
	return renderers[f]
}

// Write renders result in the named format and writes it to sink. Nothing
// reaches sink when rendering fails.
func Write(sink io.Writer, format string, result *types.ExtractionResult, view *template.SchemaView) error {
	if result == nil {
		return fmt.Errorf("no extraction result to write: %w", types.ErrInvalidArgument)
	}
	r := Lookup(format)
	var buf bytes.Buffer
	if err := r.Render(&buf, result, view); err != nil {
		return fmt.Errorf("rendering %s: %w", r.Format(), err)
	}
	if _, err := sink.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing %s output: %w", r.Format(), err)
	}
	return nil
}

// WriteValue writes an arbitrary value (a gene set, an enrichment result, a
// template listing) as JSON, pickle or YAML. Other formats fall back to YAML.
func WriteValue(sink io.Writer, format string, v any) error {
	f, ok := types.ParseOutputFormat(format)
	var buf bytes.Buffer
	switch f {
	case types.FormatJSON:
		if err := encodeJSON(&buf, v); err != nil {
			return err
		}
	case types.FormatPickle:
		if err := gob.NewEncoder(&buf).Encode(v); err != nil {
			return fmt.Errorf("encoding pickle: %w", err)
		}
	default:
		if (!ok && format != "") || f != types.FormatYAML {
			log.Warn().Str("format", format).Msg("format not supported for this output, writing yaml")
		}
		if err := encodeYAML(&buf, v); err != nil {
			return err
		}
	}
	_, err := sink.Write(buf.Bytes())
	return err
}

// Read decodes a result previously written as YAML, JSON or pickle.
func Read(r io.Reader, format string) (*types.ExtractionResult, error) {
	f, _ := types.ParseOutputFormat(format)
	var result types.ExtractionResult
	switch f {
	case types.FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&result); err != nil {
			return nil, fmt.Errorf("decoding yaml result: %w", err)
		}
	case types.FormatJSON:
		if err := json.NewDecoder(r).Decode(&result); err != nil {
			return nil, fmt.Errorf("decoding json result: %w", err)
		}
	case types.FormatPickle:
		if err := gob.NewDecoder(r).Decode(&result); err != nil {
			return nil, fmt.Errorf("decoding pickle result: %w", err)
		}
	default:
		return nil, fmt.Errorf("cannot read %s results: %w", f, types.ErrInvalidArgument)
	}
	return &result, nil
}

// Minimal returns the result as a plain map with empty values dropped.
// Maps marshal with sorted keys, so the YAML and JSON renderings are
// deterministic.
func Minimal(result *types.ExtractionResult) map[string]any {
	m := map[string]any{
		"template":         result.Template,
		"target_class":     result.TargetClass,
		"input_text":       result.InputText,
		"prompt":           result.Prompt,
		"raw_completion":   result.RawCompletion,
		"extracted_object": result.ExtractedObject,
	}
	if len(result.NamedEntities) > 0 {
		entities := make([]any, len(result.NamedEntities))
		for i, e := range result.NamedEntities {
			entities[i] = map[string]any{"id": e.ID, "label": e.Label}
		}
		m["named_entities"] = entities
	}
	if result.TruncationFactor != nil {
		m["truncation_factor"] = *result.TruncationFactor
	}
	pruned, _ := prune(m).(map[string]any)
	return pruned
}

// prune drops empty strings, nils, empty lists and empty maps recursively.
func prune(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if t == "" {
			return nil
		}
		return t
	case []any:
		var out []any
		for _, e := range t {
			if p := prune(e); p != nil {
				out = append(out, p)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case []string:
		if len(t) == 0 {
			return nil
		}
		return t
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			if p := prune(e); p != nil {
				out[k] = p
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	default:
		return v
	}
}

// sortedKeys returns the keys of m in ascending order.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func encodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

func init() {
	gob.Register([]any{})
	gob.Register(map[string]any{})
}
