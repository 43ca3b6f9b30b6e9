// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"text/template"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/ontoextract/internal/llm"
	schema "github.com/pdiddy/ontoextract/internal/template"
	"github.com/pdiddy/ontoextract/pkg/types"
)

// Annotator names accepted by --skip-annotator.
const (
	AnnotatorDictionary = "dictionary"
	AnnotatorAuto       = "auto"
)

// DefaultAutoPrefix is the CURIE prefix for ungrounded values.
const DefaultAutoPrefix = "AUTO"

// maxRecursionDepth bounds nested class extraction.
const maxRecursionDepth = 3

// multivalueSeparator splits list answers.
const multivalueSeparator = ";"

// extractionPromptTmpl asks the model to answer one "slot: value" line per slot.
var extractionPromptTmpl = template.Must(template.New("extraction").Parse(`From the text below, extract the following entities in the following format:

{{range .Slots}}{{.Name}}: <{{.Hint}}>
{{end}}
Text:
{{.Text}}

===

`))

type promptSlot struct {
	Name string
	Hint string
}

// SPIRES fills a template class by prompting for every slot at once and
// recursing into class-valued slots.
type SPIRES struct {
	view       *schema.SchemaView
	client     *llm.Client
	recurse    bool
	autoPrefix string
	dictionary Dictionary
}

func newSPIRES(view *schema.SchemaView, client *llm.Client, opts Options) *SPIRES {
	prefix := opts.AutoPrefix
	if prefix == "" {
		prefix = DefaultAutoPrefix
	}
	return &SPIRES{
		view:       view,
		client:     client,
		recurse:    opts.Recurse,
		autoPrefix: prefix,
	}
}

// Name implements Engine.
func (e *SPIRES) Name() string { return string(KindSPIRES) }

// SchemaView implements SchemaViewer.
func (e *SPIRES) SchemaView() *schema.SchemaView { return e.view }

// ClientConfig implements ClientConfigurable.
func (e *SPIRES) ClientConfig() *llm.Config { return e.client.Config() }

// Close implements Closer.
func (e *SPIRES) Close() error { return e.client.Close() }

// LoadDictionary implements DictionaryLoader. Entries from several files merge.
func (e *SPIRES) LoadDictionary(path string) error {
	d, err := ParseDictionary(path)
	if err != nil {
		return err
	}
	if e.dictionary == nil {
		e.dictionary = make(Dictionary, len(d))
	}
	for k, v := range d {
		e.dictionary[k] = v
	}
	log.Info().Str("path", path).Int("terms", len(d)).Msg("loaded dictionary")
	return nil
}

// Extract implements Extractor.
func (e *SPIRES) Extract(ctx context.Context, text, targetClass string) (*types.ExtractionResult, error) {
	class := e.view.RootClass()
	if targetClass != "" {
		c, err := e.view.Class(targetClass)
		if err != nil {
			return nil, err
		}
		class = c
	}

	prompt, err := renderPrompt(class, text)
	if err != nil {
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}
	raw, err := e.client.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var entities []types.NamedEntity
	obj, err := e.fill(ctx, class, raw, 0, &entities)
	if err != nil {
		return nil, err
	}

	return &types.ExtractionResult{
		Template:        e.view.Name(),
		TargetClass:     class.Name,
		InputText:       text,
		Prompt:          prompt,
		RawCompletion:   raw,
		ExtractedObject: obj,
		NamedEntities:   entities,
	}, nil
}

// fill parses a completion for class and resolves nested and grounded slots.
func (e *SPIRES) fill(ctx context.Context, class *schema.Class, completion string, depth int, entities *[]types.NamedEntity) (map[string]any, error) {
	answers := parseCompletion(completion)
	obj := make(map[string]any)

	for _, slot := range class.Slots {
		answer, ok := answers[completionKey(slot.Name)]
		if !ok {
			continue
		}
		values := []string{answer}
		if slot.Multivalued {
			values = splitValues(answer)
		}

		var out []any
		for _, v := range values {
			if v == "" {
				continue
			}
			resolved, err := e.resolve(ctx, slot, v, depth, entities)
			if err != nil {
				return nil, err
			}
			out = append(out, resolved)
		}
		if len(out) == 0 {
			continue
		}
		if slot.Multivalued {
			obj[slot.Name] = out
		} else {
			obj[slot.Name] = out[0]
		}
	}
	return obj, nil
}

func (e *SPIRES) resolve(ctx context.Context, slot schema.Slot, value string, depth int, entities *[]types.NamedEntity) (any, error) {
	if slot.Range != "" && e.recurse && depth < maxRecursionDepth {
		nested, err := e.view.Class(slot.Range)
		if err != nil {
			return nil, err
		}
		prompt, err := renderPrompt(nested, value)
		if err != nil {
			return nil, fmt.Errorf("rendering prompt for %s: %w", nested.Name, err)
		}
		raw, err := e.client.Complete(ctx, prompt)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("class", nested.Name).Str("value", value).Int("depth", depth+1).Msg("extracted nested object")
		return e.fill(ctx, nested, raw, depth+1, entities)
	}
	if slot.Ground {
		return e.ground(value, entities), nil
	}
	return value, nil
}

// ground maps a value to an identifier with the enabled annotators. Values
// no annotator handles are returned unchanged.
func (e *SPIRES) ground(value string, entities *[]types.NamedEntity) string {
	cfg := e.client.Config()
	if e.dictionary != nil && !cfg.Skips(AnnotatorDictionary) {
		if id, ok := e.dictionary.Lookup(value); ok {
			*entities = append(*entities, types.NamedEntity{ID: id, Label: value})
			return id
		}
	}
	if !cfg.Skips(AnnotatorAuto) {
		id := e.autoPrefix + ":" + url.PathEscape(value)
		*entities = append(*entities, types.NamedEntity{ID: id, Label: value})
		return id
	}
	return value
}

func renderPrompt(class *schema.Class, text string) (string, error) {
	slots := make([]promptSlot, 0, len(class.Slots))
	for _, s := range class.Slots {
		hint := s.Instruction()
		if s.Multivalued {
			hint = "semicolon-separated list of " + hint
		}
		slots = append(slots, promptSlot{Name: s.Name, Hint: hint})
	}

	var buf bytes.Buffer
	err := extractionPromptTmpl.Execute(&buf, struct {
		Slots []promptSlot
		Text  string
	}{slots, text})
	return buf.String(), err
}

// parseCompletion reads "key: value" lines keyed by completionKey; later
// duplicates are ignored.
func parseCompletion(completion string) map[string]string {
	out := make(map[string]string)
	sc := bufio.NewScanner(strings.NewReader(completion))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		key = completionKey(strings.TrimLeft(strings.TrimSpace(key), "-* "))
		value = strings.TrimSpace(value)
		if key == "" || isNullAnswer(value) {
			continue
		}
		if _, seen := out[key]; !seen {
			out[key] = value
		}
	}
	return out
}

// completionKey lowercases a slot or completion key and joins words with
// underscores, so "geneSymbol" matches a "GeneSymbol:" line.
func completionKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

func splitValues(answer string) []string {
	parts := strings.Split(answer, multivalueSeparator)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" && !isNullAnswer(p) {
			out = append(out, p)
		}
	}
	return out
}

func isNullAnswer(s string) bool {
	switch strings.ToLower(strings.Trim(s, " .")) {
	case "", "none", "n/a", "na", "unknown", "not mentioned", "not specified":
		return true
	}
	return false
}
