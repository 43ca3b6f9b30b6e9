// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"

	"github.com/pdiddy/ontoextract/internal/template"
	"github.com/pdiddy/ontoextract/pkg/types"
)

//go:embed templates/*.tpl
var templateFS embed.FS

var (
	documentSet      = pongo2.NewSet("export", pongo2.NewFSLoader(mustSub(templateFS, "templates")))
	markdownTemplate = pongo2.Must(documentSet.FromFile("result.md.tpl"))
	htmlTemplate     = pongo2.Must(documentSet.FromFile("result.html.tpl"))
)

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// field is one slot of the extracted object prepared for display.
type field struct {
	Name        string
	Description string
	Values      []string
}

// document is the human-readable projection shared by the Markdown, HTML
// and PDF renderers.
type document struct {
	Title       string
	Description string
	Class       string
	Fields      []field
	Entities    []types.NamedEntity
	Truncation  string
	InputText   string
}

func newDocument(result *types.ExtractionResult, view *template.SchemaView) document {
	doc := document{
		Title:     result.Template,
		Class:     result.TargetClass,
		Entities:  result.NamedEntities,
		InputText: strings.TrimSpace(result.InputText),
	}
	if doc.Title == "" {
		doc.Title = "Extraction result"
	}
	if result.Truncated() {
		doc.Truncation = strconv.FormatFloat(*result.TruncationFactor, 'f', 2, 64)
	}

	var class *template.Class
	if view != nil {
		doc.Description = view.Description()
		if c, err := view.Class(result.TargetClass); err == nil {
			class = c
		} else {
			class = view.RootClass()
		}
		if doc.Class == "" && class != nil {
			doc.Class = class.Name
		}
	}

	for _, name := range sortedKeys(result.ExtractedObject) {
		f := field{Name: name, Values: displayValues(result.ExtractedObject[name])}
		if class != nil {
			if s, ok := class.Slot(name); ok {
				f.Description = s.Description
			}
		}
		if len(f.Values) > 0 {
			doc.Fields = append(doc.Fields, f)
		}
	}
	return doc
}

// context converts the document to the pongo2 context, passing every string
// through clean.
func (d document) context(clean func(string) string) pongo2.Context {
	fields := make([]map[string]any, len(d.Fields))
	for i, f := range d.Fields {
		values := make([]string, len(f.Values))
		for j, v := range f.Values {
			values[j] = clean(v)
		}
		m := map[string]any{
			"name":        clean(f.Name),
			"description": clean(f.Description),
			"values":      values,
		}
		if len(values) == 1 {
			m["value"] = values[0]
		}
		fields[i] = m
	}
	entities := make([]map[string]any, len(d.Entities))
	for i, e := range d.Entities {
		entities[i] = map[string]any{"id": clean(e.ID), "label": clean(e.Label)}
	}
	return pongo2.Context{
		"title":       clean(d.Title),
		"description": clean(d.Description),
		"class":       clean(d.Class),
		"fields":      fields,
		"entities":    entities,
		"truncation":  d.Truncation,
		"input_text":  clean(d.InputText),
	}
}

// displayValues flattens a slot value into display strings, one per list
// element. Nested objects become "key=value" pairs.
func displayValues(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		var out []string
		for _, e := range t {
			if s := displayValue(e); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return t
	default:
		if s := displayValue(v); s != "" {
			return []string{s}
		}
		return nil
	}
}

func displayValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		return strings.Join(displayValues(t), ", ")
	case map[string]any:
		var parts []string
		for _, k := range sortedKeys(t) {
			if s := displayValue(t[k]); s != "" {
				parts = append(parts, k+"="+s)
			}
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprint(t)
	}
}

type markdownRenderer struct{}

func (markdownRenderer) Format() types.OutputFormat { return types.FormatMarkdown }

func (markdownRenderer) Render(w io.Writer, result *types.ExtractionResult, view *template.SchemaView) error {
	ctx := newDocument(result, view).context(func(s string) string { return s })
	return markdownTemplate.ExecuteWriter(ctx, w)
}

// htmlRenderer passes every value through a strict sanitizer before
// templating.
type htmlRenderer struct{}

var strictPolicy = bluemonday.StrictPolicy()

func (htmlRenderer) Format() types.OutputFormat { return types.FormatHTML }

func (htmlRenderer) Render(w io.Writer, result *types.ExtractionResult, view *template.SchemaView) error {
	ctx := newDocument(result, view).context(strictPolicy.Sanitize)
	return htmlTemplate.ExecuteWriter(ctx, w)
}
