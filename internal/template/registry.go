// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package template loads extraction templates. A template is an OpenAPI 3
// document whose component schemas are the classes an engine populates; the
// x-tree-root extension marks the class extraction starts from.
package template

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/rs/zerolog/log"

	"github.com/pdiddy/ontoextract/pkg/types"
)

//go:embed templates/*.yaml
var builtin embed.FS

var templateExts = []string{".yaml", ".yml", ".json"}

// Summary describes a template for listing.
type Summary struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	RootClass   string   `json:"root_class" yaml:"root_class"`
	Keywords    []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Source      string   `json:"source" yaml:"source"`
}

// Registry resolves template references against user directories first and
// the built-in templates second.
type Registry struct {
	dirs   []string
	loaded map[string]*SchemaView
}

// NewRegistry returns a registry searching dirs in order. Empty entries are
// ignored.
func NewRegistry(dirs ...string) *Registry {
	r := &Registry{loaded: make(map[string]*SchemaView)}
	for _, d := range dirs {
		if d != "" {
			r.dirs = append(r.dirs, d)
		}
	}
	return r
}

// Load resolves a template reference. A reference is a template name
// ("gene"), a name with a root class override ("gene.GeneOrganismRelationship"),
// or a path to a template file.
func (r *Registry) Load(ctx context.Context, ref string) (*SchemaView, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("template reference is empty: %w", types.ErrInvalidArgument)
	}

	if isPath(ref) {
		return r.loadFile(ctx, ref)
	}

	name, class, _ := strings.Cut(ref, ".")
	view, err := r.loadNamed(ctx, name)
	if err != nil {
		return nil, err
	}
	if class == "" {
		return view, nil
	}
	return view.WithRoot(class)
}

// List returns every template visible to the registry sorted by name. A
// user template shadows a built-in one of the same name.
func (r *Registry) List(ctx context.Context) ([]Summary, error) {
	seen := make(map[string]Summary)

	entries, err := fs.ReadDir(builtin, "templates")
	if err != nil {
		return nil, fmt.Errorf("reading built-in templates: %w", err)
	}
	for _, e := range entries {
		name := stem(e.Name())
		view, err := r.loadNamed(ctx, name)
		if err != nil {
			return nil, err
		}
		seen[name] = summarize(view, "builtin")
	}

	for _, dir := range r.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("skipping templates directory")
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !hasTemplateExt(e.Name()) {
				continue
			}
			name := stem(e.Name())
			if s, ok := seen[name]; ok && s.Source != "builtin" {
				continue
			}
			view, err := r.loadNamed(ctx, name)
			if err != nil {
				log.Warn().Err(err).Str("template", name).Msg("skipping invalid template")
				continue
			}
			seen[name] = summarize(view, filepath.Join(dir, e.Name()))
		}
	}

	out := make([]Summary, 0, len(seen))
	for _, s := range seen {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *Registry) loadNamed(ctx context.Context, name string) (*SchemaView, error) {
	if v, ok := r.loaded[name]; ok {
		return v, nil
	}

	for _, dir := range r.dirs {
		for _, ext := range templateExts {
			p := filepath.Join(dir, name+ext)
			if _, err := os.Stat(p); err == nil {
				return r.loadFile(ctx, p)
			}
		}
	}

	data, err := builtin.ReadFile("templates/" + name + ".yaml")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("template %q: %w", name, types.ErrNotFound)
		}
		return nil, fmt.Errorf("reading template %q: %w", name, err)
	}
	view, err := Parse(ctx, name, data)
	if err != nil {
		return nil, err
	}
	r.loaded[name] = view
	return view, nil
}

func (r *Registry) loadFile(ctx context.Context, p string) (*SchemaView, error) {
	name := stem(filepath.Base(p))
	if v, ok := r.loaded[p]; ok {
		return v, nil
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("template file %s: %w", p, types.ErrNotFound)
		}
		return nil, fmt.Errorf("reading template %s: %w", p, err)
	}
	view, err := Parse(ctx, name, data)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("template", name).Str("path", p).Msg("loaded template file")
	r.loaded[p] = view
	return view, nil
}

// Parse loads and validates a template document.
func Parse(ctx context.Context, name string, data []byte) (*SchemaView, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("template %s is not a valid schema document: %v: %w", name, err, types.ErrInvalidArgument)
	}
	return newView(name, doc)
}

func summarize(v *SchemaView, source string) Summary {
	s := Summary{
		Name:        v.Name(),
		Description: v.Description(),
		Keywords:    v.Keywords(),
		Source:      source,
	}
	if root := v.RootClass(); root != nil {
		s.RootClass = root.Name
	}
	return s
}

func isPath(ref string) bool {
	return strings.ContainsRune(ref, filepath.Separator) || strings.ContainsRune(ref, '/') || hasTemplateExt(ref)
}

func hasTemplateExt(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range templateExts {
		if ext == e {
			return true
		}
	}
	return false
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
