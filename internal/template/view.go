// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package template

import (
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/pdiddy/ontoextract/pkg/types"
)

// Extension keys recognized on template documents and schemas.
const (
	extKeywords = "x-keywords"
	extTreeRoot = "x-tree-root"
	extPrompt   = "x-prompt"
	extGround   = "x-ground"
)

// Slot is one property of a class.
type Slot struct {
	Name        string
	Description string

	// Prompt overrides the description as the instruction shown to the model.
	Prompt string

	// Multivalued slots hold a list of values.
	Multivalued bool

	// Range is the class name of an object-valued slot; empty for text.
	Range string

	// Ground marks values that annotators should map to identifiers.
	Ground bool
}

// Instruction returns the text used to ask for the slot's value.
func (s Slot) Instruction() string {
	if s.Prompt != "" {
		return s.Prompt
	}
	if s.Description != "" {
		return s.Description
	}
	return s.Name
}

// Class is a named object schema inside a template.
type Class struct {
	Name        string
	Description string
	Slots       []Slot

	schema *openapi3.Schema
}

// Slot looks up a slot by name.
func (c *Class) Slot(name string) (Slot, bool) {
	for _, s := range c.Slots {
		if s.Name == name {
			return s, true
		}
	}
	return Slot{}, false
}

// SchemaView is the read-only projection of a template that engines and
// exporters work against.
type SchemaView struct {
	name        string
	description string
	keywords    []string
	root        string
	classes     map[string]*Class
}

// Name returns the template name.
func (v *SchemaView) Name() string { return v.name }

// Description returns the template's one-line description.
func (v *SchemaView) Description() string { return v.description }

// Keywords returns the template's search keywords.
func (v *SchemaView) Keywords() []string { return append([]string(nil), v.keywords...) }

// RootClass returns the class extraction starts from.
func (v *SchemaView) RootClass() *Class { return v.classes[v.root] }

// Class returns the named class or ErrNotFound.
func (v *SchemaView) Class(name string) (*Class, error) {
	c, ok := v.classes[name]
	if !ok {
		return nil, fmt.Errorf("class %q in template %s: %w", name, v.name, types.ErrNotFound)
	}
	return c, nil
}

// Classes returns every class sorted by name.
func (v *SchemaView) Classes() []*Class {
	out := make([]*Class, 0, len(v.classes))
	for _, c := range v.classes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// WithRoot returns a copy of the view rooted at another class.
func (v *SchemaView) WithRoot(class string) (*SchemaView, error) {
	if _, err := v.Class(class); err != nil {
		return nil, err
	}
	cp := *v
	cp.root = class
	return &cp, nil
}

// Validate checks an extracted object against a class schema.
func (v *SchemaView) Validate(class string, obj map[string]any) error {
	c, err := v.Class(class)
	if err != nil {
		return err
	}
	if err := c.schema.VisitJSON(jsonValue(obj), openapi3.MultiErrors()); err != nil {
		return fmt.Errorf("validating %s: %v: %w", class, err, types.ErrInvalidArgument)
	}
	return nil
}

// newView projects a loaded OpenAPI document into a SchemaView.
func newView(name string, doc *openapi3.T) (*SchemaView, error) {
	if doc.Components == nil || len(doc.Components.Schemas) == 0 {
		return nil, fmt.Errorf("template %s declares no schemas: %w", name, types.ErrInvalidArgument)
	}

	v := &SchemaView{
		name:     name,
		keywords: extStrings(doc.Extensions, extKeywords),
		classes:  make(map[string]*Class, len(doc.Components.Schemas)),
	}
	if doc.Info != nil {
		v.description = strings.TrimSpace(doc.Info.Description)
	}

	var roots []string
	for className, ref := range doc.Components.Schemas {
		if ref == nil || ref.Value == nil {
			continue
		}
		s := ref.Value
		c := &Class{Name: className, Description: s.Description, schema: s}
		for slotName, prop := range s.Properties {
			c.Slots = append(c.Slots, newSlot(slotName, prop))
		}
		sort.Slice(c.Slots, func(i, j int) bool { return c.Slots[i].Name < c.Slots[j].Name })
		v.classes[className] = c
		if extBool(s.Extensions, extTreeRoot) {
			roots = append(roots, className)
		}
	}

	switch {
	case len(roots) > 0:
		sort.Strings(roots)
		v.root = roots[0]
	case len(v.classes) == 1:
		for n := range v.classes {
			v.root = n
		}
	default:
		return nil, fmt.Errorf("template %s has no %s class: %w", name, extTreeRoot, types.ErrInvalidArgument)
	}
	return v, nil
}

func newSlot(name string, ref *openapi3.SchemaRef) Slot {
	slot := Slot{Name: name}
	if ref == nil || ref.Value == nil {
		return slot
	}
	p := ref.Value
	slot.Description = p.Description
	slot.Prompt = extString(p.Extensions, extPrompt)
	slot.Ground = extBool(p.Extensions, extGround)

	target := ref
	if p.Type != nil && p.Type.Is(openapi3.TypeArray) {
		slot.Multivalued = true
		if p.Items != nil {
			target = p.Items
		}
	}
	if target.Ref != "" {
		slot.Range = path.Base(target.Ref)
	}
	return slot
}

// jsonValue normalizes typed slices so the validator sees JSON shapes.
func jsonValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = jsonValue(e)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = e
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = jsonValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = jsonValue(e)
		}
		return out
	default:
		return v
	}
}

// decodeExt unwraps an extension value, which the loader may leave as raw JSON.
func decodeExt(ext map[string]any, key string) any {
	raw, ok := ext[key]
	if !ok {
		return nil
	}
	if msg, ok := raw.(json.RawMessage); ok {
		var v any
		if err := json.Unmarshal(msg, &v); err != nil {
			return nil
		}
		return v
	}
	return raw
}

func extBool(ext map[string]any, key string) bool {
	b, _ := decodeExt(ext, key).(bool)
	return b
}

func extString(ext map[string]any, key string) string {
	s, _ := decodeExt(ext, key).(string)
	return s
}

func extStrings(ext map[string]any, key string) []string {
	var out []string
	switch t := decodeExt(ext, key).(type) {
	case []any:
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
	case []string:
		out = append(out, t...)
	case string:
		out = append(out, t)
	}
	return out
}
