// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/ontoextract/internal/template"
	"github.com/pdiddy/ontoextract/pkg/types"
)

// Override assigns a literal string to one slot of the extracted object.
type Override struct {
	Slot  string
	Value string
}

// ParseOverrides splits each "slot=value" on its first "=". The value is
// kept as-is, further "=" included.
func ParseOverrides(raw []string) ([]Override, error) {
	out := make([]Override, 0, len(raw))
	for _, r := range raw {
		slot, value, ok := strings.Cut(r, "=")
		slot = strings.TrimSpace(slot)
		if !ok || slot == "" {
			return nil, fmt.Errorf("slot override %q is not of the form slot=value: %w", r, types.ErrInvalidArgument)
		}
		out = append(out, Override{Slot: slot, Value: value})
	}
	return out, nil
}

// ApplyOverrides sets each override on the extracted object. An empty value
// removes the slot, matching how the renderers drop empty values. Slots must
// exist on the result's class, falling back to the root class; a nil view
// skips the check.
func ApplyOverrides(result *types.ExtractionResult, overrides []Override, view *template.SchemaView) error {
	if len(overrides) == 0 {
		return nil
	}
	if err := checkSlots(view, result.TargetClass, overrides); err != nil {
		return err
	}
	if result.ExtractedObject == nil {
		result.ExtractedObject = make(map[string]any)
	}
	for _, o := range overrides {
		if o.Value == "" {
			log.Info().Str("slot", o.Slot).Msg("clearing slot value")
			delete(result.ExtractedObject, o.Slot)
			continue
		}
		log.Info().Str("slot", o.Slot).Str("value", o.Value).Msg("overriding slot value")
		result.ExtractedObject[o.Slot] = o.Value
	}
	return nil
}

func checkSlots(view *template.SchemaView, className string, overrides []Override) error {
	if view == nil || len(overrides) == 0 {
		return nil
	}
	class := view.RootClass()
	if c, err := view.Class(className); err == nil {
		class = c
	}
	for _, o := range overrides {
		if _, ok := class.Slot(o.Slot); !ok {
			return fmt.Errorf("class %s has no slot %q: %w", class.Name, o.Slot, types.ErrInvalidArgument)
		}
	}
	return nil
}
