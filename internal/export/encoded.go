// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/gob"
	"fmt"
	"io"

	"github.com/pdiddy/ontoextract/internal/template"
	"github.com/pdiddy/ontoextract/pkg/types"
)

type yamlRenderer struct{}

func (yamlRenderer) Format() types.OutputFormat { return types.FormatYAML }

func (yamlRenderer) Render(w io.Writer, result *types.ExtractionResult, _ *template.SchemaView) error {
	return encodeYAML(w, Minimal(result))
}

type jsonRenderer struct{}

func (jsonRenderer) Format() types.OutputFormat { return types.FormatJSON }

func (jsonRenderer) Render(w io.Writer, result *types.ExtractionResult, _ *template.SchemaView) error {
	return encodeJSON(w, Minimal(result))
}

// pickleRenderer writes the whole result as an opaque gob stream. Read
// decodes it back into an identical result.
type pickleRenderer struct{}

func (pickleRenderer) Format() types.OutputFormat { return types.FormatPickle }

func (pickleRenderer) Render(w io.Writer, result *types.ExtractionResult, _ *template.SchemaView) error {
	if err := gob.NewEncoder(w).Encode(result); err != nil {
		return fmt.Errorf("encoding pickle: %w", err)
	}
	return nil
}
