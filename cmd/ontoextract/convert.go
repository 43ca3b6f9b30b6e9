// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pdiddy/ontoextract/internal/export"
	"github.com/pdiddy/ontoextract/internal/template"
	"github.com/pdiddy/ontoextract/pkg/types"
)

var convertOpts struct {
	template    string
	inputFormat string
	output      string
	format      string
}

var convertCmd = &cobra.Command{
	Use:   "convert RESULT",
	Short: "Re-render a saved extraction result in another format",
	Long: `Convert reads a result written earlier as yaml, json or pickle and renders
it again. The template recorded in the result (or --template) provides the
schema that turtle and owl output need.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		format := convertOpts.inputFormat
		if format == "" {
			format = formatFromExt(path)
		}

		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("cannot find result file %s: %w", path, types.ErrNotFound)
			}
			return fmt.Errorf("opening result file: %w", err)
		}
		defer f.Close()

		result, err := export.Read(f, format)
		if err != nil {
			return err
		}

		view := convertView(cmd, result)
		out, closeOut := openOutput(cmd, convertOpts.output)
		err = export.Write(out, convertOpts.format, result, view)
		if cerr := closeOut(); err == nil {
			err = cerr
		}
		return err
	},
}

// convertView loads the template the result was extracted with. Formats
// that do not need a schema work without one, so a failure is only logged.
func convertView(cmd *cobra.Command, result *types.ExtractionResult) *template.SchemaView {
	ref := convertOpts.template
	if ref == "" {
		ref = result.Template
	}
	if ref == "" {
		return nil
	}
	view, err := appFrom(cmd).templates.Load(cmd.Context(), ref)
	if err != nil {
		log.Warn().Err(err).Str("template", ref).Msg("could not load template for result")
		return nil
	}
	return view
}

// formatFromExt guesses a saved result's format from its file extension.
func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return string(types.FormatJSON)
	case ".pkl", ".pickle", ".gob":
		return string(types.FormatPickle)
	default:
		return string(types.FormatYAML)
	}
}

func init() {
	f := convertCmd.Flags()
	f.StringVarP(&convertOpts.template, "template", "t", "", "template to render with (default: the one recorded in the result)")
	f.StringVarP(&convertOpts.inputFormat, "input-format", "I", "", "format of RESULT: yaml|json|pickle (default: from extension)")
	f.StringVarP(&convertOpts.output, "output", "o", "", "output file (default stdout)")
	f.StringVarP(&convertOpts.format, "output-format", "O", string(types.DefaultOutputFormat), "output format: "+types.FormatNames())

	rootCmd.AddCommand(convertCmd)
}
