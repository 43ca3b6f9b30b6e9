// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// OutputFormat selects the renderer for an extraction result.
type OutputFormat string

const (
	FormatYAML     OutputFormat = "yaml"
	FormatJSON     OutputFormat = "json"
	FormatPickle   OutputFormat = "pickle"
	FormatMarkdown OutputFormat = "md"
	FormatHTML     OutputFormat = "html"
	FormatTurtle   OutputFormat = "turtle"
	FormatOWL      OutputFormat = "owl"
	FormatPDF      OutputFormat = "pdf"
)

// DefaultOutputFormat is used when no format, or an unknown one, is requested.
const DefaultOutputFormat = FormatYAML

// OutputFormats lists every supported format in help-text order.
var OutputFormats = []OutputFormat{
	FormatJSON, FormatYAML, FormatPickle, FormatMarkdown,
	FormatHTML, FormatOWL, FormatTurtle, FormatPDF,
}

// ParseOutputFormat maps a format name to its OutputFormat. Unknown and empty
// names resolve to DefaultOutputFormat with ok set to false.
func ParseOutputFormat(name string) (f OutputFormat, ok bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, known := range OutputFormats {
		if string(known) == name {
			return known, true
		}
	}
	return DefaultOutputFormat, false
}

// Binary reports whether the format produces non-text bytes.
func (f OutputFormat) Binary() bool {
	return f == FormatPickle || f == FormatPDF
}

// FormatNames returns the supported format names joined for help text.
func FormatNames() string {
	names := make([]string, len(OutputFormats))
	for i, f := range OutputFormats {
		names[i] = string(f)
	}
	return strings.Join(names, "|")
}
