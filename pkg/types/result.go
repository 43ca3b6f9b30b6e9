// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// NamedEntity is a text span that an annotator grounded to an identifier.
type NamedEntity struct {
	// ID is a CURIE such as "NCBITaxon:10090" or "AUTO:mouse".
	ID string `json:"id" yaml:"id"`

	// Label is the text the identifier was assigned to.
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// ExtractionResult holds the output of one engine invocation. It is owned by
// the invocation that produced it until it is handed to the output
// dispatcher; only slot overrides mutate it after extraction.
type ExtractionResult struct {
	// Template is the name of the schema the engine was bound to.
	Template string `json:"template,omitempty" yaml:"template,omitempty"`

	// TargetClass is the class the extracted object conforms to.
	TargetClass string `json:"target_class,omitempty" yaml:"target_class,omitempty"`

	// InputText is the text extraction ran on.
	InputText string `json:"input_text,omitempty" yaml:"input_text,omitempty"`

	// Prompt is the prompt sent to the model.
	Prompt string `json:"prompt,omitempty" yaml:"prompt,omitempty"`

	// RawCompletion is the model payload before parsing.
	RawCompletion string `json:"raw_completion,omitempty" yaml:"raw_completion,omitempty"`

	// ExtractedObject maps slot names to values: strings, lists of values,
	// or nested objects for class-valued slots.
	ExtractedObject map[string]any `json:"extracted_object,omitempty" yaml:"extracted_object,omitempty"`

	// NamedEntities lists the values grounded during extraction.
	NamedEntities []NamedEntity `json:"named_entities,omitempty" yaml:"named_entities,omitempty"`

	// TruncationFactor is the fraction of the intended input that fit the
	// model budget. Nil when nothing was dropped.
	TruncationFactor *float64 `json:"truncation_factor,omitempty" yaml:"truncation_factor,omitempty"`
}

// Truncated reports whether part of the input was dropped before extraction.
func (r *ExtractionResult) Truncated() bool {
	return r != nil && r.TruncationFactor != nil && *r.TruncationFactor < 1.0
}

// GeneSet is a named, ordered list of gene symbols used by enrichment.
type GeneSet struct {
	Name        string   `json:"name" yaml:"name"`
	GeneSymbols []string `json:"gene_symbols" yaml:"gene_symbols"`
}

// EnrichmentResult holds the output of a gene set summarization.
type EnrichmentResult struct {
	GeneSet GeneSet `json:"gene_set" yaml:"gene_set"`

	// Model is the model identifier that produced the summary.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	Prompt       string `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	ResponseText string `json:"response_text,omitempty" yaml:"response_text,omitempty"`

	// Summary, Mechanism and TermStrings are parsed from the response.
	Summary     string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Mechanism   string   `json:"mechanism,omitempty" yaml:"mechanism,omitempty"`
	TermStrings []string `json:"term_strings,omitempty" yaml:"term_strings,omitempty"`

	// TruncationFactor is below 1.0 when gene descriptions were shortened.
	TruncationFactor *float64 `json:"truncation_factor,omitempty" yaml:"truncation_factor,omitempty"`
}

// Truncated reports whether gene descriptions were shortened to fit.
func (r *EnrichmentResult) Truncated() bool {
	return r != nil && r.TruncationFactor != nil && *r.TruncationFactor < 1.0
}
