// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ontoextract/internal/template"
	"github.com/pdiddy/ontoextract/pkg/types"
)

func sampleResult() *types.ExtractionResult {
	factor := 0.5
	return &types.ExtractionResult{
		Template:      "gene",
		TargetClass:   "GeneDescription",
		InputText:     "the mouse Shh gene",
		Prompt:        "From the text below...",
		RawCompletion: "gene: Shh\n",
		ExtractedObject: map[string]any{
			"gene":                 "Shh",
			"species":              "AUTO:mouse",
			"anatomical_locations": []any{"AUTO:limb%20bud", "neural tube <b>"},
			"gene_organisms": []any{
				map[string]any{"gene": "Shh", "organism": "AUTO:mouse"},
			},
			"function": "123",
		},
		NamedEntities: []types.NamedEntity{
			{ID: "AUTO:mouse", Label: "mouse"},
			{ID: "AUTO:limb%20bud", Label: "limb bud"},
		},
		TruncationFactor: &factor,
	}
}

func geneView(t *testing.T) *template.SchemaView {
	t.Helper()
	v, err := template.NewRegistry().Load(context.Background(), "gene")
	require.NoError(t, err)
	return v
}

func render(t *testing.T, format string, result *types.ExtractionResult, view *template.SchemaView) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, format, result, view))
	return buf.String()
}

func TestRoundTrip(t *testing.T) {
	for _, format := range []string{"yaml", "json", "pickle"} {
		t.Run(format, func(t *testing.T) {
			want := sampleResult()
			out := render(t, format, want, nil)

			got, err := Read(strings.NewReader(out), format)
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestYAMLIsMinimalAndSorted(t *testing.T) {
	result := &types.ExtractionResult{
		Template:        "gene",
		ExtractedObject: map[string]any{"species": "mouse", "gene": "Shh", "function": ""},
	}
	out := render(t, "yaml", result, nil)
	assert.Equal(t, "extracted_object:\n  gene: Shh\n  species: mouse\ntemplate: gene\n", out)
}

func TestUnknownFormatMatchesYAML(t *testing.T) {
	want := render(t, "yaml", sampleResult(), nil)
	assert.Equal(t, want, render(t, "", sampleResult(), nil))
	assert.Equal(t, want, render(t, "docx", sampleResult(), nil))
	assert.Equal(t, types.FormatYAML, Lookup("docx").Format())
}

func TestEveryFormatHasRenderer(t *testing.T) {
	for _, f := range types.OutputFormats {
		assert.Equal(t, f, Lookup(string(f)).Format())
	}
}

func TestRDFRequiresSchemaView(t *testing.T) {
	for _, format := range []string{"turtle", "owl"} {
		var buf bytes.Buffer
		err := Write(&buf, format, sampleResult(), nil)
		assert.True(t, errors.Is(err, types.ErrNoSchemaView), "%s: %v", format, err)
		assert.Zero(t, buf.Len(), "%s wrote partial output", format)
	}
}

func TestTurtle(t *testing.T) {
	out := render(t, "turtle", sampleResult(), geneView(t))
	assert.Contains(t, out, "_:result")
	assert.Contains(t, out, "<https://w3id.org/ontoextract/gene/GeneDescription>")
	assert.Contains(t, out, "<https://w3id.org/ontoextract/gene/gene>")
	assert.Contains(t, out, `"Shh"`)
	assert.Contains(t, out, "<https://bioregistry.io/AUTO:mouse>")
	assert.Contains(t, out, `"neural tube <b>"`)
	assert.Contains(t, out, "_:result_gene_organisms_1")
	assert.Contains(t, out, "<https://w3id.org/ontoextract/gene/GeneOrganismRelationship>")
	assert.Contains(t, out, `"mouse"`)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "."))
}

func TestTurtleEscapesLiterals(t *testing.T) {
	result := &types.ExtractionResult{
		TargetClass:     "GeneDescription",
		ExtractedObject: map[string]any{"function": "binds \"PTCH1\"\nin cilia"},
	}
	out := render(t, "turtle", result, geneView(t))
	assert.Contains(t, out, `\"PTCH1\"`)
	assert.NotContains(t, out, "\nin cilia")
}

func TestOWL(t *testing.T) {
	out := render(t, "owl", sampleResult(), geneView(t))
	assert.Contains(t, out, "Ontology(<https://w3id.org/ontoextract/gene/result>")
	assert.Contains(t, out, "ClassAssertion(:GeneDescription :result)")
	assert.Contains(t, out, `DataPropertyAssertion(:gene :result "Shh")`)
	assert.Contains(t, out, "ObjectPropertyAssertion(:gene_organisms :result :result_gene_organisms_1)")
	assert.Contains(t, out, "ClassAssertion(:GeneOrganismRelationship :result_gene_organisms_1)")
	assert.Contains(t, out, "Declaration(Class(:GeneOrganismRelationship))")
	assert.Contains(t, out, "ObjectPropertyAssertion(:organism :result_gene_organisms_1 <https://bioregistry.io/AUTO:mouse>)")
	assert.True(t, strings.HasSuffix(out, ")\n"))
}

func TestOWLQuotesOnlyQuoteAndBackslash(t *testing.T) {
	result := &types.ExtractionResult{
		TargetClass:     "GeneDescription",
		ExtractedObject: map[string]any{"function": "a \"b\" \\ c\nd"},
	}
	out := render(t, "owl", result, geneView(t))
	assert.Contains(t, out, "DataPropertyAssertion(:function :result \"a \\\"b\\\" \\\\ c\nd\")")
}

func TestMarkdown(t *testing.T) {
	out := render(t, "md", sampleResult(), geneView(t))
	assert.Contains(t, out, "# gene")
	assert.Contains(t, out, "## GeneDescription")
	assert.Contains(t, out, "- **gene**: Shh")
	assert.Contains(t, out, "    - neural tube <b>")
	assert.Contains(t, out, "- **gene_organisms**: gene=Shh; organism=AUTO:mouse")
	assert.Contains(t, out, "| AUTO:mouse | mouse |")
	assert.Contains(t, out, "factor of 0.50")
}

func TestHTMLSanitizesValues(t *testing.T) {
	out := render(t, "html", sampleResult(), geneView(t))
	assert.Contains(t, out, "<dt>gene</dt>")
	assert.Contains(t, out, "<li>neural tube </li>")
	assert.NotContains(t, out, "<b>")
}

func TestPDF(t *testing.T) {
	out := render(t, "pdf", sampleResult(), geneView(t))
	assert.True(t, strings.HasPrefix(out, "%PDF-"))
}

func TestWriteValue(t *testing.T) {
	gs := types.GeneSet{Name: "hox", GeneSymbols: []string{"HOXA1", "HOXB1"}}

	var buf bytes.Buffer
	require.NoError(t, WriteValue(&buf, "yaml", gs))
	assert.Equal(t, "name: hox\ngene_symbols:\n  - HOXA1\n  - HOXB1\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteValue(&buf, "md", gs))
	assert.Equal(t, "name: hox\ngene_symbols:\n  - HOXA1\n  - HOXB1\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteValue(&buf, "json", gs))
	assert.JSONEq(t, `{"name":"hox","gene_symbols":["HOXA1","HOXB1"]}`, buf.String())
}

func TestReadRejectsRenderedFormats(t *testing.T) {
	_, err := Read(strings.NewReader(""), "md")
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}
