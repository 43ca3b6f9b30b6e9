// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ontoextract/internal/llm"
	"github.com/pdiddy/ontoextract/pkg/types"
)

// routedBackend answers each prompt with the first reply whose key occurs
// in the prompt text.
type routedBackend struct {
	replies [][2]string
	prompts []string
}

func (b *routedBackend) Name() string { return "routed" }

func (b *routedBackend) Complete(_ context.Context, _, prompt string) (string, error) {
	b.prompts = append(b.prompts, prompt)
	for _, r := range b.replies {
		if strings.Contains(prompt, r[0]) {
			return r[1], nil
		}
	}
	return "", nil
}

func geneBackend() *routedBackend {
	return &routedBackend{replies: [][2]string{
		{"Text:\nShh in mouse", "gene: Shh\norganism: mouse\n"},
		{"Text:\nthe mouse Shh gene", "gene: Shh\nspecies: Mus musculus\nfunction: none\nanatomical_locations: limb bud; neural tube\ngene_organisms: Shh in mouse\n"},
	}}
}

func newGeneEngine(t *testing.T, backend llm.Backend, opts Options) Engine {
	t.Helper()
	opts.ClientOptions = append(opts.ClientOptions, llm.WithBackend(backend))
	e, err := New(context.Background(), KindSPIRES, "gene", opts)
	require.NoError(t, err)
	t.Cleanup(func() { Close(e) })
	return e
}

func TestNewAppliesSettings(t *testing.T) {
	settings := &types.Settings{}
	settings.Set(filepath.Join(t.TempDir(), "cache.db"), []string{AnnotatorAuto})

	e := newGeneEngine(t, geneBackend(), Options{Settings: settings, Model: "m"})

	cc, err := As[ClientConfigurable](e)
	require.NoError(t, err)
	assert.Equal(t, settings.CacheDB, cc.ClientConfig().CacheDBPath)
	assert.Equal(t, []string{AnnotatorAuto}, cc.ClientConfig().SkipAnnotators)
	assert.Equal(t, "m", cc.ClientConfig().Model)
}

func TestNewWithoutSettingsKeepsDefaults(t *testing.T) {
	e := newGeneEngine(t, geneBackend(), Options{})
	cc, err := As[ClientConfigurable](e)
	require.NoError(t, err)
	assert.Empty(t, cc.ClientConfig().CacheDBPath)
	assert.Empty(t, cc.ClientConfig().SkipAnnotators)
}

func TestNewErrors(t *testing.T) {
	_, err := New(context.Background(), KindSPIRES, "no_such_template", Options{})
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = New(context.Background(), Kind("bogus"), "gene", Options{})
	assert.ErrorIs(t, err, types.ErrInvalidArgument)

	_, err = New(context.Background(), KindEnrichment, "", Options{Dictionary: "terms.yaml"})
	assert.ErrorIs(t, err, types.ErrTypeMismatch)
}

func TestAsCapabilities(t *testing.T) {
	spires := newGeneEngine(t, geneBackend(), Options{})
	_, err := As[Summarizer](spires)
	assert.ErrorIs(t, err, types.ErrTypeMismatch)
	_, err = As[Extractor](spires)
	assert.NoError(t, err)
	_, err = As[SchemaViewer](spires)
	assert.NoError(t, err)

	enrichment, err := New(context.Background(), KindEnrichment, "", Options{})
	require.NoError(t, err)
	_, err = As[Summarizer](enrichment)
	assert.NoError(t, err)
	_, err = As[Extractor](enrichment)
	assert.ErrorIs(t, err, types.ErrTypeMismatch)

	_, err = As[Extractor](nil)
	assert.ErrorIs(t, err, types.ErrTypeMismatch)
}

func TestExtractRecursesAndGrounds(t *testing.T) {
	backend := geneBackend()
	e := newGeneEngine(t, backend, Options{Recurse: true})
	x, err := As[Extractor](e)
	require.NoError(t, err)

	res, err := x.Extract(context.Background(), "the mouse Shh gene", "")
	require.NoError(t, err)

	want := map[string]any{
		"gene":                 "Shh",
		"species":              "Mus musculus",
		"anatomical_locations": []any{"AUTO:limb%20bud", "AUTO:neural%20tube"},
		"gene_organisms": []any{
			map[string]any{"gene": "Shh", "organism": "AUTO:mouse"},
		},
	}
	if diff := cmp.Diff(want, res.ExtractedObject); diff != "" {
		t.Errorf("extracted object mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "gene", res.Template)
	assert.Equal(t, "GeneDescription", res.TargetClass)
	assert.Equal(t, "the mouse Shh gene", res.InputText)
	assert.Contains(t, res.Prompt, "anatomical_locations: <semicolon-separated list of")
	assert.Len(t, res.NamedEntities, 3)
	assert.Len(t, backend.prompts, 2)
}

func TestExtractWithoutRecursionKeepsText(t *testing.T) {
	backend := geneBackend()
	e := newGeneEngine(t, backend, Options{Recurse: false})
	x, _ := As[Extractor](e)

	res, err := x.Extract(context.Background(), "the mouse Shh gene", "")
	require.NoError(t, err)
	assert.Equal(t, []any{"Shh in mouse"}, res.ExtractedObject["gene_organisms"])
	assert.Len(t, backend.prompts, 1)
}

func TestExtractTargetClass(t *testing.T) {
	e := newGeneEngine(t, geneBackend(), Options{})
	x, _ := As[Extractor](e)

	res, err := x.Extract(context.Background(), "Shh in mouse", "GeneOrganismRelationship")
	require.NoError(t, err)
	assert.Equal(t, "GeneOrganismRelationship", res.TargetClass)
	assert.Equal(t, "AUTO:mouse", res.ExtractedObject["organism"])

	_, err = x.Extract(context.Background(), "x", "Missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestDictionaryGroundingAndSkips(t *testing.T) {
	dict := filepath.Join(t.TempDir(), "anatomy.tsv")
	require.NoError(t, os.WriteFile(dict, []byte("limb bud\tUBERON:0002101\n"), 0o644))

	tests := []struct {
		name string
		skip []string
		want []any
	}{
		{"dictionary then auto", nil, []any{"UBERON:0002101", "AUTO:neural%20tube"}},
		{"skip dictionary", []string{AnnotatorDictionary}, []any{"AUTO:limb%20bud", "AUTO:neural%20tube"}},
		{"skip auto", []string{AnnotatorAuto}, []any{"UBERON:0002101", "neural tube"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := &types.Settings{}
			settings.Set("", tt.skip)
			e := newGeneEngine(t, geneBackend(), Options{Dictionary: dict, Settings: settings})
			x, _ := As[Extractor](e)

			res, err := x.Extract(context.Background(), "the mouse Shh gene", "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.ExtractedObject["anatomical_locations"])
		})
	}
}

func TestParseDictionaryFormats(t *testing.T) {
	dir := t.TempDir()
	mapping := filepath.Join(dir, "map.yaml")
	require.NoError(t, os.WriteFile(mapping, []byte("Limb  Bud: UBERON:0002101\n"), 0o644))
	list := filepath.Join(dir, "list.yaml")
	require.NoError(t, os.WriteFile(list, []byte("- id: NCBITaxon:10090\n  label: Mus musculus\n  synonyms: [mouse]\n"), 0o644))

	d, err := ParseDictionary(mapping)
	require.NoError(t, err)
	id, ok := d.Lookup("limb bud")
	assert.True(t, ok)
	assert.Equal(t, "UBERON:0002101", id)

	d, err = ParseDictionary(list)
	require.NoError(t, err)
	id, ok = d.Lookup("Mouse")
	assert.True(t, ok)
	assert.Equal(t, "NCBITaxon:10090", id)

	bad := filepath.Join(dir, "bad.tsv")
	require.NoError(t, os.WriteFile(bad, []byte("no tab here\n"), 0o644))
	_, err = ParseDictionary(bad)
	assert.Error(t, err)
}

func TestParseCompletion(t *testing.T) {
	got := parseCompletion("Gene: Shh\n- Anatomical Locations: limb bud\nspecies: N/A\nnoise line\ngene: ignored\n")
	assert.Equal(t, map[string]string{
		"gene":                 "Shh",
		"anatomical_locations": "limb bud",
	}, got)
}

const camelCaseTemplate = `openapi: 3.0.3
info: {title: camel, version: "1"}
paths: {}
components:
  schemas:
    GeneMention:
      type: object
      x-tree-root: true
      properties:
        geneSymbol: {type: string}
        species: {type: string}
`

func TestExtractMatchesMixedCaseSlots(t *testing.T) {
	path := filepath.Join(t.TempDir(), "camel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(camelCaseTemplate), 0o644))

	backend := &routedBackend{replies: [][2]string{{"Text:", "geneSymbol: Shh\nspecies: mouse\n"}}}
	e, err := New(context.Background(), KindSPIRES, path, Options{ClientOptions: []llm.Option{llm.WithBackend(backend)}})
	require.NoError(t, err)
	t.Cleanup(func() { Close(e) })
	x, err := As[Extractor](e)
	require.NoError(t, err)

	res, err := x.Extract(context.Background(), "the mouse Shh gene", "")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"geneSymbol": "Shh", "species": "mouse"}, res.ExtractedObject)
}
