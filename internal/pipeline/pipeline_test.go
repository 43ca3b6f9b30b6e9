// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/ontoextract/internal/acquire"
	"github.com/pdiddy/ontoextract/internal/engine"
	"github.com/pdiddy/ontoextract/internal/export"
	"github.com/pdiddy/ontoextract/internal/llm"
	"github.com/pdiddy/ontoextract/internal/search"
	"github.com/pdiddy/ontoextract/internal/template"
	"github.com/pdiddy/ontoextract/pkg/types"
)

// scriptedBackend answers every prompt with the same completion.
type scriptedBackend struct {
	completion string
	prompts    []string
}

func (b *scriptedBackend) Name() string { return "scripted" }

func (b *scriptedBackend) Complete(_ context.Context, _, prompt string) (string, error) {
	b.prompts = append(b.prompts, prompt)
	return b.completion, nil
}

const geneCompletion = "gene: Shh\nspecies: Mus musculus\nfunction: signaling\nanatomical_locations: limb bud; neural tube\n"

func newEngine(t *testing.T, backend llm.Backend) engine.Engine {
	t.Helper()
	e, err := engine.New(context.Background(), engine.KindSPIRES, "gene", engine.Options{
		ClientOptions: []llm.Option{llm.WithBackend(backend)},
	})
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close(e) })
	return e
}

// countingSource records how many times Text runs.
type countingSource struct {
	text  string
	calls int
}

func (c *countingSource) Name() string { return "counting" }

func (c *countingSource) Text(context.Context) (string, error) {
	c.calls++
	return c.text, nil
}

func runYAML(t *testing.T, overrides ...string) map[string]any {
	t.Helper()
	var out bytes.Buffer
	_, err := Run(context.Background(), Invocation{
		Engine:    newEngine(t, &scriptedBackend{completion: geneCompletion}),
		Source:    acquire.Literal("the mouse Shh gene"),
		Overrides: overrides,
		Output:    &out,
	})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &doc))
	return doc
}

func TestRunScenario(t *testing.T) {
	base := runYAML(t)
	obj, ok := base["extracted_object"].(map[string]any)
	require.True(t, ok, "no extracted_object in %v", base)
	assert.Equal(t, "Shh", obj["gene"])
	assert.Equal(t, "Mus musculus", obj["species"])
	assert.Equal(t, "gene", base["template"])
	assert.Equal(t, "GeneDescription", base["target_class"])

	overridden := runYAML(t, "species=mouse")
	want := base
	want["extracted_object"].(map[string]any)["species"] = "mouse"
	if diff := cmp.Diff(want, overridden); diff != "" {
		t.Errorf("override changed more than species (-want +got):\n%s", diff)
	}
}

func TestRunAcquiresOnce(t *testing.T) {
	src := &countingSource{text: "the mouse Shh gene"}
	var out bytes.Buffer
	_, err := Run(context.Background(), Invocation{
		Engine: newEngine(t, &scriptedBackend{completion: geneCompletion}),
		Source: src,
		Output: &out,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)
}

func TestRunMissingFileSkipsExtraction(t *testing.T) {
	backend := &scriptedBackend{completion: geneCompletion}
	var out bytes.Buffer
	_, err := Run(context.Background(), Invocation{
		Engine: newEngine(t, backend),
		Source: acquire.Local(filepath.Join(t.TempDir(), "nope.txt"), "", nil, nil),
		Output: &out,
	})
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Empty(t, backend.prompts)
	assert.Zero(t, out.Len())
}

func TestRunRejectsUnknownSlot(t *testing.T) {
	backend := &scriptedBackend{completion: geneCompletion}
	src := &countingSource{text: "x"}
	var out bytes.Buffer
	_, err := Run(context.Background(), Invocation{
		Engine:    newEngine(t, backend),
		Source:    src,
		Overrides: []string{"colour=blue"},
		Output:    &out,
	})
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
	assert.Zero(t, src.calls)
	assert.Empty(t, backend.prompts)
	assert.Zero(t, out.Len())
}

func TestRunRequiresExtractor(t *testing.T) {
	e, err := engine.New(context.Background(), engine.KindEnrichment, "", engine.Options{})
	require.NoError(t, err)
	_, err = Run(context.Background(), Invocation{Engine: e, Source: acquire.Literal("x"), Output: &bytes.Buffer{}})
	assert.ErrorIs(t, err, types.ErrTypeMismatch)
}

func TestRunUnknownTargetClass(t *testing.T) {
	_, err := Run(context.Background(), Invocation{
		Engine:      newEngine(t, &scriptedBackend{completion: geneCompletion}),
		Source:      acquire.Literal("x"),
		TargetClass: "Protein",
		Output:      &bytes.Buffer{},
	})
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestRunPickleRoundTrip(t *testing.T) {
	var out bytes.Buffer
	result, err := Run(context.Background(), Invocation{
		Engine: newEngine(t, &scriptedBackend{completion: geneCompletion}),
		Source: acquire.Literal("the mouse Shh gene"),
		Format: "pickle",
		Output: &out,
	})
	require.NoError(t, err)

	got, err := export.Read(&out, "pickle")
	require.NoError(t, err)
	if diff := cmp.Diff(result, got); diff != "" {
		t.Errorf("pickle round trip (-want +got):\n%s", diff)
	}
}

func TestRunUnknownFormatIsYAML(t *testing.T) {
	render := func(format string) string {
		var out bytes.Buffer
		_, err := Run(context.Background(), Invocation{
			Engine: newEngine(t, &scriptedBackend{completion: geneCompletion}),
			Source: acquire.Literal("the mouse Shh gene"),
			Format: format,
			Output: &out,
		})
		require.NoError(t, err)
		return out.String()
	}
	assert.Equal(t, render("yaml"), render("bogus"))
	assert.Equal(t, render("yaml"), render(""))
}

type stubSearch struct{}

func (stubSearch) Name() string { return "stub" }

func (stubSearch) Search(context.Context, search.Query, int) ([]search.Result, error) {
	return []search.Result{{ID: "Sonic hedgehog"}}, nil
}

func TestRunSearchTextIsTruncated(t *testing.T) {
	long := strings.Repeat("a", 5000)
	src := &acquire.KeywordSearch{
		Backend: stubSearch{},
		Fetch:   func(context.Context, string) (string, error) { return long, nil },
		Query:   search.Query{FreeText: "Shh"},
		Limit:   acquire.SearchTextLimit,
	}
	result, err := Run(context.Background(), Invocation{
		Engine: newEngine(t, &scriptedBackend{completion: geneCompletion}),
		Source: src,
		Output: &bytes.Buffer{},
	})
	require.NoError(t, err)
	assert.Len(t, result.InputText, 4000)
}

func TestRunAfterHook(t *testing.T) {
	result, err := Run(context.Background(), Invocation{
		Engine: newEngine(t, &scriptedBackend{completion: geneCompletion}),
		Source: acquire.Literal("x"),
		Output: &bytes.Buffer{},
		After: func(r *types.ExtractionResult) {
			r.ExtractedObject["function"] = "hooked"
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "hooked", result.ExtractedObject["function"])
}

func TestParseOverrides(t *testing.T) {
	got, err := ParseOverrides([]string{"species=mouse", "function=a=b", "gene="})
	require.NoError(t, err)
	assert.Equal(t, []Override{
		{Slot: "species", Value: "mouse"},
		{Slot: "function", Value: "a=b"},
		{Slot: "gene", Value: ""},
	}, got)

	for _, bad := range []string{"species", "=mouse"} {
		_, err := ParseOverrides([]string{bad})
		assert.ErrorIs(t, err, types.ErrInvalidArgument, bad)
	}
}

func TestApplyOverridesWithoutView(t *testing.T) {
	r := &types.ExtractionResult{}
	require.NoError(t, ApplyOverrides(r, []Override{{Slot: "anything", Value: "v"}}, nil))
	assert.Equal(t, map[string]any{"anything": "v"}, r.ExtractedObject)
}

func TestRunEmptyOverrideClearsSlot(t *testing.T) {
	doc := runYAML(t, "species=")
	obj := doc["extracted_object"].(map[string]any)
	assert.NotContains(t, obj, "species")
	assert.Equal(t, "Shh", obj["gene"])

	r := &types.ExtractionResult{ExtractedObject: map[string]any{"species": "mouse", "gene": "Shh"}}
	require.NoError(t, ApplyOverrides(r, []Override{{Slot: "species"}}, nil))
	assert.Equal(t, map[string]any{"gene": "Shh"}, r.ExtractedObject)
}

// fixedEngine returns a canned object for the gene template.
type fixedEngine struct {
	view *template.SchemaView
	obj  map[string]any
}

func (f *fixedEngine) Name() string                     { return "fixed" }
func (f *fixedEngine) SchemaView() *template.SchemaView { return f.view }

func (f *fixedEngine) Extract(_ context.Context, text, _ string) (*types.ExtractionResult, error) {
	return &types.ExtractionResult{
		Template:        f.view.Name(),
		TargetClass:     f.view.RootClass().Name,
		InputText:       text,
		ExtractedObject: f.obj,
	}, nil
}

func TestExtractWarnsOnSchemaMismatch(t *testing.T) {
	view, err := template.NewRegistry().Load(context.Background(), "gene")
	require.NoError(t, err)

	var logs bytes.Buffer
	orig := log.Logger
	log.Logger = zerolog.New(&logs)
	defer func() { log.Logger = orig }()

	e := &fixedEngine{view: view, obj: map[string]any{"gene": "Shh", "anatomical_locations": "not a list"}}
	result, err := Extract(context.Background(), e, "x", "")
	require.NoError(t, err)
	assert.Equal(t, "not a list", result.ExtractedObject["anatomical_locations"])
	assert.Contains(t, logs.String(), "extracted object does not match the template")

	logs.Reset()
	e.obj = map[string]any{"gene": "Shh", "anatomical_locations": []any{"limb bud"}}
	_, err = Extract(context.Background(), e, "x", "")
	require.NoError(t, err)
	assert.NotContains(t, logs.String(), "does not match")
}
