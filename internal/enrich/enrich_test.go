// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ontoextract/internal/llm"
	"github.com/pdiddy/ontoextract/pkg/types"
)

type scriptedBackend struct {
	answer  string
	prompts []string
}

func (b *scriptedBackend) Name() string { return "scripted" }

func (b *scriptedBackend) Complete(_ context.Context, _, prompt string) (string, error) {
	b.prompts = append(b.prompts, prompt)
	return b.answer, nil
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestNewGeneSetExclusivity(t *testing.T) {
	file := writeFile(t, "genes.txt", "SHH\n")
	tests := []struct {
		name  string
		genes []string
		file  string
	}{
		{"both", []string{"SHH"}, file},
		{"neither", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGeneSet(tt.genes, tt.file, "")
			assert.ErrorIs(t, err, types.ErrInvalidArgument)
		})
	}
}

func TestNewGeneSetFromArgs(t *testing.T) {
	gs, err := NewGeneSet([]string{"SHH", " ", "PTCH1"}, "", "hedgehog")
	require.NoError(t, err)
	assert.Equal(t, types.GeneSet{Name: "hedgehog", GeneSymbols: []string{"SHH", "PTCH1"}}, gs)
}

func TestParseGeneSet(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    types.GeneSet
	}{
		{
			name:    "line list skips blanks and comments",
			file:    "hedgehog.txt",
			content: "# pathway\nSHH\n\nPTCH1\n  GLI1  \n",
			want:    types.GeneSet{Name: "hedgehog", GeneSymbols: []string{"SHH", "PTCH1", "GLI1"}},
		},
		{
			name:    "yaml with name",
			file:    "set.yaml",
			content: "name: wnt\ngene_symbols: [WNT1, CTNNB1]\n",
			want:    types.GeneSet{Name: "wnt", GeneSymbols: []string{"WNT1", "CTNNB1"}},
		},
		{
			name:    "yaml name from stem",
			file:    "notch.yml",
			content: "gene_symbols:\n  - NOTCH1\n",
			want:    types.GeneSet{Name: "notch", GeneSymbols: []string{"NOTCH1"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gs, err := ParseGeneSet(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.want, gs)
		})
	}
}

func TestParseGeneSetMissing(t *testing.T) {
	_, err := ParseGeneSet(filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestSummarize(t *testing.T) {
	backend := &scriptedBackend{answer: "Summary: Hedgehog signaling\ncontinued here\nMechanism: ligand binds receptor\nEnriched Terms: hedgehog signaling pathway; limb development.\n"}
	e := NewEngine(llm.NewClient(&llm.Config{Model: "m"}, llm.WithBackend(backend)))

	gs := types.GeneSet{Name: "hh", GeneSymbols: []string{"SHH", "PTCH1"}}
	res, err := e.Summarize(context.Background(), gs, SummarizeOptions{})
	require.NoError(t, err)

	assert.Equal(t, "Hedgehog signaling continued here", res.Summary)
	assert.Equal(t, "ligand binds receptor", res.Mechanism)
	assert.Equal(t, []string{"hedgehog signaling pathway", "limb development"}, res.TermStrings)
	assert.Equal(t, "m", res.Model)
	assert.False(t, res.Truncated())
	require.Len(t, backend.prompts, 1)
	assert.Contains(t, backend.prompts[0], "SHH; PTCH1")
}

func TestSummarizeTruncatesDescriptions(t *testing.T) {
	backend := &scriptedBackend{answer: "Summary: x"}
	e := NewEngine(llm.NewClient(nil, llm.WithBackend(backend)))

	gs := types.GeneSet{Name: "hh", GeneSymbols: []string{"SHH", "PTCH1"}}
	opts := SummarizeOptions{
		Descriptions: map[string]string{
			"SHH":   strings.Repeat("a", 3000),
			"PTCH1": strings.Repeat("b", 3000),
		},
		PromptBudget: 2500,
	}
	res, err := e.Summarize(context.Background(), gs, opts)
	require.NoError(t, err)

	require.True(t, res.Truncated())
	assert.Greater(t, *res.TruncationFactor, 0.0)
	assert.LessOrEqual(t, len([]rune(res.Prompt)), 2500)
}

func TestSummarizeEmptySet(t *testing.T) {
	e := NewEngine(llm.NewClient(nil, llm.WithBackend(&scriptedBackend{})))
	_, err := e.Summarize(context.Background(), types.GeneSet{Name: "x"}, SummarizeOptions{})
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestParseDescriptions(t *testing.T) {
	d, err := ParseDescriptions(writeFile(t, "d.tsv", "SHH\tsonic hedgehog ligand\nbad line\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"SHH": "sonic hedgehog ligand"}, d)
}
