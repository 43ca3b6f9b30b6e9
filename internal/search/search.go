// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries article indexes (PubMed, Wikipedia) for the
// documents keyword-driven extraction commands run on.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/ontoextract/pkg/types"
)

// DefaultLimit is the number of hits requested when the caller sets none.
const DefaultLimit = 10

// Backend searches one index. Each index implements this interface per the
// Strategy pattern.
type Backend interface {
	Name() string
	Search(ctx context.Context, query Query, limit int) ([]Result, error)
}

// Query holds the search parameters.
type Query struct {
	FreeText string
	Keywords []string
}

// IsEmpty reports whether the query contains no searchable terms.
func (q Query) IsEmpty() bool {
	return strings.TrimSpace(q.FreeText) == "" && len(q.Keywords) == 0
}

// Result is one search hit.
type Result struct {
	// ID is the index's document identifier: a PMID or a page title.
	ID      string `json:"id" yaml:"id"`
	Title   string `json:"title,omitempty" yaml:"title,omitempty"`
	Snippet string `json:"snippet,omitempty" yaml:"snippet,omitempty"`
	Source  string `json:"source" yaml:"source"`
}

// MergeKeywords returns the user keywords followed by template keywords,
// dropping blanks and case-insensitive duplicates.
func MergeKeywords(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, k := range list {
			k = strings.TrimSpace(k)
			key := strings.ToLower(k)
			if k == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, k)
		}
	}
	return out
}

// First runs query against b and returns the top hit. An empty result list
// is ErrNoResults.
func First(ctx context.Context, b Backend, query Query) (Result, error) {
	if query.IsEmpty() {
		return Result{}, fmt.Errorf("query is empty: %w", types.ErrInvalidArgument)
	}
	results, err := b.Search(ctx, query, DefaultLimit)
	if err != nil {
		return Result{}, fmt.Errorf("%s search: %w", b.Name(), err)
	}
	results = deduplicate(results)
	if len(results) == 0 {
		return Result{}, fmt.Errorf("%s search for %q: %w", b.Name(), describe(query), types.ErrNoResults)
	}
	log.Info().
		Str("backend", b.Name()).
		Int("hits", len(results)).
		Str("first", results[0].ID).
		Msg("search complete")
	return results[0], nil
}

// deduplicate drops repeated identifiers, keeping the first occurrence.
func deduplicate(results []Result) []Result {
	seen := make(map[string]bool, len(results))
	out := results[:0]
	for _, r := range results {
		key := strings.ToLower(strings.TrimSpace(r.ID))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

func describe(q Query) string {
	parts := append([]string{q.FreeText}, q.Keywords...)
	return strings.TrimSpace(strings.Join(parts, " "))
}
