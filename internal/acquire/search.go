// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/ontoextract/internal/search"
	"github.com/pdiddy/ontoextract/pkg/types"
)

// SearchTextLimit is the character cap applied to Wikipedia search hits.
const SearchTextLimit = 4000

// Fetcher returns the full text of a document by search result ID.
type Fetcher func(ctx context.Context, id string) (string, error)

// KeywordSearch runs a search, takes the first hit and fetches its text.
type KeywordSearch struct {
	Backend search.Backend
	Fetch   Fetcher
	Query   search.Query

	// RequireKeywords fails with ErrInvalidArgument when Query has none.
	RequireKeywords bool

	// Limit truncates the fetched text to this many characters. Zero keeps
	// the whole text.
	Limit int
}

// Name implements Source.
func (k *KeywordSearch) Name() string { return k.Backend.Name() + "-search" }

// Text implements Source.
func (k *KeywordSearch) Text(ctx context.Context) (string, error) {
	if k.RequireKeywords && len(k.Query.Keywords) == 0 {
		return "", fmt.Errorf("no keywords specified; use --keyword or annotate the template with x-keywords: %w", types.ErrInvalidArgument)
	}
	log.Info().Str("term", k.Query.FreeText).Strs("keywords", k.Query.Keywords).Msg("searching")

	hit, err := search.First(ctx, k.Backend, k.Query)
	if err != nil {
		return "", err
	}
	text, err := k.Fetch(ctx, hit.ID)
	if err != nil {
		return "", err
	}
	return Truncate(text, k.Limit), nil
}

// Truncate cuts text to at most limit characters. A limit of zero or less
// keeps the text unchanged.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	log.Warn().Int("chars", len(runes)).Int("limit", limit).Msg("truncating search result text")
	return string(runes[:limit])
}
