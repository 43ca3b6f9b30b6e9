// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/pdiddy/ontoextract/internal/httputil"
)

// wikipediaAPIBase is the MediaWiki action API. Declared as a var so tests
// can substitute an httptest server.
var wikipediaAPIBase = "https://en.wikipedia.org/w/api.php"

// WikipediaBackend searches English Wikipedia.
type WikipediaBackend struct {
	Client    *http.Client
	UserAgent string
}

// Name returns the backend identifier.
func (b *WikipediaBackend) Name() string { return "wikipedia" }

type wikiSearchResponse struct {
	Query struct {
		Search []struct {
			Title   string `json:"title"`
			PageID  int    `json:"pageid"`
			Snippet string `json:"snippet"`
		} `json:"search"`
	} `json:"query"`
}

// Search runs a full-text search; result IDs are page titles.
func (b *WikipediaBackend) Search(ctx context.Context, query Query, limit int) ([]Result, error) {
	term := strings.TrimSpace(describe(query))
	if term == "" {
		return nil, fmt.Errorf("empty Wikipedia query")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {term},
		"srlimit":  {strconv.Itoa(limit)},
		"format":   {"json"},
	}
	body, _, err := httputil.GetBody(ctx, b.Client, wikipediaAPIBase+"?"+params.Encode(), b.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("Wikipedia search: %w", err)
	}

	var sr wikiSearchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("parsing Wikipedia search response: %w", err)
	}

	results := make([]Result, 0, len(sr.Query.Search))
	for _, hit := range sr.Query.Search {
		results = append(results, Result{
			ID:      hit.Title,
			Title:   hit.Title,
			Snippet: stripMarkup(hit.Snippet),
			Source:  b.Name(),
		})
	}
	return results, nil
}

// stripMarkup removes the highlight spans MediaWiki puts in snippets.
func stripMarkup(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var sb strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(sb.String())
		case html.TextToken:
			sb.Write(z.Text())
		}
	}
}
