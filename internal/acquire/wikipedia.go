// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/ontoextract/internal/httputil"
	"github.com/pdiddy/ontoextract/pkg/types"
)

// wikipediaAPIBase is the MediaWiki action API. Declared as a var so tests
// can substitute an httptest server.
var wikipediaAPIBase = "https://en.wikipedia.org/w/api.php"

// WikipediaClient fetches plain-text article extracts.
type WikipediaClient struct {
	Client    *http.Client
	UserAgent string
}

type wikiExtractResponse struct {
	Query struct {
		Pages map[string]struct {
			Title   string  `json:"title"`
			Missing *string `json:"missing"`
			Extract string  `json:"extract"`
		} `json:"pages"`
	} `json:"query"`
}

// Text returns the plain text of the article with the given title.
// Redirects are followed; a missing page is ErrNotFound. The text is
// returned in Unicode NFC form.
func (c *WikipediaClient) Text(ctx context.Context, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("empty article title: %w", types.ErrInvalidArgument)
	}
	params := url.Values{
		"action":      {"query"},
		"prop":        {"extracts"},
		"explaintext": {"1"},
		"redirects":   {"1"},
		"titles":      {title},
		"format":      {"json"},
	}
	body, _, err := httputil.GetBody(ctx, c.Client, wikipediaAPIBase+"?"+params.Encode(), c.UserAgent)
	if err != nil {
		return "", fmt.Errorf("Wikipedia article %q: %w", title, err)
	}

	var resp wikiExtractResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parsing Wikipedia response: %w", err)
	}
	for id, page := range resp.Query.Pages {
		if id == "-1" || page.Missing != nil {
			break
		}
		return norm.NFC.String(page.Extract), nil
	}
	return "", fmt.Errorf("Wikipedia article %q: %w", title, types.ErrNotFound)
}

// WikipediaArticle is the Source for one article title.
type WikipediaArticle struct {
	Client *WikipediaClient
	Title  string
}

// Name implements Source.
func (*WikipediaArticle) Name() string { return "wikipedia" }

// Text implements Source.
func (w *WikipediaArticle) Text(ctx context.Context) (string, error) {
	return w.Client.Text(ctx, w.Title)
}
