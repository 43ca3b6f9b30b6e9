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

	"github.com/pdiddy/ontoextract/internal/httputil"
)

// pubmedSearchBase is the E-utilities esearch endpoint. Declared as a var so
// tests can substitute an httptest server.
var pubmedSearchBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"

// PubMedBackend searches PubMed through NCBI E-utilities.
type PubMedBackend struct {
	Client    *http.Client
	APIKey    string
	UserAgent string
}

// Name returns the backend identifier.
func (b *PubMedBackend) Name() string { return "pubmed" }

type esearchResponse struct {
	Result struct {
		Count  string   `json:"count"`
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// Search queries esearch and returns PMIDs in relevance order.
func (b *PubMedBackend) Search(ctx context.Context, query Query, limit int) ([]Result, error) {
	term := PubMedTerm(query)
	if term == "" {
		return nil, fmt.Errorf("empty PubMed query")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	params := url.Values{
		"db":      {"pubmed"},
		"term":    {term},
		"retmode": {"json"},
		"retmax":  {strconv.Itoa(limit)},
		"sort":    {"relevance"},
	}
	if b.APIKey != "" {
		params.Set("api_key", b.APIKey)
	}

	body, _, err := httputil.GetBody(ctx, b.Client, pubmedSearchBase+"?"+params.Encode(), b.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("PubMed esearch: %w", err)
	}

	var sr esearchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("parsing PubMed esearch response: %w", err)
	}

	results := make([]Result, 0, len(sr.Result.IDList))
	for _, id := range sr.Result.IDList {
		results = append(results, Result{ID: id, Source: b.Name()})
	}
	return results, nil
}

// PubMedTerm builds an esearch term: the free text AND any of the keywords.
func PubMedTerm(q Query) string {
	free := strings.TrimSpace(q.FreeText)
	var kws []string
	for _, k := range q.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			kws = append(kws, quoteTerm(k))
		}
	}
	switch {
	case free == "" && len(kws) == 0:
		return ""
	case len(kws) == 0:
		return free
	case free == "":
		return "(" + strings.Join(kws, " OR ") + ")"
	default:
		return free + " AND (" + strings.Join(kws, " OR ") + ")"
	}
}

func quoteTerm(k string) string {
	if strings.ContainsAny(k, " \t") {
		return `"` + strings.ReplaceAll(k, `"`, "") + `"`
	}
	return k
}
