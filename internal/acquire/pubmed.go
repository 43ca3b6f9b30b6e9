// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/ontoextract/internal/httputil"
	"github.com/pdiddy/ontoextract/pkg/types"
)

// pubmedFetchBase is the E-utilities efetch endpoint. Declared as a var so
// tests can substitute an httptest server.
var pubmedFetchBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"

// PubMedClient fetches article text from PubMed.
type PubMedClient struct {
	Client    *http.Client
	APIKey    string
	UserAgent string
}

type pubmedArticleSet struct {
	Articles []struct {
		Citation struct {
			PMID    string `xml:"PMID"`
			Article struct {
				Title    innerText `xml:"ArticleTitle"`
				Abstract struct {
					Texts []labeledText `xml:"AbstractText"`
				} `xml:"Abstract"`
			} `xml:"Article"`
		} `xml:"MedlineCitation"`
	} `xml:"PubmedArticle"`
}

// innerText collects character data, dropping inline markup such as <i>.
type innerText string

func (t *innerText) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var sb strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch v := tok.(type) {
		case xml.CharData:
			sb.Write(v)
		case xml.EndElement:
			if v.Name == start.Name {
				*t = innerText(strings.TrimSpace(sb.String()))
				return nil
			}
		}
	}
}

// labeledText is an AbstractText section with its optional Label.
type labeledText struct {
	Label string
	Text  innerText
}

func (t *labeledText) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, a := range start.Attr {
		if a.Name.Local == "Label" {
			t.Label = a.Value
		}
	}
	return t.Text.UnmarshalXML(d, start)
}

// Text returns "Title: ...\nAbstract: ..." for one PMID in NFC form.
func (c *PubMedClient) Text(ctx context.Context, pmid string) (string, error) {
	id, err := NormalizePMID(pmid)
	if err != nil {
		return "", err
	}
	params := url.Values{
		"db":      {"pubmed"},
		"id":      {id},
		"rettype": {"abstract"},
		"retmode": {"xml"},
	}
	if c.APIKey != "" {
		params.Set("api_key", c.APIKey)
	}

	body, _, err := httputil.GetBody(ctx, c.Client, pubmedFetchBase+"?"+params.Encode(), c.UserAgent)
	if err != nil {
		return "", fmt.Errorf("PubMed efetch %s: %w", id, err)
	}

	var set pubmedArticleSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return "", fmt.Errorf("parsing PubMed article %s: %w", id, err)
	}
	if len(set.Articles) == 0 {
		return "", fmt.Errorf("PubMed article %s: %w", id, types.ErrNotFound)
	}

	art := set.Articles[0].Citation.Article
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\n", art.Title)
	var parts []string
	for _, at := range art.Abstract.Texts {
		if at.Label != "" {
			parts = append(parts, at.Label+": "+string(at.Text))
		} else {
			parts = append(parts, string(at.Text))
		}
	}
	if len(parts) > 0 {
		fmt.Fprintf(&sb, "Abstract: %s\n", strings.Join(parts, "\n"))
	}
	return norm.NFC.String(sb.String()), nil
}

// PubMedArticle is the Source for one PMID.
type PubMedArticle struct {
	Client *PubMedClient
	PMID   string
}

// Name implements Source.
func (*PubMedArticle) Name() string { return "pubmed" }

// Text implements Source.
func (p *PubMedArticle) Text(ctx context.Context) (string, error) {
	return p.Client.Text(ctx, p.PMID)
}
