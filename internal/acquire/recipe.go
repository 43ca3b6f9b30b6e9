// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/ontoextract/pkg/types"
)

// Recipe is the part of a schema.org Recipe used for extraction.
type Recipe struct {
	URL          string
	Title        string
	Ingredients  []string
	Instructions []string
}

// Text composes the block the recipe template is extracted from.
func (r Recipe) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Recipe: %s\n", r.Title)
	sb.WriteString("Ingredients:\n")
	for _, i := range r.Ingredients {
		sb.WriteString(i + "\n")
	}
	sb.WriteString("Instructions:\n")
	for _, s := range r.Instructions {
		sb.WriteString(s + "\n")
	}
	return sb.String()
}

// RecipeClient fetches recipe pages.
type RecipeClient struct {
	Web *WebClient
}

// Fetch downloads url and parses its recipe.
func (c *RecipeClient) Fetch(ctx context.Context, url string) (Recipe, error) {
	page, err := c.Web.HTML(ctx, url)
	if err != nil {
		return Recipe{}, err
	}
	r, err := ParseRecipe(page)
	if err != nil {
		return Recipe{}, fmt.Errorf("%s: %w", url, err)
	}
	r.URL = url
	return r, nil
}

// RecipePage is the Source for a recipe URL.
type RecipePage struct {
	Client *RecipeClient
	URL    string
}

// Name implements Source.
func (*RecipePage) Name() string { return "recipe" }

// Text implements Source.
func (p *RecipePage) Text(ctx context.Context) (string, error) {
	r, err := p.Client.Fetch(ctx, p.URL)
	if err != nil {
		return "", err
	}
	return norm.NFC.String(r.Text()), nil
}

// ParseRecipe finds the schema.org Recipe in a page's JSON-LD blocks.
func ParseRecipe(page []byte) (Recipe, error) {
	root, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return Recipe{}, fmt.Errorf("parsing page: %w", err)
	}
	scripts := findAll(root, func(n *html.Node) bool {
		if !strings.EqualFold(n.Data, "script") {
			return false
		}
		for _, a := range n.Attr {
			if strings.EqualFold(a.Key, "type") && strings.EqualFold(strings.TrimSpace(a.Val), "application/ld+json") {
				return true
			}
		}
		return false
	}, nil)

	for _, s := range scripts {
		if s.FirstChild == nil {
			continue
		}
		var doc any
		if err := json.Unmarshal([]byte(s.FirstChild.Data), &doc); err != nil {
			continue
		}
		if obj := findRecipe(doc); obj != nil {
			return Recipe{
				Title:        asString(obj["name"]),
				Ingredients:  asStrings(obj["recipeIngredient"]),
				Instructions: instructions(obj["recipeInstructions"]),
			}, nil
		}
	}
	return Recipe{}, fmt.Errorf("no schema.org Recipe on page: %w", types.ErrNotFound)
}

func findRecipe(v any) map[string]any {
	switch t := v.(type) {
	case []any:
		for _, e := range t {
			if r := findRecipe(e); r != nil {
				return r
			}
		}
	case map[string]any:
		if isType(t["@type"], "Recipe") {
			return t
		}
		if g, ok := t["@graph"]; ok {
			return findRecipe(g)
		}
	}
	return nil
}

func isType(v any, want string) bool {
	switch t := v.(type) {
	case string:
		return t == want
	case []any:
		for _, e := range t {
			if s, ok := e.(string); ok && s == want {
				return true
			}
		}
	}
	return false
}

func asString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(html.UnescapeString(s))
}

func asStrings(v any) []string {
	var out []string
	switch t := v.(type) {
	case string:
		if s := asString(t); s != "" {
			out = append(out, s)
		}
	case []any:
		for _, e := range t {
			if s := asString(e); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// instructions flattens text, HowToStep and HowToSection forms.
func instructions(v any) []string {
	var out []string
	switch t := v.(type) {
	case string:
		for _, line := range strings.Split(t, "\n") {
			if s := asString(line); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, e := range t {
			out = append(out, instructions(e)...)
		}
	case map[string]any:
		if items, ok := t["itemListElement"]; ok {
			return instructions(items)
		}
		if s := asString(t["text"]); s != "" {
			out = append(out, s)
		} else if s := asString(t["name"]); s != "" {
			out = append(out, s)
		}
	}
	return out
}
