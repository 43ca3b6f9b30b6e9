// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ontoextract/internal/acquire"
	"github.com/pdiddy/ontoextract/internal/engine"
	"github.com/pdiddy/ontoextract/internal/search"
	"github.com/pdiddy/ontoextract/pkg/types"
)

var wikipediaOpts extractOptions

var wikipediaExtractCmd = &cobra.Command{
	Use:   "wikipedia-extract ARTICLE",
	Short: "Extract a template from a Wikipedia article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		client := &acquire.WikipediaClient{Client: a.client, UserAgent: a.http.UserAgent}
		return wikipediaOpts.run(cmd, func(engine.Engine) (acquire.Source, error) {
			return &acquire.WikipediaArticle{Client: client, Title: args[0]}, nil
		}, nil)
	},
}

var wikipediaSearchOpts extractOptions
var wikipediaSearchKeywords []string

var wikipediaSearchCmd = &cobra.Command{
	Use:   "wikipedia-search TOPIC",
	Short: "Search Wikipedia and extract a template from the first article",
	Long: `Wikipedia-search searches for the topic together with the --keyword values
and the template's keywords, then extracts from the first article found. The
article text is cut to its first 4000 characters.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		client := &acquire.WikipediaClient{Client: a.client, UserAgent: a.http.UserAgent}
		backend := &search.WikipediaBackend{Client: a.client, UserAgent: a.http.UserAgent}
		return wikipediaSearchOpts.run(cmd, func(e engine.Engine) (acquire.Source, error) {
			return &acquire.KeywordSearch{
				Backend: backend,
				Fetch:   client.Text,
				Query: search.Query{
					FreeText: args[0],
					Keywords: templateKeywords(e, wikipediaSearchKeywords),
				},
				Limit: acquire.SearchTextLimit,
			}, nil
		}, nil)
	},
}

var webOpts extractOptions
var webRender bool

var webExtractCmd = &cobra.Command{
	Use:   "web-extract URL",
	Short: "Extract a template from a web page",
	Long: `Web-extract downloads the page and extracts from its readable text. With
--render the page is loaded in headless Chrome first, for pages that build
their content with JavaScript.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return webOpts.run(cmd, func(engine.Engine) (acquire.Source, error) {
			return &acquire.WebPage{Client: newWebClient(appFrom(cmd), webRender), URL: args[0]}, nil
		}, nil)
	},
}

var recipeOpts extractOptions
var recipeURLsFile string

var recipeExtractCmd = &cobra.Command{
	Use:   "recipe-extract [URL]",
	Short: "Extract a recipe from a page with schema.org Recipe data",
	Long: `Recipe-extract reads the schema.org Recipe embedded in the page and extracts
from its title, ingredients and instructions. With --recipes-urls-file the
argument selects the one URL in the file that contains it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		arg := ""
		if len(args) == 1 {
			arg = args[0]
		}
		url, err := recipeURL(arg, recipeURLsFile)
		if err != nil {
			return err
		}
		client := &acquire.RecipeClient{Web: newWebClient(appFrom(cmd), false)}
		return recipeOpts.run(cmd, func(engine.Engine) (acquire.Source, error) {
			return &acquire.RecipePage{Client: client, URL: url}, nil
		}, func(r *types.ExtractionResult) {
			if r.ExtractedObject == nil {
				r.ExtractedObject = make(map[string]any)
			}
			r.ExtractedObject["url"] = url
		})
	},
}

// recipeURL picks the recipe URL from the argument or the candidates file.
func recipeURL(arg, candidates string) (string, error) {
	if candidates != "" {
		if arg == "" {
			return "", fmt.Errorf("--recipes-urls-file needs a URL fragment argument: %w", types.ErrInvalidArgument)
		}
		return acquire.ResolveCandidate(candidates, arg)
	}
	if arg == "" {
		return "", fmt.Errorf("a recipe URL is required: %w", types.ErrInvalidArgument)
	}
	return arg, nil
}

func newWebClient(a *app, render bool) *acquire.WebClient {
	c := &acquire.WebClient{Client: a.client, UserAgent: a.http.UserAgent}
	if render {
		c.Renderer = acquire.ChromeRenderer{}
	}
	return c
}

func init() {
	wikipediaOpts.register(wikipediaExtractCmd)

	wikipediaSearchOpts.register(wikipediaSearchCmd)
	wikipediaSearchCmd.Flags().StringArrayVarP(&wikipediaSearchKeywords, "keyword", "k", nil, "keyword added to the search (repeatable)")

	webOpts.register(webExtractCmd)
	webExtractCmd.Flags().BoolVar(&webRender, "render", false, "render the page in headless Chrome before reading it")

	recipeOpts.register(recipeExtractCmd)
	recipeExtractCmd.Flags().StringVarP(&recipeURLsFile, "recipes-urls-file", "R", "", "file of candidate recipe URLs, one per line")

	rootCmd.AddCommand(wikipediaExtractCmd, wikipediaSearchCmd, webExtractCmd, recipeExtractCmd)
}
