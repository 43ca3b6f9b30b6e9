// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ontoextract/internal/acquire"
	"github.com/pdiddy/ontoextract/internal/engine"
	"github.com/pdiddy/ontoextract/internal/search"
	"github.com/pdiddy/ontoextract/internal/secrets"
)

var extractOpts extractOptions

var extractCmd = &cobra.Command{
	Use:   "extract [TEXT | -]",
	Short: "Extract a template from a file, literal text or stdin",
	Long: `Extract fills the template from local text. With --inputfile the file is
read (PDF and Office documents are converted first); otherwise the argument
is the text itself, and with no argument or "-" the text is read from stdin.`,
	Example: `  ontoextract extract -t gene "the mouse Shh gene"
  ontoextract extract -t gene -S species=mouse -O md -i abstract.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		arg := ""
		if len(args) == 1 {
			arg = args[0]
		}
		return extractOpts.run(cmd, func(engine.Engine) (acquire.Source, error) {
			return acquire.Local(extractOpts.inputFile, arg, cmd.InOrStdin(), nil), nil
		}, nil)
	},
}

var pubmedOpts extractOptions

var pubmedExtractCmd = &cobra.Command{
	Use:   "pubmed-extract PMID",
	Short: "Extract a template from a PubMed abstract",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		client := &acquire.PubMedClient{
			Client:    a.client,
			APIKey:    a.secrets.Get(secrets.NCBIAPIKey),
			UserAgent: a.http.UserAgent,
		}
		return pubmedOpts.run(cmd, func(engine.Engine) (acquire.Source, error) {
			return &acquire.PubMedArticle{Client: client, PMID: args[0]}, nil
		}, nil)
	},
}

var searchExtractOpts extractOptions
var searchExtractKeywords []string

var searchExtractCmd = &cobra.Command{
	Use:   "search-and-extract TERM...",
	Short: "Search PubMed and extract a template from the first hit",
	Long: `Search-and-extract combines the search term with the --keyword values and
the template's own keywords, takes the first PubMed hit and extracts from its
title and abstract. At least one keyword is required.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		apiKey := a.secrets.Get(secrets.NCBIAPIKey)
		fetcher := &acquire.PubMedClient{Client: a.client, APIKey: apiKey, UserAgent: a.http.UserAgent}
		backend := &search.PubMedBackend{Client: a.client, APIKey: apiKey, UserAgent: a.http.UserAgent}
		return searchExtractOpts.run(cmd, func(e engine.Engine) (acquire.Source, error) {
			return &acquire.KeywordSearch{
				Backend: backend,
				Fetch:   fetcher.Text,
				Query: search.Query{
					FreeText: strings.Join(args, " "),
					Keywords: templateKeywords(e, searchExtractKeywords),
				},
				RequireKeywords: true,
			}, nil
		}, nil)
	},
}

func init() {
	extractOpts.register(extractCmd)
	extractOpts.registerInputFile(extractCmd)

	pubmedOpts.register(pubmedExtractCmd)

	searchExtractOpts.register(searchExtractCmd)
	searchExtractCmd.Flags().StringArrayVarP(&searchExtractKeywords, "keyword", "k", nil, "keyword added to the search (repeatable)")

	rootCmd.AddCommand(extractCmd, pubmedExtractCmd, searchExtractCmd)
}
