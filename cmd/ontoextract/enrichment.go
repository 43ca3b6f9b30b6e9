// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pdiddy/ontoextract/internal/engine"
	"github.com/pdiddy/ontoextract/internal/enrich"
	"github.com/pdiddy/ontoextract/internal/export"
	"github.com/pdiddy/ontoextract/pkg/types"
)

// geneSetOptions are the flags naming a gene set.
type geneSetOptions struct {
	inputFile string
	name      string
	output    string
	format    string
}

func (o *geneSetOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.inputFile, "input-file", "U", "", "gene set file: YAML/JSON {name, gene_symbols} or one symbol per line")
	f.StringVarP(&o.name, "name", "n", "", "gene set name (default: file stem, or TEMP for listed genes)")
	f.StringVarP(&o.output, "output", "o", "", "output file (default stdout)")
	f.StringVarP(&o.format, "output-format", "O", string(types.FormatYAML), "output format: yaml|json|pickle")
}

var enrichmentGenes geneSetOptions

var enrichmentOpts struct {
	model        string
	descriptions string
	budget       int
	interactive  bool
}

var enrichmentCmd = &cobra.Command{
	Use:   "enrichment [GENE...]",
	Short: "Summarize what a gene set has in common",
	Long: `Enrichment asks the model for a summary, a mechanism and the enriched terms
of a gene set. Genes come from the arguments or from --input-file, never both.
Gene descriptions given with --descriptions are shortened to fit the prompt
budget; the fraction kept is reported as truncation_factor.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		gs, err := enrich.NewGeneSet(args, enrichmentGenes.inputFile, enrichmentGenes.name)
		if err != nil {
			return err
		}
		var descriptions map[string]string
		if enrichmentOpts.descriptions != "" {
			if descriptions, err = enrich.ParseDescriptions(enrichmentOpts.descriptions); err != nil {
				return err
			}
		}

		ctx := cmd.Context()
		a := appFrom(cmd)
		model := modelName(enrichmentOpts.model)
		apiKey, baseURL := providerCredentials(a, model)
		e, err := engine.New(ctx, engine.KindEnrichment, "", engine.Options{
			Model:       model,
			Settings:    a.settings,
			Interactive: enrichmentOpts.interactive,
			APIKey:      apiKey,
			BaseURL:     baseURL,
			HTTPClient:  a.client,
		})
		if err != nil {
			return err
		}
		defer engine.Close(e)

		summarizer, err := engine.As[engine.Summarizer](e)
		if err != nil {
			return err
		}
		result, err := summarizer.Summarize(ctx, gs, enrich.SummarizeOptions{
			Descriptions: descriptions,
			PromptBudget: enrichmentOpts.budget,
		})
		if err != nil {
			return err
		}
		if result.Truncated() {
			log.Warn().Float64("truncation_factor", *result.TruncationFactor).Msg("gene descriptions were shortened to fit the prompt")
		}

		out, closeOut := openOutput(cmd, enrichmentGenes.output)
		err = export.WriteValue(out, enrichmentGenes.format, result)
		if cerr := closeOut(); err == nil {
			err = cerr
		}
		return err
	},
}

var convertGenesetOpts geneSetOptions

var convertGenesetCmd = &cobra.Command{
	Use:   "convert-geneset [GENE...]",
	Short: "Write a gene set as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		gs, err := enrich.NewGeneSet(args, convertGenesetOpts.inputFile, convertGenesetOpts.name)
		if err != nil {
			return err
		}
		out, closeOut := openOutput(cmd, convertGenesetOpts.output)
		err = export.WriteValue(out, convertGenesetOpts.format, gs)
		if cerr := closeOut(); err == nil {
			err = cerr
		}
		return err
	},
}

func init() {
	enrichmentGenes.register(enrichmentCmd)
	f := enrichmentCmd.Flags()
	f.StringVarP(&enrichmentOpts.model, "model", "m", "", "model name")
	f.StringVar(&enrichmentOpts.descriptions, "descriptions", "", "TSV or YAML of gene symbol to function description")
	f.IntVar(&enrichmentOpts.budget, "prompt-budget", enrich.DefaultPromptBudget, "maximum prompt length in characters")
	f.BoolVar(&enrichmentOpts.interactive, "interactive", false, "type the completion yourself instead of calling the model")

	convertGenesetOpts.register(convertGenesetCmd)

	rootCmd.AddCommand(enrichmentCmd, convertGenesetCmd)
}
