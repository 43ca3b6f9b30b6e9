// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/ontoextract/internal/export"
	"github.com/pdiddy/ontoextract/internal/llm"
	"github.com/pdiddy/ontoextract/internal/secrets"
	"github.com/pdiddy/ontoextract/pkg/types"
)

var embedOpts struct {
	model  string
	output string
	format string
}

// embedding is one line of embed output.
type embedding struct {
	Text      string    `json:"text" yaml:"text"`
	Embedding []float32 `json:"embedding" yaml:"embedding,flow"`
}

// newEmbedder is replaced in tests.
var newEmbedder = func(a *app, model string) *llm.Embedder {
	return llm.NewEmbedder(a.secrets.Get(secrets.OpenAIAPIKey), viper.GetString(keyOpenAIBaseURL), model, a.client)
}

var embedCmd = &cobra.Command{
	Use:   "embed TEXT...",
	Short: "Print the embedding vector of each text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vectors, err := newEmbedder(appFrom(cmd), embedOpts.model).Embed(cmd.Context(), args...)
		if err != nil {
			return err
		}
		rows := make([]embedding, len(args))
		for i, text := range args {
			rows[i] = embedding{Text: text, Embedding: vectors[i]}
		}
		out, closeOut := openOutput(cmd, embedOpts.output)
		err = export.WriteValue(out, embedOpts.format, rows)
		if cerr := closeOut(); err == nil {
			err = cerr
		}
		return err
	},
}

// comparePair embeds two texts and prints measure applied to them.
func comparePair(cmd *cobra.Command, args []string, measure func(a, b []float32) (float64, error)) error {
	vectors, err := newEmbedder(appFrom(cmd), embedOpts.model).Embed(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	v, err := measure(vectors[0], vectors[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%.6f\n", v)
	return nil
}

var textSimilarityCmd = &cobra.Command{
	Use:   "text-similarity TEXT1 TEXT2",
	Short: "Print the cosine similarity of two texts' embeddings",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return comparePair(cmd, args, llm.CosineSimilarity)
	},
}

var textDistanceCmd = &cobra.Command{
	Use:   "text-distance TEXT1 TEXT2",
	Short: "Print the Euclidean distance between two texts' embeddings",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return comparePair(cmd, args, llm.EuclideanDistance)
	},
}

func init() {
	for _, c := range []*cobra.Command{embedCmd, textSimilarityCmd, textDistanceCmd} {
		c.Flags().StringVarP(&embedOpts.model, "model", "m", llm.DefaultEmbeddingModel, "embedding model")
	}
	embedCmd.Flags().StringVarP(&embedOpts.output, "output", "o", "", "output file (default stdout)")
	embedCmd.Flags().StringVarP(&embedOpts.format, "output-format", "O", string(types.FormatYAML), "output format: yaml|json")

	rootCmd.AddCommand(embedCmd, textSimilarityCmd, textDistanceCmd)
}
