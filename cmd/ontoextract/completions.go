// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ontoextract/internal/export"
	"github.com/pdiddy/ontoextract/internal/llm"
	"github.com/pdiddy/ontoextract/pkg/types"
)

var dumpOpts struct {
	output string
	format string
}

var dumpCompletionsCmd = &cobra.Command{
	Use:   "dump-completions [MATCH]",
	Short: "List cached completions, optionally those whose prompt contains MATCH",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		if a.settings.CacheDB == "" {
			return fmt.Errorf("no completion cache configured; pass --cache-db: %w", types.ErrInvalidArgument)
		}
		match := ""
		if len(args) == 1 {
			match = args[0]
		}

		cache, err := llm.OpenCache(a.settings.CacheDB)
		if err != nil {
			return err
		}
		defer cache.Close()

		entries, err := cache.Entries(cmd.Context(), match)
		if err != nil {
			return err
		}

		out, closeOut := openOutput(cmd, dumpOpts.output)
		err = writeCompletions(out, dumpOpts.format, entries)
		if cerr := closeOut(); err == nil {
			err = cerr
		}
		return err
	},
}

// writeCompletions writes cache entries as yaml, jsonl or md.
func writeCompletions(w io.Writer, format string, entries []llm.CachedCompletion) error {
	switch strings.ToLower(format) {
	case "jsonl":
		enc := json.NewEncoder(w)
		for _, e := range entries {
			if err := enc.Encode(e); err != nil {
				return fmt.Errorf("encoding completion: %w", err)
			}
		}
		return nil
	case "md":
		var sb strings.Builder
		for _, e := range entries {
			fmt.Fprintf(&sb, "## %s (%s)\n\n### Prompt\n\n%s\n\n### Completion\n\n%s\n\n",
				e.Engine, e.CreatedAt.Format("2006-01-02 15:04:05"), strings.TrimSpace(e.Prompt), strings.TrimSpace(e.Completion))
		}
		_, err := io.WriteString(w, sb.String())
		return err
	default:
		if entries == nil {
			entries = []llm.CachedCompletion{}
		}
		return export.WriteValue(w, format, entries)
	}
}

func init() {
	dumpCompletionsCmd.Flags().StringVarP(&dumpOpts.output, "output", "o", "", "output file (default stdout)")
	dumpCompletionsCmd.Flags().StringVarP(&dumpOpts.format, "output-format", "O", string(types.FormatYAML), "output format: yaml|jsonl|md")

	rootCmd.AddCommand(dumpCompletionsCmd)
}
