// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ontoextract/internal/export"
)

var listTemplatesFormat string

var listTemplatesCmd = &cobra.Command{
	Use:   "list-templates",
	Short: "List the built-in and user templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		summaries, err := appFrom(cmd).templates.List(cmd.Context())
		if err != nil {
			return err
		}
		if listTemplatesFormat != "" {
			return export.WriteValue(cmd.OutOrStdout(), listTemplatesFormat, summaries)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tROOT CLASS\tKEYWORDS\tSOURCE\tDESCRIPTION")
		for _, s := range summaries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.Name, s.RootClass, strings.Join(s.Keywords, ","), s.Source, s.Description)
		}
		return tw.Flush()
	},
}

func init() {
	listTemplatesCmd.Flags().StringVarP(&listTemplatesFormat, "output-format", "O", "", "write the listing as yaml or json instead of a table")

	rootCmd.AddCommand(listTemplatesCmd)
}
