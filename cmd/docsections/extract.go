package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docsections/internal/parser"
)

var extractCmd = &cobra.Command{
	Use:   "extract FILE",
	Short: "Print the pages extracted from a file as JSON",
	Long:  `Run text extraction only. No model calls are made and no API key is needed.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pages, err := parser.Extract(args[0])
		if err != nil {
			return fmt.Errorf("failed to extract text: %w", err)
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(pages)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}
