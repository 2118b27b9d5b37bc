package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docsections/internal/extract"
	"github.com/dgallion1/docsections/internal/pipeline"
)

var (
	parseOutput  string
	parseVerbose bool
)

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Extract sections from a file and write them as JSON",
	Long: `Extract text from FILE page by page, send each non-empty page to the model
and write the flat list of section records to the output file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runParse(cmd, args[0])
	},
}

func init() {
	parseCmd.Flags().StringVarP(&parseOutput, "output", "o", pipeline.OutputFilename, "Path of the JSON file to write")
	parseCmd.Flags().BoolVarP(&parseVerbose, "verbose", "v", false, "Log every page request to stderr")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, path string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := cliLogger(parseVerbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chat := extract.NewChatClient(cfg.Client())
	p := pipeline.New(extract.NewSectionParser(chat, log), log)

	w := cmd.OutOrStdout()
	printHeader(w, path)

	doc, err := p.Process(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to extract text: %w", err)
	}
	printWarnings(w, doc.Warnings)

	f, err := os.Create(parseOutput)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := pipeline.EncodeRecords(f, doc.Records); err != nil {
		f.Close()
		return fmt.Errorf("write output: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	printSummary(w, doc, parseOutput, chat.Stats.Snapshot())
	return nil
}
