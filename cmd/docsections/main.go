package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docsections/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "docsections",
	Short: "Extract typed document sections from PDF, DOCX and TXT files",
	Long: `docsections extracts text page by page from a PDF, DOCX or TXT file and
asks an LLM to describe each page as a list of sections with entities.

The model endpoint is configured through GROQ_API_KEY and GROQ_BASE_URL.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads and validates the environment. A missing API key is fatal.
func loadConfig() (config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// cliLogger keeps stdout free for command output.
func cliLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
