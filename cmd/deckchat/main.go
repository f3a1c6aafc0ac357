package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dgallion1/deckchat/internal/config"
	"github.com/spf13/cobra"
)

var verbose bool

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "deckchat",
		Short: "Extract presentations and ask questions about them",
		Long: `deckchat extracts text from .pptx, .txt and .md files and relays
questions about the extracted document to an OpenAI-compatible chat endpoint.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadDotEnv()
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log extraction and chat details to stderr")
	root.AddCommand(newExtractCmd(), newSelectCmd(), newAskCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// logger writes JSON logs to stderr when verbose is set.
func logger() *slog.Logger {
	if !verbose {
		return slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func readDocument(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
