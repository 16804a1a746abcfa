package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// rootOpts holds the flags shared by every command.
type rootOpts struct {
	verbose    bool
	configPath string
}

func newRootCmd() *cobra.Command {
	var opts rootOpts
	root := &cobra.Command{
		Use:          "konspekt",
		Short:        "Session summaries as branded PDF documents",
		Long:         "konspekt turns psychotherapy session transcripts into five-block summaries and renders them as A4 PDF documents.",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := log.InfoLevel
			if opts.verbose {
				level = log.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "TOML configuration file")

	root.AddCommand(newRenderCmd(&opts))
	root.AddCommand(newParseCmd())
	root.AddCommand(newSummarizeCmd(&opts))
	root.AddCommand(newServeCmd(&opts))
	return root
}
