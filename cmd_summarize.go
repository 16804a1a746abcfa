package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgtlunion/konspekt/config"
	"github.com/dgtlunion/konspekt/llm"
	"github.com/dgtlunion/konspekt/storage"
)

func newSummarizeCmd(root *rootOpts) *cobra.Command {
	var (
		client string
		date   string
		save   bool
	)
	cmd := &cobra.Command{
		Use:   "summarize [session.txt]",
		Short: "Summarize a session transcript with Gemini",
		Long:  "Summarize prints the generated summary. With --save the PDF is also written to the storage directory.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			text, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			a, err := newApp(ctx, cfg, logger, appOpts{summarizer: true, store: save})
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.svc.SummarizeAndSave(ctx, llm.Request{Session: text, Client: client, Date: date}, save)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), res.Summary); err != nil {
				return err
			}
			switch {
			case res.PDF != nil:
				logger.Info("pdf saved", "path", storagePath(a.store, res.PDF.Name))
			case res.PDFError != "":
				logger.Warn("pdf not saved", "err", res.PDFError)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&client, "client", "", "client name")
	cmd.Flags().StringVar(&date, "date", "", "session date (default today)")
	cmd.Flags().BoolVar(&save, "save", false, "also render and store the PDF")
	return cmd
}

func storagePath(s *storage.Store, name string) string {
	if s == nil {
		return name
	}
	return filepath.Join(s.Dir(), name)
}
