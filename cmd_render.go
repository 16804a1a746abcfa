package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgtlunion/konspekt/config"
	"github.com/dgtlunion/konspekt/layout"
	"github.com/dgtlunion/konspekt/pipeline"
)

type renderCmdOpts struct {
	output    string
	client    string
	date      string
	mode      string
	debug     string
	assetsDir string
}

func newRenderCmd(root *rootOpts) *cobra.Command {
	var opts renderCmdOpts
	cmd := &cobra.Command{
		Use:   "render [summary.txt]",
		Short: "Render a summary text file to PDF",
		Long:  "Render reads a five-block summary (or stdin when the file is \"-\") and writes the PDF document.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			if opts.assetsDir != "" {
				cfg.Assets.Dir = opts.assetsDir
			}
			text, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			a, err := newApp(ctx, cfg, logger, appOpts{})
			if err != nil {
				return err
			}
			defer a.Close()

			prog := newProgress(logger)
			var buf bytes.Buffer
			res, err := a.svc.Render(ctx, pipeline.RenderRequest{
				Summary: text,
				Client:  opts.client,
				Date:    opts.date,
				Mode:    opts.mode,
			}, &buf)
			if err != nil {
				return fmt.Errorf("render: %w", err)
			}
			if opts.debug != "" {
				if err := writeDebug(res, opts.debug); err != nil {
					return err
				}
			}
			if opts.output == "" {
				opts.output = pipeline.DownloadName(opts.date)
			}
			if err := writeFile(opts.output, buf.Bytes()); err != nil {
				return err
			}
			prog.done("pdf written", "path", opts.output, "pages", res.Stats.Pages)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "PDF output path (default konspiekt_<date>.pdf)")
	cmd.Flags().StringVar(&opts.client, "client", "", "client name for the subtitle")
	cmd.Flags().StringVar(&opts.date, "date", "", "session date (default today)")
	cmd.Flags().StringVar(&opts.mode, "mode", pipeline.ModeSections, "layout mode: sections or lines")
	cmd.Flags().StringVar(&opts.debug, "debug", "", "write the layout result as JSON to this path")
	cmd.Flags().StringVar(&opts.assetsDir, "assets", "", "directory with the background and fonts")
	return cmd
}

func readInput(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func writeDebug(result *layout.Result, path string) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create debug directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	if err := layout.WriteDebugJSON(f, result); err != nil {
		return fmt.Errorf("write layout debug JSON: %w", err)
	}
	return nil
}
