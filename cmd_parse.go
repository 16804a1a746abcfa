package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgtlunion/konspekt/summary"
)

func newParseCmd() *cobra.Command {
	var (
		format string
		client string
		date   string
	)
	cmd := &cobra.Command{
		Use:   "parse [summary.txt]",
		Short: "Show how a summary is split into categories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(summary.Parse(text))
			case "lines":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(summary.Lines(text, summary.Ukrainian))
			case "text":
				s := summary.Parse(text)
				_, err := fmt.Fprint(out, summary.Format(s, summary.Meta{Client: client, Date: date}, summary.Ukrainian))
				return err
			default:
				return fmt.Errorf("unknown format %q (want json, lines or text)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output: json, lines or text")
	cmd.Flags().StringVar(&client, "client", "", "client for the text metadata line")
	cmd.Flags().StringVar(&date, "date", "", "date for the text metadata line")
	return cmd
}
