package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
	"gopkg.in/yaml.v3"

	"github.com/shapestone/shape-csvstream/pkg/csv"
)

// dialect is the sniff command's report. Field names double as csvtok flag
// names so the output can be pasted into a config file.
type dialect struct {
	Delimiter string `json:"delimiter" yaml:"delimiter"`
	Quote     string `json:"quote" yaml:"quote"`
	Escape    string `json:"escape" yaml:"escape"`
	Comment   string `json:"comment" yaml:"comment"`
	Headers   bool   `json:"headers" yaml:"headers"`
	Columns   int    `json:"columns" yaml:"columns"`
}

func newSniffCommand(o *cliOptions) *cobra.Command {
	format := "yaml"
	cmd := &cobra.Command{
		Use:   "sniff [FILE]",
		Short: "Detect the dialect of a CSV file",
		Long:  "sniff inspects the first 64KiB of the input and prints the detected delimiter, quote and header settings.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, closeInput, err := openInput(cmd, args)
			if err != nil {
				return err
			}
			defer closeInput()
			if o.encoding != "" {
				enc, err := htmlindex.Get(o.encoding)
				if err != nil {
					return fmt.Errorf("unknown --encoding %q: %w", o.encoding, err)
				}
				in = transform.NewReader(in, enc.NewDecoder())
			}

			sample, err := peekSample(bufio.NewReaderSize(in, sniffSampleSize))
			if err != nil {
				return err
			}
			return writeDialect(cmd.OutOrStdout(), format, sniffDialect(sample))
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", format, "Output format (yaml, json)")
	return cmd
}

func sniffDialect(sample string) dialect {
	s := csv.NewSniffer(sample)
	layout := s.Layout()
	d := dialect{
		Delimiter: string(layout.Delimiter),
		Quote:     string(layout.Quote),
		Escape:    string(layout.Escape),
		Comment:   string(layout.Comment),
		Headers:   s.HasHeader(),
	}
	if fields := csv.SplitLine(sample, layout, csv.DefaultBehavior()); fields != nil {
		d.Columns = len(fields)
	}
	return d
}

func writeDialect(w io.Writer, format string, d dialect) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(d)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	default:
		return fmt.Errorf("unknown --format %q (expected yaml or json)", format)
	}
}
