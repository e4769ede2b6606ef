package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/coregx/coregex"
	"github.com/fatih/color"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/language"
	"golang.org/x/text/transform"

	"github.com/shapestone/shape-csvstream/internal/logging"
	"github.com/shapestone/shape-csvstream/pkg/csv"
)

// sniffSampleSize is how many bytes --sniff and the sniff command inspect.
const sniffSampleSize = 64 * 1024

type cliOptions struct {
	configFile string
	logLevel   string

	delimiter string
	quote     string
	escape    string
	comment   string

	trim           string
	missing        string
	keepEmptyLines bool
	headers        bool
	headerPrefix   string
	headerCase     string
	encoding       string
	bufferSize     int
	sniff          bool

	format  string
	grep    string
	columns []string
	noColor bool
}

func newRootCommand() *cobra.Command {
	o := &cliOptions{
		logLevel:     "warn",
		delimiter:    ",",
		quote:        `"`,
		escape:       `"`,
		comment:      "#",
		trim:         csv.TrimUnquotedOnly.String(),
		missing:      csv.MissingFieldParseError.String(),
		headerPrefix: csv.DefaultBehavior().DefaultHeaderPrefix,
		bufferSize:   csv.DefaultBufferSize,
		format:       "table",
	}
	cmd := &cobra.Command{
		Use:           "csvtok [FILE]",
		Short:         "Stream CSV records from a file or stdin",
		Long:          "csvtok tokenizes CSV input with a configurable dialect and prints the records as a table, JSON lines, YAML or raw text.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return bindViper(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecords(cmd, args, o)
		},
	}
	cmd.Example = `  # Print a semicolon separated file as a table
  csvtok --delimiter ';' --headers data.csv

  # Detect the dialect and emit JSON lines, padding short records
  csvtok --sniff --missing empty --format json export.csv

  # Keep rows mentioning "error" and only two columns
  cat log.csv | csvtok --headers --grep 'error' --columns time,message`

	pf := cmd.PersistentFlags()
	pf.StringVar(&o.configFile, "config", "", "Config file (default $XDG_CONFIG_HOME/csvtok/csvtok.yaml, also CSVTOK_CONFIG)")
	pf.StringVar(&o.logLevel, "log-level", o.logLevel, "Log level (trace, debug, info, warn, error)")
	pf.StringVar(&o.delimiter, "delimiter", o.delimiter, "Field delimiter (a single character, or \\t)")
	pf.StringVar(&o.quote, "quote", o.quote, "Quote character (empty disables quoting)")
	pf.StringVar(&o.escape, "escape", o.escape, "Escape character inside quoted fields (empty disables)")
	pf.StringVar(&o.comment, "comment", o.comment, "Comment line prefix (empty disables)")
	pf.StringVar(&o.encoding, "encoding", "", "Input encoding name, e.g. latin1 or windows-1252 (default UTF-8)")

	f := cmd.Flags()
	f.StringVar(&o.trim, "trim", o.trim, "Whitespace trimming (none, unquoted, quoted, all)")
	f.StringVar(&o.missing, "missing", o.missing, "Short record handling (error, empty, null)")
	f.BoolVar(&o.keepEmptyLines, "keep-empty-lines", false, "Emit blank lines as empty records")
	f.BoolVar(&o.headers, "headers", false, "Treat the first non-empty record as column names")
	f.StringVar(&o.headerPrefix, "header-prefix", o.headerPrefix, "Name prefix for blank header cells")
	f.StringVar(&o.headerCase, "header-case", "", "Rewrite header names (lower, upper, snake, title)")
	f.IntVar(&o.bufferSize, "buffer-size", o.bufferSize, "Characters read per refill")
	f.BoolVar(&o.sniff, "sniff", false, "Detect delimiter, quote and headers from the first 64KiB")
	f.StringVarP(&o.format, "format", "o", o.format, "Output format (table, json, yaml, raw)")
	f.StringVar(&o.grep, "grep", "", "Only print records with a field matching this regular expression")
	f.StringSliceVar(&o.columns, "columns", nil, "Only print these columns (names or zero-based indexes)")
	f.BoolVar(&o.noColor, "no-color", false, "Disable colored table headers")

	cmd.AddCommand(newSniffCommand(o))
	return cmd
}

func runRecords(cmd *cobra.Command, args []string, o *cliOptions) error {
	log, err := logging.New(o.logLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	in, closeInput, err := openInput(cmd, args)
	if err != nil {
		return err
	}
	defer closeInput()

	opts, err := o.readerOptions(log)
	if err != nil {
		return err
	}

	var input io.Reader = in
	if o.sniff {
		if opts.Encoding != nil {
			input = transform.NewReader(input, opts.Encoding.NewDecoder())
			opts.Encoding = nil
		}
		br := bufio.NewReaderSize(input, sniffSampleSize)
		sample, err := peekSample(br)
		if err != nil {
			return err
		}
		s := csv.NewSniffer(sample)
		opts.Layout = s.Layout()
		if !cmd.Flags().Changed("headers") {
			opts.HasHeaders = s.HasHeader()
		}
		log.V(1).Info("sniffed dialect", "delimiter", string(opts.Delimiter), "quote", string(opts.Quote), "headers", opts.HasHeaders)
		input = br
	}

	var grep *coregex.Regexp
	if o.grep != "" {
		if grep, err = coregex.Compile(o.grep); err != nil {
			return fmt.Errorf("invalid --grep: %w", err)
		}
	}

	w, err := newRecordWriter(o.format, cmd.OutOrStdout(), !o.noColor && !color.NoColor)
	if err != nil {
		return err
	}

	r := csv.NewReader(input, opts)
	defer r.Close()

	headers, err := r.Headers()
	if err != nil {
		return err
	}
	selector := columnSelector(o.columns)
	if headers != nil {
		if err := w.WriteHeader(selector.SelectNames(headers)); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	rejected := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, csv.ErrMissingField) {
			rejected++
			log.Error(err, "record rejected")
			continue
		}
		if err != nil {
			return err
		}
		if grep != nil && !matchesAny(grep, rec) {
			continue
		}
		if err := w.Write(rec, selector.Select(rec, headers)); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if rejected > 0 {
		return fmt.Errorf("%d record(s) rejected: %w", rejected, csv.ErrMissingField)
	}
	return nil
}

func openInput(cmd *cobra.Command, args []string) (io.Reader, func(), error) {
	if len(args) == 0 || args[0] == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

// peekSample returns up to sniffSampleSize bytes without consuming them.
func peekSample(br *bufio.Reader) (string, error) {
	sample, err := br.Peek(sniffSampleSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return "", fmt.Errorf("read sample: %w", err)
	}
	return trimPartialRune(sample), nil
}

// trimPartialRune drops a UTF-8 sequence cut off at the end of b.
func trimPartialRune(b []byte) string {
	for i := 1; i < utf8.UTFMax && len(b) > 0; i++ {
		if r, size := utf8.DecodeLastRune(b); r != utf8.RuneError || size != 1 {
			break
		}
		b = b[:len(b)-1]
	}
	return string(b)
}

func (o *cliOptions) readerOptions(log logr.Logger) (csv.ReaderOptions, error) {
	opts := csv.DefaultReaderOptions()
	opts.Logger = log
	opts.BufferSize = o.bufferSize
	opts.HasHeaders = o.headers
	opts.SkipEmptyLines = !o.keepEmptyLines
	opts.DefaultHeaderPrefix = o.headerPrefix

	var err error
	if opts.Delimiter, err = parseRune("delimiter", o.delimiter, false); err != nil {
		return opts, err
	}
	if opts.Quote, err = parseRune("quote", o.quote, true); err != nil {
		return opts, err
	}
	if opts.Escape, err = parseRune("escape", o.escape, true); err != nil {
		return opts, err
	}
	if opts.Comment, err = parseRune("comment", o.comment, true); err != nil {
		return opts, err
	}
	if opts.Trimming, err = csv.ParseTrimming(o.trim); err != nil {
		return opts, err
	}
	if opts.MissingField, err = csv.ParseMissingFieldAction(o.missing); err != nil {
		return opts, err
	}
	if opts.HeaderConverter, err = headerConverter(o.headerCase); err != nil {
		return opts, err
	}
	if o.encoding != "" {
		enc, err := htmlindex.Get(o.encoding)
		if err != nil {
			return opts, fmt.Errorf("unknown --encoding %q: %w", o.encoding, err)
		}
		opts.Encoding = enc
	}
	return opts, opts.Validate()
}

// parseRune reads a single-character flag value. "\t" and "tab" mean a tab.
func parseRune(name, value string, allowEmpty bool) (rune, error) {
	switch value {
	case "":
		if allowEmpty {
			return 0, nil
		}
	case `\t`, "tab":
		return '\t', nil
	default:
		if utf8.RuneCountInString(value) == 1 {
			r, _ := utf8.DecodeRuneInString(value)
			return r, nil
		}
	}
	return 0, fmt.Errorf("--%s must be a single character, got %s", name, strconv.Quote(value))
}

func headerConverter(name string) (csv.HeaderConverter, error) {
	switch strings.ToLower(name) {
	case "":
		return nil, nil
	case "lower":
		return csv.LowercaseHeader, nil
	case "upper":
		return csv.UppercaseHeader, nil
	case "snake":
		return csv.SnakeCaseHeader, nil
	case "title":
		caser := cases.Title(language.Und)
		return func(s string) string { return caser.String(s) }, nil
	default:
		return nil, fmt.Errorf("unknown --header-case %q (expected lower, upper, snake, or title)", name)
	}
}

// columnSelector splits --columns values into indexes and names.
func columnSelector(columns []string) *csv.ColumnSelector {
	sel := &csv.ColumnSelector{}
	for _, c := range columns {
		c = strings.TrimSpace(c)
		if i, err := strconv.Atoi(c); err == nil && i >= 0 {
			sel.UseColIndexes = append(sel.UseColIndexes, i)
			continue
		}
		if c != "" {
			sel.UseCols = append(sel.UseCols, c)
		}
	}
	return sel
}

func matchesAny(re *coregex.Regexp, rec csv.Record) bool {
	for _, f := range rec.Fields() {
		if re.MatchString(f) {
			return true
		}
	}
	return false
}
