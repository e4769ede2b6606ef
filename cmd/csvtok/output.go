package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"github.com/shapestone/shape-csvstream/pkg/csv"
)

// recordWriter renders records for one --format. fields is the record after
// column selection.
type recordWriter interface {
	WriteHeader(names []string) error
	Write(rec csv.Record, fields []string) error
	Flush() error
}

func newRecordWriter(format string, w io.Writer, colorize bool) (recordWriter, error) {
	switch strings.ToLower(format) {
	case "table", "":
		return newTableWriter(w, colorize), nil
	case "json":
		return &jsonWriter{enc: json.NewEncoder(w)}, nil
	case "yaml":
		return &yamlWriter{w: w}, nil
	case "raw":
		return &rawWriter{w: bufio.NewWriter(w)}, nil
	default:
		return nil, fmt.Errorf("unknown --format %q (expected table, json, yaml, or raw)", format)
	}
}

// tableWriter buffers every row so columns can be aligned on Flush. Widths
// are display widths, so East Asian text lines up.
type tableWriter struct {
	w       io.Writer
	header  []string
	rows    [][]string
	headerC *color.Color
}

func newTableWriter(w io.Writer, colorize bool) *tableWriter {
	c := color.New(color.FgCyan, color.Bold)
	if colorize {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return &tableWriter{w: w, headerC: c}
}

func (t *tableWriter) WriteHeader(names []string) error {
	t.header = cellsOf(names)
	return nil
}

func (t *tableWriter) Write(_ csv.Record, fields []string) error {
	t.rows = append(t.rows, cellsOf(fields))
	return nil
}

func (t *tableWriter) Flush() error {
	var widths []int
	measure := func(row []string) {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if n := runewidth.StringWidth(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}
	measure(t.header)
	for _, row := range t.rows {
		measure(row)
	}

	bw := bufio.NewWriter(t.w)
	if t.header != nil {
		if _, err := bw.WriteString(t.headerC.Sprint(formatRow(t.header, widths)) + "\n"); err != nil {
			return err
		}
	}
	for _, row := range t.rows {
		if _, err := bw.WriteString(formatRow(row, widths) + "\n"); err != nil {
			return err
		}
	}
	t.header, t.rows = nil, nil
	return bw.Flush()
}

func formatRow(row []string, widths []int) string {
	var b strings.Builder
	for i, cell := range row {
		if i > 0 {
			b.WriteString("  ")
		}
		if i == len(row)-1 {
			b.WriteString(cell)
			break
		}
		b.WriteString(runewidth.FillRight(cell, widths[i]))
	}
	return b.String()
}

var cellReplacer = strings.NewReplacer("\r\n", `\n`, "\n", `\n`, "\r", `\r`, "\t", `\t`)

func cellsOf(fields []string) []string {
	cells := make([]string, len(fields))
	for i, f := range fields {
		cells[i] = cellReplacer.Replace(f)
	}
	return cells
}

// jsonWriter emits one JSON value per line: an object keyed by header when
// the input has headers, otherwise an array.
type jsonWriter struct {
	enc    *json.Encoder
	header []string
}

func (j *jsonWriter) WriteHeader(names []string) error {
	j.header = names
	return nil
}

func (j *jsonWriter) Write(_ csv.Record, fields []string) error {
	if j.header == nil {
		return j.enc.Encode(fields)
	}
	return j.enc.Encode(keyed(j.header, fields))
}

func (j *jsonWriter) Flush() error { return nil }

// yamlWriter collects records and writes a single YAML sequence on Flush.
type yamlWriter struct {
	w      io.Writer
	header []string
	docs   []interface{}
}

func (y *yamlWriter) WriteHeader(names []string) error {
	y.header = names
	return nil
}

func (y *yamlWriter) Write(_ csv.Record, fields []string) error {
	if y.header == nil {
		y.docs = append(y.docs, fields)
		return nil
	}
	y.docs = append(y.docs, keyed(y.header, fields))
	return nil
}

func (y *yamlWriter) Flush() error {
	if len(y.docs) == 0 {
		return nil
	}
	enc := yaml.NewEncoder(y.w)
	enc.SetIndent(2)
	if err := enc.Encode(y.docs); err != nil {
		return err
	}
	y.docs = nil
	return enc.Close()
}

// keyed pairs names with fields in header order. Plain maps would come out
// with sorted keys.
func keyed(names, fields []string) orderedRow {
	row := make(orderedRow, 0, len(fields))
	for i, f := range fields {
		name := ""
		if i < len(names) {
			name = names[i]
		}
		row = append(row, [2]string{name, f})
	}
	return row
}

type orderedRow [][2]string

func (r orderedRow) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, kv := range r {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(kv[0])
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(kv[1])
		if err != nil {
			return nil, err
		}
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

func (r orderedRow) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, kv := range r {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: kv[0]},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: kv[1]},
		)
	}
	return node, nil
}

// rawWriter echoes each record's source text.
type rawWriter struct {
	w *bufio.Writer
}

func (r *rawWriter) WriteHeader([]string) error { return nil }

func (r *rawWriter) Write(rec csv.Record, _ []string) error {
	_, err := r.w.WriteString(rec.Raw() + "\n")
	return err
}

func (r *rawWriter) Flush() error { return r.w.Flush() }
