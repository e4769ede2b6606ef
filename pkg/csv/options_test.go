package csv_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/shapestone/shape-csvstream/pkg/csv"
)

func TestDefaultReaderOptions(t *testing.T) {
	opts := csv.DefaultReaderOptions()

	if opts.Quote != '"' {
		t.Errorf("DefaultReaderOptions().Quote = %q, want '\"'", opts.Quote)
	}
	if opts.Delimiter != ',' {
		t.Errorf("DefaultReaderOptions().Delimiter = %q, want ','", opts.Delimiter)
	}
	if opts.Escape != '"' {
		t.Errorf("DefaultReaderOptions().Escape = %q, want '\"'", opts.Escape)
	}
	if opts.Comment != '#' {
		t.Errorf("DefaultReaderOptions().Comment = %q, want '#'", opts.Comment)
	}
	if opts.Trimming != csv.TrimUnquotedOnly {
		t.Errorf("DefaultReaderOptions().Trimming = %v, want unquoted", opts.Trimming)
	}
	if opts.MissingField != csv.MissingFieldParseError {
		t.Errorf("DefaultReaderOptions().MissingField = %v, want error", opts.MissingField)
	}
	if !opts.SkipEmptyLines {
		t.Error("DefaultReaderOptions().SkipEmptyLines should be true")
	}
	if opts.HasHeaders {
		t.Error("DefaultReaderOptions().HasHeaders should be false")
	}
	if opts.DefaultHeaderPrefix != "Column" {
		t.Errorf("DefaultReaderOptions().DefaultHeaderPrefix = %q, want %q", opts.DefaultHeaderPrefix, "Column")
	}
	if opts.BufferSize != csv.DefaultBufferSize {
		t.Errorf("DefaultReaderOptions().BufferSize = %d, want %d", opts.BufferSize, csv.DefaultBufferSize)
	}
	if err := opts.Validate(); err != nil {
		t.Errorf("DefaultReaderOptions().Validate() = %v", err)
	}
}

func TestReaderOptions_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*csv.ReaderOptions)
		field  string
	}{
		{"zero delimiter", func(o *csv.ReaderOptions) { o.Delimiter = 0 }, "Delimiter"},
		{"newline delimiter", func(o *csv.ReaderOptions) { o.Delimiter = '\n' }, "Delimiter"},
		{"replacement char delimiter", func(o *csv.ReaderOptions) { o.Delimiter = '\uFFFD' }, "Delimiter"},
		{"quote equals delimiter", func(o *csv.ReaderOptions) { o.Quote = ',' }, "Quote"},
		{"escape equals delimiter", func(o *csv.ReaderOptions) { o.Escape = ',' }, "Escape"},
		{"comment equals delimiter", func(o *csv.ReaderOptions) { o.Comment = ',' }, "Comment"},
		{"comment equals quote", func(o *csv.ReaderOptions) { o.Comment = '"' }, "Comment"},
		{"unknown trimming", func(o *csv.ReaderOptions) { o.Trimming = 9 }, "Trimming"},
		{"unknown action", func(o *csv.ReaderOptions) { o.MissingField = -1 }, "MissingField"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := csv.DefaultReaderOptions()
			tt.modify(&opts)

			err := opts.Validate()
			var oe *csv.OptionsError
			if !errors.As(err, &oe) {
				t.Fatalf("Validate() = %v, want *OptionsError", err)
			}
			if oe.Field != tt.field {
				t.Errorf("OptionsError.Field = %q, want %q", oe.Field, tt.field)
			}
			if !strings.HasPrefix(err.Error(), "csv: invalid "+tt.field+": ") {
				t.Errorf("Error() = %q", err.Error())
			}
		})
	}
}

func TestReaderOptions_ValidateAccepts(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*csv.ReaderOptions)
	}{
		{"carriage return delimiter", func(o *csv.ReaderOptions) { o.Delimiter = '\r' }},
		{"tab delimiter", func(o *csv.ReaderOptions) { o.Delimiter = '\t' }},
		{"no quoting", func(o *csv.ReaderOptions) { o.Quote = 0; o.Escape = 0 }},
		{"backslash escape", func(o *csv.ReaderOptions) { o.Escape = '\\' }},
		{"no comments", func(o *csv.ReaderOptions) { o.Comment = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := csv.DefaultReaderOptions()
			tt.modify(&opts)
			if err := opts.Validate(); err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestParseTrimming(t *testing.T) {
	for _, want := range []csv.Trimming{csv.TrimNone, csv.TrimUnquotedOnly, csv.TrimQuotedOnly, csv.TrimAll} {
		got, err := csv.ParseTrimming(want.String())
		if err != nil || got != want {
			t.Errorf("ParseTrimming(%q) = (%v, %v), want %v", want.String(), got, err, want)
		}
	}
	if _, err := csv.ParseTrimming("both"); err == nil {
		t.Error("ParseTrimming(\"both\") error = nil, want error")
	}
}

func TestParseMissingFieldAction(t *testing.T) {
	for _, want := range []csv.MissingFieldAction{csv.MissingFieldParseError, csv.MissingFieldReplaceByEmpty, csv.MissingFieldReplaceByNull} {
		got, err := csv.ParseMissingFieldAction(want.String())
		if err != nil || got != want {
			t.Errorf("ParseMissingFieldAction(%q) = (%v, %v), want %v", want.String(), got, err, want)
		}
	}
	if _, err := csv.ParseMissingFieldAction("skip"); err == nil {
		t.Error("ParseMissingFieldAction(\"skip\") error = nil, want error")
	}
}

func TestReader_InvalidOptions(t *testing.T) {
	opts := csv.DefaultReaderOptions()
	opts.Delimiter = 0

	r := csv.NewReader(strings.NewReader("a,b"), opts)
	_, err := r.Read()
	var oe *csv.OptionsError
	if !errors.As(err, &oe) {
		t.Fatalf("Read() error = %v, want *OptionsError", err)
	}
	if _, err := r.Read(); !errors.As(err, &oe) {
		t.Errorf("second Read() error = %v, want the same *OptionsError", err)
	}
}
