package csv

import (
	"fmt"
	"unicode/utf8"

	"github.com/go-logr/logr"
	"golang.org/x/text/encoding"

	"github.com/shapestone/shape-csvstream/internal/tokenizer"
)

// Layout is the CSV dialect: quote, delimiter, escape and comment runes.
// A zero Comment disables comment lines and a zero Escape disables the
// escape rule. Escape may equal Quote.
type Layout = tokenizer.Layout

// DefaultLayout returns the RFC 4180 style dialect with '#' comments.
func DefaultLayout() Layout {
	return tokenizer.DefaultLayout()
}

// Trimming selects which fields have surrounding whitespace removed.
type Trimming = tokenizer.Trimming

const (
	TrimNone         = tokenizer.TrimNone
	TrimUnquotedOnly = tokenizer.TrimUnquotedOnly
	TrimQuotedOnly   = tokenizer.TrimQuotedOnly
	TrimAll          = tokenizer.TrimAll
)

// ParseTrimming maps "none", "unquoted", "quoted" or "all" to a Trimming.
func ParseTrimming(s string) (Trimming, error) {
	for _, t := range []Trimming{TrimNone, TrimUnquotedOnly, TrimQuotedOnly, TrimAll} {
		if t.String() == s {
			return t, nil
		}
	}
	return TrimNone, &OptionsError{Field: "Trimming", Message: fmt.Sprintf("unknown mode %q", s)}
}

// MissingFieldAction specifies what happens to a record that has fewer
// fields than the established width.
type MissingFieldAction int

const (
	// MissingFieldParseError rejects the record with a *MissingFieldError (default).
	MissingFieldParseError MissingFieldAction = iota
	// MissingFieldReplaceByEmpty pads the record with empty strings.
	MissingFieldReplaceByEmpty
	// MissingFieldReplaceByNull pads the record with absent values.
	MissingFieldReplaceByNull
)

// String returns the string representation of MissingFieldAction.
func (a MissingFieldAction) String() string {
	switch a {
	case MissingFieldParseError:
		return "error"
	case MissingFieldReplaceByEmpty:
		return "empty"
	case MissingFieldReplaceByNull:
		return "null"
	default:
		return fmt.Sprintf("MissingFieldAction(%d)", a)
	}
}

// ParseMissingFieldAction maps "error", "empty" or "null" to an action.
func ParseMissingFieldAction(s string) (MissingFieldAction, error) {
	for _, a := range []MissingFieldAction{MissingFieldParseError, MissingFieldReplaceByEmpty, MissingFieldReplaceByNull} {
		if a.String() == s {
			return a, nil
		}
	}
	return MissingFieldParseError, &OptionsError{Field: "MissingField", Message: fmt.Sprintf("unknown action %q", s)}
}

// Behavior is the reader policy layered over the dialect.
type Behavior struct {
	// Trimming selects which fields are whitespace-trimmed.
	// Default: TrimUnquotedOnly
	Trimming Trimming

	// MissingField decides how narrow records are reconciled.
	// Default: MissingFieldParseError
	MissingField MissingFieldAction

	// SkipEmptyLines drops blank lines instead of yielding empty records.
	// Default: true
	SkipEmptyLines bool

	// HasHeaders treats the first non-empty record as column names.
	// Default: false
	HasHeaders bool

	// DefaultHeaderPrefix names blank header cells, followed by the
	// zero-based column index.
	// Default: "Column"
	DefaultHeaderPrefix string
}

// DefaultBehavior returns the default reader policy.
func DefaultBehavior() Behavior {
	return Behavior{
		Trimming:            TrimUnquotedOnly,
		MissingField:        MissingFieldParseError,
		SkipEmptyLines:      true,
		HasHeaders:          false,
		DefaultHeaderPrefix: "Column",
	}
}

// DefaultBufferSize is the number of runes a Reader pulls from its source
// per refill.
const DefaultBufferSize = 4096

// ReaderOptions configures a Reader.
type ReaderOptions struct {
	Layout
	Behavior

	// HeaderConverter, if set, rewrites header names before they are indexed.
	HeaderConverter HeaderConverter

	// Encoding, if set, decodes the input bytes to UTF-8.
	// Default: nil (input is UTF-8)
	Encoding encoding.Encoding

	// BufferSize is the refill size in runes. Values <= 0 use DefaultBufferSize.
	BufferSize int

	// Logger receives V(1) diagnostics.
	// Default: logr.Discard()
	Logger logr.Logger
}

// DefaultReaderOptions returns the default reader configuration.
func DefaultReaderOptions() ReaderOptions {
	return ReaderOptions{
		Layout:     DefaultLayout(),
		Behavior:   DefaultBehavior(),
		BufferSize: DefaultBufferSize,
		Logger:     logr.Discard(),
	}
}

// validDelim reports whether r is a valid field delimiter.
// A '\r' delimiter is allowed; only '\n' is reserved for line ends.
func validDelim(r rune) bool {
	return r != 0 && r != '\n' && utf8.ValidRune(r) && r != utf8.RuneError
}

// Validate checks if the options are valid.
func (o ReaderOptions) Validate() error {
	if !validDelim(o.Delimiter) {
		return &OptionsError{Field: "Delimiter", Message: "invalid delimiter"}
	}
	if o.Quote != 0 && !validDelim(o.Quote) {
		return &OptionsError{Field: "Quote", Message: "invalid quote character"}
	}
	if o.Quote == o.Delimiter {
		return &OptionsError{Field: "Quote", Message: "quote character same as delimiter"}
	}
	if o.Escape != 0 && o.Escape == o.Delimiter {
		return &OptionsError{Field: "Escape", Message: "escape character same as delimiter"}
	}
	if o.Comment != 0 {
		if !validDelim(o.Comment) {
			return &OptionsError{Field: "Comment", Message: "invalid comment character"}
		}
		if o.Comment == o.Delimiter {
			return &OptionsError{Field: "Comment", Message: "comment character same as delimiter"}
		}
		if o.Comment == o.Quote {
			return &OptionsError{Field: "Comment", Message: "comment character same as quote"}
		}
	}
	if o.Trimming > TrimAll {
		return &OptionsError{Field: "Trimming", Message: fmt.Sprintf("unknown mode %d", o.Trimming)}
	}
	if o.MissingField < MissingFieldParseError || o.MissingField > MissingFieldReplaceByNull {
		return &OptionsError{Field: "MissingField", Message: fmt.Sprintf("unknown action %d", o.MissingField)}
	}
	return nil
}

// OptionsError represents an invalid option configuration.
type OptionsError struct {
	Field   string
	Message string
}

func (e *OptionsError) Error() string {
	return "csv: invalid " + e.Field + ": " + e.Message
}
