// Package csv reads CSV records from streaming input.
//
// Records are produced lazily by a character-level tokenizer that keeps its
// state across input chunks, so a Reader never needs more than one record
// in memory. The dialect (quote, delimiter, escape and comment characters)
// and the reading policy (trimming, missing-field handling, blank lines,
// headers) are configured through ReaderOptions.
//
// # Reading APIs
//
//   - Reader - pull records one at a time with Read
//   - Scanner - bufio.Scanner style loop over a Reader
//   - ReadAll, ReadDocument, ParseDocument - materialize every record
//   - Parse, ParseReader - build a shape-core AST of the input
//
// # Thread Safety
//
// A Reader or Scanner must be used from one goroutine. The package-level
// functions are safe for concurrent use; each call creates its own Reader.
//
// # Example usage with Reader:
//
//	opts := csv.DefaultReaderOptions()
//	opts.HasHeaders = true
//	opts.MissingField = csv.MissingFieldReplaceByEmpty
//
//	r := csv.NewReader(file, opts)
//	defer r.Close()
//	for {
//	    rec, err := r.Read()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    name, _ := rec.GetByName("name")
//	    fmt.Println(rec.Line(), name)
//	}
package csv

import (
	"errors"
	"io"

	"github.com/shapestone/shape-core/pkg/ast"
	shapetokenizer "github.com/shapestone/shape-core/pkg/tokenizer"

	"github.com/shapestone/shape-csvstream/internal/tokenizer"
)

// Parse parses CSV into an AST from a string using DefaultReaderOptions.
//
// Returns an ast.ArrayDataNode representing the parsed CSV:
//   - *ast.ArrayDataNode for the file (array of records)
//   - Each record is an *ast.ArrayDataNode of fields
//   - Each field is an *ast.LiteralNode containing a string value
//
// Example:
//
//	node, err := csv.Parse("name,age\nAlice,30\nBob,25")
//	arrayNode := node.(*ast.ArrayDataNode)
//	records := arrayNode.Elements()
//	// records[0] is the header row
//	// records[1] is the first data row
func Parse(input string) (ast.SchemaNode, error) {
	doc, err := ParseDocument(input)
	if err != nil {
		return nil, err
	}
	return doc.ToAST(), nil
}

// ParseReader parses CSV into an AST from an io.Reader using
// DefaultReaderOptions.
func ParseReader(reader io.Reader) (ast.SchemaNode, error) {
	return ParseReaderWithOptions(reader, DefaultReaderOptions())
}

// ParseReaderWithOptions parses CSV into an AST from an io.Reader with
// custom options. With HasHeaders set, the resolved header names are the
// first element.
func ParseReaderWithOptions(reader io.Reader, opts ReaderOptions) (ast.SchemaNode, error) {
	doc, err := ReadDocument(reader, opts)
	if err != nil {
		return nil, err
	}
	return doc.ToAST(), nil
}

// Format returns the format identifier for this parser.
func Format() string {
	return "CSV"
}

// Validate checks that every record of input has the width of the first
// one, using DefaultReaderOptions. It returns the first *MissingFieldError.
//
//	if err := csv.Validate(input); err != nil {
//	    fmt.Println("Invalid CSV:", err)
//	}
func Validate(input string) error {
	return validate(NewStreamReader(shapetokenizer.NewStream(input), DefaultReaderOptions()))
}

// ValidateReader is Validate over an io.Reader with custom options. The
// MissingField action is forced to MissingFieldParseError.
func ValidateReader(reader io.Reader, opts ReaderOptions) error {
	opts.MissingField = MissingFieldParseError
	return validate(NewReader(reader, opts))
}

func validate(rd *Reader) error {
	for {
		_, err := rd.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// SplitLine splits a single line into fields. Text after the first record
// is ignored. A blank or comment line yields nil.
//
//	fields := csv.SplitLine(`a, "b,c" ,d`, csv.DefaultLayout(), csv.DefaultBehavior())
//	// []string{"a", "b,c", "d"}
func SplitLine(line string, layout Layout, behavior Behavior) []string {
	records := tokenizer.Split(line, layout, behavior.Trimming)
	if len(records) == 0 {
		return nil
	}
	return records[0].Fields
}
