package csv

import (
	"errors"
	"io"
)

// Scanner provides a bufio.Scanner style loop over CSV records.
// It is memory-efficient for large CSV files as records are tokenized
// incrementally as Scan is called.
//
// Example usage:
//
//	file, _ := os.Open("data.csv")
//	defer file.Close()
//
//	scanner := csv.NewScanner(file).SetHasHeaders(true)
//	for scanner.Scan() {
//	    record := scanner.Record()
//	    name, _ := record.GetByName("name")
//	    fmt.Println(name)
//	}
//	if err := scanner.Err(); err != nil {
//	    // handle error
//	}
//
// Unlike Reader, Scan stops at the first error, including a rejected
// record under MissingFieldParseError.
type Scanner struct {
	input  io.Reader
	opts   ReaderOptions
	reader *Reader
	record Record
	err    error
	done   bool
}

// NewScanner creates a new Scanner that reads CSV from the given io.Reader
// with DefaultReaderOptions. Use SetHasHeaders(true) to treat the first
// row as headers.
func NewScanner(input io.Reader) *Scanner {
	return NewScannerWithOptions(input, DefaultReaderOptions())
}

// NewScannerWithOptions creates a Scanner with custom options.
func NewScannerWithOptions(input io.Reader, opts ReaderOptions) *Scanner {
	return &Scanner{input: input, opts: opts}
}

// SetHasHeaders sets whether the first row should be treated as headers.
// It has no effect once scanning started.
// Returns the Scanner for method chaining.
func (s *Scanner) SetHasHeaders(hasHeaders bool) *Scanner {
	if s.reader == nil {
		s.opts.HasHeaders = hasHeaders
	}
	return s
}

// Scan advances the scanner to the next record.
// It returns false when there are no more records or an error occurs.
// After Scan returns false, the Err method will return any error that occurred.
func (s *Scanner) Scan() bool {
	if s.done {
		return false
	}
	if s.reader == nil {
		s.reader = NewReader(s.input, s.opts)
	}

	rec, err := s.reader.Read()
	if err != nil {
		s.done = true
		s.record = Record{}
		if !errors.Is(err, io.EOF) {
			s.err = err
		}
		return false
	}
	s.record = rec
	return true
}

// Record returns the current record.
// This should only be called after Scan() returns true.
func (s *Scanner) Record() Record {
	return s.record
}

// Err returns the error, if any, that was encountered during scanning.
// It returns nil if no error occurred or at EOF.
func (s *Scanner) Err() error {
	return s.err
}

// Headers returns the column headers if SetHasHeaders(true) was called.
// This is available after the first call to Scan().
func (s *Scanner) Headers() []string {
	if s.reader == nil {
		return nil
	}
	return s.reader.headers.Names()
}

// Line returns the current physical line of the input.
func (s *Scanner) Line() int {
	if s.reader == nil {
		return 1
	}
	return s.reader.Line()
}
