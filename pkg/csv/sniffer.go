package csv

import (
	"strings"
	"unicode"

	"github.com/coregx/coregex"

	"github.com/shapestone/shape-csvstream/internal/tokenizer"
)

// Sniffer detects the CSV dialect (delimiter, quote, headers) of a sample.
type Sniffer struct {
	sample    string
	delimiter rune
	quote     rune
	hasHeader bool
	analyzed  bool
}

// NewSniffer creates a new Sniffer with a sample of CSV data.
// For best results, provide at least 2-3 lines of data.
func NewSniffer(sample string) *Sniffer {
	return &Sniffer{sample: sample}
}

func (s *Sniffer) analyze() {
	if s.analyzed {
		return
	}
	s.quote = s.detectQuote()
	s.delimiter = s.detectDelimiter()
	s.hasHeader = s.detectHeader()
	s.analyzed = true
}

// DetectDelimiter returns the detected field delimiter.
// Common delimiters checked: comma, tab, semicolon, pipe.
func (s *Sniffer) DetectDelimiter() rune {
	s.analyze()
	return s.delimiter
}

// DetectQuote returns the detected quote character: a double quote unless
// the sample opens fields with single quotes only.
func (s *Sniffer) DetectQuote() rune {
	s.analyze()
	return s.quote
}

// HasHeader returns true if the first row appears to be a header.
func (s *Sniffer) HasHeader() bool {
	s.analyze()
	return s.hasHeader
}

// Layout returns DefaultLayout with the detected delimiter and quote. The
// escape follows the quote.
func (s *Sniffer) Layout() Layout {
	s.analyze()
	layout := DefaultLayout()
	layout.Delimiter = s.delimiter
	layout.Quote = s.quote
	layout.Escape = s.quote
	return layout
}

// Behavior returns DefaultBehavior with HasHeaders set from the sample.
func (s *Sniffer) Behavior() Behavior {
	s.analyze()
	b := DefaultBehavior()
	b.HasHeaders = s.hasHeader
	return b
}

func (s *Sniffer) layoutFor(delim rune) Layout {
	layout := DefaultLayout()
	layout.Delimiter = delim
	layout.Quote = s.quote
	layout.Escape = s.quote
	return layout
}

// rows tokenizes the sample with the given delimiter, dropping blank lines.
func (s *Sniffer) rows(delim rune) [][]string {
	var rows [][]string
	for _, rec := range tokenizer.Split(s.sample, s.layoutFor(delim), TrimUnquotedOnly) {
		if !rec.Empty {
			rows = append(rows, rec.Fields)
		}
	}
	return rows
}

func (s *Sniffer) detectQuote() rune {
	double, single := 0, 0
	for _, line := range strings.Split(s.sample, "\n") {
		for _, cell := range strings.FieldsFunc(line, isCandidateDelimiter) {
			cell = strings.TrimSpace(cell)
			switch {
			case strings.HasPrefix(cell, `"`):
				double++
			case strings.HasPrefix(cell, "'"):
				single++
			}
		}
	}
	if single > double {
		return '\''
	}
	return '"'
}

func isCandidateDelimiter(r rune) bool {
	return r == ',' || r == '\t' || r == ';' || r == '|'
}

// detectDelimiter scores each candidate by the number of delimiters on the
// first row, with a bonus when every row agrees.
func (s *Sniffer) detectDelimiter() rune {
	if s.sample == "" {
		return ','
	}

	best, bestScore := ',', 0
	for _, delim := range []rune{',', '\t', ';', '|'} {
		rows := s.rows(delim)
		if len(rows) == 0 || len(rows[0]) < 2 {
			continue
		}

		count := len(rows[0]) - 1
		score := count * 10
		for _, row := range rows[1:] {
			if len(row)-1 != count {
				score = count
				break
			}
		}
		if score > bestScore {
			best, bestScore = delim, score
		}
	}
	return best
}

// detectHeader uses heuristics to determine if first row is a header.
func (s *Sniffer) detectHeader() bool {
	rows := s.rows(s.delimiter)
	if len(rows) < 2 {
		return false
	}

	// Heuristics:
	// 1. Headers are typically non-numeric
	// 2. Headers often contain underscores or are camelCase
	// 3. Headers don't usually contain special characters like @
	headerScore, dataScore := 0, 0
	for _, field := range rows[0] {
		if isLikelyHeader(field) {
			headerScore++
		}
		if isLikelyData(field) {
			dataScore++
		}
	}
	return headerScore > dataScore
}

func mustCompile(pattern string) *coregex.Regexp {
	re, err := coregex.Compile(pattern)
	if err != nil {
		panic(err)
	}
	return re
}

var (
	headerPatterns = []*coregex.Regexp{
		mustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`),      // snake_case or identifier
		mustCompile(`^[a-zA-Z]+[A-Z][a-zA-Z]*$`),     // camelCase
		mustCompile(`^[A-Z][a-z]+([ ][A-Z][a-z]+)*$`), // Title Case
	}
	datePatterns = []*coregex.Regexp{
		mustCompile(`^\d{4}-\d{2}-\d{2}$`),
		mustCompile(`^\d{2}/\d{2}/\d{4}$`),
	}
)

// isLikelyHeader checks if a field looks like a header name.
func isLikelyHeader(s string) bool {
	if s == "" || isNumeric(s) {
		return false
	}
	for _, pattern := range headerPatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// isLikelyData checks if a field looks like data rather than a header.
func isLikelyData(s string) bool {
	if s == "" {
		return false
	}
	if isNumeric(s) || strings.Contains(s, "@") {
		return true
	}
	for _, pattern := range datePatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// isNumeric checks if a string represents a number.
func isNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if s[0] == '-' {
		s = s[1:]
	}

	hasDot := false
	for _, ch := range s {
		if ch == '.' {
			if hasDot {
				return false
			}
			hasDot = true
		} else if !unicode.IsDigit(ch) {
			return false
		}
	}
	return len(s) > 0
}

// ColumnSelector specifies which columns to include.
type ColumnSelector struct {
	// UseCols selects columns by name.
	UseCols []string
	// UseColIndexes selects columns by index (0-based).
	UseColIndexes []int
}

// ShouldInclude checks if a column should be included.
func (c *ColumnSelector) ShouldInclude(name string, index int) bool {
	if len(c.UseCols) == 0 && len(c.UseColIndexes) == 0 {
		return true
	}
	for _, col := range c.UseCols {
		if col == name {
			return true
		}
	}
	for _, idx := range c.UseColIndexes {
		if idx == index {
			return true
		}
	}
	return false
}

// Select returns the included fields of rec in column order. names may be
// nil when the input has no headers.
func (c *ColumnSelector) Select(rec Record, names []string) []string {
	out := make([]string, 0, rec.Len())
	for i, f := range rec.fields {
		name := ""
		if i < len(names) {
			name = names[i]
		}
		if c.ShouldInclude(name, i) {
			out = append(out, f)
		}
	}
	return out
}

// SelectNames returns the included column names in order.
func (c *ColumnSelector) SelectNames(names []string) []string {
	out := make([]string, 0, len(names))
	for i, name := range names {
		if c.ShouldInclude(name, i) {
			out = append(out, name)
		}
	}
	return out
}
