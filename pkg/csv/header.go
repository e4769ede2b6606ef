package csv

import (
	"strconv"
	"strings"
	"unicode"
)

// HeaderConverter is a function that transforms header names.
type HeaderConverter func(string) string

// LowercaseHeader converts headers to lowercase.
func LowercaseHeader(s string) string {
	return strings.ToLower(s)
}

// UppercaseHeader converts headers to uppercase.
func UppercaseHeader(s string) string {
	return strings.ToUpper(s)
}

// SnakeCaseHeader converts headers to snake_case.
func SnakeCaseHeader(s string) string {
	var result strings.Builder
	prevWasSep := false
	for i, ch := range s {
		if ch == ' ' || ch == '-' {
			if result.Len() > 0 && !prevWasSep {
				result.WriteRune('_')
			}
			prevWasSep = true
			continue
		}
		if unicode.IsUpper(ch) && i > 0 && !prevWasSep {
			result.WriteRune('_')
		}
		result.WriteRune(unicode.ToLower(ch))
		prevWasSep = false
	}
	return result.String()
}

// HeaderIndex maps column names to zero-based field indexes.
// It is built once from the header record and never changes.
type HeaderIndex struct {
	names []string
	index map[string]int
}

// newHeaderIndex resolves header cells into names. Blank cells are named
// prefix followed by their index. The converter, if any, runs on the
// supplied names only. A repeated name keeps its first index.
func newHeaderIndex(cells []string, prefix string, convert HeaderConverter) *HeaderIndex {
	h := &HeaderIndex{
		names: make([]string, len(cells)),
		index: make(map[string]int, len(cells)),
	}
	for i, cell := range cells {
		name := cell
		if convert != nil && name != "" {
			name = convert(name)
		}
		if name == "" {
			name = prefix + strconv.Itoa(i)
		}
		h.names[i] = name
		if _, dup := h.index[name]; !dup {
			h.index[name] = i
		}
	}
	return h
}

// Names returns the resolved column names in order.
func (h *HeaderIndex) Names() []string {
	if h == nil {
		return nil
	}
	names := make([]string, len(h.names))
	copy(names, h.names)
	return names
}

// Index returns the field index for name.
func (h *HeaderIndex) Index(name string) (int, bool) {
	if h == nil {
		return 0, false
	}
	i, ok := h.index[name]
	return i, ok
}

// Len returns the number of columns.
func (h *HeaderIndex) Len() int {
	if h == nil {
		return 0
	}
	return len(h.names)
}
