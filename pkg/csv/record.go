package csv

// Record represents a single row read from CSV input.
// It provides access to field values by index or by header name.
//
// A Record for a blank line (only yielded when SkipEmptyLines is off)
// reports IsEmpty and has no fields. That differs from a record holding one
// empty field.
type Record struct {
	fields  []string
	absent  int
	empty   bool
	line    int
	raw     string
	headers *HeaderIndex
}

// Get gets the field value at the specified index.
// Returns ("", false) if the index is out of bounds or the field is absent.
func (r Record) Get(index int) (string, bool) {
	if index < 0 || index >= len(r.fields) || r.IsNull(index) {
		return "", false
	}
	return r.fields[index], true
}

// GetByName gets the field value by header name.
// Returns ("", false) if the name is unknown, no headers are set, or the
// field is missing from this record.
func (r Record) GetByName(name string) (string, bool) {
	i, ok := r.headers.Index(name)
	if !ok {
		return "", false
	}
	return r.Get(i)
}

// IsNull reports whether the field at index was padded in as an absent
// value by MissingFieldReplaceByNull.
func (r Record) IsNull(index int) bool {
	return r.absent > 0 && index >= len(r.fields)-r.absent && index < len(r.fields)
}

// IsEmpty reports whether the record stands for a blank line.
func (r Record) IsEmpty() bool {
	return r.empty
}

// Fields returns a copy of all field values. Absent fields read as "".
func (r Record) Fields() []string {
	fields := make([]string, len(r.fields))
	copy(fields, r.fields)
	return fields
}

// Len returns the number of fields in the record.
func (r Record) Len() int {
	return len(r.fields)
}

// Line returns the 1-based physical line the record started on.
func (r Record) Line() int {
	return r.line
}

// Raw returns the record's source text without its line terminator.
func (r Record) Raw() string {
	return r.raw
}
