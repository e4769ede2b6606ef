package csv

import "github.com/shapestone/shape-csvstream/internal/tokenizer"

// reconciler enforces the record width established by the first non-empty
// record of a session.
type reconciler struct {
	action      MissingFieldAction
	width       int
	established bool
}

// reconcile pads or rejects rec in place. Empty records and records at
// least as wide as the established width pass through unchanged. The
// returned int is the number of fields padded in.
func (r *reconciler) reconcile(rec *tokenizer.Record) (int, error) {
	if rec.Empty {
		return 0, nil
	}
	if !r.established {
		r.width = len(rec.Fields)
		r.established = true
		return 0, nil
	}

	got := len(rec.Fields)
	missing := r.width - got
	if missing <= 0 {
		return 0, nil
	}

	switch r.action {
	case MissingFieldReplaceByEmpty:
		rec.Fields = pad(rec.Fields, missing)
	case MissingFieldReplaceByNull:
		rec.Fields = pad(rec.Fields, missing)
		rec.Absent = missing
	default:
		return 0, &MissingFieldError{
			Line:     rec.Line,
			Raw:      rec.Raw,
			Index:    got,
			Expected: r.width,
			Got:      got,
		}
	}
	return missing, nil
}

func pad(fields []string, n int) []string {
	for i := 0; i < n; i++ {
		fields = append(fields, "")
	}
	return fields
}
