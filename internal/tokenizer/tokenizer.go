package tokenizer

import "strings"

// Record is one logical CSV line produced by the Tokenizer.
type Record struct {
	// Fields holds the finalized field values.
	Fields []string
	// Empty marks a blank line. It is distinct from a record holding one
	// empty field.
	Empty bool
	// Line is the 1-based physical line the record started on.
	Line int
	// Raw is the record's source text without its line terminator.
	Raw string
	// Absent counts trailing fields that were padded in without a value.
	Absent int
}

// Status tells the caller of Next what happened.
type Status uint8

const (
	// StatusRecord means a record was produced.
	StatusRecord Status = iota
	// StatusNeedMore means the buffered input is exhausted or a pending
	// decision needs the next character. Call Write or CloseInput, then
	// Next again.
	StatusNeedMore
	// StatusDone means the input is closed and fully consumed.
	StatusDone
)

// Tokenizer drives Step over chunked input. It is not safe for concurrent use.
type Tokenizer struct {
	layout   Layout
	trimming Trimming

	state State
	buf   []rune
	pos   int
	eof   bool
	done  bool

	field     []rune
	lookahead []rune
	quoted    bool
	comment   bool
	fields    []string
	raw       []rune
	width     int

	line      int
	startLine int
	lastCR    bool
}

// New creates a Tokenizer for the given dialect and trimming mode.
func New(layout Layout, trimming Trimming) *Tokenizer {
	return &Tokenizer{
		layout:    layout,
		trimming:  trimming,
		state:     StateBeginningOfLine,
		line:      1,
		startLine: 1,
	}
}

// Write appends a chunk of input. Chunks need not align with fields or
// records. Writing after CloseInput has no effect.
func (t *Tokenizer) Write(chunk []rune) {
	if t.eof {
		return
	}
	if t.pos > 0 {
		n := copy(t.buf, t.buf[t.pos:])
		t.buf = t.buf[:n]
		t.pos = 0
	}
	t.buf = append(t.buf, chunk...)
}

// CloseInput marks the end of input. Pending lookahead decisions resolve
// against end of input on the next call to Next.
func (t *Tokenizer) CloseInput() {
	t.eof = true
}

// Line returns the current 1-based physical line.
func (t *Tokenizer) Line() int {
	return t.line
}

// State returns the current automaton state.
func (t *Tokenizer) State() State {
	return t.state
}

// Next advances until a record is complete, more input is needed, or the
// input is done.
func (t *Tokenizer) Next() (Record, Status) {
	for !t.done {
		if t.pos >= len(t.buf) {
			if !t.eof {
				return Record{}, StatusNeedMore
			}
			t.done = true
			rec, ok := t.apply(Finish(t.state), 0)
			t.state = StateBeginningOfLine
			if ok {
				return rec, StatusRecord
			}
			break
		}

		s := t.state
		c := t.buf[t.pos]
		tr := Step(t.layout, s, Input{C: c, Peek: t.peek(), Buffered: len(t.lookahead)})
		if tr.NeedMore {
			return Record{}, StatusNeedMore
		}

		rec, ok := t.apply(tr.Actions(), c)
		t.advance(tr.Consume, s)
		t.state = tr.Next
		if s == StateEndOfLine {
			t.startLine = t.line
		}
		if ok {
			return rec, StatusRecord
		}
	}
	return Record{}, StatusDone
}

func (t *Tokenizer) peek() Peek {
	if t.pos+1 < len(t.buf) {
		return Peek{Char: t.buf[t.pos+1], Status: PeekAvailable}
	}
	if t.eof {
		return Peek{Status: PeekEOF}
	}
	return Peek{Status: PeekPending}
}

// advance consumes n characters, keeping the raw record text and the
// physical line count up to date.
func (t *Tokenizer) advance(n int, s State) {
	for i := 0; i < n; i++ {
		r := t.buf[t.pos]
		t.pos++

		if s != StateEndOfLine {
			t.raw = append(t.raw, r)
		}

		switch {
		case r == '\n' && r != t.layout.Delimiter:
			if !t.lastCR {
				t.line++
			}
			t.lastCR = false
		case r == '\r' && r != t.layout.Delimiter:
			t.line++
			t.lastCR = true
		default:
			t.lastCR = false
		}
	}
}

func (t *Tokenizer) apply(actions []Action, c rune) (Record, bool) {
	var (
		rec Record
		ok  bool
	)
	for _, a := range actions {
		switch a {
		case ActionAccumulate:
			t.field = append(t.field, c)
		case ActionBuffer:
			t.lookahead = append(t.lookahead, c)
		case ActionFlushLookahead:
			t.field = append(t.field, t.lookahead...)
			t.lookahead = t.lookahead[:0]
		case ActionClearLookahead:
			t.lookahead = t.lookahead[:0]
		case ActionMarkQuoted:
			t.quoted = true
		case ActionMarkComment:
			t.comment = true
		case ActionPushField:
			t.fields = append(t.fields, t.finalizeField())
		case ActionEndRecord:
			rec, ok = t.endRecord()
		}
	}
	return rec, ok
}

func (t *Tokenizer) finalizeField() string {
	s := string(t.field)
	if t.trimming.Applies(t.quoted) {
		s = strings.TrimSpace(s)
	}
	t.field = t.field[:0]
	t.lookahead = t.lookahead[:0]
	t.quoted = false
	return s
}

func (t *Tokenizer) endRecord() (Record, bool) {
	if t.comment {
		t.resetLine()
		return Record{}, false
	}

	last := t.finalizeField()
	rec := Record{Line: t.startLine, Raw: string(t.raw)}
	if len(t.fields) == 0 && last == "" {
		rec.Empty = true
	} else {
		rec.Fields = append(t.fields, last)
		t.width = len(rec.Fields)
	}

	// The record owns its slice from here on.
	t.fields = nil
	t.resetLine()
	return rec, true
}

func (t *Tokenizer) resetLine() {
	t.field = t.field[:0]
	t.lookahead = t.lookahead[:0]
	t.quoted = false
	t.comment = false
	t.raw = t.raw[:0]
	if t.fields == nil && t.width > 0 {
		t.fields = make([]string, 0, t.width)
	}
	t.fields = t.fields[:0]
}

// Split tokenizes a complete input in one pass.
func Split(input string, layout Layout, trimming Trimming) []Record {
	t := New(layout, trimming)
	t.Write([]rune(input))
	t.CloseInput()

	var records []Record
	for {
		rec, status := t.Next()
		if status != StatusRecord {
			return records
		}
		records = append(records, rec)
	}
}
