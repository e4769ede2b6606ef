// Package tokenizer implements the character-level CSV automaton.
//
// The automaton is split in two layers:
//
//   - Step, a pure transition function (state, char, lookahead) -> transition,
//     which owns every lexical decision and can be tested without any input.
//   - Tokenizer, a driver that feeds Step from arbitrarily chunked input,
//     applies the returned actions and assembles records.
//
// When a decision depends on a character that has not been delivered yet,
// Step reports NeedMore instead of guessing. The driver then stops without
// consuming anything and retries the same decision once more input (or the
// end of input) arrives, which keeps the output independent of chunking.
package tokenizer

import "fmt"

// State is the lexical mode of the automaton.
type State uint8

const (
	StateBeginningOfLine State = iota
	StateComment
	StateOutsideField
	StateInsideField
	StateInsideQuotedField
	StateEscaped
	StateAfterSecondQuote
	StateEndOfLine
)

var stateNames = [...]string{
	StateBeginningOfLine:   "BeginningOfLine",
	StateComment:           "Comment",
	StateOutsideField:      "OutsideField",
	StateInsideField:       "InsideField",
	StateInsideQuotedField: "InsideQuotedField",
	StateEscaped:           "Escaped",
	StateAfterSecondQuote:  "AfterSecondQuote",
	StateEndOfLine:         "EndOfLine",
}

// String returns the state name.
func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", s)
}

// Action is a side effect the driver performs for a transition.
type Action uint8

const (
	ActionNone           Action = iota
	ActionAccumulate            // Append the current char to the field
	ActionBuffer                // Append the current char to the lookahead buffer
	ActionFlushLookahead        // Move the lookahead buffer into the field
	ActionClearLookahead        // Drop the lookahead buffer
	ActionMarkQuoted            // Flag the field as quote-opened
	ActionPushField             // Finalize the field and append it to the record
	ActionEndRecord             // Finalize the record (or the empty-line marker)
	ActionDiscard               // Drop the current char
	ActionMarkComment           // Flag the line as a comment
)

var actionNames = [...]string{
	ActionNone:           "None",
	ActionAccumulate:     "Accumulate",
	ActionBuffer:         "Buffer",
	ActionFlushLookahead: "FlushLookahead",
	ActionClearLookahead: "ClearLookahead",
	ActionMarkQuoted:     "MarkQuoted",
	ActionPushField:      "PushField",
	ActionEndRecord:      "EndRecord",
	ActionDiscard:        "Discard",
	ActionMarkComment:    "MarkComment",
}

// String returns the action name.
func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return fmt.Sprintf("Action(%d)", a)
}

// Trimming selects which fields get surrounding whitespace removed.
type Trimming uint8

const (
	// TrimNone never trims.
	TrimNone Trimming = iota
	// TrimUnquotedOnly trims fields that were not quote-opened (default).
	TrimUnquotedOnly
	// TrimQuotedOnly trims fields that were quote-opened.
	TrimQuotedOnly
	// TrimAll trims every field.
	TrimAll
)

// String returns the trimming mode name.
func (t Trimming) String() string {
	switch t {
	case TrimNone:
		return "none"
	case TrimUnquotedOnly:
		return "unquoted"
	case TrimQuotedOnly:
		return "quoted"
	case TrimAll:
		return "all"
	default:
		return fmt.Sprintf("Trimming(%d)", t)
	}
}

// Applies reports whether a field with the given quoting gets trimmed.
func (t Trimming) Applies(quoted bool) bool {
	switch t {
	case TrimAll:
		return true
	case TrimQuotedOnly:
		return quoted
	case TrimUnquotedOnly:
		return !quoted
	default:
		return false
	}
}

// Layout holds the dialect-defining characters.
// A zero Escape disables escaping; a zero Comment disables comment lines.
type Layout struct {
	Quote     rune
	Delimiter rune
	Escape    rune
	Comment   rune
}

// DefaultLayout returns the default dialect: double quote for quoting and
// escaping, comma delimiter, and '#' comment lines.
func DefaultLayout() Layout {
	return Layout{
		Quote:     '"',
		Delimiter: ',',
		Escape:    '"',
		Comment:   '#',
	}
}

func (l Layout) isQuote(c rune) bool {
	return l.Quote != 0 && c == l.Quote
}

func (l Layout) isEscape(c rune) bool {
	return l.Escape != 0 && c == l.Escape
}

func (l Layout) isComment(c rune) bool {
	return l.Comment != 0 && c == l.Comment
}

// isTerminator reports whether c ends a line. A carriage return or line
// feed that is configured as the delimiter is not a terminator.
func (l Layout) isTerminator(c rune) bool {
	return (c == '\r' || c == '\n') && c != l.Delimiter
}
