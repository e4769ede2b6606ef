package tokenizer

import "unicode"

// PeekStatus describes what is known about the character after the current one.
type PeekStatus uint8

const (
	// PeekPending means the next character has not been delivered yet.
	PeekPending PeekStatus = iota
	// PeekAvailable means Peek.Char holds the next character.
	PeekAvailable
	// PeekEOF means the input ends after the current character.
	PeekEOF
)

// Peek is the one-character lookahead handed to Step.
type Peek struct {
	Char   rune
	Status PeekStatus
}

// Input is everything Step may look at besides the current state.
type Input struct {
	C    rune
	Peek Peek
	// Buffered is the length of the speculative lookahead buffer.
	Buffered int
}

// Transition is the outcome of a single Step.
type Transition struct {
	// Next is the state after the transition.
	Next State
	// Consume is how many characters the transition eats: 0 re-dispatches
	// the current character in Next, 2 eats a CR LF pair.
	Consume int
	// NeedMore is set when the decision depends on an undelivered
	// character. Nothing is consumed and the same Step must be retried.
	NeedMore bool

	actions [3]Action
	n       uint8
}

// Actions returns the ordered side effects of the transition.
func (t Transition) Actions() []Action {
	return t.actions[:t.n]
}

func to(next State, consume int, actions ...Action) Transition {
	tr := Transition{Next: next, Consume: consume}
	tr.n = uint8(copy(tr.actions[:], actions))
	return tr
}

func needMore(s State) Transition {
	return Transition{Next: s, NeedMore: true}
}

// Step is the transition function of the automaton. It is pure: the same
// layout, state and input always yield the same transition.
func Step(l Layout, s State, in Input) Transition {
	c := in.C

	switch s {
	case StateBeginningOfLine:
		switch {
		case l.isTerminator(c):
			return to(StateEndOfLine, 0)
		case l.isComment(c):
			return to(StateComment, 1, ActionMarkComment)
		default:
			return to(StateOutsideField, 0)
		}

	case StateComment:
		if l.isTerminator(c) {
			return to(StateEndOfLine, 0)
		}
		return to(StateComment, 1, ActionDiscard)

	case StateOutsideField:
		switch {
		case c == l.Delimiter:
			return to(StateInsideField, 0, ActionFlushLookahead)
		case l.isTerminator(c):
			return to(StateEndOfLine, 0, ActionFlushLookahead)
		case l.isQuote(c):
			return to(StateInsideQuotedField, 1, ActionClearLookahead, ActionMarkQuoted)
		case unicode.IsSpace(c):
			// Possible leading trim material.
			return to(StateOutsideField, 1, ActionBuffer)
		default:
			return to(StateInsideField, 0, ActionFlushLookahead)
		}

	case StateInsideField:
		switch {
		case c == l.Delimiter:
			return to(StateOutsideField, 1, ActionPushField)
		case l.isTerminator(c):
			return to(StateEndOfLine, 0)
		default:
			return to(StateInsideField, 1, ActionAccumulate)
		}

	case StateInsideQuotedField:
		if l.isEscape(c) {
			switch in.Peek.Status {
			case PeekPending:
				return needMore(s)
			case PeekAvailable:
				if l.isQuote(in.Peek.Char) || l.isEscape(in.Peek.Char) {
					return to(StateEscaped, 1, ActionDiscard)
				}
			}
		}
		if l.isQuote(c) {
			return to(StateAfterSecondQuote, 1, ActionClearLookahead, ActionBuffer)
		}
		return to(StateInsideQuotedField, 1, ActionAccumulate)

	case StateEscaped:
		return to(StateInsideQuotedField, 1, ActionAccumulate)

	case StateAfterSecondQuote:
		switch {
		case c == l.Delimiter:
			return to(StateOutsideField, 1, ActionClearLookahead, ActionPushField)
		case l.isTerminator(c):
			return to(StateEndOfLine, 0, ActionClearLookahead)
		case l.isQuote(c):
			if in.Buffered <= 1 {
				// Two adjacent quotes stand for one literal quote.
				return to(StateInsideQuotedField, 1, ActionClearLookahead, ActionAccumulate)
			}
			// The earlier quote and its whitespace were content; this quote
			// may be the closing one.
			return to(StateAfterSecondQuote, 1, ActionFlushLookahead, ActionBuffer)
		case unicode.IsSpace(c):
			return to(StateAfterSecondQuote, 1, ActionBuffer)
		default:
			return to(StateInsideQuotedField, 0, ActionFlushLookahead)
		}

	case StateEndOfLine:
		if c == '\r' {
			switch in.Peek.Status {
			case PeekPending:
				return needMore(s)
			case PeekAvailable:
				if in.Peek.Char == '\n' && l.Delimiter != '\n' {
					return to(StateBeginningOfLine, 2, ActionEndRecord)
				}
			}
		}
		return to(StateBeginningOfLine, 1, ActionEndRecord)
	}

	return to(s, 1, ActionDiscard)
}

// Finish returns the actions that close the input while in state s.
// A record in progress is finalized exactly once; an unterminated quoted
// field is closed as is.
func Finish(s State) []Action {
	switch s {
	case StateBeginningOfLine, StateComment, StateEndOfLine:
		return nil
	case StateOutsideField:
		return []Action{ActionFlushLookahead, ActionEndRecord}
	case StateAfterSecondQuote:
		return []Action{ActionClearLookahead, ActionEndRecord}
	default:
		return []Action{ActionEndRecord}
	}
}
