// Package source provides sequential rune sources for the tokenizer.
//
// A Source hands out runes in chunks and never seeks. Two adapters are
// provided: one over an io.Reader carrying UTF-8 text, and one over a
// shape-core character Stream.
package source

import (
	"bufio"
	"errors"
	"io"

	shapetokenizer "github.com/shapestone/shape-core/pkg/tokenizer"
)

// ErrClosed is returned by ReadRunes after Close.
var ErrClosed = errors.New("source: closed")

// Source delivers runes sequentially.
type Source interface {
	// ReadRunes reads up to len(p) runes into p. It returns io.EOF once the
	// input is exhausted; n may be non-zero alongside io.EOF.
	ReadRunes(p []rune) (n int, err error)
	// Close releases the source. It is safe to call more than once.
	Close() error
}

// ReaderSource reads UTF-8 runes from an io.Reader.
type ReaderSource struct {
	r      io.Reader
	br     *bufio.Reader
	closed bool
}

// FromReader wraps r. If r is an io.Closer it is closed by Close.
func FromReader(r io.Reader) *ReaderSource {
	return &ReaderSource{r: r, br: bufio.NewReader(r)}
}

// ReadRunes fills p with as many runes as are available without blocking
// on the underlying reader once at least one rune was read.
func (s *ReaderSource) ReadRunes(p []rune) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	n := 0
	for n < len(p) {
		if n > 0 && s.br.Buffered() == 0 {
			break
		}
		r, _, err := s.br.ReadRune()
		if err != nil {
			return n, err
		}
		p[n] = r
		n++
	}
	return n, nil
}

// Close closes the underlying reader if it is an io.Closer.
func (s *ReaderSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if c, ok := s.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// StreamSource reads runes from a shape-core Stream.
type StreamSource struct {
	stream shapetokenizer.Stream
	eof    bool
	closed bool
}

// FromStream wraps a shape-core Stream.
func FromStream(stream shapetokenizer.Stream) *StreamSource {
	return &StreamSource{stream: stream}
}

// ReadRunes pulls up to len(p) characters from the stream.
func (s *StreamSource) ReadRunes(p []rune) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	if s.eof {
		return 0, io.EOF
	}
	n := 0
	for n < len(p) {
		r, ok := s.stream.NextChar()
		if !ok {
			s.eof = true
			return n, io.EOF
		}
		p[n] = r
		n++
	}
	return n, nil
}

// Close marks the source closed. The stream itself holds no resources.
func (s *StreamSource) Close() error {
	s.closed = true
	return nil
}
