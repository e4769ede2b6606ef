package csv

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-logr/logr"
	shapetokenizer "github.com/shapestone/shape-core/pkg/tokenizer"
	"golang.org/x/text/transform"

	"github.com/shapestone/shape-csvstream/internal/source"
	"github.com/shapestone/shape-csvstream/internal/tokenizer"
)

// Reader is a lazy, pull-based stream of CSV records.
//
// Input is pulled from the source in BufferSize chunks only when the
// tokenizer needs more, so memory stays bounded by the longest record.
// A Reader is not safe for concurrent use.
//
// Example:
//
//	r := csv.NewReader(file, csv.DefaultReaderOptions())
//	defer r.Close()
//	for {
//	    rec, err := r.Read()
//	    if err == io.EOF {
//	        break
//	    }
//	    if errors.Is(err, csv.ErrMissingField) {
//	        continue // the record was rejected; the stream goes on
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(rec.Fields())
//	}
type Reader struct {
	opts   ReaderOptions
	log    logr.Logger
	src    source.Source
	closer io.Closer
	tok    *tokenizer.Tokenizer
	recon  reconciler
	chunk  []rune

	headers *HeaderIndex
	pending *Record

	initialized bool
	initErr     error
	closed      bool
}

// NewReader creates a Reader over UTF-8 text, or text in opts.Encoding when
// set. If r is an io.Closer it is closed by Close.
func NewReader(r io.Reader, opts ReaderOptions) *Reader {
	var closer io.Closer
	if opts.Encoding != nil {
		if c, ok := r.(io.Closer); ok {
			closer = c
		}
		r = transform.NewReader(r, opts.Encoding.NewDecoder())
	}
	rd := newReader(source.FromReader(r), opts)
	rd.closer = closer
	return rd
}

// NewStreamReader creates a Reader over a shape-core character stream.
// opts.Encoding is ignored; the stream already yields runes.
func NewStreamReader(stream shapetokenizer.Stream, opts ReaderOptions) *Reader {
	return newReader(source.FromStream(stream), opts)
}

func newReader(src source.Source, opts ReaderOptions) *Reader {
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}
	return &Reader{
		opts:  opts,
		log:   opts.Logger.WithName("csv"),
		src:   src,
		tok:   tokenizer.New(opts.Layout, opts.Trimming),
		recon: reconciler{action: opts.MissingField},
	}
}

// Init resolves headers and establishes the record width. It runs at most
// once; later calls return the first result. Read, Headers and FieldCount
// call it implicitly.
func (r *Reader) Init() error {
	if r.closed {
		return ErrSessionClosed
	}
	if r.initialized {
		return r.initErr
	}
	r.initialized = true
	r.initErr = r.init()
	return r.initErr
}

func (r *Reader) init() error {
	if err := r.opts.Validate(); err != nil {
		return err
	}
	r.chunk = make([]rune, r.opts.BufferSize)

	for {
		rec, err := r.next()
		if errors.Is(err, io.EOF) {
			r.log.V(1).Info("input has no records")
			return nil
		}
		if err != nil {
			return err
		}

		if !r.opts.HasHeaders {
			// The first record is held back and re-emitted by Read.
			if _, err := r.recon.reconcile(&rec); err != nil {
				return err
			}
			first := r.wrap(rec)
			r.pending = &first
			return nil
		}

		if rec.Empty {
			continue
		}
		if _, err := r.recon.reconcile(&rec); err != nil {
			return err
		}
		r.headers = newHeaderIndex(rec.Fields, r.opts.DefaultHeaderPrefix, r.opts.HeaderConverter)
		r.log.V(1).Info("resolved headers", "line", rec.Line, "names", r.headers.names)
		return nil
	}
}

// Read returns the next record. It returns io.EOF when the input is
// exhausted. A *MissingFieldError rejects only the offending record; the
// following Read continues the stream.
func (r *Reader) Read() (Record, error) {
	if err := r.Init(); err != nil {
		return Record{}, err
	}
	if r.pending != nil {
		rec := *r.pending
		r.pending = nil
		return rec, nil
	}

	rec, err := r.next()
	if err != nil {
		return Record{}, err
	}
	padded, err := r.recon.reconcile(&rec)
	if err != nil {
		r.log.V(1).Info("record rejected", "line", rec.Line, "error", err.Error())
		return Record{}, err
	}
	if padded > 0 {
		r.log.V(1).Info("record padded", "line", rec.Line, "fields", padded, "action", r.opts.MissingField.String())
	}
	return r.wrap(rec), nil
}

// Headers returns the resolved column names, or nil when HasHeaders is off.
func (r *Reader) Headers() ([]string, error) {
	if err := r.Init(); err != nil {
		return nil, err
	}
	return r.headers.Names(), nil
}

// HeaderIndex returns the name to index map, or nil when HasHeaders is off.
func (r *Reader) HeaderIndex() (*HeaderIndex, error) {
	if err := r.Init(); err != nil {
		return nil, err
	}
	return r.headers, nil
}

// FieldCount returns the established record width, or 0 when the input
// has no non-empty record.
func (r *Reader) FieldCount() (int, error) {
	if err := r.Init(); err != nil {
		return 0, err
	}
	return r.recon.width, nil
}

// Line returns the current 1-based physical line of the input.
func (r *Reader) Line() int {
	return r.tok.Line()
}

// Close releases the source. It is safe to call more than once.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.pending = nil
	err := r.src.Close()
	if r.closer != nil {
		if cerr := r.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// next pulls the next raw record from the tokenizer, refilling as needed
// and dropping blank lines when SkipEmptyLines is set.
func (r *Reader) next() (tokenizer.Record, error) {
	if r.closed {
		return tokenizer.Record{}, ErrSessionClosed
	}
	for {
		rec, status := r.tok.Next()
		switch status {
		case tokenizer.StatusRecord:
			if rec.Empty && r.opts.SkipEmptyLines {
				r.log.V(2).Info("skipped blank line", "line", rec.Line)
				continue
			}
			return rec, nil
		case tokenizer.StatusDone:
			return tokenizer.Record{}, io.EOF
		default:
			if err := r.fill(); err != nil {
				return tokenizer.Record{}, err
			}
		}
	}
}

func (r *Reader) fill() error {
	n, err := r.src.ReadRunes(r.chunk)
	if n > 0 {
		r.tok.Write(r.chunk[:n])
	}
	switch {
	case errors.Is(err, io.EOF):
		r.tok.CloseInput()
		r.log.V(1).Info("source exhausted", "line", r.tok.Line())
		return nil
	case err != nil:
		return fmt.Errorf("csv: read: %w", err)
	}
	return nil
}

func (r *Reader) wrap(rec tokenizer.Record) Record {
	return Record{
		fields:  rec.Fields,
		absent:  rec.Absent,
		empty:   rec.Empty,
		line:    rec.Line,
		raw:     rec.Raw,
		headers: r.headers,
	}
}

// ReadAll reads every record from r. It stops at the first error,
// returning the records read so far. r is not closed.
func ReadAll(r io.Reader, opts ReaderOptions) ([]Record, error) {
	return NewReader(r, opts).readAll()
}

func (r *Reader) readAll() ([]Record, error) {
	var records []Record
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}
