package csv

import (
	"fmt"
	"io"

	"github.com/shapestone/shape-core/pkg/ast"
	shapetokenizer "github.com/shapestone/shape-core/pkg/tokenizer"
)

// Document is a fully materialized CSV input: optional headers plus every
// record in order. Use a Reader instead when the input may not fit in
// memory.
//
//	doc, _ := csv.ParseDocument("name,age\nAlice,30")
//	rec, _ := doc.GetRecord(1)
//	age, _ := rec.Get(1)
type Document struct {
	headers *HeaderIndex
	records []Record
}

// ParseDocument reads a string with DefaultReaderOptions. The header row,
// if any, stays a regular record.
func ParseDocument(input string) (*Document, error) {
	return readDocument(NewStreamReader(shapetokenizer.NewStream(input), DefaultReaderOptions()))
}

// ReadDocument reads all of r with the given options.
func ReadDocument(r io.Reader, opts ReaderOptions) (*Document, error) {
	return readDocument(NewReader(r, opts))
}

func readDocument(rd *Reader) (*Document, error) {
	records, err := rd.readAll()
	if err != nil {
		return nil, err
	}
	return &Document{headers: rd.headers, records: records}, nil
}

// Headers returns the resolved column names, or nil without headers.
func (d *Document) Headers() []string {
	return d.headers.Names()
}

// Records returns all records.
func (d *Document) Records() []Record {
	records := make([]Record, len(d.records))
	copy(records, d.records)
	return records
}

// RecordCount returns the number of records, not counting the header row.
func (d *Document) RecordCount() int {
	return len(d.records)
}

// GetRecord returns the record at the specified index.
// Returns (Record, false) if the index is out of bounds.
func (d *Document) GetRecord(index int) (Record, bool) {
	if index < 0 || index >= len(d.records) {
		return Record{}, false
	}
	return d.records[index], true
}

// ToAST converts the Document to an AST ArrayDataNode. Headers, when set,
// become the first element. Record and field nodes carry the record's
// start line.
func (d *Document) ToAST() *ast.ArrayDataNode {
	elements := make([]ast.SchemaNode, 0, len(d.records)+1)

	if d.headers.Len() > 0 {
		names := d.headers.Names()
		headerNodes := make([]ast.SchemaNode, len(names))
		for i, h := range names {
			headerNodes[i] = ast.NewLiteralNode(h, ast.ZeroPosition())
		}
		elements = append(elements, ast.NewArrayDataNode(headerNodes, ast.ZeroPosition()))
	}

	for _, rec := range d.records {
		elements = append(elements, recordNode(rec))
	}
	return ast.NewArrayDataNode(elements, ast.ZeroPosition())
}

func recordNode(rec Record) *ast.ArrayDataNode {
	pos := ast.NewPosition(0, rec.line, 1)
	fieldNodes := make([]ast.SchemaNode, len(rec.fields))
	for i, f := range rec.fields {
		fieldNodes[i] = ast.NewLiteralNode(f, pos)
	}
	return ast.NewArrayDataNode(fieldNodes, pos)
}

// FromAST creates a Document from an AST ArrayDataNode of records. When
// hasHeaders is set, the first element becomes the header row. Records
// built this way have no source text and report line 0.
func FromAST(node ast.SchemaNode, hasHeaders bool) (*Document, error) {
	arrayNode, ok := node.(*ast.ArrayDataNode)
	if !ok {
		return nil, fmt.Errorf("expected *ast.ArrayDataNode, got %T", node)
	}

	doc := &Document{}
	for i, elem := range arrayNode.Elements() {
		fields, err := literalFields(elem)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if hasHeaders && i == 0 {
			doc.headers = newHeaderIndex(fields, DefaultBehavior().DefaultHeaderPrefix, nil)
			continue
		}
		doc.records = append(doc.records, Record{fields: fields})
	}
	for i := range doc.records {
		doc.records[i].headers = doc.headers
	}
	return doc, nil
}

func literalFields(node ast.SchemaNode) ([]string, error) {
	arrayNode, ok := node.(*ast.ArrayDataNode)
	if !ok {
		return nil, fmt.Errorf("expected record to be *ast.ArrayDataNode, got %T", node)
	}

	fields := make([]string, 0, arrayNode.Len())
	for _, fieldNode := range arrayNode.Elements() {
		literalNode, ok := fieldNode.(*ast.LiteralNode)
		if !ok {
			return nil, fmt.Errorf("expected field to be *ast.LiteralNode, got %T", fieldNode)
		}
		value, ok := literalNode.Value().(string)
		if !ok {
			return nil, fmt.Errorf("expected field value to be string, got %T", literalNode.Value())
		}
		fields = append(fields, value)
	}
	return fields, nil
}
