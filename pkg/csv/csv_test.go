package csv_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/shapestone/shape-core/pkg/ast"

	"github.com/shapestone/shape-csvstream/pkg/csv"
)

// astRecords flattens a parsed AST back into field values.
func astRecords(t *testing.T, node ast.SchemaNode) [][]string {
	t.Helper()
	arr, ok := node.(*ast.ArrayDataNode)
	if !ok {
		t.Fatalf("Parse() returned %T, want *ast.ArrayDataNode", node)
	}
	var out [][]string
	for _, elem := range arr.Elements() {
		rec := elem.(*ast.ArrayDataNode)
		fields := make([]string, 0, rec.Len())
		for _, f := range rec.Elements() {
			fields = append(fields, f.(*ast.LiteralNode).Value().(string))
		}
		out = append(out, fields)
	}
	return out
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    [][]string
		wantErr bool
	}{
		{
			name:  "simple csv",
			input: "name,age\nAlice,30\nBob,25",
			want:  [][]string{{"name", "age"}, {"Alice", "30"}, {"Bob", "25"}},
		},
		{
			name:  "empty input",
			input: "",
		},
		{
			name:  "unclosed quote is lenient",
			input: `"unclosed`,
			want:  [][]string{{"unclosed"}},
		},
		{
			name:  "escaped quotes",
			input: `"field with ""quotes"" inside"`,
			want:  [][]string{{`field with "quotes" inside`}},
		},
		{
			name:  "empty fields",
			input: "a,,c\n,b,",
			want:  [][]string{{"a", "", "c"}, {"", "b", ""}},
		},
		{
			name:  "newlines in quoted fields",
			input: "\"field\nwith\nnewlines\",normal",
			want:  [][]string{{"field\nwith\nnewlines", "normal"}},
		},
		{
			name:    "narrow record",
			input:   "a,b\nc",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := csv.Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := astRecords(t, node); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %q, want %q", got, tt.want)
			}

			fromReader, err := csv.ParseReader(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ParseReader() error = %v", err)
			}
			if got := astRecords(t, fromReader); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseReader() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseReaderWithOptions_Headers(t *testing.T) {
	opts := csv.DefaultReaderOptions()
	opts.HasHeaders = true
	opts.HeaderConverter = csv.UppercaseHeader

	node, err := csv.ParseReaderWithOptions(strings.NewReader("id,\n1,x"), opts)
	if err != nil {
		t.Fatalf("ParseReaderWithOptions() error = %v", err)
	}
	want := [][]string{{"ID", "Column1"}, {"1", "x"}}
	if got := astRecords(t, node); !reflect.DeepEqual(got, want) {
		t.Errorf("records = %q, want %q", got, want)
	}
}

func TestFormat(t *testing.T) {
	if got := csv.Format(); got != "CSV" {
		t.Errorf("Format() = %q, want %q", got, "CSV")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"uniform", "a,b\n1,2\n", false},
		{"wider rows pass", "a,b\n1,2,3\n", false},
		{"blank lines ignored", "a,b\n\n1,2\n", false},
		{"narrow row", "a,b\n1\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := csv.Validate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, csv.ErrMissingField) {
				t.Errorf("Validate() error = %v, want ErrMissingField", err)
			}
		})
	}
}

func TestValidateReader_ForcesStrictWidth(t *testing.T) {
	opts := csv.DefaultReaderOptions()
	opts.MissingField = csv.MissingFieldReplaceByEmpty
	err := csv.ValidateReader(strings.NewReader("a;b\n1\n"), withDelimiter(opts, ';'))

	var mfe *csv.MissingFieldError
	if !errors.As(err, &mfe) {
		t.Fatalf("ValidateReader() error = %v, want *MissingFieldError", err)
	}
	if mfe.Line != 2 {
		t.Errorf("Line = %d, want 2", mfe.Line)
	}
}

func TestSplitLine(t *testing.T) {
	semicolon := csv.DefaultLayout()
	semicolon.Delimiter = ';'
	none := csv.DefaultBehavior()
	none.Trimming = csv.TrimNone

	tests := []struct {
		name     string
		line     string
		layout   csv.Layout
		behavior csv.Behavior
		want     []string
	}{
		{"quoted with spaces", `a, "b,c" ,d`, csv.DefaultLayout(), csv.DefaultBehavior(), []string{"a", "b,c", "d"}},
		{"semicolon", "1;2;3 \t", semicolon, csv.DefaultBehavior(), []string{"1", "2", "3"}},
		{"no trimming", " x ", csv.DefaultLayout(), none, []string{" x "}},
		{"first record only", "a,b\nc,d", csv.DefaultLayout(), csv.DefaultBehavior(), []string{"a", "b"}},
		{"blank", "   ", csv.DefaultLayout(), csv.DefaultBehavior(), nil},
		{"comment", "# a,b", csv.DefaultLayout(), csv.DefaultBehavior(), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := csv.SplitLine(tt.line, tt.layout, tt.behavior); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitLine(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}
