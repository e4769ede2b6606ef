package csv_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/shapestone/shape-csvstream/pkg/csv"
)

func TestSnifferDetectDelimiter(t *testing.T) {
	tests := []struct {
		name   string
		sample string
		want   rune
	}{
		{"comma", "a,b,c\n1,2,3\n4,5,6", ','},
		{"tab", "a\tb\tc\n1\t2\t3\n4\t5\t6", '\t'},
		{"semicolon", "a;b;c\n1;2;3\n4;5;6", ';'},
		{"pipe", "a|b|c\n1|2|3\n4|5|6", '|'},
		{"empty sample defaults to comma", "", ','},
		{"single line", "a,b,c", ','},
		{"inconsistent rows lose the bonus", "a,b,c\n1,2,3\n4;5;6", ','},
		{"quoted delimiters ignored", "\"a;b;c;d\",e\n\"1;2;3;4\",5", ','},
		{"multi-line quoted field", "x;\"line1\nline2\";z\n1;2;3", ';'},
		{"crlf lines", "a;b\r\n1;2\r\n", ';'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := csv.NewSniffer(tt.sample).DetectDelimiter(); got != tt.want {
				t.Errorf("DetectDelimiter() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSnifferDetectQuote(t *testing.T) {
	tests := []struct {
		name   string
		sample string
		want   rune
	}{
		{"no quotes", "a,b\n1,2", '"'},
		{"double quotes", "\"a\",\"b\"\n1,2", '"'},
		{"single quotes", "'a,x','b'\n'1',2", '\''},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := csv.NewSniffer(tt.sample).DetectQuote(); got != tt.want {
				t.Errorf("DetectQuote() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSnifferHasHeader(t *testing.T) {
	tests := []struct {
		name   string
		sample string
		want   bool
	}{
		{"identifiers", "name,age,email\nJohn,30,john@example.com", true},
		{"numeric first row", "123,456,789\n111,222,333", false},
		{"snake_case", "first_name,last_name\nJohn,Doe", true},
		{"camelCase", "firstName,lastName\nJohn,Doe", true},
		{"Title Case", "First Name,Last Name,Email\nJohn,Doe,john@example.com", true},
		{"single line", "a,b,c", false},
		{"dates", "2024-01-15,John,30\n2024-01-16,Jane,25", false},
		{"blank lines before data", "id;name\n\n\n1;John", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := csv.NewSniffer(tt.sample).HasHeader(); got != tt.want {
				t.Errorf("HasHeader() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSnifferLayoutReadsSample(t *testing.T) {
	sample := "'id';'note'\n1;'it''s; fine'\n2;plain"
	s := csv.NewSniffer(sample)

	opts := csv.DefaultReaderOptions()
	opts.Layout = s.Layout()
	opts.Behavior = s.Behavior()
	if opts.Delimiter != ';' || opts.Quote != '\'' || opts.Escape != '\'' {
		t.Fatalf("Layout() = %+v", opts.Layout)
	}
	if !opts.HasHeaders {
		t.Fatal("Behavior().HasHeaders = false, want true")
	}

	records, err := csv.ReadAll(strings.NewReader(sample), opts)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if note, _ := records[0].GetByName("note"); note != "it's; fine" {
		t.Errorf("note = %q, want %q", note, "it's; fine")
	}
}

func TestHeaderConverters(t *testing.T) {
	tests := []struct {
		name      string
		converter csv.HeaderConverter
		input     string
		want      string
	}{
		{"lowercase", csv.LowercaseHeader, "FirstName", "firstname"},
		{"uppercase", csv.UppercaseHeader, "firstName", "FIRSTNAME"},
		{"snake from camelCase", csv.SnakeCaseHeader, "firstName", "first_name"},
		{"snake from PascalCase", csv.SnakeCaseHeader, "FirstName", "first_name"},
		{"snake with spaces", csv.SnakeCaseHeader, "First Name", "first_name"},
		{"snake with dashes", csv.SnakeCaseHeader, "first-name", "first_name"},
		{"snake already snake", csv.SnakeCaseHeader, "first_name", "first_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.converter(tt.input); got != tt.want {
				t.Errorf("converter(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestColumnSelector(t *testing.T) {
	tests := []struct {
		name     string
		selector csv.ColumnSelector
		want     []string
	}{
		{"empty selector includes all", csv.ColumnSelector{}, []string{"1", "Ann", "ann@x.org"}},
		{"by name", csv.ColumnSelector{UseCols: []string{"email", "id"}}, []string{"1", "ann@x.org"}},
		{"by index", csv.ColumnSelector{UseColIndexes: []int{1}}, []string{"Ann"}},
		{"by name or index", csv.ColumnSelector{UseCols: []string{"name"}, UseColIndexes: []int{2}}, []string{"Ann", "ann@x.org"}},
		{"no match", csv.ColumnSelector{UseCols: []string{"missing"}}, []string{}},
	}

	opts := csv.DefaultReaderOptions()
	opts.HasHeaders = true
	r := csv.NewReader(strings.NewReader("id,name,email\n1,Ann,ann@x.org\n"), opts)
	rec, err := r.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	names, _ := r.Headers()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.selector.Select(rec, names); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Select() = %q, want %q", got, tt.want)
			}
		})
	}
}
