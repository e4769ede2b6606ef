package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestTableWriter_Alignment(t *testing.T) {
	got, _, err := execute(t, "city,pop\n東京,14\nOslo,1\n", "--headers", "--no-color")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	// 東京 is four columns wide.
	want := "city  pop\n東京  14\nOslo  1\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestTableWriter_EscapesControlCharacters(t *testing.T) {
	got, _, err := execute(t, "a,\"line1\nline2\"\n", "--no-color")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if want := "a  line1\\nline2\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestTableWriter_Color(t *testing.T) {
	var buf bytes.Buffer
	w := newTableWriter(&buf, true)
	if err := w.WriteHeader([]string{"h"}); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("output = %q, want ANSI color codes", buf.String())
	}
}

func TestNewRecordWriter(t *testing.T) {
	for _, format := range []string{"table", "TABLE", "json", "yaml", "raw"} {
		if _, err := newRecordWriter(format, &bytes.Buffer{}, false); err != nil {
			t.Errorf("newRecordWriter(%q) error = %v", format, err)
		}
	}
	if _, err := newRecordWriter("xml", &bytes.Buffer{}, false); err == nil {
		t.Error("newRecordWriter(\"xml\") error = nil")
	}
}

func TestYAMLWriter_Empty(t *testing.T) {
	got, _, err := execute(t, "", "-o", "yaml")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if got != "" {
		t.Errorf("output = %q, want empty", got)
	}
}

func TestOrderedRow_MarshalJSON(t *testing.T) {
	b, err := keyed([]string{"z", "a"}, []string{"1", "\"2\""}).MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"z":"1","a":"\"2\""}`; string(b) != want {
		t.Errorf("MarshalJSON() = %s, want %s", b, want)
	}
}
