package pdfparse_test

import (
	"reflect"
	"testing"

	pdfparse "github.com/porticus-lab/go-pdf-parse"
)

func TestMarkdownTable_Render(t *testing.T) {
	rows := [][]string{
		{"Header 1", "Header 2"},
		{"Value 1", "Value 2"},
	}
	got := pdfparse.MarkdownTable(rows)
	want := "| Header 1 | Header 2 |\n|---|---|\n| Value 1 | Value 2 |"
	if got != want {
		t.Errorf("MarkdownTable:\ngot  %q\nwant %q", got, want)
	}
}

func TestMarkdownTable_RoundTrip(t *testing.T) {
	tests := [][][]string{
		{{"Header 1", "Header 2"}, {"Value 1", "Value 2"}},
		{{"a"}, {"b"}, {"c"}},
		{{"name", "qty", "unit price"}, {"bolts", "40", "0.12"}, {"nuts", "", "0.08"}},
		{{"pipe | inside", "plain"}, {"back\\slash", "x"}},
	}
	for _, rows := range tests {
		md := pdfparse.MarkdownTable(rows)
		back := pdfparse.ParseMarkdownTable(md)
		if !reflect.DeepEqual(back, rows) {
			t.Errorf("round trip of %v via %q gave %v", rows, md, back)
		}
	}
}

func TestParseMarkdownTable_AlignmentSeparators(t *testing.T) {
	md := "| left | right |\n| :--- | ---: |\n| a | b |"
	got := pdfparse.ParseMarkdownTable(md)
	want := [][]string{{"left", "right"}, {"a", "b"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseMarkdownTable_NotATable(t *testing.T) {
	for _, md := range []string{
		"",
		"just some prose",
		"| header only |",
		"| a |\n| b |", // no separator row
	} {
		if got := pdfparse.ParseMarkdownTable(md); got != nil {
			t.Errorf("ParseMarkdownTable(%q) = %v, want nil", md, got)
		}
	}
}

func TestMarkdownTable_Empty(t *testing.T) {
	if got := pdfparse.MarkdownTable(nil); got != "" {
		t.Errorf("MarkdownTable(nil) = %q, want empty", got)
	}
}
