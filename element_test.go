package pdfparse_test

import (
	"strings"
	"testing"

	pdfparse "github.com/porticus-lab/go-pdf-parse"
)

func TestParserOutput_WriteMarkdown(t *testing.T) {
	out := pdfparse.ParserOutput{
		Text: &pdfparse.TextElement{Text: "# Report\n\nSome body text."},
		Tables: []pdfparse.TableElement{{
			Markdown: "| a | b |\n|---|---|\n| 1 | 2 |",
			Rows:     [][]string{{"a", "b"}, {"1", "2"}},
			Metadata: pdfparse.Metadata{PageNumber: 3},
		}},
	}

	var sb strings.Builder
	if err := out.WriteMarkdown(&sb); err != nil {
		t.Fatalf("WriteMarkdown: %v", err)
	}
	got := sb.String()

	if !strings.Contains(got, "Some body text.") {
		t.Error("text missing from markdown output")
	}
	if !strings.Contains(got, "| a | b |") {
		t.Error("table missing from markdown output")
	}
	if !strings.Contains(got, "page 3") {
		t.Error("table page annotation missing")
	}
}

func TestParserOutput_WriteMarkdownEmpty(t *testing.T) {
	var out pdfparse.ParserOutput
	var sb strings.Builder
	if err := out.WriteMarkdown(&sb); err != nil {
		t.Fatalf("WriteMarkdown: %v", err)
	}
	if sb.String() != "" {
		t.Errorf("empty output produced %q", sb.String())
	}
}

func TestModalities(t *testing.T) {
	m := pdfparse.Modalities{pdfparse.ModalityText, pdfparse.ModalityTables}
	if !m.Contains(pdfparse.ModalityText) {
		t.Error("Contains(text) = false")
	}
	if m.Contains(pdfparse.ModalityImages) {
		t.Error("Contains(images) = true")
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	if err := (pdfparse.Modalities{"audio"}).Validate(); err == nil {
		t.Error("Validate accepted unknown modality")
	}
	if len(pdfparse.AllModalities()) != 3 {
		t.Errorf("AllModalities() = %v", pdfparse.AllModalities())
	}
}

func TestBoundingBox_Dimensions(t *testing.T) {
	b := pdfparse.BoundingBox{X0: 10, Y0: 20, X1: 110, Y1: 70}
	if b.Width() != 100 {
		t.Errorf("Width = %v, want 100", b.Width())
	}
	if b.Height() != 50 {
		t.Errorf("Height = %v, want 50", b.Height())
	}
}
