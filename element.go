package pdfparse

import (
	"fmt"
	"image"
	"io"
	"strings"
)

// BoundingBox locates an element on its page. Coordinates follow a single
// convention regardless of the backend that produced them: origin at the
// top-left corner of the page, X growing right, Y growing down, in page
// units at the backend's render scale (points for layout backends, pixels
// for rasterizing backends).
type BoundingBox struct {
	X0, Y0 float64 // top-left corner
	X1, Y1 float64 // bottom-right corner
}

// Width returns the horizontal extent of the box.
func (b BoundingBox) Width() float64 { return b.X1 - b.X0 }

// Height returns the vertical extent of the box.
func (b BoundingBox) Height() float64 { return b.Y1 - b.Y0 }

// boundingBoxFromBottomLeft converts a PDF-style box (origin bottom-left,
// Y growing up, top edge t above bottom edge b) into the top-left
// convention used throughout the library.
func boundingBoxFromBottomLeft(l, t, r, b, pageHeight float64) BoundingBox {
	return BoundingBox{
		X0: l,
		Y0: pageHeight - t,
		X1: r,
		Y1: pageHeight - b,
	}
}

// Metadata carries the positional information a backend supplied for an
// element. BBox is nil when the backend reported no position; the library
// never fabricates one.
type Metadata struct {
	PageNumber int
	BBox       *BoundingBox
}

// TextElement holds the concatenated text extracted from one document.
// Layout-aware backends produce markdown; plain renderers produce plain
// text. A TextElement is immutable once produced.
type TextElement struct {
	Text string
}

// TableElement holds one detected table in two equivalent forms: a
// markdown rendering and the underlying cell grid. Cell content is copied
// verbatim from the backend; it is never re-parsed. Rows is nil when the
// backend delivered only markdown and the markdown is not a well-formed
// grid.
type TableElement struct {
	Markdown string
	Rows     [][]string
	Metadata Metadata
}

// ImageElement holds one extracted image: the decoded pixels, the original
// encoded bytes, and the detected format ("png", "jpeg", ...). Depending
// on the backend an image is either an embedded picture cropped from the
// page or a full-page rasterization.
type ImageElement struct {
	Image    image.Image
	Data     []byte
	Format   string
	Metadata Metadata
}

// ParserOutput is the normalized result for a single input document.
// Only the requested modalities are populated; the rest stay empty. A
// ParserOutput is never mutated after construction and is owned entirely
// by the caller.
type ParserOutput struct {
	Text   *TextElement
	Tables []TableElement
	Images []ImageElement
}

// WriteMarkdown writes the output as a single markdown document: the text
// first, then each table with a page annotation. Images are listed by
// page and size since markdown cannot embed raw pixels.
func (o *ParserOutput) WriteMarkdown(w io.Writer) error {
	var sb strings.Builder
	if o.Text != nil {
		sb.WriteString(o.Text.Text)
		if !strings.HasSuffix(o.Text.Text, "\n") {
			sb.WriteByte('\n')
		}
	}
	for _, t := range o.Tables {
		sb.WriteByte('\n')
		if t.Metadata.PageNumber > 0 {
			fmt.Fprintf(&sb, "<!-- table, page %d -->\n", t.Metadata.PageNumber)
		}
		sb.WriteString(t.Markdown)
		if !strings.HasSuffix(t.Markdown, "\n") {
			sb.WriteByte('\n')
		}
	}
	for i, img := range o.Images {
		sb.WriteByte('\n')
		bounds := "unknown size"
		if img.Image != nil {
			b := img.Image.Bounds()
			bounds = fmt.Sprintf("%dx%d", b.Dx(), b.Dy())
		}
		fmt.Fprintf(&sb, "<!-- image %d, page %d, %s -->\n", i+1, img.Metadata.PageNumber, bounds)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
