package pdfparse

import (
	"context"
	"strings"
	"testing"

	"github.com/gen2brain/go-fitz"
)

// skipIfNoFitz skips tests that need a working MuPDF runtime.
func skipIfNoFitz(t *testing.T) {
	t.Helper()
	doc, err := fitz.New(writeSamplePDF(t))
	if err != nil {
		t.Skipf("skipping: MuPDF unavailable: %v", err)
	}
	doc.Close()
}

func TestFitz_Capabilities(t *testing.T) {
	be, err := newFitzBackend(defaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	caps := be.Capabilities()
	if !caps.Contains(ModalityText) || !caps.Contains(ModalityImages) {
		t.Errorf("capabilities = %v", caps)
	}
	if caps.Contains(ModalityTables) {
		t.Error("MuPDF backend must not advertise table support")
	}
}

func TestFitz_ExtractText(t *testing.T) {
	skipIfNoFitz(t)

	be, err := newFitzBackend(defaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	out, err := be.Parse(context.Background(), writeSamplePDF(t), Modalities{ModalityText})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if out.Text == nil || !strings.Contains(out.Text.Text, "Hello World") {
		t.Errorf("text = %+v", out.Text)
	}
	if len(out.Images) != 0 {
		t.Errorf("unrequested images populated: %d", len(out.Images))
	}
}

func TestFitz_PageImages(t *testing.T) {
	skipIfNoFitz(t)

	cfg := defaultConfig()
	cfg.renderDPI = 72
	be, err := newFitzBackend(cfg)
	if err != nil {
		t.Fatal(err)
	}
	out, err := be.Parse(context.Background(), writeSamplePDF(t), Modalities{ModalityImages})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(out.Images) != 1 {
		t.Fatalf("got %d images, want 1", len(out.Images))
	}
	img := out.Images[0]
	if img.Metadata.PageNumber != 1 {
		t.Errorf("page = %d", img.Metadata.PageNumber)
	}
	if img.Format != "png" || len(img.Data) == 0 || img.Image == nil {
		t.Errorf("image not fully populated: format=%q bytes=%d", img.Format, len(img.Data))
	}
	// Full-page render: box spans the rendered page, top-left origin.
	box := img.Metadata.BBox
	if box == nil || box.X0 != 0 || box.Y0 != 0 || box.X1 <= 0 || box.Y1 <= 0 {
		t.Errorf("bbox = %+v", box)
	}
	bounds := img.Image.Bounds()
	if box != nil && (box.X1 != float64(bounds.Dx()) || box.Y1 != float64(bounds.Dy())) {
		t.Errorf("bbox %+v does not match render size %v", box, bounds)
	}
	if out.Text != nil {
		t.Error("unrequested text populated")
	}
}

func TestFitz_MalformedDocument(t *testing.T) {
	skipIfNoFitz(t)

	be, err := newFitzBackend(defaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	_, err = be.Parse(context.Background(), doclingTestDoc(t), Modalities{ModalityText})
	if err == nil {
		t.Skip("MuPDF tolerated the stub document")
	}
	if _, ok := err.(*BackendError); !ok {
		t.Errorf("got %T, want *BackendError", err)
	}
}
