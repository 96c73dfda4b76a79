package pdfparse

import (
	"context"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// fitzBackend adapts MuPDF (via go-fitz) to the shared schema. MuPDF is a
// renderer: it extracts the text layer and rasterizes pages, but has no
// table detector, so the capability set is text and images only. Image
// output is one full-page rasterization per page at the configured DPI.
type fitzBackend struct {
	cfg config
}

func newFitzBackend(cfg config) (backend, error) {
	return &fitzBackend{cfg: cfg}, nil
}

func (f *fitzBackend) Name() Backend { return BackendFitz }

func (f *fitzBackend) Capabilities() Modalities {
	return Modalities{ModalityText, ModalityImages}
}

func (f *fitzBackend) Close() error { return nil }

func (f *fitzBackend) Parse(ctx context.Context, path string, modalities Modalities) (*ParserOutput, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, &BackendError{Backend: BackendFitz, Err: fmt.Errorf("opening document: %w", err)}
	}
	defer doc.Close()

	out := &ParserOutput{}
	var text strings.Builder

	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, &BackendError{Backend: BackendFitz, Err: err}
		}

		if modalities.Contains(ModalityText) {
			pageText, err := doc.Text(i)
			if err != nil {
				return nil, &BackendError{Backend: BackendFitz, Err: fmt.Errorf("page %d text: %w", i+1, err)}
			}
			text.WriteString(pageText)
			text.WriteByte('\n')
		}

		if modalities.Contains(ModalityImages) {
			img, err := doc.ImageDPI(i, f.cfg.renderDPI)
			if err != nil {
				return nil, &BackendError{Backend: BackendFitz, Err: fmt.Errorf("page %d render: %w", i+1, err)}
			}
			data, err := encodePNG(img)
			if err != nil {
				return nil, &BackendError{Backend: BackendFitz, Err: fmt.Errorf("page %d encode: %w", i+1, err)}
			}
			bounds := img.Bounds()
			out.Images = append(out.Images, ImageElement{
				Image:  img,
				Data:   data,
				Format: "png",
				Metadata: Metadata{
					PageNumber: i + 1,
					// Full-page render: the box spans the whole page in
					// render pixels, top-left origin.
					BBox: &BoundingBox{X0: 0, Y0: 0, X1: float64(bounds.Dx()), Y1: float64(bounds.Dy())},
				},
			})
		}
	}

	if modalities.Contains(ModalityText) {
		out.Text = &TextElement{Text: text.String()}
	}
	return out, nil
}
