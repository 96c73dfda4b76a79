package pdfparse

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// doclingTestDoc writes a dummy upload file (the adapter does not inspect
// the bytes, the server is mocked) and returns its path.
func doclingTestDoc(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 stub"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newDoclingTestBackend(t *testing.T, handler http.HandlerFunc) backend {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := defaultConfig()
	cfg.baseURL = srv.URL
	be, err := newDoclingBackend(cfg)
	if err != nil {
		t.Fatalf("newDoclingBackend: %v", err)
	}
	return be
}

func doclingSuccessResponse(t *testing.T, pngData []byte) string {
	t.Helper()
	resp := fmt.Sprintf(`{
		"status": "success",
		"errors": [],
		"document": {
			"md_content": "# Title\n\nBody text.",
			"json_content": {
				"tables": [{
					"data": {"grid": [
						[{"text": "Header 1"}, {"text": "Header 2"}],
						[{"text": "Value 1"}, {"text": "Value 2"}]
					]},
					"prov": [{
						"page_no": 1,
						"bbox": {"l": 10, "t": 700, "r": 200, "b": 650, "coord_origin": "BOTTOMLEFT"}
					}]
				}],
				"pictures": [
					{
						"image": {"uri": "data:image/png;base64,%s"},
						"prov": [{
							"page_no": 2,
							"bbox": {"l": 50, "t": 400, "r": 150, "b": 300, "coord_origin": "BOTTOMLEFT"}
						}]
					},
					{"prov": [{"page_no": 3}]}
				],
				"pages": {
					"1": {"size": {"width": 612, "height": 792}},
					"2": {"size": {"width": 612, "height": 792}}
				}
			}
		}
	}`, base64.StdEncoding.EncodeToString(pngData))
	return resp
}

func TestDocling_ParseAllModalities(t *testing.T) {
	png := tinyPNG(t)
	var gotPath string
	be := newDoclingTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("bad multipart request: %v", err)
		}
		if _, _, err := r.FormFile("files"); err != nil {
			t.Errorf("missing files part: %v", err)
		}
		fmt.Fprint(w, doclingSuccessResponse(t, png))
	})

	out, err := be.Parse(context.Background(), doclingTestDoc(t), AllModalities())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if gotPath != "/v1alpha/convert/file" {
		t.Errorf("request path = %q", gotPath)
	}

	if out.Text == nil || out.Text.Text != "# Title\n\nBody text." {
		t.Errorf("text = %+v", out.Text)
	}

	if len(out.Tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(out.Tables))
	}
	table := out.Tables[0]
	wantRows := [][]string{{"Header 1", "Header 2"}, {"Value 1", "Value 2"}}
	if len(table.Rows) != 2 || table.Rows[0][0] != wantRows[0][0] || table.Rows[1][1] != wantRows[1][1] {
		t.Errorf("rows = %v", table.Rows)
	}
	if table.Markdown != MarkdownTable(wantRows) {
		t.Errorf("markdown = %q", table.Markdown)
	}
	if table.Metadata.PageNumber != 1 {
		t.Errorf("page = %d", table.Metadata.PageNumber)
	}
	// Bottom-left box l=10 t=700 r=200 b=650 on a 792pt page flips to
	// top-left y = 792-700 = 92.
	wantBox := BoundingBox{X0: 10, Y0: 92, X1: 200, Y1: 142}
	if table.Metadata.BBox == nil || *table.Metadata.BBox != wantBox {
		t.Errorf("bbox = %+v, want %+v", table.Metadata.BBox, wantBox)
	}

	// The picture without embedded data is skipped, never null-filled.
	if len(out.Images) != 1 {
		t.Fatalf("got %d images, want 1", len(out.Images))
	}
	img := out.Images[0]
	if img.Format != "png" || img.Image == nil {
		t.Errorf("image format/pixels: %q/%v", img.Format, img.Image)
	}
	if img.Metadata.PageNumber != 2 {
		t.Errorf("image page = %d", img.Metadata.PageNumber)
	}
	wantImgBox := BoundingBox{X0: 50, Y0: 392, X1: 150, Y1: 492}
	if img.Metadata.BBox == nil || *img.Metadata.BBox != wantImgBox {
		t.Errorf("image bbox = %+v, want %+v", img.Metadata.BBox, wantImgBox)
	}
}

func TestDocling_TextOnlyLeavesRestEmpty(t *testing.T) {
	png := tinyPNG(t)
	be := newDoclingTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, doclingSuccessResponse(t, png))
	})

	out, err := be.Parse(context.Background(), doclingTestDoc(t), Modalities{ModalityText})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if out.Text == nil {
		t.Error("text missing")
	}
	if len(out.Tables) != 0 || len(out.Images) != 0 {
		t.Errorf("unrequested modalities populated: %d tables, %d images", len(out.Tables), len(out.Images))
	}
}

func TestDocling_ConversionFailure(t *testing.T) {
	be := newDoclingTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status": "failure",
			"errors": []string{"unsupported encryption"},
		})
	})

	_, err := be.Parse(context.Background(), doclingTestDoc(t), Modalities{ModalityText})
	var beErr *BackendError
	if !errors.As(err, &beErr) {
		t.Fatalf("got %v, want *BackendError", err)
	}
	if beErr.Backend != BackendDocling {
		t.Errorf("Backend = %q", beErr.Backend)
	}
}

func TestDocling_ServerError(t *testing.T) {
	be := newDoclingTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "out of memory", http.StatusInternalServerError)
	})

	_, err := be.Parse(context.Background(), doclingTestDoc(t), Modalities{ModalityText})
	var beErr *BackendError
	if !errors.As(err, &beErr) {
		t.Fatalf("got %v, want *BackendError", err)
	}
}
