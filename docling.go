package pdfparse

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const defaultDoclingURL = "http://localhost:5001"

// doclingBackend adapts a docling-serve instance: a layout-aware parser
// that returns a markdown export plus structured table and picture items.
// Docling reports boxes in PDF coordinates (bottom-left origin); the
// adapter flips them into the library's top-left convention using the
// page size docling reports alongside.
type doclingBackend struct {
	cfg     config
	baseURL string
}

func newDoclingBackend(cfg config) (backend, error) {
	baseURL := cfg.baseURL
	if baseURL == "" {
		baseURL = defaultDoclingURL
	}
	return &doclingBackend{cfg: cfg, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (d *doclingBackend) Name() Backend { return BackendDocling }

func (d *doclingBackend) Capabilities() Modalities {
	return AllModalities()
}

func (d *doclingBackend) Close() error { return nil }

// Wire types for the docling-serve convert response. Only the fields the
// adapter maps are declared.

type doclingResponse struct {
	Status   string   `json:"status"`
	Errors   []string `json:"errors"`
	Document struct {
		MarkdownContent string          `json:"md_content"`
		JSONContent     doclingDocument `json:"json_content"`
	} `json:"document"`
}

type doclingDocument struct {
	Tables   []doclingItem          `json:"tables"`
	Pictures []doclingItem          `json:"pictures"`
	Pages    map[string]doclingPage `json:"pages"`
}

type doclingItem struct {
	Data *struct {
		Grid [][]doclingCell `json:"grid"`
	} `json:"data,omitempty"`
	Image *struct {
		URI string `json:"uri"`
	} `json:"image,omitempty"`
	Prov []doclingProv `json:"prov"`
}

type doclingCell struct {
	Text string `json:"text"`
}

type doclingProv struct {
	PageNo int `json:"page_no"`
	BBox   *struct {
		L           float64 `json:"l"`
		T           float64 `json:"t"`
		R           float64 `json:"r"`
		B           float64 `json:"b"`
		CoordOrigin string  `json:"coord_origin"`
	} `json:"bbox"`
}

type doclingPage struct {
	Size struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	} `json:"size"`
}

func (d *doclingBackend) Parse(ctx context.Context, path string, modalities Modalities) (*ParserOutput, error) {
	resp, err := d.convert(ctx, path)
	if err != nil {
		return nil, &BackendError{Backend: BackendDocling, Err: err}
	}
	if resp.Status != "success" {
		return nil, &BackendError{Backend: BackendDocling, Err: fmt.Errorf("conversion failed: %s", strings.Join(resp.Errors, "; "))}
	}

	doc := resp.Document
	out := &ParserOutput{}

	if modalities.Contains(ModalityText) {
		out.Text = &TextElement{Text: doc.MarkdownContent}
	}

	if modalities.Contains(ModalityTables) {
		for _, item := range doc.JSONContent.Tables {
			rows := gridToRows(item)
			if len(rows) == 0 {
				continue
			}
			out.Tables = append(out.Tables, TableElement{
				Markdown: MarkdownTable(rows),
				Rows:     rows,
				Metadata: d.metadata(item.Prov, doc.JSONContent.Pages),
			})
		}
	}

	if modalities.Contains(ModalityImages) {
		for _, item := range doc.JSONContent.Pictures {
			if item.Image == nil {
				// Docling only embeds picture data when image generation
				// is enabled server-side; never substitute placeholders.
				continue
			}
			data, err := decodeDataURI(item.Image.URI)
			if err != nil {
				return nil, &BackendError{Backend: BackendDocling, Err: fmt.Errorf("picture data: %w", err)}
			}
			img, err := decodeImage(data, d.metadata(item.Prov, doc.JSONContent.Pages))
			if err != nil {
				return nil, &BackendError{Backend: BackendDocling, Err: fmt.Errorf("decoding picture: %w", err)}
			}
			out.Images = append(out.Images, img)
		}
	}

	return out, nil
}

// convert uploads one document to the docling-serve convert endpoint.
func (d *doclingBackend) convert(ctx context.Context, path string) (*doclingResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("files", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	for field, value := range map[string]string{
		"to_formats":        "json",
		"image_export_mode": "embedded",
	} {
		if err := mw.WriteField(field, value); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/v1alpha/convert/file", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	httpResp, err := d.cfg.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("docling-serve request: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(httpResp.Body, 4096))
		return nil, fmt.Errorf("docling-serve returned %s: %s", httpResp.Status, strings.TrimSpace(string(msg)))
	}

	var resp doclingResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decoding docling-serve response: %w", err)
	}
	return &resp, nil
}

// metadata maps a docling provenance entry to the shared Metadata,
// normalizing bottom-left boxes against the page height.
func (d *doclingBackend) metadata(prov []doclingProv, pages map[string]doclingPage) Metadata {
	if len(prov) == 0 {
		return Metadata{}
	}
	p := prov[0]
	meta := Metadata{PageNumber: p.PageNo}
	if p.BBox == nil {
		return meta
	}
	if p.BBox.CoordOrigin == "BOTTOMLEFT" {
		pageHeight := pages[strconv.Itoa(p.PageNo)].Size.Height
		bb := boundingBoxFromBottomLeft(p.BBox.L, p.BBox.T, p.BBox.R, p.BBox.B, pageHeight)
		meta.BBox = &bb
	} else {
		meta.BBox = &BoundingBox{X0: p.BBox.L, Y0: p.BBox.T, X1: p.BBox.R, Y1: p.BBox.B}
	}
	return meta
}

// gridToRows flattens a docling table grid into plain cell text.
func gridToRows(item doclingItem) [][]string {
	if item.Data == nil {
		return nil
	}
	rows := make([][]string, 0, len(item.Data.Grid))
	for _, gridRow := range item.Data.Grid {
		row := make([]string, 0, len(gridRow))
		for _, cell := range gridRow {
			row = append(row, cell.Text)
		}
		rows = append(rows, row)
	}
	return rows
}

// decodeDataURI extracts the payload of a base64 data: URI.
func decodeDataURI(uri string) ([]byte, error) {
	_, payload, ok := strings.Cut(uri, ";base64,")
	if !ok {
		return nil, fmt.Errorf("unsupported image URI %q", truncate(uri, 40))
	}
	return base64.StdEncoding.DecodeString(payload)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
