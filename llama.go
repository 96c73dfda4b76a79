package pdfparse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultLlamaURL = "https://api.cloud.llamaindex.ai"

// llamaBackend adapts the hosted LlamaParse API. Parsing is asynchronous
// on the service side: upload, poll the job, then fetch the JSON result
// and any page screenshots. LlamaParse reports image positions in page
// pixels with a top-left origin, which is already the library convention.
type llamaBackend struct {
	cfg     config
	baseURL string
	apiKey  string
}

func newLlamaBackend(cfg config) (backend, error) {
	key := cfg.apiKey
	if key == "" {
		key = os.Getenv("LLAMA_CLOUD_API_KEY")
	}
	if key == "" {
		return nil, &ConfigurationError{
			Backend: BackendLlamaParse,
			Reason:  "missing API key (set LLAMA_CLOUD_API_KEY or use WithAPIKey)",
		}
	}
	baseURL := cfg.baseURL
	if baseURL == "" {
		baseURL = defaultLlamaURL
	}
	return &llamaBackend{cfg: cfg, baseURL: strings.TrimSuffix(baseURL, "/"), apiKey: key}, nil
}

func (l *llamaBackend) Name() Backend { return BackendLlamaParse }

func (l *llamaBackend) Capabilities() Modalities {
	return AllModalities()
}

func (l *llamaBackend) Close() error { return nil }

// Wire types for the LlamaParse result JSON.

type llamaJob struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error_message"`
}

type llamaResult struct {
	Pages []llamaPage `json:"pages"`
}

type llamaPage struct {
	Page   int          `json:"page"`
	Text   string       `json:"text"`
	Md     string       `json:"md"`
	Items  []llamaItem  `json:"items"`
	Images []llamaImage `json:"images"`
}

type llamaItem struct {
	Type string     `json:"type"`
	Md   string     `json:"md"`
	Rows [][]string `json:"rows,omitempty"`
	BBox *struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
		W float64 `json:"w"`
		H float64 `json:"h"`
	} `json:"bBox,omitempty"`
}

type llamaImage struct {
	Name   string  `json:"name"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (l *llamaBackend) Parse(ctx context.Context, path string, modalities Modalities) (*ParserOutput, error) {
	jobID, err := l.upload(ctx, path)
	if err != nil {
		return nil, &BackendError{Backend: BackendLlamaParse, Err: err}
	}
	if err := l.waitForJob(ctx, jobID); err != nil {
		return nil, &BackendError{Backend: BackendLlamaParse, Err: err}
	}

	var result llamaResult
	if err := l.getJSON(ctx, fmt.Sprintf("/api/parsing/job/%s/result/json", jobID), &result); err != nil {
		return nil, &BackendError{Backend: BackendLlamaParse, Err: fmt.Errorf("fetching result: %w", err)}
	}

	out := &ParserOutput{}
	var text strings.Builder

	for _, page := range result.Pages {
		if modalities.Contains(ModalityText) {
			text.WriteString(page.Md)
			text.WriteByte('\n')
		}

		if modalities.Contains(ModalityTables) {
			for _, item := range page.Items {
				if item.Type != "table" {
					continue
				}
				rows := item.Rows
				if rows == nil {
					rows = ParseMarkdownTable(item.Md)
				}
				meta := Metadata{PageNumber: page.Page}
				if item.BBox != nil {
					meta.BBox = &BoundingBox{
						X0: item.BBox.X,
						Y0: item.BBox.Y,
						X1: item.BBox.X + item.BBox.W,
						Y1: item.BBox.Y + item.BBox.H,
					}
				}
				out.Tables = append(out.Tables, TableElement{
					Markdown: item.Md,
					Rows:     rows,
					Metadata: meta,
				})
			}
		}

		if modalities.Contains(ModalityImages) {
			for _, ref := range page.Images {
				data, err := l.getBytes(ctx, fmt.Sprintf("/api/parsing/job/%s/result/image/%s", jobID, ref.Name))
				if err != nil {
					return nil, &BackendError{Backend: BackendLlamaParse, Err: fmt.Errorf("fetching image %s: %w", ref.Name, err)}
				}
				img, err := decodeImage(data, Metadata{
					PageNumber: page.Page,
					BBox: &BoundingBox{
						X0: ref.X,
						Y0: ref.Y,
						X1: ref.X + ref.Width,
						Y1: ref.Y + ref.Height,
					},
				})
				if err != nil {
					return nil, &BackendError{Backend: BackendLlamaParse, Err: fmt.Errorf("decoding image %s: %w", ref.Name, err)}
				}
				out.Images = append(out.Images, img)
			}
		}
	}

	if modalities.Contains(ModalityText) {
		out.Text = &TextElement{Text: text.String()}
	}
	return out, nil
}

// upload posts the document and returns the parse job ID.
func (l *llamaBackend) upload(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+"/api/parsing/upload", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+l.apiKey)

	var job llamaJob
	if err := l.do(req, &job); err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	if job.ID == "" {
		return "", fmt.Errorf("upload: no job ID in response")
	}
	return job.ID, nil
}

// waitForJob polls until the job succeeds, fails, or ctx is done.
func (l *llamaBackend) waitForJob(ctx context.Context, jobID string) error {
	ticker := time.NewTicker(l.cfg.pollInterval)
	defer ticker.Stop()

	for {
		var job llamaJob
		if err := l.getJSON(ctx, "/api/parsing/job/"+jobID, &job); err != nil {
			return fmt.Errorf("polling job %s: %w", jobID, err)
		}
		switch job.Status {
		case "SUCCESS", "COMPLETED":
			return nil
		case "ERROR", "CANCELED":
			return fmt.Errorf("job %s failed: %s", jobID, job.Error)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *llamaBackend) getJSON(ctx context.Context, endpoint string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+l.apiKey)
	return l.do(req, v)
}

func (l *llamaBackend) getBytes(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+l.apiKey)

	resp, err := l.cfg.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %s", endpoint, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func (l *llamaBackend) do(req *http.Request, v any) error {
	resp, err := l.cfg.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s returned %s: %s", req.Method, req.URL.Path, resp.Status, strings.TrimSpace(string(msg)))
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
