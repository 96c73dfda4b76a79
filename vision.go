package pdfparse

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gen2brain/go-fitz"
	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/openai"
)

// visionPrompt instructs the model to return extraction results as strict
// JSON. One page image is sent per request.
const visionPrompt = `You receive a single PDF page as an image. Extract:
1) All legible text as a single string in "text_content".
2) Every table as a GitHub-flavored markdown table in "tables[].markdown".
If you can locate a table on the page, add an approximate pixel bounding
box as "bbox": [x1, y1, x2, y2] measured from the top-left corner.
Respond with valid JSON only, matching:
{"text_content": string, "tables": [{"markdown": string, "bbox": [number, number, number, number]}]}
No explanations, no code fences.`

const (
	defaultAnthropicModel = "claude-3-5-sonnet-latest"
	defaultOpenAIModel    = "gpt-4o-mini"
	visionRetries         = 3
)

// visionBackend adapts hosted vision models to the shared schema. Each
// page is rasterized with MuPDF and sent to the model together with an
// extraction prompt; the model's JSON reply is mapped into text and table
// elements. Vision models return no pixel data, so the capability set is
// text and tables only.
type visionBackend struct {
	name Backend
	cfg  config
	llm  llms.Model
	// OpenAI-compatible APIs want data URLs, Anthropic wants raw binary
	// parts.
	useImageURL bool
}

func newAnthropicBackend(cfg config) (backend, error) {
	key := cfg.apiKey
	if key == "" {
		key = os.Getenv("ANTHROPIC_API_KEY")
	}
	if key == "" {
		return nil, &ConfigurationError{
			Backend: BackendAnthropic,
			Reason:  "missing API key (set ANTHROPIC_API_KEY or use WithAPIKey)",
		}
	}
	model := cfg.model
	if model == "" {
		model = defaultAnthropicModel
	}
	llm, err := anthropic.New(anthropic.WithToken(key), anthropic.WithModel(model))
	if err != nil {
		return nil, &ConfigurationError{Backend: BackendAnthropic, Reason: fmt.Sprintf("creating client: %v", err)}
	}
	return &visionBackend{name: BackendAnthropic, cfg: cfg, llm: llm}, nil
}

func newOpenAIBackend(cfg config) (backend, error) {
	key := cfg.apiKey
	if key == "" {
		key = os.Getenv("OPENAI_API_KEY")
	}
	if key == "" {
		return nil, &ConfigurationError{
			Backend: BackendOpenAI,
			Reason:  "missing API key (set OPENAI_API_KEY or use WithAPIKey)",
		}
	}
	model := cfg.model
	if model == "" {
		model = defaultOpenAIModel
	}
	clientOpts := []openai.Option{openai.WithToken(key), openai.WithModel(model)}
	if cfg.baseURL != "" {
		clientOpts = append(clientOpts, openai.WithBaseURL(cfg.baseURL))
	}
	llm, err := openai.New(clientOpts...)
	if err != nil {
		return nil, &ConfigurationError{Backend: BackendOpenAI, Reason: fmt.Sprintf("creating client: %v", err)}
	}
	return &visionBackend{name: BackendOpenAI, cfg: cfg, llm: llm, useImageURL: true}, nil
}

func (v *visionBackend) Name() Backend { return v.name }

func (v *visionBackend) Capabilities() Modalities {
	return Modalities{ModalityText, ModalityTables}
}

func (v *visionBackend) Close() error { return nil }

// visionResult is the JSON structure the model is asked to produce.
type visionResult struct {
	TextContent string        `json:"text_content"`
	Tables      []visionTable `json:"tables"`
}

type visionTable struct {
	Markdown   string    `json:"markdown"`
	PageNumber int       `json:"page_number"`
	BBox       []float64 `json:"bbox"`
}

func (v *visionBackend) Parse(ctx context.Context, path string, modalities Modalities) (*ParserOutput, error) {
	if modalities.Contains(ModalityImages) {
		return nil, &UnsupportedModalityError{Backend: v.name, Modality: ModalityImages}
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, &BackendError{Backend: v.name, Err: fmt.Errorf("opening document: %w", err)}
	}
	defer doc.Close()

	out := &ParserOutput{}
	var text strings.Builder

	for i := 0; i < doc.NumPage(); i++ {
		pageNo := i + 1
		img, err := doc.ImageDPI(i, v.cfg.renderDPI)
		if err != nil {
			return nil, &BackendError{Backend: v.name, Err: fmt.Errorf("page %d render: %w", pageNo, err)}
		}
		data, err := encodePNG(img)
		if err != nil {
			return nil, &BackendError{Backend: v.name, Err: fmt.Errorf("page %d encode: %w", pageNo, err)}
		}

		result, err := v.analyzePage(ctx, data, pageNo)
		if err != nil {
			return nil, &BackendError{Backend: v.name, Err: err}
		}

		if modalities.Contains(ModalityText) {
			fmt.Fprintf(&text, "\n--- Page %d ---\n%s", pageNo, result.TextContent)
		}
		if modalities.Contains(ModalityTables) {
			for _, t := range result.Tables {
				meta := Metadata{PageNumber: pageNo}
				if len(t.BBox) == 4 {
					meta.BBox = &BoundingBox{X0: t.BBox[0], Y0: t.BBox[1], X1: t.BBox[2], Y1: t.BBox[3]}
				}
				out.Tables = append(out.Tables, TableElement{
					Markdown: t.Markdown,
					Rows:     ParseMarkdownTable(t.Markdown),
					Metadata: meta,
				})
			}
		}
	}

	if modalities.Contains(ModalityText) {
		out.Text = &TextElement{Text: text.String()}
	}
	return out, nil
}

// analyzePage sends one page image to the model and decodes its JSON
// reply. Transient model failures are retried with backoff; this is the
// engine client's own behavior, the dispatcher above never retries.
func (v *visionBackend) analyzePage(ctx context.Context, pagePNG []byte, pageNo int) (*visionResult, error) {
	log := v.cfg.logger.WithFields(logrus.Fields{
		"backend": v.name,
		"page":    pageNo,
	})

	var imagePart llms.ContentPart
	if v.useImageURL {
		imagePart = llms.ImageURLPart("data:image/png;base64," + base64.StdEncoding.EncodeToString(pagePNG))
	} else {
		imagePart = llms.BinaryPart("image/png", pagePNG)
	}
	messages := []llms.MessageContent{{
		Role:  llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{imagePart, llms.TextPart(visionPrompt)},
	}}

	var lastErr error
	for attempt := 1; attempt <= visionRetries; attempt++ {
		completion, err := v.llm.GenerateContent(ctx, messages,
			llms.WithMaxTokens(v.cfg.maxTokens),
			llms.WithTemperature(0),
		)
		if err == nil && len(completion.Choices) > 0 {
			result, perr := parseVisionReply(completion.Choices[0].Content)
			if perr == nil {
				return result, nil
			}
			err = perr
		} else if err == nil {
			err = fmt.Errorf("model returned no choices")
		}

		lastErr = err
		log.WithError(err).WithField("attempt", attempt).Debug("vision extraction attempt failed")

		if attempt == visionRetries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * v.cfg.retryBackoff):
		}
	}
	return nil, fmt.Errorf("page %d extraction failed after %d attempts: %w", pageNo, visionRetries, lastErr)
}

// parseVisionReply decodes the model output, tolerating code fences and
// prose around the JSON object.
func parseVisionReply(content string) (*visionResult, error) {
	content = strings.TrimSpace(content)
	if i := strings.Index(content, "{"); i >= 0 {
		if j := strings.LastIndex(content, "}"); j > i {
			content = content[i : j+1]
		}
	}
	var result visionResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("model reply is not valid JSON: %w", err)
	}
	return &result, nil
}
