// pdfparse extracts text, tables, and images from PDF files through any
// of the supported parsing backends.
//
// Usage:
//
//	pdfparse extract [options] <file.pdf>...
//	pdfparse backends
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	pdfparse "github.com/porticus-lab/go-pdf-parse"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "extract":
		if err := runExtract(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	case "backends":
		runBackends()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`pdfparse - PDF content extraction via pluggable backends

Usage:
  pdfparse extract [options] <file.pdf>...
  pdfparse backends

Commands:
  extract    Extract content from one or more PDF files
  backends   List available backends and their capabilities

Extract options:
  -b <backend>    Backend: docling, fitz, llamaparse, anthropic, openai (default: fitz)
  -m <list>       Modalities, comma separated: text,tables,images (default: all supported)
  -f <format>     Output format: markdown, json (default: markdown)
  -o <dir>        Write one output file per input into <dir> (default: stdout)
  -v              Verbose logging

Hosted backends read ANTHROPIC_API_KEY, OPENAI_API_KEY, or
LLAMA_CLOUD_API_KEY from the environment.

Examples:
  pdfparse extract report.pdf
  pdfparse extract -b docling -m text,tables -f json report.pdf
  pdfparse extract -b anthropic -o out/ *.pdf
`)
}

// runExtract implements the "extract" command.
func runExtract(args []string) error {
	var (
		backendName = "fitz"
		modList     string
		format      = "markdown"
		outDir      string
		verbose     bool
		inputs      []string
	)

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-b":
			i++
			if i >= len(args) {
				return fmt.Errorf("-b requires an argument")
			}
			backendName = args[i]
		case "-m":
			i++
			if i >= len(args) {
				return fmt.Errorf("-m requires an argument")
			}
			modList = args[i]
		case "-f":
			i++
			if i >= len(args) {
				return fmt.Errorf("-f requires an argument")
			}
			format = args[i]
		case "-o":
			i++
			if i >= len(args) {
				return fmt.Errorf("-o requires an argument")
			}
			outDir = args[i]
		case "-v":
			verbose = true
		default:
			if strings.HasPrefix(args[i], "-") {
				return fmt.Errorf("unknown option: %s", args[i])
			}
			inputs = append(inputs, args[i])
		}
	}

	if len(inputs) == 0 {
		return fmt.Errorf("no input files specified")
	}

	var modalities []pdfparse.Modality
	if modList != "" {
		for _, m := range strings.Split(modList, ",") {
			modalities = append(modalities, pdfparse.Modality(strings.TrimSpace(m)))
		}
	}

	opts := []pdfparse.Option{}
	if verbose {
		logger := logrus.New()
		logger.SetLevel(logrus.DebugLevel)
		opts = append(opts, pdfparse.WithLogger(logger))
	}

	p, err := pdfparse.New(pdfparse.Backend(backendName), opts...)
	if err != nil {
		return err
	}
	defer p.Close()

	outputs, err := p.Run(context.Background(), inputs, modalities...)
	if err != nil {
		return err
	}

	for i, out := range outputs {
		w := os.Stdout
		if outDir != "" {
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("creating output dir: %w", err)
			}
			base := strings.TrimSuffix(filepath.Base(inputs[i]), filepath.Ext(inputs[i]))
			ext := ".md"
			if format == "json" {
				ext = ".json"
			}
			f, err := os.Create(filepath.Join(outDir, base+ext))
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			w = f
		}

		switch format {
		case "json":
			if err := writeJSON(w, &out); err != nil {
				return err
			}
		case "markdown":
			if err := out.WriteMarkdown(w); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown format: %s", format)
		}

		if w != os.Stdout {
			if err := w.Close(); err != nil {
				return err
			}
		} else if i < len(outputs)-1 {
			fmt.Fprintln(w, "\f")
		}
	}
	return nil
}

// jsonOutput mirrors ParserOutput without raw pixel data.
type jsonOutput struct {
	Text   string      `json:"text,omitempty"`
	Tables []jsonTable `json:"tables,omitempty"`
	Images []jsonImage `json:"images,omitempty"`
}

type jsonTable struct {
	Markdown string     `json:"markdown"`
	Rows     [][]string `json:"rows,omitempty"`
	Page     int        `json:"page,omitempty"`
	BBox     []float64  `json:"bbox,omitempty"`
}

type jsonImage struct {
	Format string    `json:"format"`
	Bytes  int       `json:"bytes"`
	Page   int       `json:"page,omitempty"`
	BBox   []float64 `json:"bbox,omitempty"`
}

func writeJSON(w *os.File, out *pdfparse.ParserOutput) error {
	j := jsonOutput{}
	if out.Text != nil {
		j.Text = out.Text.Text
	}
	for _, t := range out.Tables {
		j.Tables = append(j.Tables, jsonTable{
			Markdown: t.Markdown,
			Rows:     t.Rows,
			Page:     t.Metadata.PageNumber,
			BBox:     bboxSlice(t.Metadata.BBox),
		})
	}
	for _, img := range out.Images {
		j.Images = append(j.Images, jsonImage{
			Format: img.Format,
			Bytes:  len(img.Data),
			Page:   img.Metadata.PageNumber,
			BBox:   bboxSlice(img.Metadata.BBox),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(j)
}

func bboxSlice(b *pdfparse.BoundingBox) []float64 {
	if b == nil {
		return nil
	}
	return []float64{b.X0, b.Y0, b.X1, b.Y1}
}

// runBackends implements the "backends" command.
func runBackends() {
	caps := map[pdfparse.Backend]string{
		pdfparse.BackendDocling:    "text, tables, images (local docling-serve)",
		pdfparse.BackendFitz:       "text, images (local MuPDF)",
		pdfparse.BackendLlamaParse: "text, tables, images (hosted)",
		pdfparse.BackendAnthropic:  "text, tables (hosted vision)",
		pdfparse.BackendOpenAI:     "text, tables (hosted vision)",
	}
	for _, b := range pdfparse.Backends() {
		fmt.Printf("  %-12s %s\n", b, caps[b])
	}
}
