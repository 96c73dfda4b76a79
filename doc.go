// Package pdfparse extracts text, tables, and images from PDF documents
// through a single facade over interchangeable parsing backends.
//
// Each backend wraps a third-party engine; the library's job is dispatch
// and normalization. Whatever coordinate system, table representation,
// and image format an engine uses natively, the result is mapped into one
// typed schema.
//
// # Basic usage
//
// Create a [Parser] for a backend, then run it over one or more files:
//
//	p, err := pdfparse.New(pdfparse.BackendFitz)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	outputs, err := p.Run(ctx, []string{"report.pdf"}, pdfparse.ModalityText)
//
// Each [ParserOutput] holds the requested modalities for one document:
//
//	outputs[0].Text.Text        // concatenated document text
//	outputs[0].Tables[0].Markdown
//	outputs[0].Tables[0].Rows   // the same table as a cell grid
//	outputs[0].Images[0].Image  // decoded pixels
//
// # Backends
//
//   - [BackendDocling]: docling-serve, layout-aware, text + tables + images
//   - [BackendFitz]: MuPDF, text + full-page images
//   - [BackendLlamaParse]: LlamaParse cloud API, text + tables + images
//   - [BackendAnthropic]: Anthropic vision model, text + tables
//   - [BackendOpenAI]: OpenAI vision model, text + tables
//
// Hosted backends read their credential from the environment
// (ANTHROPIC_API_KEY, OPENAI_API_KEY, LLAMA_CLOUD_API_KEY) or from
// [WithAPIKey], and fail at construction when it is missing.
//
// # Errors
//
// Four error kinds cover every failure: [*NotFoundError] for missing
// input files, [*ConfigurationError] for invalid construction,
// [*UnsupportedModalityError] for modalities outside a backend's
// capability set, and [*BackendError] wrapping engine failures. Modality
// and path validation run before any engine call; batches fail fast on
// the first document error, and no partial output is returned for a
// failed document.
package pdfparse
