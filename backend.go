package pdfparse

import "context"

// Backend identifies one of the supported parsing engines.
type Backend string

const (
	// BackendDocling uses a docling-serve instance: a local layout-aware
	// parser with table structure recognition and picture extraction.
	BackendDocling Backend = "docling"
	// BackendFitz uses MuPDF through go-fitz: fast native text extraction
	// and page rasterization, no table detection.
	BackendFitz Backend = "fitz"
	// BackendLlamaParse uses the hosted LlamaParse API.
	BackendLlamaParse Backend = "llamaparse"
	// BackendAnthropic sends rasterized pages to an Anthropic vision
	// model. Text and tables only.
	BackendAnthropic Backend = "anthropic"
	// BackendOpenAI sends rasterized pages to an OpenAI vision model.
	// Text and tables only.
	BackendOpenAI Backend = "openai"
)

// Backends returns all supported backend identifiers.
func Backends() []Backend {
	return []Backend{BackendDocling, BackendFitz, BackendLlamaParse, BackendAnthropic, BackendOpenAI}
}

// backend is the adapter contract: translate one engine's native output
// for a single document into the shared schema. Adapters hold no state
// across calls beyond their configuration and engine handle.
type backend interface {
	// Name returns the backend identifier.
	Name() Backend
	// Capabilities returns the modalities this backend can produce.
	Capabilities() Modalities
	// Parse runs the engine on one document and maps the result. Only
	// the requested modalities are populated. Engine failures are
	// returned as *BackendError.
	Parse(ctx context.Context, path string, modalities Modalities) (*ParserOutput, error)
	// Close releases engine resources. Safe to call more than once.
	Close() error
}

// backendFactories maps each identifier to its adapter constructor.
// Construction validates credentials and options and fails with
// *ConfigurationError before any document is touched.
var backendFactories = map[Backend]func(config) (backend, error){
	BackendDocling:    newDoclingBackend,
	BackendFitz:       newFitzBackend,
	BackendLlamaParse: newLlamaBackend,
	BackendAnthropic:  newAnthropicBackend,
	BackendOpenAI:     newOpenAIBackend,
}
