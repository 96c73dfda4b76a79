package pdfparse

import (
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// config holds internal configuration shared by all backends.
type config struct {
	apiKey       string
	baseURL      string
	model        string
	maxTokens    int
	httpClient   *http.Client
	timeout      time.Duration
	renderDPI    float64
	pollInterval time.Duration
	retryBackoff time.Duration
	logger       logrus.FieldLogger
}

func defaultConfig() config {
	silent := logrus.New()
	silent.SetOutput(io.Discard)
	return config{
		httpClient:   http.DefaultClient,
		maxTokens:    4096,
		renderDPI:    150,
		pollInterval: time.Second,
		retryBackoff: 1500 * time.Millisecond,
		logger:       silent,
	}
}

// Option configures a [Parser].
type Option func(*config)

// WithAPIKey sets the credential for a hosted backend. When unset, the
// backend's environment variable is consulted instead (ANTHROPIC_API_KEY,
// OPENAI_API_KEY, LLAMA_CLOUD_API_KEY).
func WithAPIKey(key string) Option {
	return func(c *config) {
		c.apiKey = key
	}
}

// WithBaseURL overrides the service endpoint of an HTTP backend. The
// docling backend defaults to http://localhost:5001; the LlamaParse
// backend defaults to its public cloud endpoint.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithModel selects the model used by a hosted-model backend.
func WithModel(model string) Option {
	return func(c *config) {
		c.model = model
	}
}

// WithMaxTokens caps the response size of a hosted-model backend.
// Defaults to 4096.
func WithMaxTokens(n int) Option {
	return func(c *config) {
		c.maxTokens = n
	}
}

// WithHTTPClient sets the HTTP client used by HTTP backends. Useful for
// custom transports, proxies, and tests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the maximum duration for parsing a single document.
// Zero (the default) disables the per-document timeout; cancellation is
// then governed entirely by the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithRenderDPI sets the resolution for backends that rasterize pages
// (the native renderer's image output and the page images sent to
// hosted-model backends). Defaults to 150.
func WithRenderDPI(dpi float64) Option {
	return func(c *config) {
		if dpi > 0 {
			c.renderDPI = dpi
		}
	}
}

// WithPollInterval sets how often the LlamaParse backend polls for job
// completion. Defaults to one second.
func WithPollInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithLogger attaches a structured logger. By default logging is
// discarded.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
