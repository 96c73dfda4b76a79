package pdfparse

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/sirupsen/logrus"
)

// Parser is the facade over the configured backend. It validates inputs,
// checks the requested modalities against the backend's capabilities, and
// forwards each document to the adapter.
//
// A Parser is stateless between calls apart from its configuration, so it
// is reusable. Concurrent calls are safe as long as the underlying engine
// client is safe for concurrent use; the facade adds no synchronization of
// its own around the engine.
//
// Call [Parser.Close] when the Parser is no longer needed. A closed
// Parser rejects further calls with [ErrClosed].
type Parser struct {
	backend backend
	cfg     config

	mu     sync.Mutex
	closed bool
}

// New creates a Parser for the named backend.
//
// Credentials and backend options are validated here: a hosted backend
// without its API key fails immediately with [*ConfigurationError] rather
// than on the first call.
func New(b Backend, opts ...Option) (*Parser, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	factory, ok := backendFactories[b]
	if !ok {
		return nil, &ConfigurationError{Backend: b, Reason: fmt.Sprintf("unknown backend (valid: %v)", Backends())}
	}
	be, err := factory(cfg)
	if err != nil {
		return nil, err
	}
	return &Parser{backend: be, cfg: cfg}, nil
}

// Backend returns the identifier of the selected backend.
func (p *Parser) Backend() Backend {
	return p.backend.Name()
}

// Capabilities returns the modalities the selected backend can produce.
func (p *Parser) Capabilities() Modalities {
	return p.backend.Capabilities()
}

// Close releases all resources held by the Parser. Close is idempotent.
func (p *Parser) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.backend.Close()
}

// Run parses the given documents and returns one [ParserOutput] per input
// path, in input order.
//
// If no modalities are given, everything the backend supports is
// requested. Requesting a modality outside the backend's capability set
// fails with [*UnsupportedModalityError], and a path that does not exist
// fails with [*NotFoundError]; both checks run for the whole batch before
// any engine call is made.
//
// The batch is processed sequentially and fails fast: the first document
// that the engine cannot parse aborts the run with a [*BackendError] and
// no partial output is returned for it.
func (p *Parser) Run(ctx context.Context, paths []string, modalities ...Modality) ([]ParserOutput, error) {
	if err := p.checkClosed(); err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("pdfparse: no input paths")
	}

	mods := Modalities(modalities)
	if len(mods) == 0 {
		mods = p.backend.Capabilities()
	}
	if err := mods.Validate(); err != nil {
		return nil, err
	}
	caps := p.backend.Capabilities()
	for _, m := range mods {
		if !caps.Contains(m) {
			return nil, &UnsupportedModalityError{Backend: p.backend.Name(), Modality: m}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return nil, &NotFoundError{Path: path}
		}
	}

	outputs := make([]ParserOutput, 0, len(paths))
	for _, path := range paths {
		out, err := p.parseOne(ctx, path, mods)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, *out)
	}
	return outputs, nil
}

// parseOne preflights a single document and dispatches it to the backend.
func (p *Parser) parseOne(ctx context.Context, path string, mods Modalities) (*ParserOutput, error) {
	log := p.cfg.logger.WithFields(logrus.Fields{
		"backend": p.backend.Name(),
		"path":    path,
	})

	// Reject malformed PDFs locally before the engine sees them. Hosted
	// backends in particular should not be handed bytes pdfcpu cannot
	// even count pages in.
	pages, err := api.PageCountFile(path)
	if err != nil {
		return nil, &BackendError{Backend: p.backend.Name(), Err: fmt.Errorf("not a readable PDF: %w", err)}
	}
	log.WithField("pages", pages).Debug("parsing document")

	if p.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.timeout)
		defer cancel()
	}

	out, err := p.backend.Parse(ctx, path, mods)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"tables": len(out.Tables),
		"images": len(out.Images),
	}).Info("document parsed")
	return out, nil
}

func (p *Parser) checkClosed() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	return nil
}

// --- Package-level convenience function ---

// Run parses documents with a temporary [Parser]. This is convenient for
// one-off batches; for repeated use create a Parser with [New] so hosted
// clients and engine handles are reused.
func Run(ctx context.Context, b Backend, paths []string, modalities Modalities, opts ...Option) ([]ParserOutput, error) {
	p, err := New(b, opts...)
	if err != nil {
		return nil, err
	}
	defer p.Close()
	return p.Run(ctx, paths, modalities...)
}
