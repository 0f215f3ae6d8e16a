// Package pipeline assembles the documentation model: it reads namespaces,
// merges, filters and annotates them, loads documents and hands the result
// to a writer.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mvp-joe/docsmith/internal/documents"
	"github.com/mvp-joe/docsmith/internal/model"
	"github.com/mvp-joe/docsmith/internal/reader"
	"github.com/mvp-joe/docsmith/internal/writer"
)

// Reader pass names reported to the ProgressReporter.
const (
	PassSource = "source"
	PassMacros = "macros"
)

// Pipeline runs extraction for one set of options at a time. Runs share no
// state, so a Pipeline may be reused, e.g. by watch mode.
type Pipeline struct {
	dialects map[string]reader.Dialect
	writers  *writer.Registry
	docs     *documents.Loader
	logger   *slog.Logger
	progress ProgressReporter
	ignore   []string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used by every stage.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithProgress configures progress reporting.
func WithProgress(progress ProgressReporter) Option {
	return func(p *Pipeline) {
		p.progress = progress
	}
}

// WithWriters replaces the writer registry.
func WithWriters(writers *writer.Registry) Option {
	return func(p *Pipeline) {
		p.writers = writers
	}
}

// WithDialects replaces the dialect table.
func WithDialects(dialects map[string]reader.Dialect) Option {
	return func(p *Pipeline) {
		p.dialects = dialects
	}
}

// WithIgnorePatterns sets the globs skipped under every source root.
func WithIgnorePatterns(patterns []string) Option {
	return func(p *Pipeline) {
		p.ignore = patterns
	}
}

// New creates a pipeline with the built-in dialects and writers.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		progress: &NoOpProgressReporter{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.dialects == nil {
		p.dialects = reader.Dialects()
	}
	if p.writers == nil {
		p.writers = writer.NewDefaultRegistry(p.logger)
	}
	if p.progress == nil {
		p.progress = &NoOpProgressReporter{}
	}
	p.docs = documents.NewLoader(p.logger)
	return p
}

// Writers returns the writer registry.
func (p *Pipeline) Writers() *writer.Registry {
	return p.writers
}

// Run assembles the model and renders it with the configured writer. The
// writer is resolved before any source is read.
func (p *Pipeline) Run(ctx context.Context, opts model.Options) (*model.RenderInput, error) {
	start := time.Now()

	w, err := p.writers.Get(opts.Writer)
	if err != nil {
		return nil, err
	}

	input, err := p.Assemble(ctx, opts)
	if err != nil {
		return nil, err
	}

	if err := w.Write(ctx, *input); err != nil {
		return nil, fmt.Errorf("failed to write docs: %w", err)
	}

	writerName := opts.Writer
	if writerName == "" {
		writerName = writer.DefaultWriter
	}
	p.progress.OnComplete(&RunStats{
		Namespaces: len(input.Namespaces),
		Symbols:    countSymbols(input.Namespaces),
		Documents:  len(input.Documents),
		Writer:     writerName,
		Duration:   time.Since(start),
	})
	return input, nil
}

// Assemble builds the render input without writing it.
func (p *Pipeline) Assemble(ctx context.Context, opts model.Options) (*model.RenderInput, error) {
	namespaces, err := p.Namespaces(ctx, opts)
	if err != nil {
		return nil, err
	}

	docs, err := p.docs.Load(opts.RootPath, opts.DocPaths, opts.DocFiles)
	if err != nil {
		return nil, err
	}

	return &model.RenderInput{
		RunID:      uuid.New().String(),
		Options:    opts,
		Namespaces: namespaces,
		Documents:  docs,
	}, nil
}

// Namespaces reads, merges, filters, excludes, annotates and applies
// defaults, in that order.
func (p *Pipeline) Namespaces(ctx context.Context, opts model.Options) ([]model.Namespace, error) {
	dialect, ok := p.dialects[opts.Language]
	if !ok {
		return nil, fmt.Errorf("unsupported language %q", opts.Language)
	}

	cache, err := reader.NewSourceCache(0)
	if err != nil {
		return nil, err
	}
	defer cache.Close()

	raw, err := p.read(ctx, PassSource, dialect.Primary, opts.SourcePaths, cache)
	if err != nil {
		return nil, err
	}

	if dialect.Macros != nil {
		macros, err := p.read(ctx, PassMacros, dialect.Macros, opts.SourcePaths, cache)
		if err != nil {
			return nil, err
		}
		raw = append(raw, ExtractMacros(macros)...)
	}

	namespaces := Filter(Merge(raw), opts.Namespaces)

	excluded := make([]model.Namespace, len(namespaces))
	for i, ns := range namespaces {
		excluded[i] = Exclude(p.logger, ns, opts.ExcludeVars)
	}

	annotated := Annotate(p.logger, excluded, opts.RootPath, opts.SourcePaths)
	result := ApplyDefaults(annotated, opts.Metadata)

	p.logger.Debug("assembled namespaces",
		"language", opts.Language,
		"namespaces", len(result),
		"symbols", countSymbols(result))
	return result, nil
}

func (p *Pipeline) read(ctx context.Context, pass string, r reader.Reader, sourcePaths []string, cache *reader.SourceCache) ([]model.Namespace, error) {
	p.progress.OnReadStart(pass)
	files := 0
	namespaces, err := r.Read(ctx, sourcePaths, reader.Options{
		Ignore: p.ignore,
		Cache:  cache,
		OnFile: func(path string) {
			files++
			p.progress.OnFileRead(path)
		},
	})
	if err != nil {
		return nil, err
	}
	p.progress.OnReadComplete(pass, files)
	return namespaces, nil
}

func countSymbols(namespaces []model.Namespace) int {
	n := 0
	for _, ns := range namespaces {
		n += len(ns.Publics)
	}
	return n
}
