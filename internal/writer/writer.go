// Package writer renders an assembled documentation model. Writers are
// resolved by name from a Registry.
package writer

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/mvp-joe/docsmith/internal/model"
)

// DefaultWriter is used when no writer is configured.
const DefaultWriter = "markdown"

// Writer renders one run's documentation model.
type Writer interface {
	Write(ctx context.Context, input model.RenderInput) error
}

// Func adapts a function to the Writer interface.
type Func func(ctx context.Context, input model.RenderInput) error

// Write calls f.
func (f Func) Write(ctx context.Context, input model.RenderInput) error {
	return f(ctx, input)
}

// Registry maps writer names to writers.
type Registry struct {
	mu      sync.RWMutex
	writers map[string]Writer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{writers: make(map[string]Writer)}
}

// NewDefaultRegistry creates a registry holding every built-in writer.
func NewDefaultRegistry(logger *slog.Logger) *Registry {
	r := NewRegistry()
	r.Register("markdown", NewMarkdownWriter(logger))
	r.Register("json", NewJSONWriter(logger))
	r.Register("sqlite", NewSQLiteWriter(logger))
	r.Register("bleve", NewBleveWriter(logger))
	return r
}

// Register adds or replaces the writer stored under name.
func (r *Registry) Register(name string, w Writer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writers[name] = w
}

// Get resolves a writer by name. An empty name selects DefaultWriter.
func (r *Registry) Get(name string) (Writer, error) {
	if name == "" {
		name = DefaultWriter
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.writers[name]
	if !ok {
		return nil, &model.RendererResolutionError{Name: name}
	}
	return w, nil
}

// Names lists the registered writer names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.writers))
	for name := range r.writers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// visible drops namespaces, symbols and members flagged NoDoc.
func visible(namespaces []model.Namespace) []model.Namespace {
	out := make([]model.Namespace, 0, len(namespaces))
	for _, ns := range namespaces {
		if ns.NoDoc {
			continue
		}
		ns.Publics = visibleSymbols(ns.Publics)
		out = append(out, ns)
	}
	return out
}

func visibleSymbols(symbols []model.Symbol) []model.Symbol {
	out := make([]model.Symbol, 0, len(symbols))
	for _, sym := range symbols {
		if sym.NoDoc {
			continue
		}
		sym.Members = visibleSymbols(sym.Members)
		out = append(out, sym)
	}
	return out
}
