package pipeline

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mvp-joe/docsmith/internal/model"
)

// locator finds which source root a reader-relative file lives under.
// Lookups are memoized for the duration of one Annotate call.
type locator struct {
	rootPath    string
	sourcePaths []string
	found       map[string]string
}

// locate returns the on-disk path of rel under the first source root that
// contains it, or ErrProvenanceNotFound.
func (l *locator) locate(rel string) (string, error) {
	if rel == "" {
		return "", model.ErrProvenanceNotFound
	}
	if path, ok := l.found[rel]; ok {
		if path == "" {
			return "", model.ErrProvenanceNotFound
		}
		return path, nil
	}

	for _, root := range l.sourcePaths {
		candidate := filepath.Join(root, filepath.FromSlash(rel))
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			l.found[rel] = candidate
			return candidate, nil
		}
	}
	l.found[rel] = ""
	return "", model.ErrProvenanceNotFound
}

// relativeToRoot expresses path relative to the root path, slash separated.
func (l *locator) relativeToRoot(path string) string {
	root, err := filepath.Abs(l.rootPath)
	if err != nil {
		return filepath.ToSlash(path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// Annotate records where every symbol and member was defined. The first
// source root, in configured order, that contains the symbol's file wins.
// Symbols whose file cannot be found lose their provenance; this is logged
// at debug level and is never an error.
func Annotate(logger *slog.Logger, namespaces []model.Namespace, rootPath string, sourcePaths []string) []model.Namespace {
	l := &locator{
		rootPath:    rootPath,
		sourcePaths: sourcePaths,
		found:       make(map[string]string),
	}

	out := make([]model.Namespace, len(namespaces))
	for i, ns := range namespaces {
		out[i] = ns
		out[i].Publics = mapSymbols(ns.Publics, func(sym model.Symbol) model.Symbol {
			path, err := l.locate(sym.File)
			if err != nil {
				logger.Debug("source file not found",
					"var", model.QualifiedName(ns.Name, sym.Name),
					"file", sym.File,
					"error", err)
				sym.File = ""
				sym.Path = ""
				return sym
			}
			sym.Path = path
			sym.File = l.relativeToRoot(path)
			return sym
		})
	}
	return out
}
