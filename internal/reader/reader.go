// Package reader turns source trees into raw namespace records, one adapter
// per supported dialect, using tree-sitter grammars.
package reader

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/mvp-joe/docsmith/internal/model"
)

// Reader reads the namespaces defined under a set of source roots.
type Reader interface {
	Read(ctx context.Context, sourcePaths []string, opts Options) ([]model.Namespace, error)
}

// Options tunes a read pass.
type Options struct {
	// Ignore lists glob patterns skipped under every source root.
	// Nil selects DefaultIgnorePatterns.
	Ignore []string

	// Cache shares file contents between passes of the same run.
	Cache *SourceCache

	// OnFile, when set, is called after each source file is read.
	OnFile func(path string)
}

func (o Options) ignorePatterns() []string {
	if o.Ignore == nil {
		return DefaultIgnorePatterns
	}
	return o.Ignore
}

// Dialect pairs a primary reader with an optional macro reader for languages
// whose primary reader cannot see macros.
type Dialect struct {
	Name       string
	Extensions []string
	Primary    Reader
	Macros     Reader
}

// Dialects returns the supported dialects keyed by language name.
func Dialects() map[string]Dialect {
	return map[string]Dialect{
		"rust": {
			Name:       "rust",
			Extensions: []string{".rs"},
			Primary:    NewRustReader(),
		},
		"c": {
			Name:       "c",
			Extensions: []string{".h"},
			Primary:    NewCReader(),
			Macros:     NewCMacroReader(),
		},
	}
}

// ForLanguage returns the dialect registered under name.
func ForLanguage(name string) (Dialect, error) {
	d, ok := Dialects()[name]
	if !ok {
		return Dialect{}, fmt.Errorf("unsupported language %q (supported: %v)", name, SupportedLanguages())
	}
	return d, nil
}

// SupportedLanguages lists the dialect names in sorted order.
func SupportedLanguages() []string {
	dialects := Dialects()
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// fileReader extracts namespaces from a single parsed file. rel is the
// slash-separated path of the file relative to its source root.
type fileReader interface {
	includePatterns() []string
	readFile(rel string, source []byte) ([]model.Namespace, error)
}

// readSourceTree drives a fileReader over every matching file under each
// source root, in root order and lexical file order.
func readSourceTree(_ context.Context, fr fileReader, sourcePaths []string, opts Options) ([]model.Namespace, error) {
	discovery, err := NewFileDiscovery(fr.includePatterns(), opts.ignorePatterns())
	if err != nil {
		return nil, fmt.Errorf("invalid file pattern: %w", err)
	}

	var namespaces []model.Namespace
	for _, root := range sourcePaths {
		files, err := discovery.Discover(root)
		if err != nil {
			return nil, &model.SourceReadError{Path: root, Err: err}
		}

		for _, rel := range files {
			path := filepath.Join(root, filepath.FromSlash(rel))
			source, err := opts.Cache.ReadFile(path)
			if err != nil {
				return nil, &model.SourceReadError{Path: path, Err: err}
			}

			found, err := fr.readFile(rel, source)
			if err != nil {
				return nil, &model.SourceReadError{Path: path, Err: err}
			}
			namespaces = append(namespaces, found...)

			if opts.OnFile != nil {
				opts.OnFile(path)
			}
		}
	}
	return namespaces, nil
}
