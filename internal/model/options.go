package model

import (
	"regexp"
	"sync"
)

// Lazy is a compute-once cell. The function runs on the first Get and its
// result, error included, is returned by every later call.
type Lazy[T any] struct {
	once sync.Once
	fn   func() (T, error)
	val  T
	err  error
}

// NewLazy wraps fn in a deferred, memoized cell.
func NewLazy[T any](fn func() (T, error)) *Lazy[T] {
	return &Lazy[T]{fn: fn}
}

// Resolved returns a cell already holding v.
func Resolved[T any](v T) *Lazy[T] {
	return NewLazy(func() (T, error) { return v, nil })
}

// Get computes the value on first use.
func (l *Lazy[T]) Get() (T, error) {
	l.once.Do(func() {
		l.val, l.err = l.fn()
		l.fn = nil
	})
	return l.val, l.err
}

// DocFiles selects free-form documents: every file under the document
// directories, or an explicit ordered list.
type DocFiles struct {
	files []string
}

// AllDocFiles selects every document found under the document directories.
func AllDocFiles() DocFiles {
	return DocFiles{}
}

// ListedDocFiles selects exactly the given files, in order. An empty list
// selects nothing.
func ListedDocFiles(files ...string) DocFiles {
	listed := make([]string, len(files))
	copy(listed, files)
	return DocFiles{files: listed}
}

// IsAll reports whether every document should be discovered.
func (d DocFiles) IsAll() bool {
	return d.files == nil
}

// Files returns the explicit list, nil for the All selection.
func (d DocFiles) Files() []string {
	if d.files == nil {
		return nil
	}
	files := make([]string, len(d.files))
	copy(files, d.files)
	return files
}

// Project describes the documented project for writers.
type Project struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
}

// Options configures one extraction run. It is built once and only read
// afterwards; slices and maps must not be modified by consumers.
type Options struct {
	Language    string
	RootPath    string
	SourcePaths []string
	Namespaces  Selector
	ExcludeVars *regexp.Regexp
	DocPaths    []string
	DocFiles    DocFiles
	Metadata    map[string]string

	Writer           string
	OutputPath       string
	SourceURI        string
	LineAnchorPrefix string
	GitCommit        *Lazy[string]

	Project Project
}

// Commit returns the repository commit, computing it on first use. An
// Options without a commit cell yields an empty commit.
func (o Options) Commit() (string, error) {
	if o.GitCommit == nil {
		return "", nil
	}
	return o.GitCommit.Get()
}
