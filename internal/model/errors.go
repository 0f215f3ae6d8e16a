package model

import (
	"errors"
	"fmt"
)

// ErrProvenanceNotFound is returned while locating a symbol's file when no
// configured source root contains it. The pipeline absorbs it.
var ErrProvenanceNotFound = errors.New("source file not found under any source path")

// SourceReadError reports an unreadable or malformed source file.
type SourceReadError struct {
	Path string
	Err  error
}

func (e *SourceReadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("failed to read source %s", e.Path)
	}
	return fmt.Sprintf("failed to read source %s: %v", e.Path, e.Err)
}

func (e *SourceReadError) Unwrap() error {
	return e.Err
}

// RendererResolutionError reports a writer name missing from the registry.
type RendererResolutionError struct {
	Name string
}

func (e *RendererResolutionError) Error() string {
	return fmt.Sprintf("could not resolve writer %q", e.Name)
}

// CommitLookupError reports a failed repository commit lookup.
type CommitLookupError struct {
	Dir string
	Err error
}

func (e *CommitLookupError) Error() string {
	return fmt.Sprintf("failed to determine git commit in %s: %v", e.Dir, e.Err)
}

func (e *CommitLookupError) Unwrap() error {
	return e.Err
}
