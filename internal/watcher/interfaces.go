// Package watcher drives watch mode: it watches source and document
// directories plus .git/HEAD and asks a Generator to rebuild the docs.
package watcher

import "context"

// FileWatcher monitors source files for changes with debouncing and pause/resume support.
type FileWatcher interface {
	// Start begins watching directories, calling callback with debounced file changes.
	Start(ctx context.Context, callback func(files []string)) error

	// Stop stops the file watcher and cleans up resources.
	Stop() error

	// Pause stops firing callbacks but continues accumulating events.
	Pause()

	// Resume resumes firing callbacks. If events accumulated during pause, fires immediately.
	Resume()
}

// GitWatcher monitors .git/HEAD and branch refs for checkouts and new commits.
type GitWatcher interface {
	// Start begins watching, calling callback when the branch or commit changes.
	Start(ctx context.Context, callback func(old, new Head)) error

	// Stop stops the watcher and cleans up resources.
	Stop() error
}

// Generator rebuilds the documentation.
type Generator interface {
	// Generate runs a full extraction. changed lists the files that
	// triggered the run; it is empty when HEAD moved.
	Generate(ctx context.Context, changed []string) error
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, changed []string) error

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, changed []string) error {
	return f(ctx, changed)
}
