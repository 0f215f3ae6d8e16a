package writer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// atomicWriter writes output files through a temp directory and renames
// them into place, so readers never observe a half-written file.
type atomicWriter struct {
	outputDir string
	tempDir   string
	written   map[string]bool
}

// newAtomicWriter prepares outputDir and a clean temp directory inside it.
func newAtomicWriter(outputDir string) (*atomicWriter, error) {
	tempDir := filepath.Join(outputDir, ".tmp")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	// Clean up stale temp files
	if err := os.RemoveAll(tempDir); err != nil {
		return nil, fmt.Errorf("failed to clean temp directory: %w", err)
	}
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	return &atomicWriter{outputDir: outputDir, tempDir: tempDir, written: make(map[string]bool)}, nil
}

// writeFile writes data to rel, a slash-separated path below outputDir.
func (w *atomicWriter) writeFile(rel string, data []byte) error {
	tempPath := filepath.Join(w.tempDir, filepath.Base(rel))
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	finalPath := filepath.Join(w.outputDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(finalPath), 0755); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to create directory for %s: %w", rel, err)
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		// Clean up temp file on error
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	w.written[finalPath] = true
	return nil
}

// prune deletes files under the given subdirectories of outputDir that
// were not written through w, then removes directories left empty.
func (w *atomicWriter) prune(dirs ...string) error {
	for _, dir := range dirs {
		root := filepath.Join(w.outputDir, filepath.FromSlash(dir))
		if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
			continue
		}

		var subdirs []string
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				subdirs = append(subdirs, path)
				return nil
			}
			if !w.written[path] {
				return os.Remove(path)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to prune %s: %w", dir, err)
		}

		// Deepest first; non-empty directories stay.
		for i := len(subdirs) - 1; i >= 0; i-- {
			if entries, err := os.ReadDir(subdirs[i]); err == nil && len(entries) == 0 {
				os.Remove(subdirs[i])
			}
		}
	}
	return nil
}

// close removes the temp directory.
func (w *atomicWriter) close() error {
	return os.RemoveAll(w.tempDir)
}
