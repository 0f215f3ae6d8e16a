package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for FileWatcher:
// - NewFileWatcher creates watcher successfully with valid directories
// - NewFileWatcher returns error with invalid directory
// - Single file change fires callback after debounce
// - Rapid changes to several files are batched into one sorted callback
// - Saving a file with unchanged content does not fire the callback
// - Pause/Resume behavior (accumulate during pause, fire on resume)
// - Deleting a known file fires the callback
// - Files in newly created directories are watched
// - Extension filtering (only monitored extensions trigger callback)
// - Stop() before Start() and concurrent Stop() calls are safe

const testDebounce = 100 * time.Millisecond

// recorder collects callback invocations.
type recorder struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *recorder) callback(files []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, files)
}

func (r *recorder) snapshot() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.calls...)
}

func startWatcher(t *testing.T, dir string, extensions ...string) (FileWatcher, *recorder) {
	t.Helper()

	fw, err := NewFileWatcher([]string{dir}, extensions, WithDebounce(testDebounce))
	require.NoError(t, err)
	t.Cleanup(func() { fw.Stop() })

	rec := &recorder{}
	require.NoError(t, fw.Start(context.Background(), rec.callback))

	// Wait for watcher to initialize
	time.Sleep(50 * time.Millisecond)
	return fw, rec
}

func TestNewFileWatcher_Success(t *testing.T) {
	t.Parallel()

	fw, err := NewFileWatcher([]string{t.TempDir()}, []string{".rs", ".md"})
	require.NoError(t, err)
	require.NotNil(t, fw)
	require.NoError(t, fw.Stop())
}

func TestNewFileWatcher_InvalidDirectory(t *testing.T) {
	t.Parallel()

	fw, err := NewFileWatcher([]string{filepath.Join(t.TempDir(), "nonexistent")}, []string{".rs"})
	assert.Error(t, err)
	assert.Nil(t, fw)
}

func TestFileWatcher_SingleFileChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, rec := startWatcher(t, dir, ".rs")

	file := filepath.Join(dir, "lib.rs")
	require.NoError(t, os.WriteFile(file, []byte("pub fn square() {}"), 0644))

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, []string{file}, rec.snapshot()[0])
}

func TestFileWatcher_BatchesChanges(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, rec := startWatcher(t, dir, ".h")

	second := filepath.Join(dir, "b.h")
	first := filepath.Join(dir, "a.h")
	require.NoError(t, os.WriteFile(second, []byte("int b;"), 0644))
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, os.WriteFile(first, []byte("int a;"), 0644))
	require.NoError(t, os.WriteFile(first, []byte("int a2;"), 0644))

	require.Eventually(t, func() bool { return len(rec.snapshot()) >= 1 }, 2*time.Second, 20*time.Millisecond)
	time.Sleep(2 * testDebounce)

	calls := rec.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{first, second}, calls[0])
}

func TestFileWatcher_SkipsUnchangedContent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "lib.rs")
	require.NoError(t, os.WriteFile(file, []byte("pub fn square() {}"), 0644))

	_, rec := startWatcher(t, dir, ".rs")

	// Same bytes as when the watcher started.
	require.NoError(t, os.WriteFile(file, []byte("pub fn square() {}"), 0644))
	time.Sleep(3 * testDebounce)
	assert.Empty(t, rec.snapshot())

	require.NoError(t, os.WriteFile(file, []byte("pub fn cube() {}"), 0644))
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, 2*time.Second, 20*time.Millisecond)

	// Writing the new content again is a no-op too.
	require.NoError(t, os.WriteFile(file, []byte("pub fn cube() {}"), 0644))
	time.Sleep(3 * testDebounce)
	assert.Len(t, rec.snapshot(), 1)
}

func TestFileWatcher_PauseResume(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fw, rec := startWatcher(t, dir, ".md")

	fw.Pause()
	file := filepath.Join(dir, "intro.md")
	require.NoError(t, os.WriteFile(file, []byte("# Intro"), 0644))

	time.Sleep(3 * testDebounce)
	assert.Empty(t, rec.snapshot(), "no callback while paused")

	fw.Resume()
	calls := rec.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{file}, calls[0])
}

func TestFileWatcher_FileDeleted(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "core.h")
	require.NoError(t, os.WriteFile(file, []byte("int x;"), 0644))

	_, rec := startWatcher(t, dir, ".h")
	require.NoError(t, os.Remove(file))

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, []string{file}, rec.snapshot()[0])
}

func TestFileWatcher_DirectoryAdded(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, rec := startWatcher(t, dir, ".rs")

	sub := filepath.Join(dir, "shapes")
	require.NoError(t, os.Mkdir(sub, 0755))
	// Give the watcher time to add the new directory.
	time.Sleep(50 * time.Millisecond)

	file := filepath.Join(sub, "circle.rs")
	require.NoError(t, os.WriteFile(file, []byte("pub struct Circle;"), 0644))

	require.Eventually(t, func() bool {
		for _, call := range rec.snapshot() {
			for _, f := range call {
				if f == file {
					return true
				}
			}
		}
		return false
	}, 2*time.Second, 20*time.Millisecond)
}

func TestFileWatcher_ExtensionFiltering(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, rec := startWatcher(t, dir, ".rs")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))
	time.Sleep(3 * testDebounce)
	assert.Empty(t, rec.snapshot())

	file := filepath.Join(dir, "lib.rs")
	require.NoError(t, os.WriteFile(file, []byte("pub fn f() {}"), 0644))
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, []string{file}, rec.snapshot()[0])
}

func TestFileWatcher_StopWithoutStart(t *testing.T) {
	t.Parallel()

	fw, err := NewFileWatcher([]string{t.TempDir()}, []string{".rs"})
	require.NoError(t, err)
	assert.NoError(t, fw.Stop())
	assert.NoError(t, fw.Stop())
}

func TestFileWatcher_ConcurrentStop(t *testing.T) {
	t.Parallel()

	fw, err := NewFileWatcher([]string{t.TempDir()}, []string{".rs"})
	require.NoError(t, err)
	require.NoError(t, fw.Start(context.Background(), func([]string) {}))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fw.Stop()
		}()
	}
	wg.Wait()
}
