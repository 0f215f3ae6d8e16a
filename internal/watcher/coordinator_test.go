package watcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for WatchCoordinator:
// - File change event triggers Generate() with the changed files
// - HEAD change pauses files, regenerates, then resumes
// - File change during HEAD regeneration is delivered after resume
// - Context cancellation stops both watchers
// - Works without a git watcher
// - Generate() errors are logged, not fatal
// - Watcher start errors are returned and both watchers cleaned up

// mockGitWatcher implements GitWatcher for testing.
type mockGitWatcher struct {
	startErr   error
	callback   func(old, new Head)
	stopCalled bool
	mu         sync.Mutex
}

func (m *mockGitWatcher) Start(ctx context.Context, callback func(old, new Head)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callback = callback
	return m.startErr
}

func (m *mockGitWatcher) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopCalled = true
	return nil
}

func (m *mockGitWatcher) stopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopCalled
}

func (m *mockGitWatcher) trigger(old, head Head) {
	m.mu.Lock()
	callback := m.callback
	m.mu.Unlock()
	if callback != nil {
		callback(old, head)
	}
}

// mockFileWatcher implements FileWatcher for testing.
type mockFileWatcher struct {
	startErr    error
	callback    func(files []string)
	events      []string
	paused      bool
	pending     [][]string
	stopCalled  bool
	started     chan struct{}
	startedOnce sync.Once
	mu          sync.Mutex
}

func newMockFileWatcher() *mockFileWatcher {
	return &mockFileWatcher{started: make(chan struct{})}
}

func (m *mockFileWatcher) Start(ctx context.Context, callback func(files []string)) error {
	m.mu.Lock()
	m.callback = callback
	err := m.startErr
	m.mu.Unlock()
	m.startedOnce.Do(func() { close(m.started) })
	return err
}

func (m *mockFileWatcher) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopCalled = true
	return nil
}

func (m *mockFileWatcher) stopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopCalled
}

func (m *mockFileWatcher) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = true
	m.events = append(m.events, "pause")
}

func (m *mockFileWatcher) Resume() {
	m.mu.Lock()
	m.paused = false
	m.events = append(m.events, "resume")
	pending := m.pending
	m.pending = nil
	callback := m.callback
	m.mu.Unlock()

	for _, files := range pending {
		callback(files)
	}
}

func (m *mockFileWatcher) trigger(files []string) {
	m.mu.Lock()
	if m.paused {
		m.pending = append(m.pending, files)
		m.mu.Unlock()
		return
	}
	callback := m.callback
	m.mu.Unlock()
	callback(files)
}

// mockGenerator records Generate calls.
type mockGenerator struct {
	err    error
	files  *mockFileWatcher
	calls  [][]string
	events []string
	onCall func()
	mu     sync.Mutex
}

func (g *mockGenerator) Generate(ctx context.Context, changed []string) error {
	g.mu.Lock()
	g.calls = append(g.calls, changed)
	onCall := g.onCall
	g.onCall = nil
	g.mu.Unlock()

	if g.files != nil {
		g.files.mu.Lock()
		g.files.events = append(g.files.events, "generate")
		g.files.mu.Unlock()
	}
	if onCall != nil {
		onCall()
	}
	return g.err
}

func (g *mockGenerator) snapshot() [][]string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([][]string(nil), g.calls...)
}

func startCoordinator(t *testing.T, git GitWatcher, files *mockFileWatcher, gen Generator) (context.CancelFunc, chan error) {
	t.Helper()

	coord := NewWatchCoordinator(git, files, gen, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- coord.Start(ctx)
	}()

	select {
	case <-files.started:
	case <-time.After(2 * time.Second):
		t.Fatal("file watcher not started")
	}
	t.Cleanup(cancel)
	return cancel, done
}

func TestWatchCoordinator_FileChangeTriggersGenerate(t *testing.T) {
	t.Parallel()

	files := newMockFileWatcher()
	gen := &mockGenerator{}
	startCoordinator(t, &mockGitWatcher{}, files, gen)

	files.trigger([]string{"src/lib.rs", "src/shapes.rs"})

	calls := gen.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"src/lib.rs", "src/shapes.rs"}, calls[0])
}

func TestWatchCoordinator_EmptyFileChangeIgnored(t *testing.T) {
	t.Parallel()

	files := newMockFileWatcher()
	gen := &mockGenerator{}
	startCoordinator(t, &mockGitWatcher{}, files, gen)

	files.trigger(nil)
	assert.Empty(t, gen.snapshot())
}

func TestWatchCoordinator_HeadChangeCallOrder(t *testing.T) {
	t.Parallel()

	git := &mockGitWatcher{}
	files := newMockFileWatcher()
	gen := &mockGenerator{files: files}
	startCoordinator(t, git, files, gen)

	git.trigger(Head{Branch: "main", Commit: commitA}, Head{Branch: "main", Commit: commitB})

	calls := gen.snapshot()
	require.Len(t, calls, 1)
	assert.Empty(t, calls[0])

	files.mu.Lock()
	defer files.mu.Unlock()
	assert.Equal(t, []string{"pause", "generate", "resume"}, files.events)
}

func TestWatchCoordinator_FileChangeDuringHeadChange(t *testing.T) {
	t.Parallel()

	git := &mockGitWatcher{}
	files := newMockFileWatcher()
	gen := &mockGenerator{}
	gen.onCall = func() { files.trigger([]string{"src/lib.rs"}) }
	startCoordinator(t, git, files, gen)

	git.trigger(Head{Branch: "main"}, Head{Branch: "feature"})

	calls := gen.snapshot()
	require.Len(t, calls, 2)
	assert.Empty(t, calls[0])
	assert.Equal(t, []string{"src/lib.rs"}, calls[1])
}

func TestWatchCoordinator_ContextCancellation(t *testing.T) {
	t.Parallel()

	git := &mockGitWatcher{}
	files := newMockFileWatcher()
	cancel, done := startCoordinator(t, git, files, &mockGenerator{})

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("coordinator did not stop")
	}

	assert.True(t, git.stopped(), "git watcher should be stopped")
	assert.True(t, files.stopped(), "file watcher should be stopped")
}

func TestWatchCoordinator_WithoutGitWatcher(t *testing.T) {
	t.Parallel()

	files := newMockFileWatcher()
	gen := &mockGenerator{}
	cancel, done := startCoordinator(t, nil, files, gen)

	files.trigger([]string{"include/core.h"})
	assert.Len(t, gen.snapshot(), 1)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.True(t, files.stopped())
}

func TestWatchCoordinator_GenerateErrorDoesNotCrash(t *testing.T) {
	t.Parallel()

	files := newMockFileWatcher()
	gen := &mockGenerator{err: errors.New("writer failed")}
	startCoordinator(t, &mockGitWatcher{}, files, gen)

	files.trigger([]string{"a.rs"})
	files.trigger([]string{"b.rs"})
	assert.Len(t, gen.snapshot(), 2)
}

func TestWatchCoordinator_GitWatcherStartError(t *testing.T) {
	t.Parallel()

	git := &mockGitWatcher{startErr: errors.New("no .git")}
	files := newMockFileWatcher()

	err := NewWatchCoordinator(git, files, &mockGenerator{}, nil).Start(context.Background())
	assert.EqualError(t, err, "no .git")
	assert.True(t, git.stopped())
	assert.True(t, files.stopped())
}

func TestWatchCoordinator_FileWatcherStartError(t *testing.T) {
	t.Parallel()

	git := &mockGitWatcher{}
	files := newMockFileWatcher()
	files.startErr = errors.New("too many open files")

	err := NewWatchCoordinator(git, files, &mockGenerator{}, nil).Start(context.Background())
	assert.EqualError(t, err, "too many open files")
	assert.True(t, git.stopped())
	assert.True(t, files.stopped())
}

func TestGeneratorFunc(t *testing.T) {
	t.Parallel()

	var got []string
	gen := GeneratorFunc(func(ctx context.Context, changed []string) error {
		got = changed
		return nil
	})
	require.NoError(t, gen.Generate(context.Background(), []string{"x"}))
	assert.Equal(t, []string{"x"}, got)
}
