package watcher

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// DetachedBranch names the branch of a detached HEAD.
const DetachedBranch = "detached"

// Head is the checked out state of a repository.
type Head struct {
	Branch string
	Commit string
}

func (h Head) String() string {
	if h.Commit == "" {
		return h.Branch
	}
	return h.Branch + "@" + shortCommit(h.Commit)
}

// gitWatcher is the concrete implementation of GitWatcher.
type gitWatcher struct {
	gitDir   string
	headPath string
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	last     Head
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
	mu       sync.RWMutex // Protects last
}

// NewGitWatcher creates a new GitWatcher for the given git directory.
// gitDir should be the path to .git directory.
// Returns error if .git/HEAD doesn't exist or cannot be accessed.
func NewGitWatcher(gitDir string, logger *slog.Logger) (GitWatcher, error) {
	headPath := filepath.Join(gitDir, "HEAD")

	if _, err := os.Stat(headPath); err != nil {
		return nil, fmt.Errorf("cannot access .git/HEAD: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	initial, err := readHead(gitDir)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to read initial HEAD: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &gitWatcher{
		gitDir:   gitDir,
		headPath: headPath,
		watcher:  watcher,
		logger:   logger,
		last:     initial,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins monitoring HEAD and branch refs for changes. The callback
// fires when the branch or its commit changes.
func (gw *gitWatcher) Start(ctx context.Context, callback func(old, new Head)) error {
	// Watch directories rather than files so refs replaced by rename are seen.
	if err := gw.watcher.Add(gw.gitDir); err != nil {
		return fmt.Errorf("failed to watch .git directory: %w", err)
	}
	refsDir := filepath.Join(gw.gitDir, "refs", "heads")
	filepath.WalkDir(refsDir, func(path string, d os.DirEntry, err error) error {
		if err == nil && d.IsDir() {
			if err := gw.watcher.Add(path); err != nil {
				gw.logger.Warn("failed to watch refs directory", "dir", path, "error", err)
			}
		}
		return nil
	})

	go gw.watch(ctx, callback)

	return nil
}

// Stop stops the watcher and cleans up resources.
func (gw *gitWatcher) Stop() error {
	var err error
	gw.stopOnce.Do(func() {
		close(gw.stopCh)
		<-gw.doneCh
		err = gw.watcher.Close()
	})
	return err
}

// watch is the main event loop.
func (gw *gitWatcher) watch(ctx context.Context, callback func(old, new Head)) {
	defer close(gw.doneCh)

	for {
		select {
		case <-ctx.Done():
			return

		case <-gw.stopCh:
			return

		case event, ok := <-gw.watcher.Events:
			if !ok {
				return
			}

			if strings.HasSuffix(event.Name, ".lock") {
				continue
			}
			// Removed refs are recreated; wait for the write.
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			head, err := readHead(gw.gitDir)
			if err != nil {
				gw.logger.Warn("failed to read HEAD", "error", err)
				continue
			}

			gw.mu.Lock()
			old := gw.last
			changed := head != old
			if changed {
				gw.last = head
			}
			gw.mu.Unlock()

			if changed {
				gw.notify(callback, old, head)
			}

		case err, ok := <-gw.watcher.Errors:
			if !ok {
				return
			}
			gw.logger.Warn("git watcher error", "error", err)
		}
	}
}

func (gw *gitWatcher) notify(callback func(old, new Head), old, head Head) {
	defer func() {
		if r := recover(); r != nil {
			gw.logger.Warn("git watcher callback panic", "panic", r)
		}
	}()
	callback(old, head)
}

// readHead reads the current branch and commit from the git directory.
// The commit is empty when the branch ref cannot be resolved, e.g. for a
// branch without commits.
func readHead(gitDir string) (Head, error) {
	content, err := os.ReadFile(filepath.Join(gitDir, "HEAD"))
	if err != nil {
		return Head{}, err
	}

	line := strings.TrimSpace(string(content))
	if line == "" {
		// HEAD is being rewritten.
		return Head{}, fmt.Errorf("empty HEAD")
	}
	ref, symbolic := strings.CutPrefix(line, "ref: ")
	if !symbolic {
		return Head{Branch: parseBranch(content), Commit: line}, nil
	}

	return Head{Branch: parseBranch(content), Commit: resolveRef(gitDir, strings.TrimSpace(ref))}, nil
}

// resolveRef looks a ref up as a loose file, then in packed-refs.
func resolveRef(gitDir, ref string) string {
	if data, err := os.ReadFile(filepath.Join(gitDir, filepath.FromSlash(ref))); err == nil {
		return strings.TrimSpace(string(data))
	}

	data, err := os.ReadFile(filepath.Join(gitDir, "packed-refs"))
	if err != nil {
		return ""
	}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 2 && fields[1] == ref {
			return fields[0]
		}
	}
	return ""
}

// parseBranch parses branch name from HEAD file content.
// Returns branch name, or "detached" for detached HEAD.
func parseBranch(content []byte) string {
	line := strings.TrimSpace(string(content))

	if branch, ok := strings.CutPrefix(line, "ref: refs/heads/"); ok {
		return strings.TrimSpace(branch)
	}

	if len(line) == 40 && isHexString(line) {
		return DetachedBranch
	}

	return line
}

// isHexString checks if a string contains only hexadecimal characters.
func isHexString(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

func shortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
