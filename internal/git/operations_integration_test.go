package git

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/docsmith/internal/model"
)

// Integration tests for real GitOperations implementation.
// These tests use actual git commands and run sequentially (NO t.Parallel()).

func TestGitOpsIntegration(t *testing.T) {
	// NO t.Parallel() - these tests run sequentially to avoid resource exhaustion

	gitOps := NewOperations()

	t.Run("HeadCommit returns the full hash", func(t *testing.T) {
		dir := createTestGitRepo(t)
		commit, err := gitOps.HeadCommit(dir)
		require.NoError(t, err)
		assert.Len(t, commit, 40)
		assert.Equal(t, gitOutput(t, dir, "rev-parse", "HEAD"), commit)
	})

	t.Run("HeadCommit from subdirectory", func(t *testing.T) {
		dir := createTestGitRepo(t)
		subdir := filepath.Join(dir, "src")
		require.NoError(t, os.MkdirAll(subdir, 0755))
		commit, err := gitOps.HeadCommit(subdir)
		require.NoError(t, err)
		assert.Equal(t, gitOutput(t, dir, "rev-parse", "HEAD"), commit)
	})

	t.Run("HeadCommit non-git directory", func(t *testing.T) {
		dir := t.TempDir()
		_, err := gitOps.HeadCommit(dir)
		require.Error(t, err)

		var lookupErr *model.CommitLookupError
		require.True(t, errors.As(err, &lookupErr))
		assert.Equal(t, dir, lookupErr.Dir)
	})

	t.Run("GetWorktreeRoot from subdirectory", func(t *testing.T) {
		dir := createTestGitRepo(t)
		subdir := filepath.Join(dir, "subdir")
		require.NoError(t, os.MkdirAll(subdir, 0755))
		root := gitOps.GetWorktreeRoot(subdir)
		// macOS: /var/folders is symlinked to /private/var/folders
		dirResolved, _ := filepath.EvalSymlinks(dir)
		rootResolved, _ := filepath.EvalSymlinks(root)
		assert.Equal(t, dirResolved, rootResolved)
	})

	t.Run("GetWorktreeRoot non-git directory", func(t *testing.T) {
		dir := t.TempDir()
		assert.Equal(t, dir, gitOps.GetWorktreeRoot(dir))
	})
}

func TestLazyCommit(t *testing.T) {
	t.Parallel()

	mock := NewMockGitOps()
	cell := LazyCommit(mock, "/repo")
	assert.Equal(t, 0, mock.CommitCalls)

	commit, err := cell.Get()
	require.NoError(t, err)
	assert.Equal(t, mock.Commit, commit)

	_, _ = cell.Get()
	assert.Equal(t, 1, mock.CommitCalls)
}

func TestLazyCommit_Error(t *testing.T) {
	t.Parallel()

	mock := NewMockGitOps()
	mock.CommitError = &model.CommitLookupError{Dir: "/repo", Err: errors.New("not a git repository")}

	_, err := LazyCommit(mock, "/repo").Get()
	var lookupErr *model.CommitLookupError
	assert.True(t, errors.As(err, &lookupErr))
}

// Test helpers

func createTestGitRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	// Initialize repo
	cmd := exec.Command("git", "init", "-b", "main")
	cmd.Dir = dir
	require.NoError(t, cmd.Run(), "git init failed")

	// Configure git identity
	runGitCmd(t, dir, "config", "user.email", "test@example.com")
	runGitCmd(t, dir, "config", "user.name", "Test User")

	// Create initial commit
	testFile := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(testFile, []byte("# Test\n"), 0644))
	runGitCmd(t, dir, "add", "README.md")
	runGitCmd(t, dir, "commit", "-m", "Initial commit")

	return dir
}

func runGitCmd(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, string(output))
}

func gitOutput(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.Output()
	require.NoError(t, err, "git %v failed", args)
	return strings.TrimSpace(string(output))
}
