package git

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/mvp-joe/docsmith/internal/model"
)

// Operations defines the interface for git operations.
// This allows mocking git commands in tests.
type Operations interface {
	// HeadCommit returns the full hash of the commit checked out in dir.
	// Failures are reported as *model.CommitLookupError.
	HeadCommit(dir string) (string, error)

	// GetWorktreeRoot returns the git worktree root path.
	// Falls back to projectPath if not a git repository.
	GetWorktreeRoot(projectPath string) string
}

// gitOps is the real implementation using exec.Command.
type gitOps struct{}

// NewOperations returns the default git operations implementation.
func NewOperations() Operations {
	return &gitOps{}
}

func (g *gitOps) HeadCommit(dir string) (string, error) {
	cmd := exec.Command("git", "rev-parse", "HEAD")
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return "", &model.CommitLookupError{Dir: dir, Err: err}
	}

	commit := strings.TrimSpace(string(output))
	if commit == "" {
		return "", &model.CommitLookupError{Dir: dir, Err: fmt.Errorf("git rev-parse HEAD printed nothing")}
	}
	return commit, nil
}

func (g *gitOps) GetWorktreeRoot(projectPath string) string {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = projectPath
	output, err := cmd.Output()
	if err != nil {
		return projectPath
	}
	return strings.TrimSpace(string(output))
}

// LazyCommit returns a cell that looks up the HEAD commit of dir the first
// time it is read.
func LazyCommit(ops Operations, dir string) *model.Lazy[string] {
	return model.NewLazy(func() (string, error) {
		return ops.HeadCommit(dir)
	})
}
