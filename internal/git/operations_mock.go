package git

import "fmt"

// MockGitOps is a mock implementation of Operations for testing.
type MockGitOps struct {
	Commit       string
	CommitError  error
	WorktreeRoot string

	// CommitCalls counts HeadCommit invocations.
	CommitCalls int
}

// NewMockGitOps creates a mock with sensible defaults.
func NewMockGitOps() *MockGitOps {
	return &MockGitOps{
		Commit:       "0123456789abcdef0123456789abcdef01234567",
		WorktreeRoot: "/tmp/test-repo",
	}
}

func (m *MockGitOps) HeadCommit(dir string) (string, error) {
	m.CommitCalls++
	if m.CommitError != nil {
		return "", m.CommitError
	}
	return m.Commit, nil
}

func (m *MockGitOps) GetWorktreeRoot(projectPath string) string {
	return m.WorktreeRoot
}

// String returns a human-readable representation of the mock state.
func (m *MockGitOps) String() string {
	return fmt.Sprintf("MockGitOps{commit=%s, root=%s, calls=%d}", m.Commit, m.WorktreeRoot, m.CommitCalls)
}
