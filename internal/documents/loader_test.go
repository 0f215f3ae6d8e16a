package documents

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/docsmith/internal/model"
)

// Test Plan for Loader:
// - Directory scan finds .md/.markdown/.html/.htm recursively, skips other files and dot dirs
// - Scanned documents are sorted by name across all directories
// - An explicit list keeps caller order
// - All with no directories, or missing ones, yields no documents and no error
// - Markdown titles come from the first "# " heading, else the file name
// - HTML titles come from <title>, content is converted to markdown
// - Unreadable files fail with SourceReadError

const docsFixture = "../../testdata/docs"

func newTestLoader() *Loader {
	return NewLoader(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func docNames(docs []model.Document) []string {
	names := make([]string, 0, len(docs))
	for _, d := range docs {
		names = append(names, d.Name)
	}
	return names
}

func TestLoader_ScanDirectory(t *testing.T) {
	t.Parallel()

	docs, err := newTestLoader().Load("", []string{docsFixture}, model.AllDocFiles())
	require.NoError(t, err)
	assert.Equal(t, []string{"api", "intro", "setup"}, docNames(docs))

	for _, d := range docs {
		assert.Equal(t, FormatMarkdown, d.Format)
	}
}

func TestLoader_Titles(t *testing.T) {
	t.Parallel()

	docs, err := newTestLoader().Load("", []string{docsFixture}, model.AllDocFiles())
	require.NoError(t, err)

	byName := make(map[string]model.Document)
	for _, d := range docs {
		byName[d.Name] = d
	}

	assert.Equal(t, "Introduction", byName["intro"].Title)
	assert.Equal(t, "setup", byName["setup"].Title)

	api := byName["api"]
	assert.Equal(t, "API Guide", api.Title)
	assert.Contains(t, api.Content, "# Using the API")
	assert.Contains(t, api.Content, "**square**")
	assert.NotContains(t, api.Content, "<p>")
}

func TestLoader_SortAcrossDirectories(t *testing.T) {
	t.Parallel()

	first := t.TempDir()
	second := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(first, "b.md"), []byte("# B"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(first, "a.md"), []byte("# A"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(second, "c.md"), []byte("# C"), 0644))

	docs, err := newTestLoader().Load("", []string{first, second}, model.AllDocFiles())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, docNames(docs))
}

func TestLoader_ExplicitOrder(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.md"), []byte("# A"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.md"), []byte("# B"), 0644))

	docs, err := newTestLoader().Load(root, nil, model.ListedDocFiles("b.md", "a.md"))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, docNames(docs))
	assert.Equal(t, filepath.Join(root, "b.md"), docs[0].File)
}

func TestLoader_NoDirectories(t *testing.T) {
	t.Parallel()

	docs, err := newTestLoader().Load("", nil, model.AllDocFiles())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestLoader_MissingDirectory(t *testing.T) {
	t.Parallel()

	docs, err := newTestLoader().Load(t.TempDir(), []string{"doc"}, model.AllDocFiles())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestLoader_MissingFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	_, err := newTestLoader().Load(root, nil, model.ListedDocFiles("missing.md"))
	require.Error(t, err)

	var readErr *model.SourceReadError
	require.True(t, errors.As(err, &readErr))
	assert.Equal(t, filepath.Join(root, "missing.md"), readErr.Path)
}

func TestMarkdownTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Title", markdownTitle("intro\n# Title\n# Other"))
	assert.Equal(t, "", markdownTitle("## Not level one\n#hashtag"))
}
