package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/docsmith/internal/git"
	"github.com/mvp-joe/docsmith/internal/model"
	"github.com/mvp-joe/docsmith/internal/writer"
)

// Test Plan for Config System:
// - Default() returns valid configuration with all expected defaults
// - Load() uses defaults when no config file exists
// - Load() reads .docsmith.yml and .docsmith.yaml from the root directory
// - Load() merges the config file with defaults
// - Environment variables override config file values and defaults
// - NewFileLoader() reads an explicit file regardless of its name
// - Load() returns errors for malformed YAML and invalid values
// - Validate() rejects unknown languages, empty source paths, bad patterns,
//   empty writer and output path, negative debounce
// - Validate() reports every failure and keeps sentinels reachable via errors.Is
// - ToOptions() resolves paths, parses patterns, maps doc_files and wires the lazy commit

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	cfg := Default()

	require.NotNil(t, cfg)
	assert.Equal(t, "rust", cfg.Language)
	assert.Equal(t, ".", cfg.RootPath)
	assert.Equal(t, []string{"src"}, cfg.SourcePaths)
	assert.Equal(t, []string{"doc"}, cfg.DocPaths)
	assert.Nil(t, cfg.DocFiles)
	assert.Equal(t, writer.DefaultWriter, cfg.Output.Writer)
	assert.Equal(t, "target/doc", cfg.Output.Path)
	assert.Equal(t, 500, cfg.Watch.DebounceMillis)
	assert.NotEmpty(t, cfg.Ignore)

	assert.NoError(t, Validate(cfg))
}

func TestLoadConfig_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	cfg, err := NewLoader(t.TempDir()).Load()

	require.NoError(t, err)
	defaults := Default()
	assert.Equal(t, defaults.Language, cfg.Language)
	assert.Equal(t, defaults.SourcePaths, cfg.SourcePaths)
	assert.Equal(t, defaults.Output, cfg.Output)
	assert.Equal(t, defaults.Watch, cfg.Watch)
	assert.Nil(t, cfg.DocFiles)
}

func TestLoadConfig_LoadsFromDocsmithYml(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".docsmith.yml", `
language: c
source_paths:
  - include
namespaces:
  - lib.core
  - /^lib\.io/
exclude_vars: "_internal$"
doc_files:
  - guide.md
  - intro.md
metadata:
  added: "1.0"
  no-doc: "false"
output:
  writer: json
  path: out
  src_dir_uri: "https://example.com/blob/{git-commit}/{filepath}#L{line}"
project:
  name: geometry
  version: 2.0.0
`)

	cfg, err := LoadConfigFromDir(dir)
	require.NoError(t, err)

	assert.Equal(t, "c", cfg.Language)
	assert.Equal(t, []string{"include"}, cfg.SourcePaths)
	assert.Equal(t, []string{"lib.core", `/^lib\.io/`}, cfg.Namespaces)
	assert.Equal(t, "_internal$", cfg.ExcludeVars)
	assert.Equal(t, []string{"guide.md", "intro.md"}, cfg.DocFiles)
	assert.Equal(t, "1.0", cfg.Metadata["added"])
	assert.Equal(t, "false", cfg.Metadata["no-doc"])
	assert.Equal(t, "json", cfg.Output.Writer)
	assert.Equal(t, "out", cfg.Output.Path)
	assert.Equal(t, "https://example.com/blob/{git-commit}/{filepath}#L{line}", cfg.Output.SourceURI)
	assert.Equal(t, "geometry", cfg.Project.Name)
	assert.Equal(t, "2.0.0", cfg.Project.Version)
}

func TestLoadConfig_LoadsFromDocsmithYaml(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".docsmith.yaml", "language: c\n")

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, "c", cfg.Language)
}

func TestLoadConfig_MergesConfigWithDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".docsmith.yml", "output:\n  writer: sqlite\n")

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Output.Writer)
	// Everything not set in the file keeps its default.
	assert.Equal(t, "target/doc", cfg.Output.Path)
	assert.Equal(t, "rust", cfg.Language)
	assert.Equal(t, []string{"src"}, cfg.SourcePaths)
}

func TestLoadConfig_EnvironmentVariablesOverrideConfigFile(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	dir := t.TempDir()
	writeConfig(t, dir, ".docsmith.yml", "language: rust\noutput:\n  writer: json\n")

	t.Setenv("DOCSMITH_LANGUAGE", "c")
	t.Setenv("DOCSMITH_OUTPUT_WRITER", "bleve")
	t.Setenv("DOCSMITH_SOURCE_PATHS", "include,gen")

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, "c", cfg.Language)
	assert.Equal(t, "bleve", cfg.Output.Writer)
	assert.Equal(t, []string{"include", "gen"}, cfg.SourcePaths)
}

func TestLoadConfig_EnvironmentVariablesOverrideDefaults(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	t.Setenv("DOCSMITH_EXCLUDE_VARS", "^test_")
	t.Setenv("DOCSMITH_OUTPUT_SRC_DIR_URI", "https://example.com/")
	t.Setenv("DOCSMITH_OUTPUT_GIT_COMMIT", "abc123")
	t.Setenv("DOCSMITH_PROJECT_NAME", "from-env")
	t.Setenv("DOCSMITH_WATCH_DEBOUNCE_MS", "50")

	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)

	assert.Equal(t, "^test_", cfg.ExcludeVars)
	assert.Equal(t, "https://example.com/", cfg.Output.SourceURI)
	assert.Equal(t, "abc123", cfg.Output.GitCommit)
	assert.Equal(t, "from-env", cfg.Project.Name)
	assert.Equal(t, 50, cfg.Watch.DebounceMillis)
}

func TestNewFileLoader_ReadsExplicitFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "docs.yaml", "language: c\nsource_paths: [include]\n")

	cfg, err := NewFileLoader(filepath.Join(dir, "docs.yaml")).Load()
	require.NoError(t, err)
	assert.Equal(t, "c", cfg.Language)
	assert.Equal(t, []string{"include"}, cfg.SourcePaths)
}

func TestLoadConfig_ReturnsErrorForMalformedYaml(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".docsmith.yml", "language: [c\nsource_paths: {")

	_, err := NewLoader(dir).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_ReturnsErrorForInvalidValues(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".docsmith.yml", "language: cobol\n")

	_, err := NewLoader(dir).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.ErrorIs(t, err, ErrInvalidLanguage)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(cfg *Config)
		want   error
	}{
		{"unknown language", func(cfg *Config) { cfg.Language = "cobol" }, ErrInvalidLanguage},
		{"no source paths", func(cfg *Config) { cfg.SourcePaths = nil }, ErrEmptySourcePaths},
		{"blank source path", func(cfg *Config) { cfg.SourcePaths = []string{" "} }, ErrEmptySourcePaths},
		{"bad namespace regex", func(cfg *Config) { cfg.Namespaces = []string{"/(/"} }, ErrInvalidPattern},
		{"bad exclude regex", func(cfg *Config) { cfg.ExcludeVars = "[" }, ErrInvalidPattern},
		{"empty writer", func(cfg *Config) { cfg.Output.Writer = "" }, ErrEmptyWriter},
		{"empty output path", func(cfg *Config) { cfg.Output.Path = "" }, ErrEmptyOutputPath},
		{"negative debounce", func(cfg *Config) { cfg.Watch.DebounceMillis = -1 }, ErrInvalidDebounce},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.modify(cfg)

			err := Validate(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidate_ReportsEveryFailure(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Language = "cobol"
	cfg.ExcludeVars = "["
	cfg.Output.Writer = ""

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.ErrorIs(t, err, ErrInvalidLanguage)
	assert.ErrorIs(t, err, ErrInvalidPattern)
	assert.ErrorIs(t, err, ErrEmptyWriter)
	assert.False(t, errors.Is(err, ErrEmptyOutputPath))
}

func TestToOptions(t *testing.T) {
	t.Parallel()

	rootDir := t.TempDir()
	cfg := Default()
	cfg.Language = "c"
	cfg.RootPath = "project"
	cfg.SourcePaths = []string{"include", "/abs/gen"}
	cfg.Namespaces = []string{"lib.core", "/^lib\\.io/"}
	cfg.ExcludeVars = "_internal$"
	cfg.Metadata = map[string]string{"added": "1.0"}
	cfg.Output.SourceURI = "https://example.com/{git-commit}/{filepath}"
	cfg.Output.LineAnchorPrefix = "L"
	cfg.Project = ProjectConfig{Name: "geometry", Version: "2.0.0"}

	ops := git.NewMockGitOps()
	opts, err := cfg.ToOptions(rootDir, ops)
	require.NoError(t, err)

	root := filepath.Join(rootDir, "project")
	assert.Equal(t, "c", opts.Language)
	assert.Equal(t, root, opts.RootPath)
	assert.Equal(t, []string{filepath.Join(root, "include"), "/abs/gen"}, opts.SourcePaths)
	assert.Equal(t, []string{filepath.Join(root, "doc")}, opts.DocPaths)
	assert.Equal(t, filepath.Join(root, "target", "doc"), opts.OutputPath)
	assert.True(t, opts.DocFiles.IsAll())

	assert.True(t, opts.Namespaces.Match("lib.core"))
	assert.True(t, opts.Namespaces.Match("lib.io.files"))
	assert.False(t, opts.Namespaces.Match("app.main"))
	assert.True(t, opts.ExcludeVars.MatchString("read_internal"))

	assert.Equal(t, "1.0", opts.Metadata["added"])
	cfg.Metadata["added"] = "changed"
	assert.Equal(t, "1.0", opts.Metadata["added"])

	assert.Equal(t, "https://example.com/{git-commit}/{filepath}", opts.SourceURI)
	assert.Equal(t, "L", opts.LineAnchorPrefix)
	assert.Equal(t, model.Project{Name: "geometry", Version: "2.0.0"}, opts.Project)

	// The commit is only looked up when read.
	assert.Equal(t, 0, ops.CommitCalls)
	commit, err := opts.Commit()
	require.NoError(t, err)
	assert.Equal(t, ops.Commit, commit)
	_, _ = opts.Commit()
	assert.Equal(t, 1, ops.CommitCalls)
}

func TestToOptions_GitCommitOverride(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Output.GitCommit = "feedface"
	ops := git.NewMockGitOps()

	opts, err := cfg.ToOptions(t.TempDir(), ops)
	require.NoError(t, err)

	commit, err := opts.Commit()
	require.NoError(t, err)
	assert.Equal(t, "feedface", commit)
	assert.Equal(t, 0, ops.CommitCalls)
}

func TestToOptions_DocFiles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		files   []string
		wantAll bool
		want    []string
	}{
		{"unset scans directories", nil, true, nil},
		{"all keyword", []string{"all"}, true, nil},
		{"explicit list keeps order", []string{"b.md", "a.md"}, false, []string{"b.md", "a.md"}},
		{"empty list selects nothing", []string{}, false, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			cfg.DocFiles = tt.files

			opts, err := cfg.ToOptions(t.TempDir(), git.NewMockGitOps())
			require.NoError(t, err)
			assert.Equal(t, tt.wantAll, opts.DocFiles.IsAll())
			assert.Equal(t, tt.want, opts.DocFiles.Files())
		})
	}
}

func TestToOptions_InvalidPattern(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.ExcludeVars = "("

	_, err := cfg.ToOptions(t.TempDir(), git.NewMockGitOps())
	assert.ErrorIs(t, err, ErrInvalidPattern)
}
