package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mvp-joe/docsmith/internal/git"
	"github.com/mvp-joe/docsmith/internal/model"
)

// ToOptions converts a Config to the options of one extraction run.
// Relative root_path is resolved against rootDir; source, document and
// output paths are resolved against the root path. The commit is looked up
// through gitOps only if a writer asks for it.
func (c *Config) ToOptions(rootDir string, gitOps git.Operations) (model.Options, error) {
	namespaces, err := model.ParseSelector(c.Namespaces)
	if err != nil {
		return model.Options{}, fmt.Errorf("%w: namespaces: %v", ErrInvalidPattern, err)
	}

	var exclude *regexp.Regexp
	if c.ExcludeVars != "" {
		exclude, err = regexp.Compile(c.ExcludeVars)
		if err != nil {
			return model.Options{}, fmt.Errorf("%w: exclude_vars: %v", ErrInvalidPattern, err)
		}
	}

	root := resolvePath(rootDir, c.RootPath)

	commit := git.LazyCommit(gitOps, root)
	if c.Output.GitCommit != "" {
		commit = model.Resolved(c.Output.GitCommit)
	}

	metadata := make(map[string]string, len(c.Metadata))
	for k, v := range c.Metadata {
		metadata[k] = v
	}

	return model.Options{
		Language:         c.Language,
		RootPath:         root,
		SourcePaths:      resolvePaths(root, c.SourcePaths),
		Namespaces:       namespaces,
		ExcludeVars:      exclude,
		DocPaths:         resolvePaths(root, c.DocPaths),
		DocFiles:         c.docFiles(),
		Metadata:         metadata,
		Writer:           c.Output.Writer,
		OutputPath:       resolvePath(root, c.Output.Path),
		SourceURI:        c.Output.SourceURI,
		LineAnchorPrefix: c.Output.LineAnchorPrefix,
		GitCommit:        commit,
		Project: model.Project{
			Name:        c.Project.Name,
			Version:     c.Project.Version,
			Description: c.Project.Description,
		},
	}, nil
}

// docFiles reads doc_files: unset or the single value "all" scans the
// document directories, anything else is an explicit list.
func (c *Config) docFiles() model.DocFiles {
	if c.DocFiles == nil {
		return model.AllDocFiles()
	}
	if len(c.DocFiles) == 1 && strings.TrimSpace(c.DocFiles[0]) == model.SelectAll {
		return model.AllDocFiles()
	}
	return model.ListedDocFiles(c.DocFiles...)
}

func resolvePath(base, path string) string {
	if path == "" {
		return base
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}

func resolvePaths(base string, paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, resolvePath(base, p))
	}
	return out
}
