// Package config loads docsmith project configuration from .docsmith.yml
// with DOCSMITH_* environment overrides.
package config

import "github.com/mvp-joe/docsmith/internal/writer"

// Config represents the complete docsmith configuration.
// It can be loaded from .docsmith.yml with environment variable overrides.
type Config struct {
	Language    string            `yaml:"language" mapstructure:"language"`         // "rust" or "c"
	RootPath    string            `yaml:"root_path" mapstructure:"root_path"`       // project root, relative to the config directory
	SourcePaths []string          `yaml:"source_paths" mapstructure:"source_paths"` // source roots, relative to root_path
	Namespaces  []string          `yaml:"namespaces" mapstructure:"namespaces"`     // exact names or /regex/; empty or "all" selects everything
	ExcludeVars string            `yaml:"exclude_vars" mapstructure:"exclude_vars"` // regex of public names to drop
	DocPaths    []string          `yaml:"doc_paths" mapstructure:"doc_paths"`       // document directories, relative to root_path
	DocFiles    []string          `yaml:"doc_files" mapstructure:"doc_files"`       // explicit documents; unset or "all" scans doc_paths
	Metadata    map[string]string `yaml:"metadata" mapstructure:"metadata"`         // defaults for doc, added, deprecated, no-doc, ...
	Ignore      []string          `yaml:"ignore" mapstructure:"ignore"`             // glob patterns skipped under source roots

	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Project ProjectConfig `yaml:"project" mapstructure:"project"`
	Watch   WatchConfig   `yaml:"watch" mapstructure:"watch"`
}

// OutputConfig selects the writer and how it links back to sources.
type OutputConfig struct {
	Writer           string `yaml:"writer" mapstructure:"writer"`                                       // registered writer name
	Path             string `yaml:"path" mapstructure:"path"`                                           // output directory, relative to root_path
	SourceURI        string `yaml:"src_dir_uri" mapstructure:"src_dir_uri"`                             // may contain {filepath}, {basename}, {line}, {git-commit}
	LineAnchorPrefix string `yaml:"src_linenum_anchor_prefix" mapstructure:"src_linenum_anchor_prefix"` // e.g. "L" for GitHub
	GitCommit        string `yaml:"git_commit" mapstructure:"git_commit"`                               // overrides git rev-parse HEAD
}

// ProjectConfig describes the documented project.
type ProjectConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Version     string `yaml:"version" mapstructure:"version"`
	Description string `yaml:"description" mapstructure:"description"`
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	DebounceMillis int `yaml:"debounce_ms" mapstructure:"debounce_ms"` // quiet period before regenerating
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Language:    "rust",
		RootPath:    ".",
		SourcePaths: []string{"src"},
		Namespaces:  []string{},
		DocPaths:    []string{"doc"},
		Metadata:    map[string]string{},
		Ignore: []string{
			".git/**",
			"target/**",
			"build/**",
			"dist/**",
			"vendor/**",
			"node_modules/**",
		},
		Output: OutputConfig{
			Writer: writer.DefaultWriter,
			Path:   "target/doc",
		},
		Watch: WatchConfig{
			DebounceMillis: 500,
		},
	}
}
