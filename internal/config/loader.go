package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// ConfigName is the base name of the project configuration file.
const ConfigName = ".docsmith"

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// NewFileLoader creates a loader reading an explicit configuration file
// instead of searching rootDir.
func NewFileLoader(path string) Loader {
	return &loader{
		configFile: path,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (DOCSMITH_*)
// 2. Config file (.docsmith.yml or .docsmith.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(l.rootDir)
	}

	v.SetEnvPrefix("DOCSMITH")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., DOCSMITH_OUTPUT_WRITER)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// AutomaticEnv only sees keys viper already knows about, so keys without
	// defaults are bound explicitly.
	v.BindEnv("exclude_vars")
	v.BindEnv("doc_files")
	v.BindEnv("output.src_dir_uri")
	v.BindEnv("output.src_linenum_anchor_prefix")
	v.BindEnv("output.git_commit")
	v.BindEnv("project.name")
	v.BindEnv("project.version")
	v.BindEnv("project.description")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("language", defaults.Language)
	v.SetDefault("root_path", defaults.RootPath)
	v.SetDefault("source_paths", defaults.SourcePaths)
	v.SetDefault("namespaces", defaults.Namespaces)
	v.SetDefault("doc_paths", defaults.DocPaths)
	v.SetDefault("metadata", defaults.Metadata)
	v.SetDefault("ignore", defaults.Ignore)

	v.SetDefault("output.writer", defaults.Output.Writer)
	v.SetDefault("output.path", defaults.Output.Path)

	v.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMillis)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
