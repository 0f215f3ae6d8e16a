package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/docsmith/internal/config"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "docsmith",
	Short: "Docsmith - API documentation from source code",
	Long: `Docsmith reads the public namespaces of a Rust or C source tree, merges
them with free-form documents and renders the result as Markdown, JSON,
a SQLite database or a Bleve search index.

Configuration is read from .docsmith.yml in the current directory and can
be overridden with DOCSMITH_* environment variables.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.docsmith.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// newLogger builds the structured logger shared by every component.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig loads the project configuration and returns it with the
// directory relative paths are resolved against: the directory of --config
// when given, else the working directory.
func loadConfig() (*config.Config, string, error) {
	if cfgFile != "" {
		path, err := filepath.Abs(cfgFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to resolve config path: %w", err)
		}
		cfg, err := config.NewFileLoader(path).Load()
		if err != nil {
			return nil, "", fmt.Errorf("failed to load configuration: %w", err)
		}
		return cfg, filepath.Dir(path), nil
	}

	rootDir, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, rootDir, nil
}
