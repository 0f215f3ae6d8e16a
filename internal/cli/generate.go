package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/docsmith/internal/config"
	"github.com/mvp-joe/docsmith/internal/documents"
	"github.com/mvp-joe/docsmith/internal/git"
	"github.com/mvp-joe/docsmith/internal/pipeline"
	"github.com/mvp-joe/docsmith/internal/reader"
	"github.com/mvp-joe/docsmith/internal/watcher"
	"github.com/mvp-joe/docsmith/internal/writer"
)

var (
	writerFlag string
	outputFlag string
	quietFlag  bool
	watchFlag  bool
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate documentation for the project",
	Long: `Generate reads the configured source paths, assembles the public
namespaces and documents, and renders them with the selected writer.

Examples:
  # Generate Markdown docs into target/doc
  docsmith generate

  # Write a SQLite database instead
  docsmith generate --writer sqlite --output build/docs

  # Regenerate whenever sources, documents or HEAD change
  docsmith generate --watch
`,
	RunE: runGenerateCmd,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVar(&writerFlag, "writer", "", "Writer to render with (see 'docsmith writers')")
	generateCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output directory")
	generateCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	generateCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch for changes and regenerate")
}

func runGenerateCmd(cmd *cobra.Command, args []string) error {
	// Set up context with cancellation for Ctrl+C
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, rootDir, err := loadConfig()
	if err != nil {
		return err
	}
	if writerFlag != "" {
		cfg.Output.Writer = writerFlag
	}
	if outputFlag != "" {
		cfg.Output.Path = outputFlag
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	g := &generator{
		cfg:     cfg,
		rootDir: rootDir,
		gitOps:  git.NewOperations(),
		logger:  newLogger(cmd.ErrOrStderr(), verbose),
		out:     cmd.OutOrStdout(),
		quiet:   quietFlag,
	}

	if err := g.Generate(ctx, nil); err != nil {
		return err
	}
	if !watchFlag {
		return nil
	}
	return g.watch(ctx)
}

// generator runs the pipeline for a loaded configuration. Each run builds
// fresh options, so the commit is looked up again after HEAD moves.
type generator struct {
	cfg     *config.Config
	rootDir string
	gitOps  git.Operations
	logger  *slog.Logger
	out     io.Writer
	quiet   bool
}

// Generate implements watcher.Generator.
func (g *generator) Generate(ctx context.Context, changed []string) error {
	opts, err := g.cfg.ToOptions(g.rootDir, g.gitOps)
	if err != nil {
		return err
	}

	if len(changed) > 0 {
		g.logger.Debug("regenerating", "changed", len(changed))
	}

	p := pipeline.New(
		pipeline.WithLogger(g.logger),
		pipeline.WithProgress(NewCLIProgressReporter(g.out, g.quiet)),
		pipeline.WithIgnorePatterns(g.cfg.Ignore),
	)
	if _, err := p.Run(ctx, opts); err != nil {
		return err
	}

	name := opts.Writer
	if name == "" {
		name = writer.DefaultWriter
	}
	g.logger.Info("documentation written", "writer", name, "output", opts.OutputPath)
	return nil
}

// watch blocks, regenerating on source, document and HEAD changes until ctx
// is cancelled.
func (g *generator) watch(ctx context.Context) error {
	opts, err := g.cfg.ToOptions(g.rootDir, g.gitOps)
	if err != nil {
		return err
	}

	dialect, err := reader.ForLanguage(opts.Language)
	if err != nil {
		return err
	}
	extensions := append(append([]string(nil), dialect.Extensions...), documents.Extensions...)

	var dirs []string
	for _, dir := range append(append([]string(nil), opts.SourcePaths...), opts.DocPaths...) {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			dirs = append(dirs, dir)
		}
	}

	files, err := watcher.NewFileWatcher(dirs, extensions,
		watcher.WithDebounce(time.Duration(g.cfg.Watch.DebounceMillis)*time.Millisecond),
		watcher.WithWatchLogger(g.logger))
	if err != nil {
		return fmt.Errorf("failed to watch sources: %w", err)
	}

	var head watcher.GitWatcher
	gitDir := filepath.Join(g.gitOps.GetWorktreeRoot(opts.RootPath), ".git")
	if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
		head, err = watcher.NewGitWatcher(gitDir, g.logger)
		if err != nil {
			g.logger.Warn("not watching git HEAD", "error", err)
			head = nil
		}
	}

	g.logger.Info("watching for changes", "dirs", len(dirs))
	coordinator := watcher.NewWatchCoordinator(head, files, g, g.logger)
	if err := coordinator.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch mode failed: %w", err)
	}

	g.logger.Info("watch mode stopped")
	return nil
}
