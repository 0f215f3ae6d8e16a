package cli

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/docsmith/internal/config"
	"github.com/mvp-joe/docsmith/internal/git"
)

var cleanQuietFlag bool

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove generated documentation",
	Long: `Clean deletes the configured output directory so the next
'docsmith generate' starts from scratch.

The configuration file (.docsmith.yml) is preserved.

Examples:
  # Remove target/doc
  docsmith clean

  # Clean with minimal output
  docsmith clean --quiet
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, rootDir, err := loadConfig()
		if err != nil {
			return err
		}
		return runClean(cmd.OutOrStdout(), cfg, rootDir, git.NewOperations(), cleanQuietFlag)
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().BoolVarP(&cleanQuietFlag, "quiet", "q", false, "Suppress output messages")
}

func runClean(out io.Writer, cfg *config.Config, rootDir string, gitOps git.Operations, quiet bool) error {
	opts, err := cfg.ToOptions(rootDir, gitOps)
	if err != nil {
		return err
	}
	outputPath := opts.OutputPath

	root, err := filepath.Abs(opts.RootPath)
	if err != nil {
		return fmt.Errorf("failed to resolve root path: %w", err)
	}
	target, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("failed to resolve output path: %w", err)
	}
	if rel, err := filepath.Rel(target, root); err == nil && !isParentRel(rel) {
		return fmt.Errorf("refusing to remove %s: it contains the project root", outputPath)
	}

	if _, err := os.Stat(outputPath); os.IsNotExist(err) {
		if !quiet {
			fmt.Fprintln(out, "No generated documentation found")
		}
		return nil
	}

	size, files := dirStats(outputPath)
	if err := os.RemoveAll(outputPath); err != nil {
		return fmt.Errorf("failed to remove output: %w", err)
	}

	if !quiet {
		fmt.Fprintf(out, "✓ Removed %s (%s files, %s)\n", outputPath, formatNumber(files), formatBytes(size))
	}
	return nil
}

// isParentRel reports whether rel climbs out of its base.
func isParentRel(rel string) bool {
	return rel == ".." || len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator)
}

// dirStats sums file sizes under dir.
func dirStats(dir string) (int64, int) {
	var size int64
	files := 0
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			size += info.Size()
			files++
		}
		return nil
	})
	return size, files
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
