package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/docsmith/internal/config"
	"github.com/mvp-joe/docsmith/internal/git"
	"github.com/mvp-joe/docsmith/internal/model"
	"github.com/mvp-joe/docsmith/internal/pipeline"
)

var symbolsFlag bool

// namespacesCmd represents the namespaces command
var namespacesCmd = &cobra.Command{
	Use:   "namespaces",
	Short: "List the namespaces that would be documented",
	Long: `Namespaces assembles the documentation model exactly like generate,
with selection, exclusions and metadata defaults applied, and prints it
instead of writing output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, rootDir, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cmd.ErrOrStderr(), verbose)
		return listNamespaces(cmd.Context(), cmd.OutOrStdout(), logger, cfg, rootDir, git.NewOperations(), symbolsFlag)
	},
}

func init() {
	rootCmd.AddCommand(namespacesCmd)
	namespacesCmd.Flags().BoolVarP(&symbolsFlag, "symbols", "s", false, "Also list the public symbols of each namespace")
}

func listNamespaces(ctx context.Context, out io.Writer, logger *slog.Logger, cfg *config.Config, rootDir string, gitOps git.Operations, symbols bool) error {
	opts, err := cfg.ToOptions(rootDir, gitOps)
	if err != nil {
		return err
	}

	p := pipeline.New(pipeline.WithLogger(logger), pipeline.WithIgnorePatterns(cfg.Ignore))
	namespaces, err := p.Namespaces(ctx, opts)
	if err != nil {
		return err
	}

	for _, ns := range namespaces {
		fmt.Fprintf(out, "%s (%d)%s\n", ns.Name, len(ns.Publics), flags(ns.Metadata))
		if !symbols {
			continue
		}
		for _, sym := range ns.Publics {
			location := ""
			if sym.File != "" {
				location = fmt.Sprintf("  %s:%d", sym.File, sym.Line)
			}
			fmt.Fprintf(out, "  %-10s %s%s%s\n", sym.Kind, sym.Name, flags(sym.Metadata), location)
		}
	}
	return nil
}

func flags(meta model.Metadata) string {
	s := ""
	if meta.NoDoc {
		s += " [no-doc]"
	}
	if meta.Deprecated != "" {
		s += " [deprecated]"
	}
	return s
}
