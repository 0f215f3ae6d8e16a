package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/docsmith/internal/writer"
)

// writersCmd represents the writers command
var writersCmd = &cobra.Command{
	Use:   "writers",
	Short: "List the available writers",
	Run: func(cmd *cobra.Command, args []string) {
		listWriters(cmd.OutOrStdout(), writer.NewDefaultRegistry(newLogger(cmd.ErrOrStderr(), verbose)))
	},
}

func init() {
	rootCmd.AddCommand(writersCmd)
}

func listWriters(out io.Writer, registry *writer.Registry) {
	for _, name := range registry.Names() {
		if name == writer.DefaultWriter {
			fmt.Fprintf(out, "%s (default)\n", name)
			continue
		}
		fmt.Fprintln(out, name)
	}
}
