package system

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/Alijeyrad/mindbook_backend/pkg/constants"
)

func NewGenDocsCommand() *cobra.Command {
	var outDir, format string

	cmd := &cobra.Command{
		Use:   "gendocs",
		Short: "Generate reference docs for the mindbook CLI",
		Long:  "Writes one file per command, as markdown (default) or man pages, into --outdir.",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := filepath.Abs(outDir)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", dir, err)
			}

			root := cmd.Root()
			root.DisableAutoGenTag = true
			switch format {
			case "markdown", "md":
				err = doc.GenMarkdownTree(root, dir)
			case "man":
				err = doc.GenManTree(root, &doc.GenManHeader{Title: constants.EnvPrefix, Section: "1"}, dir)
			default:
				return fmt.Errorf("unknown format %q (markdown, man)", format)
			}
			if err != nil {
				return fmt.Errorf("generate docs: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s docs written to %s\n", format, dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "outdir", "docs/cli", "output directory")
	cmd.Flags().StringVar(&format, "format", "markdown", "markdown or man")
	return cmd
}
