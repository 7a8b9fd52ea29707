package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	httpcmd "github.com/Alijeyrad/mindbook_backend/cmd/http"
	systemcmd "github.com/Alijeyrad/mindbook_backend/cmd/system"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "mindbook",
	Short: "Mindbook booking backend for a small therapy practice.",
	Long: `Mindbook lets clients book sessions with therapists inside weekly
availability windows, and gives admins and therapists the tools to run the
practice: assignments, session reports, packages and onboarding forms.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global config flag, available for all commands.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	rootCmd.AddCommand(systemcmd.NewSystemCommand())
	rootCmd.AddCommand(httpcmd.NewHTTPCommand())
}
