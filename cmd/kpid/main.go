package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skubi6/kpi/cmd/kpid/commands"
	"github.com/skubi6/kpi/logger"
)

var rootCmd = &cobra.Command{
	Use:   "kpid",
	Short: "kpid - asynchronous import/export job engine",
	Long: `kpid - asynchronous import/export job engine.

Tracks import and export jobs through a persisted state machine, runs
export pipelines that stream submission data into CSV, XLSX, or SPSS
label archives, and keeps storage bounded with a stuck-job reaper and a
per-source retention quota.

Examples:
  kpid migrate                                  # Apply database migrations
  kpid tasks ls                                 # List jobs
  kpid export create --owner bob --source aXYZ --type csv
  kpid run <uid>                                # Execute a created job`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Initialize(false); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(commands.MigrateCmd)
	rootCmd.AddCommand(commands.TasksCmd)
	rootCmd.AddCommand(commands.ExportCmd)
	rootCmd.AddCommand(commands.RunCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
