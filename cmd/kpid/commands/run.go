package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skubi6/kpi/task"
)

// RunCmd executes a created job to completion.
var RunCmd = &cobra.Command{
	Use:   "run <uid>",
	Short: "Execute a created job",
	Long: `Execute a created job to completion on the calling process.

The job transitions created -> processing -> complete or error; failures
are recorded in the job's messages, not raised.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRun(cmd.Context(), args[0])
	},
}

func runRun(ctx context.Context, uid string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	if ctx == nil {
		ctx = context.Background()
	}

	t, err := e.store.Get(uid)
	if err != nil {
		return fmt.Errorf("failed to get job: %w", err)
	}

	if err := e.runner.Run(ctx, t); err != nil {
		return fmt.Errorf("failed to run job: %w", err)
	}

	fmt.Printf("Job %s finished with status %s\n", t.UID, t.Status)
	if t.Status == task.StatusError {
		fmt.Printf("  error_type: %v\n", t.Messages["error_type"])
		fmt.Printf("  error: %v\n", t.Messages["error"])
	}
	if t.Result != "" {
		fmt.Printf("  artifact: %s\n", t.Result)
	}
	return nil
}
