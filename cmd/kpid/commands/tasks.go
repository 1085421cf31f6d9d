package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// TasksCmd groups job management commands.
var TasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Manage import/export jobs",
	Long: `Manage import/export jobs.

Examples:
  kpid tasks ls                  # List jobs for an owner
  kpid tasks ls --owner bob      # List bob's jobs
  kpid tasks show <uid>          # Show job details`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// TasksLsCmd lists jobs.
var TasksLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, _ := cmd.Flags().GetString("owner")
		limit, _ := cmd.Flags().GetInt("limit")
		return runTasksLs(owner, limit)
	},
}

// TasksShowCmd shows one job in detail.
var TasksShowCmd = &cobra.Command{
	Use:   "show <uid>",
	Short: "Show job details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTasksShow(args[0])
	},
}

func init() {
	TasksLsCmd.Flags().String("owner", "", "Owner username to list jobs for")
	TasksLsCmd.Flags().Int("limit", 20, "Maximum number of jobs to display")

	TasksCmd.AddCommand(TasksLsCmd)
	TasksCmd.AddCommand(TasksShowCmd)
}

func runTasksLs(owner string, limit int) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	tasks, err := e.store.ListByOwner(owner, limit)
	if err != nil {
		return fmt.Errorf("failed to list jobs: %w", err)
	}

	if len(tasks) == 0 {
		fmt.Println("No jobs found")
		return nil
	}

	fmt.Printf("%-34s %-8s %-12s %-12s %s\n", "UID", "KIND", "STATUS", "OWNER", "CREATED")
	for _, t := range tasks {
		fmt.Printf("%-34s %-8s %-12s %-12s %s\n",
			t.UID, t.Kind, t.Status, t.Owner,
			t.DateCreated.Format("2006-01-02 15:04"))
	}
	fmt.Printf("\nTotal: %d job(s)\n", len(tasks))
	return nil
}

func runTasksShow(uid string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	t, err := e.store.Get(uid)
	if err != nil {
		return fmt.Errorf("failed to get job: %w", err)
	}

	fmt.Printf("UID: %s\n", t.UID)
	fmt.Printf("  Kind: %s\n", t.Kind)
	fmt.Printf("  Owner: %s\n", t.Owner)
	fmt.Printf("  Status: %s\n", t.Status)
	fmt.Printf("  Created: %s\n", t.DateCreated.Format("2006-01-02 15:04:05"))
	if t.Result != "" {
		fmt.Printf("  Artifact: %s\n", t.Result)
	}
	if t.LastSubmissionTime != nil {
		fmt.Printf("  Last submission: %s\n",
			t.LastSubmissionTime.Format("2006-01-02 15:04:05"))
	}
	for k, v := range t.Messages {
		fmt.Printf("  %s: %v\n", k, v)
	}
	return nil
}
