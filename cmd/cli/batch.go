package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	batchAction string
	maxItems    int
)

var batchCmd = &cobra.Command{
	Use:   "batch [repo-reference]",
	Short: "Run an action over the open pull requests of a repository",
	Long: `Run an action over the open pull requests of a repository.

Each PR becomes an independent background job; one failure never aborts
the others.

Examples:
  warden-cli batch github.com/owner/repo --action review
  warden-cli batch github.com/owner/repo --action issues --max 10`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		body := map[string]any{
			"repo_reference": args[0],
			"action":         batchAction,
		}
		if maxItems >= 0 {
			body["max_items"] = maxItems
		}
		if extraInstructions != "" {
			body["extra_instructions"] = extraInstructions
		}

		var outcome actionOutcome
		if err := apiCall("POST", "/api/v1/batch", body, &outcome); err != nil {
			errorColor.Printf("✗ batch failed: %v\n", err)
			return err
		}

		successColor.Println("✓ batch accepted")
		fmt.Printf("batch id: %s\n", outcome.BatchID)
		dimColor.Printf("poll with: warden-cli batch-status %s\n", outcome.BatchID)
		return nil
	},
}

func init() { //nolint:gochecknoinits // Cobra command registration
	batchCmd.Flags().StringVarP(&batchAction, "action", "a", "review", "Per-PR action (review, describe, improve, issues)")
	batchCmd.Flags().IntVarP(&maxItems, "max", "m", -1, "Maximum number of PRs to process")
	batchCmd.Flags().StringVarP(&extraInstructions, "instructions", "i", "", "Extra instructions for the model")
	rootCmd.AddCommand(batchCmd)
}
