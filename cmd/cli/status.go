package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var outputJSON bool

var jobCmd = &cobra.Command{
	Use:   "job [job-id]",
	Short: "Show the status of an asynchronous job",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		var job struct {
			ID     string          `json:"id"`
			Action string          `json:"action"`
			Target string          `json:"target"`
			State  string          `json:"state"`
			Result json.RawMessage `json:"result"`
			Error  *struct {
				Kind    string `json:"kind"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := apiCall("GET", "/api/v1/jobs/"+args[0], nil, &job); err != nil {
			errorColor.Printf("✗ %v\n", err)
			return err
		}

		if outputJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(job)
		}

		fmt.Printf("job:    %s\n", job.ID)
		fmt.Printf("action: %s\n", job.Action)
		fmt.Printf("target: %s\n", job.Target)
		switch job.State {
		case "succeeded":
			successColor.Printf("state:  %s\n", job.State)
		case "failed":
			errorColor.Printf("state:  %s\n", job.State)
			if job.Error != nil {
				fmt.Printf("error:  %s (%s)\n", job.Error.Message, job.Error.Kind)
			}
		default:
			warnColor.Printf("state:  %s\n", job.State)
		}
		return nil
	},
}

var batchStatusCmd = &cobra.Command{
	Use:   "batch-status [batch-id]",
	Short: "Show the aggregate status of a batch run",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		var batch struct {
			BatchID        string `json:"batch_id"`
			Action         string `json:"action"`
			RepoReference  string `json:"repo_reference"`
			Total          int    `json:"total"`
			SucceededCount int    `json:"succeeded_count"`
			FailedCount    int    `json:"failed_count"`
			Items          []struct {
				PRReference string `json:"pr_reference"`
				State       string `json:"state"`
			} `json:"items"`
		}
		if err := apiCall("GET", "/api/v1/batch/"+args[0], nil, &batch); err != nil {
			errorColor.Printf("✗ %v\n", err)
			return err
		}

		if outputJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(batch)
		}

		titleColor.Printf("batch %s (%s on %s)\n", batch.BatchID, batch.Action, batch.RepoReference)
		fmt.Printf("total: %d  succeeded: %d  failed: %d\n\n", batch.Total, batch.SucceededCount, batch.FailedCount)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "PULL REQUEST\tSTATE")
		for _, item := range batch.Items {
			fmt.Fprintf(w, "%s\t%s\n", item.PRReference, item.State)
		}
		return w.Flush()
	},
}

var capabilitiesCmd = &cobra.Command{
	Use:   "capabilities",
	Short: "List the actions the service supports",
	RunE: func(_ *cobra.Command, _ []string) error {
		var caps struct {
			Capabilities []struct {
				Action        string   `json:"action"`
				Description   string   `json:"description"`
				SupportsAsync bool     `json:"supports_async"`
				Features      []string `json:"features"`
			} `json:"capabilities"`
		}
		if err := apiCall("GET", "/api/v1/capabilities", nil, &caps); err != nil {
			errorColor.Printf("✗ %v\n", err)
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ACTION\tASYNC\tDESCRIPTION")
		for _, c := range caps.Capabilities {
			asyncMark := ""
			if c.SupportsAsync {
				asyncMark = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", c.Action, asyncMark, c.Description)
		}
		return w.Flush()
	},
}

func init() { //nolint:gochecknoinits // Cobra command registration
	jobCmd.Flags().BoolVar(&outputJSON, "json", false, "Print the raw JSON record")
	batchStatusCmd.Flags().BoolVar(&outputJSON, "json", false, "Print the raw JSON record")
	rootCmd.AddCommand(jobCmd, batchStatusCmd, capabilitiesCmd)
}
