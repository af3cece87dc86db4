package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Color definitions
var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	dimColor     = color.New(color.FgHiBlack)
)

var (
	async             bool
	extraInstructions string
	temperature       float64
	severity          string
)

type actionOutcome struct {
	Status  string `json:"status"`
	JobID   string `json:"job_id"`
	BatchID string `json:"batch_id"`
	Result  *struct {
		Summary  string `json:"summary"`
		Findings []struct {
			FilePath   string `json:"file_path"`
			LineNumber int    `json:"line_number"`
			Severity   string `json:"severity"`
			Category   string `json:"category"`
			Comment    string `json:"comment"`
		} `json:"findings"`
	} `json:"result"`
}

func runAction(endpoint, prRef string, body map[string]any) error {
	body["pr_reference"] = prRef
	if extraInstructions != "" {
		body["extra_instructions"] = extraInstructions
	}
	if temperature >= 0 {
		body["ai_temperature"] = temperature
	}

	path := "/api/v1/" + endpoint
	if async {
		path += "/async"
	}

	var outcome actionOutcome
	if err := apiCall("POST", path, body, &outcome); err != nil {
		errorColor.Printf("✗ %s failed: %v\n", endpoint, err)
		return err
	}

	if outcome.JobID != "" {
		successColor.Printf("✓ job accepted\n")
		fmt.Printf("job id: %s\n", outcome.JobID)
		dimColor.Printf("poll with: warden-cli job %s\n", outcome.JobID)
		return nil
	}

	printResult(&outcome)
	return nil
}

func printResult(outcome *actionOutcome) {
	if outcome.Result == nil {
		warnColor.Println("no result returned")
		return
	}

	titleColor.Println("Summary")
	fmt.Println(outcome.Result.Summary)

	if len(outcome.Result.Findings) > 0 {
		fmt.Println()
		titleColor.Printf("Findings (%d)\n", len(outcome.Result.Findings))
		for _, f := range outcome.Result.Findings {
			loc := f.FilePath
			if f.LineNumber > 0 {
				loc = fmt.Sprintf("%s:%d", f.FilePath, f.LineNumber)
			}
			sev := f.Severity
			switch sev {
			case "critical":
				errorColor.Printf("  [%s] ", sev)
			case "major":
				warnColor.Printf("  [%s] ", sev)
			default:
				dimColor.Printf("  [%s] ", sev)
			}
			fmt.Printf("%s: %s\n", loc, f.Comment)
		}
	}
}

var reviewCmd = &cobra.Command{
	Use:   "review [pr-reference]",
	Short: "Run a code review for a pull request",
	Long: `Run a code review for a pull request.

Examples:
  warden-cli review github.com/owner/repo/42
  warden-cli review --async https://github.com/owner/repo/pull/42`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runAction("review", args[0], map[string]any{})
	},
}

var describeCmd = &cobra.Command{
	Use:   "describe [pr-reference]",
	Short: "Generate a description for a pull request",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runAction("describe", args[0], map[string]any{})
	},
}

var improveCmd = &cobra.Command{
	Use:   "improve [pr-reference]",
	Short: "Suggest code improvements for a pull request",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runAction("improve", args[0], map[string]any{})
	},
}

var issuesCmd = &cobra.Command{
	Use:   "issues [pr-reference]",
	Short: "Detect potential issues in a pull request",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		body := map[string]any{}
		if severity != "" {
			body["severity"] = severity
		}
		return runAction("issues", args[0], body)
	},
}

var askCmd = &cobra.Command{
	Use:   "ask [pr-reference] [question]",
	Short: "Ask a question about a pull request",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		return runAction("ask", args[0], map[string]any{"question": args[1]})
	},
}

func init() { //nolint:gochecknoinits // Cobra command registration
	for _, cmd := range []*cobra.Command{reviewCmd, describeCmd, improveCmd} {
		cmd.Flags().BoolVar(&async, "async", false, "Submit as a background job and return immediately")
	}
	for _, cmd := range []*cobra.Command{reviewCmd, describeCmd, improveCmd, issuesCmd, askCmd} {
		cmd.Flags().StringVarP(&extraInstructions, "instructions", "i", "", "Extra instructions for the model")
		cmd.Flags().Float64VarP(&temperature, "temperature", "T", -1, "Model sampling temperature")
		rootCmd.AddCommand(cmd)
	}
	issuesCmd.Flags().StringVar(&severity, "severity", "", "Minimum severity to report (all, minor, major, critical)")
}
