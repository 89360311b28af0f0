package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stockintel/stockintel/intel"
	"github.com/stockintel/stockintel/workflow"
)

func newAnalyzeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze TICKER",
		Short: "Analyze a single stock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()

			sessionID, result, err := a.service.Start(cmd.Context(), args[0])
			if err != nil {
				return describeStartError(sessionID, err)
			}
			return presentResult(cmd, a.service, sessionID, result)
		},
	}
}

func newCompareCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "compare TICKER_A TICKER_B",
		Short: "Compare two stocks head to head",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()

			sessionID, result, err := a.service.StartComparison(cmd.Context(), args[0], args[1])
			if err != nil {
				return describeStartError(sessionID, err)
			}
			return presentResult(cmd, a.service, sessionID, result)
		},
	}
}

func newResumeCmd(flags *rootFlags) *cobra.Command {
	var decision string

	cmd := &cobra.Command{
		Use:   "resume SESSION_ID",
		Short: "Resume a suspended session with a decision",
		Long: `Resume continues a session that suspended for human review, identified by
the session ID printed when it suspended. Pass the decision with --decision,
or omit it to be prompted interactively.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()

			sessionID := args[0]
			if decision == "" {
				cp, err := a.service.Inspect(cmd.Context(), sessionID)
				if err != nil {
					return err
				}
				if cp.State.Analysis != "" {
					fmt.Fprintln(cmd.OutOrStdout(), cp.State.Analysis)
					fmt.Fprintln(cmd.OutOrStdout())
				}
				decision = readLine(cmd, fmt.Sprintf("Approve recommendation for %s? [approved/rejected]: ", cp.State.Subject))
				if decision == "" {
					return fmt.Errorf("no decision provided")
				}
			}

			result, err := a.service.Resume(cmd.Context(), sessionID, decision)
			if err != nil {
				return err
			}
			return presentResult(cmd, a.service, sessionID, result)
		},
	}

	cmd.Flags().StringVarP(&decision, "decision", "d", "", "review decision: approved or rejected")
	return cmd
}

// presentResult loops: print the outcome when the session terminated, or
// show the prompt and collect a decision while it is suspended. With stdin
// closed (scripted use) the suspension is reported with resume instructions
// instead.
func presentResult(cmd *cobra.Command, svc *intel.Service, sessionID string, result workflow.Result[intel.SessionState]) error {
	out := cmd.OutOrStdout()

	for !result.Done {
		if result.Suspension == nil {
			return fmt.Errorf("session %s stopped without outcome or suspension", sessionID)
		}

		if result.State.Analysis != "" {
			fmt.Fprintln(out)
			fmt.Fprintln(out, strings.Repeat("=", 72))
			fmt.Fprintln(out, "HUMAN REVIEW REQUIRED")
			fmt.Fprintln(out, strings.Repeat("=", 72))
			fmt.Fprintln(out)
			fmt.Fprintln(out, result.State.Analysis)
			fmt.Fprintln(out)
		}

		input := readLine(cmd, result.Suspension.Prompt+" [approved/rejected]: ")
		if input == "" {
			fmt.Fprintf(out, "Session suspended. Resume later with:\n  stockintel resume %s --decision approved|rejected\n", sessionID)
			return nil
		}

		var err error
		result, err = svc.Resume(cmd.Context(), sessionID, input)
		if err != nil {
			return err
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Session %s complete: %s\n", sessionID, result.Outcome)
	return nil
}

func readLine(cmd *cobra.Command, prompt string) string {
	fmt.Fprint(cmd.OutOrStdout(), prompt)

	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return ""
	}
	return strings.TrimSpace(line)
}

// describeStartError names the failing stage on mid-run failures. The
// session's pre-step checkpoint is preserved, so completed stages are not
// lost to the failure.
func describeStartError(sessionID string, err error) error {
	var stepErr *workflow.StepError
	if sessionID != "" && errors.As(err, &stepErr) {
		return fmt.Errorf("session %s failed at the %s stage: %w", sessionID, stepErr.Step, stepErr.Err)
	}
	return err
}
