package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/abhisek/critree/internal/diagnosis"
	"github.com/abhisek/critree/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past diagnosis runs",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent diagnosis runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		runs, err := s.EventRepo().QueryDiagnosisRuns(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("query runs: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(out, "No diagnosis runs found.")
			return nil
		}

		t := newTable(out, "Run", "Timestamp", "Format", "Nodes", "Grades", "Goal")
		for _, r := range runs {
			t.Append([]string{
				r.RunID,
				r.Timestamp.Local().Format("2006-01-02 15:04"),
				r.Format,
				fmt.Sprintf("%d/%d", r.Completed, r.Targets),
				gradeSummary(r.Grades),
				truncate(r.Goal, 40),
			})
		}
		t.Render()
		return nil
	},
}

var historyViewCmd = &cobra.Command{
	Use:   "view <run-id>",
	Short: "Show every result of a diagnosis run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		repo := s.EventRepo()
		run, err := repo.GetDiagnosisRun(ctx, args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("run %s not found; see `critree history list`", args[0])
		}
		if err != nil {
			return fmt.Errorf("get run: %w", err)
		}
		events, err := repo.QueryDiagnoses(ctx, run.RunID)
		if err != nil {
			return fmt.Errorf("query results: %w", err)
		}

		styled := isatty.IsTerminal(os.Stdout.Fd())
		if !styled {
			color.NoColor = true
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Goal:    %s\n", run.Goal)
		fmt.Fprintf(out, "Time:    %s\n", run.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "Model:   %s (%s)\n", run.Model, run.Format)
		fmt.Fprintf(out, "Nodes:   %d/%d\n\n", run.Completed, run.Targets)

		rp := newReporter(out, styled)
		results := make([]diagnosis.Result, 0, len(events))
		for _, e := range events {
			r := diagnosis.ResultFromEvent(e)
			results = append(results, r)
			rp.result(r)
		}
		rp.tally(results)
		if run.Completed < run.Targets {
			fmt.Fprintln(out, color.YellowString("This run did not finish."))
		}
		return nil
	},
}

func init() {
	historyListCmd.Flags().IntP("limit", "n", 20, "Number of runs to show")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyViewCmd)
}
