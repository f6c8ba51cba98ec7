package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/abhisek/critree/internal/llm"
	"github.com/abhisek/critree/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded LLM requests, usage and cost",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		failedOnly, _ := cmd.Flags().GetBool("failed")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit, Purpose: purpose})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No LLM requests recorded.")
			return nil
		}

		t := newTable(out, "ID", "Timestamp", "Provider", "Purpose", "Model", "In", "Out", "Ms", "OK")
		for _, e := range events {
			if failedOnly && e.Success {
				continue
			}
			ok := color.GreenString("✓")
			if !e.Success {
				ok = color.RedString("✗")
			}
			t.Append([]string{
				strconv.Itoa(e.ID),
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Provider,
				truncate(e.Purpose, 20),
				truncate(e.Model, 28),
				strconv.Itoa(e.InputTokens),
				strconv.Itoa(e.OutputTokens),
				strconv.FormatInt(e.LatencyMs, 10),
				ok,
			})
		}
		t.Render()
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the full prompt and reply of one LLM request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("LLM request %d not found", id)
		}
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}

		out := cmd.OutOrStdout()
		field := func(label, format string, args ...any) {
			fmt.Fprintf(out, "%-10s "+format+"\n", append([]any{label + ":"}, args...)...)
		}
		field("ID", "%d", e.ID)
		field("Time", "%s", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
		field("Provider", "%s", e.Provider)
		field("Model", "%s", e.Model)
		field("Purpose", "%s", e.Purpose)
		field("Tokens", "%d in / %d out", e.InputTokens, e.OutputTokens)
		if c := llm.LookupCost(e.Model); c != nil {
			field("Cost", "%s", formatCost(c.Cost(e.InputTokens, e.OutputTokens)))
		}
		field("Latency", "%dms", e.LatencyMs)
		if e.ErrorMessage != "" {
			field("Error", "%s", color.RedString(e.ErrorMessage))
		}

		printBody(out, "REQUEST", e.RequestBody)
		printBody(out, "RESPONSE", e.ResponseBody)
		return nil
	},
}

// printBody prints a captured body, indented when it is JSON.
func printBody(out io.Writer, title, body string) {
	rule := strings.Repeat("─", 60)
	fmt.Fprintf(out, "\n%s\n%s\n%s\n", rule, title, rule)
	if body == "" {
		fmt.Fprintln(out, "(not captured)")
		return
	}
	var buf bytes.Buffer
	if json.Indent(&buf, []byte(body), "", "  ") == nil {
		body = buf.String()
	}
	fmt.Fprintln(out, body)
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		byPurpose, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(byPurpose) == 0 {
			fmt.Fprintln(out, "No LLM usage recorded yet.")
			return nil
		}

		fmt.Fprintln(out, "Usage by purpose")
		t := newTable(out, "Purpose", "Calls", "Failed", "Input", "Output", "Total", "Avg ms")
		var total store.LLMUsage
		for _, u := range byPurpose {
			t.Append(usageRow(u.Key, u))
			total.Calls += u.Calls
			total.Failures += u.Failures
			total.InputTokens += u.InputTokens
			total.OutputTokens += u.OutputTokens
			total.LatencyMs += u.LatencyMs
		}
		t.SetFooter(usageRow("total", total))
		t.Render()

		byModel, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}

		fmt.Fprintln(out, "\nEstimated cost (USD)")
		t = newTable(out, "Model", "Calls", "Input", "Output", "Cost")
		var totalCost float64
		var unpriced []string
		for _, u := range byModel {
			cost := "?"
			if price := llm.LookupCost(u.Key); price != nil {
				c := price.Cost(u.InputTokens, u.OutputTokens)
				totalCost += c
				cost = formatCost(c)
			} else {
				unpriced = append(unpriced, u.Key)
			}
			t.Append([]string{truncate(u.Key, 36), strconv.Itoa(u.Calls),
				strconv.Itoa(u.InputTokens), strconv.Itoa(u.OutputTokens), cost})
		}
		label := "total"
		if len(unpriced) > 0 {
			label = "total (partial)"
		}
		t.SetFooter([]string{label, "", "", "", formatCost(totalCost)})
		t.Render()
		if len(unpriced) > 0 {
			fmt.Fprintf(out, "\nPricing unavailable for: %s\n", strings.Join(unpriced, ", "))
		}
		return nil
	},
}

func usageRow(label string, u store.LLMUsage) []string {
	return []string{
		truncate(label, 20),
		strconv.Itoa(u.Calls),
		strconv.Itoa(u.Failures),
		strconv.Itoa(u.InputTokens),
		strconv.Itoa(u.OutputTokens),
		strconv.Itoa(u.InputTokens + u.OutputTokens),
		strconv.FormatInt(avgLatency(u), 10),
	}
}

func avgLatency(u store.LLMUsage) int64 {
	if u.Calls == 0 {
		return 0
	}
	return u.LatencyMs / int64(u.Calls)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only show requests with this purpose (e.g. diagnosis)")
	llmListCmd.Flags().Bool("failed", false, "Only show failed requests")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
