package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/critree/internal/config"
	"github.com/abhisek/critree/internal/diagnosis"
	"github.com/abhisek/critree/internal/llm"
	"github.com/abhisek/critree/internal/store"
	"github.com/abhisek/critree/internal/tree"
	"github.com/abhisek/critree/internal/tree/importer"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Diagnose a criteria tree without the interactive app",
	Example: `  critree diagnose --file tree.yaml
  critree diagnose --goal "Adopt an AI system" \
      --criterion "Efficiency=Speed,Accuracy" --criterion "Cost=License,Hosting"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		applyDiagnoseFlags(cmd, cfg)

		st, err := structureFromFlags(cmd, cfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		styled := isatty.IsTerminal(os.Stdout.Fd())
		if !styled {
			color.NoColor = true
		}

		if dry, _ := cmd.Flags().GetBool("dry-run"); dry {
			return previewPrompts(cmd, cfg, st)
		}

		var events store.EventRepo
		if s, err := openStore(cmd); err != nil {
			logger.Warn("diagnosis will not be recorded", zap.Error(err))
		} else {
			defer s.Close()
			events = s.EventRepo()
		}

		sess, err := newSession(cfg, events)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		svc, err := sess.Service(ctx)
		if err != nil {
			return err
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		rp := newReporter(out, styled)
		if !asJSON {
			fmt.Fprintln(out, tree.Outline(st))
			fmt.Fprintf(out, "Diagnosing with %s\n\n", sess.Status())
		}

		sink := &jsonSink{enc: json.NewEncoder(out)}
		pass, err := svc.Run(ctx, st, func(r diagnosis.Result) {
			if asJSON {
				sink.emit(r)
				return
			}
			rp.result(r)
		})
		if err != nil {
			return err
		}
		if sink.err != nil {
			return fmt.Errorf("write results: %w", sink.err)
		}
		if !asJSON {
			rp.tally(pass.Results())
			if events != nil {
				fmt.Fprintf(out, "Run %s saved; see `critree history view %s`.\n", pass.ID, pass.ID)
			}
		}
		return nil
	},
}

// applyDiagnoseFlags lets --provider and --format override the config file.
func applyDiagnoseFlags(cmd *cobra.Command, cfg *config.Config) {
	if p, _ := cmd.Flags().GetString("provider"); p != "" {
		cfg.LLM.Provider = p
	}
	if f, _ := cmd.Flags().GetString("format"); f != "" {
		cfg.LLM.Format = f
	}
	if u, _ := cmd.Flags().GetBool("unbounded"); u {
		cfg.Builder.Unbounded = true
	}
}

// structureFromFlags loads --file, or builds a tree from --goal and
// repeated --criterion "Name=Sub1,Sub2" flags.
func structureFromFlags(cmd *cobra.Command, cfg *config.Config) (*tree.Structure, error) {
	file, _ := cmd.Flags().GetString("file")
	goal, _ := cmd.Flags().GetString("goal")
	criteria, _ := cmd.Flags().GetStringArray("criterion")

	switch {
	case file != "" && (goal != "" || len(criteria) > 0):
		return nil, errors.New("use either --file or --goal/--criterion, not both")
	case file != "":
		return importer.Load(file)
	case goal == "":
		return nil, errors.New("a structure is required: pass --file or --goal")
	}
	return buildStructure(goal, criteria, cfg.BuilderOptions()...)
}

func buildStructure(goal string, criteria []string, opts ...tree.Option) (*tree.Structure, error) {
	b := tree.NewBuilder(opts...)
	b.SetGoal(goal)
	for _, arg := range criteria {
		name, subs, _ := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("--criterion %q: missing criterion name", arg)
		}
		slot, err := b.AddCriterion(name)
		if err != nil {
			return nil, fmt.Errorf("--criterion %q: %w", arg, err)
		}
		for _, sub := range strings.Split(subs, ",") {
			if sub = strings.TrimSpace(sub); sub == "" {
				continue
			}
			if err := b.AddSubCriterionAt(slot, sub); err != nil {
				return nil, fmt.Errorf("--criterion %q: %w", arg, err)
			}
		}
	}
	st := b.Build()
	if err := st.Validate(); err != nil {
		return nil, err
	}
	return st, nil
}

func previewPrompts(cmd *cobra.Command, cfg *config.Config, st *tree.Structure) error {
	diagCfg, err := cfg.DiagnoserConfig()
	if err != nil {
		return err
	}
	svc := diagnosis.NewService(llm.NewEchoMockProvider(),
		diagnosis.WithDiagnoserConfig(diagCfg),
		diagnosis.WithLogger(logger))
	previews, err := svc.Preview(st)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	sep := strings.Repeat("─", 60)
	for i, pv := range previews {
		fmt.Fprintf(out, "%s\n%d. %s\n%s\n", sep, i+1, pv.Target.Parent(), sep)
		if pv.Advisory != diagnosis.AdvisoryNone {
			fmt.Fprintf(out, "advisory: %s\n", pv.Advisory)
		}
		if pv.Skipped {
			fmt.Fprintln(out, "(no children; answered without a call)")
			continue
		}
		fmt.Fprintln(out, pv.Prompt)
	}
	fmt.Fprintf(out, "%s\nSystem prompt:\n%s\n", sep, diagnosis.SystemPrompt())
	return nil
}

type resultJSON struct {
	Position   int      `json:"position"`
	Node       string   `json:"node"`
	Path       []string `json:"path"`
	Children   []string `json:"children"`
	Grade      string   `json:"grade"`
	GradeText  string   `json:"grade_text,omitempty"`
	Summary    string   `json:"summary,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
	Example    string   `json:"example,omitempty"`
	Detail     string   `json:"detail,omitempty"`
	Advisory   string   `json:"advisory,omitempty"`
	Error      string   `json:"error,omitempty"`
	LatencyMs  int64    `json:"latency_ms"`
}

// jsonSink writes one result per line and keeps the first write error.
type jsonSink struct {
	enc *json.Encoder
	err error
}

func (s *jsonSink) emit(r diagnosis.Result) {
	if s.err != nil {
		return
	}
	s.err = s.enc.Encode(jsonResult(r))
}

func jsonResult(r diagnosis.Result) resultJSON {
	out := resultJSON{
		Position:   r.Position,
		Node:       r.Node,
		Path:       r.Path,
		Children:   r.Children,
		Grade:      string(r.Grade),
		GradeText:  r.GradeText,
		Summary:    r.Summary,
		Suggestion: r.Suggestion,
		Example:    r.Example,
		Detail:     r.Detail,
		Advisory:   string(r.Advisory),
		LatencyMs:  r.Latency.Milliseconds(),
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return out
}

func init() {
	diagnoseCmd.Flags().StringP("file", "f", "", "Structure file (.json, .yaml, .yml or .md)")
	diagnoseCmd.Flags().StringP("goal", "g", "", "Decision goal")
	diagnoseCmd.Flags().StringArrayP("criterion", "c", nil, `Criterion with optional sub-criteria, "Name=Sub1,Sub2" (repeatable)`)
	diagnoseCmd.Flags().String("format", "", "Reply format: tags, delimited or json (default from config)")
	diagnoseCmd.Flags().String("provider", "", "LLM provider: anthropic, openai, gemini, openrouter or mock")
	diagnoseCmd.Flags().Bool("dry-run", false, "Print the prompts without calling the LLM")
	diagnoseCmd.Flags().Bool("unbounded", false, "Allow more than the default number of criteria per parent")
	diagnoseCmd.Flags().Bool("json", false, "Print one JSON object per diagnosed node")
}
