package diagnosis

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/critree/internal/llm"
	"github.com/abhisek/critree/internal/tree"
)

// Purpose labels diagnosis calls in the LLM request log.
const Purpose = "criteria-diagnosis"

// DiagnoserConfig holds configuration for the LLM diagnoser.
type DiagnoserConfig struct {
	Format      Format
	MaxTokens   int
	Temperature float64
}

// DefaultDiagnoserConfig returns sensible defaults.
func DefaultDiagnoserConfig() DiagnoserConfig {
	return DiagnoserConfig{
		Format:      FormatTags,
		MaxTokens:   1024,
		Temperature: 0.3,
	}
}

// Diagnoser critiques one parent node and its children.
type Diagnoser struct {
	provider llm.Provider
	cfg      DiagnoserConfig
}

// NewDiagnoser creates an LLM-based diagnoser.
func NewDiagnoser(provider llm.Provider, cfg DiagnoserConfig) *Diagnoser {
	if cfg.Format == "" {
		cfg.Format = FormatTags
	}
	return &Diagnoser{provider: provider, cfg: cfg}
}

// Format returns the reply format requested from the model.
func (d *Diagnoser) Format() Format {
	return d.cfg.Format
}

// Request builds the provider request for a target.
func (d *Diagnoser) Request(goal string, target tree.Target) (llm.Request, error) {
	prompt, err := BuildPrompt(PromptInput{
		Goal:     goal,
		Parent:   target.Parent(),
		Children: target.Node.ChildLabels(),
		Format:   d.cfg.Format,
	})
	if err != nil {
		return llm.Request{}, fmt.Errorf("build diagnosis prompt: %w", err)
	}

	req := llm.UserPrompt(systemPrompt, prompt)
	req.MaxTokens = d.cfg.MaxTokens
	req.Temperature = d.cfg.Temperature
	if d.cfg.Format == FormatJSON {
		req.Schema = DiagnosisSchema
	}
	return req, nil
}

// Diagnose always returns a Result. A node without children is answered
// locally without calling the provider; a provider failure becomes a
// GradeError result.
func (d *Diagnoser) Diagnose(ctx context.Context, goal string, target tree.Target) (res Result) {
	children := target.Node.ChildLabels()
	base := Result{
		Node:     target.Parent(),
		Path:     target.Path,
		Children: children,
		Advisory: CheckCardinality(len(children)),
	}

	if len(children) == 0 {
		base.Grade = GradeUnknown
		base.Detail = string(AdvisoryNoChildren)
		return base
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = failed(base, &CollaboratorError{Node: base.Node, Err: fmt.Errorf("panic: %v", r)})
		}
		res.Latency = time.Since(start)
	}()

	req, err := d.Request(goal, target)
	if err != nil {
		return failed(base, err)
	}

	resp, err := d.provider.Generate(llm.WithPurpose(ctx, Purpose), req)
	if err != nil {
		return failed(base, &CollaboratorError{Node: base.Node, Err: err})
	}

	decoded := Decode(resp.Text, d.cfg.Format)
	decoded.Node = base.Node
	decoded.Path = base.Path
	decoded.Children = base.Children
	decoded.Advisory = base.Advisory
	return decoded
}

func failed(base Result, err error) Result {
	base.Grade = GradeError
	base.Detail = err.Error()
	base.Err = err
	return base
}
