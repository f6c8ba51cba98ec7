package diagnosis

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/critree/internal/llm"
	"github.com/abhisek/critree/internal/store"
	"github.com/abhisek/critree/internal/tree"
	"github.com/abhisek/critree/internal/tree/importer"
)

// Service runs diagnosis passes over criteria structures. Passes are
// strictly sequential: one provider call per target, in target order.
type Service struct {
	diagnoser *Diagnoser
	events    store.EventRepo
	logger    *zap.Logger
	newID     func() string
}

// Option configures a Service.
type Option func(*Service)

// WithEventRepo records runs and results in the audit log.
func WithEventRepo(repo store.EventRepo) Option {
	return func(s *Service) { s.events = repo }
}

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDiagnoserConfig overrides the diagnoser settings.
func WithDiagnoserConfig(cfg DiagnoserConfig) Option {
	return func(s *Service) { s.diagnoser.cfg = cfg }
}

// WithIDGenerator replaces the run ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// NewService creates a diagnosis service around provider.
func NewService(provider llm.Provider, opts ...Option) *Service {
	s := &Service{
		diagnoser: NewDiagnoser(provider, DefaultDiagnoserConfig()),
		logger:    zap.NewNop(),
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.diagnoser.cfg.Format == "" {
		s.diagnoser.cfg.Format = FormatTags
	}
	s.logger = s.logger.Named("diagnosis")
	return s
}

// Pass is one diagnosis run over a structure. Its targets are fixed when
// the pass begins and the structure is treated as read-only.
type Pass struct {
	svc       *Service
	ID        string
	Structure *tree.Structure
	Targets   []tree.Target
	results   []Result
}

// Begin validates the structure and opens a pass. An invalid structure is
// reported as *InputError and nothing is recorded.
func (s *Service) Begin(ctx context.Context, st *tree.Structure) (*Pass, error) {
	if err := st.Validate(); err != nil {
		return nil, &InputError{Err: err}
	}

	p := &Pass{
		svc:       s,
		ID:        s.newID(),
		Structure: st,
		Targets:   st.Targets(),
	}

	s.logger.Info("diagnosis pass started",
		zap.String("run_id", p.ID),
		zap.String("goal", st.Goal.Label),
		zap.Int("targets", len(p.Targets)),
		zap.String("format", string(s.diagnoser.Format())),
	)

	if s.events != nil {
		exported, err := importer.Export(st, importer.FormatJSON)
		if err != nil {
			return nil, &InputError{Err: err}
		}
		err = s.events.AppendRun(ctx, store.DiagnosisRunData{
			RunID:     p.ID,
			Goal:      st.Goal.Label,
			Format:    string(s.diagnoser.Format()),
			Model:     s.diagnoser.provider.ModelID(),
			Targets:   len(p.Targets),
			Structure: string(exported),
		})
		if err != nil {
			s.logger.Warn("failed to record diagnosis run", zap.String("run_id", p.ID), zap.Error(err))
		}
	}
	return p, nil
}

// Len returns the number of targets in the pass.
func (p *Pass) Len() int {
	return len(p.Targets)
}

// Done reports whether every target has a result.
func (p *Pass) Done() bool {
	return len(p.results) == len(p.Targets)
}

// Next diagnoses the next target in order and records the result.
// It returns false once every target has been diagnosed.
func (p *Pass) Next(ctx context.Context) (Result, bool) {
	if p.Done() {
		return Result{}, false
	}
	pos := len(p.results)
	res := p.svc.diagnoser.Diagnose(ctx, p.Structure.Goal.Label, p.Targets[pos])
	res.Position = pos
	p.results = append(p.results, res)
	p.svc.record(ctx, p.ID, res)
	return res, true
}

// Results returns the results produced so far, in target order.
func (p *Pass) Results() []Result {
	out := make([]Result, len(p.results))
	copy(out, p.results)
	return out
}

// Run diagnoses every target of st in order. onResult, if set, is called
// after each result. Every target gets exactly one result even when calls
// fail; only an invalid structure returns an error.
func (s *Service) Run(ctx context.Context, st *tree.Structure, onResult func(Result)) (*Pass, error) {
	p, err := s.Begin(ctx, st)
	if err != nil {
		return nil, err
	}
	for {
		res, ok := p.Next(ctx)
		if !ok {
			break
		}
		if onResult != nil {
			onResult(res)
		}
	}
	s.logger.Info("diagnosis pass finished", zap.String("run_id", p.ID), zap.Int("results", len(p.results)))
	return p, nil
}

func (s *Service) record(ctx context.Context, runID string, res Result) {
	fields := []zap.Field{
		zap.String("run_id", runID),
		zap.Int("position", res.Position),
		zap.String("node", res.Node),
		zap.String("grade", string(res.Grade)),
		zap.Duration("latency", res.Latency),
	}
	if res.Advisory != AdvisoryNone {
		fields = append(fields, zap.String("advisory", string(res.Advisory)))
	}
	if res.Err != nil {
		s.logger.Warn("node degraded", append(fields, zap.Error(res.Err))...)
	} else {
		s.logger.Debug("node diagnosed", fields...)
	}

	if s.events == nil {
		return
	}
	data := store.DiagnosisEventData{
		RunID:      runID,
		Position:   res.Position,
		Node:       res.Node,
		Path:       res.Path,
		Children:   res.Children,
		Grade:      string(res.Grade),
		GradeText:  res.GradeText,
		Summary:    res.Summary,
		Suggestion: res.Suggestion,
		Example:    res.Example,
		Detail:     res.Detail,
		Raw:        res.Raw,
		Advisory:   string(res.Advisory),
		LatencyMs:  res.Latency.Milliseconds(),
	}
	if res.Err != nil {
		data.ErrorMessage = res.Err.Error()
	}
	if err := s.events.AppendDiagnosis(ctx, data); err != nil {
		s.logger.Warn("failed to record diagnosis event", zap.String("run_id", runID), zap.Error(err))
	}
}

// PromptPreview is the request a pass would send for one target.
type PromptPreview struct {
	Target   tree.Target
	System   string
	Prompt   string
	Advisory Advisory
	// Skipped is true for targets answered locally without a call.
	Skipped bool
}

// Preview renders every prompt of a pass without calling the provider.
func (s *Service) Preview(st *tree.Structure) ([]PromptPreview, error) {
	if err := st.Validate(); err != nil {
		return nil, &InputError{Err: err}
	}
	var out []PromptPreview
	for _, t := range st.Targets() {
		pv := PromptPreview{
			Target:   t,
			System:   systemPrompt,
			Advisory: CheckCardinality(len(t.Node.Children)),
			Skipped:  !t.Node.HasChildren(),
		}
		if !pv.Skipped {
			req, err := s.diagnoser.Request(st.Goal.Label, t)
			if err != nil {
				return nil, fmt.Errorf("preview %q: %w", t.Parent(), err)
			}
			pv.Prompt = req.Messages[0].Content
		}
		out = append(out, pv)
	}
	return out, nil
}
