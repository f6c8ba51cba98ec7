package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int    // max results (0 = unlimited)
	After   int64  // sequence > After
	Before  int64  // sequence < Before
	Purpose string // exact purpose match when non-empty
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request event.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates requests and tokens for one key (purpose or model).
type LLMUsage struct {
	Key          string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
}

// DiagnosisRunData describes one diagnosis pass over a structure.
type DiagnosisRunData struct {
	RunID     string
	Goal      string
	Format    string
	Model     string
	Targets   int
	Structure string // JSON export of the structure
}

// DiagnosisRun is a stored run plus the grade tally of its results.
type DiagnosisRun struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	DiagnosisRunData

	Completed int
	Grades    map[string]int
}

// DiagnosisEventData records the outcome for one diagnosed node.
type DiagnosisEventData struct {
	RunID        string
	Position     int
	Node         string
	Path         []string
	Children     []string
	Grade        string
	GradeText    string
	Summary      string
	Suggestion   string
	Example      string
	Detail       string
	Raw          string
	Advisory     string
	ErrorMessage string
	LatencyMs    int64
}

// DiagnosisEvent is a stored diagnosis event.
type DiagnosisEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	DiagnosisEventData
}

// LLMEventAppender is the narrow write side used by the LLM logging
// decorator.
type LLMEventAppender interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
}

// EventRepo provides append and query access to the audit log.
type EventRepo interface {
	LLMEventAppender

	// QueryLLMEvents returns LLM request events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns a single event by ID or ErrNotFound.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	// LLMUsageByPurpose aggregates usage per purpose label.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates usage per model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)

	// AppendRun records the start of a diagnosis run.
	AppendRun(ctx context.Context, data DiagnosisRunData) error

	// AppendDiagnosis records the result for one node of a run.
	AppendDiagnosis(ctx context.Context, data DiagnosisEventData) error

	// QueryDiagnosisRuns returns runs, newest first. limit 0 means all.
	QueryDiagnosisRuns(ctx context.Context, limit int) ([]DiagnosisRun, error)

	// GetDiagnosisRun returns one run by run ID or ErrNotFound.
	GetDiagnosisRun(ctx context.Context, runID string) (*DiagnosisRun, error)

	// QueryDiagnoses returns a run's results in diagnosis order.
	QueryDiagnoses(ctx context.Context, runID string) ([]DiagnosisEvent, error)
}
