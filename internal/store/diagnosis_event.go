package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var runFields = []string{
	"id", "sequence", "timestamp", "run_id", "goal", "format", "model", "targets", "structure",
}

var diagnosisFields = []string{
	"id", "sequence", "timestamp", "run_id", "position", "node", "path", "children",
	"grade", "grade_text", "summary", "suggestion", "example", "detail", "raw",
	"advisory", "error_message", "latency_ms",
}

func (r *eventRepo) AppendRun(ctx context.Context, data DiagnosisRunData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := builder().Insert(diagnosisRunsTable.Name).
		Columns(runFields[1:]...).
		Values(seqNum, time.Now().UTC(), data.RunID, data.Goal, data.Format, data.Model, data.Targets, data.Structure).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save diagnosis run: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendDiagnosis(ctx context.Context, data DiagnosisEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	path, err := encodeLabels(data.Path)
	if err != nil {
		return err
	}
	children, err := encodeLabels(data.Children)
	if err != nil {
		return err
	}

	query, args := builder().Insert(diagnosisEventsTable.Name).
		Columns(diagnosisFields[1:]...).
		Values(
			seqNum, time.Now().UTC(), data.RunID, data.Position, data.Node, path, children,
			data.Grade, data.GradeText, data.Summary, data.Suggestion, data.Example, data.Detail, data.Raw,
			data.Advisory, data.ErrorMessage, data.LatencyMs,
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save diagnosis event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryDiagnosisRuns(ctx context.Context, limit int) ([]DiagnosisRun, error) {
	sel := builder().Select(runFields...).
		From(entsql.Table(diagnosisRunsTable.Name)).
		OrderBy(entsql.Desc("sequence"))
	if limit > 0 {
		sel.Limit(limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query diagnosis runs: %w", err)
	}
	var runs []DiagnosisRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		runs = append(runs, *run)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Tallies are read after the rows are closed: the store runs on a
	// single connection.
	for i := range runs {
		if err := r.tallyGrades(ctx, &runs[i]); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (r *eventRepo) GetDiagnosisRun(ctx context.Context, runID string) (*DiagnosisRun, error) {
	query, args := builder().Select(runFields...).
		From(entsql.Table(diagnosisRunsTable.Name)).
		Where(entsql.EQ("run_id", runID)).
		Query()

	run, err := scanRun(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if err := r.tallyGrades(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

func (r *eventRepo) QueryDiagnoses(ctx context.Context, runID string) ([]DiagnosisEvent, error) {
	query, args := builder().Select(diagnosisFields...).
		From(entsql.Table(diagnosisEventsTable.Name)).
		Where(entsql.EQ("run_id", runID)).
		OrderBy("position", "sequence").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query diagnoses: %w", err)
	}
	defer rows.Close()

	var out []DiagnosisEvent
	for rows.Next() {
		var e DiagnosisEvent
		var path, children string
		err := rows.Scan(
			&e.ID, &e.Sequence, &e.Timestamp, &e.RunID, &e.Position, &e.Node, &path, &children,
			&e.Grade, &e.GradeText, &e.Summary, &e.Suggestion, &e.Example, &e.Detail, &e.Raw,
			&e.Advisory, &e.ErrorMessage, &e.LatencyMs,
		)
		if err != nil {
			return nil, fmt.Errorf("scan diagnosis event: %w", err)
		}
		if e.Path, err = decodeLabels(path); err != nil {
			return nil, err
		}
		if e.Children, err = decodeLabels(children); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *eventRepo) tallyGrades(ctx context.Context, run *DiagnosisRun) error {
	query, args := builder().Select("grade", entsql.As(entsql.Count("*"), "n")).
		From(entsql.Table(diagnosisEventsTable.Name)).
		Where(entsql.EQ("run_id", run.RunID)).
		GroupBy("grade").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("tally grades: %w", err)
	}
	defer rows.Close()

	run.Grades = make(map[string]int)
	run.Completed = 0
	for rows.Next() {
		var grade string
		var n int
		if err := rows.Scan(&grade, &n); err != nil {
			return fmt.Errorf("scan grade tally: %w", err)
		}
		run.Grades[grade] = n
		run.Completed += n
	}
	return rows.Err()
}

func scanRun(row rowScanner) (*DiagnosisRun, error) {
	var run DiagnosisRun
	err := row.Scan(
		&run.ID, &run.Sequence, &run.Timestamp, &run.RunID, &run.Goal,
		&run.Format, &run.Model, &run.Targets, &run.Structure,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan diagnosis run: %w", err)
	}
	return &run, nil
}

func encodeLabels(labels []string) (string, error) {
	if labels == nil {
		labels = []string{}
	}
	b, err := json.Marshal(labels)
	if err != nil {
		return "", fmt.Errorf("encode labels: %w", err)
	}
	return string(b), nil
}

func decodeLabels(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	var labels []string
	if err := json.Unmarshal([]byte(s), &labels); err != nil {
		return nil, fmt.Errorf("decode labels: %w", err)
	}
	return labels, nil
}
