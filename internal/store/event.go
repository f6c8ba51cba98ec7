package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	entsql "entgo.io/ent/dialect/sql"
)

// sequencer hands out the one ordering shared by all event tables, so LLM
// requests and diagnoses can be read back interleaved.
type sequencer struct {
	mu sync.Mutex
	db *sql.DB
}

func newSequencer(ctx context.Context, db *sql.DB) (*sequencer, error) {
	query, args := builder().Insert(globalSequenceTable.Name).
		Columns("id", "next_val").
		Values(1, 1).
		OnConflict(entsql.DoNothing()).
		Query()
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}
	return &sequencer{db: db}, nil
}

// Next reserves the next sequence number. Read and increment happen in one
// transaction.
func (s *sequencer) Next(ctx context.Context) (seq int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	sel, args := builder().Select("next_val").
		From(entsql.Table(globalSequenceTable.Name)).
		Where(entsql.EQ("id", 1)).
		Query()
	if err = tx.QueryRowContext(ctx, sel, args...).Scan(&seq); err != nil {
		return 0, fmt.Errorf("read sequence: %w", err)
	}

	upd, args := builder().Update(globalSequenceTable.Name).
		Add("next_val", 1).
		Where(entsql.EQ("id", 1)).
		Query()
	if _, err = tx.ExecContext(ctx, upd, args...); err != nil {
		return 0, fmt.Errorf("advance sequence: %w", err)
	}
	return seq, tx.Commit()
}
