package store

import (
	"context"

	"github.com/roach88/termstore/internal/chronology"
	"github.com/roach88/termstore/internal/errs"
)

// loadStamps replays every persisted stamp into the registry in sequence
// order. Returns the number of stamps restored.
func (s *Store) loadStamps(ctx context.Context) (int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, status, time, author, module, path FROM stamps ORDER BY seq ASC
	`)
	if err != nil {
		return 0, errs.Wrap(err, "load stamps")
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		seq, st, err := scanStamp(rows)
		if err != nil {
			return n, err
		}
		s.registry.Restore(seq, st)
		n++
	}
	if err := rows.Err(); err != nil {
		return n, errs.Wrap(err, "iterate stamps")
	}
	return n, nil
}

// RebuildLogicGraphRefs recomputes the concept reference index from every
// stored logic graph chronology. Returns the number of chronologies replayed.
//
// The index is derived data, so this is safe to run at any time.
func (s *Store) RebuildLogicGraphRefs(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chronologies, err := s.queryChronologies(ctx,
		`SELECT chronology FROM semantics WHERE version_type = ? ORDER BY nid ASC`,
		int(chronology.LogicGraph))
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errs.Wrap(err, "rebuild logic graph refs: begin tx")
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, `DELETE FROM logic_graph_refs`); err != nil {
		return 0, errs.Wrap(err, "rebuild logic graph refs: clear")
	}
	for _, c := range chronologies {
		if err := writeLogicGraphRefs(ctx, tx, c); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, errs.Wrap(err, "rebuild logic graph refs: commit")
	}
	s.logger.Info("logic graph refs rebuilt", "chronologies", len(chronologies))
	return len(chronologies), nil
}
