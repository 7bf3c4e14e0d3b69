package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/roach88/termstore/internal/chronology"
	"github.com/roach88/termstore/internal/errs"
	"github.com/roach88/termstore/internal/ids"
	"github.com/roach88/termstore/internal/schema"
)

// WriteChronology stores c, replacing any earlier copy, together with the
// stamps of its versions. For logic graph chronologies the concept reference
// index is rebuilt from every version.
//
// The chronology's nid must have been assigned by this store.
func (s *Store) WriteChronology(ctx context.Context, c *chronology.SemanticChronology) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeChronologyLocked(ctx, c)
}

func (s *Store) writeChronologyLocked(ctx context.Context, c *chronology.SemanticChronology) error {
	blob, err := chronology.Encode(c)
	if err != nil {
		return errs.Wrapf(err, "write chronology %s", c.PrimordialUUID())
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Wrap(err, "write chronology: begin tx")
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO semantics (nid, version_type, assemblage, referenced, chronology)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(nid) DO UPDATE SET chronology = excluded.chronology
	`,
		int32(c.Nid()),
		int(c.VersionType()),
		int32(c.Assemblage()),
		int32(c.ReferencedComponent()),
		blob,
	)
	if err != nil {
		return errs.Wrapf(err, "write chronology %s", c.PrimordialUUID())
	}

	seqs := make([]int32, 0, c.Len())
	for _, v := range c.Versions() {
		seqs = append(seqs, v.StampSequence)
	}
	if err := s.writeStamps(ctx, tx, seqs); err != nil {
		return err
	}

	if c.VersionType() == chronology.LogicGraph {
		if err := writeLogicGraphRefs(ctx, tx, c); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return errs.Wrap(err, "write chronology: commit")
	}
	return nil
}

// writeStamps persists the registry's current view of each stamp.
// Re-writing a stamp updates it, so committing a transaction and writing
// its stamps again records the commit.
func (s *Store) writeStamps(ctx context.Context, tx *sql.Tx, seqs []int32) error {
	for _, seq := range seqs {
		st, ok := s.registry.Stamp(seq)
		if !ok {
			return errs.Invariantf("write stamps: unknown stamp sequence %d", seq)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO stamps (seq, status, time, author, module, path)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(seq) DO UPDATE SET status = excluded.status, time = excluded.time
		`, seq, int(st.Status), st.Time, int32(st.Author), int32(st.Module), int32(st.Path))
		if err != nil {
			return errs.Wrapf(err, "write stamp %d", seq)
		}
	}
	return nil
}

func writeLogicGraphRefs(ctx context.Context, tx *sql.Tx, c *chronology.SemanticChronology) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM logic_graph_refs WHERE semantic = ?`, int32(c.Nid())); err != nil {
		return errs.Wrapf(err, "clear logic graph refs of %d", c.Nid())
	}
	for _, concept := range logicGraphConcepts(c) {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO logic_graph_refs (semantic, concept) VALUES (?, ?)
			ON CONFLICT DO NOTHING
		`, int32(c.Nid()), int32(concept))
		if err != nil {
			return errs.Wrapf(err, "write logic graph ref %d -> %d", c.Nid(), concept)
		}
	}
	return nil
}

// CommitTransaction commits tx at the given time and persists the
// committed stamps.
func (s *Store) CommitTransaction(ctx context.Context, tx *chronology.Transaction, at time.Time) error {
	if err := tx.Commit(at); err != nil {
		return err
	}
	return s.persistStamps(ctx, tx.Stamps())
}

// CancelTransaction cancels tx and persists the canceled stamps.
func (s *Store) CancelTransaction(ctx context.Context, tx *chronology.Transaction) error {
	if err := tx.Cancel(s.now()); err != nil {
		return err
	}
	return s.persistStamps(ctx, tx.Stamps())
}

func (s *Store) persistStamps(ctx context.Context, seqs []int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Wrap(err, "persist stamps: begin tx")
	}
	defer sqlTx.Rollback() // No-op if committed

	if err := s.writeStamps(ctx, sqlTx, seqs); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return errs.Wrap(err, "persist stamps: commit")
	}
	return nil
}

// WriteSemantic implements schema.Writer: it appends rec's payload to the
// chronology named by rec.Primordial, creating it on first write, under a
// committed stamp at the store clock's current time.
func (s *Store) WriteSemantic(ctx context.Context, rec schema.Record) (ids.Nid, error) {
	if rec.Payload == nil {
		return 0, errs.Invariantf("write semantic %s: nil payload", rec.Primordial)
	}
	// Identity writes take the store lock themselves.
	nid, err := s.AssignNid(ids.ObjectSemantic, rec.Primordial)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, found, err := s.readChronology(ctx, nid)
	if err != nil {
		return 0, err
	}
	if !found {
		c, err = chronology.New(rec.Payload.VersionType(), rec.Primordial, nid, rec.Assemblage, rec.Referenced)
		if err != nil {
			return 0, err
		}
	}

	seq := s.registry.StampSequence(chronology.Stamp{
		Status: rec.Status,
		Time:   s.now().UnixMilli(),
		Author: s.author,
		Module: s.module,
		Path:   s.path,
	})
	if _, err := c.CreateMutableVersion(seq, rec.Payload, nil); err != nil {
		return 0, err
	}
	if err := s.writeChronologyLocked(ctx, c); err != nil {
		return 0, err
	}
	s.logger.Debug("semantic written",
		"nid", nid,
		"version_type", c.VersionType().String(),
		"assemblage", c.Assemblage(),
		"versions", c.Len())
	return nid, nil
}
