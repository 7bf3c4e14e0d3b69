package store

import (
	"context"
	"database/sql"

	"github.com/roach88/termstore/internal/chronology"
	"github.com/roach88/termstore/internal/errs"
	"github.com/roach88/termstore/internal/ids"
	"github.com/roach88/termstore/internal/schema"
)

// ReadChronology returns the chronology stored under nid.
// Returns false if no semantic has that nid.
func (s *Store) ReadChronology(ctx context.Context, nid ids.Nid) (*chronology.SemanticChronology, bool, error) {
	return s.readChronology(ctx, nid)
}

func (s *Store) readChronology(ctx context.Context, nid ids.Nid) (*chronology.SemanticChronology, bool, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT chronology FROM semantics WHERE nid = ?`, int32(nid)).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errs.Wrapf(err, "read chronology %d", nid)
	}
	c, err := chronology.Decode(blob)
	if err != nil {
		return nil, false, errs.Wrapf(err, "decode chronology %d", nid)
	}
	return c, true, nil
}

// ChronologiesFor returns every chronology referencing component, ordered
// by nid. An optional assemblage filter of 0 matches all assemblages.
func (s *Store) ChronologiesFor(ctx context.Context, component, assemblage ids.Nid) ([]*chronology.SemanticChronology, error) {
	query := `SELECT chronology FROM semantics WHERE referenced = ? ORDER BY nid ASC`
	args := []any{int32(component)}
	if assemblage != 0 {
		query = `SELECT chronology FROM semantics WHERE referenced = ? AND assemblage = ? ORDER BY nid ASC`
		args = append(args, int32(assemblage))
	}
	return s.queryChronologies(ctx, query, args...)
}

func (s *Store) queryChronologies(ctx context.Context, query string, args ...any) ([]*chronology.SemanticChronology, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errs.Wrap(err, "query chronologies")
	}
	defer rows.Close()

	chronologies := []*chronology.SemanticChronology{}
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, errs.Wrap(err, "scan chronology")
		}
		c, err := chronology.Decode(blob)
		if err != nil {
			return nil, errs.Wrap(err, "decode chronology")
		}
		chronologies = append(chronologies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(err, "iterate chronologies")
	}
	return chronologies, nil
}

// AttachedTo implements schema.Source.
func (s *Store) AttachedTo(ctx context.Context, component ids.Nid) ([]schema.Attachment, error) {
	chronologies, err := s.ChronologiesFor(ctx, component, 0)
	if err != nil {
		return nil, err
	}
	var out []schema.Attachment
	for _, c := range chronologies {
		if a, ok := s.latest(c); ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// FirstOfAssemblage implements schema.Source.
func (s *Store) FirstOfAssemblage(ctx context.Context, assemblage ids.Nid) (schema.Attachment, bool, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT chronology FROM semantics WHERE assemblage = ? ORDER BY nid ASC
	`, int32(assemblage))
	if err != nil {
		return schema.Attachment{}, false, errs.Wrap(err, "query assemblage members")
	}
	defer rows.Close()

	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return schema.Attachment{}, false, errs.Wrap(err, "scan chronology")
		}
		c, err := chronology.Decode(blob)
		if err != nil {
			return schema.Attachment{}, false, errs.Wrap(err, "decode chronology")
		}
		if a, ok := s.latest(c); ok {
			return a, true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return schema.Attachment{}, false, errs.Wrap(err, "iterate assemblage members")
	}
	return schema.Attachment{}, false, nil
}

func (s *Store) latest(c *chronology.SemanticChronology) (schema.Attachment, bool) {
	v, ok := c.Latest(s.registry)
	if !ok {
		return schema.Attachment{}, false
	}
	return schema.Attachment{
		Nid:        c.Nid(),
		Assemblage: c.Assemblage(),
		Referenced: c.ReferencedComponent(),
		Payload:    v.Payload,
	}, true
}

// LogicGraphsReferencing returns the nids of logic graph semantics whose
// versions reference concept, in ascending order.
func (s *Store) LogicGraphsReferencing(ctx context.Context, concept ids.Nid) ([]ids.Nid, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT semantic FROM logic_graph_refs WHERE concept = ? ORDER BY semantic ASC
	`, int32(concept))
	if err != nil {
		return nil, errs.Wrapf(err, "query logic graphs referencing %d", concept)
	}
	defer rows.Close()

	nids := []ids.Nid{}
	for rows.Next() {
		var nid int32
		if err := rows.Scan(&nid); err != nil {
			return nil, errs.Wrap(err, "scan logic graph ref")
		}
		nids = append(nids, ids.Nid(nid))
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(err, "iterate logic graph refs")
	}
	return nids, nil
}
