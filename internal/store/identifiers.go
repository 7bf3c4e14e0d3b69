package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/roach88/termstore/internal/errs"
	"github.com/roach88/termstore/internal/ids"
)

// AssignNid implements ids.Resolver. Nids are allocated densely, so the next
// nid is one past the largest allocated.
func (s *Store) AssignNid(objectType ids.ObjectType, uuids ...uuid.UUID) (ids.Nid, error) {
	if len(uuids) == 0 {
		return 0, errs.Invariantf("assign nid: no uuids given")
	}
	ctx := context.Background()

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errs.Wrap(err, "assign nid: begin tx")
	}
	defer tx.Rollback() // No-op if committed

	nid, found, err := nidForUUIDs(ctx, tx, uuids)
	if err != nil {
		return 0, err
	}
	if !found {
		var last sql.NullInt64
		if err := tx.QueryRowContext(ctx, `SELECT MAX(nid) FROM components`).Scan(&last); err != nil {
			return 0, errs.Wrap(err, "assign nid: read max nid")
		}
		nid = ids.FirstNid
		if last.Valid {
			if last.Int64 >= -1 {
				return 0, errs.Invariantf("assign nid: nid space exhausted")
			}
			nid = ids.Nid(last.Int64 + 1)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO components (nid, object_type) VALUES (?, ?)`,
			int32(nid), int(objectType)); err != nil {
			return 0, errs.Wrap(err, "assign nid: insert component")
		}
	} else if objectType != ids.ObjectUnknown {
		if _, err := tx.ExecContext(ctx, `UPDATE components SET object_type = ? WHERE nid = ?`,
			int(objectType), int32(nid)); err != nil {
			return 0, errs.Wrap(err, "assign nid: update object type")
		}
	}

	for _, u := range uuids {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO identifiers (uuid, nid, ordinal)
			SELECT ?, ?, COUNT(*) FROM identifiers WHERE nid = ?
			ON CONFLICT(uuid) DO NOTHING
		`, u.String(), int32(nid), int32(nid))
		if err != nil {
			return 0, errs.Wrapf(err, "assign nid: register %s", u)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errs.Wrap(err, "assign nid: commit")
	}
	return nid, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func nidForUUIDs(ctx context.Context, q queryer, uuids []uuid.UUID) (ids.Nid, bool, error) {
	for _, u := range uuids {
		var nid int32
		err := q.QueryRowContext(ctx, `SELECT nid FROM identifiers WHERE uuid = ?`, u.String()).Scan(&nid)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return 0, false, errs.Wrapf(err, "look up %s", u)
		}
		return ids.Nid(nid), true, nil
	}
	return 0, false, nil
}

// NidForUUIDs implements ids.Lookup.
func (s *Store) NidForUUIDs(uuids ...uuid.UUID) (ids.Nid, error) {
	nid, found, err := nidForUUIDs(context.Background(), s.db, uuids)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, errs.Wrapf(ids.ErrUnknownIdentifier, "no nid for %v", uuids)
	}
	return nid, nil
}

// UUIDsForNid implements ids.Lookup.
func (s *Store) UUIDsForNid(nid ids.Nid) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(context.Background(), `
		SELECT uuid FROM identifiers WHERE nid = ? ORDER BY ordinal ASC
	`, int32(nid))
	if err != nil {
		return nil, errs.Wrapf(err, "query uuids of nid %d", nid)
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, errs.Wrap(err, "scan uuid")
		}
		u, err := uuid.Parse(text)
		if err != nil {
			return nil, errs.Wrapf(err, "parse stored uuid %q", text)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(err, "iterate uuids")
	}
	if len(out) == 0 {
		return nil, errs.Wrapf(ids.ErrUnknownIdentifier, "no uuid for nid %d", nid)
	}
	return out, nil
}

// PrimordialUUID implements ids.Lookup.
func (s *Store) PrimordialUUID(nid ids.Nid) (uuid.UUID, error) {
	var text string
	err := s.db.QueryRowContext(context.Background(), `
		SELECT uuid FROM identifiers WHERE nid = ? AND ordinal = 0
	`, int32(nid)).Scan(&text)
	if err == sql.ErrNoRows {
		return uuid.Nil, errs.Wrapf(ids.ErrUnknownIdentifier, "no uuid for nid %d", nid)
	}
	if err != nil {
		return uuid.Nil, errs.Wrapf(err, "query primordial uuid of nid %d", nid)
	}
	return uuid.Parse(text)
}

// ObjectTypeForNid implements ids.Lookup.
func (s *Store) ObjectTypeForNid(nid ids.Nid) (ids.ObjectType, error) {
	var t int
	err := s.db.QueryRowContext(context.Background(), `
		SELECT object_type FROM components WHERE nid = ?
	`, int32(nid)).Scan(&t)
	if err == sql.ErrNoRows {
		return ids.ObjectUnknown, errs.Wrapf(ids.ErrUnknownIdentifier, "no component for nid %d", nid)
	}
	if err != nil {
		return ids.ObjectUnknown, errs.Wrapf(err, "query object type of nid %d", nid)
	}
	return ids.ObjectType(t), nil
}
