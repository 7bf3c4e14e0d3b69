package store

import (
	"database/sql"

	"github.com/roach88/termstore/internal/chronology"
	"github.com/roach88/termstore/internal/errs"
	"github.com/roach88/termstore/internal/ids"
	"github.com/roach88/termstore/internal/logic"
)

// logicGraphConcepts returns every concept referenced by any version of a
// logic graph chronology, ascending.
func logicGraphConcepts(c *chronology.SemanticChronology) []ids.Nid {
	set := make(logic.RefSet[ids.Nid])
	for _, v := range c.Versions() {
		if p, ok := v.Payload.(*chronology.LogicGraphVersion); ok {
			p.Expression.AddConceptsReferenced(set)
		}
	}
	return set.Sorted()
}

// scanStamp reads one stamps row.
func scanStamp(rows *sql.Rows) (int32, chronology.Stamp, error) {
	var (
		seq                  int32
		status               int
		at                   int64
		author, module, path int32
	)
	if err := rows.Scan(&seq, &status, &at, &author, &module, &path); err != nil {
		return 0, chronology.Stamp{}, errs.Wrap(err, "scan stamp")
	}
	return seq, chronology.Stamp{
		Status: chronology.Status(status),
		Time:   at,
		Author: ids.Nid(author),
		Module: ids.Nid(module),
		Path:   ids.Nid(path),
	}, nil
}
