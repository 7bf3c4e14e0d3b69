package logic

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/roach88/termstore/internal/errs"
	"github.com/roach88/termstore/internal/ids"
)

var testNamespace = uuid.MustParse("6ba7b812-9dad-11d1-80b4-00c04fd430c8")

// fixedLookup maps hand-picked nids to UUIDs named after them, so tests can
// use small readable nids instead of resolver-allocated ones.
type fixedLookup struct {
	byNid  map[ids.Nid]uuid.UUID
	byUUID map[uuid.UUID]ids.Nid
}

func newFixedLookup(nids ...ids.Nid) *fixedLookup {
	l := &fixedLookup{byNid: map[ids.Nid]uuid.UUID{}, byUUID: map[uuid.UUID]ids.Nid{}}
	for _, n := range nids {
		u := nidUUID(n)
		l.byNid[n] = u
		l.byUUID[u] = n
	}
	return l
}

func nidUUID(n ids.Nid) uuid.UUID {
	return uuid.NewSHA1(testNamespace, []byte(strconv.Itoa(int(n))))
}

func (l *fixedLookup) NidForUUIDs(uuids ...uuid.UUID) (ids.Nid, error) {
	for _, u := range uuids {
		if n, ok := l.byUUID[u]; ok {
			return n, nil
		}
	}
	return 0, errs.Wrapf(ids.ErrUnknownIdentifier, "no nid for %v", uuids)
}

func (l *fixedLookup) UUIDsForNid(nid ids.Nid) ([]uuid.UUID, error) {
	u, err := l.PrimordialUUID(nid)
	if err != nil {
		return nil, err
	}
	return []uuid.UUID{u}, nil
}

func (l *fixedLookup) PrimordialUUID(nid ids.Nid) (uuid.UUID, error) {
	if u, ok := l.byNid[nid]; ok {
		return u, nil
	}
	return uuid.Nil, errs.Wrapf(ids.ErrUnknownIdentifier, "no uuid for nid %d", nid)
}

func (l *fixedLookup) ObjectTypeForNid(nid ids.Nid) (ids.ObjectType, error) {
	if _, ok := l.byNid[nid]; ok {
		return ids.ObjectConcept, nil
	}
	return ids.ObjectUnknown, errs.Wrapf(ids.ErrUnknownIdentifier, "no uuid for nid %d", nid)
}
