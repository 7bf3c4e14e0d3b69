package ids

import (
	"sync"

	"github.com/google/uuid"

	"github.com/roach88/termstore/internal/errs"
)

// MemoryResolver is an in-memory Resolver.
//
// Thread-safety: all methods are safe for concurrent use.
type MemoryResolver struct {
	mu      sync.RWMutex
	next    Nid
	byUUID  map[uuid.UUID]Nid
	byNid   map[Nid][]uuid.UUID
	objects map[Nid]ObjectType
}

// NewMemoryResolver creates an empty resolver whose first nid is FirstNid.
func NewMemoryResolver() *MemoryResolver {
	return &MemoryResolver{
		next:    FirstNid,
		byUUID:  make(map[uuid.UUID]Nid),
		byNid:   make(map[Nid][]uuid.UUID),
		objects: make(map[Nid]ObjectType),
	}
}

// AssignNid implements Resolver.
func (r *MemoryResolver) AssignNid(objectType ObjectType, uuids ...uuid.UUID) (Nid, error) {
	if len(uuids) == 0 {
		return 0, errs.Invariantf("assign nid: no uuids given")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	nid, found := r.lookupLocked(uuids)
	if !found {
		if r.next >= 0 {
			return 0, errs.Invariantf("assign nid: nid space exhausted")
		}
		nid = r.next
		r.next++
	}

	for _, u := range uuids {
		if _, known := r.byUUID[u]; known {
			continue
		}
		r.byUUID[u] = nid
		r.byNid[nid] = append(r.byNid[nid], u)
	}
	if objectType != ObjectUnknown {
		r.objects[nid] = objectType
	}
	return nid, nil
}

// NidForUUIDs implements Lookup.
func (r *MemoryResolver) NidForUUIDs(uuids ...uuid.UUID) (Nid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	nid, found := r.lookupLocked(uuids)
	if !found {
		return 0, unknownUUIDs(uuids)
	}
	return nid, nil
}

// UUIDsForNid implements Lookup.
func (r *MemoryResolver) UUIDsForNid(nid Nid) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list, ok := r.byNid[nid]
	if !ok {
		return nil, unknownNid(nid)
	}
	out := make([]uuid.UUID, len(list))
	copy(out, list)
	return out, nil
}

// PrimordialUUID implements Lookup.
func (r *MemoryResolver) PrimordialUUID(nid Nid) (uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list, ok := r.byNid[nid]
	if !ok {
		return uuid.Nil, unknownNid(nid)
	}
	return list[0], nil
}

// ObjectTypeForNid implements Lookup.
func (r *MemoryResolver) ObjectTypeForNid(nid Nid) (ObjectType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.byNid[nid]; !ok {
		return ObjectUnknown, unknownNid(nid)
	}
	return r.objects[nid], nil
}

// Len returns the number of allocated nids.
func (r *MemoryResolver) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byNid)
}

func (r *MemoryResolver) lookupLocked(uuids []uuid.UUID) (Nid, bool) {
	for _, u := range uuids {
		if nid, ok := r.byUUID[u]; ok {
			return nid, true
		}
	}
	return 0, false
}
