package logic

import (
	"bytes"
	"cmp"
	"slices"
	"strconv"

	"github.com/google/uuid"

	"github.com/roach88/termstore/internal/ids"
	"github.com/roach88/termstore/internal/wire"
)

// Ref is the identifier representation a node graph is addressed by:
// ids.Nid for the INTERNAL form, uuid.UUID for the EXTERNAL form.
type Ref interface {
	ids.Nid | uuid.UUID
}

// compareRef orders nids numerically and UUIDs bytewise.
func compareRef[R Ref](a, b R) int {
	switch av := any(a).(type) {
	case ids.Nid:
		return cmp.Compare(av, any(b).(ids.Nid))
	case uuid.UUID:
		bv := any(b).(uuid.UUID)
		return bytes.Compare(av[:], bv[:])
	}
	return 0
}

func compareRefs[R Ref](a, b []R) int {
	if c := cmp.Compare(len(a), len(b)); c != 0 {
		return c
	}
	for i := range a {
		if c := compareRef(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

// targetOf returns the serialization target native to R.
func targetOf[R Ref]() Target {
	var zero R
	if _, ok := any(zero).(uuid.UUID); ok {
		return External
	}
	return Internal
}

// refUUID resolves r to its UUID. lookup may be nil for the EXTERNAL form.
func refUUID[R Ref](r R, lookup ids.Lookup) (uuid.UUID, error) {
	switch v := any(r).(type) {
	case uuid.UUID:
		return v, nil
	case ids.Nid:
		if lookup == nil {
			return uuid.Nil, errMissingLookup
		}
		return lookup.PrimordialUUID(v)
	}
	return uuid.Nil, nil
}

// refLabel is the default textual rendering of a reference.
func refLabel[R Ref](r R) string {
	switch v := any(r).(type) {
	case uuid.UUID:
		return v.String()
	case ids.Nid:
		return strconv.FormatInt(int64(v), 10)
	}
	return ""
}

func putRef[R Ref](w *wire.Writer, r R) {
	switch v := any(r).(type) {
	case uuid.UUID:
		w.PutUUID(v)
	case ids.Nid:
		w.PutInt32(int32(v))
	}
}

func getRef[R Ref](r *wire.Reader) R {
	var zero R
	switch any(zero).(type) {
	case uuid.UUID:
		return any(r.UUID()).(R)
	case ids.Nid:
		return any(ids.Nid(r.Int32())).(R)
	}
	return zero
}

// RefSet accumulates identifiers referenced by nodes.
type RefSet[R Ref] map[R]struct{}

// Add inserts refs into the set.
func (s RefSet[R]) Add(refs ...R) {
	for _, r := range refs {
		s[r] = struct{}{}
	}
}

// Has reports whether r is in the set.
func (s RefSet[R]) Has(r R) bool {
	_, ok := s[r]
	return ok
}

// Sorted returns the members in ref order.
func (s RefSet[R]) Sorted() []R {
	out := make([]R, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	slices.SortFunc(out, compareRef[R])
	return out
}
