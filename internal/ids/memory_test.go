package ids

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/termstore/internal/errs"
)

func TestMemoryResolver_AssignsNegativeNids(t *testing.T) {
	r := NewMemoryResolver()

	a, err := r.AssignNid(ObjectConcept, uuid.New())
	require.NoError(t, err)
	b, err := r.AssignNid(ObjectConcept, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, FirstNid, a)
	assert.Equal(t, FirstNid+1, b)
	assert.True(t, a.IsValid())
	assert.True(t, b < 0)
}

func TestMemoryResolver_AssignIsIdempotent(t *testing.T) {
	r := NewMemoryResolver()
	u := uuid.New()

	first, err := r.AssignNid(ObjectConcept, u)
	require.NoError(t, err)
	second, err := r.AssignNid(ObjectUnknown, u)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, r.Len())

	ot, err := r.ObjectTypeForNid(first)
	require.NoError(t, err)
	assert.Equal(t, ObjectConcept, ot, "unknown object type must not overwrite a known one")
}

func TestMemoryResolver_Aliases(t *testing.T) {
	r := NewMemoryResolver()
	primordial := uuid.New()
	alias := uuid.New()

	nid, err := r.AssignNid(ObjectConcept, primordial)
	require.NoError(t, err)

	again, err := r.AssignNid(ObjectConcept, alias, primordial)
	require.NoError(t, err)
	assert.Equal(t, nid, again)

	got, err := r.NidForUUIDs(alias)
	require.NoError(t, err)
	assert.Equal(t, nid, got)

	all, err := r.UUIDsForNid(nid)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{primordial, alias}, all)

	p, err := r.PrimordialUUID(nid)
	require.NoError(t, err)
	assert.Equal(t, primordial, p)
}

func TestMemoryResolver_Unknown(t *testing.T) {
	r := NewMemoryResolver()

	_, err := r.NidForUUIDs(uuid.New())
	assert.True(t, errs.Is(err, ErrUnknownIdentifier))

	_, err = r.PrimordialUUID(FirstNid)
	assert.True(t, errs.Is(err, ErrUnknownIdentifier))

	_, err = r.AssignNid(ObjectConcept)
	assert.True(t, errs.IsInvariant(err))
}

func TestMemoryResolver_ConcurrentAssign(t *testing.T) {
	r := NewMemoryResolver()
	u := uuid.New()

	var wg sync.WaitGroup
	results := make([]Nid, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			nid, err := r.AssignNid(ObjectConcept, u)
			if err == nil {
				results[i] = nid
			}
		}(i)
	}
	wg.Wait()

	for _, nid := range results {
		assert.Equal(t, results[0], nid)
	}
	assert.Equal(t, 1, r.Len())
}

func TestParseObjectType(t *testing.T) {
	ot, err := ParseObjectType("SEMANTIC")
	require.NoError(t, err)
	assert.Equal(t, ObjectSemantic, ot)
	assert.Equal(t, "SEMANTIC", ot.String())

	_, err = ParseObjectType("WIDGET")
	assert.True(t, errs.IsUnsupported(err))
}
