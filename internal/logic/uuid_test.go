package logic

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/termstore/internal/errs"
)

func TestNodeUUID_Deterministic(t *testing.T) {
	a := referenceExpression(t)
	b := referenceExpression(t)
	lookup := referenceLookup(t)

	for i := 0; i < a.Len(); i++ {
		ua, err := a.Node(i).UUID(lookup)
		require.NoError(t, err)
		ub, err := b.Node(i).UUID(lookup)
		require.NoError(t, err)
		assert.Equal(t, ua, ub, "node %d", i)
		assert.Equal(t, uuid.Version(5), ua.Version())
	}
}

func TestNodeUUID_FloatLiteralsAgreeWithCompare(t *testing.T) {
	negZero := float32(math.Copysign(0, -1))
	nan := float32(math.NaN())
	otherNaN := math.Float32frombits(math.Float32bits(nan) | 1)

	for _, pair := range [][2]float32{{0, negZero}, {nan, otherNaN}} {
		e1 := New[uuid.UUID]()
		a, err := e1.FloatLiteral(pair[0])
		require.NoError(t, err)
		e2 := New[uuid.UUID]()
		b, err := e2.FloatLiteral(pair[1])
		require.NoError(t, err)

		assert.Equal(t, 0, a.Compare(b))
		ua, err := a.UUID(nil)
		require.NoError(t, err)
		ub, err := b.UUID(nil)
		require.NoError(t, err)
		assert.Equal(t, ua, ub)

		da, err := e1.Encode(External, nil)
		require.NoError(t, err)
		db, err := e2.Encode(External, nil)
		require.NoError(t, err)
		assert.Equal(t, da, db)
	}

	decoded, err := DecodeYAML([]byte("nodes:\n  - semantic: LITERAL_FLOAT\n    value: \"-0\"\n"))
	require.NoError(t, err)
	v := decoded.Node(0).Payload().(LiteralFloat).Value
	assert.False(t, math.Signbit(float64(v)), "decoded -0 is folded to +0")
}

func TestNodeUUID_DistinctContent(t *testing.T) {
	nodes := sampleNodes(t)
	lookup := sampleLookup(t)

	seen := make(map[uuid.UUID]int)
	for i, n := range nodes {
		u, err := n.UUID(lookup)
		require.NoError(t, err)
		if j, dup := seen[u]; dup {
			t.Fatalf("nodes %d and %d share UUID %s", j, i, u)
		}
		seen[u] = i
	}
}

func TestNodeUUID_ConnectorChildOrderIrrelevant(t *testing.T) {
	e := New[uuid.UUID]()
	x, y := uuid.New(), uuid.New()
	c1, _ := e.Concept(x)
	c2, _ := e.Concept(y)
	ab, err := e.And(c1, c2)
	require.NoError(t, err)
	ba, err := e.And(c2, c1)
	require.NoError(t, err)

	u1, err := ab.UUID(nil)
	require.NoError(t, err)
	u2, err := ba.UUID(nil)
	require.NoError(t, err)
	assert.Equal(t, u1, u2)
}

func TestNodeUUID_SameInBothForms(t *testing.T) {
	internal := referenceExpression(t)
	lookup := referenceLookup(t)

	external, err := Externalize(internal, lookup)
	require.NoError(t, err)

	ui, err := internal.UUID(lookup)
	require.NoError(t, err)
	ue, err := external.UUID(nil)
	require.NoError(t, err)
	assert.Equal(t, ui, ue)
}

func TestNodeUUID_NidFormNeedsLookup(t *testing.T) {
	e := referenceExpression(t)

	_, err := e.Root().UUID(nil)
	require.Error(t, err)
	assert.True(t, errs.IsInvariant(err))
}

func TestNodeUUID_RecomputedAfterStructureChange(t *testing.T) {
	e := New[uuid.UUID]()
	c1, _ := e.Concept(uuid.New())
	c2, _ := e.Concept(uuid.New())
	root, err := e.DefinitionRoot(c1)
	require.NoError(t, err)

	before, err := root.UUID(nil)
	require.NoError(t, err)
	require.NoError(t, root.AddChildren(c2))
	after, err := root.UUID(nil)
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
}

// referenceLookup registers the identifiers of referenceExpression.
func referenceLookup(t *testing.T) *fixedLookup {
	t.Helper()
	return newFixedLookup(-500, -400, -300, -200, -100)
}

func sampleLookup(t *testing.T) *fixedLookup {
	t.Helper()
	return newFixedLookup(-12, -11, -10, -9, -8, -7, -6, -5, -3, -2, -1)
}
