package logic

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/termstore/internal/errs"
	"github.com/roach88/termstore/internal/ids"
)

func TestLeafNodesRejectChildren(t *testing.T) {
	e := New[ids.Nid]()
	child, err := e.Concept(-10)
	require.NoError(t, err)

	concept, err := e.Concept(-11)
	require.NoError(t, err)
	template, err := e.Template(-12, -13)
	require.NoError(t, err)
	ppi, err := e.PropertyPatternImplication([]ids.Nid{-14, -15}, -16)
	require.NoError(t, err)
	literal, err := e.StringLiteral("x")
	require.NoError(t, err)

	for _, leaf := range []*Node[ids.Nid]{concept, template, ppi, literal} {
		t.Run(leaf.Semantic().String(), func(t *testing.T) {
			err := leaf.AddChildren(child)
			require.Error(t, err)
			assert.True(t, errs.IsInvariant(err))
			assert.Empty(t, leaf.Children())
		})
	}
}

func TestConceptNidMustBeNegative(t *testing.T) {
	e := New[ids.Nid]()

	_, err := e.Concept(0)
	require.Error(t, err)
	assert.True(t, errs.IsInvariant(err))

	_, err = e.Concept(42)
	assert.True(t, errs.IsInvariant(err))

	n, err := e.Concept(-1)
	require.NoError(t, err)
	assert.Equal(t, 0, n.Index())
	assert.Equal(t, 1, e.Len())
}

func TestRoleSomeRejectsOrChild(t *testing.T) {
	e := New[ids.Nid]()
	a, _ := e.Concept(-1)
	b, _ := e.Concept(-2)
	or, err := e.Or(a, b)
	require.NoError(t, err)

	_, err = e.SomeRole(-3, or)
	require.Error(t, err)
	assert.True(t, errs.IsInvariant(err))
	assert.Equal(t, 3, e.Len(), "failed node is not kept")

	and, err := e.And(a, b)
	require.NoError(t, err)
	some, err := e.SomeRole(-3, and)
	require.NoError(t, err)
	assert.Equal(t, RoleSome, some.Semantic())

	all, err := e.AllRole(-3, or)
	require.NoError(t, err, "ROLE_ALL accepts an OR child")
	assert.Equal(t, RoleAll, all.Semantic())
}

func TestTypedNodesTakeExactlyOneChild(t *testing.T) {
	e := New[ids.Nid]()
	a, _ := e.Concept(-1)
	b, _ := e.Concept(-2)

	role, err := e.AllRole(-3, a)
	require.NoError(t, err)

	err = role.AddChildren(b)
	require.Error(t, err)
	assert.True(t, errs.IsInvariant(err))

	_, err = e.SomeRole(-3, nil)
	assert.True(t, errs.IsInvariant(err))
}

func TestAddChildrenRejectsForeignNodes(t *testing.T) {
	e1 := New[ids.Nid]()
	e2 := New[ids.Nid]()
	foreign, _ := e2.Concept(-1)

	_, err := e1.And(foreign)
	require.Error(t, err)
	assert.True(t, errs.IsInvariant(err))
}

func TestAddChildrenRejectsCycle(t *testing.T) {
	e := New[ids.Nid]()
	c, _ := e.Concept(-1)
	and, err := e.And(c)
	require.NoError(t, err)
	or, err := e.Or(and)
	require.NoError(t, err)
	outer, err := e.And(or)
	require.NoError(t, err)

	err = and.AddChildren(or)
	require.Error(t, err)
	assert.True(t, errs.IsInvariant(err))
	assert.Contains(t, err.Error(), "cycle")

	err = and.AddChildren(outer)
	require.Error(t, err, "indirect cycle")
	assert.True(t, errs.IsInvariant(err))

	assert.Len(t, and.Children(), 1, "rejected children are not attached")
	require.NoError(t, e.Validate())

	// Shared children are fine: the graph stays a DAG.
	require.NoError(t, outer.AddChildren(c))
}

func TestSubstitutionRequiresSubstitutionSemantic(t *testing.T) {
	e := New[ids.Nid]()

	_, err := e.Substitution(And, "field")
	require.Error(t, err)
	assert.True(t, errs.IsUnsupported(err))

	n, err := e.Substitution(SubstitutionInteger, "count")
	require.NoError(t, err)
	assert.Equal(t, Substitution{Field: "count"}, n.Payload())
}

func TestConceptsReferenced_PropertyPatternImplication(t *testing.T) {
	a, b, c := ids.Nid(-10), ids.Nid(-20), ids.Nid(-30)

	e := New[ids.Nid]()
	n, err := e.PropertyPatternImplication([]ids.Nid{a, b}, c)
	require.NoError(t, err)

	set := make(RefSet[ids.Nid])
	n.AddConceptsReferenced(set)

	assert.Equal(t, []ids.Nid{c, b, a}, set.Sorted())
}

func TestConceptsReferenced_WholeGraph(t *testing.T) {
	e := referenceExpression(t)

	got := e.ConceptsReferenced().Sorted()

	assert.Equal(t, []ids.Nid{-500, -400, -300, -200, -100}, got)
}

func TestPropertyPatternCopiesPattern(t *testing.T) {
	pattern := []uuid.UUID{uuid.New(), uuid.New()}
	e := New[uuid.UUID]()
	n, err := e.PropertyPatternImplication(pattern, uuid.New())
	require.NoError(t, err)

	original := pattern[0]
	pattern[0] = uuid.Nil

	p := n.Payload().(*PropertyPatternImplication[uuid.UUID])
	assert.Equal(t, original, p.Pattern[0])
}

func TestValidate(t *testing.T) {
	t.Run("reference expression", func(t *testing.T) {
		assert.NoError(t, referenceExpression(t).Validate())
	})

	t.Run("cycle", func(t *testing.T) {
		e := New[ids.Nid]()
		leaf, _ := e.Concept(-1)
		a, err := e.And(leaf)
		require.NoError(t, err)
		b, err := e.Or(a)
		require.NoError(t, err)
		require.NoError(t, a.AddChildren(b))

		err = e.Validate()
		require.Error(t, err)
		assert.True(t, errs.IsInvariant(err))
	})

	t.Run("empty connector", func(t *testing.T) {
		e := New[ids.Nid]()
		_, err := e.And()
		require.NoError(t, err)

		err = e.Validate()
		assert.True(t, errs.IsInvariant(err))
	})

	t.Run("empty definition root while building", func(t *testing.T) {
		e := New[ids.Nid]()
		_, err := e.DefinitionRoot()
		require.NoError(t, err)
		assert.NoError(t, e.Validate())
	})
}

func TestRoots(t *testing.T) {
	e := referenceExpression(t)

	roots := e.Roots()
	require.Len(t, roots, 1)
	assert.Equal(t, DefinitionRoot, roots[0].Semantic())
	assert.Same(t, roots[0], e.Root())
	assert.Nil(t, New[ids.Nid]().Root())
}

func TestBuilderKeepsFirstError(t *testing.T) {
	b := NewBuilder[ids.Nid]()
	b.DefinitionRoot(b.NecessarySet(b.SomeRole(-1, b.Or(b.Concept(-2), b.Concept(7)))))

	_, err := b.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "concept nid 7 must be negative")
}

// referenceExpression is the nid-addressed graph the renderer goldens use:
//
//	[7] DEFINITION_ROOT
//	  [6] NECESSARY_SET
//	    [5] AND
//	      [0] CONCEPT -100
//	      [2] ROLE_SOME type=-200 -> [1] CONCEPT -300
//	      [4] FEATURE type=-400 GREATER_THAN measure=-500 -> [3] 2.5
func referenceExpression(t *testing.T) *Expression[ids.Nid] {
	t.Helper()
	b := NewBuilder[ids.Nid]()
	b.DefinitionRoot(
		b.NecessarySet(
			b.And(
				b.Concept(-100),
				b.SomeRole(-200, b.Concept(-300)),
				b.Feature(-400, GreaterThan, -500, b.FloatLiteral(2.5)),
			),
		),
	)
	e, err := b.Build()
	require.NoError(t, err)
	return e
}
