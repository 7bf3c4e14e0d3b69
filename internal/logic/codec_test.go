package logic

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/termstore/internal/errs"
	"github.com/roach88/termstore/internal/ids"
	"github.com/roach88/termstore/internal/wire"
)

func TestEncode_FeatureNodeRoundTrip(t *testing.T) {
	typeNid, measureNid := ids.Nid(-7), ids.Nid(-8)

	b := NewBuilder[ids.Nid]()
	b.Feature(typeNid, Equals, measureNid, b.IntegerLiteral(5))
	expr, err := b.Build()
	require.NoError(t, err)

	data, err := expr.Encode(Internal, nil)
	require.NoError(t, err)

	decoded, err := DecodeInternal(data)
	require.NoError(t, err)

	feature := decoded.Root()
	require.Equal(t, FeatureSemantic, feature.Semantic())
	p, ok := feature.Payload().(*Feature[ids.Nid])
	require.True(t, ok)
	assert.Equal(t, Equals, p.Operator)
	assert.Equal(t, measureNid, p.Measure)
	assert.Equal(t, typeNid, p.Type)

	children := feature.Children()
	require.Len(t, children, 1)
	assert.Equal(t, LiteralInteger{Value: 5}, children[0].Payload())
}

func TestEncode_InternalRoundTrip(t *testing.T) {
	expr := everyVariantExpression(t)

	data, err := expr.Encode(Internal, nil)
	require.NoError(t, err)
	decoded, err := DecodeInternal(data)
	require.NoError(t, err)

	assert.True(t, Equal(expr, decoded))
	assert.Equal(t, expr.Len(), decoded.Len())
	for i := 0; i < expr.Len(); i++ {
		assert.Equal(t, expr.Node(i).ChildIndices(), decoded.Node(i).ChildIndices(), "node %d", i)
	}
}

func TestEncode_ExternalFromInternal(t *testing.T) {
	expr := everyVariantExpression(t)
	lookup := sampleLookup(t)

	data, err := expr.Encode(External, lookup)
	require.NoError(t, err)

	external, err := DecodeExternal(data)
	require.NoError(t, err)

	want, err := Externalize(expr, lookup)
	require.NoError(t, err)
	assert.True(t, Equal(want, external))

	back, err := Internalize(external, lookup)
	require.NoError(t, err)
	assert.True(t, Equal(expr, back))
}

func TestEncode_ExternalNeedsLookupForNids(t *testing.T) {
	expr := referenceExpression(t)

	_, err := expr.Encode(External, nil)
	require.Error(t, err)
	assert.True(t, errs.IsInvariant(err))
}

func TestWriteNodeData_UnsupportedTarget(t *testing.T) {
	expr := referenceExpression(t)

	err := expr.Root().WriteNodeData(wire.NewWriter(0), Target(7), nil)
	require.Error(t, err)
	assert.True(t, errs.IsUnsupported(err))

	_, err = expr.Encode(Target(7), nil)
	assert.True(t, errs.IsUnsupported(err))
}

func TestDecode_Rejects(t *testing.T) {
	valid, err := referenceExpression(t).Encode(Internal, nil)
	require.NoError(t, err)

	t.Run("wrong form", func(t *testing.T) {
		_, err := DecodeExternal(valid)
		assert.True(t, errs.IsUnsupported(err))
	})

	t.Run("unknown version", func(t *testing.T) {
		data := append([]byte(nil), valid...)
		data[0] = 9
		_, err := DecodeInternal(data)
		assert.True(t, errs.IsUnsupported(err))
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := DecodeInternal(valid[:len(valid)-3])
		assert.Error(t, err)
	})

	t.Run("trailing bytes", func(t *testing.T) {
		data := append(append([]byte(nil), valid...), 0)
		_, err := DecodeInternal(data)
		assert.True(t, errs.IsInvariant(err))
	})

	t.Run("unknown semantic", func(t *testing.T) {
		// First node header starts after the 6-byte expression header.
		data := append([]byte(nil), valid...)
		data[6] = 200
		_, err := DecodeInternal(data)
		assert.True(t, errs.IsUnsupported(err))
	})

	t.Run("non-negative concept nid", func(t *testing.T) {
		w := wire.NewWriter(32)
		w.PutByte(formatVersion)
		w.PutByte(byte(Internal))
		w.PutInt32(1)
		w.PutByte(byte(ConceptSemantic))
		w.PutInt32(0)
		w.PutInt32(12)
		_, err := DecodeInternal(w.Bytes())
		assert.True(t, errs.IsInvariant(err))
	})
}

func TestEncode_Empty(t *testing.T) {
	data, err := New[uuid.UUID]().Encode(External, nil)
	require.NoError(t, err)

	decoded, err := DecodeExternal(data)
	require.NoError(t, err)
	assert.Zero(t, decoded.Len())
}

// everyVariantExpression exercises every payload kind. Its nids are all
// covered by sampleLookup.
func everyVariantExpression(t *testing.T) *Expression[ids.Nid] {
	t.Helper()
	b := NewBuilder[ids.Nid]()
	b.DefinitionRoot(
		b.SufficientSet(
			b.And(
				b.Concept(-1),
				b.AllRole(-2, b.Or(b.Concept(-3), b.Concept(-5))),
				b.SomeRole(-6, b.Template(-7, -8)),
				b.Feature(-9, LessThanEquals, -10, b.FloatLiteral(37.5)),
				b.Feature(-9, GreaterThan, -10, b.InstantLiteral(time.UnixMilli(1_600_000_000_123))),
				b.Feature(-9, Equals, -10, b.BooleanLiteral(true)),
				b.Feature(-9, Equals, -10, b.StringLiteral("mg/dL")),
				b.Feature(-9, Equals, -10, b.Substitution(SubstitutionFloat, "dose")),
			),
		),
		b.PropertySet(
			b.PropertyPatternImplication([]ids.Nid{-11, -12, -11}, -2),
			b.DisjointWith(b.Concept(-3)),
		),
		b.NecessarySet(b.IntegerLiteral(-4)),
	)
	expr, err := b.Build()
	require.NoError(t, err)
	return expr
}
