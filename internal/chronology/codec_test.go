package chronology

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/termstore/internal/dyndata"
	"github.com/roach88/termstore/internal/errs"
	"github.com/roach88/termstore/internal/ids"
	"github.com/roach88/termstore/internal/logic"
)

func roundTrip(t *testing.T, c *SemanticChronology) *SemanticChronology {
	t.Helper()
	data, err := Encode(c)
	require.NoError(t, err)
	got, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, c.VersionType(), got.VersionType())
	assert.Equal(t, c.PrimordialUUID(), got.PrimordialUUID())
	assert.Equal(t, c.Nid(), got.Nid())
	assert.Equal(t, c.Assemblage(), got.Assemblage())
	assert.Equal(t, c.ReferencedComponent(), got.ReferencedComponent())
	require.Equal(t, c.Len(), got.Len())
	for i, v := range got.Versions() {
		assert.Equal(t, c.Versions()[i].StampSequence, v.StampSequence)
	}
	return got
}

func TestCodec_PlainPayloads(t *testing.T) {
	tests := []struct {
		vt      VersionType
		payload Payload
	}{
		{Member, &MemberVersion{}},
		{ComponentNid, &ComponentNidVersion{Component: -9}},
		{Long, &LongVersion{Value: 1 << 40}},
		{String, &StringVersion{Value: "ICD-10"}},
		{Image, &ImageVersion{Data: []byte{0x89, 'P', 'N', 'G'}}},
		{Description, &DescriptionVersion{CaseSignificance: -4, Language: -5, DescriptionType: -6, Text: "Bleeding"}},
		{RF2Relationship, &RF2RelationshipVersion{Destination: -1, RelationshipType: -2, Group: 3, CharacteristicType: -4, ModifierType: -5}},
		{Str1Nid2Nid3Nid4, &BrittleVersion{Type: Str1Nid2Nid3Nid4, Fields: []dyndata.Data{
			dyndata.String("a"), dyndata.Nid(-1), dyndata.Nid(-2), dyndata.Nid(-3),
		}}},
		{Nid1Int2, &BrittleVersion{Type: Nid1Int2, Fields: []dyndata.Data{dyndata.Nid(-1), dyndata.Integer(42)}}},
	}
	for _, tt := range tests {
		t.Run(tt.vt.String(), func(t *testing.T) {
			c, err := New(tt.vt, uuid.New(), -10, -11, -12)
			require.NoError(t, err)
			_, err = c.CreateMutableVersion(7, tt.payload, nil)
			require.NoError(t, err)

			got := roundTrip(t, c)
			assert.Equal(t, tt.payload, got.Versions()[0].Payload)
		})
	}
}

func TestCodec_DynamicAndLogicGraph(t *testing.T) {
	dyn, err := New(Dynamic, uuid.New(), -10, -11, -12)
	require.NoError(t, err)
	row := []dyndata.Data{dyndata.String("x"), nil, dyndata.Array{dyndata.Integer(1)}}
	_, err = dyn.CreateMutableVersion(1, &DynamicVersion{Data: row}, nil)
	require.NoError(t, err)

	got := roundTrip(t, dyn)
	gotRow := got.Versions()[0].Payload.(*DynamicVersion).Data
	require.Len(t, gotRow, 3)
	for i := range row {
		assert.True(t, dyndata.Equal(row[i], gotRow[i]))
	}

	b := logic.NewBuilder[ids.Nid]()
	b.DefinitionRoot(b.SufficientSet(b.SomeRole(-20, b.Concept(-21))))
	expr, err := b.Build()
	require.NoError(t, err)

	graph, err := New(LogicGraph, uuid.New(), -10, -11, -12)
	require.NoError(t, err)
	_, err = graph.CreateMutableVersion(1, &LogicGraphVersion{Expression: expr}, nil)
	require.NoError(t, err)
	_, err = graph.CreateMutableVersion(2, &LogicGraphVersion{Expression: expr}, nil)
	require.NoError(t, err)

	got = roundTrip(t, graph)
	for _, v := range got.Versions() {
		assert.True(t, logic.Equal(expr, v.Payload.(*LogicGraphVersion).Expression))
	}
}

func TestDecode_Rejects(t *testing.T) {
	c, err := New(Long, uuid.New(), -1, -2, -3)
	require.NoError(t, err)
	_, err = c.CreateMutableVersion(1, &LongVersion{Value: 5}, nil)
	require.NoError(t, err)
	data, err := Encode(c)
	require.NoError(t, err)

	_, err = Decode(data[:len(data)-2])
	assert.Error(t, err)

	bad := append([]byte(nil), data...)
	bad[1] = byte(Unknown)
	_, err = Decode(bad)
	assert.True(t, errs.IsUnsupported(err))

	bad = append([]byte(nil), data...)
	bad[0] = 2
	_, err = Decode(bad)
	assert.True(t, errs.IsUnsupported(err))
}
