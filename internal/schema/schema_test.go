package schema

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/termstore/internal/chronology"
	"github.com/roach88/termstore/internal/dyndata"
	"github.com/roach88/termstore/internal/errs"
	"github.com/roach88/termstore/internal/ids"
	"github.com/roach88/termstore/internal/metadata"
)

var (
	severityAssemblage = uuid.MustParse("6b0c3e2a-7d4f-5c0e-9a55-3a1c2d7e8f01")
	scoreLabel         = uuid.MustParse("0f6b1c44-2a3b-5d4e-8f90-112233445566")
	noteLabel          = uuid.MustParse("1a2b3c4d-5e6f-5a7b-8c9d-0e1f2a3b4c5d")
	flagLabel          = uuid.MustParse("9e8d7c6b-5a49-5382-a1b0-c9d8e7f6a5b4")
)

func severityDefinition() Definition {
	return Definition{
		Assemblage:  severityAssemblage,
		Name:        "Severity score",
		Description: "Records a clinician-assigned severity score",
		Columns: []ColumnInfo{
			{
				Order:         0,
				Label:         scoreLabel,
				Name:          "score",
				Type:          dyndata.TypeInteger,
				Required:      true,
				Validators:    []dyndata.ValidatorType{dyndata.Interval},
				ValidatorData: []dyndata.Data{dyndata.String("[0, 10]")},
			},
			{Order: 1, Label: noteLabel, Name: "note", Type: dyndata.TypeString, Default: dyndata.String("none")},
			{Order: 2, Label: flagLabel, Type: dyndata.TypePolymorphic},
		},
		RestrictionType: ids.ObjectConcept,
	}
}

func defineSeverity(t *testing.T, m *Memory) ids.Nid {
	t.Helper()
	nid, err := Define(context.Background(), m, severityDefinition())
	require.NoError(t, err)
	return nid
}

// rawAssemblage writes a dynamic definition whose column rows bypass Define's
// checks, numbering the columns with the given orders.
func rawAssemblage(t *testing.T, m *Memory, orders ...int) (ids.Nid, uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	u := uuid.New()
	nid, err := Define(ctx, m, Definition{Assemblage: u, Description: "malformed"})
	require.NoError(t, err)

	ext, err := m.NidForUUIDs(metadata.DynamicExtensionDefinition)
	require.NoError(t, err)
	for _, order := range orders {
		_, err := m.WriteSemantic(ctx, Record{
			Primordial: uuid.New(),
			Assemblage: ext,
			Referenced: nid,
			Payload: &chronology.DynamicVersion{Data: EncodeColumn(ColumnInfo{
				Order: order,
				Label: uuid.New(),
				Type:  dyndata.TypeString,
			})},
		})
		require.NoError(t, err)
	}
	return nid, u
}

func TestDefineThenRead(t *testing.T) {
	m := NewMemory()
	nid := defineSeverity(t, m)

	d, err := Read(context.Background(), m, nid)
	require.NoError(t, err)

	assert.True(t, d.Dynamic())
	assert.Equal(t, "Severity score", d.Name)
	assert.Equal(t, "Records a clinician-assigned severity score", d.Description)
	assert.Equal(t, ids.ObjectConcept, d.RestrictionType)
	assert.Equal(t, chronology.Unknown, d.RestrictionSubtype)
	require.Len(t, d.Columns, 3)

	score := d.Columns[0]
	assert.Equal(t, scoreLabel, score.Label)
	assert.Equal(t, "score", score.Name)
	assert.Equal(t, dyndata.TypeInteger, score.Type)
	assert.True(t, score.Required)
	assert.Equal(t, []dyndata.ValidatorType{dyndata.Interval}, score.Validators)

	note := d.Columns[1]
	assert.Equal(t, dyndata.String("none"), note.Default)
	assert.False(t, note.Required)

	flag := d.Columns[2]
	assert.Equal(t, dyndata.TypePolymorphic, flag.Type)
	assert.Empty(t, flag.Name)
}

func TestRead_ColumnContiguity(t *testing.T) {
	tests := []struct {
		name    string
		orders  []int
		wantErr bool
	}{
		{"zero based and gapless", []int{0, 1, 2}, false},
		{"written out of order", []int{2, 0, 1}, false},
		{"gap", []int{0, 2}, true},
		{"does not start at zero", []int{1, 2, 3}, true},
		{"duplicate", []int{0, 0, 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMemory()
			nid, u := rawAssemblage(t, m, tt.orders...)

			d, err := Read(context.Background(), m, nid)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Len(t, d.Columns, len(tt.orders))
				return
			}
			require.Error(t, err)
			assert.Nil(t, d)
			assert.True(t, errs.IsConfiguration(err))
			assert.Contains(t, err.Error(), u.String(), "error names the assemblage")
		})
	}
}

func TestRead_MissingColumnTwo(t *testing.T) {
	m := NewMemory()
	nid, u := rawAssemblage(t, m, 0, 1, 3)

	_, err := Read(context.Background(), m, nid)
	require.Error(t, err)
	assert.True(t, errs.IsConfiguration(err))
	assert.Contains(t, err.Error(), u.String())
	assert.Contains(t, err.Error(), "column 3 found where column 2 was expected")
}

func TestRead_NotDynamic(t *testing.T) {
	m := NewMemory()
	nid, err := m.AssignNid(ids.ObjectConcept, uuid.New())
	require.NoError(t, err)

	_, err = Read(context.Background(), m, nid)
	require.Error(t, err)
	assert.True(t, errs.Is(err, ErrUndescribed))
}

func TestRead_TwoRestrictions(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	nid := defineSeverity(t, m)
	restriction, err := m.NidForUUIDs(metadata.DynamicReferencedComponentRestriction)
	require.NoError(t, err)
	_, err = m.WriteSemantic(ctx, Record{
		Primordial: uuid.New(),
		Assemblage: restriction,
		Referenced: nid,
		Payload:    &chronology.DynamicVersion{Data: EncodeRestriction(ids.ObjectSemantic, chronology.Unknown)},
	})
	require.NoError(t, err)

	_, err = Read(ctx, m, nid)
	require.Error(t, err)
	assert.True(t, errs.IsConfiguration(err))
}

func TestRedefineRetiresColumns(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	defineSeverity(t, m)

	narrower := severityDefinition()
	narrower.Columns = narrower.Columns[:1]
	narrower.RestrictionType = ids.ObjectUnknown
	nid, err := Define(ctx, m, narrower)
	require.NoError(t, err)

	d, err := Read(ctx, m, nid)
	require.NoError(t, err)
	assert.Len(t, d.Columns, 1)
	assert.Equal(t, ids.ObjectUnknown, d.RestrictionType)
}

func TestRedefineRetiresOnce(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	defineSeverity(t, m)

	narrower := severityDefinition()
	narrower.Columns = narrower.Columns[:1]
	narrower.RestrictionType = ids.ObjectUnknown
	for i := 0; i < 3; i++ {
		_, err := Define(ctx, m, narrower)
		require.NoError(t, err)
	}

	for _, part := range []string{"column/1", "restriction"} {
		nid, err := m.NidForUUIDs(uuid.NewSHA1(narrower.Assemblage, []byte(part)))
		require.NoError(t, err, part)
		c, ok := m.Chronology(nid)
		require.True(t, ok, part)
		assert.Equal(t, 2, c.Len(), "%s: one active and one INACTIVE version", part)
	}

	// Widening again revives the column.
	nid := defineSeverity(t, m)
	d, err := Read(ctx, m, nid)
	require.NoError(t, err)
	assert.Len(t, d.Columns, len(severityDefinition().Columns))
}

func TestDecodeColumn_Rejects(t *testing.T) {
	valid := EncodeColumn(ColumnInfo{Order: 0, Label: uuid.New(), Type: dyndata.TypeLong})
	require.Len(t, valid, 3)

	tests := []struct {
		name string
		row  []dyndata.Data
	}{
		{"too few slots", valid[:2]},
		{"too many slots", append(append([]dyndata.Data{}, valid...), nil, nil, nil, nil, nil)},
		{"negative order", []dyndata.Data{dyndata.Integer(-1), valid[1], valid[2]}},
		{"label not a uuid", []dyndata.Data{valid[0], dyndata.String("x"), valid[2]}},
		{"unknown type name", []dyndata.Data{valid[0], valid[1], dyndata.String("DECIMAL")}},
		{"default type mismatch", []dyndata.Data{valid[0], valid[1], valid[2], dyndata.String("5")}},
		{"polymorphic default", []dyndata.Data{valid[0], valid[1], dyndata.String("POLYMORPHIC"), dyndata.Long(5)}},
		{"required not boolean", []dyndata.Data{valid[0], valid[1], valid[2], nil, dyndata.String("yes")}},
		{"unknown validator", []dyndata.Data{valid[0], valid[1], valid[2], nil, nil, dyndata.Strings("NEAR")}},
		{"validator data length", []dyndata.Data{valid[0], valid[1], valid[2], nil, nil,
			dyndata.Strings("LESS_THAN"), dyndata.Array{dyndata.Long(1), dyndata.Long(2)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeColumn(tt.row)
			require.Error(t, err)
			assert.True(t, errs.IsConfiguration(err))
		})
	}
}

func TestEncodeColumn_RoundTrip(t *testing.T) {
	col := severityDefinition().Columns[0]
	col.Name = ""

	row := EncodeColumn(col)
	assert.Len(t, row, 7)
	got, err := DecodeColumn(row)
	require.NoError(t, err)
	assert.Equal(t, col, got)
}

func TestDefinitionCheck(t *testing.T) {
	def := severityDefinition()
	def.Columns[1].Order = 5
	err := def.Check()
	require.Error(t, err)
	assert.True(t, errs.IsConfiguration(err))

	def = severityDefinition()
	def.Description = ""
	assert.True(t, errs.IsConfiguration(def.Check()))

	m := NewMemory()
	_, err = Define(context.Background(), m, def)
	require.Error(t, err)
	assert.Zero(t, m.Len(), "nothing is written for a rejected definition")
}

func TestValidateRow(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	d, err := Read(ctx, m, defineSeverity(t, m))
	require.NoError(t, err)

	row, err := d.Validate(ctx, []dyndata.Data{dyndata.Integer(4)}, nil)
	require.NoError(t, err)
	assert.Equal(t, []dyndata.Data{dyndata.Integer(4), dyndata.String("none"), nil}, row)

	row, err = d.Validate(ctx, []dyndata.Data{dyndata.Integer(4), nil, dyndata.Double(0.5)}, nil)
	require.NoError(t, err)
	assert.Equal(t, dyndata.Double(0.5), row[2])

	tests := []struct {
		name string
		row  []dyndata.Data
	}{
		{"required missing", []dyndata.Data{nil, dyndata.String("x")}},
		{"wrong type", []dyndata.Data{dyndata.Long(4)}},
		{"out of interval", []dyndata.Data{dyndata.Integer(11)}},
		{"too many values", []dyndata.Data{dyndata.Integer(1), nil, nil, nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Validate(ctx, tt.row, nil)
			require.Error(t, err)
			assert.True(t, errs.Is(err, dyndata.ErrValidation))
		})
	}
}

func TestCheckReferenced(t *testing.T) {
	d := &UsageDescription{RestrictionType: ids.ObjectSemantic, RestrictionSubtype: chronology.Description}

	assert.NoError(t, d.CheckReferenced(ids.ObjectSemantic, chronology.Description))
	assert.True(t, errs.Is(d.CheckReferenced(ids.ObjectConcept, chronology.Unknown), dyndata.ErrValidation))
	assert.True(t, errs.Is(d.CheckReferenced(ids.ObjectSemantic, chronology.String), dyndata.ErrValidation))

	open := &UsageDescription{RestrictionSubtype: chronology.Unknown}
	assert.NoError(t, open.CheckReferenced(ids.ObjectConcept, chronology.Unknown))
}

func TestRestrictionCodec(t *testing.T) {
	assert.Nil(t, EncodeRestriction(ids.ObjectUnknown, chronology.Unknown))

	row := EncodeRestriction(ids.ObjectSemantic, chronology.LogicGraph)
	assert.Equal(t, []dyndata.Data{dyndata.String("SEMANTIC"), dyndata.String("LOGIC_GRAPH")}, row)
	ot, vt, err := DecodeRestriction(row)
	require.NoError(t, err)
	assert.Equal(t, ids.ObjectSemantic, ot)
	assert.Equal(t, chronology.LogicGraph, vt)

	_, _, err = DecodeRestriction(nil)
	assert.True(t, errs.IsConfiguration(err))
	_, _, err = DecodeRestriction([]dyndata.Data{dyndata.String("WIDGET")})
	assert.True(t, errs.IsConfiguration(err))
}
