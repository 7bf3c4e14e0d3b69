package dyndata

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/termstore/internal/errs"
	"github.com/roach88/termstore/internal/wire"
)

func TestParseDataType(t *testing.T) {
	for i := DataType(0); i < dataTypeCount; i++ {
		got, err := ParseDataType(i.String())
		require.NoError(t, err)
		assert.Equal(t, i, got)
	}

	_, err := ParseDataType("QUATERNION")
	require.Error(t, err)
	assert.True(t, errs.IsUnsupported(err))
	assert.Contains(t, err.Error(), "QUATERNION")
}

func TestAccepts(t *testing.T) {
	assert.True(t, TypeString.Accepts(TypeString))
	assert.False(t, TypeString.Accepts(TypeInteger))
	assert.True(t, TypePolymorphic.Accepts(TypeLong))
	assert.False(t, TypePolymorphic.Accepts(TypePolymorphic))
}

func TestRowRoundTrip(t *testing.T) {
	row := []Data{
		String("h\u00e9llo"),
		Integer(-7),
		Long(math.MaxInt64),
		Float(1.25),
		Double(math.Pi),
		Boolean(true),
		UUID(uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")),
		Nid(-2147483647),
		ByteArray{0x00, 0xFF, 0x10},
		Array{String("a"), nil, Array{Integer(1)}},
		nil,
	}

	data, err := EncodeRow(row)
	require.NoError(t, err)
	got, err := DecodeRow(data)
	require.NoError(t, err)

	require.Len(t, got, len(row))
	for i := range row {
		assert.True(t, Equal(row[i], got[i]), "column %d: %v != %v", i, row[i], got[i])
	}
}

func TestDecodeRow_Rejects(t *testing.T) {
	data, err := EncodeRow([]Data{String("abc")})
	require.NoError(t, err)

	_, err = DecodeRow(data[:len(data)-1])
	assert.Error(t, err)

	_, err = DecodeRow(append(data, 1))
	assert.True(t, errs.IsInvariant(err))

	w := wire.NewWriter(8)
	w.PutInt32(1)
	w.PutByte(byte(TypePolymorphic))
	_, err = DecodeRow(w.Bytes())
	assert.True(t, errs.IsUnsupported(err))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(nil, String("")))
	assert.False(t, Equal(Integer(1), Long(1)))
	assert.True(t, Equal(ByteArray{1, 2}, ByteArray{1, 2}))
	assert.True(t, Equal(Float(float32(math.NaN())), Float(float32(math.NaN()))))
	assert.False(t, Equal(Array{Integer(1)}, Array{Integer(1), Integer(2)}))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		typ  DataType
		text string
		want Data
	}{
		{TypeString, "x y", String("x y")},
		{TypeInteger, "-12", Integer(-12)},
		{TypeLong, "9000000000", Long(9_000_000_000)},
		{TypeFloat, "0.5", Float(0.5)},
		{TypeDouble, "2.75", Double(2.75)},
		{TypeBoolean, "true", Boolean(true)},
		{TypeUUID, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", UUID(uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"))},
		{TypeNid, "-5", Nid(-5)},
		{TypeByteArray, "AAE=", ByteArray{0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			got, err := Parse(tt.typ, tt.text)
			require.NoError(t, err)
			assert.True(t, Equal(tt.want, got))
			assert.Equal(t, tt.text, Format(got))
		})
	}

	_, err := Parse(TypeInteger, "nine")
	assert.Error(t, err)
	_, err = Parse(TypeArray, "[]")
	assert.True(t, errs.IsUnsupported(err))
}

func TestMarshalJSON(t *testing.T) {
	got, err := MarshalJSON(Array{String("a"), Integer(3), nil, Boolean(false), UUID(uuid.Nil)})
	require.NoError(t, err)
	assert.JSONEq(t, `["a",3,null,false,"00000000-0000-0000-0000-000000000000"]`, string(got))
}

func TestValidators(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		validator ValidatorType
		value     Data
		param     Data
		pass      bool
	}{
		{"less than", LessThan, Integer(3), Integer(5), true},
		{"less than equal bound", LessThan, Integer(5), Integer(5), false},
		{"less than or equals", LessThanOrEquals, Long(5), Integer(5), true},
		{"greater than mixed", GreaterThan, Double(5.5), Integer(5), true},
		{"greater than or equals", GreaterThanOrEquals, Float(4.9), Integer(5), false},
		{"interval closed", Interval, Integer(10), String("[0, 10]"), true},
		{"interval open high", Interval, Integer(10), String("[0, 10)"), false},
		{"interval unbounded", Interval, Long(-1_000_000), String("(, 0)"), true},
		{"interval float bound", Interval, Double(0.25), String("(0.2,0.3)"), true},
		{"regexp match", Regexp, String("C50.9"), String(`^C\d+\.\d$`), true},
		{"regexp miss", Regexp, String("X"), String(`^C`), false},
		{"absent value", LessThan, nil, Integer(0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.validator.Validate(ctx, tt.value, tt.param, nil)
			if tt.pass {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errs.Is(err, ErrValidation))
		})
	}
}

func TestValidators_Misconfigured(t *testing.T) {
	ctx := context.Background()

	err := LessThan.Validate(ctx, String("a"), Integer(1), nil)
	assert.True(t, errs.IsConfiguration(err))

	err = Interval.Validate(ctx, Integer(1), String("0, 10"), nil)
	assert.True(t, errs.IsConfiguration(err))

	err = Interval.Validate(ctx, Integer(1), String("[10, 0]"), nil)
	assert.True(t, errs.IsConfiguration(err))

	err = Regexp.Validate(ctx, String("a"), String("("), nil)
	assert.True(t, errs.IsConfiguration(err))
}

type recordingValidator struct {
	calls []ValidatorType
	err   error
}

func (r *recordingValidator) ValidateDynamic(_ context.Context, v ValidatorType, _, _ Data) error {
	r.calls = append(r.calls, v)
	return r.err
}

func TestValidators_Delegated(t *testing.T) {
	ctx := context.Background()

	err := IsKindOf.Validate(ctx, Nid(-3), Nid(-4), nil)
	require.Error(t, err)
	assert.True(t, errs.IsUnsupported(err))

	ext := &recordingValidator{}
	require.NoError(t, IsKindOf.Validate(ctx, Nid(-3), Nid(-4), ext))
	require.NoError(t, ComponentType.Validate(ctx, Nid(-3), String("CONCEPT"), ext))
	assert.Equal(t, []ValidatorType{IsKindOf, ComponentType}, ext.calls)

	ext.err = errs.New("not a kind of")
	assert.Error(t, External.Validate(ctx, String("x"), nil, ext))
}
