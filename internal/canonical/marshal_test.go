package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    Value
		expected string
	}{
		{"string", String("hello"), `"hello"`},
		{"empty string", String(""), `""`},
		{"int", Int(42), "42"},
		{"negative int", Int(-2147483647), "-2147483647"},
		{"bool true", Bool(true), "true"},
		{"bool false", Bool(false), "false"},
		{"empty array", Array{}, "[]"},
		{"empty object", Object{}, "{}"},
		{"array", Strings("a", "b"), `["a","b"]`},
		{"nested", Obj(O("k", Array{Int(1), Bool(false)})), `{"k":[1,false]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Marshal(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(got))
		})
	}
}

func TestMarshalSortedKeys(t *testing.T) {
	obj := Obj(
		O("type", String("t")),
		O("operator", String("EQUALS")),
		O("measure", String("m")),
	)

	got, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"measure":"m","operator":"EQUALS","type":"t"}`, string(got))
}

func TestMarshalUTF16KeyOrder(t *testing.T) {
	// U+1F600 encodes as surrogates 0xD83D 0xDE00, which sort before U+FF61
	// in UTF-16 even though the UTF-8 bytes sort after.
	obj := Obj(O("\uff61", Int(1)), O("\U0001F600", Int(2)))

	got, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":2,\"\uff61\":1}", string(got))
}

func TestMarshalNoHTMLEscape(t *testing.T) {
	got, err := Marshal(String("<a & b>"))
	require.NoError(t, err)
	assert.Equal(t, `"<a & b>"`, string(got))
}

func TestMarshalNFC(t *testing.T) {
	composed := String("\u00e9")
	decomposed := String("e\u0301")

	a, err := Marshal(composed)
	require.NoError(t, err)
	b, err := Marshal(decomposed)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestMarshalLineSeparators(t *testing.T) {
	got, err := Marshal(String("a\u2028b\u2029c"))
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(got))

	// A literal backslash followed by the text u2028 must stay escaped.
	got, err = Marshal(String(`x\u2028`))
	require.NoError(t, err)
	assert.Equal(t, `"x\\u2028"`, string(got))
}

func TestMarshalRejectsNil(t *testing.T) {
	_, err := Marshal(nil)
	assert.Error(t, err)

	_, err = Marshal(Array{String("ok"), nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "array[1]")
}

func TestSeedDomainSeparation(t *testing.T) {
	v := String("x")

	a, err := Seed("concept", v)
	require.NoError(t, err)
	b, err := Seed("concep", String("tx"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Equal(t, "concept\x00\"x\"", string(a))
}
