package logic

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestRender_Verbose(t *testing.T) {
	newGoldie(t).Assert(t, "reference_verbose", []byte(referenceExpression(t).String()))
}

func TestRender_Simple(t *testing.T) {
	newGoldie(t).Assert(t, "reference_simple", []byte(referenceExpression(t).SimpleString()))
}

func TestRender_SimpleExternal(t *testing.T) {
	b := NewBuilder[uuid.UUID]()
	b.SufficientSet(
		b.PropertyPatternImplication(
			[]uuid.UUID{uuid.MustParse("11111111-1111-1111-1111-111111111111")},
			uuid.MustParse("22222222-2222-2222-2222-222222222222"),
		),
		b.Substitution(SubstitutionConcept, "target"),
	)
	expr, err := b.Build()
	require.NoError(t, err)

	newGoldie(t).Assert(t, "external_simple", []byte(expr.SimpleString()))
}

func TestRender_Stable(t *testing.T) {
	a := everyVariantExpression(t)
	b := everyVariantExpression(t)

	assert.Equal(t, a.String(), b.String())
	assert.Equal(t, a.SimpleString(), b.SimpleString())
}

func TestGoIdent(t *testing.T) {
	assert.Equal(t, "DefinitionRoot", goIdent("DEFINITION_ROOT"))
	assert.Equal(t, "And", goIdent("AND"))
	assert.Equal(t, "SubstitutionInstant", goIdent("SUBSTITUTION_INSTANT"))
}
