package compiler

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/termstore/internal/dyndata"
	"github.com/roach88/termstore/internal/ids"
	"github.com/roach88/termstore/internal/metadata"
	"github.com/roach88/termstore/internal/schema"
)

func validDefinition() *schema.Definition {
	return &schema.Definition{
		Assemblage:  uuid.New(),
		Description: "A measured value",
		Columns: []schema.ColumnInfo{
			{Order: 0, Label: metadata.ColumnLabel("value"), Name: "value", Type: dyndata.TypeDouble},
			{Order: 1, Label: metadata.ColumnLabel("unit"), Name: "unit", Type: dyndata.TypeString},
		},
	}
}

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidateValid(t *testing.T) {
	assert.Empty(t, Validate(validDefinition()), "valid definition should have no errors")
}

func TestValidateEmptyDescription(t *testing.T) {
	def := validDefinition()
	def.Description = "   "
	assert.Equal(t, []string{ErrDescriptionEmpty}, codes(Validate(def)))
}

func TestValidateNoIdentity(t *testing.T) {
	def := validDefinition()
	def.Assemblage = uuid.Nil
	assert.Equal(t, []string{ErrNoIdentity}, codes(Validate(def)))
}

func TestValidateColumnOrder(t *testing.T) {
	def := validDefinition()
	def.Columns[1].Order = 2

	errs := Validate(def)
	require.NotEmpty(t, errs)
	assert.Equal(t, ErrColumnOrder, errs[0].Code)
	assert.Equal(t, "columns[1].order", errs[0].Field)
}

func TestValidateDuplicates(t *testing.T) {
	def := validDefinition()
	def.Columns[1].Name = "value"
	def.Columns[1].Label = def.Columns[0].Label
	assert.Equal(t, []string{ErrDuplicateName, ErrDuplicateLabel}, codes(Validate(def)))
}

func TestValidateInvalidColumn(t *testing.T) {
	def := validDefinition()
	def.Columns[0].Default = dyndata.String("not a double")

	errs := Validate(def)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrInvalidColumn, errs[0].Code)
	assert.Contains(t, errs[0].Message, "does not match column type")
}

func TestValidateMissingLabel(t *testing.T) {
	def := validDefinition()
	def.Columns[0].Label = uuid.Nil
	assert.Contains(t, codes(Validate(def)), ErrMissingColumnLabel)
}

func TestValidateCollectsAll(t *testing.T) {
	def := validDefinition()
	def.Assemblage = uuid.Nil
	def.Description = ""
	def.Columns[1].Order = 5
	def.RestrictionType = ids.ObjectType(99)

	got := codes(Validate(def))
	assert.Contains(t, got, ErrNoIdentity)
	assert.Contains(t, got, ErrDescriptionEmpty)
	assert.Contains(t, got, ErrColumnOrder)
	assert.Contains(t, got, ErrInvalidRestriction)
}

func TestValidationErrorFormat(t *testing.T) {
	err := ValidationError{Field: "description", Message: "missing", Code: ErrDescriptionEmpty}
	assert.Equal(t, "[E102] description: missing", err.Error())
}
