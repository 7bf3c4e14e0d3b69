// Package compiler turns CUE assemblage definitions into schema.Definition
// values ready for schema.Define.
//
// An assemblage is declared under the top-level "assemblage" struct:
//
//	assemblage: severity: {
//		uuid:        "6b0c3e2a-7d4f-5c0e-9a55-3a1c2d7e8f01" // optional
//		name:        "Severity score"                       // optional
//		description: "Records a clinician-assigned severity score"
//		restriction: {type: "CONCEPT"}                      // optional
//		columns: [
//			{name: "score", type: "INTEGER", required: true,
//				validators: [{type: "INTERVAL", data: "[0, 10]"}]},
//			{name: "note", default: "none"},
//		]
//	}
package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"github.com/google/uuid"

	"github.com/roach88/termstore/internal/chronology"
	"github.com/roach88/termstore/internal/dyndata"
	"github.com/roach88/termstore/internal/ids"
	"github.com/roach88/termstore/internal/metadata"
	"github.com/roach88/termstore/internal/schema"
)

// AssemblageUUID is the identity given to an assemblage declared without a
// uuid field: a name-based UUID of its CUE label.
func AssemblageUUID(label string) uuid.UUID {
	return uuid.NewSHA1(metadata.Namespace, []byte("assemblage/"+label))
}

// CompileAssemblage parses a CUE value into a Definition.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the assemblage struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`assemblage: severity: { ... }`)
//	def, err := CompileAssemblage(v.LookupPath(cue.ParsePath("assemblage.severity")))
func CompileAssemblage(v cue.Value) (*schema.Definition, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	def := &schema.Definition{RestrictionSubtype: chronology.Unknown}

	// Identity from the uuid field, else from the struct label
	label := ""
	if sels := v.Path().Selectors(); len(sels) > 0 {
		label = sels[len(sels)-1].String()
	}
	uuidVal := v.LookupPath(cue.ParsePath("uuid"))
	switch {
	case uuidVal.Exists():
		s, err := uuidVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		u, err := uuid.Parse(s)
		if err != nil {
			return nil, &CompileError{Field: "uuid", Message: fmt.Sprintf("invalid uuid %q", s), Pos: uuidVal.Pos()}
		}
		def.Assemblage = u
	case label != "":
		def.Assemblage = AssemblageUUID(label)
	default:
		return nil, &CompileError{Field: "uuid", Message: "assemblage needs a uuid or a label", Pos: v.Pos()}
	}

	// Description is required; name is optional
	descVal := v.LookupPath(cue.ParsePath("description"))
	if !descVal.Exists() {
		return nil, &CompileError{
			Field:   "description",
			Message: "description is required",
			Pos:     v.Pos(),
		}
	}
	desc, err := descVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	def.Description = desc

	if nameVal := v.LookupPath(cue.ParsePath("name")); nameVal.Exists() {
		name, err := nameVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		def.Name = name
	}

	def.Columns, err = parseColumns(v)
	if err != nil {
		return nil, err
	}

	if restVal := v.LookupPath(cue.ParsePath("restriction")); restVal.Exists() {
		if err := parseRestriction(restVal, def); err != nil {
			return nil, err
		}
	}

	return def, nil
}

// parseColumns extracts the column list. Column order is list position.
func parseColumns(v cue.Value) ([]schema.ColumnInfo, error) {
	var columns []schema.ColumnInfo

	colsVal := v.LookupPath(cue.ParsePath("columns"))
	if !colsVal.Exists() {
		return columns, nil // a dynamic assemblage may have no columns
	}

	iter, err := colsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for i := 0; iter.Next(); i++ {
		col, err := parseColumn(i, iter.Value())
		if err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}

	return columns, nil
}

func parseColumn(order int, v cue.Value) (schema.ColumnInfo, error) {
	col := schema.ColumnInfo{Order: order}
	field := func(name string) string { return fmt.Sprintf("columns.%d.%s", order, name) }

	if nameVal := v.LookupPath(cue.ParsePath("name")); nameVal.Exists() {
		name, err := nameVal.String()
		if err != nil {
			return col, formatCUEError(err)
		}
		col.Name = name
	}

	// Label from the label field, else the shared label concept for the name
	labelVal := v.LookupPath(cue.ParsePath("label"))
	switch {
	case labelVal.Exists():
		s, err := labelVal.String()
		if err != nil {
			return col, formatCUEError(err)
		}
		u, err := uuid.Parse(s)
		if err != nil {
			return col, &CompileError{Field: field("label"), Message: fmt.Sprintf("invalid uuid %q", s), Pos: labelVal.Pos()}
		}
		col.Label = u
	case col.Name != "":
		col.Label = metadata.ColumnLabel(col.Name)
	default:
		return col, &CompileError{Field: field("label"), Message: "column needs a name or a label", Pos: v.Pos()}
	}

	defaultVal := v.LookupPath(cue.ParsePath("default"))

	// Type from the type field, else inferred from the default
	typeVal := v.LookupPath(cue.ParsePath("type"))
	switch {
	case typeVal.Exists():
		name, err := typeVal.String()
		if err != nil {
			return col, formatCUEError(err)
		}
		t, err := dyndata.ParseDataType(name)
		if err != nil {
			return col, &CompileError{Field: field("type"), Message: err.Error(), Pos: typeVal.Pos()}
		}
		col.Type = t
	case defaultVal.Exists():
		t, err := inferType(defaultVal)
		if err != nil {
			return col, err
		}
		col.Type = t
	default:
		return col, &CompileError{Field: field("type"), Message: "column needs a type or a default", Pos: v.Pos()}
	}

	if defaultVal.Exists() {
		d, err := cueData(defaultVal, col.Type)
		if err != nil {
			return col, err
		}
		col.Default = d
	}

	if reqVal := v.LookupPath(cue.ParsePath("required")); reqVal.Exists() {
		req, err := reqVal.Bool()
		if err != nil {
			return col, formatCUEError(err)
		}
		col.Required = req
	}

	valsVal := v.LookupPath(cue.ParsePath("validators"))
	if valsVal.Exists() {
		iter, err := valsVal.List()
		if err != nil {
			return col, formatCUEError(err)
		}
		for iter.Next() {
			vt, data, err := parseValidator(iter.Value(), col.Type)
			if err != nil {
				return col, err
			}
			col.Validators = append(col.Validators, vt)
			col.ValidatorData = append(col.ValidatorData, data)
		}
	}

	return col, nil
}

// parseValidator reads {type, data}. Comparison data takes the column's
// type; INTERVAL and REGEXP data stay strings.
func parseValidator(v cue.Value, columnType dyndata.DataType) (dyndata.ValidatorType, dyndata.Data, error) {
	typeVal := v.LookupPath(cue.ParsePath("type"))
	if !typeVal.Exists() {
		return 0, nil, &CompileError{Field: "validators.type", Message: "validator type is required", Pos: v.Pos()}
	}
	name, err := typeVal.String()
	if err != nil {
		return 0, nil, formatCUEError(err)
	}
	vt, err := dyndata.ParseValidatorType(name)
	if err != nil {
		return 0, nil, &CompileError{Field: "validators.type", Message: err.Error(), Pos: typeVal.Pos()}
	}

	dataVal := v.LookupPath(cue.ParsePath("data"))
	if !dataVal.Exists() {
		return vt, nil, nil
	}
	want := columnType
	if vt == dyndata.Interval || vt == dyndata.Regexp {
		want = dyndata.TypeString
	}
	data, err := cueData(dataVal, want)
	if err != nil {
		return 0, nil, err
	}
	return vt, data, nil
}

func parseRestriction(v cue.Value, def *schema.Definition) error {
	typeVal := v.LookupPath(cue.ParsePath("type"))
	if !typeVal.Exists() {
		return &CompileError{Field: "restriction.type", Message: "restriction type is required", Pos: v.Pos()}
	}
	name, err := typeVal.String()
	if err != nil {
		return formatCUEError(err)
	}
	ot, err := ids.ParseObjectType(name)
	if err != nil {
		return &CompileError{Field: "restriction.type", Message: err.Error(), Pos: typeVal.Pos()}
	}
	def.RestrictionType = ot

	subVal := v.LookupPath(cue.ParsePath("subtype"))
	if !subVal.Exists() {
		return nil
	}
	sub, err := subVal.String()
	if err != nil {
		return formatCUEError(err)
	}
	vt, err := chronology.ParseVersionType(sub)
	if err != nil {
		return &CompileError{Field: "restriction.subtype", Message: err.Error(), Pos: subVal.Pos()}
	}
	def.RestrictionSubtype = vt
	return nil
}

// inferType maps a CUE kind to the column type it declares.
func inferType(v cue.Value) (dyndata.DataType, error) {
	switch v.IncompleteKind() {
	case cue.StringKind:
		return dyndata.TypeString, nil
	case cue.IntKind:
		return dyndata.TypeLong, nil
	case cue.FloatKind, cue.NumberKind:
		return dyndata.TypeDouble, nil
	case cue.BoolKind:
		return dyndata.TypeBoolean, nil
	case cue.BytesKind:
		return dyndata.TypeByteArray, nil
	case cue.ListKind:
		return dyndata.TypeArray, nil
	default:
		return dyndata.TypeUnknown, &CompileError{
			Field:   "type",
			Message: fmt.Sprintf("unsupported type kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	list := cueerrors.Errors(err)
	if len(list) == 0 {
		return err
	}

	// Return first error with position info
	first := list[0]
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
