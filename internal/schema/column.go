// Package schema describes the column layout of dynamic semantics.
//
// A UsageDescription is read from the metadata persisted on an assemblage
// concept (Read), or synthesized for the fixed-shape version types (Mock).
// Cache combines both behind a bounded, invalidatable cache.
package schema

import (
	"context"

	"github.com/google/uuid"

	"github.com/roach88/termstore/internal/chronology"
	"github.com/roach88/termstore/internal/dyndata"
	"github.com/roach88/termstore/internal/errs"
	"github.com/roach88/termstore/internal/ids"
)

// ColumnInfo describes one column of a dynamic semantic.
type ColumnInfo struct {
	Order int
	Label uuid.UUID
	// Name is the label concept's name, when one is recorded.
	Name     string
	Type     dyndata.DataType
	Default  dyndata.Data
	Required bool

	// Validators and ValidatorData are parallel; a nil parameter is allowed.
	Validators    []dyndata.ValidatorType
	ValidatorData []dyndata.Data
}

// UsageDescription is the column schema of an assemblage.
type UsageDescription struct {
	Assemblage  ids.Nid
	Name        string
	Description string

	// VersionType is chronology.Dynamic for descriptions read from a
	// definition, otherwise the fixed-shape type the description was mocked for.
	VersionType chronology.VersionType
	Columns     []ColumnInfo

	// RestrictionType limits the referenced component's object type;
	// ids.ObjectUnknown means unrestricted. RestrictionSubtype further limits
	// referenced semantics by version type; chronology.Unknown means
	// unrestricted.
	RestrictionType    ids.ObjectType
	RestrictionSubtype chronology.VersionType
}

// Dynamic reports whether the description was read from a dynamic definition.
func (d *UsageDescription) Dynamic() bool { return d.VersionType == chronology.Dynamic }

// Validate checks a data row against the columns and returns a copy with
// defaults filled in. Failures are marked with dyndata.ErrValidation.
func (d *UsageDescription) Validate(ctx context.Context, row []dyndata.Data, ext dyndata.ExternalValidator) ([]dyndata.Data, error) {
	if len(row) > len(d.Columns) {
		return nil, invalid("row has %d values, assemblage defines %d columns", len(row), len(d.Columns))
	}
	out := make([]dyndata.Data, len(d.Columns))
	copy(out, row)
	for i, col := range d.Columns {
		if out[i] == nil {
			out[i] = col.Default
		}
		if out[i] == nil {
			if col.Required {
				return nil, invalid("column %d (%s) is required", i, col.displayName())
			}
			continue
		}
		if !col.Type.Accepts(out[i].DataType()) {
			return nil, invalid("column %d (%s) is %s, got %s", i, col.displayName(), col.Type, out[i].DataType())
		}
		for j, v := range col.Validators {
			var param dyndata.Data
			if j < len(col.ValidatorData) {
				param = col.ValidatorData[j]
			}
			if err := v.Validate(ctx, out[i], param, ext); err != nil {
				return nil, errs.Wrapf(err, "column %d (%s)", i, col.displayName())
			}
		}
	}
	return out, nil
}

// CheckReferenced verifies the restriction against the object type of a
// referenced component and, for semantics, its version type.
func (d *UsageDescription) CheckReferenced(objectType ids.ObjectType, versionType chronology.VersionType) error {
	if d.RestrictionType != ids.ObjectUnknown && objectType != d.RestrictionType {
		return invalid("referenced component is a %s, assemblage requires %s", objectType, d.RestrictionType)
	}
	if d.RestrictionSubtype != chronology.Unknown && versionType != d.RestrictionSubtype {
		return invalid("referenced semantic is %s, assemblage requires %s", versionType, d.RestrictionSubtype)
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return errs.Mark(errs.Newf(format, args...), dyndata.ErrValidation)
}

func (c ColumnInfo) displayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Label.String()
}

// Column definition rows are positional:
//
//	[0] order INTEGER, [1] label UUID, [2] data type name STRING,
//	[3] default, [4] required BOOLEAN, [5] validator names ARRAY<STRING>,
//	[6] validator data ARRAY
//
// Slots 3 through 6 are optional and trailing absent slots are dropped.
const (
	minColumnSlots = 3
	maxColumnSlots = 7
)

// EncodeColumn builds the column definition row for c.
func EncodeColumn(c ColumnInfo) []dyndata.Data {
	row := []dyndata.Data{
		dyndata.Integer(int32(c.Order)),
		dyndata.UUID(c.Label),
		dyndata.String(c.Type.String()),
		c.Default,
		nil,
		nil,
		nil,
	}
	if c.Required {
		row[4] = dyndata.Boolean(true)
	}
	if len(c.Validators) > 0 {
		names := make(dyndata.Array, len(c.Validators))
		for i, v := range c.Validators {
			names[i] = dyndata.String(v.String())
		}
		row[5] = names
		if hasData(c.ValidatorData) {
			data := make(dyndata.Array, len(c.Validators))
			copy(data, c.ValidatorData)
			row[6] = data
		}
	}
	for len(row) > minColumnSlots && row[len(row)-1] == nil {
		row = row[:len(row)-1]
	}
	return row
}

func hasData(values []dyndata.Data) bool {
	for _, v := range values {
		if v != nil {
			return true
		}
	}
	return false
}

// DecodeColumn parses a column definition row. Malformed rows are
// configuration errors.
func DecodeColumn(row []dyndata.Data) (ColumnInfo, error) {
	var c ColumnInfo
	if len(row) < minColumnSlots || len(row) > maxColumnSlots {
		return c, errs.Configurationf("column definition has %d slots, want %d to %d",
			len(row), minColumnSlots, maxColumnSlots)
	}
	order, ok := row[0].(dyndata.Integer)
	if !ok || order < 0 {
		return c, errs.Configurationf("column order must be a non-negative INTEGER, got %s", dyndata.Format(row[0]))
	}
	c.Order = int(order)

	label, ok := row[1].(dyndata.UUID)
	if !ok {
		return c, errs.Configurationf("column %d: label must be a UUID, got %s", c.Order, dyndata.TypeOf(row[1]))
	}
	c.Label = uuid.UUID(label)

	name, ok := row[2].(dyndata.String)
	if !ok {
		return c, errs.Configurationf("column %d: data type must be a STRING, got %s", c.Order, dyndata.TypeOf(row[2]))
	}
	t, err := dyndata.ParseDataType(string(name))
	if err != nil {
		return c, errs.WrapConfiguration(err, "column %d", c.Order)
	}
	c.Type = t

	slot := func(i int) dyndata.Data {
		if i < len(row) {
			return row[i]
		}
		return nil
	}

	if def := slot(3); def != nil {
		if t == dyndata.TypePolymorphic {
			return c, errs.Configurationf("column %d: POLYMORPHIC columns cannot have a default value", c.Order)
		}
		if !t.Accepts(def.DataType()) {
			return c, errs.Configurationf("column %d: default value of type %s does not match column type %s",
				c.Order, def.DataType(), t)
		}
		c.Default = def
	}

	if req := slot(4); req != nil {
		b, ok := req.(dyndata.Boolean)
		if !ok {
			return c, errs.Configurationf("column %d: required flag must be a BOOLEAN, got %s", c.Order, req.DataType())
		}
		c.Required = bool(b)
	}

	if v := slot(5); v != nil {
		names, ok := v.(dyndata.Array)
		if !ok {
			return c, errs.Configurationf("column %d: validators must be an ARRAY, got %s", c.Order, v.DataType())
		}
		for _, n := range names {
			s, ok := n.(dyndata.String)
			if !ok {
				return c, errs.Configurationf("column %d: validator name must be a STRING, got %s", c.Order, dyndata.TypeOf(n))
			}
			vt, err := dyndata.ParseValidatorType(string(s))
			if err != nil {
				return c, errs.WrapConfiguration(err, "column %d", c.Order)
			}
			c.Validators = append(c.Validators, vt)
		}
	}

	if v := slot(6); v != nil {
		data, ok := v.(dyndata.Array)
		if !ok {
			return c, errs.Configurationf("column %d: validator data must be an ARRAY, got %s", c.Order, v.DataType())
		}
		if len(data) != len(c.Validators) {
			return c, errs.Configurationf("column %d: %d validator data values for %d validators",
				c.Order, len(data), len(c.Validators))
		}
		c.ValidatorData = []dyndata.Data(data)
	}
	return c, nil
}

// EncodeRestriction builds the referenced-component restriction row, or nil
// when the description is unrestricted.
func EncodeRestriction(objectType ids.ObjectType, subtype chronology.VersionType) []dyndata.Data {
	if objectType == ids.ObjectUnknown && subtype == chronology.Unknown {
		return nil
	}
	row := []dyndata.Data{dyndata.String(objectType.String())}
	if subtype != chronology.Unknown {
		row = append(row, dyndata.String(subtype.String()))
	}
	return row
}

// DecodeRestriction parses a referenced-component restriction row.
func DecodeRestriction(row []dyndata.Data) (ids.ObjectType, chronology.VersionType, error) {
	if len(row) < 1 || len(row) > 2 {
		return 0, 0, errs.Configurationf("referenced component restriction has %d slots, want 1 or 2", len(row))
	}
	name, ok := row[0].(dyndata.String)
	if !ok {
		return 0, 0, errs.Configurationf("object type restriction must be a STRING, got %s", dyndata.TypeOf(row[0]))
	}
	objectType, err := ids.ParseObjectType(string(name))
	if err != nil {
		return 0, 0, errs.WrapConfiguration(err, "object type restriction")
	}
	subtype := chronology.Unknown
	if len(row) == 2 && row[1] != nil {
		name, ok := row[1].(dyndata.String)
		if !ok {
			return 0, 0, errs.Configurationf("version type restriction must be a STRING, got %s", row[1].DataType())
		}
		if subtype, err = chronology.ParseVersionType(string(name)); err != nil {
			return 0, 0, errs.WrapConfiguration(err, "version type restriction")
		}
	}
	return objectType, subtype, nil
}
