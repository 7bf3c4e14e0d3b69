package schema

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/termstore/internal/chronology"
	"github.com/roach88/termstore/internal/dyndata"
	"github.com/roach88/termstore/internal/errs"
	"github.com/roach88/termstore/internal/ids"
	"github.com/roach88/termstore/internal/metadata"
)

type mockColumn struct {
	name string
	typ  dyndata.DataType
}

var fixedLayouts = map[chronology.VersionType][]mockColumn{
	chronology.Member:       nil,
	chronology.ComponentNid: {{"component", dyndata.TypeNid}},
	chronology.Long:         {{"long value", dyndata.TypeLong}},
	chronology.String:       {{"string value", dyndata.TypeString}},
	chronology.LogicGraph:   {{"logic graph", dyndata.TypeByteArray}},
	chronology.Image:        {{"image data", dyndata.TypeByteArray}},
	chronology.Description: {
		{"text", dyndata.TypeString},
		{"language", dyndata.TypeNid},
		{"case significance", dyndata.TypeNid},
		{"description type", dyndata.TypeNid},
	},
	chronology.RF2Relationship: {
		{"destination", dyndata.TypeNid},
		{"relationship type", dyndata.TypeNid},
		{"relationship group", dyndata.TypeInteger},
		{"characteristic type", dyndata.TypeNid},
		{"modifier", dyndata.TypeNid},
	},
}

// layout returns the fixed column layout of vt.
func layout(vt chronology.VersionType) ([]mockColumn, error) {
	if cols, ok := fixedLayouts[vt]; ok {
		return cols, nil
	}
	fields, ok := vt.BrittleLayout()
	if !ok {
		return nil, errs.Unsupportedf("can't mock a usage description for version type %s: use case not yet supported", vt)
	}
	cols := make([]mockColumn, len(fields))
	for i, t := range fields {
		var kind string
		switch t {
		case dyndata.TypeNid:
			kind = "nid"
		case dyndata.TypeInteger:
			kind = "int"
		default:
			kind = "str"
		}
		cols[i] = mockColumn{name: fmt.Sprintf("%s%d", kind, i+1), typ: t}
	}
	return cols, nil
}

// Mock synthesizes the description of a fixed-shape assemblage of version
// type vt. Labels replace the generic column labels when there is exactly one
// per column and are ignored otherwise. DYNAMIC and UNKNOWN are unsupported:
// dynamic assemblages are described by their definition.
func Mock(assemblage ids.Nid, vt chronology.VersionType, labels []uuid.UUID) (*UsageDescription, error) {
	cols, err := layout(vt)
	if err != nil {
		return nil, err
	}
	overlay := len(labels) == len(cols)
	d := &UsageDescription{
		Assemblage:         assemblage,
		VersionType:        vt,
		RestrictionSubtype: chronology.Unknown,
		Columns:            make([]ColumnInfo, len(cols)),
	}
	for i, c := range cols {
		label := metadata.ColumnLabel(c.name)
		if overlay {
			label = labels[i]
		}
		d.Columns[i] = ColumnInfo{
			Order:    i,
			Label:    label,
			Name:     c.name,
			Type:     c.typ,
			Required: true,
		}
	}
	return d, nil
}

// MockFromMetadata mocks the description from the SemanticType annotation on
// the assemblage, overlaying any SemanticFieldConcepts labels. Without a
// SemanticType annotation it fails with ErrUndescribed.
func MockFromMetadata(ctx context.Context, src Source, assemblage ids.Nid) (*UsageDescription, error) {
	m, err := resolveMarkers(src)
	if err != nil {
		return nil, err
	}
	attached, err := src.AttachedTo(ctx, assemblage)
	if err != nil {
		return nil, err
	}
	name := assemblageName(src, assemblage)

	vt := chronology.Unknown
	found := false
	for _, a := range attached {
		if m.semanticType == 0 || a.Assemblage != m.semanticType {
			continue
		}
		row, err := dynamicRow(a)
		if err != nil {
			return nil, errs.WrapConfiguration(err, "assemblage %s", name)
		}
		s, ok := firstString(row)
		if !ok {
			return nil, errs.Configurationf("assemblage %s: semantic type annotation must hold a STRING", name)
		}
		if vt, err = chronology.ParseVersionType(s); err != nil {
			return nil, errs.WrapConfiguration(err, "assemblage %s", name)
		}
		found = true
		break
	}
	if !found {
		return nil, errs.Mark(
			errs.Configurationf("assemblage %s has no semantic type annotation", name),
			ErrUndescribed)
	}

	labels, err := fieldLabels(m, attached)
	if err != nil {
		return nil, errs.WrapConfiguration(err, "assemblage %s", name)
	}
	return Mock(assemblage, vt, labels)
}

// MockFromInstance mocks the description from the version type of any
// existing semantic of the assemblage. Without one it fails with
// ErrUndescribed.
func MockFromInstance(ctx context.Context, src Source, assemblage ids.Nid) (*UsageDescription, error) {
	name := assemblageName(src, assemblage)
	instance, ok, err := src.FirstOfAssemblage(ctx, assemblage)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.Mark(
			errs.Configurationf("assemblage %s has no definition, no semantic type and no instances", name),
			ErrUndescribed)
	}

	m, err := resolveMarkers(src)
	if err != nil {
		return nil, err
	}
	attached, err := src.AttachedTo(ctx, assemblage)
	if err != nil {
		return nil, err
	}
	labels, err := fieldLabels(m, attached)
	if err != nil {
		return nil, errs.WrapConfiguration(err, "assemblage %s", name)
	}
	return Mock(assemblage, instance.Payload.VersionType(), labels)
}

// fieldLabels reads the SemanticFieldConcepts annotation: a row whose first
// slot is an ARRAY of UUID labels.
func fieldLabels(m markers, attached []Attachment) ([]uuid.UUID, error) {
	if m.fieldConcepts == 0 {
		return nil, nil
	}
	for _, a := range attached {
		if a.Assemblage != m.fieldConcepts {
			continue
		}
		row, err := dynamicRow(a)
		if err != nil {
			return nil, err
		}
		if len(row) == 0 {
			return nil, nil
		}
		arr, ok := row[0].(dyndata.Array)
		if !ok {
			return nil, errs.Configurationf("field concepts annotation must hold an ARRAY, got %s", dyndata.TypeOf(row[0]))
		}
		labels := make([]uuid.UUID, len(arr))
		for i, e := range arr {
			u, ok := e.(dyndata.UUID)
			if !ok {
				return nil, errs.Configurationf("field concept %d must be a UUID, got %s", i, dyndata.TypeOf(e))
			}
			labels[i] = uuid.UUID(u)
		}
		return labels, nil
	}
	return nil, nil
}

func firstString(row []dyndata.Data) (string, bool) {
	if len(row) == 0 {
		return "", false
	}
	s, ok := row[0].(dyndata.String)
	return string(s), ok
}
