package schema

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/roach88/termstore/internal/chronology"
	"github.com/roach88/termstore/internal/dyndata"
	"github.com/roach88/termstore/internal/errs"
	"github.com/roach88/termstore/internal/ids"
	"github.com/roach88/termstore/internal/metadata"
)

// ErrUndescribed marks a failure to find the metadata one read strategy
// needs. Cache moves on to the next strategy when it sees it; every other
// error is final.
var ErrUndescribed = errs.New("assemblage is not described")

// markers holds the nids of the metadata concepts a store has registered.
// A zero nid means the concept is unknown to the store.
type markers struct {
	definitionType ids.Nid
	definition     ids.Nid
	extension      ids.Nid
	restriction    ids.Nid
	fieldConcepts  ids.Nid
	semanticType   ids.Nid
	fqnType        ids.Nid
}

func resolveMarkers(l ids.Lookup) (markers, error) {
	var m markers
	for _, f := range []struct {
		dst *ids.Nid
		u   uuid.UUID
	}{
		{&m.definitionType, metadata.DefinitionDescriptionType},
		{&m.definition, metadata.DynamicDefinitionDescription},
		{&m.extension, metadata.DynamicExtensionDefinition},
		{&m.restriction, metadata.DynamicReferencedComponentRestriction},
		{&m.fieldConcepts, metadata.SemanticFieldConcepts},
		{&m.semanticType, metadata.SemanticType},
		{&m.fqnType, metadata.FullyQualifiedNameType},
	} {
		nid, ok, err := metadata.Nid(l, f.u)
		if err != nil {
			return m, err
		}
		if ok {
			*f.dst = nid
		}
	}
	return m, nil
}

// assemblageName renders an assemblage for error messages.
func assemblageName(l ids.Lookup, assemblage ids.Nid) string {
	if u, err := l.PrimordialUUID(assemblage); err == nil {
		return fmt.Sprintf("%s (nid %d)", u, assemblage)
	}
	return fmt.Sprintf("nid %d", assemblage)
}

// Read reads the authoritative description of a dynamic assemblage from the
// metadata attached to it. An assemblage without a dynamic definition
// description fails with ErrUndescribed; malformed metadata fails with a
// configuration error naming the assemblage. A partial description is never
// returned.
func Read(ctx context.Context, src Source, assemblage ids.Nid) (*UsageDescription, error) {
	m, err := resolveMarkers(src)
	if err != nil {
		return nil, err
	}
	name := assemblageName(src, assemblage)
	fail := func(err error) error {
		return errs.WrapConfiguration(err, "assemblage %s", name)
	}

	attached, err := src.AttachedTo(ctx, assemblage)
	if err != nil {
		return nil, errs.Wrapf(err, "read assemblage %s", name)
	}

	definition, found, err := findDefinition(ctx, src, m, attached)
	if err != nil {
		return nil, errs.Wrapf(err, "read assemblage %s", name)
	}
	if !found {
		return nil, errs.Mark(
			errs.Configurationf("assemblage %s has no dynamic definition description", name),
			ErrUndescribed)
	}

	d := &UsageDescription{
		Assemblage:         assemblage,
		Name:               fullyQualifiedName(m, attached),
		Description:        definition,
		VersionType:        chronology.Dynamic,
		RestrictionSubtype: chronology.Unknown,
	}

	restrictions := 0
	for _, a := range attached {
		switch {
		case m.extension != 0 && a.Assemblage == m.extension:
			row, err := dynamicRow(a)
			if err != nil {
				return nil, fail(err)
			}
			col, err := DecodeColumn(row)
			if err != nil {
				return nil, fail(err)
			}
			if col.Name, err = labelName(ctx, src, m, col.Label); err != nil {
				return nil, errs.Wrapf(err, "read assemblage %s", name)
			}
			d.Columns = append(d.Columns, col)
		case m.restriction != 0 && a.Assemblage == m.restriction:
			restrictions++
			if restrictions > 1 {
				return nil, fail(errs.Configurationf("more than one referenced component restriction"))
			}
			row, err := dynamicRow(a)
			if err != nil {
				return nil, fail(err)
			}
			if d.RestrictionType, d.RestrictionSubtype, err = DecodeRestriction(row); err != nil {
				return nil, fail(err)
			}
		}
	}

	if err := sortColumns(d.Columns); err != nil {
		return nil, fail(err)
	}
	return d, nil
}

// sortColumns orders columns and requires their numbering to be 0-based and
// gapless.
func sortColumns(cols []ColumnInfo) error {
	slices.SortStableFunc(cols, func(a, b ColumnInfo) int { return a.Order - b.Order })
	for i, c := range cols {
		if c.Order != i {
			return errs.Configurationf("column %d found where column %d was expected; columns must be numbered from 0 without gaps",
				c.Order, i)
		}
	}
	return nil
}

func dynamicRow(a Attachment) ([]dyndata.Data, error) {
	v, ok := a.Payload.(*chronology.DynamicVersion)
	if !ok {
		return nil, errs.Configurationf("semantic %d is %s, want DYNAMIC", a.Nid, a.Payload.VersionType())
	}
	return v.Data, nil
}

// findDefinition returns the text of the definition description that
// carries the dynamic definition marker.
func findDefinition(ctx context.Context, src Source, m markers, attached []Attachment) (string, bool, error) {
	if m.definitionType == 0 || m.definition == 0 {
		return "", false, nil
	}
	for _, a := range attached {
		desc, ok := a.Payload.(*chronology.DescriptionVersion)
		if !ok || desc.DescriptionType != m.definitionType {
			continue
		}
		annotations, err := src.AttachedTo(ctx, a.Nid)
		if err != nil {
			return "", false, err
		}
		for _, ann := range annotations {
			if ann.Assemblage == m.definition {
				return desc.Text, true, nil
			}
		}
	}
	return "", false, nil
}

func fullyQualifiedName(m markers, attached []Attachment) string {
	if m.fqnType == 0 {
		return ""
	}
	for _, a := range attached {
		if desc, ok := a.Payload.(*chronology.DescriptionVersion); ok && desc.DescriptionType == m.fqnType {
			return desc.Text
		}
	}
	return ""
}

// labelName looks up the name of a column label concept. Labels the store
// has never seen have no name.
func labelName(ctx context.Context, src Source, m markers, label uuid.UUID) (string, error) {
	if m.fqnType == 0 {
		return "", nil
	}
	nid, ok, err := metadata.Nid(src, label)
	if err != nil || !ok {
		return "", err
	}
	attached, err := src.AttachedTo(ctx, nid)
	if err != nil {
		return "", err
	}
	return fullyQualifiedName(m, attached), nil
}

// hasDefinition is the lightweight description scan: it looks for the
// marked definition description without reading any column.
func hasDefinition(ctx context.Context, src Source, assemblage ids.Nid) (bool, error) {
	m, err := resolveMarkers(src)
	if err != nil {
		return false, err
	}
	attached, err := src.AttachedTo(ctx, assemblage)
	if err != nil {
		return false, err
	}
	_, found, err := findDefinition(ctx, src, m, attached)
	return found, err
}
