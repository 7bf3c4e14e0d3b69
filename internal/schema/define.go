package schema

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"github.com/roach88/termstore/internal/chronology"
	"github.com/roach88/termstore/internal/dyndata"
	"github.com/roach88/termstore/internal/errs"
	"github.com/roach88/termstore/internal/ids"
	"github.com/roach88/termstore/internal/metadata"
)

// Definition is a dynamic assemblage to write.
type Definition struct {
	Assemblage  uuid.UUID
	Name        string
	Description string
	// Columns must be numbered 0..n-1 in slice order. A column's Name, when
	// set, is written as the name of its label concept.
	Columns            []ColumnInfo
	RestrictionType    ids.ObjectType
	RestrictionSubtype chronology.VersionType
}

// Check validates the definition without writing anything. Column rows are
// validated by decoding their encoded form, so Check accepts exactly what
// Read accepts.
func (def *Definition) Check() error {
	if def.Assemblage == uuid.Nil {
		return errs.Configurationf("definition has no assemblage identity")
	}
	if def.Description == "" {
		return errs.Configurationf("assemblage %s: definition description is empty", def.Assemblage)
	}
	for i, c := range def.Columns {
		if c.Order != i {
			return errs.Configurationf("assemblage %s: column %d found where column %d was expected",
				def.Assemblage, c.Order, i)
		}
		if _, err := DecodeColumn(EncodeColumn(c)); err != nil {
			return errs.WrapConfiguration(err, "assemblage %s", def.Assemblage)
		}
	}
	if row := EncodeRestriction(def.RestrictionType, def.RestrictionSubtype); row != nil {
		if _, _, err := DecodeRestriction(row); err != nil {
			return errs.WrapConfiguration(err, "assemblage %s", def.Assemblage)
		}
	}
	return nil
}

// Define writes def in the metadata convention Read consumes and returns the
// assemblage's nid. Semantic identities are derived from the assemblage
// UUID, so defining the same assemblage again appends new versions to the
// same semantics.
func Define(ctx context.Context, w Writer, def Definition) (ids.Nid, error) {
	if err := def.Check(); err != nil {
		return 0, err
	}
	if err := metadata.Register(w); err != nil {
		return 0, errs.Wrap(err, "register metadata concepts")
	}
	nidOf := func(u uuid.UUID) ids.Nid {
		// Registered above.
		nid, _ := w.NidForUUIDs(u)
		return nid
	}

	assemblage, err := w.AssignNid(ids.ObjectConcept, def.Assemblage)
	if err != nil {
		return 0, err
	}
	derive := func(part string) uuid.UUID {
		return uuid.NewSHA1(def.Assemblage, []byte(part))
	}
	write := func(rec Record) (ids.Nid, error) {
		nid, err := w.WriteSemantic(ctx, rec)
		if err != nil {
			return 0, errs.Wrapf(err, "define assemblage %s", def.Assemblage)
		}
		return nid, nil
	}
	describe := func(primordial uuid.UUID, component ids.Nid, descType uuid.UUID, text string) (ids.Nid, error) {
		return write(Record{
			Primordial: primordial,
			Assemblage: nidOf(metadata.EnglishLanguage),
			Referenced: component,
			Payload: &chronology.DescriptionVersion{
				CaseSignificance: nidOf(metadata.DescriptionNotCaseSensitive),
				Language:         nidOf(metadata.EnglishLanguage),
				DescriptionType:  nidOf(descType),
				Text:             text,
			},
		})
	}
	dynamic := func(primordial uuid.UUID, assemblageConcept uuid.UUID, component ids.Nid, row []dyndata.Data) error {
		_, err := write(Record{
			Primordial: primordial,
			Assemblage: nidOf(assemblageConcept),
			Referenced: component,
			Payload:    &chronology.DynamicVersion{Data: row},
		})
		return err
	}

	if def.Name != "" {
		if _, err := describe(derive("name"), assemblage, metadata.FullyQualifiedNameType, def.Name); err != nil {
			return 0, err
		}
	}
	description, err := describe(derive("definition"), assemblage, metadata.DefinitionDescriptionType, def.Description)
	if err != nil {
		return 0, err
	}
	if err := dynamic(derive("definition/marker"), metadata.DynamicDefinitionDescription, description, nil); err != nil {
		return 0, err
	}

	for i, c := range def.Columns {
		label, err := w.AssignNid(ids.ObjectConcept, c.Label)
		if err != nil {
			return 0, err
		}
		if c.Name != "" {
			if _, err := describe(uuid.NewSHA1(c.Label, []byte("name")), label, metadata.FullyQualifiedNameType, c.Name); err != nil {
				return 0, err
			}
		}
		primordial := derive("column/" + strconv.Itoa(i))
		if err := dynamic(primordial, metadata.DynamicExtensionDefinition, assemblage, EncodeColumn(c)); err != nil {
			return 0, err
		}
	}

	// Columns and restrictions left over from an earlier, wider definition
	// are retired with an INACTIVE version, once.
	attached, err := w.AttachedTo(ctx, assemblage)
	if err != nil {
		return 0, errs.Wrapf(err, "define assemblage %s", def.Assemblage)
	}
	active := make(map[ids.Nid]bool, len(attached))
	for _, a := range attached {
		active[a.Nid] = true
	}
	retire := func(primordial uuid.UUID, assemblageConcept uuid.UUID) (bool, error) {
		nid, err := w.NidForUUIDs(primordial)
		if err != nil {
			if ids.IsUnknown(err) {
				return false, nil
			}
			return false, err
		}
		if !active[nid] {
			return true, nil
		}
		_, err = write(Record{
			Primordial: primordial,
			Assemblage: nidOf(assemblageConcept),
			Referenced: assemblage,
			Status:     chronology.Inactive,
			Payload:    &chronology.DynamicVersion{},
		})
		return err == nil, err
	}
	for i := len(def.Columns); ; i++ {
		retired, err := retire(derive("column/"+strconv.Itoa(i)), metadata.DynamicExtensionDefinition)
		if err != nil {
			return 0, err
		}
		if !retired {
			break
		}
	}

	if row := EncodeRestriction(def.RestrictionType, def.RestrictionSubtype); row != nil {
		if err := dynamic(derive("restriction"), metadata.DynamicReferencedComponentRestriction, assemblage, row); err != nil {
			return 0, err
		}
	} else if _, err := retire(derive("restriction"), metadata.DynamicReferencedComponentRestriction); err != nil {
		return 0, err
	}
	return assemblage, nil
}

// Annotate writes the fixed-shape metadata for a brittle assemblage: its
// version type and, optionally, its column labels.
func Annotate(ctx context.Context, w Writer, assemblage uuid.UUID, vt chronology.VersionType, labels []uuid.UUID) (ids.Nid, error) {
	if _, err := layout(vt); err != nil {
		return 0, err
	}
	if err := metadata.Register(w); err != nil {
		return 0, errs.Wrap(err, "register metadata concepts")
	}
	nid, err := w.AssignNid(ids.ObjectConcept, assemblage)
	if err != nil {
		return 0, err
	}
	typeNid, _ := w.NidForUUIDs(metadata.SemanticType)
	if _, err := w.WriteSemantic(ctx, Record{
		Primordial: uuid.NewSHA1(assemblage, []byte("semantic-type")),
		Assemblage: typeNid,
		Referenced: nid,
		Payload:    &chronology.DynamicVersion{Data: []dyndata.Data{dyndata.String(vt.String())}},
	}); err != nil {
		return 0, errs.Wrapf(err, "annotate assemblage %s", assemblage)
	}
	if len(labels) > 0 {
		fieldsNid, _ := w.NidForUUIDs(metadata.SemanticFieldConcepts)
		if _, err := w.WriteSemantic(ctx, Record{
			Primordial: uuid.NewSHA1(assemblage, []byte("field-concepts")),
			Assemblage: fieldsNid,
			Referenced: nid,
			Payload:    &chronology.DynamicVersion{Data: []dyndata.Data{dyndata.UUIDs(labels...)}},
		}); err != nil {
			return 0, errs.Wrapf(err, "annotate assemblage %s", assemblage)
		}
	}
	return nid, nil
}
