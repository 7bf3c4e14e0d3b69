// Package metadata names the well-known concepts the dynamic-schema
// convention is written in terms of.
//
// Identities are UUIDv5 values under a fixed namespace, so every store that
// loads the same metadata agrees on them without coordination. Nids are
// store-local and resolved through ids.Lookup when needed.
package metadata

import (
	"github.com/google/uuid"

	"github.com/roach88/termstore/internal/ids"
)

// Namespace anchors every well-known metadata identity.
var Namespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("termstore.metadata"))

func concept(name string) uuid.UUID {
	return uuid.NewSHA1(Namespace, []byte(name))
}

var (
	// DefinitionDescriptionType is the description type of the text that
	// defines an assemblage.
	DefinitionDescriptionType = concept("description-type/definition")

	// FullyQualifiedNameType is the description type of a concept's name.
	FullyQualifiedNameType = concept("description-type/fully-qualified-name")

	// DynamicDefinitionDescription marks a definition description as the
	// definition of a dynamic assemblage.
	DynamicDefinitionDescription = concept("dynamic/definition-description")

	// DynamicExtensionDefinition annotates an assemblage once per column.
	DynamicExtensionDefinition = concept("dynamic/extension-definition")

	// DynamicReferencedComponentRestriction limits what a dynamic semantic
	// may be attached to.
	DynamicReferencedComponentRestriction = concept("dynamic/referenced-component-restriction")

	// SemanticFieldConcepts carries the column labels of a brittle assemblage.
	SemanticFieldConcepts = concept("semantic/field-concepts")

	// SemanticType carries the version-type name of a brittle assemblage.
	SemanticType = concept("semantic/type")

	// EnglishLanguage and DescriptionNotCaseSensitive are the defaults used
	// for definition descriptions written by this module.
	EnglishLanguage             = concept("language/english")
	DescriptionNotCaseSensitive = concept("case-significance/not-case-sensitive")

	// StatedLogicGraph is the assemblage of imported stated definitions.
	StatedLogicGraph = concept("assemblage/stated-logic-graph")

	// DefaultAuthor, DefaultModule and DefaultPath stamp metadata writes.
	DefaultAuthor = concept("stamp/author/user")
	DefaultModule = concept("stamp/module/termstore")
	DefaultPath   = concept("stamp/path/development")
)

// ColumnLabel returns the generic label concept used for a column of a mocked
// description when no label metadata exists.
func ColumnLabel(name string) uuid.UUID {
	return concept("column-label/" + name)
}

// All lists every fixed metadata concept, in a stable order.
func All() []uuid.UUID {
	return []uuid.UUID{
		DefinitionDescriptionType,
		FullyQualifiedNameType,
		DynamicDefinitionDescription,
		DynamicExtensionDefinition,
		DynamicReferencedComponentRestriction,
		SemanticFieldConcepts,
		SemanticType,
		EnglishLanguage,
		DescriptionNotCaseSensitive,
		StatedLogicGraph,
		DefaultAuthor,
		DefaultModule,
		DefaultPath,
	}
}

// Register assigns nids for every fixed metadata concept.
func Register(r ids.Resolver) error {
	for _, u := range All() {
		if _, err := r.AssignNid(ids.ObjectConcept, u); err != nil {
			return err
		}
	}
	return nil
}

// Nid resolves a metadata concept, reporting false when the store has never
// registered it.
func Nid(l ids.Lookup, u uuid.UUID) (ids.Nid, bool, error) {
	nid, err := l.NidForUUIDs(u)
	if err != nil {
		if ids.IsUnknown(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return nid, true, nil
}
