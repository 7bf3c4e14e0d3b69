package schema

import (
	"context"

	"github.com/google/uuid"

	"github.com/roach88/termstore/internal/chronology"
	"github.com/roach88/termstore/internal/ids"
)

// Attachment is the latest version of a semantic attached to a component.
type Attachment struct {
	Nid        ids.Nid
	Assemblage ids.Nid
	Referenced ids.Nid
	Payload    chronology.Payload
}

// Source is the persisted metadata schema reads consult.
type Source interface {
	ids.Lookup

	// AttachedTo returns the latest active version of every semantic whose
	// referenced component is component, ordered by semantic nid.
	AttachedTo(ctx context.Context, component ids.Nid) ([]Attachment, error)

	// FirstOfAssemblage returns the lowest-nid semantic of assemblage with a
	// latest active version.
	FirstOfAssemblage(ctx context.Context, assemblage ids.Nid) (Attachment, bool, error)
}

// Record is one semantic version to write.
type Record struct {
	// Primordial identifies the semantic. Writing an existing primordial
	// appends a version to its chronology.
	Primordial uuid.UUID
	Assemblage ids.Nid
	Referenced ids.Nid
	Status     chronology.Status
	Payload    chronology.Payload
}

// Writer persists semantics. It resolves identifiers so writers can register
// the concepts a definition names, and reads back what it wrote.
type Writer interface {
	Source
	ids.Resolver

	// WriteSemantic stores rec under a committed stamp and returns the
	// semantic's nid.
	WriteSemantic(ctx context.Context, rec Record) (ids.Nid, error)
}
