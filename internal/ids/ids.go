// Package ids provides identifier resolution between stable UUIDs and
// process-local integer identifiers (nids).
//
// Every component in termstore consumes identifiers through the Lookup
// interface. Nids are allocated from math.MinInt32+1 upward, so every nid
// handed out by a Resolver is negative; the positive range is reserved for a
// separate identifier space.
package ids

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/roach88/termstore/internal/errs"
)

// Nid is a process-local identifier assigned by a Resolver.
type Nid int32

// FirstNid is the first nid a Resolver allocates.
const FirstNid Nid = math.MinInt32 + 1

// IsValid reports whether n lies in the allocated (negative) range.
func (n Nid) IsValid() bool {
	return n < 0 && n >= FirstNid
}

// ErrUnknownIdentifier is returned when a UUID or nid has no mapping.
var ErrUnknownIdentifier = errs.New("unknown identifier")

// IsUnknown reports whether err is or wraps ErrUnknownIdentifier.
func IsUnknown(err error) bool {
	return err != nil && errs.Is(err, ErrUnknownIdentifier)
}

// ObjectType classifies what kind of component a nid identifies.
type ObjectType uint8

const (
	ObjectUnknown ObjectType = iota
	ObjectConcept
	ObjectSemantic
)

var objectTypeNames = [...]string{
	ObjectUnknown:  "UNKNOWN",
	ObjectConcept:  "CONCEPT",
	ObjectSemantic: "SEMANTIC",
}

func (o ObjectType) String() string {
	if int(o) < len(objectTypeNames) {
		return objectTypeNames[o]
	}
	return fmt.Sprintf("ObjectType(%d)", o)
}

// ParseObjectType parses an ObjectType enum name.
func ParseObjectType(name string) (ObjectType, error) {
	for i, n := range objectTypeNames {
		if n == name {
			return ObjectType(i), nil
		}
	}
	return ObjectUnknown, errs.Unsupportedf("unknown object type %q", name)
}

// Lookup resolves identifiers without allocating new ones.
type Lookup interface {
	// NidForUUIDs returns the nid any of the given UUIDs is mapped to.
	NidForUUIDs(uuids ...uuid.UUID) (Nid, error)

	// UUIDsForNid returns every UUID mapped to nid, primordial first.
	UUIDsForNid(nid Nid) ([]uuid.UUID, error)

	// PrimordialUUID returns the first UUID registered for nid.
	PrimordialUUID(nid Nid) (uuid.UUID, error)

	// ObjectTypeForNid returns the recorded object type of nid.
	ObjectTypeForNid(nid Nid) (ObjectType, error)
}

// Resolver is a Lookup that can also allocate nids.
type Resolver interface {
	Lookup

	// AssignNid returns the nid for uuids, allocating one if none of them is
	// known yet. UUIDs not yet registered are recorded as aliases of the nid.
	AssignNid(objectType ObjectType, uuids ...uuid.UUID) (Nid, error)
}

// unknownUUIDs builds the error for an unresolvable UUID set.
func unknownUUIDs(uuids []uuid.UUID) error {
	return errs.Wrapf(ErrUnknownIdentifier, "no nid for %v", uuids)
}

// unknownNid builds the error for an unresolvable nid.
func unknownNid(nid Nid) error {
	return errs.Wrapf(ErrUnknownIdentifier, "no uuid for nid %d", nid)
}
