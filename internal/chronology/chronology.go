// Package chronology holds semantic chronologies: a stable identity plus an
// append-only list of stamped versions, all of one closed version type.
package chronology

import (
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/roach88/termstore/internal/errs"
	"github.com/roach88/termstore/internal/ids"
)

// Version is one stamped entry of a chronology.
type Version struct {
	StampSequence int32
	Payload       Payload
}

// VersionType returns the payload's version type.
func (v *Version) VersionType() VersionType { return v.Payload.VersionType() }

// SemanticChronology is a versioned semantic attached to a referenced
// component. Identity fields are fixed at creation; versions are only
// appended.
//
// Safe for concurrent use: appends take a write lock, readers get snapshots.
type SemanticChronology struct {
	versionType         VersionType
	primordial          uuid.UUID
	nid                 ids.Nid
	assemblage          ids.Nid
	referencedComponent ids.Nid

	mu       sync.RWMutex
	versions []*Version
}

// New creates an empty chronology. UNKNOWN and out-of-range version types
// are unsupported.
func New(vt VersionType, primordial uuid.UUID, nid, assemblage, referencedComponent ids.Nid) (*SemanticChronology, error) {
	if !vt.Valid() {
		return nil, errs.Unsupportedf("can't handle version type %s", vt)
	}
	return &SemanticChronology{
		versionType:         vt,
		primordial:          primordial,
		nid:                 nid,
		assemblage:          assemblage,
		referencedComponent: referencedComponent,
	}, nil
}

func (c *SemanticChronology) VersionType() VersionType     { return c.versionType }
func (c *SemanticChronology) PrimordialUUID() uuid.UUID    { return c.primordial }
func (c *SemanticChronology) Nid() ids.Nid                 { return c.nid }
func (c *SemanticChronology) Assemblage() ids.Nid          { return c.assemblage }
func (c *SemanticChronology) ReferencedComponent() ids.Nid { return c.referencedComponent }

// CreateMutableVersion appends a version with the given stamp and payload.
// The payload's version type must match the chronology's. When tx is not
// nil the version is registered with the transaction first.
func (c *SemanticChronology) CreateMutableVersion(stampSeq int32, payload Payload, tx *Transaction) (*Version, error) {
	if err := checkPayload(payload); err != nil {
		return nil, err
	}
	if payload.VersionType() != c.versionType {
		return nil, errs.Invariantf("chronology %s has type %s, cannot add a %s version",
			c.primordial, c.versionType, payload.VersionType())
	}
	if tx != nil {
		if err := tx.register(stampSeq, c.nid); err != nil {
			return nil, err
		}
	}
	v := &Version{StampSequence: stampSeq, Payload: payload}

	c.mu.Lock()
	c.versions = append(c.versions, v)
	c.mu.Unlock()
	return v, nil
}

// Versions returns the versions in append order.
func (c *SemanticChronology) Versions() []*Version {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.versions)
}

// Len returns the number of versions.
func (c *SemanticChronology) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.versions)
}

// Latest returns the newest committed, non-canceled version, provided its
// stamp is ACTIVE or PRIMORDIAL. A chronology whose newest version is
// INACTIVE has no latest version. Ties on time go to the later append.
func (c *SemanticChronology) Latest(registry *StampRegistry) (*Version, bool) {
	var (
		best      *Version
		bestStamp Stamp
	)
	for _, v := range c.Versions() {
		s, ok := registry.Stamp(v.StampSequence)
		if !ok || !s.Committed() || s.Status == Canceled {
			continue
		}
		if best == nil || s.Time >= bestStamp.Time {
			best, bestStamp = v, s
		}
	}
	if best == nil || bestStamp.Status == Inactive {
		return nil, false
	}
	return best, true
}
