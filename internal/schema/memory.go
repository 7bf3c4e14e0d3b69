package schema

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/roach88/termstore/internal/chronology"
	"github.com/roach88/termstore/internal/errs"
	"github.com/roach88/termstore/internal/ids"
)

// Memory is an in-memory Source and Writer. Every write is committed at once
// under its own stamp, so the latest write always wins.
//
// Thread-safety: all methods are safe for concurrent use.
type Memory struct {
	*ids.MemoryResolver

	registry *chronology.StampRegistry
	clock    atomic.Int64

	mu           sync.RWMutex
	chronologies map[ids.Nid]*chronology.SemanticChronology
	byReferenced map[ids.Nid][]ids.Nid
	byAssemblage map[ids.Nid][]ids.Nid
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		MemoryResolver: ids.NewMemoryResolver(),
		registry:       chronology.NewStampRegistry(),
		chronologies:   make(map[ids.Nid]*chronology.SemanticChronology),
		byReferenced:   make(map[ids.Nid][]ids.Nid),
		byAssemblage:   make(map[ids.Nid][]ids.Nid),
	}
}

// WriteSemantic implements Writer.
func (m *Memory) WriteSemantic(ctx context.Context, rec Record) (ids.Nid, error) {
	if rec.Payload == nil {
		return 0, errs.Invariantf("write semantic %s: nil payload", rec.Primordial)
	}
	nid, err := m.AssignNid(ids.ObjectSemantic, rec.Primordial)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.chronologies[nid]
	if !ok {
		c, err = chronology.New(rec.Payload.VersionType(), rec.Primordial, nid, rec.Assemblage, rec.Referenced)
		if err != nil {
			return 0, err
		}
		m.chronologies[nid] = c
		m.byReferenced[rec.Referenced] = insertSorted(m.byReferenced[rec.Referenced], nid)
		m.byAssemblage[rec.Assemblage] = insertSorted(m.byAssemblage[rec.Assemblage], nid)
	}

	seq := m.registry.StampSequence(chronology.Stamp{Status: rec.Status, Time: m.clock.Add(1)})
	if _, err := c.CreateMutableVersion(seq, rec.Payload, nil); err != nil {
		return 0, err
	}
	return nid, nil
}

func insertSorted(list []ids.Nid, nid ids.Nid) []ids.Nid {
	i, found := slices.BinarySearch(list, nid)
	if found {
		return list
	}
	return slices.Insert(list, i, nid)
}

// Chronology returns the chronology stored under nid.
func (m *Memory) Chronology(nid ids.Nid) (*chronology.SemanticChronology, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.chronologies[nid]
	return c, ok
}

// AttachedTo implements Source.
func (m *Memory) AttachedTo(ctx context.Context, component ids.Nid) ([]Attachment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Attachment
	for _, nid := range m.byReferenced[component] {
		if a, ok := m.latestLocked(nid); ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// FirstOfAssemblage implements Source.
func (m *Memory) FirstOfAssemblage(ctx context.Context, assemblage ids.Nid) (Attachment, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, nid := range m.byAssemblage[assemblage] {
		if a, ok := m.latestLocked(nid); ok {
			return a, true, nil
		}
	}
	return Attachment{}, false, nil
}

func (m *Memory) latestLocked(nid ids.Nid) (Attachment, bool) {
	c := m.chronologies[nid]
	v, ok := c.Latest(m.registry)
	if !ok {
		return Attachment{}, false
	}
	return Attachment{
		Nid:        c.Nid(),
		Assemblage: c.Assemblage(),
		Referenced: c.ReferencedComponent(),
		Payload:    v.Payload,
	}, true
}
