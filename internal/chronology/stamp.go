package chronology

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/roach88/termstore/internal/errs"
	"github.com/roach88/termstore/internal/ids"
)

// Status is the lifecycle state recorded on a stamp.
type Status uint8

const (
	Active Status = iota
	Inactive
	Primordial
	Canceled
)

func (s Status) String() string {
	switch s {
	case Active:
		return "ACTIVE"
	case Inactive:
		return "INACTIVE"
	case Primordial:
		return "PRIMORDIAL"
	case Canceled:
		return "CANCELED"
	}
	return fmt.Sprintf("Status(%d)", s)
}

// ParseStatus maps a name such as "ACTIVE" to its Status.
func ParseStatus(name string) (Status, error) {
	for s := Active; s <= Canceled; s++ {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, errs.Unsupportedf("unknown status %q", name)
}

// UncommittedTime is the time of a stamp whose transaction has not committed.
const UncommittedTime int64 = math.MaxInt64

// Stamp is the (status, time, author, module, path) coordinate of a version.
// Time is epoch milliseconds.
type Stamp struct {
	Status Status
	Time   int64
	Author ids.Nid
	Module ids.Nid
	Path   ids.Nid
}

// Committed reports whether the stamp's transaction has committed.
func (s Stamp) Committed() bool { return s.Time != UncommittedTime }

// Instant returns the stamp time, or the zero time when uncommitted.
func (s Stamp) Instant() time.Time {
	if !s.Committed() {
		return time.Time{}
	}
	return time.UnixMilli(s.Time).UTC()
}

// StampRegistry assigns stamp sequences. Sequences are strictly increasing
// and unique; identical committed stamps share one sequence.
//
// Safe for concurrent use.
type StampRegistry struct {
	seq atomic.Int32

	mu        sync.RWMutex
	stamps    map[int32]Stamp
	committed map[Stamp]int32
}

// NewStampRegistry creates a registry whose first sequence is 1.
func NewStampRegistry() *StampRegistry {
	return &StampRegistry{
		stamps:    make(map[int32]Stamp),
		committed: make(map[Stamp]int32),
	}
}

// StampSequence returns the sequence for stamp, allocating one when the stamp
// is uncommitted or not yet known.
func (r *StampRegistry) StampSequence(stamp Stamp) int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stamp.Committed() {
		if seq, ok := r.committed[stamp]; ok {
			return seq
		}
	}
	seq := r.seq.Add(1)
	r.putLocked(seq, stamp)
	return seq
}

// Restore records a stamp loaded from storage under its existing sequence
// and advances the clock past it.
func (r *StampRegistry) Restore(seq int32, stamp Stamp) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.putLocked(seq, stamp)
	for {
		cur := r.seq.Load()
		if cur >= seq || r.seq.CompareAndSwap(cur, seq) {
			return
		}
	}
}

func (r *StampRegistry) putLocked(seq int32, stamp Stamp) {
	if old, ok := r.stamps[seq]; ok && old.Committed() {
		delete(r.committed, old)
	}
	r.stamps[seq] = stamp
	if stamp.Committed() {
		if _, dup := r.committed[stamp]; !dup {
			r.committed[stamp] = seq
		}
	}
}

// Stamp returns the stamp recorded for seq.
func (r *StampRegistry) Stamp(seq int32) (Stamp, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stamps[seq]
	return s, ok
}

// Current returns the most recently assigned sequence.
func (r *StampRegistry) Current() int32 { return r.seq.Load() }

// Len returns the number of recorded stamps.
func (r *StampRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.stamps)
}

// finish sets the time (and for cancellation the status) of uncommitted
// stamps. Already committed stamps are left alone.
func (r *StampRegistry) finish(seqs []int32, at int64, cancel bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, seq := range seqs {
		s, ok := r.stamps[seq]
		if !ok {
			return errs.Invariantf("unknown stamp sequence %d", seq)
		}
		if s.Committed() {
			continue
		}
		s.Time = at
		if cancel {
			s.Status = Canceled
		}
		r.putLocked(seq, s)
	}
	return nil
}
