package testutil

import (
	"encoding/binary"
	"sync"

	"github.com/google/uuid"
)

// UUIDSequence hands out predictable UUIDs so golden output and failure
// messages stay stable between runs. The first four bytes hold the
// sequence's prefix and the last eight a counter starting at 1.
//
// Safe for concurrent use.
type UUIDSequence struct {
	mu     sync.Mutex
	prefix uint32
	n      uint64
}

// NewUUIDSequence creates a sequence. Distinct prefixes never collide.
func NewUUIDSequence(prefix uint32) *UUIDSequence {
	return &UUIDSequence{prefix: prefix}
}

// Next returns the next UUID of the sequence.
func (s *UUIDSequence) Next() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	var u uuid.UUID
	binary.BigEndian.PutUint32(u[0:4], s.prefix)
	binary.BigEndian.PutUint64(u[8:16], s.n)
	return u
}

// Take returns the next n UUIDs.
func (s *UUIDSequence) Take(n int) []uuid.UUID {
	out := make([]uuid.UUID, n)
	for i := range out {
		out[i] = s.Next()
	}
	return out
}
