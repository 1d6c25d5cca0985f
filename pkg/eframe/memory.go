package eframe

import (
	"encoding/binary"

	"github.com/bits-and-blooms/bloom/v3"
)

// Memory records the identity hashes a Receiver has delivered. Each
// Receiver owns its Memory exclusively; implementations need not be safe for
// concurrent use.
type Memory interface {
	// Contains reports whether hash has been recorded since the last Reset.
	Contains(hash uint64) bool

	// Insert records hash. Inserting a present hash is a no-op.
	Insert(hash uint64)

	// Reset forgets every recorded hash.
	Reset()

	// Len returns the number of distinct recorded hashes. Probabilistic
	// implementations may return an estimate.
	Len() int
}

// setMemory is the exact, unbounded default Memory.
type setMemory map[uint64]struct{}

// NewSetMemory returns an exact Memory backed by a hash set. It never
// forgets a hash on its own and never reports a false match.
func NewSetMemory() Memory {
	return setMemory{}
}

func (m setMemory) Contains(hash uint64) bool {
	_, ok := m[hash]
	return ok
}

func (m setMemory) Insert(hash uint64) {
	m[hash] = struct{}{}
}

func (m setMemory) Reset() {
	clear(m)
}

func (m setMemory) Len() int {
	return len(m)
}

// bloomMemory trades exactness for a fixed memory footprint. A false
// positive makes an unseen identity look seen, which suppresses its initial
// frame the same way an identity hash collision would. Ordinary frames are
// never affected.
type bloomMemory struct {
	filter *bloom.BloomFilter
	key    [8]byte
}

// NewBloomMemory returns a Memory backed by a bloom filter sized for
// capacity distinct identities at the given false positive rate.
//
// Typical defaults:
//   - capacity: 1,000,000
//   - fpRate: 0.0001 (0.01%)
func NewBloomMemory(capacity uint, fpRate float64) Memory {
	return &bloomMemory{
		filter: bloom.NewWithEstimates(capacity, fpRate),
	}
}

func (m *bloomMemory) Contains(hash uint64) bool {
	binary.BigEndian.PutUint64(m.key[:], hash)
	return m.filter.Test(m.key[:])
}

func (m *bloomMemory) Insert(hash uint64) {
	binary.BigEndian.PutUint64(m.key[:], hash)
	m.filter.Add(m.key[:])
}

func (m *bloomMemory) Reset() {
	m.filter.ClearAll()
}

func (m *bloomMemory) Len() int {
	return int(m.filter.ApproximatedSize())
}
