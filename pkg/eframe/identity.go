package eframe

import (
	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// Identifier is implemented by payload types carried by an eframe channel.
//
// IdentityHash returns the deduplication identity of the value and true, or
// false if the value opts out of deduplication entirely. Values describing
// the same logical entity must return equal hashes. The result must depend
// only on the value itself and must not panic.
type Identifier interface {
	IdentityHash() (uint64, bool)
}

// HashString returns a 64-bit identity hash for a string key.
func HashString(key string) uint64 {
	return xxhash.Sum64String(key)
}

// HashBytes returns a 64-bit identity hash for a byte key.
func HashBytes(key []byte) uint64 {
	return xxhash.Sum64(key)
}

// HashUUID returns a 64-bit identity hash for a UUID.
func HashUUID(id uuid.UUID) uint64 {
	return xxhash.Sum64(id[:])
}
