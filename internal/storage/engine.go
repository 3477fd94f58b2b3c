// Package storage implements the key-value substrate the MVCC layer is
// built on: a Bitcask-style append-only log engine (DiskEngine) and an
// ordered in-memory engine (MemoryEngine), both satisfying Engine.
package storage

import (
	"github.com/quarrydb/quarry/internal/codec"
)

// Pair is one key/value entry returned from a range scan.
type Pair struct {
	Key   []byte
	Value []byte
}

// Engine is the storage substrate shared by every MVCC transaction (spec
// §4.2/§4.3). A single Engine instance is guarded by exactly one mutex
// above this layer (internal/mvcc); Engine implementations do not lock
// internally and are not safe for unsynchronized concurrent use.
type Engine interface {
	// Set stores value under key, replacing any existing value.
	Set(key, value []byte) error
	// Get returns the stored value, or (nil, nil) if key is absent.
	Get(key []byte) ([]byte, error)
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key []byte) error
	// Scan returns all pairs with lo <= key < hi, in ascending key order.
	// A nil hi means unbounded above.
	Scan(lo, hi []byte) ([]Pair, error)
	// Close releases underlying resources (file handles, locks).
	Close() error
}

// ScanPrefix returns all pairs whose key starts with prefix, computing the
// exclusive upper bound via codec.PrefixEnd (spec §4.2 scan_prefix).
func ScanPrefix(e Engine, prefix []byte) ([]Pair, error) {
	return e.Scan(prefix, codec.PrefixEnd(prefix))
}
