package storage

import (
	"bytes"

	"github.com/tidwall/btree"
)

// MemoryEngine is an ordered in-memory Engine (spec §4.3), used for tests
// and ephemeral embedded operation. It is backed by a tidwall/btree.Map so
// range scans are genuinely ordered rather than sort-on-read.
type MemoryEngine struct {
	tree *btree.Map[string, []byte]
}

// NewMemoryEngine returns an empty MemoryEngine.
func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{tree: btree.NewMap[string, []byte](32)}
}

func (m *MemoryEngine) Set(key, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)
	m.tree.Set(string(key), v)
	return nil
}

func (m *MemoryEngine) Get(key []byte) ([]byte, error) {
	v, ok := m.tree.Get(string(key))
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemoryEngine) Delete(key []byte) error {
	m.tree.Delete(string(key))
	return nil
}

func (m *MemoryEngine) Scan(lo, hi []byte) ([]Pair, error) {
	var out []Pair
	m.tree.Ascend(string(lo), func(k string, v []byte) bool {
		if hi != nil && bytes.Compare([]byte(k), hi) >= 0 {
			return false
		}
		val := make([]byte, len(v))
		copy(val, v)
		out = append(out, Pair{Key: []byte(k), Value: val})
		return true
	})
	return out, nil
}

func (m *MemoryEngine) Close() error { return nil }
