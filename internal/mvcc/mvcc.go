// Package mvcc implements snapshot-isolation transactions over any
// storage.Engine (spec §4.4): versioned keys, active-set visibility, and
// first-committer-wins write-conflict detection.
package mvcc

import (
	"encoding/binary"
	"sync"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"go.uber.org/zap"

	"github.com/quarrydb/quarry/internal/codec"
	"github.com/quarrydb/quarry/internal/dberr"
	"github.com/quarrydb/quarry/internal/storage"
)

// Physical key tags, assigned in the declaration order of spec §3's "MVCC
// keys (physical, stored)" list.
const (
	tagNextVersion byte = iota
	tagTxnActive
	tagTxnWrite
	tagVersion
)

const (
	mvccValuePlain     byte = 0
	mvccValueTombstone byte = 1
)

func keyNextVersion() []byte {
	return codec.NewEncoder().Tag(tagNextVersion).Build()
}

func keyTxnActive(v uint64) []byte {
	return codec.NewEncoder().Tag(tagTxnActive).U64(v).Build()
}

func prefixTxnActive() []byte {
	return []byte{tagTxnActive}
}

func keyTxnWrite(v uint64, rawKey []byte) []byte {
	return codec.NewEncoder().Tag(tagTxnWrite).U64(v).Raw(rawKey).Build()
}

func prefixTxnWrite(v uint64) []byte {
	return codec.NewEncoder().Tag(tagTxnWrite).U64(v).Build()
}

func decodeTxnWriteKey(k []byte) (rawKey []byte, err error) {
	d := codec.NewDecoder(k)
	if _, err := d.Tag(); err != nil {
		return nil, err
	}
	if _, err := d.U64(); err != nil {
		return nil, err
	}
	return d.RemainingBytes(), nil
}

func keyVersion(rawKey []byte, v uint64) []byte {
	return codec.NewEncoder().Tag(tagVersion).Raw(rawKey).U64(v).Build()
}

func prefixVersion(rawKey []byte) []byte {
	return codec.NewEncoder().Tag(tagVersion).Raw(rawKey).Build()
}

func decodeVersionKey(k []byte) (rawKey []byte, version uint64, err error) {
	if len(k) < 1+8 {
		return nil, 0, dberr.Internalf("mvcc: truncated version key")
	}
	version = binary.BigEndian.Uint64(k[len(k)-8:])
	rawKey = k[1 : len(k)-8]
	return rawKey, version, nil
}

func encodeValue(tombstone bool, payload []byte) []byte {
	out := make([]byte, 1+len(payload))
	if tombstone {
		out[0] = mvccValueTombstone
	} else {
		out[0] = mvccValuePlain
	}
	copy(out[1:], payload)
	return out
}

func decodeValue(raw []byte) (tombstone bool, payload []byte) {
	if len(raw) == 0 {
		return true, nil
	}
	return raw[0] == mvccValueTombstone, raw[1:]
}

// MVCC multiplexes snapshot-isolated transactions onto a single
// storage.Engine, guarded by one mutex per spec §5.
type MVCC struct {
	engine storage.Engine
	mu     sync.Mutex
	logger *zap.Logger
}

// New wraps engine with MVCC semantics.
func New(engine storage.Engine, logger *zap.Logger) *MVCC {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MVCC{engine: engine, logger: logger}
}

// Transaction is one snapshot-isolated transaction: an immutable {version,
// active set} pair captured at Begin, plus a reference to the shared
// engine and mutex for subsequent operations.
type Transaction struct {
	mvcc    *MVCC
	version uint64
	active  *roaring64.Bitmap
}

// Begin implements spec §4.4 "Beginning a transaction".
func (m *MVCC) Begin() (*Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, err := m.readNextVersionLocked()
	if err != nil {
		return nil, err
	}
	if err := m.engine.Set(keyNextVersion(), encodeU64(v+1)); err != nil {
		return nil, dberr.IOf(err, "write NextVersion")
	}

	active := roaring64.New()
	pairs, err := storage.ScanPrefix(m.engine, prefixTxnActive())
	if err != nil {
		return nil, dberr.IOf(err, "scan active transactions")
	}
	for _, p := range pairs {
		if len(p.Key) < 1+8 {
			continue
		}
		active.Add(binary.BigEndian.Uint64(p.Key[1:]))
	}

	if err := m.engine.Set(keyTxnActive(v), []byte{1}); err != nil {
		return nil, dberr.IOf(err, "mark transaction active")
	}

	m.logger.Debug("transaction began", zap.Uint64("version", v), zap.Uint64("active_count", active.GetCardinality()))
	return &Transaction{mvcc: m, version: v, active: active}, nil
}

func (m *MVCC) readNextVersionLocked() (uint64, error) {
	raw, err := m.engine.Get(keyNextVersion())
	if err != nil {
		return 0, dberr.IOf(err, "read NextVersion")
	}
	if raw == nil {
		return 1, nil
	}
	if len(raw) != 8 {
		return 0, dberr.Internalf("mvcc: corrupt NextVersion value")
	}
	return binary.BigEndian.Uint64(raw), nil
}

func encodeU64(v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return b[:]
}

// Version returns the transaction's snapshot version.
func (t *Transaction) Version() uint64 { return t.version }

// isVisible implements spec §4.4 "Visibility": w <= v and w is not in the
// active set captured at Begin.
func (t *Transaction) isVisible(w uint64) bool {
	return w <= t.version && !t.active.Contains(w)
}

// Get implements spec §4.4 "Reads": reverse-scan Version(k,0)..Version(k,v)
// and return the first visible record, collapsing a visible tombstone to
// "not found" just like a truly absent key.
func (t *Transaction) Get(k []byte) ([]byte, bool, error) {
	t.mvcc.mu.Lock()
	defer t.mvcc.mu.Unlock()

	prefix := prefixVersion(k)
	pairs, err := t.mvcc.engine.Scan(prefix, codec.PrefixEnd(prefix))
	if err != nil {
		return nil, false, dberr.IOf(err, "scan versions")
	}
	for i := len(pairs) - 1; i >= 0; i-- {
		_, version, err := decodeVersionKey(pairs[i].Key)
		if err != nil {
			return nil, false, dberr.IOf(err, "decode version key")
		}
		if !t.isVisible(version) {
			continue
		}
		tombstone, payload := decodeValue(pairs[i].Value)
		if tombstone {
			return nil, false, nil
		}
		return payload, true, nil
	}
	return nil, false, nil
}

// KV is one logical key/value pair returned by ScanPrefix, already
// unwrapped from its MVCC version envelope.
type KV struct {
	Key   []byte
	Value []byte
}

// ScanPrefix implements spec §4.4's scan_prefix: newest visible version per
// raw key, tombstones skipped, ascending raw-key order.
func (t *Transaction) ScanPrefix(p []byte) ([]KV, error) {
	t.mvcc.mu.Lock()
	defer t.mvcc.mu.Unlock()

	physPrefix := codec.NewEncoder().Tag(tagVersion).Raw(p).Build()
	pairs, err := t.mvcc.engine.Scan(physPrefix, codec.PrefixEnd(physPrefix))
	if err != nil {
		return nil, dberr.IOf(err, "scan prefix")
	}

	type pending struct {
		rawKey    []byte
		value     []byte
		tombstone bool
	}
	results := map[string]*pending{}
	var order []string

	for _, pair := range pairs {
		rawKey, version, err := decodeVersionKey(pair.Key)
		if err != nil {
			return nil, dberr.IOf(err, "decode version key")
		}
		if !t.isVisible(version) {
			continue
		}
		tombstone, payload := decodeValue(pair.Value)
		key := string(rawKey)
		if _, exists := results[key]; !exists {
			order = append(order, key)
		}
		rk := make([]byte, len(rawKey))
		copy(rk, rawKey)
		results[key] = &pending{rawKey: rk, value: payload, tombstone: tombstone}
	}

	out := make([]KV, 0, len(order))
	for _, key := range order {
		e := results[key]
		if e.tombstone {
			continue
		}
		out = append(out, KV{Key: e.rawKey, Value: e.value})
	}
	return out, nil
}

// Set implements spec §4.4 "Writes" for a live value.
func (t *Transaction) Set(k, v []byte) error {
	return t.writeInner(k, encodeValue(false, v))
}

// Delete implements spec §4.4 "Writes" for a tombstone.
func (t *Transaction) Delete(k []byte) error {
	return t.writeInner(k, encodeValue(true, nil))
}

// writeInner implements spec §4.4 "Writes": conflict check then write,
// under the shared mutex for the whole critical section.
func (t *Transaction) writeInner(k, encodedValue []byte) error {
	t.mvcc.mu.Lock()
	defer t.mvcc.mu.Unlock()

	lowerBound := t.version + 1
	if !t.active.IsEmpty() {
		if min := t.active.Minimum(); min < lowerBound {
			lowerBound = min
		}
	}

	prefix := prefixVersion(k)
	lo := keyVersion(k, lowerBound)
	pairs, err := t.mvcc.engine.Scan(lo, codec.PrefixEnd(prefix))
	if err != nil {
		return dberr.IOf(err, "scan for write conflict")
	}
	if len(pairs) > 0 {
		last := pairs[len(pairs)-1]
		_, version, err := decodeVersionKey(last.Key)
		if err != nil {
			return dberr.IOf(err, "decode version key")
		}
		if !t.isVisible(version) {
			return dberr.WriteConflictf("write conflict on key at version %d", version)
		}
	}

	if err := t.mvcc.engine.Set(keyTxnWrite(t.version, k), []byte{1}); err != nil {
		return dberr.IOf(err, "record txn write marker")
	}
	if err := t.mvcc.engine.Set(keyVersion(k, t.version), encodedValue); err != nil {
		return dberr.IOf(err, "write version")
	}
	return nil
}

// Commit implements spec §4.4 "Commit": drop TxnWrite markers, then the
// TxnActive marker. Committed Version records are kept forever (spec §9).
func (t *Transaction) Commit() error {
	t.mvcc.mu.Lock()
	defer t.mvcc.mu.Unlock()

	prefix := prefixTxnWrite(t.version)
	pairs, err := t.mvcc.engine.Scan(prefix, codec.PrefixEnd(prefix))
	if err != nil {
		return dberr.IOf(err, "scan txn writes")
	}
	for _, p := range pairs {
		if err := t.mvcc.engine.Delete(p.Key); err != nil {
			return dberr.IOf(err, "delete txn write marker")
		}
	}
	if err := t.mvcc.engine.Delete(keyTxnActive(t.version)); err != nil {
		return dberr.IOf(err, "delete txn active marker")
	}
	t.mvcc.logger.Debug("transaction committed", zap.Uint64("version", t.version))
	return nil
}

// Rollback implements spec §4.4 "Rollback": physically delete every
// Version record this transaction wrote, then its TxnWrite and TxnActive
// markers, so no trace of the transaction's writes remains.
func (t *Transaction) Rollback() error {
	t.mvcc.mu.Lock()
	defer t.mvcc.mu.Unlock()

	prefix := prefixTxnWrite(t.version)
	pairs, err := t.mvcc.engine.Scan(prefix, codec.PrefixEnd(prefix))
	if err != nil {
		return dberr.IOf(err, "scan txn writes")
	}
	for _, p := range pairs {
		rawKey, err := decodeTxnWriteKey(p.Key)
		if err != nil {
			return dberr.IOf(err, "decode txn write key")
		}
		if err := t.mvcc.engine.Delete(keyVersion(rawKey, t.version)); err != nil {
			return dberr.IOf(err, "delete version on rollback")
		}
		if err := t.mvcc.engine.Delete(p.Key); err != nil {
			return dberr.IOf(err, "delete txn write marker")
		}
	}
	if err := t.mvcc.engine.Delete(keyTxnActive(t.version)); err != nil {
		return dberr.IOf(err, "delete txn active marker")
	}
	t.mvcc.logger.Debug("transaction rolled back", zap.Uint64("version", t.version))
	return nil
}
