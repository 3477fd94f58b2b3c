package mvcc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quarrydb/quarry/internal/dberr"
	"github.com/quarrydb/quarry/internal/storage"
)

func newTestMVCC(t *testing.T) *MVCC {
	t.Helper()
	return New(storage.NewMemoryEngine(), nil)
}

func TestNoDirtyRead(t *testing.T) {
	m := newTestMVCC(t)

	tx1, err := m.Begin()
	require.NoError(t, err)
	require.NoError(t, tx1.Set([]byte("k"), []byte("v1")))

	tx2, err := m.Begin()
	require.NoError(t, err)
	_, ok, err := tx2.Get([]byte("k"))
	require.NoError(t, err)
	require.False(t, ok, "tx2 must not see tx1's uncommitted write")
}

func TestRepeatableRead(t *testing.T) {
	m := newTestMVCC(t)

	setup, err := m.Begin()
	require.NoError(t, err)
	require.NoError(t, setup.Set([]byte("k"), []byte("v0")))
	require.NoError(t, setup.Commit())

	tx1, err := m.Begin()
	require.NoError(t, err)

	other, err := m.Begin()
	require.NoError(t, err)
	require.NoError(t, other.Set([]byte("k"), []byte("v1")))
	require.NoError(t, other.Commit())

	v, ok, err := tx1.Get([]byte("k"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v0"), v, "tx1's snapshot must not see the later commit")
}

func TestPhantomPreventionWithinSnapshot(t *testing.T) {
	m := newTestMVCC(t)

	tx1, err := m.Begin()
	require.NoError(t, err)
	before, err := tx1.ScanPrefix([]byte("row/"))
	require.NoError(t, err)

	other, err := m.Begin()
	require.NoError(t, err)
	require.NoError(t, other.Set([]byte("row/1"), []byte("x")))
	require.NoError(t, other.Commit())

	after, err := tx1.ScanPrefix([]byte("row/"))
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestWriteConflict(t *testing.T) {
	m := newTestMVCC(t)

	tx1, err := m.Begin()
	require.NoError(t, err)
	require.NoError(t, tx1.Set([]byte("k"), []byte("v1")))

	tx2, err := m.Begin()
	require.NoError(t, err)
	err = tx2.Set([]byte("k"), []byte("v2"))
	require.Error(t, err)
	require.True(t, dberr.Is(err, dberr.KindWriteConflict))
}

func TestRollbackPurgesWrites(t *testing.T) {
	m := newTestMVCC(t)

	tx, err := m.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.Set([]byte("k"), []byte("v")))
	require.NoError(t, tx.Rollback())

	pairs, err := m.engine.Scan(prefixVersion([]byte("k")), nil)
	require.NoError(t, err)
	require.Empty(t, pairs, "no Version(k, tx.version) may remain after rollback")
}

func TestCommitThenNewTransactionSeesWrite(t *testing.T) {
	m := newTestMVCC(t)

	tx, err := m.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.Set([]byte("k"), []byte("v")))
	require.NoError(t, tx.Commit())

	tx2, err := m.Begin()
	require.NoError(t, err)
	v, ok, err := tx2.Get([]byte("k"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v"), v)
}

func TestOwnWritesVisibleWithinTransaction(t *testing.T) {
	m := newTestMVCC(t)

	tx, err := m.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.Set([]byte("k"), []byte("v")))

	v, ok, err := tx.Get([]byte("k"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v"), v)
}

func TestDeleteThenGetIsTombstoned(t *testing.T) {
	m := newTestMVCC(t)

	tx, err := m.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.Set([]byte("k"), []byte("v")))
	require.NoError(t, tx.Commit())

	tx2, err := m.Begin()
	require.NoError(t, err)
	require.NoError(t, tx2.Delete([]byte("k")))
	_, ok, err := tx2.Get([]byte("k"))
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, tx2.Commit())

	tx3, err := m.Begin()
	require.NoError(t, err)
	_, ok, err = tx3.Get([]byte("k"))
	require.NoError(t, err)
	require.False(t, ok)
}
