package storage

import (
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestMemoryEngineSetGetDeleteScan(t *testing.T) {
	e := NewMemoryEngine()

	require.NoError(t, e.Set([]byte("a"), []byte("1")))
	require.NoError(t, e.Set([]byte("b"), []byte("2")))
	require.NoError(t, e.Set([]byte("c"), []byte("3")))

	v, err := e.Get([]byte("b"))
	require.NoError(t, err)
	require.Equal(t, []byte("2"), v)

	require.NoError(t, e.Delete([]byte("b")))
	v, err = e.Get([]byte("b"))
	require.NoError(t, err)
	require.Nil(t, v)

	pairs, err := e.Scan(nil, nil)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	require.Equal(t, "a", string(pairs[0].Key))
	require.Equal(t, "c", string(pairs[1].Key))
}

func TestDiskEngineRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	e, err := OpenDiskEngine(fs, "/db/data.log", DiskOptions{})
	require.NoError(t, err)
	defer e.Close()

	require.NoError(t, e.Set([]byte("k1"), []byte("v1")))
	require.NoError(t, e.Set([]byte("k2"), []byte("v2")))
	require.NoError(t, e.Set([]byte("k1"), []byte("v1-updated")))
	require.NoError(t, e.Delete([]byte("k2")))

	v, err := e.Get([]byte("k1"))
	require.NoError(t, err)
	require.Equal(t, []byte("v1-updated"), v)

	v, err = e.Get([]byte("k2"))
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestDiskEngineRebuildIdempotence(t *testing.T) {
	fs := afero.NewMemMapFs()
	e, err := OpenDiskEngine(fs, "/db/data.log", DiskOptions{})
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		require.NoError(t, e.Set([]byte(fmt.Sprintf("key-%03d", i)), []byte(fmt.Sprintf("val-%d", i))))
	}
	require.NoError(t, e.Delete([]byte("key-005")))
	before, err := e.Scan(nil, nil)
	require.NoError(t, err)
	require.NoError(t, e.Close())

	reopened, err := OpenDiskEngine(fs, "/db/data.log", DiskOptions{})
	require.NoError(t, err)
	defer reopened.Close()

	after, err := reopened.Scan(nil, nil)
	require.NoError(t, err)
	require.Equal(t, before, after)
	require.Len(t, after, 19)
}

func TestDiskEngineScanPrefix(t *testing.T) {
	fs := afero.NewMemMapFs()
	e, err := OpenDiskEngine(fs, "/db/data.log", DiskOptions{})
	require.NoError(t, err)
	defer e.Close()

	require.NoError(t, e.Set([]byte("row/t/1"), []byte("a")))
	require.NoError(t, e.Set([]byte("row/t/2"), []byte("b")))
	require.NoError(t, e.Set([]byte("row/u/1"), []byte("c")))

	pairs, err := ScanPrefix(e, []byte("row/t/"))
	require.NoError(t, err)
	require.Len(t, pairs, 2)
}

func TestDiskEngineCompactionPreservesState(t *testing.T) {
	fs := afero.NewMemMapFs()
	e, err := OpenDiskEngine(fs, "/db/data.log", DiskOptions{CompactCompress: true})
	require.NoError(t, err)
	defer e.Close()

	for i := 0; i < 10; i++ {
		require.NoError(t, e.Set([]byte(fmt.Sprintf("k%d", i)), []byte(fmt.Sprintf("value-number-%d-padding-padding", i))))
	}
	require.NoError(t, e.Set([]byte("k3"), []byte("overwritten")))
	require.NoError(t, e.Delete([]byte("k7")))

	before, err := e.Scan(nil, nil)
	require.NoError(t, err)

	require.NoError(t, e.Compact())

	after, err := e.Scan(nil, nil)
	require.NoError(t, err)
	require.Equal(t, before, after)
	require.Len(t, after, 9)
}

func TestDiskEngineCacheConsistency(t *testing.T) {
	fs := afero.NewMemMapFs()
	e, err := OpenDiskEngine(fs, "/db/data.log", DiskOptions{CacheSize: 4})
	require.NoError(t, err)
	defer e.Close()

	require.NoError(t, e.Set([]byte("hot"), []byte("v1")))
	v, err := e.Get([]byte("hot"))
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), v)

	require.NoError(t, e.Set([]byte("hot"), []byte("v2")))
	v, err = e.Get([]byte("hot"))
	require.NoError(t, err)
	require.Equal(t, []byte("v2"), v)
}
