package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestBytesRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := rapid.SliceOf(rapid.Byte()).Draw(t, "in")
		enc := NewEncoder().Bytes(in).Build()
		dec := NewDecoder(enc)
		out, err := dec.Bytes()
		require.NoError(t, err)
		require.Equal(t, in, out)
		require.False(t, dec.Remaining())
	})
}

func TestBytesPrefixProperty(t *testing.T) {
	// For a non-empty prefix p of s, encode(p) stripped of its terminal
	// sentinel must be a byte-prefix of encode(s).
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.SliceOfN(rapid.Byte(), 1, 32).Draw(t, "s")
		n := rapid.IntRange(1, len(s)).Draw(t, "n")
		p := s[:n]

		encP := NewEncoder().Bytes(p).Build()
		encS := NewEncoder().Bytes(s).Build()

		stripped := encP[:len(encP)-2]
		require.True(t, bytes.HasPrefix(encS, stripped),
			"encode(%v) stripped=%v is not a prefix of encode(%v)=%v", p, stripped, s, encS)
	})
}

func TestBytesOrdering(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.SliceOf(rapid.Byte()).Draw(t, "a")
		b := rapid.SliceOf(rapid.Byte()).Draw(t, "b")

		encA := NewEncoder().Bytes(a).Build()
		encB := NewEncoder().Bytes(b).Build()

		cmpNative := bytes.Compare(a, b)
		cmpEnc := bytes.Compare(encA, encB)
		if cmpNative < 0 {
			require.Negative(t, cmpEnc)
		} else if cmpNative > 0 {
			require.Positive(t, cmpEnc)
		} else {
			require.Zero(t, cmpEnc)
		}
	})
}

func TestU64Ordering(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.Uint64().Draw(t, "a")
		b := rapid.Uint64().Draw(t, "b")

		encA := NewEncoder().U64(a).Build()
		encB := NewEncoder().U64(b).Build()

		switch {
		case a < b:
			require.Negative(t, bytes.Compare(encA, encB))
		case a > b:
			require.Positive(t, bytes.Compare(encA, encB))
		default:
			require.Zero(t, bytes.Compare(encA, encB))
		}
	})
}

func TestInt64Ordering(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.Int64().Draw(t, "a")
		b := rapid.Int64().Draw(t, "b")

		encA := EncodeInt64(a)
		encB := EncodeInt64(b)

		switch {
		case a < b:
			require.Negative(t, bytes.Compare(encA, encB))
		case a > b:
			require.Positive(t, bytes.Compare(encA, encB))
		default:
			require.Zero(t, bytes.Compare(encA, encB))
		}

		got, err := DecodeInt64(encA)
		require.NoError(t, err)
		require.Equal(t, a, got)
	})
}

func TestFloat64Ordering(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.Float64().Draw(t, "a")
		b := rapid.Float64().Draw(t, "b")

		encA := EncodeFloat64(a)
		encB := EncodeFloat64(b)

		switch {
		case a < b:
			require.Negative(t, bytes.Compare(encA, encB))
		case a > b:
			require.Positive(t, bytes.Compare(encA, encB))
		default:
			require.Zero(t, bytes.Compare(encA, encB))
		}

		got, err := DecodeFloat64(encA)
		require.NoError(t, err)
		require.Equal(t, a, got)
	})
}

func TestPrefixEnd(t *testing.T) {
	require.Equal(t, []byte{0x01, 0x03}, PrefixEnd([]byte{0x01, 0x02}))
	require.Nil(t, PrefixEnd([]byte{0xff, 0xff}))
	require.Equal(t, []byte{0x02}, PrefixEnd([]byte{0x01, 0xff}))
}
