// Package codec implements the order-preserving tagged-key encoding shared
// by the MVCC physical key space and the typed KV transaction's logical key
// space. Byte-wise ordering of an encoded key matches tuple ordering of its
// decoded fields, which is what makes scan_prefix correct across mixed key
// families sharing one engine.
package codec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// sentinel terminates a variable-length byte field. A literal 0x00 inside
// the field is escaped as 0x00 0xff so the terminator stays unambiguous.
const (
	sentinelByte byte = 0x00
	escapeByte   byte = 0xff
)

// Encoder accumulates the byte-wise-ordered encoding of a tagged key.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an empty Encoder.
func NewEncoder() *Encoder { return &Encoder{} }

// Tag appends a single-byte discriminant. Callers assign tag values in
// declaration order of their key family's variants.
func (e *Encoder) Tag(tag byte) *Encoder {
	e.buf = append(e.buf, tag)
	return e
}

// Bytes appends a variable-length byte field, escaping embedded 0x00 bytes
// and terminating with the two-byte sentinel.
func (e *Encoder) Bytes(b []byte) *Encoder {
	for _, c := range b {
		if c == sentinelByte {
			e.buf = append(e.buf, sentinelByte, escapeByte)
		} else {
			e.buf = append(e.buf, c)
		}
	}
	e.buf = append(e.buf, sentinelByte, sentinelByte)
	return e
}

// String appends a variable-length string field using the same escaping as
// Bytes, since strings are encoded as their UTF-8 bytes.
func (e *Encoder) String(s string) *Encoder { return e.Bytes([]byte(s)) }

// U64 appends a fixed-width big-endian uint64, used for MVCC versions.
func (e *Encoder) U64(v uint64) *Encoder {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	e.buf = append(e.buf, tmp[:]...)
	return e
}

// Raw appends already-encoded bytes verbatim, used to nest one key's
// encoding as a field of another (e.g. Version(raw_key, version)).
func (e *Encoder) Raw(b []byte) *Encoder {
	e.buf = append(e.buf, b...)
	return e
}

// Build returns the accumulated encoding.
func (e *Encoder) Build() []byte { return e.buf }

// Decoder consumes a byte-wise-ordered encoding in the same field order it
// was written.
type Decoder struct {
	buf []byte
	pos int
}

// NewDecoder wraps b for sequential decoding.
func NewDecoder(b []byte) *Decoder { return &Decoder{buf: b} }

// Remaining reports whether any bytes are left to decode.
func (d *Decoder) Remaining() bool { return d.pos < len(d.buf) }

// RemainingBytes returns the undecoded tail, e.g. for nested raw keys whose
// own length isn't known up front.
func (d *Decoder) RemainingBytes() []byte { return d.buf[d.pos:] }

// Tag reads a single discriminant byte.
func (d *Decoder) Tag() (byte, error) {
	if d.pos >= len(d.buf) {
		return 0, fmt.Errorf("codec: truncated tag")
	}
	t := d.buf[d.pos]
	d.pos++
	return t, nil
}

// Bytes decodes a variable-length byte field written by Encoder.Bytes,
// reversing the 0x00/0x00xff escaping and stopping at the sentinel.
func (d *Decoder) Bytes() ([]byte, error) {
	var out []byte
	for {
		if d.pos >= len(d.buf) {
			return nil, fmt.Errorf("codec: unterminated byte field")
		}
		c := d.buf[d.pos]
		if c != sentinelByte {
			out = append(out, c)
			d.pos++
			continue
		}
		if d.pos+1 >= len(d.buf) {
			return nil, fmt.Errorf("codec: truncated escape sequence")
		}
		next := d.buf[d.pos+1]
		d.pos += 2
		switch next {
		case escapeByte:
			out = append(out, sentinelByte)
		case sentinelByte:
			return out, nil
		default:
			return nil, fmt.Errorf("codec: invalid escape sequence 0x00 0x%02x", next)
		}
	}
}

// String decodes a field written by Encoder.String.
func (d *Decoder) String() (string, error) {
	b, err := d.Bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// RawN reads n unescaped bytes verbatim, for fixed-width fields (like the
// order-preserving int64/float64 encodings) that don't use the
// sentinel/escape scheme.
func (d *Decoder) RawN(n int) ([]byte, error) {
	if d.pos+n > len(d.buf) {
		return nil, fmt.Errorf("codec: truncated raw field of length %d", n)
	}
	out := d.buf[d.pos : d.pos+n]
	d.pos += n
	return out, nil
}

// U64 decodes a fixed-width big-endian uint64.
func (d *Decoder) U64() (uint64, error) {
	if d.pos+8 > len(d.buf) {
		return 0, fmt.Errorf("codec: truncated u64")
	}
	v := binary.BigEndian.Uint64(d.buf[d.pos : d.pos+8])
	d.pos += 8
	return v, nil
}

// EncodeInt64 produces an order-preserving fixed-width encoding of a signed
// integer: flip the sign bit so that the two's-complement byte pattern
// compares correctly across negative and non-negative values.
func EncodeInt64(v int64) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], uint64(v)^(1<<63))
	return tmp[:]
}

// DecodeInt64 reverses EncodeInt64.
func DecodeInt64(b []byte) (int64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("codec: int64 field must be 8 bytes, got %d", len(b))
	}
	u := binary.BigEndian.Uint64(b) ^ (1 << 63)
	return int64(u), nil
}

// EncodeFloat64 produces an order-preserving fixed-width encoding: for
// non-negative floats set the sign bit, for negative floats flip every bit.
// This is the standard trick for making IEEE-754 bit patterns compare in
// the same order as the floats they represent.
func EncodeFloat64(v float64) []byte {
	bits := math.Float64bits(v)
	if bits&(1<<63) != 0 {
		bits = ^bits
	} else {
		bits |= 1 << 63
	}
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], bits)
	return tmp[:]
}

// DecodeFloat64 reverses EncodeFloat64.
func DecodeFloat64(b []byte) (float64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("codec: float64 field must be 8 bytes, got %d", len(b))
	}
	bits := binary.BigEndian.Uint64(b)
	if bits&(1<<63) != 0 {
		bits &^= 1 << 63
	} else {
		bits = ^bits
	}
	return math.Float64frombits(bits), nil
}

// PrefixEnd computes the exclusive upper bound of the range of keys sharing
// prefix p: increment the last byte that is < 0xff and truncate after it.
// If every byte is 0xff (or p is empty), the range is unbounded above and
// PrefixEnd returns nil.
func PrefixEnd(p []byte) []byte {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] < 0xff {
			end := make([]byte, i+1)
			copy(end, p[:i+1])
			end[i]++
			return end
		}
	}
	return nil
}
