package engine

import (
	"github.com/quarrydb/quarry/internal/codec"
	"github.com/quarrydb/quarry/internal/dberr"
	"github.com/quarrydb/quarry/internal/sql/types"
)

// Logical key tags, assigned in the declaration order of spec §3's
// "Key families (logical)" list: Table, Row, Index.
const (
	tagTable byte = iota
	tagRow
	tagIndex
)

func keyTable(name string) []byte {
	return codec.NewEncoder().Tag(tagTable).String(name).Build()
}

func keyRowPrefix(table string) []byte {
	return codec.NewEncoder().Tag(tagRow).String(table).Build()
}

func keyRow(table string, pk types.Value) []byte {
	enc := codec.NewEncoder().Tag(tagRow).String(table)
	appendValue(enc, pk)
	return enc.Build()
}

func keyIndexPrefix(table, col string) []byte {
	return codec.NewEncoder().Tag(tagIndex).String(table).String(col).Build()
}

func keyIndex(table, col string, val types.Value) []byte {
	enc := codec.NewEncoder().Tag(tagIndex).String(table).String(col)
	appendValue(enc, val)
	return enc.Build()
}

// value-inside-key tags (spec §4.1 "Values inside keys"), independent of
// the logical key tags above.
const (
	vtagNull byte = iota
	vtagBoolean
	vtagInteger
	vtagFloat
	vtagString
)

func appendValue(enc *codec.Encoder, v types.Value) *codec.Encoder {
	switch v.Kind {
	case types.KindNull:
		enc.Tag(vtagNull)
	case types.KindBoolean:
		enc.Tag(vtagBoolean)
		if v.B {
			enc.Raw([]byte{1})
		} else {
			enc.Raw([]byte{0})
		}
	case types.KindInteger:
		enc.Tag(vtagInteger).Raw(codec.EncodeInt64(v.I))
	case types.KindFloat:
		enc.Tag(vtagFloat).Raw(codec.EncodeFloat64(v.F))
	case types.KindString:
		enc.Tag(vtagString).String(v.S)
	}
	return enc
}

func decodeValue(d *codec.Decoder) (types.Value, error) {
	tag, err := d.Tag()
	if err != nil {
		return types.Value{}, err
	}
	switch tag {
	case vtagNull:
		return types.Null(), nil
	case vtagBoolean:
		b, err := d.RawN(1)
		if err != nil {
			return types.Value{}, err
		}
		return types.Boolean(b[0] != 0), nil
	case vtagInteger:
		b, err := d.RawN(8)
		if err != nil {
			return types.Value{}, err
		}
		i, err := codec.DecodeInt64(b)
		if err != nil {
			return types.Value{}, err
		}
		return types.Integer(i), nil
	case vtagFloat:
		b, err := d.RawN(8)
		if err != nil {
			return types.Value{}, err
		}
		f, err := codec.DecodeFloat64(b)
		if err != nil {
			return types.Value{}, err
		}
		return types.FloatValue(f), nil
	case vtagString:
		s, err := d.String()
		if err != nil {
			return types.Value{}, err
		}
		return types.String(s), nil
	default:
		return types.Value{}, dberr.Internalf("engine: unknown value tag 0x%02x", tag)
	}
}
