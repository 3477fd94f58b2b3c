package engine

import (
	"github.com/quarrydb/quarry/internal/codec"
	"github.com/quarrydb/quarry/internal/dberr"
	"github.com/quarrydb/quarry/internal/sql/types"
)

// encodeRow serializes a Row as a binary record: a field count followed by
// each Value's tagged encoding. The record carries no format version.
func encodeRow(row types.Row) []byte {
	enc := codec.NewEncoder().U64(uint64(len(row)))
	for _, v := range row {
		appendValue(enc, v)
	}
	return enc.Build()
}

func decodeRow(data []byte) (types.Row, error) {
	d := codec.NewDecoder(data)
	n, err := d.U64()
	if err != nil {
		return nil, dberr.IOf(err, "decode row field count")
	}
	row := make(types.Row, n)
	for i := range row {
		v, err := decodeValue(d)
		if err != nil {
			return nil, dberr.IOf(err, "decode row field %d", i)
		}
		row[i] = v
	}
	return row, nil
}

func encodeTable(t *types.Table) []byte {
	enc := codec.NewEncoder().String(t.Name).U64(uint64(len(t.Columns)))
	for _, c := range t.Columns {
		enc.String(c.Name)
		enc.Tag(byte(c.DataType))
		enc.Raw(boolByte(c.Nullable))
		enc.Raw(boolByte(c.Default != nil))
		if c.Default != nil {
			appendValue(enc, *c.Default)
		}
		enc.Raw(boolByte(c.PrimaryKey))
		enc.Raw(boolByte(c.Index))
	}
	return enc.Build()
}

func decodeTable(data []byte) (*types.Table, error) {
	d := codec.NewDecoder(data)
	name, err := d.String()
	if err != nil {
		return nil, dberr.IOf(err, "decode table name")
	}
	n, err := d.U64()
	if err != nil {
		return nil, dberr.IOf(err, "decode column count")
	}
	cols := make([]types.Column, n)
	for i := range cols {
		colName, err := d.String()
		if err != nil {
			return nil, dberr.IOf(err, "decode column name")
		}
		dtByte, err := d.Tag()
		if err != nil {
			return nil, dberr.IOf(err, "decode column datatype")
		}
		nullable, err := readBool(d)
		if err != nil {
			return nil, err
		}
		hasDefault, err := readBool(d)
		if err != nil {
			return nil, err
		}
		var def *types.Value
		if hasDefault {
			v, err := decodeValue(d)
			if err != nil {
				return nil, dberr.IOf(err, "decode column default")
			}
			def = &v
		}
		pk, err := readBool(d)
		if err != nil {
			return nil, err
		}
		idx, err := readBool(d)
		if err != nil {
			return nil, err
		}
		cols[i] = types.Column{
			Name:       colName,
			DataType:   types.DataType(dtByte),
			Nullable:   nullable,
			Default:    def,
			PrimaryKey: pk,
			Index:      idx,
		}
	}
	return &types.Table{Name: name, Columns: cols}, nil
}

func boolByte(b bool) []byte {
	if b {
		return []byte{1}
	}
	return []byte{0}
}

func readBool(d *codec.Decoder) (bool, error) {
	b, err := d.RawN(1)
	if err != nil {
		return false, err
	}
	return b[0] != 0, nil
}
