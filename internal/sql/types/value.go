// Package types holds the data model shared across the SQL front end:
// Value, DataType, Column, Table, and Row (spec §3).
package types

import (
	"fmt"
	"strconv"

	"github.com/quarrydb/quarry/internal/dberr"
)

// ValueKind discriminates the Value union.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindBoolean
	KindInteger
	KindFloat
	KindString
)

// Value is the tagged sum {Null, Boolean, Integer, Float, String}. It is a
// plain comparable struct (no pointers/slices) so it can be used directly
// as a Go map key, which the index machinery relies on.
type Value struct {
	Kind ValueKind
	B    bool
	I    int64
	F    float64
	S    string
}

func Null() Value                { return Value{Kind: KindNull} }
func Boolean(b bool) Value       { return Value{Kind: KindBoolean, B: b} }
func Integer(i int64) Value      { return Value{Kind: KindInteger, I: i} }
func FloatValue(f float64) Value { return Value{Kind: KindFloat, F: f} }
func String(s string) Value      { return Value{Kind: KindString, S: s} }

func (v Value) IsNull() bool { return v.Kind == KindNull }

// Float widens Integer to float64 for numeric comparisons and aggregates.
func (v Value) Float() float64 {
	if v.Kind == KindInteger {
		return float64(v.I)
	}
	return v.F
}

func (v Value) String_() string {
	switch v.Kind {
	case KindNull:
		return "NULL"
	case KindBoolean:
		if v.B {
			return "TRUE"
		}
		return "FALSE"
	case KindInteger:
		return strconv.FormatInt(v.I, 10)
	case KindFloat:
		return strconv.FormatFloat(v.F, 'g', -1, 64)
	case KindString:
		return v.S
	default:
		return "?"
	}
}

func (v Value) numeric() bool { return v.Kind == KindInteger || v.Kind == KindFloat }

// Compare implements spec §3's comparison semantics: Integer/Float widen
// and compare numerically; String compares lexicographically; any
// comparison involving Null yields (0, true, nil) with isNull=true so the
// caller can propagate Null instead of a boolean; cross-kind comparisons
// other than Integer<->Float are an Internal error (SPEC_FULL Open
// Question 2).
func (v Value) Compare(other Value) (cmp int, isNull bool, err error) {
	if v.IsNull() || other.IsNull() {
		return 0, true, nil
	}
	switch {
	case v.numeric() && other.numeric():
		a, b := v.Float(), other.Float()
		switch {
		case a < b:
			return -1, false, nil
		case a > b:
			return 1, false, nil
		default:
			return 0, false, nil
		}
	case v.Kind == KindString && other.Kind == KindString:
		switch {
		case v.S < other.S:
			return -1, false, nil
		case v.S > other.S:
			return 1, false, nil
		default:
			return 0, false, nil
		}
	case v.Kind == KindBoolean && other.Kind == KindBoolean:
		switch {
		case v.B == other.B:
			return 0, false, nil
		case !v.B:
			return -1, false, nil
		default:
			return 1, false, nil
		}
	default:
		return 0, false, dberr.Internalf("cannot compare %s and %s", v.typeName(), other.typeName())
	}
}

// EqualValue implements the predicate `=` operator: Null propagates, otherwise
// it's Compare == 0 lifted into a Value.
func (v Value) EqualValue(other Value) (Value, error) {
	cmp, isNull, err := v.Compare(other)
	if err != nil {
		return Value{}, err
	}
	if isNull {
		return Null(), nil
	}
	return Boolean(cmp == 0), nil
}

func (v Value) typeName() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// DataType is the declared type of a column.
type DataType int

const (
	Boolean_ DataType = iota
	Integer_
	Float_
	String_
)

func (d DataType) String() string {
	switch d {
	case Boolean_:
		return "BOOLEAN"
	case Integer_:
		return "INTEGER"
	case Float_:
		return "FLOAT"
	case String_:
		return "STRING"
	default:
		return "?"
	}
}

// Matches reports whether v's kind is compatible with datatype d (Null is
// compatible with any type since nullability is checked separately).
func (d DataType) Matches(v Value) bool {
	switch v.Kind {
	case KindNull:
		return true
	case KindBoolean:
		return d == Boolean_
	case KindInteger:
		return d == Integer_ || d == Float_
	case KindFloat:
		return d == Float_
	case KindString:
		return d == String_
	default:
		return false
	}
}

// Column is one column of a Table (spec §3).
type Column struct {
	Name       string
	DataType   DataType
	Nullable   bool
	Default    *Value
	PrimaryKey bool
	Index      bool
}

// Row is a positional sequence of Values, one per table column.
type Row []Value

// Table is a named, ordered list of Columns.
type Table struct {
	Name    string
	Columns []Column
}

// Validate enforces spec §3's table invariants: non-empty columns, exactly
// one primary key, primary key not nullable, and default values type-check
// against their column.
func (t *Table) Validate() error {
	if len(t.Columns) == 0 {
		return dberr.Internalf("table %s has no columns", t.Name)
	}
	pkCount := 0
	for _, c := range t.Columns {
		if c.PrimaryKey {
			pkCount++
		}
	}
	switch pkCount {
	case 0:
		return dberr.Internalf("table %s has no primary key", t.Name)
	case 1:
		// ok
	default:
		return dberr.Internalf("table %s has multiple primary keys", t.Name)
	}
	for _, c := range t.Columns {
		if c.PrimaryKey && c.Nullable {
			return dberr.Internalf("primary key column %s cannot be nullable", c.Name)
		}
		if c.PrimaryKey && c.Index {
			return dberr.Internalf("primary key column %s cannot also carry a secondary index", c.Name)
		}
		if c.Default != nil && !c.DataType.Matches(*c.Default) {
			return dberr.Internalf("default value for column %s does not match type %s", c.Name, c.DataType)
		}
	}
	return nil
}

// PrimaryKeyColumn returns the table's single primary-key column and its
// position. Validate must have already succeeded.
func (t *Table) PrimaryKeyColumn() (Column, int) {
	for i, c := range t.Columns {
		if c.PrimaryKey {
			return c, i
		}
	}
	panic("types: table has no primary key; Validate was not called")
}

// PrimaryKeyValue extracts the primary-key value from a row in this table's
// schema order.
func (t *Table) PrimaryKeyValue(row Row) Value {
	_, idx := t.PrimaryKeyColumn()
	return row[idx]
}

// ColumnIndex returns the position of the named column, or -1 if absent.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// String renders the table as its CREATE TABLE form, used by SHOW TABLE.
func (t *Table) String() string {
	s := fmt.Sprintf("CREATE TABLE %s (\n", t.Name)
	for i, c := range t.Columns {
		s += "  " + c.string()
		if i < len(t.Columns)-1 {
			s += ","
		}
		s += "\n"
	}
	s += ")"
	return s
}

func (c Column) string() string {
	s := fmt.Sprintf("%s %s", c.Name, c.DataType)
	if c.PrimaryKey {
		s += " PRIMARY KEY"
	}
	if !c.Nullable && !c.PrimaryKey {
		s += " NOT NULL"
	}
	if c.Default != nil {
		s += " DEFAULT " + c.Default.String_()
	}
	if c.Index {
		s += " INDEX"
	}
	return s
}
