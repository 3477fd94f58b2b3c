package engine

import (
	"sort"

	"go.uber.org/zap"

	"github.com/quarrydb/quarry/internal/codec"
	"github.com/quarrydb/quarry/internal/dberr"
	"github.com/quarrydb/quarry/internal/mvcc"
	"github.com/quarrydb/quarry/internal/sql/types"
)

// KVEngine is the only Engine implementation (spec §1): row/schema
// operations over an MVCC transaction over a storage.Engine.
type KVEngine struct {
	mvcc   *mvcc.MVCC
	logger *zap.Logger
}

// NewKVEngine wraps m as a row/schema-level Engine.
func NewKVEngine(m *mvcc.MVCC, logger *zap.Logger) *KVEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KVEngine{mvcc: m, logger: logger}
}

func (e *KVEngine) Begin() (Transaction, error) {
	txn, err := e.mvcc.Begin()
	if err != nil {
		return nil, err
	}
	return &KVTransaction{txn: txn, logger: e.logger}, nil
}

// KVTransaction implements Transaction over one mvcc.Transaction.
type KVTransaction struct {
	txn    *mvcc.Transaction
	logger *zap.Logger
}

func (t *KVTransaction) Commit() error   { return t.txn.Commit() }
func (t *KVTransaction) Rollback() error { return t.txn.Rollback() }
func (t *KVTransaction) Version() uint64 { return t.txn.Version() }

func validateRow(table *types.Table, row types.Row) error {
	if len(row) != len(table.Columns) {
		return dberr.Internalf("row has %d values, table %s has %d columns", len(row), table.Name, len(table.Columns))
	}
	for i, c := range table.Columns {
		v := row[i]
		if v.IsNull() {
			if !c.Nullable {
				return dberr.Internalf("column %s cannot be null", c.Name)
			}
			continue
		}
		if !c.DataType.Matches(v) {
			return dberr.Internalf("column %s type mismatch", c.Name)
		}
	}
	return nil
}

// CreateRow implements spec §4.5's create_row contract.
func (t *KVTransaction) CreateRow(tableName string, row types.Row) error {
	table, err := MustGetTable(t, tableName)
	if err != nil {
		return err
	}
	if err := validateRow(table, row); err != nil {
		return err
	}

	pk := table.PrimaryKeyValue(row)
	if _, exists, err := t.ReadByID(tableName, pk); err != nil {
		return err
	} else if exists {
		return dberr.Internalf("Duplicate data for primary key %s in table %s", pk.String_(), tableName)
	}

	if err := t.txn.Set(keyRow(tableName, pk), encodeRow(row)); err != nil {
		return err
	}

	for i, c := range table.Columns {
		if !c.Index {
			continue
		}
		val := row[i]
		set, err := t.LoadIndex(tableName, c.Name, val)
		if err != nil {
			return err
		}
		set[pk] = struct{}{}
		if err := t.SaveIndex(tableName, c.Name, val, set); err != nil {
			return err
		}
	}
	return nil
}

// UpdateRow implements spec §4.5's update_row contract: a changed primary
// key is delete+insert; otherwise only the indexes whose column value
// actually changed are touched.
func (t *KVTransaction) UpdateRow(table *types.Table, id types.Value, row types.Row) error {
	newPK := table.PrimaryKeyValue(row)
	if newPK != id {
		if err := t.DeleteRow(table, id); err != nil {
			return err
		}
		return t.CreateRow(table.Name, row)
	}

	oldRow, ok, err := t.ReadByID(table.Name, id)
	if err != nil {
		return err
	}
	if !ok {
		return dberr.Internalf("row with primary key %s does not exist in table %s", id.String_(), table.Name)
	}

	for i, c := range table.Columns {
		if !c.Index {
			continue
		}
		oldVal, newVal := oldRow[i], row[i]
		if oldVal == newVal {
			continue
		}
		oldSet, err := t.LoadIndex(table.Name, c.Name, oldVal)
		if err != nil {
			return err
		}
		delete(oldSet, id)
		if err := t.SaveIndex(table.Name, c.Name, oldVal, oldSet); err != nil {
			return err
		}

		newSet, err := t.LoadIndex(table.Name, c.Name, newVal)
		if err != nil {
			return err
		}
		newSet[id] = struct{}{}
		if err := t.SaveIndex(table.Name, c.Name, newVal, newSet); err != nil {
			return err
		}
	}

	return t.txn.Set(keyRow(table.Name, id), encodeRow(row))
}

// DeleteRow implements spec §4.5's delete_row contract.
func (t *KVTransaction) DeleteRow(table *types.Table, id types.Value) error {
	row, ok, err := t.ReadByID(table.Name, id)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	for i, c := range table.Columns {
		if !c.Index {
			continue
		}
		val := row[i]
		set, err := t.LoadIndex(table.Name, c.Name, val)
		if err != nil {
			return err
		}
		delete(set, id)
		if err := t.SaveIndex(table.Name, c.Name, val, set); err != nil {
			return err
		}
	}
	return t.txn.Delete(keyRow(table.Name, id))
}

// ScanTable implements spec §4.5's scan_table contract.
func (t *KVTransaction) ScanTable(tableName string, filter RowFilter) ([]types.Row, error) {
	kvs, err := t.txn.ScanPrefix(keyRowPrefix(tableName))
	if err != nil {
		return nil, err
	}
	rows := make([]types.Row, 0, len(kvs))
	for _, kv := range kvs {
		row, err := decodeRow(kv.Value)
		if err != nil {
			return nil, err
		}
		if filter != nil {
			result, err := filter(row)
			if err != nil {
				return nil, err
			}
			switch {
			case result.Kind == types.KindNull:
				continue
			case result.Kind == types.KindBoolean:
				if !result.B {
					continue
				}
			default:
				return nil, dberr.Internalf("filter expression must evaluate to boolean, got %s", result.String_())
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func encodeValueSet(set map[types.Value]struct{}) []byte {
	enc := codec.NewEncoder().U64(uint64(len(set)))
	for v := range set {
		appendValue(enc, v)
	}
	return enc.Build()
}

func decodeValueSet(data []byte) (map[types.Value]struct{}, error) {
	d := codec.NewDecoder(data)
	n, err := d.U64()
	if err != nil {
		return nil, err
	}
	set := make(map[types.Value]struct{}, n)
	for i := uint64(0); i < n; i++ {
		v, err := decodeValue(d)
		if err != nil {
			return nil, err
		}
		set[v] = struct{}{}
	}
	return set, nil
}

// LoadIndex implements spec §4.5's load_index.
func (t *KVTransaction) LoadIndex(tableName, colName string, colValue types.Value) (map[types.Value]struct{}, error) {
	raw, ok, err := t.txn.Get(keyIndex(tableName, colName, colValue))
	if err != nil {
		return nil, err
	}
	if !ok {
		return map[types.Value]struct{}{}, nil
	}
	return decodeValueSet(raw)
}

// SaveIndex implements spec §4.5's save_index: deletes the index key when
// the set becomes empty rather than storing an empty set.
func (t *KVTransaction) SaveIndex(tableName, colName string, colValue types.Value, index map[types.Value]struct{}) error {
	key := keyIndex(tableName, colName, colValue)
	if len(index) == 0 {
		return t.txn.Delete(key)
	}
	return t.txn.Set(key, encodeValueSet(index))
}

// ReadByID implements spec §4.5's read_by_id.
func (t *KVTransaction) ReadByID(tableName string, id types.Value) (types.Row, bool, error) {
	raw, ok, err := t.txn.Get(keyRow(tableName, id))
	if err != nil || !ok {
		return nil, false, err
	}
	row, err := decodeRow(raw)
	if err != nil {
		return nil, false, err
	}
	return row, true, nil
}

// CreateTable implements spec §4.5's create_table.
func (t *KVTransaction) CreateTable(table *types.Table) error {
	if err := table.Validate(); err != nil {
		return err
	}
	if _, ok, err := t.GetTable(table.Name); err != nil {
		return err
	} else if ok {
		return dberr.Internalf("table %s already exists", table.Name)
	}
	return t.txn.Set(keyTable(table.Name), encodeTable(table))
}

// DropTable implements spec §4.5's drop_table: every row is deleted
// through DeleteRow first, so each indexed column's inverted set is
// cleaned up the same way a DELETE statement would, before the table
// metadata itself is removed.
func (t *KVTransaction) DropTable(tableName string) error {
	table, ok, err := t.GetTable(tableName)
	if err != nil {
		return err
	} else if !ok {
		return dberr.Internalf("table %s does not exist", tableName)
	}

	rows, err := t.ScanTable(tableName, nil)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := t.DeleteRow(table, table.PrimaryKeyValue(row)); err != nil {
			return err
		}
	}

	return t.txn.Delete(keyTable(tableName))
}

// GetTableNames implements spec §4.5's get_table_names, returned sorted for
// deterministic SHOW TABLES output.
func (t *KVTransaction) GetTableNames() ([]string, error) {
	kvs, err := t.txn.ScanPrefix([]byte{tagTable})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(kvs))
	for _, kv := range kvs {
		d := codec.NewDecoder(kv.Key)
		if _, err := d.Tag(); err != nil {
			return nil, err
		}
		name, err := d.String()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// GetTable implements spec §4.5's get_table.
func (t *KVTransaction) GetTable(tableName string) (*types.Table, bool, error) {
	raw, ok, err := t.txn.Get(keyTable(tableName))
	if err != nil || !ok {
		return nil, false, err
	}
	table, err := decodeTable(raw)
	if err != nil {
		return nil, false, err
	}
	return table, true, nil
}

var _ Engine = (*KVEngine)(nil)
var _ Transaction = (*KVTransaction)(nil)
