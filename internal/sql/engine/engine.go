// Package engine implements the typed row/schema transaction layer of
// spec §4.5: it encodes logical keys (Table, Row, Index) via
// internal/codec and serializes values, wrapping an internal/mvcc
// transaction to present create_row/update_row/delete_row/scan_table and
// friends to the SQL executor.
package engine

//go:generate go run go.uber.org/mock/mockgen -source=engine.go -destination=mocks/mocks.go -package=mocks

import (
	"github.com/quarrydb/quarry/internal/dberr"
	"github.com/quarrydb/quarry/internal/sql/types"
)

// RowFilter is a predicate evaluated per row by ScanTable. It mirrors
// evaluate_expr's contract (spec §4.5): Boolean(true) keeps the row,
// Boolean(false)/Null drop it, anything else is an error. The executor
// builds these from parsed expressions; engine stays independent of the
// parser package.
type RowFilter func(types.Row) (types.Value, error)

// Engine begins new transactions against one underlying database.
type Engine interface {
	Begin() (Transaction, error)
}

// Transaction is the row/schema-level transaction interface spec §4.5
// describes (mirrors original_source/src/sql/engine/mod.rs's Transaction
// trait).
type Transaction interface {
	Commit() error
	Rollback() error
	Version() uint64

	CreateRow(tableName string, row types.Row) error
	UpdateRow(table *types.Table, id types.Value, row types.Row) error
	DeleteRow(table *types.Table, id types.Value) error
	ScanTable(tableName string, filter RowFilter) ([]types.Row, error)

	LoadIndex(tableName, colName string, colValue types.Value) (map[types.Value]struct{}, error)
	SaveIndex(tableName, colName string, colValue types.Value, index map[types.Value]struct{}) error
	ReadByID(tableName string, id types.Value) (types.Row, bool, error)

	CreateTable(table *types.Table) error
	DropTable(tableName string) error
	GetTableNames() ([]string, error)
	GetTable(tableName string) (*types.Table, bool, error)
}

// MustGetTable is the shared "get or Internal error" helper every caller
// needs (original_source's Transaction::must_get_table default method).
func MustGetTable(txn Transaction, tableName string) (*types.Table, error) {
	t, ok, err := txn.GetTable(tableName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, dberr.Internalf("table %s does not exist", tableName)
	}
	return t, nil
}
