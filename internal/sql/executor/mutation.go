package executor

import (
	"github.com/quarrydb/quarry/internal/dberr"
	"github.com/quarrydb/quarry/internal/sql/engine"
	"github.com/quarrydb/quarry/internal/sql/parser"
	"github.com/quarrydb/quarry/internal/sql/plan"
	"github.com/quarrydb/quarry/internal/sql/types"
)

func executeInsert(n *plan.InsertNode, txn engine.Transaction) (ResultSet, error) {
	table, err := engine.MustGetTable(txn, n.Table)
	if err != nil {
		return ResultSet{}, err
	}

	count := 0
	for _, values := range n.Values {
		row, err := buildInsertRow(table, n.Columns, values)
		if err != nil {
			return ResultSet{}, err
		}
		if err := txn.CreateRow(n.Table, row); err != nil {
			return ResultSet{}, err
		}
		count++
	}
	return ResultSet{Kind: KindInsert, TableName: n.Table, Count: count}, nil
}

// buildInsertRow fills a row in table-column order: explicit VALUES
// expressions (constant-only, evaluated with no row context) win;
// unspecified columns fall back to their schema default, which the
// planner has already set to Null for nullable columns with no explicit
// default, leaving a nil Default to mean "not nullable and no default".
func buildInsertRow(table *types.Table, columns []string, values []parser.Expression) (types.Row, error) {
	row := make(types.Row, len(table.Columns))

	if columns == nil {
		if len(values) != len(table.Columns) {
			return nil, dberr.Internalf("expected %d values for table %s, got %d", len(table.Columns), table.Name, len(values))
		}
		for i, expr := range values {
			v, err := evalSingle(expr, nil, nil)
			if err != nil {
				return nil, err
			}
			row[i] = v
		}
		return row, nil
	}

	if len(columns) != len(values) {
		return nil, dberr.Internalf("expected %d values, got %d", len(columns), len(values))
	}
	provided := make(map[string]parser.Expression, len(columns))
	for i, name := range columns {
		provided[name] = values[i]
	}

	for i, col := range table.Columns {
		expr, ok := provided[col.Name]
		if ok {
			v, err := evalSingle(expr, nil, nil)
			if err != nil {
				return nil, err
			}
			row[i] = v
			continue
		}
		if col.Default == nil {
			return nil, dberr.Internalf("no value given for column %s and it has no default", col.Name)
		}
		row[i] = *col.Default
	}
	return row, nil
}

func executeUpdate(n *plan.UpdateNode, txn engine.Transaction) (ResultSet, error) {
	table, err := engine.MustGetTable(txn, n.Table)
	if err != nil {
		return ResultSet{}, err
	}
	source, err := Execute(n.Source, txn)
	if err != nil {
		return ResultSet{}, err
	}
	if source.Kind != KindQuery {
		return ResultSet{}, dberr.Internalf("unexpected result set")
	}

	count := 0
	for _, row := range source.Rows {
		id := table.PrimaryKeyValue(row)
		newRow := append(types.Row{}, row...)
		for _, set := range n.Set {
			pos := table.ColumnIndex(set.Column)
			if pos < 0 {
				return ResultSet{}, dberr.Internalf("column %s is not in table", set.Column)
			}
			v, err := evalSingle(set.Value, source.Columns, row)
			if err != nil {
				return ResultSet{}, err
			}
			newRow[pos] = v
		}
		if err := txn.UpdateRow(table, id, newRow); err != nil {
			return ResultSet{}, err
		}
		count++
	}
	return ResultSet{Kind: KindUpdate, TableName: n.Table, Count: count}, nil
}

func executeDelete(n *plan.DeleteNode, txn engine.Transaction) (ResultSet, error) {
	table, err := engine.MustGetTable(txn, n.Table)
	if err != nil {
		return ResultSet{}, err
	}
	source, err := Execute(n.Source, txn)
	if err != nil {
		return ResultSet{}, err
	}
	if source.Kind != KindQuery {
		return ResultSet{}, dberr.Internalf("unexpected result set")
	}

	count := 0
	for _, row := range source.Rows {
		id := table.PrimaryKeyValue(row)
		if err := txn.DeleteRow(table, id); err != nil {
			return ResultSet{}, err
		}
		count++
	}
	return ResultSet{Kind: KindDelete, TableName: n.Table, Count: count}, nil
}
