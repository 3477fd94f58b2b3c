package executor

import (
	"sort"

	"github.com/quarrydb/quarry/internal/dberr"
	"github.com/quarrydb/quarry/internal/sql/engine"
	"github.com/quarrydb/quarry/internal/sql/parser"
	"github.com/quarrydb/quarry/internal/sql/plan"
	"github.com/quarrydb/quarry/internal/sql/types"
)

func executeScan(n *plan.ScanNode, txn engine.Transaction) (ResultSet, error) {
	table, err := engine.MustGetTable(txn, n.Table)
	if err != nil {
		return ResultSet{}, err
	}
	cols := columnNames(table)

	var filter engine.RowFilter
	if n.Filter != nil {
		filter = func(row types.Row) (types.Value, error) {
			return evalSingle(n.Filter, cols, row)
		}
	}
	rows, err := txn.ScanTable(n.Table, filter)
	if err != nil {
		return ResultSet{}, err
	}
	return ResultSet{Kind: KindQuery, Columns: cols, Rows: rows}, nil
}

func executePrimaryKeyScan(n *plan.PrimaryKeyScanNode, txn engine.Transaction) (ResultSet, error) {
	table, err := engine.MustGetTable(txn, n.Table)
	if err != nil {
		return ResultSet{}, err
	}
	cols := columnNames(table)
	row, ok, err := txn.ReadByID(n.Table, n.Value)
	if err != nil {
		return ResultSet{}, err
	}
	var rows []types.Row
	if ok {
		rows = []types.Row{row}
	}
	return ResultSet{Kind: KindQuery, Columns: cols, Rows: rows}, nil
}

func executeIndexScan(n *plan.IndexScanNode, txn engine.Transaction) (ResultSet, error) {
	table, err := engine.MustGetTable(txn, n.Table)
	if err != nil {
		return ResultSet{}, err
	}
	cols := columnNames(table)
	set, err := txn.LoadIndex(n.Table, n.Field, n.Value)
	if err != nil {
		return ResultSet{}, err
	}

	ids := make([]types.Value, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		cmp, _, _ := ids[i].Compare(ids[j])
		return cmp < 0
	})

	rows := make([]types.Row, 0, len(ids))
	for _, id := range ids {
		row, ok, err := txn.ReadByID(n.Table, id)
		if err != nil {
			return ResultSet{}, err
		}
		if ok {
			rows = append(rows, row)
		}
	}
	return ResultSet{Kind: KindQuery, Columns: cols, Rows: rows}, nil
}

func executeProjection(n *plan.ProjectionNode, txn engine.Transaction) (ResultSet, error) {
	source, err := Execute(n.Source, txn)
	if err != nil {
		return ResultSet{}, err
	}
	if source.Kind != KindQuery {
		return ResultSet{}, dberr.Internalf("unexpected result set")
	}

	cols := make([]string, len(n.Exprs))
	for i, item := range n.Exprs {
		if item.Alias != "" {
			cols[i] = item.Alias
		} else {
			cols[i] = item.Expr.String()
		}
	}

	rows := make([]types.Row, 0, len(source.Rows))
	for _, row := range source.Rows {
		newRow := make(types.Row, len(n.Exprs))
		for i, item := range n.Exprs {
			v, err := evalSingle(item.Expr, source.Columns, row)
			if err != nil {
				return ResultSet{}, err
			}
			newRow[i] = v
		}
		rows = append(rows, newRow)
	}
	return ResultSet{Kind: KindQuery, Columns: cols, Rows: rows}, nil
}

func executeFilter(n *plan.FilterNode, txn engine.Transaction) (ResultSet, error) {
	source, err := Execute(n.Source, txn)
	if err != nil {
		return ResultSet{}, err
	}
	if source.Kind != KindQuery {
		return ResultSet{}, dberr.Internalf("unexpected result set")
	}

	rows := make([]types.Row, 0, len(source.Rows))
	for _, row := range source.Rows {
		v, err := evalSingle(n.Predicate, source.Columns, row)
		if err != nil {
			return ResultSet{}, err
		}
		keep, err := asBool(v)
		if err != nil {
			return ResultSet{}, err
		}
		if keep {
			rows = append(rows, row)
		}
	}
	return ResultSet{Kind: KindQuery, Columns: source.Columns, Rows: rows}, nil
}

func executeOrder(n *plan.OrderNode, txn engine.Transaction) (ResultSet, error) {
	source, err := Execute(n.Source, txn)
	if err != nil {
		return ResultSet{}, err
	}
	if source.Kind != KindQuery {
		return ResultSet{}, dberr.Internalf("unexpected result set")
	}

	positions := make([]int, len(n.OrderBy))
	for i, term := range n.OrderBy {
		pos := indexOf(source.Columns, term.Column)
		if pos < 0 {
			return ResultSet{}, dberr.Internalf("column %s is not in table", term.Column)
		}
		positions[i] = pos
	}

	var sortErr error
	sort.SliceStable(source.Rows, func(i, j int) bool {
		for k, term := range n.OrderBy {
			pos := positions[k]
			a, b := source.Rows[i][pos], source.Rows[j][pos]
			cmp, isNull, err := compareForOrder(a, b)
			if err != nil {
				sortErr = err
				return false
			}
			if isNull {
				continue
			}
			if term.Direction == parser.Desc {
				cmp = -cmp
			}
			if cmp != 0 {
				return cmp < 0
			}
		}
		return false
	})
	if sortErr != nil {
		return ResultSet{}, sortErr
	}
	return source, nil
}

// compareForOrder ranks Null below every non-null value (above it under
// DESC) instead of erroring on a cross-kind comparison; two Nulls tie, so
// the comparison falls through to the next ORDER BY term.
func compareForOrder(a, b types.Value) (cmp int, tie bool, err error) {
	if a.IsNull() || b.IsNull() {
		if a.IsNull() && b.IsNull() {
			return 0, true, nil
		}
		if a.IsNull() {
			return -1, false, nil
		}
		return 1, false, nil
	}
	cmp, _, err = a.Compare(b)
	return cmp, false, err
}

func executeLimit(n *plan.LimitNode, txn engine.Transaction) (ResultSet, error) {
	source, err := Execute(n.Source, txn)
	if err != nil {
		return ResultSet{}, err
	}
	if source.Kind != KindQuery {
		return ResultSet{}, dberr.Internalf("unexpected result set")
	}
	if n.Limit < len(source.Rows) {
		source.Rows = source.Rows[:n.Limit]
	}
	return source, nil
}

func executeOffset(n *plan.OffsetNode, txn engine.Transaction) (ResultSet, error) {
	source, err := Execute(n.Source, txn)
	if err != nil {
		return ResultSet{}, err
	}
	if source.Kind != KindQuery {
		return ResultSet{}, dberr.Internalf("unexpected result set")
	}
	if n.Offset < len(source.Rows) {
		source.Rows = source.Rows[n.Offset:]
	} else {
		source.Rows = nil
	}
	return source, nil
}
