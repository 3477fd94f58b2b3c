package executor

import (
	"github.com/quarrydb/quarry/internal/dberr"
	"github.com/quarrydb/quarry/internal/sql/engine"
	"github.com/quarrydb/quarry/internal/sql/parser"
	"github.com/quarrydb/quarry/internal/sql/plan"
	"github.com/quarrydb/quarry/internal/sql/types"
)

func executeNestedLoopJoin(n *plan.NestedLoopJoinNode, txn engine.Transaction) (ResultSet, error) {
	left, err := Execute(n.Left, txn)
	if err != nil {
		return ResultSet{}, err
	}
	if left.Kind != KindQuery {
		return ResultSet{}, dberr.Internalf("unexpected result set")
	}
	right, err := Execute(n.Right, txn)
	if err != nil {
		return ResultSet{}, err
	}
	if right.Kind != KindQuery {
		return ResultSet{}, dberr.Internalf("unexpected result set")
	}

	newCols := append(append([]string{}, left.Columns...), right.Columns...)
	var newRows []types.Row

	for _, lrow := range left.Rows {
		matched := false
		for _, rrow := range right.Rows {
			if n.Predicate != nil {
				v, err := evalJoin(n.Predicate, left.Columns, lrow, right.Columns, rrow)
				if err != nil {
					return ResultSet{}, err
				}
				keep, err := asBool(v)
				if err != nil {
					return ResultSet{}, err
				}
				if !keep {
					continue
				}
			}
			row := append(append(types.Row{}, lrow...), rrow...)
			newRows = append(newRows, row)
			matched = true
		}
		// Outer-join misses pad with one Null per right-side column
		// (the right child's declared column count), not the length of
		// an arbitrarily sampled right row — the right side may have
		// produced zero rows at all.
		if n.Outer && !matched {
			row := append([]types.Value{}, lrow...)
			for range right.Columns {
				row = append(row, types.Null())
			}
			newRows = append(newRows, row)
		}
	}

	return ResultSet{Kind: KindQuery, Columns: newCols, Rows: newRows}, nil
}

func executeHashJoin(n *plan.HashJoinNode, txn engine.Transaction) (ResultSet, error) {
	left, err := Execute(n.Left, txn)
	if err != nil {
		return ResultSet{}, err
	}
	if left.Kind != KindQuery {
		return ResultSet{}, dberr.Internalf("unexpected result set")
	}
	right, err := Execute(n.Right, txn)
	if err != nil {
		return ResultSet{}, err
	}
	if right.Kind != KindQuery {
		return ResultSet{}, dberr.Internalf("unexpected result set")
	}

	newCols := append(append([]string{}, left.Columns...), right.Columns...)

	lfield, rfield, ok := parseJoinFilter(n.Predicate)
	if !ok {
		return ResultSet{}, dberr.Internalf("failed to parse join predicate")
	}
	lpos := indexOf(left.Columns, lfield)
	if lpos < 0 {
		return ResultSet{}, dberr.Internalf("column %s not exist in table", lfield)
	}
	rpos := indexOf(right.Columns, rfield)
	if rpos < 0 {
		return ResultSet{}, dberr.Internalf("column %s not exist in table", rfield)
	}

	hashTable := make(map[types.Value][]types.Row)
	for _, row := range right.Rows {
		key := row[rpos]
		hashTable[key] = append(hashTable[key], row)
	}

	var newRows []types.Row
	for _, lrow := range left.Rows {
		matches, found := hashTable[lrow[lpos]]
		if found {
			for _, rrow := range matches {
				row := append(append(types.Row{}, lrow...), rrow...)
				newRows = append(newRows, row)
			}
			continue
		}
		if n.Outer {
			row := append([]types.Value{}, lrow...)
			for range right.Columns {
				row = append(row, types.Null())
			}
			newRows = append(newRows, row)
		}
	}

	return ResultSet{Kind: KindQuery, Columns: newCols, Rows: newRows}, nil
}

// parseJoinFilter extracts the two field names of an `l = r` hash-join
// predicate. Any other shape (not a bare Field on both sides of Equal)
// fails, matching the original's recursive field-only extraction.
func parseJoinFilter(predicate parser.Expression) (lfield, rfield string, ok bool) {
	op, isOp := predicate.(*parser.OperationExpr)
	if !isOp || op.Op != parser.OpEqual {
		return "", "", false
	}
	lf, lok := op.Left.(*parser.FieldExpr)
	rf, rok := op.Right.(*parser.FieldExpr)
	if !lok || !rok {
		return "", "", false
	}
	return lf.Name, rf.Name, true
}
