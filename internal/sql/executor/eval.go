package executor

import (
	"github.com/quarrydb/quarry/internal/dberr"
	"github.com/quarrydb/quarry/internal/sql/parser"
	"github.com/quarrydb/quarry/internal/sql/types"
)

// evalSingle evaluates expr against one row's columns (spec §4.6's
// predicate/projection evaluation), ported from original_source's
// evaluate_expr restricted to a single column context: both operands of a
// comparison resolve Field names against the same row. A function call
// (e.g. an aggregate written in WHERE or HAVING) is rejected as an
// unexpected expression; aggregates are computed only by AggregateNode.
func evalSingle(expr parser.Expression, cols []string, row types.Row) (types.Value, error) {
	return evalJoin(expr, cols, row, cols, row)
}

// evalJoin evaluates expr with two column contexts, the way a join
// predicate needs: each operand of a binary Operation resolves Field
// names against its own side, recursing with the sides swapped for the
// right operand (original_source/src/sql/parser/ast.rs's evaluate_expr).
func evalJoin(expr parser.Expression, lcols []string, lrow types.Row, rcols []string, rrow types.Row) (types.Value, error) {
	switch e := expr.(type) {
	case *parser.FieldExpr:
		pos := indexOf(lcols, e.Name)
		if pos < 0 {
			return types.Value{}, dberr.Internalf("column %s is not in table", e.Name)
		}
		return lrow[pos], nil
	case *parser.ConstExpr:
		return e.Value, nil
	case *parser.OperationExpr:
		lv, err := evalJoin(e.Left, lcols, lrow, rcols, rrow)
		if err != nil {
			return types.Value{}, err
		}
		rv, err := evalJoin(e.Right, rcols, rrow, lcols, lrow)
		if err != nil {
			return types.Value{}, err
		}
		cmp, isNull, err := lv.Compare(rv)
		if err != nil {
			return types.Value{}, err
		}
		if isNull {
			return types.Null(), nil
		}
		switch e.Op {
		case parser.OpEqual:
			return types.Boolean(cmp == 0), nil
		case parser.OpGreaterThan:
			return types.Boolean(cmp > 0), nil
		case parser.OpLessThan:
			return types.Boolean(cmp < 0), nil
		default:
			return types.Value{}, dberr.Internalf("unknown operator")
		}
	case *parser.FunctionExpr:
		return types.Value{}, dberr.Internalf("unexpected expression")
	default:
		return types.Value{}, dberr.Internalf("unexpected expression")
	}
}

// asBool interprets a predicate result per spec §4.6: Null or
// Boolean(false) drop the row, Boolean(true) keeps it, anything else is
// an error (evaluate_expr's result is only ever one of those three).
func asBool(v types.Value) (bool, error) {
	switch {
	case v.IsNull():
		return false, nil
	case v.Kind == types.KindBoolean:
		return v.B, nil
	default:
		return false, dberr.Internalf("filter expression must evaluate to boolean, got %s", v.String_())
	}
}
