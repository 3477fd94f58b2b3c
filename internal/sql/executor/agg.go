package executor

import (
	"sort"
	"strings"

	"github.com/quarrydb/quarry/internal/dberr"
	"github.com/quarrydb/quarry/internal/sql/engine"
	"github.com/quarrydb/quarry/internal/sql/parser"
	"github.com/quarrydb/quarry/internal/sql/plan"
	"github.com/quarrydb/quarry/internal/sql/types"
)

// group is one bucket of source rows sharing a group_by value (or the
// single implicit group when there's no GROUP BY clause).
type group struct {
	key  types.Value
	rows []types.Row
}

func executeAggregate(n *plan.AggregateNode, txn engine.Transaction) (ResultSet, error) {
	source, err := Execute(n.Source, txn)
	if err != nil {
		return ResultSet{}, err
	}
	if source.Kind != KindQuery {
		return ResultSet{}, dberr.Internalf("unexpected result set")
	}

	groups, err := buildGroups(n.GroupBy, source.Columns, source.Rows)
	if err != nil {
		return ResultSet{}, err
	}

	cols := make([]string, len(n.Exprs))
	for i, item := range n.Exprs {
		cols[i] = aggregateLabel(item)
	}

	rows := make([]types.Row, 0, len(groups))
	for _, g := range groups {
		row := make(types.Row, len(n.Exprs))
		for i, item := range n.Exprs {
			v, err := evalAggregateItem(item, source.Columns, g.rows)
			if err != nil {
				return ResultSet{}, err
			}
			row[i] = v
		}
		rows = append(rows, row)
	}

	return ResultSet{Kind: KindQuery, Columns: cols, Rows: rows}, nil
}

func aggregateLabel(item parser.SelectItem) string {
	if item.Alias != "" {
		return item.Alias
	}
	if fn, ok := item.Expr.(*parser.FunctionExpr); ok {
		return fn.Name
	}
	return item.Expr.String()
}

// buildGroups buckets rows by groupBy's value per row, treating Null as
// its own group (types.Value is comparable, so it works as a map key
// without special-casing). With no GROUP BY clause, every row falls into
// one implicit group. Groups are then sorted by key for deterministic
// output, since callers without an explicit ORDER BY still expect
// reproducible results.
func buildGroups(groupBy parser.Expression, cols []string, rows []types.Row) ([]group, error) {
	if groupBy == nil {
		return []group{{rows: rows}}, nil
	}

	byKey := make(map[types.Value][]types.Row)
	var order []types.Value
	for _, row := range rows {
		key, err := evalSingle(groupBy, cols, row)
		if err != nil {
			return nil, err
		}
		if _, seen := byKey[key]; !seen {
			order = append(order, key)
		}
		byKey[key] = append(byKey[key], row)
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.IsNull() != b.IsNull() {
			return a.IsNull()
		}
		if a.IsNull() {
			return false
		}
		cmp, _, _ := a.Compare(b)
		return cmp < 0
	})

	groups := make([]group, len(order))
	for i, key := range order {
		groups[i] = group{key: key, rows: byKey[key]}
	}
	return groups, nil
}

// evalAggregateItem computes one select-list item over one group: a bare
// Field is the group-by column itself (same value in every row of the
// group), a Function is count/min/max/sum/avg over the named column, and
// anything else is evaluated against the group's first row.
func evalAggregateItem(item parser.SelectItem, cols []string, rows []types.Row) (types.Value, error) {
	switch e := item.Expr.(type) {
	case *parser.FunctionExpr:
		return computeAggFunc(strings.ToLower(e.Name), e.Field, cols, rows)
	default:
		if len(rows) == 0 {
			return types.Null(), nil
		}
		return evalSingle(item.Expr, cols, rows[0])
	}
}

func computeAggFunc(name, field string, cols []string, rows []types.Row) (types.Value, error) {
	pos := indexOf(cols, field)
	if pos < 0 {
		return types.Value{}, dberr.Internalf("column %s is not in table", field)
	}

	var nonNull []types.Value
	for _, row := range rows {
		if !row[pos].IsNull() {
			nonNull = append(nonNull, row[pos])
		}
	}

	switch name {
	case "count":
		return types.Integer(int64(len(nonNull))), nil
	case "min":
		if len(nonNull) == 0 {
			return types.Null(), nil
		}
		min := nonNull[0]
		for _, v := range nonNull[1:] {
			cmp, _, err := v.Compare(min)
			if err != nil {
				return types.Value{}, err
			}
			if cmp < 0 {
				min = v
			}
		}
		return min, nil
	case "max":
		if len(nonNull) == 0 {
			return types.Null(), nil
		}
		max := nonNull[0]
		for _, v := range nonNull[1:] {
			cmp, _, err := v.Compare(max)
			if err != nil {
				return types.Value{}, err
			}
			if cmp > 0 {
				max = v
			}
		}
		return max, nil
	case "sum":
		if len(nonNull) == 0 {
			return types.Null(), nil
		}
		var sum float64
		for _, v := range nonNull {
			sum += v.Float()
		}
		return types.FloatValue(sum), nil
	case "avg":
		if len(nonNull) == 0 {
			return types.Null(), nil
		}
		var sum float64
		for _, v := range nonNull {
			sum += v.Float()
		}
		return types.FloatValue(sum / float64(len(nonNull))), nil
	default:
		return types.Value{}, dberr.Internalf("unknown aggregate function %s", name)
	}
}
