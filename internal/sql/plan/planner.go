package plan

import (
	"github.com/quarrydb/quarry/internal/dberr"
	"github.com/quarrydb/quarry/internal/sql/engine"
	"github.com/quarrydb/quarry/internal/sql/parser"
	"github.com/quarrydb/quarry/internal/sql/types"
)

// Planner builds a Plan from an AST Statement against one transaction,
// consulting table schemas for index selection.
type Planner struct {
	txn engine.Transaction
}

// New returns a Planner bound to txn.
func New(txn engine.Transaction) *Planner {
	return &Planner{txn: txn}
}

// Build transforms stmt into a Plan. Begin/Commit/Rollback/Explain are
// handled by the session, not the planner (spec §4.6).
func (p *Planner) Build(stmt parser.Statement) (*Plan, error) {
	node, err := p.buildStatement(stmt)
	if err != nil {
		return nil, err
	}
	return &Plan{Root: node}, nil
}

func (p *Planner) buildStatement(stmt parser.Statement) (Node, error) {
	switch s := stmt.(type) {
	case *parser.CreateTableStatement:
		return p.buildCreateTable(s)
	case *parser.DropTableStatement:
		return &DropTableNode{Name: s.Name}, nil
	case *parser.InsertStatement:
		return &InsertNode{Table: s.Table, Columns: s.Columns, Values: s.Values}, nil
	case *parser.SelectStatement:
		return p.buildSelect(s)
	case *parser.UpdateStatement:
		source, err := p.buildScan(s.Table, s.Where)
		if err != nil {
			return nil, err
		}
		return &UpdateNode{Table: s.Table, Source: source, Set: s.Set}, nil
	case *parser.DeleteStatement:
		source, err := p.buildScan(s.Table, s.Where)
		if err != nil {
			return nil, err
		}
		return &DeleteNode{Table: s.Table, Source: source}, nil
	case *parser.BeginStatement, *parser.CommitStatement, *parser.RollbackStatement:
		return nil, dberr.Internalf("unexpected transaction command")
	case *parser.ExplainStatement:
		return nil, dberr.Internalf("unexpected explain command")
	default:
		return nil, dberr.Internalf("unknown statement type")
	}
}

func (p *Planner) buildCreateTable(s *parser.CreateTableStatement) (Node, error) {
	columns := make([]types.Column, len(s.Columns))
	for i, c := range s.Columns {
		nullable := !c.PrimaryKey
		if c.Nullable != nil {
			nullable = *c.Nullable
		}

		var def *types.Value
		switch {
		case c.Default != nil:
			v, err := constExprValue(c.Default)
			if err != nil {
				return nil, err
			}
			def = &v
		case nullable:
			n := types.Null()
			def = &n
		}

		columns[i] = types.Column{
			Name:       c.Name,
			DataType:   c.DataType,
			Nullable:   nullable,
			Default:    def,
			PrimaryKey: c.PrimaryKey,
			Index:      c.Index && !c.PrimaryKey,
		}
	}
	return &CreateTableNode{Schema: &types.Table{Name: s.Name, Columns: columns}}, nil
}

func (p *Planner) buildSelect(s *parser.SelectStatement) (Node, error) {
	node, err := p.buildFromItem(s.From, s.Where)
	if err != nil {
		return nil, err
	}

	hasAgg := false
	if len(s.Select) > 0 {
		for _, item := range s.Select {
			if _, ok := item.Expr.(*parser.FunctionExpr); ok {
				hasAgg = true
				break
			}
		}
		if s.GroupBy != nil {
			hasAgg = true
		}
		if hasAgg {
			node = &AggregateNode{Source: node, Exprs: s.Select, GroupBy: s.GroupBy}
		}
	}

	if s.Having != nil {
		node = &FilterNode{Source: node, Predicate: s.Having}
	}

	if len(s.OrderBy) > 0 {
		node = &OrderNode{Source: node, OrderBy: s.OrderBy}
	}

	if s.Offset != nil {
		n, err := constIntValue(s.Offset, "offset")
		if err != nil {
			return nil, err
		}
		node = &OffsetNode{Source: node, Offset: n}
	}

	if s.Limit != nil {
		n, err := constIntValue(s.Limit, "limit")
		if err != nil {
			return nil, err
		}
		node = &LimitNode{Source: node, Limit: n}
	}

	if len(s.Select) > 0 && !hasAgg {
		node = &ProjectionNode{Source: node, Exprs: s.Select}
	}

	return node, nil
}

// buildFromItem mirrors the original's filter-pushdown: the same WHERE
// predicate is passed to every table leaf in the FROM tree, including both
// sides of a join.
func (p *Planner) buildFromItem(item parser.FromItem, filter parser.Expression) (Node, error) {
	switch it := item.(type) {
	case parser.FromTable:
		return p.buildScan(it.Name, filter)
	case *parser.FromJoin:
		outer := it.JoinType != parser.JoinCross && it.JoinType != parser.JoinInner
		left, err := p.buildFromItem(it.Left, filter)
		if err != nil {
			return nil, err
		}
		right, err := p.buildFromItem(it.Right, filter)
		if err != nil {
			return nil, err
		}
		if it.JoinType == parser.JoinCross {
			return &NestedLoopJoinNode{Left: left, Right: right, Predicate: it.Predicate, Outer: outer}, nil
		}
		return &HashJoinNode{Left: left, Right: right, Predicate: it.Predicate, Outer: outer}, nil
	default:
		return nil, dberr.Internalf("unknown FROM item")
	}
}

func (p *Planner) buildScan(tableName string, filter parser.Expression) (Node, error) {
	field, value, ok := parseScanFilter(filter)
	if !ok {
		return &ScanNode{Table: tableName, Filter: filter}, nil
	}

	table, err := engine.MustGetTable(p.txn, tableName)
	if err != nil {
		return nil, err
	}
	for _, c := range table.Columns {
		if c.Name == field && c.PrimaryKey {
			return &PrimaryKeyScanNode{Table: tableName, Value: value}, nil
		}
	}
	for _, c := range table.Columns {
		if c.Name == field && c.Index {
			return &IndexScanNode{Table: tableName, Field: field, Value: value}, nil
		}
	}
	return &ScanNode{Table: tableName, Filter: filter}, nil
}

// parseScanFilter recognizes `field = constant` (spec §4.6's index
// selection shape). Any other predicate shape falls through to a plain
// scan with the predicate pushed into the executor.
func parseScanFilter(filter parser.Expression) (field string, value types.Value, ok bool) {
	op, isOp := filter.(*parser.OperationExpr)
	if !isOp || op.Op != parser.OpEqual {
		return "", types.Value{}, false
	}
	lf, lIsField := op.Left.(*parser.FieldExpr)
	rf, rIsField := op.Right.(*parser.FieldExpr)
	lc, lIsConst := op.Left.(*parser.ConstExpr)
	rc, rIsConst := op.Right.(*parser.ConstExpr)

	switch {
	case lIsField && rIsConst:
		return lf.Name, rc.Value, true
	case rIsField && lIsConst:
		return rf.Name, lc.Value, true
	default:
		return "", types.Value{}, false
	}
}

func constExprValue(e parser.Expression) (types.Value, error) {
	c, ok := e.(*parser.ConstExpr)
	if !ok {
		return types.Value{}, dberr.Internalf("expected a constant expression")
	}
	return c.Value, nil
}

func constIntValue(e parser.Expression, what string) (int, error) {
	v, err := constExprValue(e)
	if err != nil {
		return 0, err
	}
	if v.Kind != types.KindInteger {
		return 0, dberr.Internalf("invalid %s", what)
	}
	return int(v.I), nil
}
