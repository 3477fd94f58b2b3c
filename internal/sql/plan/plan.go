// Package plan turns a parsed statement into a tree of executor Nodes
// (spec §4.6), grounded on original_source/src/sql/plan/planner.rs.
package plan

import (
	"github.com/quarrydb/quarry/internal/sql/parser"
	"github.com/quarrydb/quarry/internal/sql/types"
)

// Node is the sum type of plan tree nodes the executor pulls from.
type Node interface{ isNode() }

type CreateTableNode struct {
	Schema *types.Table
}

type DropTableNode struct {
	Name string
}

type InsertNode struct {
	Table   string
	Columns []string
	Values  [][]parser.Expression
}

type ScanNode struct {
	Table  string
	Filter parser.Expression // nil if none
}

type PrimaryKeyScanNode struct {
	Table string
	Value types.Value
}

type IndexScanNode struct {
	Table string
	Field string
	Value types.Value
}

type NestedLoopJoinNode struct {
	Left, Right Node
	Predicate   parser.Expression
	Outer       bool
}

type HashJoinNode struct {
	Left, Right Node
	Predicate   parser.Expression
	Outer       bool
}

type AggregateNode struct {
	Source  Node
	Exprs   []parser.SelectItem
	GroupBy parser.Expression // nil if none
}

type FilterNode struct {
	Source    Node
	Predicate parser.Expression
}

type OrderNode struct {
	Source  Node
	OrderBy []parser.OrderTerm
}

type OffsetNode struct {
	Source Node
	Offset int
}

type LimitNode struct {
	Source Node
	Limit  int
}

type ProjectionNode struct {
	Source Node
	Exprs  []parser.SelectItem
}

type UpdateNode struct {
	Table  string
	Source Node
	Set    []parser.SetClause
}

type DeleteNode struct {
	Table  string
	Source Node
}

func (*CreateTableNode) isNode()    {}
func (*DropTableNode) isNode()      {}
func (*InsertNode) isNode()         {}
func (*ScanNode) isNode()           {}
func (*PrimaryKeyScanNode) isNode() {}
func (*IndexScanNode) isNode()      {}
func (*NestedLoopJoinNode) isNode() {}
func (*HashJoinNode) isNode()       {}
func (*AggregateNode) isNode()      {}
func (*FilterNode) isNode()         {}
func (*OrderNode) isNode()          {}
func (*OffsetNode) isNode()         {}
func (*LimitNode) isNode()          {}
func (*ProjectionNode) isNode()     {}
func (*UpdateNode) isNode()         {}
func (*DeleteNode) isNode()         {}

// Plan wraps the root Node of a built statement.
type Plan struct {
	Root Node
}
