// Package parser builds an AST from lexer tokens via recursive descent
// (spec §4.6), grounded on original_source/src/sql/parser/{mod,ast}.rs.
package parser

import (
	"fmt"

	"github.com/quarrydb/quarry/internal/sql/types"
)

// OrderDirection is ASC or DESC for one ORDER BY term.
type OrderDirection int

const (
	Asc OrderDirection = iota
	Desc
)

// Column is one column definition inside CREATE TABLE.
type Column struct {
	Name       string
	DataType   types.DataType
	Nullable   *bool
	Default    Expression
	PrimaryKey bool
	Index      bool
}

// JoinType discriminates a FromItem join.
type JoinType int

const (
	JoinCross JoinType = iota
	JoinInner
	JoinLeft
	JoinRight
)

// FromItem is one element of a FROM clause: a base table or a join tree.
type FromItem interface{ isFromItem() }

// FromTable is a single named table reference.
type FromTable struct {
	Name string
}

// FromJoin joins two FromItems, optionally on a predicate.
type FromJoin struct {
	Left      FromItem
	Right     FromItem
	JoinType  JoinType
	Predicate Expression
}

func (FromTable) isFromItem() {}
func (*FromJoin) isFromItem() {}

// SelectItem is one projected expression with an optional alias.
type SelectItem struct {
	Expr  Expression
	Alias string
}

// OrderTerm is one ORDER BY column and direction.
type OrderTerm struct {
	Column    string
	Direction OrderDirection
}

// Statement is the sum type of top-level SQL statements.
type Statement interface{ isStatement() }

type CreateTableStatement struct {
	Name    string
	Columns []Column
}

type DropTableStatement struct {
	Name string
}

type InsertStatement struct {
	Table   string
	Columns []string // nil if not specified
	Values  [][]Expression
}

type SelectStatement struct {
	Select   []SelectItem
	From     FromItem
	Where    Expression
	GroupBy  Expression
	Having   Expression
	OrderBy  []OrderTerm
	Limit    Expression
	Offset   Expression
}

type UpdateStatement struct {
	Table string
	// Set preserves parse order; the parser rejects a column named twice.
	Set   []SetClause
	Where Expression
}

type SetClause struct {
	Column string
	Value  Expression
}

type DeleteStatement struct {
	Table string
	Where Expression
}

type BeginStatement struct{}
type CommitStatement struct{}
type RollbackStatement struct{}

type ExplainStatement struct {
	Stmt Statement
}

func (*CreateTableStatement) isStatement() {}
func (*DropTableStatement) isStatement()   {}
func (*InsertStatement) isStatement()      {}
func (*SelectStatement) isStatement()      {}
func (*UpdateStatement) isStatement()      {}
func (*DeleteStatement) isStatement()      {}
func (*BeginStatement) isStatement()       {}
func (*CommitStatement) isStatement()      {}
func (*RollbackStatement) isStatement()    {}
func (*ExplainStatement) isStatement()     {}

// Expression is the sum type of scalar expressions.
type Expression interface {
	isExpression()
	String() string
}

// FieldExpr references a column by name.
type FieldExpr struct {
	Name string
}

// ConstExpr is a literal constant, already folded to a types.Value.
type ConstExpr struct {
	Value types.Value
}

// OperatorKind discriminates a binary comparison.
type OperatorKind int

const (
	OpEqual OperatorKind = iota
	OpGreaterThan
	OpLessThan
)

func (o OperatorKind) symbol() string {
	switch o {
	case OpEqual:
		return "="
	case OpGreaterThan:
		return ">"
	case OpLessThan:
		return "<"
	default:
		return "?"
	}
}

// OperationExpr is a binary comparison l OP r.
type OperationExpr struct {
	Op    OperatorKind
	Left  Expression
	Right Expression
}

// FunctionExpr is an aggregate call name(field), e.g. count(a).
type FunctionExpr struct {
	Name  string
	Field string
}

func (*FieldExpr) isExpression()     {}
func (*ConstExpr) isExpression()     {}
func (*OperationExpr) isExpression() {}
func (*FunctionExpr) isExpression()  {}

func (f *FieldExpr) String() string { return f.Name }
func (c *ConstExpr) String() string { return c.Value.String_() }
func (o *OperationExpr) String() string {
	return fmt.Sprintf("%s %s %s", o.Left, o.Op.symbol(), o.Right)
}
func (f *FunctionExpr) String() string { return fmt.Sprintf("%s(%s)", f.Name, f.Field) }
