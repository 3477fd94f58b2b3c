// Package executor pulls rows through a plan tree (spec §4.6), grounded
// on original_source/src/sql/executor/{mod,join}.rs. Node dispatch uses a
// Go type switch instead of Rust's boxed trait objects — the equivalent
// the design notes call out as interchangeable.
package executor

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/quarrydb/quarry/internal/dberr"
	"github.com/quarrydb/quarry/internal/sql/engine"
	"github.com/quarrydb/quarry/internal/sql/plan"
	"github.com/quarrydb/quarry/internal/sql/types"
)

// Kind discriminates the ResultSet union.
type Kind int

const (
	KindCreateTable Kind = iota
	KindDropTable
	KindInsert
	KindQuery
	KindUpdate
	KindDelete
	KindBegin
	KindCommit
	KindRollback
	KindExplain
)

// ResultSet is the executor's output: DDL/DML variants carry a count,
// query variants carry columns and rows.
type ResultSet struct {
	Kind      Kind
	TableName string
	Count     int
	Columns   []string
	Rows      []types.Row
	Version   uint64
	Plan      string
}

// Render produces the free-text client-facing form (spec §6): a
// go-pretty box for query results, one-line summaries otherwise.
func (r ResultSet) Render() string {
	switch r.Kind {
	case KindCreateTable:
		return "CREATE TABLE " + r.TableName
	case KindDropTable:
		return "DROP TABLE " + r.TableName
	case KindInsert:
		return "INSERT " + strconv.Itoa(r.Count) + " rows"
	case KindUpdate:
		return "UPDATE " + strconv.Itoa(r.Count) + " rows"
	case KindDelete:
		return "DELETE " + strconv.Itoa(r.Count) + " rows"
	case KindBegin:
		return "TRANSACTION " + strconv.FormatUint(r.Version, 10) + " BEGIN"
	case KindCommit:
		return "TRANSACTION " + strconv.FormatUint(r.Version, 10) + " COMMIT"
	case KindRollback:
		return "TRANSACTION " + strconv.FormatUint(r.Version, 10) + " ROLLBACK"
	case KindExplain:
		return r.Plan
	case KindQuery:
		return r.renderQuery()
	default:
		return ""
	}
}

func (r ResultSet) renderQuery() string {
	t := table.NewWriter()
	header := make(table.Row, len(r.Columns))
	for i, c := range r.Columns {
		header[i] = c
	}
	t.AppendHeader(header)
	for _, row := range r.Rows {
		rendered := make(table.Row, len(row))
		for i, v := range row {
			rendered[i] = v.String_()
		}
		t.AppendRow(rendered)
	}
	t.AppendFooter(table.Row{strconv.Itoa(len(r.Rows)) + " rows in set"})
	return t.Render()
}

// Execute recursively pulls node's result, dispatching on its concrete
// plan.Node type.
func Execute(node plan.Node, txn engine.Transaction) (ResultSet, error) {
	switch n := node.(type) {
	case *plan.CreateTableNode:
		return executeCreateTable(n, txn)
	case *plan.DropTableNode:
		return executeDropTable(n, txn)
	case *plan.InsertNode:
		return executeInsert(n, txn)
	case *plan.ScanNode:
		return executeScan(n, txn)
	case *plan.PrimaryKeyScanNode:
		return executePrimaryKeyScan(n, txn)
	case *plan.IndexScanNode:
		return executeIndexScan(n, txn)
	case *plan.NestedLoopJoinNode:
		return executeNestedLoopJoin(n, txn)
	case *plan.HashJoinNode:
		return executeHashJoin(n, txn)
	case *plan.AggregateNode:
		return executeAggregate(n, txn)
	case *plan.FilterNode:
		return executeFilter(n, txn)
	case *plan.OrderNode:
		return executeOrder(n, txn)
	case *plan.OffsetNode:
		return executeOffset(n, txn)
	case *plan.LimitNode:
		return executeLimit(n, txn)
	case *plan.ProjectionNode:
		return executeProjection(n, txn)
	case *plan.UpdateNode:
		return executeUpdate(n, txn)
	case *plan.DeleteNode:
		return executeDelete(n, txn)
	default:
		return ResultSet{}, dberr.Internalf("unknown plan node")
	}
}

func columnNames(t *types.Table) []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

func indexOf(cols []string, name string) int {
	for i, c := range cols {
		if c == name {
			return i
		}
	}
	return -1
}
