package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydb/quarry/internal/sql/types"
)

func TestParseSelectStar(t *testing.T) {
	stmt, err := Parse("select * from t;")
	require.NoError(t, err)
	sel, ok := stmt.(*SelectStatement)
	require.True(t, ok)
	assert.Empty(t, sel.Select)
	assert.Equal(t, FromTable{Name: "t"}, sel.From)
}

func TestParseCreateTable(t *testing.T) {
	sql := `create table tbl1 (
		a int default 100,
		b float not null,
		c varchar null,
		d bool default true
	);`
	stmt, err := Parse(sql)
	require.NoError(t, err)
	ct, ok := stmt.(*CreateTableStatement)
	require.True(t, ok)
	require.Len(t, ct.Columns, 4)
	assert.Equal(t, "a", ct.Columns[0].Name)
	assert.Equal(t, types.Integer_, ct.Columns[0].DataType)
	require.NotNil(t, ct.Columns[1].Nullable)
	assert.False(t, *ct.Columns[1].Nullable)
}

func TestParseCreateTableMissingSemicolonFails(t *testing.T) {
	_, err := Parse(`create table tbl1 (a int)`)
	require.Error(t, err)
}

func TestParseInsertWithColumns(t *testing.T) {
	stmt, err := Parse("insert into tbl2 (c1, c2, c3) values (3, 'a', true),(4, 'b', false);")
	require.NoError(t, err)
	ins, ok := stmt.(*InsertStatement)
	require.True(t, ok)
	assert.Equal(t, []string{"c1", "c2", "c3"}, ins.Columns)
	require.Len(t, ins.Values, 2)
	require.Len(t, ins.Values[0], 3)
}

func TestParseInsertWithoutColumns(t *testing.T) {
	stmt, err := Parse("insert into tbl1 values (1, 2, 3, 'a', true);")
	require.NoError(t, err)
	ins, ok := stmt.(*InsertStatement)
	require.True(t, ok)
	assert.Nil(t, ins.Columns)
}

func TestParseSelectOrderBy(t *testing.T) {
	stmt, err := Parse("select * from tbl1 order by a, b asc, c desc;")
	require.NoError(t, err)
	sel := stmt.(*SelectStatement)
	require.Len(t, sel.OrderBy, 3)
	assert.Equal(t, Asc, sel.OrderBy[0].Direction)
	assert.Equal(t, Desc, sel.OrderBy[2].Direction)
}

func TestParseSelectCrossJoinChain(t *testing.T) {
	stmt, err := Parse("select * from tbl1 cross join tbl2 cross join tbl3;")
	require.NoError(t, err)
	sel := stmt.(*SelectStatement)
	outer, ok := sel.From.(*FromJoin)
	require.True(t, ok)
	assert.Equal(t, JoinCross, outer.JoinType)
	inner, ok := outer.Left.(*FromJoin)
	require.True(t, ok)
	assert.Equal(t, JoinCross, inner.JoinType)
}

func TestParseSelectAggregateHaving(t *testing.T) {
	stmt, err := Parse("select count(a), min(b), max(c) from tbl1 group by a having min = 10;")
	require.NoError(t, err)
	sel := stmt.(*SelectStatement)
	require.Len(t, sel.Select, 3)
	fn, ok := sel.Select[0].Expr.(*FunctionExpr)
	require.True(t, ok)
	assert.Equal(t, "count", fn.Name)
	assert.Equal(t, "a", fn.Field)
	require.NotNil(t, sel.GroupBy)
	require.NotNil(t, sel.Having)
}

func TestParseUpdate(t *testing.T) {
	stmt, err := Parse("update tabl set a = 1, b = 2.0 where c = 'a';")
	require.NoError(t, err)
	upd, ok := stmt.(*UpdateStatement)
	require.True(t, ok)
	require.Len(t, upd.Set, 2)
	assert.Equal(t, "a", upd.Set[0].Column)
	require.NotNil(t, upd.Where)
}

func TestParseUpdateDuplicateColumnFails(t *testing.T) {
	_, err := Parse("update tabl set a = 1, a = 2;")
	require.Error(t, err)
}

func TestParseRightJoinRejectsDottedColumnNames(t *testing.T) {
	stmt, err := Parse("select * from a right join b on a.x = b.y;")
	require.Error(t, err) // "a.x" is not a valid identifier in this grammar (no dotted names)
	_ = stmt
}

func TestParseRightJoinSwap(t *testing.T) {
	stmt, err := Parse("select * from a right join b on x = y;")
	require.NoError(t, err)
	sel := stmt.(*SelectStatement)
	join, ok := sel.From.(*FromJoin)
	require.True(t, ok)
	assert.Equal(t, JoinLeft, join.JoinType)
	leftTable, ok := join.Left.(FromTable)
	require.True(t, ok)
	assert.Equal(t, "b", leftTable.Name)
	rightTable, ok := join.Right.(FromTable)
	require.True(t, ok)
	assert.Equal(t, "a", rightTable.Name)
	op, ok := join.Predicate.(*OperationExpr)
	require.True(t, ok)
	lf, ok := op.Left.(*FieldExpr)
	require.True(t, ok)
	assert.Equal(t, "y", lf.Name)
	rf, ok := op.Right.(*FieldExpr)
	require.True(t, ok)
	assert.Equal(t, "x", rf.Name)
}

func TestParseExplainCannotNest(t *testing.T) {
	_, err := Parse("explain explain select * from t;")
	require.Error(t, err)
}

func TestParseIntegerLiteralStaysInteger(t *testing.T) {
	stmt, err := Parse("select * from t where a = 1;")
	require.NoError(t, err)
	sel := stmt.(*SelectStatement)
	op, ok := sel.Where.(*OperationExpr)
	require.True(t, ok)
	c, ok := op.Right.(*ConstExpr)
	require.True(t, ok)
	assert.Equal(t, types.Integer(1), c.Value)
}

func TestParseBeginCommitRollback(t *testing.T) {
	for _, tc := range []struct {
		sql string
	}{{"begin;"}, {"commit;"}, {"rollback;"}} {
		_, err := Parse(tc.sql)
		require.NoError(t, err, tc.sql)
	}
}
