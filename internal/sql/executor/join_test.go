package executor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quarrydb/quarry/internal/sql/engine"
)

func setupJoinTables(t *testing.T, txn engine.Transaction) {
	t.Helper()
	run(t, txn, "create table a (id int primary key, v int);")
	run(t, txn, "create table b (id int primary key, a_id int);")
	run(t, txn, "insert into a values (1, 10), (2, 20), (3, 30);")
	run(t, txn, "insert into b values (1, 1), (2, 1), (3, 2);")
}

func TestHashJoinInner(t *testing.T) {
	e := newTestEngine(t)
	txn, err := e.Begin()
	require.NoError(t, err)
	setupJoinTables(t, txn)

	rs := run(t, txn, "select * from a join b on id = a_id;")
	require.Equal(t, KindQuery, rs.Kind)
	require.Len(t, rs.Rows, 3) // a.1 matches b.1,b.2; a.2 matches b.3
}

func TestHashJoinLeftOuterPadsWithRightColumnCount(t *testing.T) {
	e := newTestEngine(t)
	txn, err := e.Begin()
	require.NoError(t, err)
	setupJoinTables(t, txn)

	// a.id=3 has no matching b row: the outer join must still emit a row
	// padded with exactly len(b's columns) Nulls, not a width derived
	// from any particular right-hand row (which, for a wholly unmatched
	// right side, might not exist at all).
	rs := run(t, txn, "select * from a left join b on id = a_id;")
	require.Equal(t, KindQuery, rs.Kind)
	require.Len(t, rs.Columns, 4) // a.id, a.v, b.id, b.a_id

	var unmatched []int
	for _, row := range rs.Rows {
		if row[0].I == 3 {
			unmatched = append(unmatched, 1)
			require.True(t, row[2].IsNull())
			require.True(t, row[3].IsNull())
		}
	}
	require.Len(t, unmatched, 1)
}

func TestHashJoinLeftOuterWithEmptyRightSide(t *testing.T) {
	e := newTestEngine(t)
	txn, err := e.Begin()
	require.NoError(t, err)
	run(t, txn, "create table a (id int primary key, v int);")
	run(t, txn, "create table b (id int primary key, a_id int);")
	run(t, txn, "insert into a values (1, 10);")
	// b has zero rows: rrows[0] would have panicked in the original.
	// The padding width must still come from b's column list.
	rs := run(t, txn, "select * from a left join b on id = a_id;")
	require.Len(t, rs.Rows, 1)
	require.Len(t, rs.Columns, 4)
	require.True(t, rs.Rows[0][2].IsNull())
	require.True(t, rs.Rows[0][3].IsNull())
}

func TestNestedLoopCrossJoin(t *testing.T) {
	e := newTestEngine(t)
	txn, err := e.Begin()
	require.NoError(t, err)
	run(t, txn, "create table a (id int primary key);")
	run(t, txn, "create table b (id int primary key);")
	run(t, txn, "insert into a values (1), (2);")
	run(t, txn, "insert into b values (10), (20), (30);")

	rs := run(t, txn, "select * from a cross join b;")
	require.Len(t, rs.Rows, 6)
}
