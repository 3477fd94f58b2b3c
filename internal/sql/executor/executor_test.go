package executor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quarrydb/quarry/internal/mvcc"
	"github.com/quarrydb/quarry/internal/sql/engine"
	"github.com/quarrydb/quarry/internal/sql/parser"
	"github.com/quarrydb/quarry/internal/sql/plan"
	"github.com/quarrydb/quarry/internal/sql/types"
	"github.com/quarrydb/quarry/internal/storage"
)

func newTestEngine(t *testing.T) engine.Engine {
	t.Helper()
	return engine.NewKVEngine(mvcc.New(storage.NewMemoryEngine(), nil), nil)
}

// run parses, plans, and executes sql against txn in one step, the way a
// session would for a single statement.
func run(t *testing.T, txn engine.Transaction, sql string) ResultSet {
	t.Helper()
	stmt, err := parser.Parse(sql)
	require.NoError(t, err, sql)
	p, err := plan.New(txn).Build(stmt)
	require.NoError(t, err, sql)
	rs, err := Execute(p.Root, txn)
	require.NoError(t, err, sql)
	return rs
}

func runErr(t *testing.T, txn engine.Transaction, sql string) error {
	t.Helper()
	stmt, err := parser.Parse(sql)
	require.NoError(t, err, sql)
	p, err := plan.New(txn).Build(stmt)
	if err != nil {
		return err
	}
	_, err = Execute(p.Root, txn)
	return err
}

func TestCreateInsertScan(t *testing.T) {
	e := newTestEngine(t)
	txn, err := e.Begin()
	require.NoError(t, err)

	run(t, txn, "create table t (id int primary key, name varchar, age int default 0);")
	rs := run(t, txn, "insert into t (id, name) values (1, 'alice'), (2, 'bob');")
	require.Equal(t, KindInsert, rs.Kind)
	require.Equal(t, 2, rs.Count)

	rs = run(t, txn, "select * from t order by id;")
	require.Equal(t, KindQuery, rs.Kind)
	require.Len(t, rs.Rows, 2)
	require.Equal(t, "alice", rs.Rows[0][1].String_())
	require.Equal(t, "0", rs.Rows[0][2].String_())
}

func TestPrimaryKeyScan(t *testing.T) {
	e := newTestEngine(t)
	txn, err := e.Begin()
	require.NoError(t, err)

	run(t, txn, "create table t (id int primary key, v int);")
	run(t, txn, "insert into t values (1, 10), (2, 20);")

	rs := run(t, txn, "select * from t where id = 2;")
	require.Len(t, rs.Rows, 1)
	require.Equal(t, int64(20), rs.Rows[0][1].I)
}

func TestIndexScan(t *testing.T) {
	e := newTestEngine(t)
	txn, err := e.Begin()
	require.NoError(t, err)

	run(t, txn, "create table t (id int primary key, grp varchar index, v int);")
	run(t, txn, "insert into t values (1, 'a', 10), (2, 'a', 20), (3, 'b', 30);")

	rs := run(t, txn, "select * from t where grp = 'a';")
	require.Len(t, rs.Rows, 2)
}

func TestUpdateAndDelete(t *testing.T) {
	e := newTestEngine(t)
	txn, err := e.Begin()
	require.NoError(t, err)

	run(t, txn, "create table t (id int primary key, v int);")
	run(t, txn, "insert into t values (1, 10), (2, 20);")

	rs := run(t, txn, "update t set v = 99 where id = 1;")
	require.Equal(t, 1, rs.Count)

	rs = run(t, txn, "select * from t where id = 1;")
	require.Equal(t, int64(99), rs.Rows[0][1].I)

	rs = run(t, txn, "delete from t where id = 2;")
	require.Equal(t, 1, rs.Count)

	rs = run(t, txn, "select * from t;")
	require.Len(t, rs.Rows, 1)
}

func TestInsertMissingRequiredColumnFails(t *testing.T) {
	e := newTestEngine(t)
	txn, err := e.Begin()
	require.NoError(t, err)

	run(t, txn, "create table t (id int primary key, v int not null);")
	err = runErr(t, txn, "insert into t (id) values (1);")
	require.Error(t, err)
}

func TestDropTableDeletesRowsAndIndexEntries(t *testing.T) {
	e := newTestEngine(t)
	txn, err := e.Begin()
	require.NoError(t, err)

	run(t, txn, "create table t (id int primary key, grp varchar index);")
	run(t, txn, "insert into t values (1, 'a'), (2, 'a'), (3, 'b');")

	set, err := txn.LoadIndex("t", "grp", types.String("a"))
	require.NoError(t, err)
	require.Len(t, set, 2)

	rs := run(t, txn, "drop table t;")
	require.Equal(t, KindDropTable, rs.Kind)

	_, ok, err := txn.GetTable("t")
	require.NoError(t, err)
	require.False(t, ok)

	run(t, txn, "create table t (id int primary key, grp varchar index);")

	rs = run(t, txn, "select * from t;")
	require.Len(t, rs.Rows, 0, "rows from the dropped table must not resurface")

	set, err = txn.LoadIndex("t", "grp", types.String("a"))
	require.NoError(t, err)
	require.Len(t, set, 0, "index entries from the dropped table must not resurface")

	rs = run(t, txn, "select * from t where grp = 'a';")
	require.Len(t, rs.Rows, 0)
}

func TestDropTableRejectsUnknownTable(t *testing.T) {
	e := newTestEngine(t)
	txn, err := e.Begin()
	require.NoError(t, err)

	err = runErr(t, txn, "drop table bogus;")
	require.Error(t, err)
}

func TestOrderByDescAndLimitOffset(t *testing.T) {
	e := newTestEngine(t)
	txn, err := e.Begin()
	require.NoError(t, err)

	run(t, txn, "create table t (id int primary key, v int);")
	run(t, txn, "insert into t values (1, 5), (2, 1), (3, 9);")

	rs := run(t, txn, "select * from t order by v desc limit 2;")
	require.Len(t, rs.Rows, 2)
	require.Equal(t, int64(9), rs.Rows[0][1].I)
	require.Equal(t, int64(5), rs.Rows[1][1].I)

	rs = run(t, txn, "select * from t order by v asc offset 1;")
	require.Len(t, rs.Rows, 2)
	require.Equal(t, int64(5), rs.Rows[0][1].I)
}
