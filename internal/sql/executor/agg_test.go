package executor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAggregateGroupByWithNullOwnGroup(t *testing.T) {
	e := newTestEngine(t)
	txn, err := e.Begin()
	require.NoError(t, err)

	run(t, txn, "create table t (id int primary key, grp varchar null, v int);")
	run(t, txn, "insert into t values (1, 'a', 10), (2, 'a', 20), (3, null, 5), (4, 'b', 30), (5, null, 7);")

	rs := run(t, txn, "select grp, count(v), avg(v) from t group by grp order by avg;")
	require.Equal(t, KindQuery, rs.Kind)
	require.Len(t, rs.Rows, 3)
	require.Equal(t, []string{"grp", "count", "avg"}, rs.Columns)

	// ORDER BY avg: the Null group (5,7 -> avg 6) has the lowest average,
	// then a (avg 15), then b (avg 30).
	require.True(t, rs.Rows[0][0].IsNull())
	require.Equal(t, int64(2), rs.Rows[0][1].I)
}

func TestAggregateNoGroupByIsOneImplicitGroup(t *testing.T) {
	e := newTestEngine(t)
	txn, err := e.Begin()
	require.NoError(t, err)

	run(t, txn, "create table t (id int primary key, v int);")
	run(t, txn, "insert into t values (1, 10), (2, 20), (3, 30);")

	rs := run(t, txn, "select count(v), sum(v), min(v), max(v) from t;")
	require.Len(t, rs.Rows, 1)
	require.Equal(t, int64(3), rs.Rows[0][0].I)
	require.Equal(t, float64(60), rs.Rows[0][1].F)
	require.Equal(t, int64(10), rs.Rows[0][2].I)
	require.Equal(t, int64(30), rs.Rows[0][3].I)
}

func TestAggregateAllNullColumnYieldsNullSumAvg(t *testing.T) {
	e := newTestEngine(t)
	txn, err := e.Begin()
	require.NoError(t, err)

	run(t, txn, "create table t (id int primary key, v int null);")
	run(t, txn, "insert into t values (1, null), (2, null);")

	rs := run(t, txn, "select count(v), sum(v), avg(v) from t;")
	require.Equal(t, int64(0), rs.Rows[0][0].I)
	require.True(t, rs.Rows[0][1].IsNull())
	require.True(t, rs.Rows[0][2].IsNull())
}

func TestAggregateHavingFiltersGroups(t *testing.T) {
	e := newTestEngine(t)
	txn, err := e.Begin()
	require.NoError(t, err)

	run(t, txn, "create table t (id int primary key, grp varchar, v int);")
	run(t, txn, "insert into t values (1, 'a', 10), (2, 'a', 20), (3, 'b', 1);")

	rs := run(t, txn, "select grp, min(v) from t group by grp having min = 10;")
	require.Len(t, rs.Rows, 1)
	require.Equal(t, "a", rs.Rows[0][0].S)
}
