package plan_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/quarrydb/quarry/internal/mvcc"
	"github.com/quarrydb/quarry/internal/sql/engine"
	"github.com/quarrydb/quarry/internal/sql/engine/mocks"
	"github.com/quarrydb/quarry/internal/sql/executor"
	"github.com/quarrydb/quarry/internal/sql/parser"
	"github.com/quarrydb/quarry/internal/sql/plan"
	"github.com/quarrydb/quarry/internal/storage"
)

func newTestTxn(t *testing.T) engine.Transaction {
	t.Helper()
	eng := engine.NewKVEngine(mvcc.New(storage.NewMemoryEngine(), nil), nil)
	txn, err := eng.Begin()
	require.NoError(t, err)
	return txn
}

func buildAndRun(t *testing.T, txn engine.Transaction, sql string) plan.Node {
	t.Helper()
	stmt, err := parser.Parse(sql)
	require.NoError(t, err)
	p, err := plan.New(txn).Build(stmt)
	require.NoError(t, err)
	_, err = executor.Execute(p.Root, txn)
	require.NoError(t, err)
	return p.Root
}

func build(t *testing.T, txn engine.Transaction, sql string) (plan.Node, error) {
	t.Helper()
	stmt, err := parser.Parse(sql)
	require.NoError(t, err)
	p, err := plan.New(txn).Build(stmt)
	if err != nil {
		return nil, err
	}
	return p.Root, nil
}

func TestBuildScanChoosesPrimaryKeyScan(t *testing.T) {
	txn := newTestTxn(t)
	buildAndRun(t, txn, "create table t (id int primary key, v int);")

	root, err := build(t, txn, "select * from t where id = 1;")
	require.NoError(t, err)
	_, ok := root.(*plan.PrimaryKeyScanNode)
	assert.True(t, ok, "expected a PrimaryKeyScanNode, got %T", root)
}

func TestBuildScanChoosesIndexScan(t *testing.T) {
	txn := newTestTxn(t)
	buildAndRun(t, txn, "create table t (id int primary key, grp varchar index);")

	root, err := build(t, txn, "select * from t where grp = 'a';")
	require.NoError(t, err)
	_, ok := root.(*plan.IndexScanNode)
	assert.True(t, ok, "expected an IndexScanNode, got %T", root)
}

func TestBuildScanFallsBackToPlainScanWithoutIndex(t *testing.T) {
	txn := newTestTxn(t)
	buildAndRun(t, txn, "create table t (id int primary key, v int);")

	root, err := build(t, txn, "select * from t where v = 1;")
	require.NoError(t, err)
	_, ok := root.(*plan.ScanNode)
	assert.True(t, ok, "expected a ScanNode, got %T", root)
}

// A real transaction can't be made to fail GetTable with anything but
// "not found", so a mock isolates the planner's error-propagation path
// from a storage-level failure (e.g. a corrupt table record).
func TestBuildScanPropagatesGetTableFailureUnwrapped(t *testing.T) {
	ctrl := gomock.NewController(t)
	txn := mocks.NewMockTransaction(ctrl)
	txn.EXPECT().GetTable("t").Return(nil, false, errors.New("storage: corrupt table record"))

	stmt, err := parser.Parse("select * from t where id = 1;")
	require.NoError(t, err)

	_, err = plan.New(txn).Build(stmt)
	assert.ErrorContains(t, err, "corrupt table record")
}
