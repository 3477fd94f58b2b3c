package session

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
	"github.com/quarrydb/quarry/internal/storage"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	eng := engine.NewKVEngine(mvcc.New(storage.NewMemoryEngine(), nil), nil)
	return New(eng, nil)
}

func TestImplicitStatementAutoCommits(t *testing.T) {
	s := newTestSession(t)
	rs, err := s.Execute("create table t (id int primary key, name varchar);")
	require.NoError(t, err)
	assert.Equal(t, executor.KindCreateTable, rs.Kind)
	assert.False(t, s.InTransaction())

	_, err = s.Execute("insert into t values (1, 'a');")
	require.NoError(t, err)

	rs, err = s.Execute("select * from t;")
	require.NoError(t, err)
	assert.Len(t, rs.Rows, 1)
}

func TestImplicitStatementRollsBackOnError(t *testing.T) {
	s := newTestSession(t)
	_, err := s.Execute("create table t (id int primary key, name varchar);")
	require.NoError(t, err)

	_, err = s.Execute("insert into bogus values (1);")
	assert.Error(t, err)
	assert.False(t, s.InTransaction())
}

func TestBeginCommitRoundTrip(t *testing.T) {
	s := newTestSession(t)
	_, err := s.Execute("create table t (id int primary key);")
	require.NoError(t, err)

	rs, err := s.Execute("begin;")
	require.NoError(t, err)
	assert.Equal(t, executor.KindBegin, rs.Kind)
	assert.True(t, s.InTransaction())

	_, err = s.Execute("insert into t values (1);")
	require.NoError(t, err)

	rs, err = s.Execute("commit;")
	require.NoError(t, err)
	assert.Equal(t, executor.KindCommit, rs.Kind)
	assert.False(t, s.InTransaction())
}

func TestDoubleBeginIsRejected(t *testing.T) {
	s := newTestSession(t)
	_, err := s.Execute("begin;")
	require.NoError(t, err)

	_, err = s.Execute("begin;")
	assert.Error(t, err)
}

func TestCommitWithoutBeginIsRejected(t *testing.T) {
	s := newTestSession(t)
	_, err := s.Execute("commit;")
	assert.Error(t, err)
}

func TestRollbackDiscardsUncommittedWrites(t *testing.T) {
	s := newTestSession(t)
	_, err := s.Execute("create table t (id int primary key);")
	require.NoError(t, err)

	_, err = s.Execute("begin;")
	require.NoError(t, err)
	_, err = s.Execute("insert into t values (1);")
	require.NoError(t, err)
	_, err = s.Execute("rollback;")
	require.NoError(t, err)
	assert.False(t, s.InTransaction())

	rs, err := s.Execute("select * from t;")
	require.NoError(t, err)
	assert.Len(t, rs.Rows, 0)
}

func TestExplainDoesNotExecute(t *testing.T) {
	s := newTestSession(t)
	_, err := s.Execute("create table t (id int primary key);")
	require.NoError(t, err)

	rs, err := s.Execute("explain insert into t values (1);")
	require.NoError(t, err)
	assert.Equal(t, executor.KindExplain, rs.Kind)
	assert.NotEmpty(t, rs.Plan)

	rs, err = s.Execute("select * from t;")
	require.NoError(t, err)
	assert.Len(t, rs.Rows, 0)
}

// A real storage engine has no way to make Begin itself fail, so this
// isolates the session's error path with a mock of the Engine interface.
func TestImplicitStatementPropagatesBeginFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	eng := mocks.NewMockEngine(ctrl)
	eng.EXPECT().Begin().Return(nil, errors.New("storage: lock held by another process"))

	s := New(eng, nil)
	_, err := s.Execute("select * from t;")
	assert.ErrorContains(t, err, "lock held by another process")
	assert.False(t, s.InTransaction())
}

func TestBeginFailureLeavesSessionIdle(t *testing.T) {
	ctrl := gomock.NewController(t)
	eng := mocks.NewMockEngine(ctrl)
	eng.EXPECT().Begin().Return(nil, errors.New("storage: disk full"))

	s := New(eng, nil)
	_, err := s.Execute("begin;")
	assert.Error(t, err)
	assert.False(t, s.InTransaction())
}

func TestGetTableNamesAndGetTable(t *testing.T) {
	s := newTestSession(t)
	_, err := s.Execute("create table t (id int primary key);")
	require.NoError(t, err)

	names, err := s.GetTableNames()
	require.NoError(t, err)
	assert.Equal(t, "t", names)

	info, err := s.GetTable("t")
	require.NoError(t, err)
	assert.Contains(t, info, "t")
}
