// Package session implements the per-connection statement dispatch loop
// (spec §4.6's state machine, §7), grounded on
// original_source/src/sql/engine/mod.rs's Session::execute.
package session

import (
	"strings"

	"go.uber.org/zap"

	"github.com/quarrydb/quarry/internal/dberr"
	"github.com/quarrydb/quarry/internal/sql/engine"
	"github.com/quarrydb/quarry/internal/sql/executor"
	"github.com/quarrydb/quarry/internal/sql/parser"
	"github.com/quarrydb/quarry/internal/sql/plan"
)

// Session tracks one client's Idle/InTxn(v) state against one Engine. It
// is not safe for concurrent use by multiple goroutines — one Session per
// connection, matching the original's per-connection ServerSession.
type Session struct {
	engine engine.Engine
	txn    engine.Transaction // nil when Idle
	logger *zap.Logger
}

// New returns an Idle Session bound to eng.
func New(eng engine.Engine, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{engine: eng, logger: logger}
}

// InTransaction reports whether the session currently holds an open
// explicit transaction.
func (s *Session) InTransaction() bool { return s.txn != nil }

// Execute runs one SQL statement: BEGIN/COMMIT/ROLLBACK manage s.txn
// directly, EXPLAIN builds a plan without executing it, and every other
// statement runs against the session's open transaction if one exists,
// else against a fresh implicit transaction that auto-commits on success
// and auto-rolls-back on error (spec §7).
func (s *Session) Execute(sql string) (executor.ResultSet, error) {
	stmt, err := parser.Parse(sql)
	if err != nil {
		return executor.ResultSet{}, err
	}

	switch st := stmt.(type) {
	case *parser.BeginStatement:
		if s.txn != nil {
			return executor.ResultSet{}, dberr.Internalf("already in transaction")
		}
		txn, err := s.engine.Begin()
		if err != nil {
			return executor.ResultSet{}, err
		}
		s.txn = txn
		return executor.ResultSet{Kind: executor.KindBegin, Version: txn.Version()}, nil

	case *parser.CommitStatement:
		if s.txn == nil {
			return executor.ResultSet{}, dberr.Internalf("not in transaction")
		}
		txn := s.txn
		s.txn = nil
		version := txn.Version()
		if err := txn.Commit(); err != nil {
			return executor.ResultSet{}, err
		}
		return executor.ResultSet{Kind: executor.KindCommit, Version: version}, nil

	case *parser.RollbackStatement:
		if s.txn == nil {
			return executor.ResultSet{}, dberr.Internalf("not in transaction")
		}
		txn := s.txn
		s.txn = nil
		version := txn.Version()
		if err := txn.Rollback(); err != nil {
			return executor.ResultSet{}, err
		}
		return executor.ResultSet{Kind: executor.KindRollback, Version: version}, nil

	case *parser.ExplainStatement:
		return s.explain(st.Stmt)

	default:
		if s.txn != nil {
			rs, err := planAndExecute(stmt, s.txn)
			if err != nil {
				return executor.ResultSet{}, err
			}
			return rs, nil
		}
		return s.runImplicit(stmt)
	}
}

func (s *Session) explain(inner parser.Statement) (executor.ResultSet, error) {
	if s.txn != nil {
		p, err := plan.New(s.txn).Build(inner)
		if err != nil {
			return executor.ResultSet{}, err
		}
		return executor.ResultSet{Kind: executor.KindExplain, Plan: plan.Render(p.Root)}, nil
	}

	txn, err := s.engine.Begin()
	if err != nil {
		return executor.ResultSet{}, err
	}
	p, err := plan.New(txn).Build(inner)
	if err != nil {
		_ = txn.Rollback()
		return executor.ResultSet{}, err
	}
	if err := txn.Commit(); err != nil {
		return executor.ResultSet{}, err
	}
	return executor.ResultSet{Kind: executor.KindExplain, Plan: plan.Render(p.Root)}, nil
}

func (s *Session) runImplicit(stmt parser.Statement) (executor.ResultSet, error) {
	txn, err := s.engine.Begin()
	if err != nil {
		return executor.ResultSet{}, err
	}
	rs, err := planAndExecute(stmt, txn)
	if err != nil {
		if rbErr := txn.Rollback(); rbErr != nil {
			s.logger.Warn("rollback after failed statement also failed", zap.Error(rbErr))
		}
		return executor.ResultSet{}, err
	}
	if err := txn.Commit(); err != nil {
		return executor.ResultSet{}, err
	}
	return rs, nil
}

func planAndExecute(stmt parser.Statement, txn engine.Transaction) (executor.ResultSet, error) {
	p, err := plan.New(txn).Build(stmt)
	if err != nil {
		return executor.ResultSet{}, err
	}
	return executor.Execute(p.Root, txn)
}

// GetTableNames implements the admin "SHOW TABLES" surface: one name per
// line, using the open transaction's snapshot if there is one.
func (s *Session) GetTableNames() (string, error) {
	if s.txn != nil {
		names, err := s.txn.GetTableNames()
		if err != nil {
			return "", err
		}
		return strings.Join(names, "\n"), nil
	}
	txn, err := s.engine.Begin()
	if err != nil {
		return "", err
	}
	names, err := txn.GetTableNames()
	if err != nil {
		_ = txn.Rollback()
		return "", err
	}
	if err := txn.Commit(); err != nil {
		return "", err
	}
	return strings.Join(names, "\n"), nil
}

// GetTable implements "SHOW TABLE <name>": the table's CREATE TABLE form.
func (s *Session) GetTable(name string) (string, error) {
	if s.txn != nil {
		t, err := engine.MustGetTable(s.txn, name)
		if err != nil {
			return "", err
		}
		return t.String(), nil
	}
	txn, err := s.engine.Begin()
	if err != nil {
		return "", err
	}
	t, err := engine.MustGetTable(txn, name)
	if err != nil {
		_ = txn.Rollback()
		return "", err
	}
	if err := txn.Commit(); err != nil {
		return "", err
	}
	return t.String(), nil
}
