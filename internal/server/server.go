// Package server implements the line-framed TCP SQL listener and admin
// HTTP surface (spec §6), grounded on
// original_source/src/bin/server.rs's ServerSession/SqlRequest.
package server

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/quarrydb/quarry/internal/session"
	"github.com/quarrydb/quarry/internal/sql/engine"
	"github.com/quarrydb/quarry/internal/sql/executor"
)

// The admin HTTP surface serves /healthz and /metrics off its own
// registry (not the global default one), keeping a Server instance
// self-contained and safe to construct more than once in tests.

// responseEnd is the sentinel frame marking the end of one request's
// output, letting a line-oriented client know when to stop reading.
const responseEnd = "!!!end!!!"

// Compactor is the subset of *storage.DiskEngine the admin surface needs
// to offer a manual compaction trigger. Compaction is never automatic
// (spec §4.2); this is the operator's way to ask for it.
type Compactor interface {
	Compact() error
}

// Server owns the SQL listener and the admin HTTP surface for one engine.
type Server struct {
	engine     engine.Engine
	compactor  Compactor // nil if the backing storage can't compact
	logger     *zap.Logger
	listenAddr string
	adminAddr  string
	registry   *prometheus.Registry

	connsAccepted prometheus.Counter
	stmtsExecuted prometheus.Counter
	stmtErrors    prometheus.Counter
}

// New builds a Server. listenAddr serves the SQL protocol, adminAddr
// serves /healthz, /metrics, and /compact. c may be nil if the backing
// storage engine doesn't support manual compaction (e.g. in tests using
// an in-memory engine).
func New(eng engine.Engine, c Compactor, listenAddr, adminAddr string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	reg := prometheus.NewRegistry()
	s := &Server{
		engine:     eng,
		compactor:  c,
		logger:     logger,
		listenAddr: listenAddr,
		adminAddr:  adminAddr,
		connsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quarry_connections_accepted_total",
			Help: "Total TCP connections accepted by the SQL listener.",
		}),
		stmtsExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quarry_statements_executed_total",
			Help: "Total statements executed successfully.",
		}),
		stmtErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quarry_statement_errors_total",
			Help: "Total statements that returned an error.",
		}),
	}
	reg.MustRegister(s.connsAccepted, s.stmtsExecuted, s.stmtErrors)
	s.registry = reg
	return s
}

// Run starts the SQL listener and the admin HTTP server, blocking until
// ctx is canceled or either fails.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return err
	}
	s.logger.Info("sql listener started", zap.String("addr", s.listenAddr))

	adminServer := &http.Server{Addr: s.adminAddr, Handler: s.adminRouter()}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		<-gctx.Done()
		_ = listener.Close()
		return adminServer.Close()
	})
	group.Go(func() error {
		s.logger.Info("admin http surface started", zap.String("addr", s.adminAddr))
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		return s.acceptLoop(gctx, listener)
	})
	return group.Wait()
}

func (s *Server) acceptLoop(ctx context.Context, listener net.Listener) error {
	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				s.logger.Warn("accept failed", zap.Error(err))
				continue
			}
		}
		s.connsAccepted.Inc()
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	sess := session.New(s.engine, s.logger)

	reader := bufio.NewScanner(conn)
	writer := bufio.NewWriter(conn)
	for reader.Scan() {
		line := reader.Text()
		if line == "" {
			continue
		}
		s.handleLine(sess, line, writer)
		if err := writer.Flush(); err != nil {
			s.logger.Warn("write to client failed", zap.Error(err))
			return
		}
	}
	if sess.InTransaction() {
		if _, err := sess.Execute("rollback;"); err != nil {
			s.logger.Warn("implicit rollback on disconnect failed", zap.Error(err))
		}
	}
}

func (s *Server) handleLine(sess *session.Session, line string, w *bufio.Writer) {
	defer func() {
		if r := recover(); r != nil {
			s.stmtErrors.Inc()
			s.logger.Error("panic while handling request", zap.Any("panic", r))
			fmt.Fprintf(w, "internal error: %v\n", r)
			fmt.Fprintln(w, responseEnd)
		}
	}()
	req := parseRequest(line)

	var response string
	var err error
	switch req.kind {
	case requestListTables:
		response, err = sess.GetTableNames()
	case requestTableInfo:
		response, err = sess.GetTable(req.tableName)
	default:
		var rs executor.ResultSet
		rs, err = sess.Execute(req.sql)
		if err == nil {
			response = rs.Render()
		}
	}

	if err != nil {
		s.stmtErrors.Inc()
		response = err.Error()
	} else {
		s.stmtsExecuted.Inc()
	}

	fmt.Fprintln(w, response)
	fmt.Fprintln(w, responseEnd)
}

func (s *Server) adminRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{AllowedOrigins: []string{"*"}, AllowedMethods: []string{"GET", "POST"}}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.Post("/compact", s.handleCompact)
	return r
}

// handleCompact runs compaction synchronously and reports the outcome.
// Compaction is never triggered automatically; this is the only way it
// happens.
func (s *Server) handleCompact(w http.ResponseWriter, r *http.Request) {
	if s.compactor == nil {
		http.Error(w, "compaction not supported by this storage engine", http.StatusNotImplemented)
		return
	}
	s.logger.Info("manual compaction requested")
	if err := s.compactor.Compact(); err != nil {
		s.logger.Warn("compaction failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
