package adapter

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/uber-go/tally"
)

// Session is one HiveServer2 connection with the dialect rules applied.
// Every call is a single blocking round trip; a Session is not safe for
// concurrent use. Callers wanting concurrency open several sessions.
type Session struct {
	*Introspector

	runner     Runner
	translator *Translator
	metrics    *Metrics
	cfg        Config
	logger     *log.Entry
}

type options struct {
	scope tally.Scope
}

// Option configures a Session.
type Option func(*options)

// WithScope reports session metrics under scope.
func WithScope(scope tally.Scope) Option {
	return func(o *options) {
		o.scope = scope
	}
}

// Open validates cfg, connects to HiveServer2, selects the database and
// makes sure the dual table exists. Configuration errors are returned
// before any connection is attempted.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	runner, err := dial(ctx, cfg.ConnParams())
	if err != nil {
		return nil, newRemoteExecutionError("", errors.Wrapf(err, "connect to %s", cfg.Host))
	}
	s, err := newSession(ctx, cfg, runner, opts...)
	if err != nil {
		runner.Close()
		return nil, err
	}
	return s, nil
}

// New is Open over an existing Runner. The Session owns runner once the
// configuration is valid: it is closed by Session.Close, or before New
// returns if selecting the database or creating dual fails.
func New(ctx context.Context, cfg Config, runner Runner, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s, err := newSession(ctx, cfg, runner, opts...)
	if err != nil {
		runner.Close()
		return nil, err
	}
	return s, nil
}

func newSession(ctx context.Context, cfg Config, runner Runner, opts ...Option) (*Session, error) {
	o := options{scope: tally.NoopScope}
	for _, opt := range opts {
		opt(&o)
	}
	s := &Session{
		runner:     runner,
		translator: NewTranslator(),
		metrics:    NewMetrics(o.scope),
		cfg:        cfg,
		logger: log.WithFields(log.Fields{
			"host":     cfg.Host,
			"database": cfg.Database,
		}),
	}
	s.Introspector = NewIntrospector(s)

	if err := s.Exec(ctx, s.translator.Use(cfg.Database)); err != nil {
		return nil, err
	}
	if err := s.ensureDual(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// ensureDual creates and fills dual when the database has none.
func (s *Session) ensureDual(ctx context.Context) error {
	exists, err := s.TableExists(ctx, DualTable)
	if err != nil || exists {
		return err
	}
	s.logger.WithField("seed", s.cfg.DualSeedPath).Info("creating dual table")
	for _, stmt := range s.translator.dualBootstrap(s.cfg.DualSeedPath) {
		if err := s.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	if s.cfg.DualSeedPath != "" {
		res, err := s.Query(ctx, s.translator.dualCheck())
		if err != nil {
			return err
		}
		if res.Len() == 0 {
			s.logger.WithField("seed", s.cfg.DualSeedPath).Warn("dual seed file has no rows")
			if err := s.Exec(ctx, s.translator.dualFill()); err != nil {
				return err
			}
		}
	}
	s.metrics.DualCreated.Inc(1)
	return nil
}

// Translator returns the statement translator of the session.
func (s *Session) Translator() *Translator {
	return s.translator
}

// Exec runs a statement that returns no rows.
func (s *Session) Exec(ctx context.Context, query string) error {
	start := time.Now()
	err := s.runner.Exec(ctx, query)
	s.metrics.Latency.Record(time.Since(start))
	if err != nil {
		s.metrics.ExecFail.Inc(1)
		s.logger.WithError(err).WithField("query", query).Warn("exec failed")
		return newRemoteExecutionError(query, err)
	}
	s.metrics.Exec.Inc(1)
	s.logger.WithField("query", query).Debug("exec")
	return nil
}

// Query runs a statement and returns all of its rows.
func (s *Session) Query(ctx context.Context, query string) (*Result, error) {
	start := time.Now()
	res, err := s.runner.Query(ctx, query)
	s.metrics.Latency.Record(time.Since(start))
	if err != nil {
		s.metrics.QueryFail.Inc(1)
		s.logger.WithError(err).WithField("query", query).Warn("query failed")
		return nil, newRemoteExecutionError(query, err)
	}
	s.metrics.Query.Inc(1)
	s.logger.WithFields(log.Fields{"query": query, "rows": res.Len()}).Debug("query")
	return res, nil
}

// Insert runs INSERT INTO TABLE ... SELECT ... FROM dual.
func (s *Session) Insert(ctx context.Context, stmt InsertStatement) error {
	sql, err := s.translator.Insert(stmt)
	if err != nil {
		return err
	}
	return s.Exec(ctx, sql)
}

// Update always fails with ErrUnsupportedStatement.
func (s *Session) Update(ctx context.Context, stmt UpdateStatement) error {
	_, err := s.translator.Update(stmt)
	return err
}

// Delete always fails with ErrUnsupportedStatement.
func (s *Session) Delete(ctx context.Context, stmt DeleteStatement) error {
	_, err := s.translator.Delete(stmt)
	return err
}

// Begin always fails: Hive has no transactions.
func (s *Session) Begin(ctx context.Context) error {
	return errors.Wrap(ErrUnsupportedStatement, "BEGIN")
}

func (s *Session) CreateTable(ctx context.Context, def TableDefinition) error {
	sql, err := s.translator.CreateTable(def)
	if err != nil {
		return err
	}
	return s.Exec(ctx, sql)
}

func (s *Session) AddColumn(ctx context.Context, table string, def ColumnDefinition) error {
	sql, err := s.translator.AddColumn(table, def)
	if err != nil {
		return err
	}
	return s.Exec(ctx, sql)
}

func (s *Session) ChangeColumn(ctx context.Context, table, oldName string, def ColumnDefinition) error {
	sql, err := s.translator.ChangeColumn(table, oldName, def)
	if err != nil {
		return err
	}
	return s.Exec(ctx, sql)
}

func (s *Session) RenameTable(ctx context.Context, from, to string) error {
	return s.Exec(ctx, s.translator.RenameTable(from, to))
}

func (s *Session) DropTable(ctx context.Context, name string, ifExists bool) error {
	return s.Exec(ctx, s.translator.DropTable(name, ifExists))
}

func (s *Session) TruncateTable(ctx context.Context, name string) error {
	return s.Exec(ctx, s.translator.TruncateTable(name))
}

func (s *Session) CreateIndex(ctx context.Context, def IndexDefinition) error {
	return s.Exec(ctx, s.translator.CreateIndex(def))
}

func (s *Session) DropIndex(ctx context.Context, name, table string) error {
	return s.Exec(ctx, s.translator.DropIndex(name, table))
}

// Close closes the connection.
func (s *Session) Close() error {
	return s.runner.Close()
}
