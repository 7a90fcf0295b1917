package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/telkom-contracts/internal/common"
)

type Config struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ConfigFrom maps the application store section onto the repository config.
func ConfigFrom(c common.StoreConfig) Config {
	return Config{
		DSN:             c.DSN,
		MaxConns:        c.MaxConns,
		MaxConnLifetime: 30 * time.Minute,
		MaxConnIdleTime: 5 * time.Minute,
		DialTimeout:     c.DialTimeout,
	}
}

// Store is an opened extraction-run database, either SQLite or PostgreSQL.
type Store struct {
	drv     *entsql.Driver
	dialect string
	pool    *pgxpool.Pool
	logger  *slog.Logger
}

// Dialect returns the ent dialect name of the backend.
func (s *Store) Dialect() string { return s.dialect }

// ParseDSN splits a store DSN into an ent dialect and the driver-level DSN.
// Accepted forms: "postgres://…", "postgresql://…", "sqlite:<path>", "file:<path>" and bare *.db paths.
func ParseDSN(dsn string) (string, string, error) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case dsn == "":
		return "", "", fmt.Errorf("empty store dsn")
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return dialect.Postgres, dsn, nil
	case strings.HasPrefix(dsn, "sqlite:"):
		return dialect.SQLite, strings.TrimPrefix(strings.TrimPrefix(dsn, "sqlite:"), "//"), nil
	case strings.HasPrefix(dsn, "file:"), strings.HasSuffix(dsn, ".db"), strings.HasSuffix(dsn, ".sqlite"):
		return dialect.SQLite, dsn, nil
	}
	return "", "", fmt.Errorf("unsupported store dsn %q", dsn)
}

// Open connects to the store named by cfg.DSN, wraps it for ent, and creates the schema.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dial, dsn, err := ParseDSN(cfg.DSN)
	if err != nil {
		return nil, err
	}
	logger.Info("connecting to database", "dialect", dial)

	var store *Store
	switch dial {
	case dialect.Postgres:
		store, err = openPostgres(ctx, cfg, dsn, logger)
	default:
		store, err = openSQLite(dsn, logger)
	}
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}
	logger.Info("successfully connected to database", "dialect", dial)
	return store, nil
}

func openPostgres(ctx context.Context, cfg Config, dsn string, logger *slog.Logger) (*Store, error) {
	pc, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "telkom-contracts"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprint(cfg.StatementTimeout.Milliseconds())
	}

	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, err
	}

	// Wrap pool as *sql.DB for Ent
	db := stdlib.OpenDBFromPool(pool)
	return &Store{
		drv:     entsql.OpenDB(dialect.Postgres, db),
		dialect: dialect.Postgres,
		pool:    pool,
		logger:  logger,
	}, nil
}

func openSQLite(path string, logger *slog.Logger) (*Store, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// single writer
	db.SetMaxOpenConns(1)
	return &Store{
		drv:     entsql.OpenDB(dialect.SQLite, db),
		dialect: dialect.SQLite,
		logger:  logger,
	}, nil
}

var schemaDDL = map[string][]string{
	dialect.SQLite: {
		`CREATE TABLE IF NOT EXISTS extraction_runs (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			content_hash TEXT NOT NULL,
			contract_number TEXT,
			customer_name TEXT,
			payment_method TEXT NOT NULL,
			status TEXT NOT NULL,
			confidence_score REAL NOT NULL DEFAULT 0,
			processing_ms INTEGER NOT NULL DEFAULT 0,
			record TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS extraction_runs_content_hash ON extraction_runs (content_hash)`,
		`CREATE INDEX IF NOT EXISTS extraction_runs_created_at ON extraction_runs (created_at)`,
	},
	dialect.Postgres: {
		`CREATE TABLE IF NOT EXISTS extraction_runs (
			id UUID PRIMARY KEY,
			source TEXT NOT NULL,
			content_hash TEXT NOT NULL,
			contract_number TEXT,
			customer_name TEXT,
			payment_method TEXT NOT NULL,
			status TEXT NOT NULL,
			confidence_score DOUBLE PRECISION NOT NULL DEFAULT 0,
			processing_ms BIGINT NOT NULL DEFAULT 0,
			record JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS extraction_runs_content_hash ON extraction_runs (content_hash)`,
		`CREATE INDEX IF NOT EXISTS extraction_runs_created_at ON extraction_runs (created_at)`,
	},
}

// Migrate creates the extraction_runs table and its indexes when missing.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schemaDDL[s.dialect] {
		if err := s.drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	s.logger.Debug("store.migrate.ok", "dialect", s.dialect)
	return nil
}

// Close closes the database connections gracefully
func (s *Store) Close() {
	if s == nil {
		return
	}
	s.logger.Info("closing database connections")
	if err := s.drv.Close(); err != nil {
		s.logger.Error("failed to close ent driver", "error", err)
	}
	if s.pool != nil {
		s.pool.Close()
	}
	s.logger.Info("database connections closed")
}

// HealthCheck pings the underlying database.
func (s *Store) HealthCheck(ctx context.Context, timeout time.Duration) error {
	s.logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if s.pool != nil {
		if err := s.pool.Ping(ctx); err != nil {
			return err
		}
	} else if err := s.drv.DB().PingContext(ctx); err != nil {
		return err
	}
	s.logger.Debug("database ping successful")
	return nil
}
