package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kozaktomas/immich-tools/internal/config"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Pool holds the single database connection of a command run.
type Pool struct {
	db *sql.DB
}

// New prepares a pool for the Immich database without connecting.
// The first Ping or query dials the server.
func New(cfg *config.DatabaseConfig) (*Pool, error) {
	if cfg == nil || cfg.Host == "" {
		return nil, errors.New("database host is required")
	}
	return newPool(cfg.DSN())
}

// NewPool opens the Immich database and verifies the connection.
func NewPool(ctx context.Context, cfg *config.DatabaseConfig) (*Pool, error) {
	if cfg == nil || cfg.Host == "" {
		return nil, errors.New("database host is required")
	}
	return Open(ctx, cfg.DSN())
}

// Open connects using a postgres:// URL or key=value DSN.
func Open(ctx context.Context, dsn string) (*Pool, error) {
	p, err := newPool(dsn)
	if err != nil {
		return nil, err
	}
	if err := p.Ping(ctx); err != nil {
		p.db.Close()
		return nil, err
	}
	return p, nil
}

func newPool(dsn string) (*Pool, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Commands run sequentially; one connection is all they need.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	return &Pool{db: db}, nil
}

// Ping verifies the connection is alive.
func (p *Pool) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// DB returns the underlying sql.DB for direct access.
func (p *Pool) DB() *sql.DB {
	return p.db
}

// Close closes the connection pool.
func (p *Pool) Close() error {
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			return fmt.Errorf("closing database connection: %w", err)
		}
	}
	return nil
}

// QueryRow executes a query that returns a single row.
func (p *Pool) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return p.db.QueryRowContext(ctx, query, args...)
}

// Query executes a query that returns rows.
func (p *Pool) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	return rows, nil
}

// Gorm wraps the pool's connection in a gorm session. No new connection is opened.
func (p *Pool) Gorm(logger *zap.Logger) (*gorm.DB, error) {
	return openGorm(p.db, logger, false)
}

func openGorm(db *sql.DB, logger *zap.Logger, dryRun bool) (*gorm.DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: gormlogger.New(zapWriter{logger.Sugar()}, gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		DryRun:               dryRun,
		DisableAutomaticPing: dryRun,
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm session: %w", err)
	}
	return gdb, nil
}

// zapWriter routes gorm's log output to zap.
type zapWriter struct {
	l *zap.SugaredLogger
}

func (w zapWriter) Printf(format string, args ...any) {
	w.l.Debugf(format, args...)
}
