package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/XSAM/otelsql"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	_ "modernc.org/sqlite"

	"paperapi/internal/config"
	"paperapi/internal/database/migration"
)

var sqlOpen = sql.Open

// ParseURL maps an ORM-style connection URL to a registered driver name and its DSN.
//
//	sqlite:///relative/path.db   -> sqlite, relative/path.db
//	sqlite:////absolute/path.db  -> sqlite, /absolute/path.db
//	sqlite:// or sqlite:///:memory: -> sqlite, private shared-cache in-memory database
//	postgresql[+driver]://...    -> pgx, postgres://...
func ParseURL(raw string) (driverName, dsn string, err error) {
	raw = strings.TrimSpace(raw)
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok || scheme == "" {
		return "", "", fmt.Errorf("invalid database url: missing scheme")
	}
	dialect, _, _ := strings.Cut(strings.ToLower(scheme), "+")

	switch dialect {
	case "sqlite":
		dsn, err := sqliteDSN(rest)
		if err != nil {
			return "", "", err
		}
		return migration.DriverSQLite, dsn, nil
	case "postgres", "postgresql":
		u, err := url.Parse("postgres://" + rest)
		if err != nil {
			return "", "", fmt.Errorf("invalid database url: %w", redact(err))
		}
		return migration.DriverPostgres, u.String(), nil
	default:
		return "", "", fmt.Errorf("unsupported database url scheme %q", scheme)
	}
}

func sqliteDSN(rest string) (string, error) {
	path, rawQuery, _ := strings.Cut(rest, "?")
	params, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "", fmt.Errorf("invalid database url query: %w", err)
	}
	params.Add("_pragma", "busy_timeout(5000)")
	params.Set("_time_format", "sqlite")

	path = strings.TrimPrefix(path, "/")
	if path == "" || path == ":memory:" {
		// Every pooled connection must see the same in-memory database.
		path = "file:mem-" + uuid.NewString()
		params.Set("mode", "memory")
		params.Set("cache", "shared")
	}
	return path + "?" + params.Encode(), nil
}

// redact drops the parsed URL from url.Error so credentials never reach logs.
func redact(err error) error {
	if ue, ok := err.(*url.Error); ok {
		return ue.Err
	}
	return err
}

// Engine is the process-wide connection factory. It is built once at start and
// is read-only afterwards; sessions are obtained from it per unit of work.
type Engine struct {
	db  *sqlx.DB
	loc *time.Location
}

// Open builds an Engine for the configured URL.
// It does not connect: an unreachable store is reported by the first InitDB or GetDB.
func Open(c config.DatabaseConfig, loc *time.Location) (*Engine, error) {
	driverName, dsn, err := ParseURL(c.URL)
	if err != nil {
		return nil, err
	}

	// Register the otelsql driver wrapper
	wrapped, err := otelsql.Register(driverName,
		otelsql.WithAttributes(dbSystem(driverName)),
		otelsql.WithSQLCommenter(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register otelsql: %w", err)
	}

	db, err := sqlOpen(wrapped, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}

	return NewEngine(db, driverName, loc), nil
}

// NewEngine wraps an already opened *sql.DB. driverName selects the SQL dialect
// (bind variables and DDL) and must be one of the migration driver names.
func NewEngine(db *sql.DB, driverName string, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{db: sqlx.NewDb(db, driverName), loc: loc}
}

func dbSystem(driverName string) attribute.KeyValue {
	if driverName == migration.DriverPostgres {
		return semconv.DBSystemPostgreSQL
	}
	return semconv.DBSystemSqlite
}

// DriverName returns the dialect driver name of the engine.
func (e *Engine) DriverName() string {
	return e.db.DriverName()
}

// InitDB creates every registered table that does not exist yet. Safe to call repeatedly.
func (e *Engine) InitDB(ctx context.Context) error {
	return migration.EnsureMigrated(ctx, e.db, e.loc)
}

// GetDB runs fn with one freshly acquired Session and always closes the session
// when fn returns, fails or panics. It never commits: fn must call Commit for its
// writes to persist, anything left uncommitted is rolled back on close.
func (e *Engine) GetDB(ctx context.Context, fn func(s *Session) error) (err error) {
	s, err := e.NewSession(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(s)
}

// Ping verifies the backing store is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	return e.db.PingContext(ctx)
}

// Close releases every pooled connection.
func (e *Engine) Close() error {
	return e.db.Close()
}
