// Package sqlstore implements the repositories on database/sql. SQLite is the
// default dialect; PostgreSQL is served by the same code through lib/pq.
package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

// Dialects.
const (
	SQLite   = "sqlite"
	Postgres = "postgres"
)

const queryTimeout = 5 * time.Second

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

// goose keeps its settings in package globals.
var gooseMu sync.Mutex

// DB is a database handle bound to a dialect.
type DB struct {
	sql     *sql.DB
	dialect string
}

// Open connects to dsn, applies pending migrations and returns the handle.
// For SQLite dsn is a file path or a "file:" URI.
func Open(ctx context.Context, dialect, dsn string, log zerolog.Logger) (*DB, error) {
	driver, gooseDialect, err := drivers(dialect)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore open: %w", err)
	}

	if dialect == SQLite {
		// One connection keeps in-memory databases and transactions consistent.
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(25)
		conn.SetMaxIdleConns(5)
		conn.SetConnMaxLifetime(5 * time.Minute)
	}

	db := &DB{sql: conn, dialect: dialect}
	if err := db.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if dialect == SQLite {
		if _, err := conn.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("sqlstore pragma: %w", err)
		}
	}
	if err := migrate(conn, dialect, gooseDialect, log); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return db, nil
}

func drivers(dialect string) (driver, gooseDialect string, err error) {
	switch dialect {
	case SQLite:
		return "sqlite3", "sqlite3", nil
	case Postgres:
		return "postgres", "postgres", nil
	}
	return "", "", fmt.Errorf("sqlstore: unsupported dialect %q", dialect)
}

func migrate(conn *sql.DB, dialect, gooseDialect string, log zerolog.Logger) error {
	dir, err := fs.Sub(migrations, "migrations/"+dialect)
	if err != nil {
		return fmt.Errorf("sqlstore migrations: %w", err)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(dir)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(gooseLogger{log: log})

	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("sqlstore set dialect: %w", err)
	}
	if err := goose.Up(conn, "."); err != nil {
		return fmt.Errorf("sqlstore goose up: %w", err)
	}
	return nil
}

// Ping satisfies ports.Pinger.
func (db *DB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	if err := db.sql.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlstore ping: %w", err)
	}
	return nil
}

func (db *DB) Close() error { return db.sql.Close() }

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (db *DB) rebind(query string) string {
	if db.dialect != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type gooseLogger struct {
	log zerolog.Logger
}

func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.log.Debug().Msgf(strings.TrimSuffix(format, "\n"), v...)
}

func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	g.log.Fatal().Msgf(strings.TrimSuffix(format, "\n"), v...)
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
