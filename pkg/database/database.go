package database

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/uptrace/bun/driver/pgdriver"
)

//go:embed migrations
var migrations embed.FS

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

// Open connects to url and applies pending migrations. postgres:// and
// postgresql:// URLs use pgdriver; sqlite:// URLs name a local database file.
func Open(url string) (*sql.DB, error) {
	db, dialect, err := connect(url)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging %s database: %w", dialect, err)
	}

	if err := Migrate(db, dialect); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func connect(url string) (*sql.DB, string, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(url))), DialectPostgres, nil
	case strings.HasPrefix(url, "sqlite://"):
		db, err := sql.Open(DialectSQLite, strings.TrimPrefix(url, "sqlite://"))
		if err != nil {
			return nil, "", fmt.Errorf("opening sqlite database: %w", err)
		}
		// one writer; sqlite serializes anyway
		db.SetMaxOpenConns(1)
		return db, DialectSQLite, nil
	}
	return nil, "", fmt.Errorf("unsupported database url scheme: %q", url)
}

func Migrate(db *sql.DB, dialect string) error {
	source := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrations,
		Root:       "migrations/" + dialect,
	}

	n, err := migrate.Exec(db, dialect, source, migrate.Up)
	if err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	slog.Info("Database migrated", "dialect", dialect, "applied", n)
	return nil
}
