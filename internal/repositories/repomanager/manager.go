// Package repomanager selects the storage backend: it opens the database for
// a driver name, applies the embedded goose migrations, and vends kv
// repositories bound to a database or transaction handle.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/vehiclereg/internal/dbx"
	"github.com/dmitrijs2005/vehiclereg/internal/filex"
	"github.com/dmitrijs2005/vehiclereg/internal/repositories/kv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// RepositoryManager vends repositories for one backend.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	KV(db dbx.DBTX) kv.Repository
}

// New returns the manager for driver.
func New(driver string) (RepositoryManager, error) {
	switch driver {
	case DriverSQLite:
		return &SQLiteRepositoryManager{}, nil
	case DriverPostgres:
		return &PostgresRepositoryManager{}, nil
	}
	return nil, fmt.Errorf("unsupported storage driver %q", driver)
}

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

// Open opens dsn with driver, verifies the connection, and migrates the
// schema. The caller owns the returned *sql.DB.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, RepositoryManager, error) {
	m, err := New(driver)
	if err != nil {
		return nil, nil, err
	}

	if driver == DriverSQLite {
		if _, err := filex.EnsureParentDir(dsn); err != nil {
			return nil, nil, err
		}
	}

	db, err := sqlOpen(sqlDriverName(driver), dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	if driver == DriverSQLite {
		// one writer; also keeps a single :memory: database per handle
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping %s database: %w", driver, err)
	}

	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, m, nil
}

func sqlDriverName(driver string) string {
	if driver == DriverPostgres {
		return "pgx"
	}
	return "sqlite"
}
