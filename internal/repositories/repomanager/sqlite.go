package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/vehiclereg/internal/dbx"
	"github.com/dmitrijs2005/vehiclereg/internal/migrations/sqlite"
	"github.com/dmitrijs2005/vehiclereg/internal/repositories/kv"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// SQLiteRepositoryManager vends repositories for the embedded store.
type SQLiteRepositoryManager struct{}

func (m *SQLiteRepositoryManager) KV(db dbx.DBTX) kv.Repository {
	return kv.NewSQLiteRepository(db)
}

// RunMigrations applies the embedded SQLite migrations. It is idempotent.
func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(sqlite.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}
