package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/vehiclereg/internal/dbx"
	"github.com/dmitrijs2005/vehiclereg/internal/migrations/postgres"
	"github.com/dmitrijs2005/vehiclereg/internal/repositories/kv"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends repositories for a PostgreSQL database.
type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) KV(db dbx.DBTX) kv.Repository {
	return kv.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded PostgreSQL migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(postgres.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}
