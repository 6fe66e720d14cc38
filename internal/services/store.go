package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/vehiclereg/internal/common"
	"github.com/dmitrijs2005/vehiclereg/internal/dbx"
	"github.com/dmitrijs2005/vehiclereg/internal/repositories/kv"
	"github.com/dmitrijs2005/vehiclereg/internal/repositories/repomanager"
	"github.com/google/uuid"
)

// Persisted keys.
const (
	keyUsers           = "users"
	keyCurrentUser     = "currentUser"
	keyAlreadyLaunched = "alreadyLaunched"
	keyVehicles        = "vehicles"
)

// Database is the handle the services need: plain queries plus
// transactions. *sql.DB satisfies it.
type Database interface {
	dbx.DBTX
	dbx.Beginner
}

var _ Database = (*sql.DB)(nil)

// storage bundles the handle and the backend that builds repositories on it.
type storage struct {
	db    Database
	repos repomanager.RepositoryManager
}

func (s storage) repo() kv.Repository {
	return s.repos.KV(s.db)
}

// withTx runs fn with a repository bound to a new transaction.
func (s storage) withTx(ctx context.Context, fn func(ctx context.Context, repo kv.Repository) error) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, s.repos.KV(tx))
	})
}

// storageErr marks err as a persistence failure.
func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", common.ErrStorageFailure, op, err)
}

// loadJSON decodes the document stored under key into dst. It reports false
// when the key is unset. Read and decode failures are storage failures.
func loadJSON(ctx context.Context, repo kv.Repository, key string, dst any) (bool, error) {
	raw, err := repo.Get(ctx, key)
	if err != nil {
		return false, storageErr("read "+key, err)
	}
	if raw == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, storageErr("decode "+key, err)
	}
	return true, nil
}

func saveJSON(ctx context.Context, repo kv.Repository, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return storageErr("encode "+key, err)
	}
	if err := repo.Set(ctx, key, raw); err != nil {
		return storageErr("write "+key, err)
	}
	return nil
}

// newID returns a time-ordered unique identifier (UUIDv7), falling back to
// a random UUID if the clock source fails.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
