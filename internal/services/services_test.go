package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/vehiclereg/internal/cryptox"
	"github.com/dmitrijs2005/vehiclereg/internal/dbx"
	"github.com/dmitrijs2005/vehiclereg/internal/logging"
	"github.com/dmitrijs2005/vehiclereg/internal/metrics"
	"github.com/dmitrijs2005/vehiclereg/internal/repositories/kv"
	"github.com/dmitrijs2005/vehiclereg/internal/repositories/repomanager"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

var cheapParams = cryptox.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func cheapHash(p []byte) (string, error) {
	return cryptox.HashPasswordWithParams(p, cheapParams)
}

// openTestDB opens a migrated sqlite database in a temp dir.
func openTestDB(t *testing.T) (*sql.DB, repomanager.RepositoryManager) {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "registry.db")
	db, repos, err := repomanager.Open(context.Background(), repomanager.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, repos
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func newTestIdentity(db Database, repos repomanager.RepositoryManager, m *metrics.Metrics) *IdentityService {
	s := NewIdentityService(db, repos, logging.Discard(), m)
	s.now = func() time.Time { return testNow }
	s.newID = sequentialIDs("acc")
	s.hashPassword = cheapHash
	return s
}

func newTestVehicles(db Database, repos repomanager.RepositoryManager, m *metrics.Metrics) *VehicleService {
	s := NewVehicleService(db, repos, logging.Discard(), m)
	s.now = func() time.Time { return testNow }
	s.newID = sequentialIDs("veh")
	return s
}

var errDisk = errors.New("disk I/O error")

// faultyManager hands out repositories that fail on demand.
type faultyManager struct {
	repomanager.RepositoryManager
	faults *faults
}

type faults struct {
	get, set, del, list, clear error
}

func (m faultyManager) KV(db dbx.DBTX) kv.Repository {
	return &faultyRepo{Repository: m.RepositoryManager.KV(db), faults: m.faults}
}

type faultyRepo struct {
	kv.Repository
	faults *faults
}

func (r *faultyRepo) Get(ctx context.Context, key string) ([]byte, error) {
	if r.faults.get != nil {
		return nil, r.faults.get
	}
	return r.Repository.Get(ctx, key)
}

func (r *faultyRepo) Set(ctx context.Context, key string, value []byte) error {
	if r.faults.set != nil {
		return r.faults.set
	}
	return r.Repository.Set(ctx, key, value)
}

func (r *faultyRepo) Delete(ctx context.Context, key string) error {
	if r.faults.del != nil {
		return r.faults.del
	}
	return r.Repository.Delete(ctx, key)
}

func (r *faultyRepo) List(ctx context.Context) (map[string][]byte, error) {
	if r.faults.list != nil {
		return nil, r.faults.list
	}
	return r.Repository.List(ctx)
}

func (r *faultyRepo) Clear(ctx context.Context) error {
	if r.faults.clear != nil {
		return r.faults.clear
	}
	return r.Repository.Clear(ctx)
}

func newFaulty(repos repomanager.RepositoryManager) (faultyManager, *faults) {
	f := &faults{}
	return faultyManager{RepositoryManager: repos, faults: f}, f
}
