package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/vehiclereg/internal/common"
	"github.com/dmitrijs2005/vehiclereg/internal/cryptox"
	"github.com/dmitrijs2005/vehiclereg/internal/logging"
	"github.com/dmitrijs2005/vehiclereg/internal/metrics"
	"github.com/dmitrijs2005/vehiclereg/internal/models"
	"github.com/dmitrijs2005/vehiclereg/internal/repositories/kv"
	"github.com/dmitrijs2005/vehiclereg/internal/repositories/repomanager"
)

// Demo credentials seeded on first launch.
const (
	DemoAdminEmail    = "admin@example.com"
	DemoAdminPassword = "admin123"
	DemoUserEmail     = "user@example.com"
	DemoUserPassword  = "password123"
)

// IdentityService owns the account collection and the current session.
type IdentityService struct {
	mu      sync.Mutex
	store   storage
	log     logging.Logger
	metrics *metrics.Metrics

	now          func() time.Time
	newID        func() string
	hashPassword func(password []byte) (string, error)

	current *models.Account
}

// NewIdentityService binds the service to db through repos. m may be nil.
func NewIdentityService(db Database, repos repomanager.RepositoryManager, log logging.Logger, m *metrics.Metrics) *IdentityService {
	return &IdentityService{
		store:        storage{db: db, repos: repos},
		log:          log.With("component", "identity"),
		metrics:      m,
		now:          time.Now,
		newID:        newID,
		hashPassword: cryptox.HashPassword,
	}
}

// CurrentUser returns the session account, if any.
func (s *IdentityService) CurrentUser() (models.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return models.Account{}, false
	}
	return *s.current, true
}

// CheckFirstLaunch reports whether the first-launch flag is unset. On first
// launch it also seeds the demo accounts.
func (s *IdentityService) CheckFirstLaunch(ctx context.Context) (bool, error) {
	raw, err := s.store.repo().Get(ctx, keyAlreadyLaunched)
	if err != nil {
		s.log.Error(ctx, "first launch check failed", "error", err)
		return false, storageErr("read "+keyAlreadyLaunched, err)
	}
	if raw != nil {
		return false, nil
	}

	if err := s.BootstrapDemoAccounts(ctx); err != nil {
		return true, err
	}
	return true, nil
}

// MarkFirstLaunchComplete sets the first-launch flag.
func (s *IdentityService) MarkFirstLaunchComplete(ctx context.Context) error {
	if err := s.store.repo().Set(ctx, keyAlreadyLaunched, []byte("true")); err != nil {
		return storageErr("write "+keyAlreadyLaunched, err)
	}
	return nil
}

// BootstrapDemoAccounts seeds one admin and one regular account when the
// users key has never been written. An existing but empty collection is
// left alone.
func (s *IdentityService) BootstrapDemoAccounts(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	repo := s.store.repo()
	raw, err := repo.Get(ctx, keyUsers)
	if err != nil {
		return storageErr("read "+keyUsers, err)
	}
	if raw != nil {
		return nil
	}

	seed := []struct {
		id, email, password, name string
		role                      models.Role
	}{
		{"1", DemoAdminEmail, DemoAdminPassword, "Admin User", models.RoleAdmin},
		{"2", DemoUserEmail, DemoUserPassword, "Demo User", models.RoleUser},
	}

	now := s.now().UTC()
	users := make([]models.StoredAccount, 0, len(seed))
	for _, d := range seed {
		hash, err := s.hashPassword([]byte(d.password))
		if err != nil {
			return fmt.Errorf("hash demo password: %w", err)
		}
		users = append(users, models.StoredAccount{
			Account: models.Account{
				ID:        d.id,
				Email:     d.email,
				FullName:  d.name,
				Role:      d.role,
				CreatedAt: now,
			},
			PasswordHash: hash,
		})
	}

	if err := saveJSON(ctx, repo, keyUsers, users); err != nil {
		return err
	}
	s.log.Info(ctx, "demo accounts seeded", "count", len(users))
	return nil
}

// SignUp creates a regular account and makes it the current session. The
// email must not match an existing account case-insensitively.
func (s *IdentityService) SignUp(ctx context.Context, email, password, fullName string) (models.Account, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		s.metrics.ObserveSignup(metrics.ResultRejected)
		return models.Account{}, fmt.Errorf("%w: email and password are required", common.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var users []models.StoredAccount
	if _, err := loadJSON(ctx, s.store.repo(), keyUsers, &users); err != nil {
		s.metrics.ObserveSignup(metrics.ResultError)
		return models.Account{}, err
	}

	for _, u := range users {
		if u.MatchesEmail(email) {
			s.metrics.ObserveSignup(metrics.ResultRejected)
			return models.Account{}, common.ErrDuplicateEmail
		}
	}

	hash, err := s.hashPassword([]byte(password))
	if err != nil {
		s.metrics.ObserveSignup(metrics.ResultError)
		return models.Account{}, fmt.Errorf("hash password: %w", err)
	}

	account := models.Account{
		ID:        s.newID(),
		Email:     email,
		FullName:  strings.TrimSpace(fullName),
		Role:      models.RoleUser,
		CreatedAt: s.now().UTC(),
	}
	users = append(users, models.StoredAccount{Account: account, PasswordHash: hash})

	err = s.store.withTx(ctx, func(ctx context.Context, repo kv.Repository) error {
		if err := saveJSON(ctx, repo, keyUsers, users); err != nil {
			return err
		}
		return saveJSON(ctx, repo, keyCurrentUser, account)
	})
	if err != nil {
		s.metrics.ObserveSignup(metrics.ResultError)
		s.log.Error(ctx, "signup failed", "error", err)
		return models.Account{}, ensureStorageErr("save account", err)
	}

	s.current = &account
	s.metrics.ObserveSignup(metrics.ResultOK)
	s.log.Info(ctx, "account created", "id", account.ID)
	return account, nil
}

// LogIn verifies the credentials and makes the account the current session.
func (s *IdentityService) LogIn(ctx context.Context, email, password string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var users []models.StoredAccount
	if _, err := loadJSON(ctx, s.store.repo(), keyUsers, &users); err != nil {
		s.metrics.ObserveLogin(metrics.ResultError)
		return models.Account{}, err
	}

	email = strings.TrimSpace(email)
	for _, u := range users {
		if !u.MatchesEmail(email) {
			continue
		}
		ok, err := cryptox.VerifyPassword(u.PasswordHash, []byte(password))
		if err != nil {
			s.log.Warn(ctx, "stored password hash unreadable", "id", u.ID, "error", err)
			continue
		}
		if !ok {
			continue
		}

		account := u.Account
		if err := saveJSON(ctx, s.store.repo(), keyCurrentUser, account); err != nil {
			s.metrics.ObserveLogin(metrics.ResultError)
			return models.Account{}, err
		}
		s.current = &account
		s.metrics.ObserveLogin(metrics.ResultOK)
		s.log.Info(ctx, "logged in", "id", account.ID, "role", account.Role)
		return account, nil
	}

	s.metrics.ObserveLogin(metrics.ResultRejected)
	return models.Account{}, common.ErrInvalidCredentials
}

// LogOut ends the session. The in-memory session is always cleared; an
// error is returned only if the persisted pointer could not be removed.
func (s *IdentityService) LogOut(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	if err := s.store.repo().Delete(ctx, keyCurrentUser); err != nil {
		s.log.Error(ctx, "logout failed to clear stored session", "error", err)
		return storageErr("delete "+keyCurrentUser, err)
	}
	return nil
}

// RestoreSession loads the persisted session pointer. A missing, unreadable
// or corrupt pointer yields no session.
func (s *IdentityService) RestoreSession(ctx context.Context) (models.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var account models.Account
	found, err := loadJSON(ctx, s.store.repo(), keyCurrentUser, &account)
	if err != nil {
		s.log.Warn(ctx, "stored session ignored", "error", err)
		return models.Account{}, false
	}
	if !found || account.ID == "" {
		return models.Account{}, false
	}

	s.current = &account
	return account, true
}

func ensureStorageErr(op string, err error) error {
	if errors.Is(err, common.ErrStorageFailure) {
		return err
	}
	return storageErr(op, err)
}
