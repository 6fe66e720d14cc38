package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/vehiclereg/internal/config"
	"github.com/dmitrijs2005/vehiclereg/internal/logging"
	"github.com/dmitrijs2005/vehiclereg/internal/metrics"
	"github.com/dmitrijs2005/vehiclereg/internal/models"
	"github.com/dmitrijs2005/vehiclereg/internal/repositories/repomanager"
	"github.com/dmitrijs2005/vehiclereg/internal/services"
)

// IdentityService is the account surface the client drives.
type IdentityService interface {
	CheckFirstLaunch(ctx context.Context) (bool, error)
	MarkFirstLaunchComplete(ctx context.Context) error
	SignUp(ctx context.Context, email, password, fullName string) (models.Account, error)
	LogIn(ctx context.Context, email, password string) (models.Account, error)
	LogOut(ctx context.Context) error
	RestoreSession(ctx context.Context) (models.Account, bool)
	CurrentUser() (models.Account, bool)
}

// VehicleService is the registry surface the client drives.
type VehicleService interface {
	ListByOwner(ctx context.Context, userID string) ([]models.Vehicle, error)
	ListAll(ctx context.Context) ([]models.Vehicle, error)
	Register(ctx context.Context, in models.VehicleInput) (models.Vehicle, error)
	Approve(ctx context.Context, id string) (models.Vehicle, error)
	Reject(ctx context.Context, id string) (models.Vehicle, error)
	SetStatus(ctx context.Context, id string, status models.Status) (models.Vehicle, error)
	FindByID(id string) (models.Vehicle, bool)
	FindPending() []models.Vehicle
	SearchByPlate(fragment string) []models.Vehicle
	Statistics() models.Stats
	SeedDemoVehicles(ctx context.Context) (bool, error)
}

// StorageService is the whole-store maintenance surface.
type StorageService interface {
	Documents(ctx context.Context) ([]services.Document, error)
	Reset(ctx context.Context) error
}

var (
	_ IdentityService = (*services.IdentityService)(nil)
	_ VehicleService  = (*services.VehicleService)(nil)
	_ StorageService  = (*services.StorageService)(nil)
)

type App struct {
	config   *config.Config
	db       *sql.DB
	log      logging.Logger
	metrics  *metrics.Metrics
	identity IdentityService
	vehicles VehicleService
	storage  StorageService
	reader   *bufio.Reader
	out      io.Writer
}

// NewApp opens the configured database, applies migrations and builds the
// services. Logs go to stderr so they do not interleave with prompts.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(os.Stderr, c.LogFormat, c.LogLevel)
	if err != nil {
		return nil, err
	}

	db, repos, err := repomanager.Open(ctx, c.StorageDriver, c.DatabaseDSN)
	if err != nil {
		logger.Error(ctx, "error initializing database", "driver", c.StorageDriver, "error", err)
		return nil, err
	}

	m, err := metrics.New()
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{
		config:   c,
		db:       db,
		log:      logger,
		metrics:  m,
		identity: services.NewIdentityService(db, repos, logger, m),
		vehicles: services.NewVehicleService(db, repos, logger, m),
		storage:  services.NewStorageService(db, repos, logger),
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}, nil
}

// Close releases the database handle.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Run performs the startup sequence and blocks in the REPL until the user
// exits or input ends.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	if err := a.startup(ctx); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Vehicle registry (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}

// startup runs the first-launch bootstrap, seeds demo vehicles when
// configured, and restores the stored session.
func (a *App) startup(ctx context.Context) error {
	if err := a.firstLaunch(ctx); err != nil {
		return err
	}

	if a.config != nil && a.config.SeedDemoData {
		if _, err := a.vehicles.SeedDemoVehicles(ctx); err != nil {
			a.log.Warn(ctx, "demo vehicles not seeded", "error", err)
		}
	}

	if acc, ok := a.identity.RestoreSession(ctx); ok {
		fmt.Fprintf(a.out, "Welcome back, %s\n", displayName(acc))
		a.loadWorkingSet(ctx, acc)
	}
	return nil
}

// firstLaunch bootstraps the demo accounts on a fresh store and prints
// their credentials.
func (a *App) firstLaunch(ctx context.Context) error {
	first, err := a.identity.CheckFirstLaunch(ctx)
	if err != nil {
		return fmt.Errorf("first launch check: %w", err)
	}
	if !first {
		return nil
	}
	if err := a.identity.MarkFirstLaunchComplete(ctx); err != nil {
		return fmt.Errorf("mark first launch: %w", err)
	}
	fmt.Fprintf(a.out, "Demo accounts: %s / %s (admin), %s / %s (user)\n",
		services.DemoAdminEmail, services.DemoAdminPassword,
		services.DemoUserEmail, services.DemoUserPassword)
	return nil
}

// loadWorkingSet scopes the working set to the account: every vehicle for
// admins, the account's own vehicles otherwise.
func (a *App) loadWorkingSet(ctx context.Context, acc models.Account) ([]models.Vehicle, error) {
	var (
		vs  []models.Vehicle
		err error
	)
	if acc.IsAdmin() {
		vs, err = a.vehicles.ListAll(ctx)
	} else {
		vs, err = a.vehicles.ListByOwner(ctx, acc.ID)
	}
	if err != nil {
		a.log.Error(ctx, "load vehicles failed", "error", err)
	}
	return vs, err
}

func (a *App) isLoggedIn() bool {
	_, ok := a.identity.CurrentUser()
	return ok
}

func (a *App) isAdmin() bool {
	acc, ok := a.identity.CurrentUser()
	return ok && acc.IsAdmin()
}

func (a *App) getStatus() string {
	acc, ok := a.identity.CurrentUser()
	if !ok {
		return ""
	}
	return fmt.Sprintf("(%s %s)", acc.Email, acc.Role)
}

func displayName(acc models.Account) string {
	if acc.FullName != "" {
		return acc.FullName
	}
	return acc.Email
}
