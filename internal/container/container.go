package container

import (
	"context"
	"fmt"

	"gocrack/adapters/console"
	"gocrack/adapters/octave"
	"gocrack/adapters/postgres"
	"gocrack/app"
	"gocrack/internal"
	"gocrack/internal/config"
	"gocrack/internal/testkit"
	"gocrack/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds the dependencies of one command invocation and manages
// their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB *sqlx.DB

	// Ports
	RNG  ports.RNGPort
	Runs ports.RunRepository
	Sink ports.MatrixSinkPort

	// Services
	CrackService *app.CrackService

	TestKit *testkit.TestKit
	Logger  *internal.Logger
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		Logger: internal.DefaultLogger,
	}

	var err error
	c.TestKit, err = testkit.NewTestKit()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize test kit: %w", err)
	}

	c.RNG = c.TestKit.RNGAdapter()
	c.Runs = c.TestKit.RunRepository()
	c.Sink = octave.NewStore()
	return c, nil
}

// InitLedger connects the run ledger when a database URL is configured.
// Without one the in-memory ledger of the test kit stays in place.
func (c *Container) InitLedger(ctx context.Context) error {
	if c.Config.Database.URL == "" {
		c.Logger.Warn("DATABASE_URL not set, runs are kept in memory")
		return nil
	}

	db, err := postgres.Open(ctx, c.Config.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open run ledger: %w", err)
	}
	c.DB = db
	c.Runs = postgres.NewRunRepository(db)
	c.Logger.Info("Run ledger connected")
	return nil
}

// InitCrackService builds the recovery service with console progress output
func (c *Container) InitCrackService(progress *console.Reporter) *app.CrackService {
	c.CrackService = app.NewCrackService(c.RNG, c.Runs, c.Sink)
	if progress != nil {
		c.CrackService.SetProgress(progress)
	}
	c.Logger.Debug("Crack service ready: %d restart(s) on %d worker(s)",
		c.Config.Search.Restarts, c.Config.Search.Workers)
	return c.CrackService
}

// Close releases the database connection, if any
func (c *Container) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
