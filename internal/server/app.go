// Package server wires the vault together: it opens the database, runs
// migrations, and serves the REST API and the gRPC health service until a
// termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/divvault/internal/logging"
	"github.com/dmitrijs2005/divvault/internal/server/config"
	"github.com/dmitrijs2005/divvault/internal/server/httpapi"
	"github.com/dmitrijs2005/divvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/divvault/internal/server/seed"
	"github.com/dmitrijs2005/divvault/internal/server/services"

	gs "github.com/dmitrijs2005/divvault/internal/server/grpc"
)

type App struct {
	config            *config.Config
	logger            logging.Logger
	db                *sql.DB
	repomanager       repomanager.RepositoryManager
	userService       *services.UserService
	credentialService *services.CredentialService
	directoryService  *services.DirectoryService
}

func NewApp(c *config.Config) (*App, error) {

	logger, err := logging.New(c.LogBackend, c.LogLevel, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	if !strings.EqualFold(c.LogLevel, "debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	return &App{
		config:            c,
		logger:            logger,
		db:                db,
		repomanager:       rm,
		userService:       services.NewUserService(db, rm, c),
		credentialService: services.NewCredentialService(db, rm),
		directoryService:  services.NewDirectoryService(db, rm),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger,
		app.userService, app.credentialService, app.directoryService,
		app.config.SecretKey, app.db.PingContext)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.db.PingContext)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run migrates the schema and serves until ctx is cancelled or a
// termination signal arrives. The database is closed on return.
func (app *App) Run(ctx context.Context) error {
	defer app.closeDB(ctx)

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(ctx, "App stopped")
	return nil
}

// Seed migrates the schema and replaces the directory with the configured
// fixture.
func (app *App) Seed(ctx context.Context) error {
	defer app.closeDB(ctx)

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	fixture, err := seed.Load(ctx, app.config.SeedFixture, app.config)
	if err != nil {
		return err
	}

	seeder := seed.NewSeeder(app.db, app.repomanager, app.config.PasswordHashCost, app.logger)
	if _, err := seeder.Run(ctx, fixture); err != nil {
		return fmt.Errorf("seed error: %w", err)
	}
	return nil
}

func (app *App) closeDB(ctx context.Context) {
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
