// Package server wires the sync server together: database, migrations,
// services, and the HTTP transport, with graceful shutdown on signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/kinsync/internal/logging"
	"github.com/dmitrijs2005/kinsync/internal/server/appliers"
	"github.com/dmitrijs2005/kinsync/internal/server/config"
	"github.com/dmitrijs2005/kinsync/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/kinsync/internal/server/rest"
	"github.com/dmitrijs2005/kinsync/internal/server/services"
	"github.com/gin-gonic/gin"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type App struct {
	config            *config.Config
	logger            logging.Logger
	db                *sql.DB
	repomanager       repomanager.RepositoryManager
	syncService       *services.SyncService
	membershipService *services.MembershipService
	attachmentService *services.AttachmentService
}

func NewApp(c *config.Config) (*App, error) {
	gin.SetMode(gin.ReleaseMode)
	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	registry := appliers.NewDefaultRegistry(rm)

	return &App{
		config:            c,
		logger:            logger,
		db:                db,
		repomanager:       rm,
		syncService:       services.NewSyncService(db, rm, registry, c, logger),
		membershipService: services.NewMembershipService(db, rm, c.MembershipCacheTTL),
		attachmentService: services.NewAttachmentService(db, rm, c),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := rest.NewHTTPServer(app.config.HTTPAddr, app.logger, app.syncService, app.membershipService,
		app.attachmentService, rest.NewHealthHandler(app.db), app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "HTTP server failed", "error", err)
		cancelFunc()
	}
}

// Run applies migrations and serves until a termination signal arrives or
// the server fails.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.db.Close()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations failed: %w", err)
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(ctx, "App stopped")
	return nil
}
