package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/dmitrijs2005/kinsync/internal/client/client"
	"github.com/dmitrijs2005/kinsync/internal/client/config"
	"github.com/dmitrijs2005/kinsync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/kinsync/internal/client/services"
	"github.com/dmitrijs2005/kinsync/internal/filex"
	"github.com/dmitrijs2005/kinsync/internal/logging"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	meta    metadata.Repository
	api     client.Client
	outbox  *services.OutboxService
	sync    *services.SyncService
	watcher *services.Watcher
}

// NewApp opens the local store and wires the services. Logs go to logOut.
func NewApp(ctx context.Context, c *config.Config, logOut io.Writer) (*App, error) {
	logger := logging.NewJSON(logOut, c.LogLevel)

	path, err := filex.PrepareFile(c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error preparing database path: %w", err)
	}

	db, err := client.InitDatabase(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	api, err := client.NewHTTPClient(c.ServerURL, c.Token, c.WorkspaceID, c.RequestTimeout)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	repos := client.NewRepositories(db)

	clientID, err := services.EnsureClientID(ctx, repos.Metadata, c.ClientID)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error resolving client id: %w", err)
	}

	ob := services.NewOutboxService(repos.Outbox, api, logger)

	return &App{
		config:  c,
		logger:  logger,
		db:      db,
		meta:    repos.Metadata,
		api:     api,
		outbox:  ob,
		sync:    services.NewSyncService(ob, api, repos.Metadata, clientID, logger),
		watcher: services.NewWatcher(api, ob, logger),
	}, nil
}

func (a *App) Close() error {
	return a.db.Close()
}
