// Package rest exposes the sync engine over HTTP/JSON.
package rest

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/kinsync/internal/logging"
	"github.com/dmitrijs2005/kinsync/internal/server/metrics"
	"github.com/dmitrijs2005/kinsync/internal/server/models"
	"github.com/dmitrijs2005/kinsync/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/heptiolabs/healthcheck"
)

const shutdownTimeout = 5 * time.Second

// SyncService is what the sync routes need from services.SyncService.
type SyncService interface {
	Push(ctx context.Context, workspaceID, userID, clientID string, changes []models.Change) ([]services.Outcome, error)
	Pull(ctx context.Context, workspaceID, userID, cursor, clientID string) (*services.PullResult, error)
	State(ctx context.Context, workspaceID, userID, clientID string) (*models.SyncState, error)
}

// MembershipChecker decides whether a user may act in a workspace.
type MembershipChecker interface {
	Check(ctx context.Context, workspaceID, userID string) error
}

// AttachmentService hands out presigned object-storage URLs.
type AttachmentService interface {
	RequestUpload(ctx context.Context, workspaceID, userID string) (*models.UploadTask, error)
	CompleteUpload(ctx context.Context, workspaceID, key string) error
	DownloadURL(ctx context.Context, workspaceID, key string) (string, error)
}

type HTTPServer struct {
	address     string
	logger      logging.Logger
	sync        SyncService
	members     MembershipChecker
	attachments AttachmentService
	health      healthcheck.Handler
	jwtSecret   []byte
}

func NewHTTPServer(a string, l logging.Logger, ss SyncService, mc MembershipChecker, as AttachmentService,
	health healthcheck.Handler, secretKey string) *HTTPServer {
	return &HTTPServer{
		address:     a,
		logger:      l.With("module", "http_server"),
		sync:        ss,
		members:     mc,
		attachments: as,
		health:      health,
		jwtSecret:   []byte(secretKey),
	}
}

// NewHealthHandler reports liveness from the goroutine count and readiness
// from a database ping.
func NewHealthHandler(db *sql.DB) healthcheck.Handler {
	health := healthcheck.NewHandler()
	health.AddLivenessCheck("goroutine-threshold", healthcheck.GoroutineCountCheck(1000))
	if db != nil {
		health.AddReadinessCheck("database", healthcheck.DatabasePingCheck(db, time.Second))
	}
	return health
}

// Handler builds the gin engine with every route mounted.
func (s *HTTPServer) Handler() http.Handler {
	router := gin.New()
	router.Use(s.accessLog(), s.recovery())

	if s.health != nil {
		router.GET("/live", gin.WrapF(s.health.LiveEndpoint))
		router.GET("/ready", gin.WrapF(s.health.ReadyEndpoint))
	}
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := router.Group("/v1", s.authenticate(), s.requireWorkspace())
	{
		v1.POST("/sync/push", s.push)
		v1.GET("/sync/pull", s.pull)
		v1.GET("/sync/state", s.state)

		v1.POST("/sync/attachments", s.requestUpload)
		v1.POST("/sync/attachments/complete", s.completeUpload)
		v1.GET("/sync/attachments/download", s.downloadURL)
	}

	return router
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-stopped
	return nil
}
