package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/rackview-core/internal/audit"
	"github.com/nerrad567/rackview-core/internal/infrastructure/config"
	"github.com/nerrad567/rackview-core/internal/infrastructure/database"
	"github.com/nerrad567/rackview-core/internal/infrastructure/logging"
	"github.com/nerrad567/rackview-core/internal/inventory"
)

// gracefulShutdownTimeout is how long to wait for in-flight requests
// during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps contains the dependencies required by the API server.
type Deps struct {
	Config    *config.Config
	Logger    *logging.Logger
	DB        *database.DB
	Inventory inventory.Repository
	Service   *inventory.Service
	Audit     *audit.Repository
	Hub       *Hub
}

// Server is the HTTP API server. It exposes the inventory read and
// write endpoints, the operation log, and the WebSocket live channel.
type Server struct {
	cfg    config.APIConfig
	cfgWS  config.WebSocketConfig
	logger *logging.Logger

	db        *database.DB
	inventory inventory.Repository
	service   *inventory.Service
	audit     *audit.Repository
	hub       *Hub

	httpServer *http.Server
	cancel     context.CancelFunc
}

// New creates an API server.
//
// Parameters:
//   - deps: required dependencies (config, logger, database, inventory
//     service and repositories, WebSocket hub)
//
// Returns:
//   - *Server: configured server, not yet listening
//   - error: if any required dependency is missing
func New(deps Deps) (*Server, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.DB == nil {
		return nil, fmt.Errorf("database is required")
	}
	if deps.Inventory == nil {
		return nil, fmt.Errorf("inventory repository is required")
	}
	if deps.Service == nil {
		return nil, fmt.Errorf("inventory service is required")
	}
	if deps.Audit == nil {
		return nil, fmt.Errorf("audit repository is required")
	}
	if deps.Hub == nil {
		return nil, fmt.Errorf("websocket hub is required")
	}

	return &Server{
		cfg:       deps.Config.API,
		cfgWS:     deps.Config.WebSocket,
		logger:    deps.Logger.With("component", "api"),
		db:        deps.DB,
		inventory: deps.Inventory,
		service:   deps.Service,
		audit:     deps.Audit,
		hub:       deps.Hub,
	}, nil
}

// Start begins listening for HTTP connections. It returns immediately;
// the listener runs in a background goroutine.
func (s *Server) Start(ctx context.Context) error {
	srvCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	go s.hub.Run(srvCtx)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("api server listening", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server failed", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the server, draining in-flight requests.
func (s *Server) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("api server shutdown: %w", err)
	}
	s.logger.Info("api server stopped")
	return nil
}

// HealthCheck verifies the server is running and its database reachable.
func (s *Server) HealthCheck(ctx context.Context) error {
	if s.httpServer == nil {
		return fmt.Errorf("api server not started")
	}
	return s.db.HealthCheck(ctx)
}
