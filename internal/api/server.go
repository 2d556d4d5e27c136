package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/nerrad567/gray-logic-wevolor/internal/configentry"
	"github.com/nerrad567/gray-logic-wevolor/internal/entity"
	"github.com/nerrad567/gray-logic-wevolor/internal/flow"
	"github.com/nerrad567/gray-logic-wevolor/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-wevolor/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// CommandExecutor dispatches a command to an exported entity.
// hass.Exporter implements it.
type CommandExecutor interface {
	Execute(ctx context.Context, uniqueID string, cmd entity.Command) error
	Entities(entryID string) []string
}

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	Logger   *logging.Logger
	Entries  *configentry.Manager
	Flows    *flow.Manager
	Commands CommandExecutor

	// Checks are reported by GET /health, keyed by component name.
	// They are optional.
	Checks map[string]HealthChecker

	Version string
}

// Server is the HTTP API for driving setup flows, config entries and
// entity commands.
type Server struct {
	cfg      config.APIConfig
	logger   *logging.Logger
	entries  *configentry.Manager
	flows    *flow.Manager
	commands CommandExecutor
	checks   map[string]HealthChecker
	version  string
	server   *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Entries == nil {
		return nil, fmt.Errorf("entry manager is required")
	}
	if deps.Flows == nil {
		return nil, fmt.Errorf("flow manager is required")
	}
	// Commands is optional: without it the entity endpoints answer 503.

	return &Server{
		cfg:      deps.Config,
		logger:   deps.Logger,
		entries:  deps.Entries,
		flows:    deps.Flows,
		commands: deps.Commands,
		checks:   deps.Checks,
		version:  deps.Version,
	}, nil
}

// Handler returns the router without starting a listener.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start binds the listener and serves in a background goroutine.
// The server can be stopped with Close().
func (s *Server) Start(_ context.Context) error {
	s.server = &http.Server{
		Addr:              net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port)),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	// Bind synchronously so a port conflict is reported to the caller.
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.server.Addr, err)
	}
	s.logger.Info("API server listening", "address", ln.Addr().String())

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
