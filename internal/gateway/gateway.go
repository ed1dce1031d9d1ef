// ABOUTME: Gateway orchestrator that coordinates the HTTP and WebSocket server
// ABOUTME: Manages store, connection hubs, responder selection, and lifecycle

package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/helpline/switchboard/internal/config"
	"github.com/helpline/switchboard/internal/handoff"
	"github.com/helpline/switchboard/internal/hub"
	"github.com/helpline/switchboard/internal/responder"
	"github.com/helpline/switchboard/internal/router"
	"github.com/helpline/switchboard/internal/store"
)

// Gateway orchestrates the switchboard server components.
// It owns the store, the user and manager connection hubs, the handoff
// tracker, and the HTTP server that carries both the REST API and the
// WebSocket endpoints.
type Gateway struct {
	config     *config.Config
	store      store.Store
	users      *hub.UserRegistry
	managers   *hub.ManagerRegistry
	handoff    *handoff.Tracker
	responder  responder.Responder
	router     *router.Router
	httpServer *http.Server
	logger     *slog.Logger
}

// initStore creates and returns a store based on config and environment.
func initStore(cfg *config.Config) (store.Store, error) {
	dbPath := cfg.Database.Path
	if envPath := os.Getenv("SWITCHBOARD_DB_PATH"); envPath != "" {
		dbPath = envPath
	}

	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}
	return s, nil
}

// buildResponder selects the reply source for unclaimed chats. The assistant
// provider needs both credentials; anything less falls back to the echo
// responder so the relay stays usable without an AI account.
func buildResponder(cfg *config.Config, s store.Store, logger *slog.Logger) responder.Responder {
	if cfg.AI.Configured() {
		provider := responder.NewOpenAIProvider(cfg.AI.APIKey, cfg.AI.AssistantID, logger.With("component", "openai"))
		logger.Info("assistant responder enabled", "assistant_id", cfg.AI.AssistantID)
		return responder.NewAssistant(s, provider, logger.With("component", "responder"))
	}

	logger.Info("assistant credentials not configured, using echo responder", "delay", cfg.AI.EchoDelay)
	return responder.NewEcho(cfg.AI.EchoDelay, logger.With("component", "responder"))
}

// New creates a new Gateway instance with the given configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	s, err := initStore(cfg)
	if err != nil {
		return nil, err
	}

	users := hub.NewUserRegistry(logger.With("component", "user-hub"))
	managers := hub.NewManagerRegistry(logger.With("component", "manager-hub"))
	tracker := handoff.New(logger.With("component", "handoff"))
	rsp := buildResponder(cfg, s, logger)

	gw := &Gateway{
		config:    cfg,
		store:     s,
		users:     users,
		managers:  managers,
		handoff:   tracker,
		responder: rsp,
		router:    router.New(s, users, managers, tracker, rsp, logger),
		logger:    logger.With("component", "gateway"),
	}

	mux := http.NewServeMux()

	// Health endpoints
	mux.HandleFunc("/health", gw.handleHealth)
	mux.HandleFunc("/health/ready", gw.handleReady)

	// WebSocket endpoints
	mux.HandleFunc("/ws", gw.handleUserSocket)
	mux.HandleFunc("/manager/ws", gw.handleManagerSocket)

	// Manager REST API
	mux.HandleFunc("/manager/send", gw.handleManagerSend)
	mux.HandleFunc("/manager/chats", gw.handleManagerChats)
	mux.HandleFunc("/history", gw.handleHistory)

	gw.httpServer = &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           withCORS(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return gw, nil
}

// Run starts the gateway server and blocks until the context is canceled.
// Returns nil on graceful shutdown (context canceled), or an error if the
// server fails.
func (g *Gateway) Run(ctx context.Context) error {
	g.logger.Info("starting gateway", "listen_addr", g.config.Server.ListenAddr)

	ln, err := net.Listen("tcp", g.config.Server.ListenAddr)
	if err != nil {
		return fmt.Errorf("listening on HTTP address: %w", err)
	}

	// Request contexts derive from the run context so that in-flight message
	// turns survive their originating connection but not a server shutdown.
	g.httpServer.BaseContext = func(net.Listener) context.Context { return ctx }

	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := g.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	serverErr := g.waitForShutdownSignal(ctx, errCh)
	shutdownErr := g.gracefulShutdown()

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// waitForShutdownSignal waits for context cancellation or a server error.
func (g *Gateway) waitForShutdownSignal(ctx context.Context, errCh chan error) error {
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
		return nil
	case err := <-errCh:
		g.logger.Error("server error", "error", err)
		return err
	}
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() intentionally since the original context is already canceled.
func (g *Gateway) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return g.Shutdown(ctx)
}

// appendCloseError appends an error with label if err is non-nil.
func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}

// Shutdown gracefully stops the gateway server and releases resources.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("shutting down gateway")

	var errs []error
	errs = appendCloseError(errs, "HTTP shutdown", g.httpServer.Shutdown(ctx))
	errs = appendCloseError(errs, "store close", g.store.Close())

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// withCORS applies the permissive cross-origin policy the browser clients
// expect, and answers preflight requests directly.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleHealth returns 200 OK if the server is alive.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady returns 200 OK once the store answers queries.
func (g *Gateway) handleReady(w http.ResponseWriter, r *http.Request) {
	users, err := g.store.ListUsers(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("store unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "ready (%d users)", len(users))
}
