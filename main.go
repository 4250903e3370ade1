// Command tile-path-game starts the Tile Path Game server.
//
// Subcommands:
//  1. "server" (default) runs the HTTP server exposing the REST API, WebSocket and an /mcp endpoint
//  2. "stdio-mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "validate" checks level files, including whether each level can be solved
//  4. "version" prints the version
//
// Settings come from server.yaml (see settings.LoadConfig), environment
// variables and .env, then the command line flags below.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/tile-path-game/api"
	"github.com/wricardo/tile-path-game/game/config"
	"github.com/wricardo/tile-path-game/game/service"
	"github.com/wricardo/tile-path-game/game/session"
	"github.com/wricardo/tile-path-game/logger"
	"github.com/wricardo/tile-path-game/settings"
	"github.com/wricardo/tile-path-game/transport/mcp"
	"github.com/wricardo/tile-path-game/transport/websocket"
	"github.com/wricardo/tile-path-game/validate"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Tile Path Game Server"
)

// Background intervals
var (
	cleanupInterval = 1 * time.Hour
	syncInterval    = 5 * time.Second
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		logger.Error("Exiting", "error", err)
		os.Exit(1)
	}
}

// newApp builds the command tree
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "tile-path-game",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "settings", Value: "server.yaml", Usage: "server settings file"},
			&cli.StringFlag{Name: "host", Usage: "HTTP server host (overrides settings)"},
			&cli.IntFlag{Name: "port", Usage: "HTTP server port (overrides settings)"},
			&cli.StringFlag{Name: "config-dir", Usage: "directory containing level files (overrides settings)"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
			&cli.BoolFlag{Name: "ngrok", Usage: "enable the ngrok tunnel"},
		},
		Action: serverAction,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint (default)",
				Action:  serverAction,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action:  stdioAction,
			},
			{
				Name:      "validate",
				Usage:     "Validate level files",
				ArgsUsage: "[dir]",
				Action:    validateAction,
			},
			{
				Name:  "version",
				Usage: "Show version information",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Fprintf(cmd.Root().Writer, "%s v%s\n", AppName, Version)
					return nil
				},
			},
		},
	}
}

// loadSettings reads the settings file and applies flag overrides
func loadSettings(cmd *cli.Command) (*settings.ServerConfig, error) {
	cfg, err := settings.LoadConfig(cmd.String("settings"))
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	if cmd.IsSet("host") {
		cfg.HTTP.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.HTTP.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("config-dir") {
		cfg.Levels.Dir = cmd.String("config-dir")
	}
	if cmd.Bool("debug") {
		cfg.Logging.Level = "DEBUG"
	}
	if cmd.Bool("ngrok") {
		cfg.Ngrok.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := logger.Initialize(cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

func serverAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger.Info("Starting server", "app", AppName, "version", Version, "mode", "server")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	gameService, cleanup, err := initializeServices(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer cleanup()

	return runHTTPServer(ctx, cfg, gameService)
}

func stdioAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger.Info("Starting server", "app", AppName, "version", Version, "mode", "stdio-mcp")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	gameService, cleanup, err := initializeServices(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer cleanup()

	return runStdioMCPWithInternalServer(ctx, cfg, gameService)
}

func validateAction(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.Args().First()
	if dir == "" {
		dir = cmd.String("config-dir")
	}
	if dir == "" {
		dir = "configs"
	}

	results, err := validate.Dir(dir)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", dir, err)
	}
	if !validate.Report(cmd.Root().Writer, results) {
		return errors.New("level validation failed")
	}
	return nil
}

// initializeServices wires the config manager, session persistence and the game service.
// Background routines stop with ctx; the returned cleanup saves sessions and closes storage.
func initializeServices(ctx context.Context, cfg *settings.ServerConfig) (service.GameService, func(), error) {
	configManager, err := config.NewManager(cfg.Levels.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	persistence, err := newPersistence(cfg.Sessions, configManager)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(persistence)
	if err := sessionManager.LoadPersistedSessions(); err != nil {
		logger.Warning("Failed to load persisted sessions", "error", err)
	}

	gameService := service.NewGameService(sessionManager, configManager)

	go sessionCleanupRoutine(ctx, sessionManager, cfg.Sessions.Retention())
	if cfg.Sessions.Backend == settings.BackendFile {
		go filesystemSyncRoutine(ctx, sessionManager, persistence)
	}

	cleanup := func() {
		if err := gameService.SaveSessions(context.Background()); err != nil {
			logger.Warning("Failed to save sessions", "error", err)
		}
		if closer, ok := persistence.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				logger.Warning("Failed to close session store", "error", err)
			}
		}
	}
	return gameService, cleanup, nil
}

// newPersistence opens the session backend selected in settings
func newPersistence(cfg settings.SessionsConfig, configs service.ConfigManager) (session.SessionPersistence, error) {
	switch cfg.Backend {
	case settings.BackendSQLite:
		logger.Info("Using SQLite session store", "path", cfg.SQLitePath)
		return session.NewSQLitePersistence(cfg.SQLitePath, configs)
	case settings.BackendFile:
		logger.Info("Using file session store", "dir", cfg.Dir)
		return session.NewFilePersistence(cfg.Dir, configs)
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within the retention window
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, retention time.Duration) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			manager.CleanupExpiredSessions(retention)
		}
	}
}

// filesystemSyncRoutine removes sessions from memory when their files are deleted
func filesystemSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence) {
	ticker := time.NewTicker(syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruneDeletedSessions(manager, persistence)
		}
	}
}

func pruneDeletedSessions(manager *session.Manager, persistence session.SessionPersistence) int {
	pruned := 0
	for _, sess := range manager.List() {
		if persistence.Exists(sess.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(sess.ID); err == nil {
			pruned++
			logger.Debug("Pruned session from memory (file deleted)", "session", sess.ID)
		}
	}
	if pruned > 0 {
		logger.Info("Filesystem sync pruned orphaned sessions", "count", pruned)
	}
	return pruned
}

// newRouter mounts the REST API at the root and the MCP endpoint at /mcp
func newRouter(apiServer *api.Server, mcpClient *mcp.Client) *http.ServeMux {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)

	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})
	return mainRouter
}

// localURL is the address the in-process MCP client uses to reach the API
func localURL(cfg settings.HTTPConfig) string {
	host := cfg.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s", net.JoinHostPort(host, fmt.Sprint(cfg.Port)))
}

// runHTTPServer serves REST, WebSocket and /mcp until ctx is cancelled.
// When ngrok is enabled it also serves through a public tunnel.
func runHTTPServer(ctx context.Context, cfg *settings.ServerConfig, gameService service.GameService) error {
	hub := websocket.NewHub(cfg.WebSocket.IsOriginAllowed)
	go hub.Run()
	defer hub.Stop()

	apiServer := api.NewServer(gameService, hub)
	mcpClient := mcp.NewClient(localURL(cfg.HTTP))
	mainRouter := newRouter(apiServer, mcpClient)

	addr := cfg.HTTP.Addr()
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info("HTTP server listening", "addr", addr)
		logger.Info("Endpoints",
			"api", fmt.Sprintf("http://%s/api", addr),
			"websocket", fmt.Sprintf("ws://%s/ws?session=<session_id>", addr),
			"mcp", fmt.Sprintf("http://%s/mcp", addr))

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if cfg.Ngrok.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, cfg.Ngrok, mainRouter)
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case runErr = <-serveErr:
		logger.Error("HTTP server failed", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warning("HTTP server shutdown error", "error", err)
	}

	wg.Wait()
	logger.Info("Server stopped")
	return runErr
}

// runNgrokTunnel serves handler through an ngrok tunnel until ctx is cancelled
func runNgrokTunnel(ctx context.Context, cfg settings.NgrokConfig, handler http.Handler) {
	if cfg.AuthToken == "" {
		logger.Warning("Ngrok enabled but no auth token provided (set ngrok.auth_token, NGROK_AUTHTOKEN or NGROK_AUTH_TOKEN)")
		return
	}

	logger.Info("Starting ngrok tunnel")
	var tunnel ngrokConfig.Tunnel
	if cfg.Domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.Domain))
		logger.Info("Using custom ngrok domain", "domain", cfg.Domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(cfg.AuthToken))
	if err != nil {
		logger.Error("Failed to start ngrok tunnel", "error", err)
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Warning("Failed to close ngrok tunnel", "error", err)
		}
	}()

	ngrokURL := tun.URL()
	logger.Info("🚀 Ngrok tunnel established", "url", ngrokURL)
	logger.Info("Ngrok endpoints",
		"api", ngrokURL+"/api",
		"websocket", ngrokURL+"/ws?session=<session_id>",
		"mcp", ngrokURL+"/mcp")

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		logger.Error("Ngrok server error", "error", err)
	}
	logger.Info("Ngrok tunnel closed")
}

// externalAPIAvailable reports whether a server already answers at baseURL
func externalAPIAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// startInternalServer serves the API on a random loopback port and returns its base URL
func startInternalServer(gameService service.GameService, hub *websocket.Hub) (string, *http.Server, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get available port: %w", err)
	}

	httpServer := &http.Server{Handler: api.NewServer(gameService, hub)}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Internal HTTP server error", "error", err)
		}
	}()

	baseURL := fmt.Sprintf("http://%s", listener.Addr().String())
	logger.Info("Internal HTTP server started for MCP stdio", "url", baseURL)
	return baseURL, httpServer, nil
}

// runStdioMCPWithInternalServer runs an MCP stdio server. It reuses a server
// already listening on the configured address, otherwise it starts an internal
// HTTP API on a random loopback port and targets that.
func runStdioMCPWithInternalServer(ctx context.Context, cfg *settings.ServerConfig, gameService service.GameService) error {
	baseURL := localURL(cfg.HTTP)
	logger.Info("Checking for external API server", "url", baseURL)

	if externalAPIAvailable(baseURL) {
		logger.Info("MCP stdio server ready (using external HTTP server)", "url", baseURL)
	} else {
		hub := websocket.NewHub(cfg.WebSocket.IsOriginAllowed)
		go hub.Run()
		defer hub.Stop()

		internalURL, httpServer, err := startInternalServer(gameService, hub)
		if err != nil {
			return err
		}
		defer httpServer.Close()

		baseURL = internalURL
		logger.Info("MCP stdio server ready (using internal HTTP server)", "url", baseURL)
	}

	mcpClient := mcp.NewClient(baseURL)
	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil && ctx.Err() == nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
