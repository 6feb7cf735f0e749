// Package main provides the server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/osa030/welcomewall/internal/api/httpapi"
	"github.com/osa030/welcomewall/internal/app/board"
	"github.com/osa030/welcomewall/internal/infra/config"
	"github.com/osa030/welcomewall/internal/infra/feed"
	"github.com/osa030/welcomewall/internal/infra/logger"
)

var (
	app        = kingpin.New("welcomewall-server", "welcomewall arrival dashboard server")
	configPath = app.Flag("config", "Path to config file").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	loggerConfig := logger.Config{Output: "stdout", Level: "info"}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Server error: %v", err)
		os.Exit(1)
	}
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	feedClient, err := feed.New(feed.Config{URL: cfg.Feed.URL})
	if err != nil {
		return fmt.Errorf("failed to create feed client: %w", err)
	}

	boardMgr, err := board.NewManager(cfg, feedClient)
	if err != nil {
		return fmt.Errorf("failed to create board manager: %w", err)
	}
	boardMgr.Start()

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: h2c.NewHandler(httpapi.SetupRoutes(boardMgr), &http2.Server{}),
	}

	serverErrCh := make(chan error, 1)
	go func() {
		zlog.Info().Msgf("Starting server: addr=%s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	executeHooks(cfg.Server.Hooks.OnStarted, "on_started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case err := <-serverErrCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close the board first so no side effect fires mid-shutdown.
	boardMgr.Close()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	zlog.Info().Msg("Server stopped")

	executeHooks(cfg.Server.Hooks.OnStopped, "on_stopped")

	return nil
}

// executeHooks runs lifecycle hook commands sequentially.
// Hook failures are logged, never fatal.
func executeHooks(commands []string, name string) {
	for _, command := range commands {
		zlog.Info().Msgf("Executing %s hook: %s", name, command)
		out, err := exec.Command("sh", "-c", command).CombinedOutput()
		if err != nil {
			zlog.Error().Msgf("Hook %s failed: %v (output: %s)", name, err, string(out))
		}
	}
}
