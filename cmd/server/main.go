/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the fleet loan scheduler server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags and optional TOML config
  2. Initialize SQLite store
  3. Create API handler and router
  4. Start the weekly runner (if enabled)
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080; overrides config file)
  -db      SQLite database path (default: fleet.db; ":memory:" works)
  -config  TOML config file path (optional)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the weekly runner
  2. Stop accepting new connections, drain (30s timeout)
  3. Close the database

SEE ALSO:
  - config/config.go: file format
  - api/server.go: router configuration
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fleetline/loan-scheduler/api"
	"github.com/fleetline/loan-scheduler/config"
	"github.com/fleetline/loan-scheduler/store/sqlite"
)

func main() {
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	configPath := flag.String("config", "", "TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Server.DBPath = *dbPath
	}

	store, err := sqlite.New(cfg.Server.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	handler := api.NewHandler(store)
	handler.Options = cfg.Options()
	router := api.NewRouter(handler)

	runner := api.NewWeeklyRunner(handler, cfg.Offices())
	runner.Enabled = cfg.Runner.Enabled
	if cfg.Runner.CheckIntervalHours > 0 {
		runner.CheckInterval = time.Duration(cfg.Runner.CheckIntervalHours) * time.Hour
	}
	runner.Start()
	defer runner.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("[Server] Listening on http://localhost:%d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server stopped")
}
