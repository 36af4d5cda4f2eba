// main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/anmicius0/lims-batch-composer/internal/client"
	"github.com/anmicius0/lims-batch-composer/internal/config"
	"github.com/anmicius0/lims-batch-composer/internal/server"
	"github.com/anmicius0/lims-batch-composer/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	// Initialize logging first
	if err := utils.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer utils.Sync()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		utils.Logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	utils.Logger.Info("Configuration loaded successfully")

	// Metrics registry served on /metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := utils.NewMetrics(registry)

	// Initialize the backend client and session manager
	limsClient := client.NewLIMSClient(appConfig.LIMSURL, appConfig.LIMSToken, appConfig.RequestTimeout)
	sessionStore := server.NewSessionStore()
	sessions := server.NewSessionManager(appConfig, sessionStore, limsClient, metrics)

	// Sweep idle wizards while the server runs
	evictCtx, stopEviction := context.WithCancel(context.Background())
	go sessions.RunEviction(evictCtx, config.SessionSweepInterval)

	// Setup HTTP server
	router := server.NewRouter(appConfig, sessionStore, sessions, registry)
	startServer(router, appConfig)

	// Unmount every wizard before releasing the backend connection
	stopEviction()
	sessions.Shutdown()
	if closer, ok := limsClient.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			utils.Logger.Warn("Failed to close LIMS client", zap.Error(err))
		}
	}
}

// startServer binds the HTTP server and blocks until it has shut down after a signal.
// In-flight requests have finished (or the shutdown timeout expired) when it returns.
func startServer(router http.Handler, appConfig *config.Config) {
	portStr := strconv.Itoa(appConfig.Port)
	addr := fmt.Sprintf("%s:%s", appConfig.APIHost, portStr)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  config.DefaultReadTimeout,
		WriteTimeout: config.DefaultWriteTimeout,
		IdleTimeout:  config.DefaultIdleTimeout,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		utils.Logger.Fatal("Server failed to start", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	stop := make(chan struct{})
	go func() {
		sig := <-sigChan
		utils.Logger.Info("Shutdown signal received", zap.String(utils.FieldSignal, sig.String()))
		close(stop)
	}()

	utils.Logger.Info("Server starting",
		zap.String(utils.FieldHost, appConfig.APIHost),
		zap.String(utils.FieldPort, portStr))

	// Shutdown errors are logged, not fatal, so the caller still unmounts sessions
	if err := serve(httpServer, ln, stop, config.DefaultShutdownTimeout); err != nil {
		utils.Logger.Error("Server shutdown error", zap.Error(err))
	}

	utils.Logger.Info("Server stopped")
}

// serve runs httpServer on ln until stop is closed, then shuts it down gracefully.
// It returns only after Serve has returned and in-flight handlers have drained.
func serve(httpServer *http.Server, ln net.Listener, stop <-chan struct{}, timeout time.Duration) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	shutdownErr := httpServer.Shutdown(ctx)

	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	if shutdownErr != nil {
		return fmt.Errorf("shutdown: %w", shutdownErr)
	}
	return nil
}
