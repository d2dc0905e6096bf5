package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Brownie44l1/staticd/internal/config"
	"github.com/Brownie44l1/staticd/internal/server"
)

const shutdownTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "", "path to a .toml or .yaml config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	level, err := server.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := server.NewLogger(os.Stdout, level)

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", server.Field{Key: "error", Value: err})
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("server socket created", server.Field{Key: "addr", Value: cfg.Addr})
	ln, err := srv.Listen(ctx, cfg.Addr)
	if err != nil {
		os.Exit(1)
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
	case err := <-errc:
		if !errors.Is(err, server.ErrServerClosed) {
			logger.Error("server stopped", server.Field{Key: "error", Value: err})
			os.Exit(1)
		}
	}
	stop()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", server.Field{Key: "error", Value: err})
		os.Exit(1)
	}

	stats := srv.Stats()
	fmt.Printf("\nFinal Stats:\n")
	fmt.Printf("   Connections: %d\n", stats.ConnectionsTotal)
	fmt.Printf("   200 OK: %d\n", stats.ResponsesOK)
	fmt.Printf("   404 Not Found: %d\n", stats.NotFound)
	fmt.Printf("   400 Bad Request: %d\n", stats.BadRequest)
	fmt.Printf("   Aborted: %d\n", stats.Aborted)
	fmt.Printf("   Bytes Sent: %d\n", stats.BytesSent)
	fmt.Printf("   Average Latency: %s\n", stats.AverageLatency)
}
