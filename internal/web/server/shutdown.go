package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// ShutdownHook runs during graceful shutdown, after the server stops
// accepting requests
type ShutdownHook func(ctx context.Context) error

// ShutdownConfig holds graceful shutdown configuration
type ShutdownConfig struct {
	// Timeout bounds the whole shutdown
	Timeout time.Duration
	// Signals trigger shutdown (default: SIGINT, SIGTERM)
	Signals []os.Signal
}

// DefaultShutdownConfig returns default shutdown configuration
func DefaultShutdownConfig() ShutdownConfig {
	return ShutdownConfig{
		Timeout: 30 * time.Second,
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
	}
}

// GracefulShutdown runs a server until a signal or context cancellation,
// then drains it and runs the registered hooks
type GracefulShutdown struct {
	server  *Server
	timeout time.Duration
	signals []os.Signal
	logger  *zap.Logger

	mu    sync.Mutex
	hooks []ShutdownHook
	once  sync.Once
	done  chan struct{}
	err   error
}

// NewGracefulShutdown creates a shutdown handler for server
func NewGracefulShutdown(server *Server, cfg ShutdownConfig) *GracefulShutdown {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultShutdownConfig().Timeout
	}
	if len(cfg.Signals) == 0 {
		cfg.Signals = DefaultShutdownConfig().Signals
	}
	return &GracefulShutdown{
		server:  server,
		timeout: cfg.Timeout,
		signals: cfg.Signals,
		logger:  server.logger,
		done:    make(chan struct{}),
	}
}

// RegisterHook adds a hook. Hooks run in registration order.
func (gs *GracefulShutdown) RegisterHook(hook ShutdownHook) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.hooks = append(gs.hooks, hook)
}

// Run serves until ctx is cancelled or a configured signal arrives, then
// shuts down. A serve failure is returned without running the hooks.
func (gs *GracefulShutdown) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, gs.signals...)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- gs.server.Serve()
	}()

	select {
	case <-ctx.Done():
		gs.logger.Info("shutdown requested", zap.Duration("timeout", gs.timeout))
		return gs.Shutdown()
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	}
}

// Shutdown drains the server and runs the hooks once. Failing hooks are
// logged and do not stop later hooks.
func (gs *GracefulShutdown) Shutdown() error {
	gs.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), gs.timeout)
		defer cancel()

		if err := gs.server.Shutdown(ctx); err != nil {
			gs.err = fmt.Errorf("server shutdown error: %w", err)
			gs.logger.Error("server shutdown failed", zap.Error(err))
		}

		gs.mu.Lock()
		hooks := make([]ShutdownHook, len(gs.hooks))
		copy(hooks, gs.hooks)
		gs.mu.Unlock()

		for i, hook := range hooks {
			if err := hook(ctx); err != nil {
				gs.logger.Warn("shutdown hook failed", zap.Int("hook", i), zap.Error(err))
			}
		}
		gs.logger.Info("shutdown complete")
		close(gs.done)
	})

	<-gs.done
	return gs.err
}

// Wait blocks until shutdown is complete
func (gs *GracefulShutdown) Wait() error {
	<-gs.done
	return gs.err
}
