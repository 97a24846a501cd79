package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/conduit-lang/recordtree/internal/config"
)

func testConfig() config.ServerConfig {
	cfg := config.Default().Server
	cfg.Host = "127.0.0.1"
	cfg.Port = 0
	return cfg
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
}

func TestNew_NilHandler(t *testing.T) {
	_, err := New(testConfig(), nil, nil)
	assert.Error(t, err)
}

func TestServer_ServeAndShutdown(t *testing.T) {
	s, err := New(testConfig(), okHandler(), nil)
	require.NoError(t, err)
	require.NoError(t, s.Listen())
	assert.NotEqual(t, "127.0.0.1:0", s.Addr())

	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve() }()

	resp, err := http.Get("http://" + s.Addr() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
	assert.NoError(t, <-errCh)
}

func TestGracefulShutdown_RunUntilCancelled(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s, err := New(testConfig(), okHandler(), zap.New(core))
	require.NoError(t, err)
	require.NoError(t, s.Listen())

	gs := NewGracefulShutdown(s, ShutdownConfig{Timeout: 5 * time.Second})
	var order []int
	gs.RegisterHook(func(ctx context.Context) error {
		order = append(order, 1)
		return errors.New("cache close failed")
	})
	gs.RegisterHook(func(ctx context.Context) error {
		order = append(order, 2)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gs.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + s.Addr() + "/")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown did not complete")
	}

	assert.Equal(t, []int{1, 2}, order)
	assert.Equal(t, 1, logs.FilterMessage("shutdown hook failed").Len())
	assert.NoError(t, gs.Wait())
	// a second shutdown is a no-op
	assert.NoError(t, gs.Shutdown())
}

func TestGracefulShutdown_ListenFailure(t *testing.T) {
	first, err := New(testConfig(), okHandler(), nil)
	require.NoError(t, err)
	require.NoError(t, first.Listen())
	t.Cleanup(func() { first.listener.Close() })

	cfg := testConfig()
	second, err := New(cfg, okHandler(), nil)
	require.NoError(t, err)
	second.httpServer.Addr = first.Addr()

	err = NewGracefulShutdown(second, DefaultShutdownConfig()).Run(context.Background())
	assert.Error(t, err)
}

func TestDefaultShutdownConfig(t *testing.T) {
	cfg := DefaultShutdownConfig()
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Len(t, cfg.Signals, 2)
}
