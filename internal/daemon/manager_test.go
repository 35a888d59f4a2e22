// SPDX-License-Identifier: MIT

package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/goleak"

	"github.com/checkings/checkings/internal/config"
	"github.com/checkings/checkings/internal/log"
)

func testDeps(handler http.Handler) Deps {
	return Deps{
		Logger:     log.WithComponent("test"),
		Config:     config.AppConfig{},
		APIHandler: handler,
	}
}

func testServerConfig(addr string) ServerConfig {
	return ServerConfig{
		ListenAddr:      addr,
		ReadTimeout:     1 * time.Second,
		WriteTimeout:    1 * time.Second,
		IdleTimeout:     10 * time.Second,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: 2 * time.Second,
	}
}

func reserveListenAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve listen addr: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()
	return addr
}

func waitForListen(t *testing.T, addr string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 50*time.Millisecond)
		if err == nil {
			_ = conn.Close()
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("%s never started listening", addr)
}

// startManager runs mgr.Start in the background and waits until addr
// accepts connections. The returned stop cancels the manager and hands
// back whatever Start returned.
func startManager(t *testing.T, mgr Manager, addr string) (stop func() error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() { errs <- mgr.Start(ctx) }()
	waitForListen(t, addr)

	return func() error {
		cancel()
		select {
		case err := <-errs:
			return err
		case <-time.After(5 * time.Second):
			t.Fatal("Start() did not return after context cancellation")
			return nil
		}
	}
}

// testClient never reuses connections, so no client goroutine outlives
// the request and trips the leak detector.
func testClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{DisableKeepAlives: true},
	}
}

func TestNewManager_Validation(t *testing.T) {
	tests := []struct {
		name    string
		deps    Deps
		wantErr error
	}{
		{
			name: "complete deps",
			deps: testDeps(http.NotFoundHandler()),
		},
		{
			name:    "missing logger",
			deps:    Deps{Logger: zerolog.Nop(), APIHandler: http.NotFoundHandler()},
			wantErr: ErrMissingLogger,
		},
		{
			name:    "missing API handler",
			deps:    testDeps(nil),
			wantErr: ErrMissingAPIHandler,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr, err := NewManager(testServerConfig("127.0.0.1:0"), tt.deps)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewManager() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewManager() error = %v", err)
			}
			if mgr == nil {
				t.Fatal("NewManager() returned nil manager")
			}
		})
	}
}

func TestManager_StartStop_OK(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	cfg := testServerConfig(reserveListenAddr(t))
	mgr, err := NewManager(cfg, testDeps(handler))
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	stop := startManager(t, mgr, cfg.ListenAddr)

	resp, err := testClient().Get("http://" + cfg.ListenAddr)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	if err := stop(); err != nil {
		t.Errorf("Start() error = %v", err)
	}
}

func TestManager_ShutdownHooks_LIFO(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	cfg := testServerConfig(reserveListenAddr(t))
	mgr, err := NewManager(cfg, testDeps(http.NotFoundHandler()))
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	var order []string
	mgr.RegisterShutdownHook("first", func(context.Context) error {
		order = append(order, "first")
		return nil
	})
	mgr.RegisterShutdownHook("second", func(context.Context) error {
		order = append(order, "second")
		return nil
	})
	mgr.RegisterShutdownHook("third", func(context.Context) error {
		order = append(order, "third")
		return errors.New("third failed")
	})

	stop := startManager(t, mgr, cfg.ListenAddr)

	err = stop()
	if err == nil {
		t.Fatal("expected hook failure to surface from Start(), got nil")
	}
	if !strings.Contains(err.Error(), "hook third") {
		t.Errorf("Start() error = %v, want error naming hook third", err)
	}

	want := []string{"third", "second", "first"}
	if len(order) != len(want) {
		t.Fatalf("hook order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("hook order = %v, want %v", order, want)
		}
	}
}

func TestManager_Shutdown_TimesOut(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	requestStarted := make(chan struct{})
	releaseHandler := make(chan struct{})
	handler := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-requestStarted:
		default:
			close(requestStarted)
		}
		select {
		case <-r.Context().Done():
		case <-releaseHandler:
		}
	})

	cfg := testServerConfig(reserveListenAddr(t))
	cfg.ShutdownTimeout = 100 * time.Millisecond

	mgr, err := NewManager(cfg, testDeps(handler))
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	stop := startManager(t, mgr, cfg.ListenAddr)

	requestDone := make(chan struct{})
	go func() {
		defer close(requestDone)
		req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "http://"+cfg.ListenAddr, nil)
		resp, err := testClient().Do(req)
		if err == nil && resp != nil {
			_ = resp.Body.Close()
		}
	}()

	select {
	case <-requestStarted:
		// Request is in flight; shutdown should now hit the timeout path.
	case <-time.After(2 * time.Second):
		t.Fatal("expected in-flight request before shutdown")
	}

	err = stop()
	if err == nil {
		t.Fatal("expected shutdown timeout error, got nil")
	}
	if !strings.Contains(err.Error(), "shutdown errors") && !strings.Contains(err.Error(), "context deadline exceeded") {
		t.Fatalf("unexpected shutdown error: %v", err)
	}

	close(releaseHandler)

	select {
	case <-requestDone:
	case <-time.After(2 * time.Second):
		t.Fatal("blocked request did not terminate after shutdown")
	}
}

func TestManager_Shutdown_NotStarted(t *testing.T) {
	mgr, err := NewManager(testServerConfig("127.0.0.1:0"), testDeps(http.NotFoundHandler()))
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	err = mgr.Shutdown(context.Background())
	if !errors.Is(err, ErrManagerNotStarted) {
		t.Errorf("Shutdown() error = %v, want %v", err, ErrManagerNotStarted)
	}
}

func TestManager_WithMetricsListener(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var metricsHits atomic.Int32
	deps := testDeps(http.NotFoundHandler())
	deps.MetricsHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		metricsHits.Add(1)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("# HELP test_metric\n"))
	})
	deps.MetricsAddr = reserveListenAddr(t)

	cfg := testServerConfig(reserveListenAddr(t))
	mgr, err := NewManager(cfg, deps)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	stop := startManager(t, mgr, cfg.ListenAddr)
	waitForListen(t, deps.MetricsAddr)

	resp, err := testClient().Get("http://" + deps.MetricsAddr + "/metrics")
	if err != nil {
		t.Fatalf("metrics request failed: %v", err)
	}
	_ = resp.Body.Close()
	if metricsHits.Load() == 0 {
		t.Error("metrics handler was not hit")
	}

	if err := stop(); err != nil {
		t.Errorf("Start() error = %v", err)
	}
}

func TestManager_PropagatesListenErrors(t *testing.T) {
	// Occupy a port so the manager cannot bind it.
	testServer := httptest.NewServer(http.NotFoundHandler())
	defer testServer.Close()

	cfg := testServerConfig(testServer.Listener.Addr().String())
	cfg.ShutdownTimeout = 1 * time.Second

	mgr, err := NewManager(cfg, testDeps(http.NotFoundHandler()))
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := mgr.Start(ctx); err == nil {
		t.Error("Start() expected error for port conflict, got nil")
	}
}

func TestManager_StartTwice(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	cfg := testServerConfig(reserveListenAddr(t))
	mgr, err := NewManager(cfg, testDeps(http.NotFoundHandler()))
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	stop := startManager(t, mgr, cfg.ListenAddr)

	if err := mgr.Start(context.Background()); err == nil {
		t.Error("second Start() expected error, got nil")
	}

	if err := stop(); err != nil {
		t.Errorf("Start() error = %v", err)
	}
}
