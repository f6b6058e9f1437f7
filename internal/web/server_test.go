package web_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/vadimtrunov/cinescope/internal/config"
	"github.com/vadimtrunov/cinescope/internal/web"
)

func startServer(t *testing.T, srv *web.Server) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	select {
	case <-srv.Ready():
	case err := <-errCh:
		cancel()
		t.Fatalf("server failed to start: %v", err)
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("server did not become ready within timeout")
	}
	return cancel, errCh
}

func waitStopped(t *testing.T, errCh <-chan error) {
	t.Helper()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("server returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop within timeout")
	}
}

func TestServer_StartAndStop(t *testing.T) {
	t.Parallel()
	srv := web.NewServer(config.ServerConfig{Addr: "127.0.0.1:0"}, newTestRouter(newFakeProvider()), discardLogger())

	cancel, errCh := startServer(t, srv)
	cancel()
	waitStopped(t, errCh)
}

func TestServer_AddrBeforeStart(t *testing.T) {
	t.Parallel()
	srv := web.NewServer(config.ServerConfig{Addr: "127.0.0.1:0"}, http.NotFoundHandler(), nil)

	if addr := srv.Addr(); addr != "" {
		t.Errorf("expected empty addr before start, got %q", addr)
	}
}

func TestServer_StartTwice(t *testing.T) {
	t.Parallel()
	srv := web.NewServer(config.ServerConfig{Addr: "127.0.0.1:0"}, http.NotFoundHandler(), discardLogger())

	cancel, errCh := startServer(t, srv)
	defer func() {
		cancel()
		waitStopped(t, errCh)
	}()

	if err := srv.Start(context.Background()); err == nil {
		t.Error("expected error on second Start")
	}
}

func TestServer_HealthEndpoint(t *testing.T) {
	t.Parallel()
	srv := web.NewServer(config.ServerConfig{Addr: "127.0.0.1:0"}, newTestRouter(newFakeProvider()), discardLogger())

	cancel, errCh := startServer(t, srv)
	defer func() {
		cancel()
		waitStopped(t, errCh)
	}()

	addr := srv.Addr()
	if addr == "" {
		t.Fatal("server address should not be empty after start")
	}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, fmt.Sprintf("http://%s/health", addr), http.NoBody)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req) //nolint:gosec // test-only ephemeral URL
	if err != nil {
		t.Fatalf("health check failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestNewServer_NilHandlerPanics(t *testing.T) {
	t.Parallel()
	defer func() {
		if recover() == nil {
			t.Error("expected panic for nil handler")
		}
	}()
	web.NewServer(config.ServerConfig{Addr: ":0"}, nil, nil)
}

func TestServer_WriteTimeoutFromConfig(t *testing.T) {
	t.Parallel()

	slow := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte("late"))
	})

	tests := []struct {
		name     string
		timeout  time.Duration
		wantBody bool
	}{
		{"generous", 5 * time.Second, true},
		{"too short", 50 * time.Millisecond, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := web.NewServer(config.ServerConfig{Addr: "127.0.0.1:0", WriteTimeout: tt.timeout}, slow, discardLogger())
			cancel, errCh := startServer(t, srv)
			defer func() {
				cancel()
				waitStopped(t, errCh)
			}()

			req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "http://"+srv.Addr()+"/", http.NoBody)
			if err != nil {
				t.Fatal(err)
			}
			got := false
			resp, err := http.DefaultClient.Do(req) //nolint:gosec // test-only ephemeral URL
			if err == nil {
				body, readErr := io.ReadAll(resp.Body)
				resp.Body.Close()
				got = readErr == nil && resp.StatusCode == http.StatusOK && string(body) == "late"
			}
			if got != tt.wantBody {
				t.Errorf("full response = %v, want %v (err %v)", got, tt.wantBody, err)
			}
		})
	}
}
