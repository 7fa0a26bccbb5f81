package api

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/seantiz/prism/internal/config"
	"github.com/seantiz/prism/internal/provider"
	"github.com/seantiz/prism/internal/store"
)

// newTestServer builds a Server backed by an in-memory journal and a
// provider client pointed at providerURL with a fast poll schedule.
func newTestServer(t *testing.T, providerURL, key string) *Server {
	t.Helper()
	st, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	client := provider.New(providerURL, key, logger,
		provider.WithSubmitTimeout(time.Second),
		provider.WithPollSchedule(5, time.Millisecond),
	)

	cfg := config.Config{
		ListenAddr:  ":0",
		StaticDir:   t.TempDir(),
		ProviderKey: key,
		ProviderURL: providerURL,
	}
	return NewServer(cfg, st, client, logger)
}

func TestPanicRecovery(t *testing.T) {
	srv := newTestServer(t, "http://provider.invalid", "k")
	srv.Router().Get("/panic", func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	})

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/panic")
	if err != nil {
		t.Fatalf("GET /panic: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
}

func TestCORSHeaders(t *testing.T) {
	srv := newTestServer(t, "http://provider.invalid", "k")

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	req, _ := http.NewRequest("OPTIONS", ts.URL+"/api/health", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS /api/health: %v", err)
	}
	defer resp.Body.Close()

	if v := resp.Header.Get("Access-Control-Allow-Origin"); v != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", v, "*")
	}
}
