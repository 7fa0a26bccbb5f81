package provider

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL, key string, opts ...Option) *Client {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return New(baseURL, key, logger, opts...)
}

func TestSubmitValidatesBeforeNetwork(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	t.Run("missing prompt", func(t *testing.T) {
		c := newTestClient(t, srv.URL, "k")
		_, err := c.Submit(context.Background(), GenerationRequest{Prompt: "  "})
		require.ErrorIs(t, err, ErrMissingPrompt)
		assert.EqualValues(t, 0, calls.Load(), "no network call should be attempted")
	})

	t.Run("missing credential", func(t *testing.T) {
		c := newTestClient(t, srv.URL, "")
		_, err := c.Submit(context.Background(), GenerationRequest{Prompt: "a cat"})
		require.ErrorIs(t, err, ErrMissingCredential)
		assert.EqualValues(t, 0, calls.Load(), "no network call should be attempted")
	})
}

func TestSubmitSendsCredentialAndBody(t *testing.T) {
	var gotAuth string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode submit body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"url":"https://x/a.png"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, "sk-test")
	_, err := c.Submit(context.Background(), GenerationRequest{Prompt: "a cat", AspectRatio: "16:9"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "a cat", gotBody["prompt"])
	assert.Equal(t, "16:9", gotBody["aspect_ratio"])
}

func TestSubmitQuotaExceeded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"message":"slow down"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, "k")
	_, err := c.Submit(context.Background(), GenerationRequest{Prompt: "a cat"})

	var quotaErr *QuotaError
	require.ErrorAs(t, err, &quotaErr)
	assert.Contains(t, quotaErr.Body, "slow down")
}

func TestSubmitProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream on fire"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, "k")
	_, err := c.Submit(context.Background(), GenerationRequest{Prompt: "a cat"})

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusBadGateway, provErr.StatusCode)
	assert.Equal(t, "upstream on fire", provErr.Body)
}

func TestSubmitClassifiesAsync(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"task_id":"T1","status":"CREATED"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, "k")
	sub, err := c.Submit(context.Background(), GenerationRequest{Prompt: "a cat"})
	require.NoError(t, err)

	require.NotNil(t, sub.Task)
	assert.Equal(t, "T1", sub.Task.TaskID)
	assert.Nil(t, sub.Result)
}

func TestSubmitClassifiesSync(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"url field", `{"url":"https://x/a.png"}`, "https://x/a.png"},
		{"image_url field", `{"image_url":"https://x/b.png"}`, "https://x/b.png"},
		{"neither shape", `{"note":"nothing to see"}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := newTestClient(t, srv.URL, "k")
			sub, err := c.Submit(context.Background(), GenerationRequest{Prompt: "a cat"})
			require.NoError(t, err)

			require.NotNil(t, sub.Result)
			assert.Nil(t, sub.Task)
			assert.Equal(t, tt.want, sub.Result.URL)
		})
	}
}

func TestSubmitTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := newTestClient(t, srv.URL, "k", WithSubmitTimeout(30*time.Millisecond))

	start := time.Now()
	_, err := c.Submit(context.Background(), GenerationRequest{Prompt: "a cat"})
	elapsed := time.Since(start)

	var timeoutErr *SubmitTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Less(t, elapsed, 2*time.Second, "call must be aborted at the deadline")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcdef", 2))
}
