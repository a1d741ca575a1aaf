package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFetch_SchemeGating(t *testing.T) {
	c, err := New(Options{})
	require.NoError(t, err)

	_, err = c.Fetch(context.Background(), "ftp://example.com/a.js")
	require.Error(t, err)
}

func TestFetch_HttpStatusIsTerminal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c, err := New(Options{})
	require.NoError(t, err)

	var attempts int32
	wrapped := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusNotFound)
	})
	srv2 := httptest.NewServer(wrapped)
	defer srv2.Close()

	_, err = c.FetchWithRetries(context.Background(), srv2.URL, 3)
	require.Error(t, err)
	require.Equal(t, int32(1), atomic.LoadInt32(&attempts), "4xx must not be retried")
}

func TestFetch_RetriesOnNetworkError(t *testing.T) {
	c, err := New(Options{})
	require.NoError(t, err)

	// Port 1 connections fail immediately; exercises the retry loop without
	// depending on network flakiness.
	_, err = c.FetchWithRetries(context.Background(), "http://127.0.0.1:1/nope", 2)
	require.Error(t, err)
}

func TestFetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("console.log(1)"))
	}))
	defer srv.Close()

	c, err := New(Options{})
	require.NoError(t, err)

	body, err := c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "console.log(1)", body)
}

func TestHead_ReportsMethodNotAllowedWithoutError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := New(Options{})
	require.NoError(t, err)

	status, err := c.Head(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, http.StatusMethodNotAllowed, status)
}
