package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/4j17h/resourcer/internal/fetch"
)

// S6 from spec.md §8.
func TestMany_MixedOutcomes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a":
			w.Write([]byte("A"))
		case "/b":
			w.Write([]byte("B"))
		case "/fail":
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	client, err := fetch.New(fetch.Options{})
	require.NoError(t, err)

	urls := []string{
		srv.URL + "/a",
		srv.URL + "/b",
		srv.URL + "/fail",
		"http://invalid-host.invalid.test/x",
	}

	results := Many(context.Background(), client, urls, Config{Concurrency: 2, RetryAttempts: 2})
	require.Len(t, results, 4)

	var successes, failures int
	gotURLs := make(map[string]bool)
	for _, r := range results {
		gotURLs[r.URL] = true
		if r.Error == nil {
			successes++
			require.Contains(t, []string{"A", "B"}, r.Content)
		} else {
			failures++
		}
	}
	require.Equal(t, 2, successes)
	require.Equal(t, 2, failures)
	for _, u := range urls {
		require.True(t, gotURLs[u], "every submitted url must appear exactly once: %s", u)
	}
}

func TestDedup_PreservesOrder(t *testing.T) {
	in := []string{"a", "b", "a", "c", "b"}
	require.Equal(t, []string{"a", "b", "c"}, Dedup(in))
}

func TestValidateURLs_FiltersNonSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		case "/head-not-allowed":
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	client, err := fetch.New(fetch.Options{})
	require.NoError(t, err)

	urls := []string{srv.URL + "/ok", srv.URL + "/missing", srv.URL + "/head-not-allowed"}
	out := ValidateURLs(context.Background(), client, urls, 2)
	require.ElementsMatch(t, []string{srv.URL + "/ok", srv.URL + "/head-not-allowed"}, out)
}
