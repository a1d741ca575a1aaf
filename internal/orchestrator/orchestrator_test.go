package orchestrator

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/4j17h/resourcer/internal/fetch"
	"github.com/4j17h/resourcer/internal/logging"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><script src="/static/chunks/runtime.js"></script></body></html>`)
	})
	mux.HandleFunc("/static/chunks/runtime.js", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `__webpack_require__.u = function(id) { return "static/chunks/" + id + ".js"; };`+
			`(window.webpackChunk=window.webpackChunk||[]).push([["42"],{}]);`)
	})
	mux.HandleFunc("/static/chunks/42.js", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "console.log(42);\n//# sourceMappingURL=42.js.map\n")
	})
	mux.HandleFunc("/static/chunks/42.js.map", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"version":3,"sources":["webpack:///./src/answer.js"],"sourcesContent":["export const answer = 42;"]}`)
	})
	return httptest.NewServer(mux)
}

func TestDump_EndToEnd(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	client, err := fetch.New(fetch.Options{})
	require.NoError(t, err)
	fsys := afero.NewMemMapFs()

	result, err := Dump(context.Background(), logging.Default(), client, fsys, srv.URL+"/", Options{
		Concurrency:   2,
		RetryAttempts: 1,
		OutDir:        "/out",
	})
	require.NoError(t, err)
	require.Len(t, result.Outcomes, 1)
	require.False(t, result.Outcomes[0].Failed)
	require.Equal(t, 1, result.Outcomes[0].SourcesWritten)

	content, err := afero.ReadFile(fsys, "/out/static/chunks/42.js")
	require.NoError(t, err)
	require.Contains(t, string(content), "console.log(42)")

	source, err := afero.ReadFile(fsys, "/out/src/answer.js")
	require.NoError(t, err)
	require.Equal(t, "export const answer = 42;", string(source))

	_, err = afero.ReadFile(fsys, "/out/static/chunks/42.js.map")
	require.NoError(t, err)
}

func TestDump_DryRunSkipsDownload(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	client, err := fetch.New(fetch.Options{})
	require.NoError(t, err)
	fsys := afero.NewMemMapFs()

	result, err := Dump(context.Background(), logging.Default(), client, fsys, srv.URL+"/", Options{
		Concurrency: 2,
		OutDir:      "/out",
		DryRun:      true,
	})
	require.NoError(t, err)
	require.True(t, result.DryRun)
	require.NotEmpty(t, result.Chunks)

	_, err = afero.ReadFile(fsys, "/out/static/chunks/42.js")
	require.Error(t, err, "dry-run must not write any chunk to disk")
}

func TestDumpLocal_ResolvesSourceMapRelativeToInputFile(t *testing.T) {
	tmp := t.TempDir()
	jsPath := filepath.Join(tmp, "app.js")
	require.NoError(t, os.WriteFile(jsPath, []byte("console.log(1);\n//# sourceMappingURL=app.js.map\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "app.js.map"),
		[]byte(`{"version":3,"sources":["webpack:///./src/answer.js"],"sourcesContent":["export const answer = 42;"]}`), 0o644))

	client, err := fetch.New(fetch.Options{})
	require.NoError(t, err)
	fsys := afero.NewMemMapFs()

	result, err := DumpLocal(context.Background(), logging.Default(), client, fsys, jsPath, Options{OutDir: "/out"})
	require.NoError(t, err)
	require.Len(t, result.Outcomes, 1)
	require.False(t, result.Outcomes[0].Failed)
	require.Equal(t, 1, result.Outcomes[0].SourcesWritten)

	content, err := afero.ReadFile(fsys, "/out/app.js")
	require.NoError(t, err)
	require.Contains(t, string(content), "console.log(1)")

	source, err := afero.ReadFile(fsys, "/out/src/answer.js")
	require.NoError(t, err)
	require.Equal(t, "export const answer = 42;", string(source))
}

func TestDumpLocal_DryRunListsMapRefsWithoutWriting(t *testing.T) {
	tmp := t.TempDir()
	jsPath := filepath.Join(tmp, "app.js")
	require.NoError(t, os.WriteFile(jsPath, []byte("//# sourceMappingURL=app.js.map\n"), 0o644))

	client, err := fetch.New(fetch.Options{})
	require.NoError(t, err)
	fsys := afero.NewMemMapFs()

	result, err := DumpLocal(context.Background(), logging.Default(), client, fsys, jsPath, Options{OutDir: "/out", DryRun: true})
	require.NoError(t, err)
	require.True(t, result.DryRun)
	require.Equal(t, []string{"app.js.map"}, result.Chunks)

	_, err = afero.ReadFile(fsys, "/out/app.js")
	require.Error(t, err, "dry-run must not write the chunk to disk")
}
