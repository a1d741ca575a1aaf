// Package orchestrator wires the full pipeline named in spec.md §2's data
// flow: Fetch -> Analyzer -> candidate URLs -> Download Manager ->
// Source-Map Handling -> Path Reconstructor -> Output. It is the "dump"
// flow's single orchestration procedure (spec.md §2's Control Flow),
// implemented with sourcegraph/conc/pool for panic-safe per-chunk fan-out
// and go.uber.org/multierr so individual chunk/map failures never abort
// the run (spec.md §7's propagation policy).
package orchestrator

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"
	"go.uber.org/multierr"

	"github.com/4j17h/resourcer/internal/analyze"
	"github.com/4j17h/resourcer/internal/download"
	"github.com/4j17h/resourcer/internal/fetch"
	"github.com/4j17h/resourcer/internal/htmlscan"
	"github.com/4j17h/resourcer/internal/logging"
	"github.com/4j17h/resourcer/internal/output"
	"github.com/4j17h/resourcer/internal/pathrecon"
	"github.com/4j17h/resourcer/internal/sourcemap"
	"github.com/4j17h/resourcer/internal/webpack"
	"github.com/4j17h/resourcer/internal/xerrors"
)

// Options configures a Dump run.
type Options struct {
	Concurrency   int
	RetryAttempts int
	MaxFiles      int
	OutDir        string
	DryRun        bool
	Beautify      bool
	EOL           string
}

// ChunkOutcome reports one chunk URL's processing result, surfaced to the
// CLI as a per-URL line.
type ChunkOutcome struct {
	URL            string
	Failed         bool
	Err            error
	SourcesWritten int
	SourcesMissed  int
}

// Result is the overall outcome of a Dump run.
type Result struct {
	OutRoot  string
	Outcomes []ChunkOutcome
	DryRun   bool
	Chunks   []string
}

// Dump runs the full pipeline against pageURL and writes the reconstructed
// tree under Options.OutDir (or out/<page-host> when OutDir is empty),
// per spec.md §6's Output layout.
func Dump(ctx context.Context, log *logging.Logger, client *fetch.Client, fsys afero.Fs, pageURL string, opts Options) (Result, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", xerrors.ErrUrlParse, err)
	}

	outRoot := opts.OutDir
	if outRoot == "" {
		outRoot = filepath.Join("out", base.Host)
	}
	if err := output.EnsureOutputDir(fsys, outRoot); err != nil {
		return Result{}, err
	}

	pageBody, err := client.Fetch(ctx, pageURL)
	if err != nil {
		return Result{}, err
	}

	scripts := htmlscan.ScriptURLs(pageBody, base)

	var manifestJS, runtimeJS string
	var runtimeURL *url.URL
	for _, s := range scripts {
		if htmlscan.IsBuildManifest(s) {
			if body, err := client.Fetch(ctx, s.String()); err == nil {
				manifestJS = body
			}
			continue
		}
	}
	for _, s := range scripts {
		if htmlscan.IsBuildManifest(s) {
			continue
		}
		body, err := client.Fetch(ctx, s.String())
		if err != nil {
			log.Trace("failed to fetch candidate runtime script", "url", s.String(), "err", err)
			continue
		}
		if _, ok := webpack.InferChunkFilenameTemplate(body); ok {
			runtimeJS, runtimeURL = body, s
			break
		}
		if runtimeJS == "" {
			runtimeJS, runtimeURL = body, s
		}
	}

	analysis := webpack.Analyze(runtimeJS, manifestJS)
	chunkURLs := resolveChunkURLs(analysis, runtimeURL)
	chunkURLs = download.Dedup(chunkURLs)

	validated := download.ValidateURLs(ctx, client, chunkURLs, opts.Concurrency)
	if opts.MaxFiles > 0 && len(validated) > opts.MaxFiles {
		log.Info("truncating discovered chunks to max-files", "discovered", len(validated), "max_files", opts.MaxFiles)
		validated = validated[:opts.MaxFiles]
	}

	if opts.DryRun {
		return Result{OutRoot: outRoot, DryRun: true, Chunks: validated}, nil
	}

	results := download.Many(ctx, client, validated, download.Config{
		Concurrency:   opts.Concurrency,
		RetryAttempts: opts.RetryAttempts,
	})

	maxGoroutines := opts.Concurrency
	if maxGoroutines <= 0 {
		maxGoroutines = 1
	}
	outcomes := make([]ChunkOutcome, 0, len(results))
	grp := pool.New().WithMaxGoroutines(maxGoroutines)
	outcomeCh := make(chan ChunkOutcome, len(results))

	for _, r := range results {
		r := r
		grp.Go(func() {
			outcomeCh <- processChunk(ctx, client, fsys, log, outRoot, r, opts)
		})
	}
	grp.Wait()
	close(outcomeCh)
	for oc := range outcomeCh {
		outcomes = append(outcomes, oc)
	}

	return Result{OutRoot: outRoot, Outcomes: outcomes}, nil
}

// resolveChunkURLs turns a RuntimeAnalysis into concrete chunk URL
// strings, dispatching on Kind per spec.md §3's tagged union.
func resolveChunkURLs(analysis webpack.RuntimeAnalysis, runtimeURL *url.URL) []string {
	var base *url.URL
	if runtimeURL != nil {
		base = webpack.DeriveBaseURL(runtimeURL, analysis.PublicPath, analysis.Template.Prefix)
	}

	switch analysis.Kind {
	case webpack.KindBuildManifest:
		return resolveRelative(base, analysis.BuildManifestPaths)
	case webpack.KindTemplate:
		urls := webpack.GenerateChunkURLs(base, analysis.Template, analysis.ChunkIDs)
		return urlsToStrings(urls)
	case webpack.KindMapBased:
		urls := webpack.GenerateURLsFromChunkMaps(base, analysis.ChunkMap, analysis.ChunkIDs)
		return urlsToStrings(urls)
	case webpack.KindLiteralPaths:
		return resolveRelative(base, analysis.LiteralPaths)
	default:
		return nil
	}
}

func resolveRelative(base *url.URL, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if base == nil {
			out = append(out, p)
			continue
		}
		ref, err := url.Parse(p)
		if err != nil {
			continue
		}
		out = append(out, base.ResolveReference(ref).String())
	}
	return out
}

func urlsToStrings(urls []*url.URL) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		out = append(out, u.String())
	}
	return out
}

// processChunk writes one chunk's body, its .map sibling, and every
// recoverable original source, per spec.md §4.4's "Writing original
// sources" and §6's output layout.
func processChunk(ctx context.Context, client *fetch.Client, fsys afero.Fs, log *logging.Logger, outRoot string, r download.Result, opts Options) ChunkOutcome {
	if r.Error != nil {
		return ChunkOutcome{URL: r.URL, Failed: true, Err: r.Error}
	}

	u, err := url.Parse(r.URL)
	if err != nil {
		return ChunkOutcome{URL: r.URL, Failed: true, Err: err}
	}

	relPath := filepath.FromSlash(trimLeadingSlash(u.Path))
	content := r.Content
	if opts.Beautify {
		content = beautify(content)
	}
	content = normalizeEOL(content, opts.EOL)

	dest := filepath.Join(outRoot, relPath)
	if err := output.WriteFile(fsys, dest, []byte(content)); err != nil {
		return ChunkOutcome{URL: r.URL, Failed: true, Err: err}
	}

	outcome := ChunkOutcome{URL: r.URL}

	mapURLs := sourcemap.ExtractURLs(content)
	resolved := sourcemap.ValidateURLs(u, mapURLs)
	for _, mu := range resolved {
		written, missed, err := fetchAndWriteMap(ctx, client, fsys, outRoot, dest, mu)
		outcome.SourcesWritten += written
		outcome.SourcesMissed += missed
		if err != nil {
			log.Trace("non-fatal sourcemap failure", "map_url", mu.String(), "err", err)
		}
	}

	return outcome
}

// fetchAndWriteMap fetches one .map sibling, writes it next to its JS
// origin at "<destination>.map" (spec.md §4.4), parses it, and writes
// every source with available sourcesContent under outRoot via the path
// reconstructor. A parse failure or fetch failure is non-fatal: it is
// reported back as an error for logging but never aborts the chunk.
func fetchAndWriteMap(ctx context.Context, client *fetch.Client, fsys afero.Fs, outRoot, jsDest string, mapURL *url.URL) (written, missed int, err error) {
	body, ferr := client.Fetch(ctx, mapURL.String())
	if ferr != nil {
		return 0, 0, fmt.Errorf("%w: %v", xerrors.ErrSourcemapParse, ferr)
	}
	return parseAndWriteSources(fsys, outRoot, jsDest, []byte(body))
}

// parseAndWriteSources writes mapData next to jsDest as "<jsDest>.map",
// parses it, and writes every source with available sourcesContent under
// outRoot via the path reconstructor. Shared by the remote (fetchAndWriteMap)
// and local (DumpLocal) entry points, since both resolve a map's bytes
// differently but reconstruct sources identically.
func parseAndWriteSources(fsys afero.Fs, outRoot, jsDest string, mapData []byte) (written, missed int, err error) {
	if werr := output.WriteFile(fsys, jsDest+".map", mapData); werr != nil {
		return 0, 0, werr
	}

	m, perr := sourcemap.Parse(mapData)
	if perr != nil {
		return 0, 0, fmt.Errorf("%w: %v", xerrors.ErrSourcemapParse, perr)
	}

	outcomes := pathrecon.ReconstructAll(outRoot, m.SourceRoot(), m.AllSources())
	var writeErrs error
	for _, oc := range outcomes {
		if oc.Err != nil {
			writeErrs = multierr.Append(writeErrs, oc.Err)
			continue
		}
		content, ok := m.SourceContents(oc.Index)
		if !ok {
			missed++
			continue
		}
		if werr := output.WriteFile(fsys, oc.Abs, []byte(content)); werr != nil {
			writeErrs = multierr.Append(writeErrs, werr)
			continue
		}
		written++
	}

	return written, missed, writeErrs
}

// DumpLocal runs the pipeline's map/path/output stages against a local JS
// file instead of a page URL, backing `dump --input FILE` (spec.md §6: dump
// accepts --url xor --input). Unlike Dump, there is no page to scan for
// further chunks: jsPath is itself the one chunk to materialize, and its
// sourceMappingURL reference(s) are resolved relative to its directory,
// accepting bare relative paths, file:// URLs, or absolute http(s) URLs
// (internal/analyze.ResolveMapRef).
func DumpLocal(ctx context.Context, log *logging.Logger, client *fetch.Client, fsys afero.Fs, jsPath string, opts Options) (Result, error) {
	doc, mapRefs, err := analyze.LocalJSWithSourcemaps(jsPath)
	if err != nil {
		return Result{}, err
	}

	outRoot := opts.OutDir
	if outRoot == "" {
		outRoot = filepath.Join("out", filepath.Base(jsPath))
	}
	if err := output.EnsureOutputDir(fsys, outRoot); err != nil {
		return Result{}, err
	}

	if opts.DryRun {
		return Result{OutRoot: outRoot, DryRun: true, Chunks: mapRefs}, nil
	}

	content := doc.Content
	if opts.Beautify {
		content = beautify(content)
	}
	content = normalizeEOL(content, opts.EOL)

	dest := filepath.Join(outRoot, filepath.Base(jsPath))
	if err := output.WriteFile(fsys, dest, []byte(content)); err != nil {
		return Result{}, err
	}

	outcome := ChunkOutcome{URL: jsPath}
	baseDir := filepath.Dir(jsPath)
	for _, ref := range mapRefs {
		data, rerr := analyze.ResolveMapRef(ctx, client, baseDir, ref)
		if rerr != nil {
			log.Trace("non-fatal sourcemap failure", "map_ref", ref, "err", rerr)
			continue
		}
		written, missed, werr := parseAndWriteSources(fsys, outRoot, dest, data)
		outcome.SourcesWritten += written
		outcome.SourcesMissed += missed
		if werr != nil {
			log.Trace("non-fatal sourcemap failure", "map_ref", ref, "err", werr)
		}
	}

	return Result{OutRoot: outRoot, Outcomes: []ChunkOutcome{outcome}}, nil
}

func trimLeadingSlash(p string) string {
	for len(p) > 0 && p[0] == '/' {
		p = p[1:]
	}
	return p
}
