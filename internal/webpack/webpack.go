// Package webpack implements the Bundler Runtime Analyzer (spec.md §4.2):
// inferring how a Webpack runtime builds chunk URLs from the runtime
// script's own source text, and reconstructing the concrete chunk URL list.
//
// Regex shapes are ported from the original Rust analyzer
// (crates/core/src/webpack.rs) into Go's regexp/RE2 syntax; the teacher
// (safepic-tsmap-extract) never did runtime analysis itself, so this
// package leans on original_source for grounding and on the teacher only
// for idiom (plain regexp + struct literals, no parser dependency).
package webpack

import (
	"regexp"
	"strings"
)

// ChunkFilenameTemplate is the prefix/suffix webpack concatenates around a
// chunk id to build its request path.
type ChunkFilenameTemplate struct {
	Prefix string
	Suffix string
}

// ChunkMapInfo models the Next.js-style pattern where two object literals
// supply the two halves of a chunk's on-disk name: "prefix" + map1[id] +
// "." + map2[id].
type ChunkMapInfo struct {
	Prefix    string
	Separator string
	MapFirst  map[string]string
	MapSecond map[string]string
}

// Kind tags which strategy produced a RuntimeAnalysis.
type Kind int

const (
	KindNone Kind = iota
	KindBuildManifest
	KindTemplate
	KindMapBased
	KindLiteralPaths
)

// RuntimeAnalysis is the outcome of analyzing a runtime script (and
// optionally its build manifest), spec.md §4.2's tagged union. Of the
// per-strategy fields, only those relevant to Kind are populated; ChunkIDs
// and PublicPath are filled in for every Kind.
type RuntimeAnalysis struct {
	Kind Kind

	BuildManifestPaths []string // KindBuildManifest
	Template           ChunkFilenameTemplate
	ChunkMap           ChunkMapInfo // KindMapBased
	LiteralPaths       []string     // KindLiteralPaths

	ChunkIDs   []string
	PublicPath string
}

var (
	chunkURLFnRE    = regexp.MustCompile(`__webpack_require__\.u\s*=\s*function[^{]*\{[^}]*?return\s+"([^"]*)"\s*\+\s*[^+]+\+\s*"([^"]*)";`)
	chunkURLArrowRE = regexp.MustCompile(`__webpack_require__\.u\s*=\s*\([^)]*\)\s*=>\s*"([^"]*)"\s*\+\s*[^+]+\+\s*"([^"]*)";`)
	chunkURLTmplRE  = regexp.MustCompile("__webpack_require__\\.u\\s*=\\s*function[^{]*\\{[^}]*?return\\s+`([^`]*?)\\$\\{[^}]+\\}([^`]*?)`;")

	publicPathRE = regexp.MustCompile(`__webpack_require__\.p\s*=\s*"([^"]*)";`)

	chunkPushRE      = regexp.MustCompile(`webpackChunk\w*(?:\s*=\s*(?:\w+\.)*webpackChunk\w*\s*\|\|\s*\[\]\))?\.push\(\[\[\s*"?([\w-]+)"?\s*[,\]]`)
	hardcodedCaseRE  = regexp.MustCompile(`(\d+)\s*===\s*e\s*\?\s*"static/chunks/(\d+)-[^"]+\.js"`)
	complexMapRE     = regexp.MustCompile(`static/chunks/"\+\(\{([^}]+)\}\[e\]\|\|e\)\+"\."\+\{([^}]+)\}\[e\]`)
	mapObjectEntryRE = regexp.MustCompile(`(\d+|\w+):\s*"[\w]+"`)

	chunkMapRE = regexp.MustCompile(`"(static/chunks/)"[^+]*\+[^{]*\{([^}]*)\}\[e\][^+]*\+\s*"\."\s*\+[^{]*\{([^}]*)\}\[e\]`)

	literalChunkPathRE  = regexp.MustCompile(`static/chunks/[^"]+?\.js`)
	buildManifestPathRE = regexp.MustCompile(`static/(?:chunks|css)/[^"']+?\.(?:js|css)`)
)

// InferChunkFilenameTemplate implements spec.md §4.2 strategy 2: the three
// shapes of the __webpack_require__.u assignment, tried in order.
func InferChunkFilenameTemplate(js string) (ChunkFilenameTemplate, bool) {
	for _, re := range []*regexp.Regexp{chunkURLFnRE, chunkURLArrowRE, chunkURLTmplRE} {
		if m := re.FindStringSubmatch(js); m != nil {
			return ChunkFilenameTemplate{Prefix: m[1], Suffix: m[2]}, true
		}
	}
	return ChunkFilenameTemplate{}, false
}

// ExtractPublicPath implements the public-path auxiliary extraction. An
// empty assigned value is treated as absent.
func ExtractPublicPath(js string) (string, bool) {
	m := publicPathRE.FindStringSubmatch(js)
	if m == nil || m[1] == "" {
		return "", false
	}
	return m[1], true
}

// ExtractChunkIDs unions the three chunk-id sources named in spec.md §4.2,
// deduplicated and insertion-order preserved.
func ExtractChunkIDs(js string) []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	}

	for _, m := range chunkPushRE.FindAllStringSubmatch(js, -1) {
		add(m[1])
	}
	for _, m := range hardcodedCaseRE.FindAllStringSubmatch(js, -1) {
		add(m[1])
	}
	if m := complexMapRE.FindStringSubmatch(js); m != nil {
		for _, entry := range mapObjectEntryRE.FindAllStringSubmatch(m[1], -1) {
			add(entry[1])
		}
		for _, entry := range mapObjectEntryRE.FindAllStringSubmatch(m[2], -1) {
			add(entry[1])
		}
	}
	if maps, ok := ExtractChunkMaps(js); ok {
		for id := range maps.MapFirst {
			add(id)
		}
		for id := range maps.MapSecond {
			add(id)
		}
	}

	return ids
}

// ExtractLiteralChunkPaths implements spec.md §4.2 strategy 4.
func ExtractLiteralChunkPaths(js string) []string {
	return dedupMatches(literalChunkPathRE.FindAllString(js, -1))
}

// ExtractBuildManifestPaths implements spec.md §4.2 strategy 1: every
// quoted asset path inside a _buildManifest.js body.
func ExtractBuildManifestPaths(js string) []string {
	return dedupMatches(buildManifestPathRE.FindAllString(js, -1))
}

func dedupMatches(matches []string) []string {
	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		m = strings.Trim(m, `"'`)
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

// ExtractChunkMaps implements spec.md §4.2 strategy 3's object-literal
// parsing: "static/chunks/" + ({id:"hash"}[e] || e) + "." + {id:"hash"}[e].
func ExtractChunkMaps(js string) (ChunkMapInfo, bool) {
	m := chunkMapRE.FindStringSubmatch(js)
	if m == nil {
		return ChunkMapInfo{}, false
	}
	return ChunkMapInfo{
		Prefix:    m[1],
		Separator: ".",
		MapFirst:  parseObjectLiteral(m[2]),
		MapSecond: parseObjectLiteral(m[3]),
	}, true
}

// parseObjectLiteral does a naive split of a JS object-literal body
// `k1: "v1", k2: "v2"` into a map, matching the original Rust analyzer's
// parse_obj (no general JS parsing, just comma/colon splitting).
func parseObjectLiteral(raw string) map[string]string {
	out := make(map[string]string)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		pieces := strings.SplitN(part, ":", 2)
		if len(pieces) != 2 {
			continue
		}
		key := strings.Trim(strings.TrimSpace(pieces[0]), `"`)
		val := strings.Trim(strings.TrimSpace(pieces[1]), `"`)
		out[key] = val
	}
	return out
}
