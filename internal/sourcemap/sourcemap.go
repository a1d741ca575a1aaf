// Package sourcemap implements the Source-Map Handling component of
// spec.md §4.4: locating sourceMappingURL comments, parsing the map JSON,
// and exposing the handful of fields the core needs (sources, sourceRoot,
// sourcesContent). No Go library in the retrieved example pack implements
// source-map parsing (the teacher hand-rolls the same plain struct — see
// tsmap/obj.go) so this stays on encoding/json, as recorded in DESIGN.md.
package sourcemap

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/4j17h/resourcer/internal/xerrors"
)

// raw mirrors the on-wire JSON shape. Only the fields the core consumes are
// kept; "mappings"/"names" are required only by the experimental AST
// reconstruction path (spec.md §4.4, §9) and are intentionally omitted here.
type raw struct {
	Version        int      `json:"version"`
	File           string   `json:"file"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent"`
	SourceRoot     string   `json:"sourceRoot"`
}

// Map is the parsed semantic view of a source map.
type Map struct {
	raw raw
}

// Parse parses a source map JSON document. Parse failure is non-fatal at the
// orchestrator level (spec.md §4.4): callers should log and skip, not abort.
func Parse(data []byte) (*Map, error) {
	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrSourcemapParse, err)
	}
	if len(r.Sources) == 0 {
		return nil, fmt.Errorf("%w: no 'sources' entries", xerrors.ErrSourcemapParse)
	}
	return &Map{raw: r}, nil
}

// SourceCount returns the number of entries in sources.
func (m *Map) SourceCount() int { return len(m.raw.Sources) }

// Source returns the virtual source URL at index i, or "" if out of range
// or empty (callers drop empty entries, per spec.md §4.5's "Empty source
// entries are dropped").
func (m *Map) Source(i int) string {
	if i < 0 || i >= len(m.raw.Sources) {
		return ""
	}
	return m.raw.Sources[i]
}

// SourceContents returns the inline original text for index i, and whether
// it was present. sourcesContent is optional and index-aligned with sources.
func (m *Map) SourceContents(i int) (string, bool) {
	if i < 0 || i >= len(m.raw.SourcesContent) {
		return "", false
	}
	c := m.raw.SourcesContent[i]
	if strings.TrimSpace(c) == "" {
		return "", false
	}
	return c, true
}

// SourceRoot returns the sourceRoot field, or "" if absent.
func (m *Map) SourceRoot() string { return m.raw.SourceRoot }

// Sources returns every non-empty source URL in order, for `list-urls
// --show-sources` and tests.
func (m *Map) Sources() []string {
	out := make([]string, 0, len(m.raw.Sources))
	for _, s := range m.raw.Sources {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// AllSources returns the sources array exactly as parsed, including empty
// entries, so callers that need index-alignment with SourceContents (the
// path reconstructor) can preserve original indices while still dropping
// empty entries themselves.
func (m *Map) AllSources() []string { return m.raw.Sources }

// sourceMapCommentRE matches both `//# sourceMappingURL=...` / `//@ ...`
// line comments and `/*# sourceMappingURL=... */` block comments, per
// spec.md §4.4.
var sourceMapCommentRE = regexp.MustCompile(`(?m)//[#@]\s*sourceMappingURL=([^\s]+)|/\*#\s*sourceMappingURL=([^*]+)\*/`)

// ExtractURLs scans JS text for sourceMappingURL comments and returns the
// raw (unresolved) URL strings in discovery order, deduplicated. It is
// order-preserving and idempotent (spec.md §8, property 1).
func ExtractURLs(js string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range sourceMapCommentRE.FindAllStringSubmatch(js, -1) {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		raw = strings.TrimSpace(raw)
		if raw == "" || seen[raw] {
			continue
		}
		seen[raw] = true
		out = append(out, raw)
	}
	return out
}
