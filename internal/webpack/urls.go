package webpack

import (
	"net/url"
	"strings"
)

// BuildChunkURL joins a base URL with a path built from the template and
// a chunk id, per spec.md §4.2's "build_chunk_url". When base is nil the
// path is parsed on its own and returned unresolved.
func BuildChunkURL(base *url.URL, tmpl ChunkFilenameTemplate, chunkID string) (*url.URL, bool) {
	path := tmpl.Prefix + chunkID + tmpl.Suffix
	if base == nil {
		u, err := url.Parse(path)
		if err != nil {
			return nil, false
		}
		return u, true
	}
	ref, err := url.Parse(path)
	if err != nil {
		return nil, false
	}
	return base.ResolveReference(ref), true
}

// GenerateChunkURLs builds one URL per chunk id using the template
// strategy's prefix/suffix, skipping ids that fail to produce a URL.
func GenerateChunkURLs(base *url.URL, tmpl ChunkFilenameTemplate, chunkIDs []string) []*url.URL {
	out := make([]*url.URL, 0, len(chunkIDs))
	for _, id := range chunkIDs {
		if u, ok := BuildChunkURL(base, tmpl, id); ok {
			out = append(out, u)
		}
	}
	return out
}

// GenerateURLsFromChunkMaps implements spec.md §4.2 strategy 3's URL
// construction: a chunk URL is emitted only when the second map has an
// entry for the id; the first map substitutes its value for the id when
// present, otherwise the id itself is used.
func GenerateURLsFromChunkMaps(base *url.URL, maps ChunkMapInfo, chunkIDs []string) []*url.URL {
	out := make([]*url.URL, 0, len(chunkIDs))
	for _, id := range chunkIDs {
		second, ok := maps.MapSecond[id]
		if !ok {
			continue
		}
		first := id
		if v, ok := maps.MapFirst[id]; ok {
			first = v
		}
		path := maps.Prefix + first + maps.Separator + second + ".js"
		ref, err := url.Parse(path)
		if err != nil {
			continue
		}
		if base == nil {
			out = append(out, ref)
			continue
		}
		out = append(out, base.ResolveReference(ref))
	}
	return out
}

// canonicalPrefixes are well-known chunk-directory prefixes used to locate
// a base path on the runtime script's own URL when no explicit public path
// was found, per spec.md §4.2's "Base URL derivation".
var canonicalPrefixes = []string{"static/chunks/", "static/"}

// DeriveBaseURL implements spec.md §4.2's base-URL derivation: find the
// longest suffix of the runtime script's path that starts with the
// template's prefix or a canonical prefix, and treat everything before it
// as the base path. Falls back to origin root when nothing matches.
func DeriveBaseURL(runtimeURL *url.URL, publicPath string, tmplPrefix string) *url.URL {
	if publicPath != "" {
		if u, err := runtimeURL.Parse(publicPath); err == nil {
			return u
		}
	}

	candidates := make([]string, 0, len(canonicalPrefixes)+1)
	if tmplPrefix != "" {
		candidates = append(candidates, tmplPrefix)
	}
	candidates = append(candidates, canonicalPrefixes...)

	path := runtimeURL.Path
	bestIdx := -1
	for _, c := range candidates {
		if idx := strings.LastIndex(path, c); idx >= 0 {
			if bestIdx == -1 || idx < bestIdx {
				bestIdx = idx
			}
		}
	}

	base := *runtimeURL
	if bestIdx >= 0 {
		base.Path = path[:bestIdx]
	} else {
		base.Path = "/"
	}
	base.RawQuery = ""
	base.Fragment = ""
	return &base
}
