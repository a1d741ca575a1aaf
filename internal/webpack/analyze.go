package webpack

// Analyze runs the strategy-priority chain from spec.md §4.2: build
// manifest first, then chunk-filename-template inference, then map-based
// construction, then literal paths, finally KindNone. buildManifestJS may
// be empty when no build-manifest script was found on the page.
func Analyze(runtimeJS, buildManifestJS string) RuntimeAnalysis {
	analysis := RuntimeAnalysis{
		PublicPath: "",
		ChunkIDs:   ExtractChunkIDs(runtimeJS),
	}
	if pp, ok := ExtractPublicPath(runtimeJS); ok {
		analysis.PublicPath = pp
	}

	if buildManifestJS != "" {
		if paths := ExtractBuildManifestPaths(buildManifestJS); len(paths) > 0 {
			analysis.Kind = KindBuildManifest
			analysis.BuildManifestPaths = paths
			return analysis
		}
	}

	if tmpl, ok := InferChunkFilenameTemplate(runtimeJS); ok {
		analysis.Kind = KindTemplate
		analysis.Template = tmpl
		return analysis
	}

	if maps, ok := ExtractChunkMaps(runtimeJS); ok {
		analysis.Kind = KindMapBased
		analysis.ChunkMap = maps
		return analysis
	}

	if lits := ExtractLiteralChunkPaths(runtimeJS); len(lits) > 0 {
		analysis.Kind = KindLiteralPaths
		analysis.LiteralPaths = lits
		return analysis
	}

	// Auxiliary strategy: a `return "<prefix>"+e+"."+{<id>:"<hash>",...}[e]+".chunk.js"`
	// concatenation that none of the four documented strategies recognize (the
	// teacher's findChunkURLsReturnPattern, tsmap/crawl.go).
	if extra := extractChunkURLsFromReturnPattern(runtimeJS); len(extra) > 0 {
		analysis.Kind = KindLiteralPaths
		analysis.LiteralPaths = extra
		return analysis
	}

	analysis.Kind = KindNone
	return analysis
}
