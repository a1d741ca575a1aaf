// Package pathrecon implements the Path Reconstructor (spec.md §4.5):
// normalizing a source map's virtual source URLs into on-disk paths that
// are guaranteed to stay under a given output root, using the teacher's
// "anchor directory" sandboxing trick (tsmap/util.go: resolveUnderAnchor)
// generalized to an arbitrary depth of leading "../" segments.
package pathrecon

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrPathBlocked is returned when a reconstructed path cannot be safely
// confined under the output root even after anchoring.
var ErrPathBlocked = errors.New("path reconstruction blocked: would escape output root")

// webpackURIPrefixes are stripped from the front of a virtual source URL
// before further normalization, per spec.md §4.5 step 2 and the teacher's
// normalizeKeepDots.
var webpackURIPrefixes = []string{"webpack:///", "webpack://", "file:///", "file://", "vscode://"}

// Normalize applies spec.md §4.5 steps 1-4: strip sourceRoot if the source
// starts with it, strip the webpack:// scheme and namespace segment (or any
// of the teacher's other recognized URI prefixes), strip a single leading
// "./", then re-prepend sourceRoot if the source is still relative. Leading
// "../" segments are deliberately preserved (not folded here) so that the
// anchor-depth computation in Reconstruct can size the sandbox correctly.
func Normalize(sourceRoot, source string) string {
	s := source

	if sourceRoot != "" && strings.HasPrefix(s, sourceRoot) {
		s = s[len(sourceRoot):]
	}

	if rest, ok := stripWebpackPrefix(s); ok {
		s = rest
	}

	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\\", "/")
	s = strings.TrimPrefix(s, "./")

	for len(s) > 0 && s[0] == '/' {
		s = s[1:]
	}
	// Drive letters (C:) from Windows-style absolute paths embedded in a map.
	if len(s) >= 2 && s[1] == ':' {
		s = s[2:]
		for len(s) > 0 && s[0] == '/' {
			s = s[1:]
		}
	}
	for strings.Contains(s, "//") {
		s = strings.ReplaceAll(s, "//", "/")
	}

	if sourceRoot != "" && !strings.HasPrefix(s, "../") && !filepath.IsAbs(s) {
		root := strings.TrimRight(sourceRoot, "/\\")
		if root != "" {
			s = root + "/" + s
		}
	}

	return s
}

// stripWebpackPrefix implements step 2: for "webpack://", remove the scheme
// and the first path segment after "//" up to and including the next "/";
// if there is no "/" after "webpack://", take the entire remainder. Other
// recognized URI prefixes are stripped outright (they carry no namespace
// segment to drop).
func stripWebpackPrefix(s string) (string, bool) {
	const webpackScheme = "webpack://"
	if strings.HasPrefix(s, webpackScheme) {
		rest := s[len(webpackScheme):]
		if idx := strings.Index(rest, "/"); idx >= 0 {
			return rest[idx+1:], true
		}
		return rest, true
	}
	for _, prefix := range webpackURIPrefixes[2:] { // file://, file:///, vscode://
		if strings.HasPrefix(s, prefix) {
			return strings.TrimPrefix(s, prefix), true
		}
	}
	return s, false
}

// countLeadingUps counts leading "../" segments remaining after Normalize.
func countLeadingUps(p string) int {
	n := 0
	for strings.HasPrefix(p, "../") {
		p = p[3:]
		n++
	}
	return n
}

// AnchorDepth returns the maximum number of leading "../" segments across a
// batch of normalized paths, the depth a sandbox anchor must be built at so
// that no source, however many levels it climbs, escapes outRoot. Mirrors
// the teacher's computeMaxLeadingUps, generalized to any source list.
func AnchorDepth(normalized []string) int {
	max := 0
	for _, p := range normalized {
		if n := countLeadingUps(p); n > max {
			max = n
		}
	}
	return max
}

// Reconstruct resolves one already-normalized source path under outRoot,
// sandboxing it against a synthetic anchor directory deep enough to absorb
// depth leading "../" segments (spec.md §4.5 step 5-6, invariant 3). It
// returns the path relative to outRoot and the absolute path, or
// ErrPathBlocked if the path cannot be confined.
func Reconstruct(outRoot string, depth int, normalized string) (rel string, abs string, err error) {
	base := filepath.Join(outRoot, ".anchor")
	sub := base
	for i := 0; i < depth; i++ {
		sub = filepath.Join(sub, "level")
	}

	joined := filepath.Join(sub, filepath.FromSlash(normalized))
	clean := filepath.Clean(joined)

	if err := mustBeUnder(base, clean); err != nil {
		return "", "", err
	}

	relFromBase, err := filepath.Rel(base, clean)
	if err != nil {
		return "", "", err
	}
	relFromBase = sanitizeSegments(relFromBase)
	if relFromBase == "" || relFromBase == "." {
		relFromBase = "unnamed"
	}

	return relFromBase, filepath.Join(outRoot, relFromBase), nil
}

// mustBeUnder blocks anything that would resolve outside base, per spec.md
// §4.5 step 5 and invariant 3.
func mustBeUnder(base, target string) error {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return err
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil {
		return err
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == "" {
		return nil
	}
	if strings.HasPrefix(rel, "../") {
		return ErrPathBlocked
	}
	for _, seg := range strings.Split(rel, "/") {
		if seg == ".." {
			return ErrPathBlocked
		}
	}
	return nil
}

// sanitizeSegments cleans each path segment of characters that are
// problematic on common filesystems, replacing empty/"."/".." segments
// with "unnamed" (the teacher's sanitizeSegments/replaceWeird).
func sanitizeSegments(p string) string {
	parts := strings.Split(filepath.ToSlash(p), "/")
	out := make([]string, 0, len(parts))
	for _, seg := range parts {
		seg = strings.TrimSpace(seg)
		if seg == "" || seg == "." || seg == ".." {
			seg = "unnamed"
		}
		out = append(out, replaceWeird(seg))
	}
	return filepath.Join(out...)
}

var weirdReplacer = strings.NewReplacer(
	"<", "_", ">", "_", ":", "_", `"`, "_", "|", "_", "?", "_", "*", "_",
)

func replaceWeird(s string) string { return weirdReplacer.Replace(s) }
