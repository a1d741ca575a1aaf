package webpack

import (
	"encoding/json"
	"regexp"
	"strings"
)

// returnPatternRE recognizes an auxiliary chunk-URL shape the four
// documented strategies miss: a bare concatenation returning
// "static/js/" + e + "." + {20:"493d026d",...}[e] + ".chunk.js", where the
// same loop variable is used both to index the map and as the literal
// fallback. Ported from the teacher's findChunkURLsReturnPattern
// (tsmap/crawl.go), which discovers this in the wild on CRA-family builds.
var returnPatternRE = regexp.MustCompile(`return *["']([^"']*)["'] *\+ *(\w) *\+["'][^"']*["']\+(\{[^{]*\})\[(\w)\]\+["']\.chunk\.js["']`)

var intKeyRE = regexp.MustCompile(`([{,]\s*)(-?\d+)(\s*:)`)

// quoteNumericObjectKeys wraps unquoted numeric object keys in double
// quotes so the result is valid JSON, e.g. {20:"x"} -> {"20":"x"}.
func quoteNumericObjectKeys(s string) string {
	return intKeyRE.ReplaceAllString(s, `$1"$2"$3`)
}

// extractChunkURLsFromReturnPattern implements the auxiliary strategy
// described in SPEC_FULL.md §C.4: produces literal chunk path strings
// (prefix + id + "." + hash + ".chunk.js") for every id present in the
// matched hash map, when the prefix and id-as-fallback variable agree
// across both concatenation sites.
func extractChunkURLsFromReturnPattern(js string) []string {
	if !strings.Contains(js, ".chunk.js") {
		return nil
	}

	matches := returnPatternRE.FindAllStringSubmatch(js, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var out []string

	for _, m := range matches {
		prefix, varName, rawMap, varName2 := m[1], m[2], m[3], m[4]
		if varName != varName2 {
			continue
		}

		var hashes map[string]string
		if err := json.Unmarshal([]byte(quoteNumericObjectKeys(rawMap)), &hashes); err != nil {
			continue
		}

		for id, hash := range hashes {
			path := prefix + id + "." + hash + ".chunk.js"
			if seen[path] {
				continue
			}
			seen[path] = true
			out = append(out, path)
		}
	}

	return out
}
