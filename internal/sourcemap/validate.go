package sourcemap

import "net/url"

// ValidateURLs resolves each raw URL string against base (for relative
// references) or parses it directly if already absolute, then deduplicates
// by the resulting absolute URL string. Invalid entries are dropped.
//
// Per spec.md §8 property 2: |output| <= |input|, and every output element
// is either an absolute parse of an input or base.ResolveReference(input).
func ValidateURLs(base *url.URL, raw []string) []*url.URL {
	seen := make(map[string]bool, len(raw))
	out := make([]*url.URL, 0, len(raw))
	for _, s := range raw {
		var resolved *url.URL
		if u, err := url.Parse(s); err == nil && u.IsAbs() {
			resolved = u
		} else if u, err := url.Parse(s); err == nil && base != nil {
			resolved = base.ResolveReference(u)
		} else {
			continue
		}
		key := resolved.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, resolved)
	}
	return out
}
