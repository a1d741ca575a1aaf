// Package htmlscan discovers <script src> URLs on a page, the Fetch
// Layer's entry point into the rest of the pipeline. Adapted from the
// teacher's parseScriptsHTML/parseScriptsRegex (tsmap/crawl.go): the
// primary path walks a parsed x/net/html tree; a regex fallback covers
// documents malformed enough that html.Parse gives up.
package htmlscan

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var scriptSrcRE = regexp.MustCompile(`(?i)<script[^>]+src\s*=\s*['"]([^'"]+)['"]`)

// ScriptURLs returns every <script src> on the page, resolved against
// base and deduplicated in discovery order.
func ScriptURLs(pageHTML string, base *url.URL) []*url.URL {
	doc, err := html.Parse(strings.NewReader(pageHTML))
	if err != nil {
		return scriptURLsRegex(pageHTML, base)
	}

	var found []*url.URL
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && strings.EqualFold(n.Data, "script") {
			for _, a := range n.Attr {
				if strings.EqualFold(a.Key, "src") && strings.TrimSpace(a.Val) != "" {
					if u, err := url.Parse(strings.TrimSpace(a.Val)); err == nil {
						found = append(found, base.ResolveReference(u))
					}
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return dedupURLs(found)
}

func scriptURLsRegex(pageHTML string, base *url.URL) []*url.URL {
	var found []*url.URL
	for _, m := range scriptSrcRE.FindAllStringSubmatch(pageHTML, -1) {
		if u, err := url.Parse(m[1]); err == nil {
			found = append(found, base.ResolveReference(u))
		}
	}
	return dedupURLs(found)
}

func dedupURLs(urls []*url.URL) []*url.URL {
	seen := make(map[string]bool, len(urls))
	out := make([]*url.URL, 0, len(urls))
	for _, u := range urls {
		if u == nil {
			continue
		}
		key := u.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, u)
	}
	return out
}

// IsBuildManifest reports whether a script URL names a Next.js build
// manifest, per spec.md §4.2 strategy 1's "_?buildManifest.js$" match.
var buildManifestRE = regexp.MustCompile(`_?buildManifest\.js$`)

func IsBuildManifest(u *url.URL) bool {
	return buildManifestRE.MatchString(u.Path)
}
