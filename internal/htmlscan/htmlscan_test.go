package htmlscan

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScriptURLs_ResolvesAndDedupes(t *testing.T) {
	base, _ := url.Parse("https://example.com/app/")
	page := `<html><body>
		<script src="/static/runtime.js"></script>
		<script src="chunk.js"></script>
		<script src="/static/runtime.js"></script>
		<script>console.log("inline, no src")</script>
	</body></html>`

	urls := ScriptURLs(page, base)
	require.Len(t, urls, 2)
	require.Equal(t, "https://example.com/static/runtime.js", urls[0].String())
	require.Equal(t, "https://example.com/app/chunk.js", urls[1].String())
}

func TestScriptURLs_RegexFallbackOnMalformedHTML(t *testing.T) {
	base, _ := url.Parse("https://example.com/")
	page := `<scr<ipt src="a.js">broken<script src="b.js">`
	urls := scriptURLsRegex(page, base)
	// "<scr<ipt" is not a script tag; only b.js is recovered.
	require.Len(t, urls, 1)
}

func TestIsBuildManifest(t *testing.T) {
	u, _ := url.Parse("https://example.com/_next/static/xyz/_buildManifest.js")
	require.True(t, IsBuildManifest(u))

	u2, _ := url.Parse("https://example.com/_next/static/chunks/runtime.js")
	require.False(t, IsBuildManifest(u2))
}
