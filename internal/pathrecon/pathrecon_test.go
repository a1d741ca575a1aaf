package pathrecon

import (
	"path/filepath"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

// S5 from spec.md §8.
func TestReconstructAll_WebpackNamespaceNormalization(t *testing.T) {
	tmp := t.TempDir()
	sources := []string{"webpack:///./foo/bar.js", "webpack://ns/./baz.js"}

	outcomes := ReconstructAll(tmp, "src/", sources)
	require.Len(t, outcomes, 2)
	require.NoError(t, outcomes[0].Err)
	require.NoError(t, outcomes[1].Err)
	require.Equal(t, filepath.Join(tmp, "src", "foo", "bar.js"), outcomes[0].Abs)
	require.Equal(t, filepath.Join(tmp, "src", "baz.js"), outcomes[1].Abs)
}

func TestReconstructAll_DropsEmptySourcesButPreservesIndex(t *testing.T) {
	tmp := t.TempDir()
	sources := []string{"a.js", "", "b.js"}

	outcomes := ReconstructAll(tmp, "", sources)
	require.Len(t, outcomes, 2)
	require.Equal(t, 0, outcomes[0].Index)
	require.Equal(t, 2, outcomes[1].Index)
}

func TestReconstruct_TraversalIsSandboxed(t *testing.T) {
	tmp := t.TempDir()
	normalized := Normalize("", "../../../../etc/passwd")
	depth := AnchorDepth([]string{normalized})

	_, abs, err := Reconstruct(tmp, depth, normalized)
	require.NoError(t, err)
	require.True(t, withinRoot(tmp, abs), "reconstructed path must stay under output root even for deep traversal attempts")
}

func TestReconstruct_DeepTraversalWithoutDepthIsBlocked(t *testing.T) {
	tmp := t.TempDir()
	normalized := Normalize("", "../../evil.js")

	// depth 0 means the anchor has no slack to absorb "../" climbs.
	_, _, err := Reconstruct(tmp, 0, normalized)
	require.ErrorIs(t, err, ErrPathBlocked)
}

func withinRoot(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == ".." || len(rel) >= 3 && rel[:3] == "../" {
		return false
	}
	return true
}

// Property 6 (spec.md §8): path reconstruction sandboxes — every
// reconstructed path has the output root as a prefix, for any source
// string including deliberately adversarial traversal attempts.
func TestProperty_ReconstructedPathsAreSandboxed(t *testing.T) {
	tmp := t.TempDir()
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("reconstructed absolute path stays under output root", prop.ForAll(
		func(raw string) bool {
			normalized := Normalize("", raw)
			depth := AnchorDepth([]string{normalized})
			_, abs, err := Reconstruct(tmp, depth, normalized)
			if err != nil {
				// Blocked is an acceptable outcome; it never escapes.
				return true
			}
			return withinRoot(tmp, abs)
		},
		gen.RegexMatch(`(\.\./){0,6}[a-zA-Z0-9_./-]{0,24}`),
	))

	properties.TestingRun(t)
}

// Property 4 (spec.md §8): EnsureOutputDir-style idempotence, exercised here
// at the Reconstruct level: resolving the same normalized path twice yields
// the same destination.
func TestReconstruct_Idempotent(t *testing.T) {
	tmp := t.TempDir()
	normalized := Normalize("src/", "webpack:///./a/b.js")
	depth := AnchorDepth([]string{normalized})

	_, abs1, err1 := Reconstruct(tmp, depth, normalized)
	_, abs2, err2 := Reconstruct(tmp, depth, normalized)
	require.NoError(t, err1)
	require.NoError(t, err2)
	require.Equal(t, abs1, abs2)
}
