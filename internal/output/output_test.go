package output

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestEnsureOutputDir_CreatesMissingAncestors(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, EnsureOutputDir(fs, "/out/sub/dir"))
	info, err := fs.Stat("/out/sub/dir")
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

// Property 4 (spec.md §8): idempotent when the path exists as a directory.
func TestEnsureOutputDir_Idempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, EnsureOutputDir(fs, "/out"))
	require.NoError(t, EnsureOutputDir(fs, "/out"))
}

func TestEnsureOutputDir_FailsOnNonDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/out", []byte("x"), 0o644))
	err := EnsureOutputDir(fs, "/out")
	require.Error(t, err)
}

func TestCopyFiles_AndValidateOutput(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/a.js", []byte("const a=1;"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/src/sub/b.js", []byte("const b=2;"), 0o644))

	require.NoError(t, CopyFiles(fs, "/src", "/dst"))

	// Property 5 (spec.md §8): validate_output returns empty for identical trees
	// and reports a file whose contents differ.
	mismatches, err := ValidateOutput(fs, "/src", "/dst")
	require.NoError(t, err)
	require.Empty(t, mismatches)

	require.NoError(t, afero.WriteFile(fs, "/dst/a.js", []byte("tampered"), 0o644))
	mismatches, err = ValidateOutput(fs, "/src", "/dst")
	require.NoError(t, err)
	require.Equal(t, []string{"a.js"}, mismatches)
}

func TestValidateOutput_ReportsMissingFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/a.js", []byte("x"), 0o644))

	mismatches, err := ValidateOutput(fs, "/src", "/dst")
	require.NoError(t, err)
	require.Equal(t, []string{"a.js"}, mismatches)
}

func TestMirrorStructure_CreatesDirsOnly(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/sub/a.js", []byte("x"), 0o644))

	require.NoError(t, MirrorStructure(fs, "/src", "/dst"))

	info, err := fs.Stat("/dst/sub")
	require.NoError(t, err)
	require.True(t, info.IsDir())

	_, err = fs.Stat("/dst/sub/a.js")
	require.Error(t, err, "mirror_structure must not copy files")
}

func TestWriteFile_CreatesParents(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, WriteFile(fs, "/out/static/chunks/1.js", []byte("x")))
	data, err := afero.ReadFile(fs, "/out/static/chunks/1.js")
	require.NoError(t, err)
	require.Equal(t, "x", string(data))
}
