// Package analyze implements local-file JS analysis (SPEC_FULL.md §C.2),
// backing the `list-urls --input FILE` path: validating a candidate path
// the way the original implementation's file_io.rs::validate_js_path does,
// then feeding its content through the sourcemap layer.
package analyze

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/4j17h/resourcer/internal/sourcemap"
	"github.com/4j17h/resourcer/internal/xerrors"
)

// ValidateJSPath checks that path exists, is a regular .js file, and is
// readable, returning its absolute form. Errors are one of xerrors'
// NotFound/InvalidExtension/PermissionDenied/Io kinds (spec.md §7).
func ValidateJSPath(path string) (string, error) {
	if filepath.Ext(path) != ".js" {
		return "", &xerrors.PathError{Kind: xerrors.ErrInvalidExtension, Path: path}
	}

	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return "", &xerrors.PathError{Kind: xerrors.ErrNotFound, Path: path}
	case os.IsPermission(err):
		return "", &xerrors.PathError{Kind: xerrors.ErrPermissionDenied, Path: path}
	case err != nil:
		return "", fmt.Errorf("%w: %v", xerrors.ErrIo, err)
	}
	if !info.Mode().IsRegular() {
		return "", &xerrors.PathError{Kind: xerrors.ErrInvalidExtension, Path: path}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", xerrors.ErrIo, err)
	}
	return abs, nil
}

// Document is an analyzed local JS file, the Go shape of the original
// implementation's HtmlDocument.
type Document struct {
	Path      string
	Timestamp time.Time
	Content   string
}

// LocalJS validates and reads path, matching analyze_local_js.
func LocalJS(path string) (Document, error) {
	abs, err := ValidateJSPath(path)
	if err != nil {
		return Document{}, err
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", xerrors.ErrIo, err)
	}

	return Document{Path: abs, Timestamp: time.Now(), Content: string(data)}, nil
}

// LocalJSWithSourcemaps runs LocalJS and additionally extracts the
// sourcemap URLs referenced by the file's content, matching
// analyze_local_js_with_sourcemaps.
func LocalJSWithSourcemaps(path string) (Document, []string, error) {
	doc, err := LocalJS(path)
	if err != nil {
		return Document{}, nil, err
	}
	return doc, sourcemap.ExtractURLs(doc.Content), nil
}
