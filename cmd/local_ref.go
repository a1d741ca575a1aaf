package cmd

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/4j17h/resourcer/internal/xerrors"
)

// readLocalRef resolves a sourceMappingURL reference against the
// --input file's directory and reads it, accepting bare relative paths
// and "file://" URLs per spec.md §6's "file accepted for local map
// references when --show-sources is used".
func readLocalRef(ref string) ([]byte, error) {
	path := ref
	if strings.HasPrefix(ref, "file://") {
		u, err := url.Parse(ref)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", xerrors.ErrUrlParse, err)
		}
		path = u.Path
	} else if u, err := url.Parse(ref); err == nil && u.IsAbs() {
		return nil, fmt.Errorf("%w: %s is not a local reference", xerrors.ErrUnsupportedScheme, ref)
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(listURLsInput), path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", xerrors.ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", xerrors.ErrIo, err)
	}
	return data, nil
}
