package analyze

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/4j17h/resourcer/internal/fetch"
	"github.com/4j17h/resourcer/internal/xerrors"
)

// ResolveMapRef reads the content of a sourceMappingURL reference discovered
// in a local JS file, backing `dump --input FILE` the same way spec.md §4.4
// resolves a remote chunk's map sibling. ref may be a bare path relative to
// baseDir, a "file://" URL, or an absolute http(s) URL fetched via client.
func ResolveMapRef(ctx context.Context, client *fetch.Client, baseDir, ref string) ([]byte, error) {
	if strings.HasPrefix(ref, "file://") {
		u, err := url.Parse(ref)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", xerrors.ErrUrlParse, err)
		}
		return readLocal(u.Path)
	}

	if u, err := url.Parse(ref); err == nil && u.IsAbs() {
		switch u.Scheme {
		case "http", "https":
			body, err := client.Fetch(ctx, ref)
			if err != nil {
				return nil, err
			}
			return []byte(body), nil
		default:
			return nil, fmt.Errorf("%w: %s", xerrors.ErrUnsupportedScheme, u.Scheme)
		}
	}

	path := ref
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	return readLocal(path)
}

func readLocal(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &xerrors.PathError{Kind: xerrors.ErrNotFound, Path: path}
		}
		return nil, fmt.Errorf("%w: %v", xerrors.ErrIo, err)
	}
	return data, nil
}
