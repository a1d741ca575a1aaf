// Package output implements the Output Layer (spec.md §4.6) on top of
// afero.Fs so the whole layer is testable against an in-memory filesystem
// while production code runs against the OS filesystem, the pattern
// erlorenz-go-toolbox and conneroisu-templar both use afero for.
package output

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/4j17h/resourcer/internal/xerrors"
)

// EnsureOutputDir creates any missing ancestors of path, succeeding if it
// already exists as a directory and failing with a distinct error if it
// exists as a non-directory (spec.md §4.6, property 4: idempotent when the
// path already exists as a directory).
func EnsureOutputDir(fs afero.Fs, path string) error {
	info, err := fs.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%w: %s exists and is not a directory", xerrors.ErrIo, path)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", xerrors.ErrIo, err)
	}
	if err := fs.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("%w: %v", xerrors.ErrIo, err)
	}
	return nil
}

// MirrorStructure walks src, creating each directory found under dst;
// files are left untouched (spec.md §4.6).
func MirrorStructure(fs afero.Fs, src, dst string) error {
	return afero.Walk(fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("%w: %v", xerrors.ErrIo, err)
		}
		if !info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("%w: %v", xerrors.ErrIo, err)
		}
		target := filepath.Join(dst, rel)
		if err := fs.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("%w: %v", xerrors.ErrIo, err)
		}
		return nil
	})
}

// CopyFiles walks src, copying each file to its corresponding dst path,
// creating parent directories as needed (spec.md §4.6).
func CopyFiles(fs afero.Fs, src, dst string) error {
	return afero.Walk(fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("%w: %v", xerrors.ErrIo, err)
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("%w: %v", xerrors.ErrIo, err)
		}
		target := filepath.Join(dst, rel)
		if err := fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("%w: %v", xerrors.ErrIo, err)
		}
		return copyOneFile(fs, path, target)
	})
}

func copyOneFile(fs afero.Fs, src, dst string) error {
	in, err := fs.Open(src)
	if err != nil {
		return fmt.Errorf("%w: %v", xerrors.ErrIo, err)
	}
	defer in.Close()

	out, err := fs.Create(dst)
	if err != nil {
		return fmt.Errorf("%w: %v", xerrors.ErrIo, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("%w: %v", xerrors.ErrIo, err)
	}
	return nil
}

// ValidateOutput walks src and, for each file, compares a SHA-256 digest
// against the corresponding path under dst, returning the relative paths
// that are missing or mismatched (spec.md §4.6). Only files under src are
// visited: a file that exists under dst alone is not reported, so an empty
// result means every src file has a byte-identical copy under dst.
func ValidateOutput(fs afero.Fs, src, dst string) ([]string, error) {
	var mismatches []string

	err := afero.Walk(fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("%w: %v", xerrors.ErrIo, err)
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("%w: %v", xerrors.ErrIo, err)
		}

		srcSum, err := hashFile(fs, path)
		if err != nil {
			return err
		}
		dstPath := filepath.Join(dst, rel)
		dstSum, err := hashFile(fs, dstPath)
		if err != nil {
			mismatches = append(mismatches, rel)
			return nil
		}
		if srcSum != dstSum {
			mismatches = append(mismatches, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mismatches, nil
}

func hashFile(fs afero.Fs, path string) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// WriteFile writes data at path, creating parent directories as needed;
// used for chunk bodies, .map siblings, and reconstructed sources.
func WriteFile(fs afero.Fs, path string, data []byte) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", xerrors.ErrIo, err)
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", xerrors.ErrIo, err)
	}
	return nil
}
