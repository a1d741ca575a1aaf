// Package xerrors defines the error-kind taxonomy shared across the
// fetch, analyzer, download, sourcemap and output layers.
//
// Kinds are sentinel errors wrapped with fmt.Errorf("...: %w", ...) so
// callers can classify a failure with errors.Is/errors.As while still
// getting a human-readable message.
package xerrors

import (
	"errors"
	"strconv"
)

var (
	// ErrUrlParse means the input URL was syntactically invalid.
	ErrUrlParse = errors.New("url parse error")
	// ErrUnsupportedScheme means the URL scheme is not in the allowed set
	// for the calling context (http/https, or http/https/file for local use).
	ErrUnsupportedScheme = errors.New("unsupported url scheme")
	// ErrHttpStatus means the server returned a non-2xx response. Terminal,
	// never retried.
	ErrHttpStatus = errors.New("http status error")
	// ErrNetwork means a transport-level failure occurred. Retryable.
	ErrNetwork = errors.New("network error")
	// ErrTimeout means the request deadline was exceeded. Retryable.
	ErrTimeout = errors.New("timeout")
	// ErrIo means a filesystem operation failed. Terminal.
	ErrIo = errors.New("io error")
	// ErrNotFound means a local file did not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidExtension means a local file did not have the expected extension.
	ErrInvalidExtension = errors.New("invalid extension")
	// ErrPermissionDenied means a local file could not be accessed.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrSourcemapParse means a .map file failed to parse as JSON. Non-fatal
	// at the orchestrator level: logged, skipped, counted.
	ErrSourcemapParse = errors.New("sourcemap parse error")
	// ErrOther is the catch-all for uncommon conditions, e.g. failing to
	// derive a file:// URL from a local path.
	ErrOther = errors.New("error")
)

// HttpStatusError carries the offending status code alongside ErrHttpStatus.
type HttpStatusError struct {
	Code int
}

func (e *HttpStatusError) Error() string {
	return ErrHttpStatus.Error() + ": " + strconv.Itoa(e.Code)
}

func (e *HttpStatusError) Unwrap() error { return ErrHttpStatus }

// PathError carries the offending path alongside NotFound/InvalidExtension/PermissionDenied.
type PathError struct {
	Kind error
	Path string
}

func (e *PathError) Error() string { return e.Kind.Error() + ": " + e.Path }

func (e *PathError) Unwrap() error { return e.Kind }
