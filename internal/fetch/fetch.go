// Package fetch implements the Fetch Layer (spec.md §4.1): scheme-gated,
// timed-out, retried HTTP fetching with a fixed desktop user agent. It is
// the leaf of the pipeline's data flow — everything else in this module
// consumes bytes this package returns.
package fetch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/4j17h/resourcer/internal/xerrors"
)

// DefaultUserAgent is a fixed desktop browser identifier. Some bundler-asset
// CDNs return 403 on default Go UAs, per spec.md §4.1.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0 Safari/537.36"

const (
	// PerAttemptTimeout is the spec-mandated 30s timeout for a single attempt.
	PerAttemptTimeout = 30 * time.Second
	// DefaultAttempts is the spec-mandated default retry count.
	DefaultAttempts = 3
	// initialBackoff is the spec-mandated starting backoff, doubled between attempts.
	initialBackoff = 200 * time.Millisecond
)

// Options configures a Client beyond the spec defaults (teacher's crawl.go
// --proxy/--insecure flags, supplemented per SPEC_FULL.md §C.5).
type Options struct {
	UserAgent   string
	ProxyURL    string
	InsecureTLS bool
}

// Client performs scheme-gated, retried HTTP fetches. A single Client is
// shared immutably across worker goroutines (spec.md §5: "shared mutable
// state ... HTTP client is shared immutably across workers").
type Client struct {
	http      *http.Client
	userAgent string
}

// New builds a Client honoring Options. A zero Options value yields the
// spec default transport and user agent.
func New(opts Options) (*Client, error) {
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if opts.ProxyURL != "" {
		proxyURL, err := url.Parse(opts.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid proxy url %q: %v", xerrors.ErrOther, opts.ProxyURL, err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}
	if opts.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in research flag
	}

	return &Client{
		http:      &http.Client{Timeout: PerAttemptTimeout, Transport: transport},
		userAgent: ua,
	}, nil
}

// Fetch performs a single GET with the configured timeout, user agent, and
// scheme gating. It does not retry; see FetchWithRetries.
func (c *Client) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", xerrors.ErrUrlParse, err)
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return "", fmt.Errorf("%w: %s", xerrors.ErrUnsupportedScheme, u.Scheme)
	}

	ctx, cancel := context.WithTimeout(ctx, PerAttemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", xerrors.ErrNetwork, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", xerrors.ErrTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", xerrors.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%s: %w", u.String(), &xerrors.HttpStatusError{Code: resp.StatusCode})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", xerrors.ErrNetwork, err)
	}
	if !utf8.Valid(body) {
		return "", fmt.Errorf("%w: response body is not valid utf-8", xerrors.ErrNetwork)
	}
	return string(body), nil
}

// Head performs a HEAD request, used by the download manager's validation
// pass (spec.md §4.3). Non-2xx is not an error; the caller inspects the
// returned status code directly.
func (c *Client) Head(ctx context.Context, rawURL string) (status int, err error) {
	ctx, cancel := context.WithTimeout(ctx, PerAttemptTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", xerrors.ErrNetwork, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", xerrors.ErrNetwork, err)
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

// FetchWithRetries retries Fetch up to attempts times. Only transport errors
// and timeouts are retried; HTTP status failures are terminal (spec.md
// §4.1). Backoff starts at 200ms and doubles between attempts.
func (c *Client) FetchWithRetries(ctx context.Context, rawURL string, attempts int) (string, error) {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}

	var lastErr error
	backoff := initialBackoff
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		body, err := c.Fetch(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if errIsTerminal(err) {
			return "", err
		}
	}
	if lastErr == nil {
		return "", xerrors.ErrTimeout
	}
	return "", lastErr
}

// errIsTerminal reports whether err should stop retrying immediately
// (scheme/url errors and HTTP status failures), per spec.md §4.1.
func errIsTerminal(err error) bool {
	return errors.Is(err, xerrors.ErrUrlParse) ||
		errors.Is(err, xerrors.ErrUnsupportedScheme) ||
		errors.Is(err, xerrors.ErrHttpStatus)
}
