// Package download implements the Download Manager (spec.md §4.3): a
// bounded worker pool that fetches many URLs concurrently and returns
// results in completion order, plus a concurrent HEAD-then-GET validation
// pass used by the orchestrator before the real download run.
//
// The worker pool follows the teacher's channel idiom (tsmap/crawl.go's
// sem/wg/results pattern) generalized from "print progress lines" to
// "collect typed results"; the validation pass uses golang.org/x/sync/errgroup
// the way erlorenz-go-toolbox bounds concurrent fan-out.
package download

import (
	"context"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/4j17h/resourcer/internal/fetch"
)

// Result is one URL's outcome, spec.md's DownloadResult. Exactly one of
// Content / Error is populated.
type Result struct {
	URL     string
	Content string
	Error   error
}

// Config tunes the worker pool and retry policy.
type Config struct {
	Concurrency   int
	RetryAttempts int
}

// Many runs download_many: a bounded pool of Concurrency workers, a single
// shared inbound queue of capacity 2*Concurrency (spec.md's backpressure
// rule), and completion-order result delivery. Every submitted URL appears
// in the output exactly once. If ctx is cancelled, workers finish their
// current fetch and exit without inventing a result for unscheduled URLs.
func Many(ctx context.Context, client *fetch.Client, urls []string, cfg Config) []Result {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	attempts := cfg.RetryAttempts
	if attempts <= 0 {
		attempts = fetch.DefaultAttempts
	}

	queueCap := 2 * cfg.Concurrency
	inbound := make(chan string, queueCap)
	outbound := make(chan Result, queueCap)

	var wg sync.WaitGroup
	for i := 0; i < cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range inbound {
				select {
				case <-ctx.Done():
					return
				default:
				}
				body, err := client.FetchWithRetries(ctx, u, attempts)
				outbound <- Result{URL: u, Content: body, Error: err}
			}
		}()
	}

	go func() {
		for _, u := range urls {
			select {
			case inbound <- u:
			case <-ctx.Done():
			}
		}
		close(inbound)
	}()

	go func() {
		wg.Wait()
		close(outbound)
	}()

	results := make([]Result, 0, len(urls))
	for r := range outbound {
		results = append(results, r)
	}
	return results
}

// ValidateURLs implements spec.md §4.3's validation pass: a concurrent
// HEAD (falling back to GET on 405 or on a HEAD transport error) against
// every candidate URL, returning the subset that answered 2xx, in input
// order. Runs with the given concurrency bound via errgroup; a URL whose
// requests fail is simply left out of the result, and no error is returned.
func ValidateURLs(ctx context.Context, client *fetch.Client, urls []string, concurrency int) []string {
	if concurrency <= 0 {
		concurrency = 1
	}

	type outcome struct {
		index int
		ok    bool
	}

	results := make([]outcome, len(urls))
	group, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, concurrency)

	for i, u := range urls {
		i, u := i, u
		group.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			code, err := client.Head(gctx, u)
			if err != nil || code == http.StatusMethodNotAllowed {
				if _, getErr := client.Fetch(gctx, u); getErr == nil {
					results[i] = outcome{index: i, ok: true}
				}
				return nil
			}
			results[i] = outcome{index: i, ok: code >= 200 && code < 300}
			return nil
		})
	}
	_ = group.Wait()

	out := make([]string, 0, len(urls))
	for i, r := range results {
		if r.ok {
			out = append(out, urls[i])
		}
	}
	return out
}

// Dedup implements invariant 1 from spec.md §3: deduplicate discovered
// chunk URLs by exact string identity before validation, preserving
// insertion order.
func Dedup(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
