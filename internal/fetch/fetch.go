// Package fetch holds the machinery shared by both sync engines: a
// retrying wrapper around one upstream request and a bounded-concurrency
// fan-out over many of them.
package fetch

import (
	"context"
	"errors"
	"sync"

	"arena-archive/internal/api"
	"arena-archive/internal/constants"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"
)

// Do runs one fetch attempt under exponential backoff with jitter.
// Transport failures and non-2xx statuses are transient and retried;
// decode failures and 404s are permanent and surface immediately. Budget
// exhaustion surfaces the last transient error, at which point the caller
// treats the item as failed for this scan.
func Do[T any](ctx context.Context, logger zerolog.Logger, fn func(context.Context) (*T, error)) (*T, error) {
	b := retry.NewExponential(constants.FetchBackoffBase)
	b = retry.WithJitterPercent(20, b)
	b = retry.WithCappedDuration(constants.FetchBackoffLimit, b)
	b = retry.WithMaxRetries(constants.FetchMaxRetries, b)

	var result *T
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			if Permanent(err) {
				return err
			}
			logger.Warn().Err(err).Msg("fetch failed, will retry")
			return retry.RetryableError(err)
		}
		result = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Permanent reports whether err is not worth retrying: the payload could
// not be decoded, or the resource does not exist upstream.
func Permanent(err error) bool {
	var de *api.DecodeError
	if errors.As(err, &de) {
		return true
	}
	var se *api.StatusError
	if errors.As(err, &se) && se.NotFound() {
		return true
	}
	return false
}

// Map runs fetch over every item with at most limit simultaneously in
// flight. Results are collected in completion order; items whose fetch
// fails are dropped from the output. Logging a drop is the fetch
// function's job, since only it knows the item.
func Map[I, O any](ctx context.Context, limit int, items []I, fetch func(context.Context, I) (O, error)) []O {
	var (
		mu  sync.Mutex
		out []O
	)

	g := &errgroup.Group{}
	g.SetLimit(limit)

	for _, item := range items {
		g.Go(func() error {
			v, err := fetch(ctx, item)
			if err != nil {
				return nil
			}
			mu.Lock()
			out = append(out, v)
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return out
}
