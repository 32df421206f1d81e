package databases

import (
	"context"
	"time"
)

// QueryObserverFunc receives the outcome of every mongo collection call. The
// context is the one the caller ran the query under, so request-scoped values
// (like a trace) are visible to the observer.
type QueryObserverFunc func(ctx context.Context, operation, collection string, duration time.Duration, err error)

var queryObserver QueryObserverFunc

// SetQueryObserver installs fn as the process-wide query observer. Install it
// once at startup, before the router starts serving.
func SetQueryObserver(fn QueryObserverFunc) {
	queryObserver = fn
}

func observeQuery(ctx context.Context, operation, collection string, start time.Time, err error) {
	if queryObserver != nil {
		queryObserver(ctx, operation, collection, time.Since(start), err)
	}
}
