package context

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// RequestContext memoizes reads and tracks undoable writes for one
// multi-step operation. It is safe for concurrent use.
type RequestContext struct {
	ctx   context.Context
	loads singleflight.Group

	mu         sync.Mutex
	values     map[string]any
	staged     []Action
	executed   []Action
	rolledBack bool
}

// New returns a RequestContext whose fetches run with ctx.
func New(ctx context.Context) *RequestContext {
	return &RequestContext{ctx: ctx, values: make(map[string]any)}
}

// Context returns the context fetches run with.
func (rc *RequestContext) Context() context.Context {
	return rc.ctx
}

// Provider fetches one value for a RequestContext. Key identifies the value
// and must always be used with the same T.
type Provider[T any] interface {
	Key() string
	Fetch(ctx context.Context) (T, error)
}

// Load returns p's value, fetching it on first use. Concurrent first calls
// share a single fetch. A failed fetch is not cached.
func Load[T any](rc *RequestContext, p Provider[T]) (T, error) {
	key := p.Key()

	rc.mu.Lock()
	v, ok := rc.values[key]
	rc.mu.Unlock()

	if !ok {
		var err error

		v, err, _ = rc.loads.Do(key, func() (any, error) {
			fetched, err := p.Fetch(rc.ctx)
			if err != nil {
				return nil, err
			}

			rc.mu.Lock()
			rc.values[key] = fetched
			rc.mu.Unlock()

			return fetched, nil
		})
		if err != nil {
			var zero T
			return zero, err
		}
	}

	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %q holds %T", ErrKeyType, key, v)
	}

	return t, nil
}
