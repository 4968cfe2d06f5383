// Package context provides request-scoped memoization and undoable writes
// for multi-step application operations such as bulk imports.
//
// # Memoized reads
//
// Load caches a lookup for the life of one operation. Concurrent first
// loads of the same key share one fetch:
//
//	rc := context.New(ctx)
//	authors, err := context.Load[[]domain.Author](rc, authorsProvider{store})
//
// # Undoable writes
//
// Do executes an Action immediately and remembers it. Rollback undoes every
// remembered action in reverse order, which lets an all-or-nothing import
// discard the rows it already wrote:
//
//	for _, row := range rows {
//	    if err := rc.Do(ctx, &createQuote{...}); err != nil {
//	        failed++
//	    }
//	}
//	if atomic && failed > 0 {
//	    err = rc.Rollback(ctx)
//	}
//
// Stage records an action without running it, for dry runs.
package context
