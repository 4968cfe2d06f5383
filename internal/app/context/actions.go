package context

import (
	"context"
	"errors"
	"fmt"
)

// Action is a write that can be undone.
type Action interface {
	// Execute performs the action.
	Execute(ctx context.Context) error

	// Rollback undoes a successful Execute.
	Rollback(ctx context.Context) error

	// Description returns a human-readable description for logging.
	Description() string
}

// Stage records an action without executing it. Dry runs use it to report
// what would have been written.
func (rc *RequestContext) Stage(action Action) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.rolledBack {
		return ErrRolledBack
	}

	rc.staged = append(rc.staged, action)

	return nil
}

// Do executes action now and remembers it for Rollback. A failed action is
// not remembered.
func (rc *RequestContext) Do(ctx context.Context, action Action) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.rolledBack {
		return ErrRolledBack
	}

	if err := action.Execute(ctx); err != nil {
		return fmt.Errorf("action %q failed: %w", action.Description(), err)
	}

	rc.executed = append(rc.executed, action)

	return nil
}

// Rollback undoes every executed action in reverse order. It keeps going
// past failures and returns them joined.
func (rc *RequestContext) Rollback(ctx context.Context) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.rolledBack {
		return ErrRolledBack
	}

	rc.rolledBack = true

	var errs []error
	for i := len(rc.executed) - 1; i >= 0; i-- {
		if err := rc.executed[i].Rollback(ctx); err != nil {
			errs = append(errs, fmt.Errorf("rolling back %q: %w", rc.executed[i].Description(), err))
		}
	}

	rc.executed = nil

	return errors.Join(errs...)
}

// Staged returns a copy of the staged actions.
func (rc *RequestContext) Staged() []Action {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	return append([]Action(nil), rc.staged...)
}

// Executed returns a copy of the executed, not yet rolled back actions.
func (rc *RequestContext) Executed() []Action {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	return append([]Action(nil), rc.executed...)
}
