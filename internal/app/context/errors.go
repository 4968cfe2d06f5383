package context

import "errors"

var (
	// ErrRolledBack is returned by Stage, Do and Rollback once Rollback ran.
	ErrRolledBack = errors.New("request context already rolled back")

	// ErrKeyType means two providers share a key but not a value type.
	ErrKeyType = errors.New("provider key reused with another type")
)
