package chat

import (
	"errors"
	"fmt"

	"github.com/pliu/courier/internal/store"
)

// Error taxonomy shared by every core operation. Handlers map these to HTTP
// status codes; nothing in the core panics for an expected condition.
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrBadRequest = errors.New("bad request")
	ErrConflict   = errors.New("already exists")
	ErrValidation = errors.New("validation failed")
)

// wrapStoreErr lifts store sentinels into the core taxonomy, annotating with
// what was being looked up. Unknown errors pass through untouched so storage
// failures stay visible.
func wrapStoreErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	case errors.Is(err, store.ErrDuplicate):
		return fmt.Errorf("%s: %w", what, ErrConflict)
	}
	return err
}
