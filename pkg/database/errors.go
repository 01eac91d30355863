package database

import (
	"errors"

	"github.com/crisdut/gossip/pkg/interfaces/store"
)

// isKindError reports whether err already carries one of the store error
// kinds, so wrapping layers don't stack a second kind on top.
func isKindError(err error) (is bool) {
	return errors.Is(err, store.ErrUnavailable) ||
		errors.Is(err, store.ErrCorruptRecord)
}
