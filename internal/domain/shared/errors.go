package shared

import (
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound indicates an entity missing from its collection
type ErrNotFound struct {
	Entity string
	ID     uuid.UUID
}

func (e ErrNotFound) Error() string {
	return e.Entity + " not found: " + e.ID.String()
}

// IsNotFound reports whether err is an ErrNotFound of any entity.
func IsNotFound(err error) bool {
	var nf ErrNotFound
	return errors.As(err, &nf)
}
