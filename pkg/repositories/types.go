package repositories

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a score store holds no table yet.
type ErrNotFound struct {
	Store string
}

func (e *ErrNotFound) Error() string {
	if e.Store == "" {
		return "scores not found"
	}
	return fmt.Sprintf("scores not found in %s", e.Store)
}

func IsNotFound(err error) bool {
	var notFound *ErrNotFound
	return errors.As(err, &notFound)
}
