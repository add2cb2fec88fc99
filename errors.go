package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSelectID is returned when an adapter has no way to extract ids.
	ErrNoSelectID = errors.New("entity: no id function configured and record type does not implement Keyed")
	// ErrUndefinedID is reported when a record has no id.
	ErrUndefinedID = errors.New("entity: record id is undefined")
	// ErrDuplicateID is reported when a batch or re-key produces an id twice.
	ErrDuplicateID = errors.New("entity: duplicate record id")
)

// UsageError describes a record the engine skipped or resolved while
// applying an operation.
type UsageError struct {
	// Op is the name of the operation that detected the error.
	Op string
	// ID is the offending id when one is known.
	ID any
	// Record is the offending record.
	Record any
	// Err is ErrUndefinedID or ErrDuplicateID.
	Err error
}

func (e *UsageError) Error() string {
	if e.ID != nil {
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Err, e.ID)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UsageError) Unwrap() error {
	return e.Err
}
