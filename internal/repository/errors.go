package repository

import "fmt"

// ErrAlreadyAssigned is returned when an assignment batch contains an item
// that another reviewer already owns. The whole batch is rolled back.
var ErrAlreadyAssigned = fmt.Errorf("item is already assigned")

// ConflictError wraps ErrAlreadyAssigned with the offending item id.
type ConflictError struct {
	ItemID int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("item %d is already assigned", e.ItemID)
}

func (e *ConflictError) Unwrap() error {
	return ErrAlreadyAssigned
}
