package models

import "fmt"

// NotFoundError reports an absent Order, MenuItem or User id.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s with id=%s not found", e.Entity, e.ID)
}

// ValidationError reports invalid caller input: an unknown status
// literal, a non-closed patch field, quantity below 1, an empty item
// list and the like.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
