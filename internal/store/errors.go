package store

import "errors"

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrVersionConflict is returned when an optimistic version check fails.
	ErrVersionConflict = errors.New("version conflict")

	// ErrOpenSessionExists is returned when a user already has a session that is not COMPLETED.
	ErrOpenSessionExists = errors.New("open session exists")

	// ErrDuplicateRatingBonus is returned when the ledger already holds a rating bonus for a task item.
	ErrDuplicateRatingBonus = errors.New("duplicate rating bonus")
)
