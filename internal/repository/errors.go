package repository

import "errors"

var (
	// ErrDuplicate is returned when an insert or update hits a unique
	// constraint (email, serial number).
	ErrDuplicate = errors.New("duplicate value for unique field")

	// ErrNoUnitsAvailable is returned by ItemRepository.ReserveUnit when
	// the conditional decrement matched no row: every unit is out, or the
	// item is in maintenance/retired.
	ErrNoUnitsAvailable = errors.New("no units available")
)
