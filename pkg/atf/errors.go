package atf

import "errors"

// Canonical model validation errors.
var (
	// ErrInvalidIOType is returned when an IOType is neither Read nor Write.
	ErrInvalidIOType = errors.New("invalid IOType")

	// ErrNegativeTimestamp is returned when an event carries a negative timestamp.
	ErrNegativeTimestamp = errors.New("negative timestamp")

	// ErrNonPositiveSize is returned when an event size is less than 1.
	ErrNonPositiveSize = errors.New("non-positive size")

	// ErrNonPositiveCost is returned when an event cost is not greater than 0.
	ErrNonPositiveCost = errors.New("non-positive cost")

	// ErrBadRecord is returned when an ATF line does not decompose into five fields.
	ErrBadRecord = errors.New("malformed ATF record")
)
