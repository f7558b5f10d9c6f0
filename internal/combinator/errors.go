package combinator

import "errors"

var (
	// ErrInvalidDenominations is returned when denominations are missing or contain invalid entries.
	ErrInvalidDenominations = errors.New("denominations must contain between 1 and 10 distinct positive integers")
	// ErrInvalidTarget is returned when the target postage amount is not a positive number of cents.
	ErrInvalidTarget = errors.New("target must be a positive number of cents")
	// ErrInvalidMaxPrice is returned when the maximum price is not a positive number of cents.
	ErrInvalidMaxPrice = errors.New("max price must be a positive number of cents")
	// ErrInvalidMaxStamps is returned when the stamp count ceiling is less than one.
	ErrInvalidMaxStamps = errors.New("max stamps must be a positive integer")
)
