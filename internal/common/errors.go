// Package common defines sentinel errors and small helpers shared by the
// registry layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Identity errors.
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Vehicle errors.
	ErrDuplicatePlate  = errors.New("a vehicle with this plate number already exists")
	ErrInvalidYear     = errors.New("invalid model year")
	ErrInvalidStatus   = errors.New("invalid status transition target")
	ErrAlreadyVerified = errors.New("vehicle has already been verified")

	// Generic errors.
	ErrNotFound       = errors.New("not found")
	ErrValidation     = errors.New("validation error")
	ErrStorageFailure = errors.New("storage failure")
)
