package records

import "errors"

var (
	// ErrPatientNotFound indicates no patient is registered for the lookup key.
	ErrPatientNotFound = errors.New("records: patient not found")
	// ErrPatientExists indicates a patient is already registered for the phone number.
	ErrPatientExists = errors.New("records: patient already registered")
	// ErrProviderNotFound indicates the provider id is unknown.
	ErrProviderNotFound = errors.New("records: provider not found")
	// ErrInvalidCoordinates indicates coordinates outside the valid lat/lon range.
	ErrInvalidCoordinates = errors.New("records: invalid coordinates")
	// ErrNoProviders indicates the provider directory is empty.
	ErrNoProviders = errors.New("records: no providers available")
)
