package achievement

import "errors"

var (
	// ErrAlreadyGranted is returned by a Store when the (subject, type,
	// period) triple already exists. The engine treats it as a no-op.
	ErrAlreadyGranted = errors.New("achievement already granted")

	// ErrUnknownType is returned for types missing from the catalog.
	ErrUnknownType = errors.New("unknown achievement type")

	// ErrMissingSubject is returned when a grant has no subject ID.
	ErrMissingSubject = errors.New("missing subject id")
)
