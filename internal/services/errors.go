package services

import "errors"

// Sentinel errors returned by the stores. Handlers map these onto HTTP
// status codes; anything else is a storage failure and surfaces as a 500.
var (
	// ErrNotFound covers both truly absent entities and entities hidden
	// from the caller (unpublished notifications on public paths).
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput marks a write rejected before any mutation began.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUsernameTaken is returned when the username uniqueness invariant
	// would be violated.
	ErrUsernameTaken = errors.New("username taken")

	// ErrInvalidCredentials is returned on a failed login. It deliberately
	// does not distinguish unknown user from wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnsupportedType is returned for uploads whose extension is not in
	// the allow-list.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrTooLarge is returned for uploads over the configured size cap.
	ErrTooLarge = errors.New("file too large")

	// ErrFileRemoved is returned when attachment metadata exists but the
	// underlying file is gone from storage. Kept distinct from ErrNotFound
	// for observability; both map to 404 on the wire.
	ErrFileRemoved = errors.New("file removed from storage")
)
