package firefox

import "errors"

// Conditions that indicate a caller bug rather than an environmental failure.
// Remove returns them instead of reporting false.
var (
	ErrExtensionNotFound = errors.New("nonexistent extension specified")
	ErrUnknownKind       = errors.New("invalid extension type")
	ErrUnknownHive       = errors.New("invalid registry hive")
	ErrMalformedLocator  = errors.New("invalid registry value path")
)

// ErrKeyNotFound is returned by a Registry when the requested key or value does not exist.
var ErrKeyNotFound = errors.New("registry key not found")
