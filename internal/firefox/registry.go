package firefox

import (
	"fmt"
	"strings"
)

// Hive is a registry root, named by its canonical literal.
type Hive string

const (
	HiveLocalMachine Hive = "HKEY_LOCAL_MACHINE"
	HiveCurrentUser  Hive = "HKEY_CURRENT_USER"
)

// ParseHive accepts the two hive literals discovery produces.
func ParseHive(s string) (Hive, error) {
	switch Hive(s) {
	case HiveLocalMachine, HiveCurrentUser:
		return Hive(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownHive, s)
}

// Registry is the subset of the OS registry the engine needs. Implementations
// open a key per call and close it before returning.
type Registry interface {
	// ValueNames lists the value names stored directly under hive\path.
	// A missing key yields an error matching ErrKeyNotFound.
	ValueNames(hive Hive, path string) ([]string, error)

	// ReadValue returns the string data of a value.
	ReadValue(hive Hive, path, name string) (string, error)

	// DeleteValue opens hive\path for writing and deletes the named value.
	DeleteValue(hive Hive, path, name string) error
}

// RegistryLocator addresses a single registry value.
type RegistryLocator struct {
	Hive  Hive
	Path  string
	Value string
}

// String renders the locator as HIVE\path\value.
func (l RegistryLocator) String() string {
	return string(l.Hive) + `\` + l.Path + `\` + l.Value
}

// ParseRegistryLocator splits HIVE\sub\key\value into its parts. The first
// segment must name a known hive and at least a subkey and a value must follow.
func ParseRegistryLocator(locator string) (RegistryLocator, error) {
	hiveName, rest, ok := strings.Cut(locator, `\`)
	if !ok {
		return RegistryLocator{}, fmt.Errorf("%w: %q", ErrMalformedLocator, locator)
	}

	hive, err := ParseHive(hiveName)
	if err != nil {
		return RegistryLocator{}, err
	}

	i := strings.LastIndex(rest, `\`)
	if i <= 0 || i == len(rest)-1 {
		return RegistryLocator{}, fmt.Errorf("%w: %q", ErrMalformedLocator, locator)
	}

	return RegistryLocator{
		Hive:  hive,
		Path:  rest[:i],
		Value: rest[i+1:],
	}, nil
}
