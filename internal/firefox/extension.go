package firefox

import (
	"encoding/json"
	"fmt"
)

// Kind identifies how an extension is stored, and so how it is removed.
type Kind int

const (
	KindDirectory Kind = iota + 1
	KindArchive
	KindRegistry
)

func (k Kind) String() string {
	switch k {
	case KindDirectory:
		return "dir"
	case KindArchive:
		return "xpi"
	case KindRegistry:
		return "registry"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "dir":
		return KindDirectory, nil
	case "xpi":
		return KindArchive, nil
	case "registry":
		return KindRegistry, nil
	}
	return 0, fmt.Errorf("unknown extension kind %q (use dir, xpi or registry)", s)
}

func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Source is one of the fixed locations discovery scans, in scan order.
type Source int

const (
	SourceUserGlobal Source = iota + 1
	SourceUserProfile
	SourceMachineDir
	SourceMachineRegistry
	SourceUserRegistry
	SourceMachineWOWRegistry
)

var sourceNames = map[Source]string{
	SourceUserGlobal:         "user",
	SourceUserProfile:        "profile",
	SourceMachineDir:         "machine",
	SourceMachineRegistry:    "machine-registry",
	SourceUserRegistry:       "user-registry",
	SourceMachineWOWRegistry: "machine-registry-wow64",
}

func (s Source) String() string {
	if name, ok := sourceNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Source(%d)", int(s))
}

func (s Source) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Extension is one discovered extension.
type Extension struct {
	// Name is unique within the catalog that holds the extension.
	Name string `json:"name"`

	// Locator is a filesystem path for directory and archive extensions and
	// HIVE\subkey\value for registry extensions.
	Locator string `json:"locator"`

	Kind   Kind   `json:"kind"`
	Source Source `json:"source"`
}
