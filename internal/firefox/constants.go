// Package firefox discovers Firefox extensions installed on the local machine
// and removes them again.
package firefox

const (
	// InstallManifestName is the metadata descriptor shipped with legacy extensions.
	InstallManifestName = "install.rdf"

	// ArchiveExt is the file extension of packaged extensions.
	ArchiveExt = ".xpi"

	// Markers bracketing the display name inside install.rdf.
	nameOpenMarker  = "<em:name>"
	nameCloseMarker = "</em:name>"

	// uniqueSuffix is appended to a colliding name until it is unique.
	uniqueSuffix = "1"
)

const (
	// MachineExtensionsKey lists machine-wide extensions under HKEY_LOCAL_MACHINE.
	MachineExtensionsKey = `Software\mozilla\firefox\extensions`

	// UserExtensionsKey is the same relative key under HKEY_CURRENT_USER.
	UserExtensionsKey = MachineExtensionsKey

	// WOWExtensionsKey is the 32-bit compatibility view of the machine key.
	WOWExtensionsKey = `SOFTWARE\Wow6432Node\Mozilla\Firefox\Extensions`
)
