package firefox

import (
	"os"
	"path/filepath"
)

// Roots holds the environment-provided directories the directory sources hang off.
// An empty root disables the sources below it.
type Roots struct {
	// AppData is the per-user application data root (%APPDATA% on Windows).
	AppData string

	// ProgramFiles is the machine-wide installation root. RootsFromEnv prefers
	// the 32-bit Program Files directory when the variable is set.
	ProgramFiles string
}

// RootsFromEnv resolves Roots from the process environment.
func RootsFromEnv() Roots {
	programFiles := os.Getenv("PROGRAMFILES(X86)")
	if programFiles == "" {
		programFiles = os.Getenv("PROGRAMFILES")
	}

	return Roots{
		AppData:      os.Getenv("APPDATA"),
		ProgramFiles: programFiles,
	}
}

// MozillaDir returns <AppData>/mozilla, or "" when AppData is unset.
func (r Roots) MozillaDir() string {
	if r.AppData == "" {
		return ""
	}
	return filepath.Join(r.AppData, "mozilla")
}

// UserExtensionsDir returns the current user's global extension directory.
func (r Roots) UserExtensionsDir() string {
	mozilla := r.MozillaDir()
	if mozilla == "" {
		return ""
	}
	return filepath.Join(mozilla, "extensions")
}

// ProfilesDir returns the directory holding the current user's Firefox profiles.
func (r Roots) ProfilesDir() string {
	mozilla := r.MozillaDir()
	if mozilla == "" {
		return ""
	}
	return filepath.Join(mozilla, "Firefox", "Profiles")
}

// MachineExtensionsDir returns the extension directory of the Firefox installation.
func (r Roots) MachineExtensionsDir() string {
	if r.ProgramFiles == "" {
		return ""
	}
	return filepath.Join(r.ProgramFiles, "Mozilla Firefox", "browser", "extensions")
}
