package firefox

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// NameFromInstallManifest extracts the text between the first <em:name> and
// the first </em:name>. It reports false when either marker is missing, the
// markers are out of order, or nothing lies between them.
func NameFromInstallManifest(text string) (string, bool) {
	open := strings.Index(text, nameOpenMarker)
	closing := strings.Index(text, nameCloseMarker)
	if open < 0 || closing < 0 {
		return "", false
	}

	start := open + len(nameOpenMarker)
	if closing <= start {
		return "", false
	}
	return text[start:closing], true
}

// readManifestName reads path and applies NameFromInstallManifest. A missing
// file reports false with no error.
func readManifestName(path string) (string, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	name, ok := NameFromInstallManifest(string(data))
	return name, ok, nil
}

// directoryName resolves the display name of an unpacked extension: the
// install.rdf name when one is present, otherwise the directory's base name.
// An empty <em:name></em:name> counts as absent, so the directory name wins
// rather than an empty display name.
func directoryName(dir string) (string, error) {
	name := filepath.Base(dir)

	manifest := filepath.Join(dir, InstallManifestName)
	info, err := os.Stat(manifest)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return name, nil
		}
		return "", fmt.Errorf("failed to stat %s: %w", manifest, err)
	}
	if !info.Mode().IsRegular() {
		return name, nil
	}

	manifestName, ok, err := readManifestName(manifest)
	if err != nil {
		return "", err
	}
	if ok {
		name = manifestName
	}
	return name, nil
}
