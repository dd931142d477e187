package firefox

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kernel/extkill/pkg/util"
)

// errNoManifest means the archive has no install.rdf entry.
var errNoManifest = errors.New("archive has no " + InstallManifestName)

// archiveBaseName returns the file name of path without its extension.
func archiveBaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// archiveName resolves the display name of a packaged extension. Any failure
// to read the package falls back to the file name; the error is returned
// alongside so the caller can log it. As with directoryName, an empty
// <em:name></em:name> keeps the file name.
func (e *Engine) archiveName(path string) (string, error) {
	name := archiveBaseName(path)

	manifestName, err := e.archiveManifestName(path)
	if err != nil {
		if errors.Is(err, errNoManifest) {
			return name, nil
		}
		return name, err
	}
	if manifestName != "" {
		name = manifestName
	}
	return name, nil
}

// archiveManifestName extracts install.rdf from the archive into a scratch
// directory, reads the name from it and removes the scratch directory.
func (e *Engine) archiveManifestName(path string) (string, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	defer reader.Close()

	var entry *zip.File
	for _, f := range reader.File {
		if f.Name == InstallManifestName {
			entry = f
			break
		}
	}
	if entry == nil {
		return "", errNoManifest
	}

	scratch, err := os.MkdirTemp(e.tempDir, "extkill-xpi-*")
	if err != nil {
		return "", fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer func() {
		if err := util.RemoveTree(scratch); err != nil {
			e.logger.Warn("Could not remove scratch directory", e.logger.Args("path", scratch, "error", err))
		}
	}()

	extracted := filepath.Join(scratch, InstallManifestName)
	if err := extractEntry(entry, extracted); err != nil {
		return "", fmt.Errorf("failed to extract %s from %s: %w", InstallManifestName, path, err)
	}

	name, ok, err := readManifestName(extracted)
	if err != nil || !ok {
		return "", err
	}
	return name, nil
}

func extractEntry(entry *zip.File, dest string) error {
	src, err := entry.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	_, err = io.Copy(out, src)
	closeErr := out.Close()
	if err != nil {
		return err
	}
	return closeErr
}
