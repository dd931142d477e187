// Package backup snapshots an extension before it is removed so it can be
// restored by hand.
package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kernel/extkill/internal/firefox"
	"github.com/kernel/extkill/pkg/util"
)

// Writer saves extensions into Dir.
type Writer struct {
	Dir string

	// Registry is read for registry extensions. Nil makes them fail.
	Registry firefox.Registry

	// ExcludeDirs and ExcludeFiles leave matching entries out of directory
	// snapshots: exact directory names and filepath.Match patterns on file
	// names respectively.
	ExcludeDirs  []string
	ExcludeFiles []string
}

// Result describes one saved snapshot.
type Result struct {
	Path  string
	Bytes int64
}

// RegistryRecord is the JSON document written for a registry extension.
type RegistryRecord struct {
	Name    string    `json:"name"`
	Hive    string    `json:"hive"`
	Key     string    `json:"key"`
	Value   string    `json:"value"`
	Data    string    `json:"data"`
	SavedAt time.Time `json:"saved_at"`
}

// Save writes a snapshot of ext. Directory extensions become a zip archive,
// packaged extensions are copied and registry extensions are written as JSON.
func (w Writer) Save(ext firefox.Extension) (*Result, error) {
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	switch ext.Kind {
	case firefox.KindDirectory:
		return w.saveDirectory(ext)
	case firefox.KindArchive:
		return w.saveArchive(ext)
	case firefox.KindRegistry:
		return w.saveRegistry(ext)
	default:
		return nil, fmt.Errorf("%w: %s", firefox.ErrUnknownKind, ext.Kind)
	}
}

func (w Writer) saveDirectory(ext firefox.Extension) (*Result, error) {
	dest := w.freePath(SafeFileName(ext.Name), ".zip")
	stats, err := util.ZipDirectory(ext.Locator, dest, &util.ZipOptions{
		ExcludeDirectories:      w.ExcludeDirs,
		ExcludeFilenamePatterns: w.ExcludeFiles,
	})
	if err != nil {
		os.Remove(dest)
		return nil, fmt.Errorf("failed to archive %s: %w", ext.Locator, err)
	}
	return &Result{Path: dest, Bytes: stats.BytesIncluded}, nil
}

func (w Writer) saveArchive(ext firefox.Extension) (*Result, error) {
	base := filepath.Base(ext.Locator)
	dest := w.freePath(strings.TrimSuffix(base, filepath.Ext(base)), filepath.Ext(base))
	if err := util.CopyFile(ext.Locator, dest); err != nil {
		os.Remove(dest)
		return nil, fmt.Errorf("failed to copy %s: %w", ext.Locator, err)
	}
	info, err := os.Stat(dest)
	if err != nil {
		return nil, err
	}
	return &Result{Path: dest, Bytes: info.Size()}, nil
}

func (w Writer) saveRegistry(ext firefox.Extension) (*Result, error) {
	loc, err := firefox.ParseRegistryLocator(ext.Locator)
	if err != nil {
		return nil, err
	}
	if w.Registry == nil {
		return nil, fmt.Errorf("no registry available to read %s", ext.Locator)
	}

	data, err := w.Registry.ReadValue(loc.Hive, loc.Path, loc.Value)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ext.Locator, err)
	}

	record := RegistryRecord{
		Name:    ext.Name,
		Hive:    string(loc.Hive),
		Key:     loc.Path,
		Value:   loc.Value,
		Data:    data,
		SavedAt: time.Now().UTC(),
	}

	dest := w.freePath(SafeFileName(ext.Name), ".reg.json")
	f, err := os.Create(dest)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dest, err)
	}
	defer f.Close()

	if err := util.WritePrettyJSON(f, record); err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return &Result{Path: dest, Bytes: info.Size()}, nil
}

// freePath returns Dir/<stem><ext>, appending -1, -2, ... to stem while the path exists.
func (w Writer) freePath(stem, ext string) string {
	candidate := filepath.Join(w.Dir, stem+ext)
	for i := 1; ; i++ {
		if _, err := os.Lstat(candidate); os.IsNotExist(err) {
			return candidate
		}
		candidate = filepath.Join(w.Dir, fmt.Sprintf("%s-%d%s", stem, i, ext))
	}
}

// SafeFileName replaces characters that are not valid in Windows file names.
func SafeFileName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r < 0x20:
			return '_'
		case strings.ContainsRune(`<>:"/\|?*`, r):
			return '_'
		}
		return r
	}, name)

	cleaned = strings.TrimRight(cleaned, ". ")
	if cleaned == "" {
		return "extension"
	}
	return cleaned
}
