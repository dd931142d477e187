package firefox

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// registrySources are scanned after the directory sources, in this order.
var registrySources = []struct {
	source Source
	hive   Hive
	path   string
}{
	{SourceMachineRegistry, HiveLocalMachine, MachineExtensionsKey},
	{SourceUserRegistry, HiveCurrentUser, UserExtensionsKey},
	{SourceMachineWOWRegistry, HiveLocalMachine, WOWExtensionsKey},
}

// scan builds a fresh catalog from all sources. The order matters: an
// extension found earlier keeps its bare name when a later one collides.
func (e *Engine) scan() (*Catalog, error) {
	c := NewCatalog()

	if err := e.scanExtensionDir(c, SourceUserGlobal, e.roots.UserExtensionsDir()); err != nil {
		return nil, err
	}

	profiles, err := subdirectories(e.roots.ProfilesDir())
	if err != nil {
		return nil, err
	}
	for _, profile := range profiles {
		if err := e.scanExtensionDir(c, SourceUserProfile, filepath.Join(profile, "extensions")); err != nil {
			return nil, err
		}
	}

	if err := e.scanExtensionDir(c, SourceMachineDir, e.roots.MachineExtensionsDir()); err != nil {
		return nil, err
	}

	for _, rs := range registrySources {
		if err := e.scanRegistryKey(c, rs.source, rs.hive, rs.path); err != nil {
			return nil, err
		}
	}

	e.logger.Debug("Scan complete", e.logger.Args("extensions", c.Len()))
	return c, nil
}

// scanExtensionDir adds every unpacked extension directory under dir, then
// every .xpi package.
func (e *Engine) scanExtensionDir(c *Catalog, source Source, dir string) error {
	dirs, err := subdirectories(dir)
	if err != nil {
		return err
	}
	for _, sub := range dirs {
		name, err := directoryName(sub)
		if err != nil {
			return err
		}
		e.add(c, Extension{Name: name, Locator: sub, Kind: KindDirectory, Source: source})
	}

	archives, err := archiveFiles(dir)
	if err != nil {
		return err
	}
	for _, path := range archives {
		name, err := e.archiveName(path)
		if err != nil {
			e.logger.Warn("Could not read extension package, using file name", e.logger.Args("path", path, "error", err))
		}
		e.add(c, Extension{Name: name, Locator: path, Kind: KindArchive, Source: source})
	}
	return nil
}

func (e *Engine) scanRegistryKey(c *Catalog, source Source, hive Hive, path string) error {
	if e.registry == nil {
		return nil
	}

	names, err := e.registry.ValueNames(hive, path)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			e.logger.Debug("Registry key not present", e.logger.Args("hive", hive, "key", path))
			return nil
		}
		return fmt.Errorf("failed to read registry key %s\\%s: %w", hive, path, err)
	}

	for _, value := range names {
		// The unnamed default value is not an extension pointer.
		if value == "" {
			continue
		}
		locator := RegistryLocator{Hive: hive, Path: path, Value: value}
		e.add(c, Extension{Name: value, Locator: locator.String(), Kind: KindRegistry, Source: source})
	}
	return nil
}

func (e *Engine) add(c *Catalog, ext Extension) {
	stored := c.Add(ext)
	e.logger.Debug("Found extension", e.logger.Args(
		"name", stored.Name,
		"kind", stored.Kind,
		"source", stored.Source,
		"locator", stored.Locator,
	))
}

// listDir returns the entries of dir in lexical order. A missing or unset
// directory, or a path that is not a directory, yields no entries.
func listDir(dir string) ([]fs.DirEntry, error) {
	if dir == "" {
		return nil, nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	return entries, nil
}

// subdirectories returns the full paths of the immediate subdirectories of dir.
// Links to directories count as directories.
func subdirectories(dir string) ([]string, error) {
	entries, err := listDir(dir)
	if err != nil {
		return nil, err
	}

	var dirs []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			dirs = append(dirs, path)
			continue
		}
		if entry.Type()&fs.ModeSymlink != 0 {
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				dirs = append(dirs, path)
			}
		}
	}
	return dirs, nil
}

// archiveFiles returns the full paths of the .xpi files directly inside dir.
func archiveFiles(dir string) ([]string, error) {
	entries, err := listDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ArchiveExt) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			files = append(files, path)
		}
	}
	return files, nil
}
