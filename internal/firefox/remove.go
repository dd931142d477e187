package firefox

import (
	"fmt"
	"os"

	"github.com/kernel/extkill/pkg/util"
)

// Remove deletes the backing store of the named extension and drops it from
// the catalog. Environmental failures (permissions, locked files, vanished
// keys) are reported as false. An unknown name, an unknown kind or a broken
// registry locator are returned as errors.
func (e *Engine) Remove(name string) (bool, error) {
	ext, ok := e.catalog.Get(name)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrExtensionNotFound, name)
	}

	var removed bool
	switch ext.Kind {
	case KindDirectory:
		removed = e.removeDirectory(ext)
	case KindArchive:
		removed = e.removeArchive(ext)
	case KindRegistry:
		var err error
		removed, err = e.removeRegistryValue(ext)
		if err != nil {
			return false, err
		}
	default:
		return false, fmt.Errorf("%w: %s", ErrUnknownKind, ext.Kind)
	}

	if removed {
		e.catalog.Delete(name)
	}
	return removed, nil
}

func (e *Engine) removeDirectory(ext Extension) bool {
	if _, err := os.Lstat(ext.Locator); err != nil {
		e.logRemoveFailure(ext, err)
		return false
	}
	if err := util.MakeWritable(ext.Locator); err != nil {
		e.logRemoveFailure(ext, err)
		return false
	}
	if err := e.removeAll(ext.Locator); err != nil {
		e.logRemoveFailure(ext, err)
		return false
	}
	return true
}

func (e *Engine) removeArchive(ext Extension) bool {
	if err := e.removeFile(ext.Locator); err != nil {
		e.logRemoveFailure(ext, err)
		return false
	}
	return true
}

func (e *Engine) removeRegistryValue(ext Extension) (bool, error) {
	loc, err := ParseRegistryLocator(ext.Locator)
	if err != nil {
		return false, err
	}
	if e.registry == nil {
		e.logRemoveFailure(ext, fmt.Errorf("no registry available"))
		return false, nil
	}
	if err := e.registry.DeleteValue(loc.Hive, loc.Path, loc.Value); err != nil {
		e.logRemoveFailure(ext, err)
		return false, nil
	}
	return true, nil
}

func (e *Engine) logRemoveFailure(ext Extension, err error) {
	e.logger.Debug("Removal failed", e.logger.Args("name", ext.Name, "kind", ext.Kind, "locator", ext.Locator, "error", err))
}
