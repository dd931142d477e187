//go:build windows

package firefox

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

type systemRegistry struct{}

// SystemRegistry returns the Windows registry.
func SystemRegistry() Registry {
	return systemRegistry{}
}

func rootKey(hive Hive) (registry.Key, error) {
	switch hive {
	case HiveLocalMachine:
		return registry.LOCAL_MACHINE, nil
	case HiveCurrentUser:
		return registry.CURRENT_USER, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownHive, string(hive))
}

func openKey(hive Hive, path string, access uint32) (registry.Key, error) {
	root, err := rootKey(hive)
	if err != nil {
		return 0, err
	}
	k, err := registry.OpenKey(root, path, access)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s\\%s", ErrKeyNotFound, hive, path)
		}
		return 0, fmt.Errorf("failed to open %s\\%s: %w", hive, path, err)
	}
	return k, nil
}

func (systemRegistry) ValueNames(hive Hive, path string) ([]string, error) {
	k, err := openKey(hive, path, registry.QUERY_VALUE)
	if err != nil {
		return nil, err
	}
	defer k.Close()

	names, err := k.ReadValueNames(0)
	if err != nil {
		return nil, fmt.Errorf("failed to read values of %s\\%s: %w", hive, path, err)
	}
	return names, nil
}

func (systemRegistry) ReadValue(hive Hive, path, name string) (string, error) {
	k, err := openKey(hive, path, registry.QUERY_VALUE)
	if err != nil {
		return "", err
	}
	defer k.Close()

	value, _, err := k.GetStringValue(name)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return "", fmt.Errorf("%w: %s\\%s\\%s", ErrKeyNotFound, hive, path, name)
		}
		return "", err
	}
	return value, nil
}

func (systemRegistry) DeleteValue(hive Hive, path, name string) error {
	k, err := openKey(hive, path, registry.SET_VALUE)
	if err != nil {
		return err
	}
	defer k.Close()

	return k.DeleteValue(name)
}
