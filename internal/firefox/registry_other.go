//go:build !windows

package firefox

import "fmt"

type systemRegistry struct{}

// SystemRegistry returns a registry with no keys; only Windows has one.
func SystemRegistry() Registry {
	return systemRegistry{}
}

func (systemRegistry) ValueNames(hive Hive, path string) ([]string, error) {
	return nil, fmt.Errorf("%w: %s\\%s", ErrKeyNotFound, hive, path)
}

func (systemRegistry) ReadValue(hive Hive, path, name string) (string, error) {
	return "", fmt.Errorf("%w: %s\\%s\\%s", ErrKeyNotFound, hive, path, name)
}

func (systemRegistry) DeleteValue(hive Hive, path, name string) error {
	return fmt.Errorf("%w: %s\\%s\\%s", ErrKeyNotFound, hive, path, name)
}
