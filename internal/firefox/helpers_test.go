package firefox

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/require"
)

// fakeRegistry is an in-memory Registry keyed by HIVE\path.
type fakeRegistry struct {
	values map[string][]string
	data   map[string]string

	ValueNamesFunc  func(hive Hive, path string) ([]string, error)
	DeleteValueFunc func(hive Hive, path, name string) error

	deleted []RegistryLocator
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		values: make(map[string][]string),
		data:   make(map[string]string),
	}
}

func registryKey(hive Hive, path string) string {
	return string(hive) + `\` + path
}

func (f *fakeRegistry) set(hive Hive, path, name, data string) {
	key := registryKey(hive, path)
	f.values[key] = append(f.values[key], name)
	f.data[key+`\`+name] = data
}

func (f *fakeRegistry) ValueNames(hive Hive, path string) ([]string, error) {
	if f.ValueNamesFunc != nil {
		return f.ValueNamesFunc(hive, path)
	}
	names, ok := f.values[registryKey(hive, path)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, registryKey(hive, path))
	}
	return slices.Clone(names), nil
}

func (f *fakeRegistry) ReadValue(hive Hive, path, name string) (string, error) {
	data, ok := f.data[registryKey(hive, path)+`\`+name]
	if !ok {
		return "", ErrKeyNotFound
	}
	return data, nil
}

func (f *fakeRegistry) DeleteValue(hive Hive, path, name string) error {
	if f.DeleteValueFunc != nil {
		return f.DeleteValueFunc(hive, path, name)
	}
	key := registryKey(hive, path)
	names, ok := f.values[key]
	if !ok {
		return ErrKeyNotFound
	}
	i := slices.Index(names, name)
	if i < 0 {
		return ErrKeyNotFound
	}
	f.values[key] = slices.Delete(names, i, i+1)
	delete(f.data, key+`\`+name)
	f.deleted = append(f.deleted, RegistryLocator{Hive: hive, Path: path, Value: name})
	return nil
}

// testEnv lays out fake AppData and Program Files roots under a temp dir.
type testEnv struct {
	t        *testing.T
	roots    Roots
	scratch  string
	registry *fakeRegistry
	logs     *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	base := t.TempDir()
	roots := Roots{
		AppData:      filepath.Join(base, "AppData", "Roaming"),
		ProgramFiles: filepath.Join(base, "Program Files (x86)"),
	}
	env := &testEnv{
		t:        t,
		roots:    roots,
		scratch:  filepath.Join(base, "tmp"),
		registry: newFakeRegistry(),
		logs:     &bytes.Buffer{},
	}
	require.NoError(t, os.MkdirAll(env.scratch, 0755))
	return env
}

func (env *testEnv) engine() *Engine {
	env.t.Helper()
	e, err := New(env.options())
	require.NoError(env.t, err)
	return e
}

func (env *testEnv) options() Options {
	return Options{
		Roots:    env.roots,
		Registry: env.registry,
		Logger:   pterm.DefaultLogger.WithWriter(env.logs).WithLevel(pterm.LogLevelDebug),
		TempDir:  env.scratch,
	}
}

func (env *testEnv) profileExtensionsDir(profile string) string {
	return filepath.Join(env.roots.ProfilesDir(), profile, "extensions")
}

// writeFiles creates files (relative path -> content) under root.
func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for path, content := range files {
		fullPath := filepath.Join(root, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0755))
		require.NoError(t, os.WriteFile(fullPath, []byte(content), 0644))
	}
}

// writeXPI creates a zip package at path holding the given entries.
func writeXPI(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))

	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func installManifest(name string) string {
	return `<?xml version="1.0"?>
<RDF xmlns="http://www.w3.org/1999/02/22-rdf-syntax-ns#" xmlns:em="http://www.mozilla.org/2004/em-rdf#">
  <Description about="urn:mozilla:install-manifest">
    <em:id>test@example.com</em:id>
    <em:version>1.0</em:version>
    <em:name>` + name + `</em:name>
  </Description>
</RDF>`
}
