package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/kernel/extkill/internal/backup"
	"github.com/kernel/extkill/internal/firefox"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var outBuf bytes.Buffer

// setupStdoutCapture sends pterm output to outBuf. The prefix printers keep
// their own writer, so they are redirected one by one.
func setupStdoutCapture(t *testing.T) {
	t.Helper()
	outBuf.Reset()

	printers := []*pterm.PrefixPrinter{&pterm.Info, &pterm.Success, &pterm.Warning, &pterm.Error}
	saved := make([]io.Writer, len(printers))
	for i, p := range printers {
		saved[i] = p.Writer
		p.Writer = &outBuf
	}

	pterm.SetDefaultOutput(&outBuf)
	pterm.DisableStyling()
	t.Cleanup(func() {
		for i, p := range printers {
			p.Writer = saved[i]
		}
		pterm.SetDefaultOutput(os.Stdout)
		pterm.EnableStyling()
	})
}

// captureStdout collects what fn writes directly to os.Stdout.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	t.Cleanup(func() {
		os.Stdout = oldStdout
	})

	fn()

	w.Close()
	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

type FakeExtensionService struct {
	catalog *firefox.Catalog

	RemoveFunc func(name string) (bool, error)
	ReloadFunc func() error

	removed []string
	reloads int
}

func newFakeService(exts ...firefox.Extension) *FakeExtensionService {
	c := firefox.NewCatalog()
	for _, ext := range exts {
		c.Add(ext)
	}
	return &FakeExtensionService{catalog: c}
}

func (f *FakeExtensionService) Catalog() *firefox.Catalog {
	return f.catalog.Clone()
}

func (f *FakeExtensionService) Remove(name string) (bool, error) {
	f.removed = append(f.removed, name)
	if f.RemoveFunc != nil {
		return f.RemoveFunc(name)
	}
	if !f.catalog.Delete(name) {
		return false, firefox.ErrExtensionNotFound
	}
	return true, nil
}

func (f *FakeExtensionService) Reload() error {
	f.reloads++
	if f.ReloadFunc != nil {
		return f.ReloadFunc()
	}
	return nil
}

type FakeBackupService struct {
	SaveFunc func(ext firefox.Extension) (*backup.Result, error)
	saved    []string
}

func (f *FakeBackupService) Save(ext firefox.Extension) (*backup.Result, error) {
	f.saved = append(f.saved, ext.Name)
	if f.SaveFunc != nil {
		return f.SaveFunc(ext)
	}
	return &backup.Result{Path: filepath.Join("backups", ext.Name+".zip"), Bytes: 2048}, nil
}

var (
	dirExt = firefox.Extension{
		Name:    "Adblock Plus",
		Locator: filepath.FromSlash("/appdata/mozilla/extensions/{d10d0bf8}"),
		Kind:    firefox.KindDirectory,
		Source:  firefox.SourceUserGlobal,
	}
	xpiExt = firefox.Extension{
		Name:    "myext-1.0",
		Locator: filepath.FromSlash("/pf/Mozilla Firefox/browser/extensions/myext-1.0.xpi"),
		Kind:    firefox.KindArchive,
		Source:  firefox.SourceMachineDir,
	}
	regExt = firefox.Extension{
		Name:    "helper@example.com",
		Locator: `HKEY_CURRENT_USER\Software\mozilla\firefox\extensions\helper@example.com`,
		Kind:    firefox.KindRegistry,
		Source:  firefox.SourceUserRegistry,
	}
)

func TestExtensionsList_PrintsTable(t *testing.T) {
	setupStdoutCapture(t)
	c := ExtensionsCmd{extensions: newFakeService(dirExt, xpiExt, regExt)}

	require.NoError(t, c.List(ListExtensionsInput{}))

	out := outBuf.String()
	assert.Contains(t, out, "Adblock Plus")
	assert.Contains(t, out, "myext-1.0")
	assert.Contains(t, out, "helper@example.com")
	assert.Contains(t, out, "user-registry")
	assert.Contains(t, out, "3 extensions")
}

func TestExtensionsList_FiltersByKind(t *testing.T) {
	setupStdoutCapture(t)
	c := ExtensionsCmd{extensions: newFakeService(dirExt, xpiExt, regExt)}

	require.NoError(t, c.List(ListExtensionsInput{Kind: "xpi"}))

	out := outBuf.String()
	assert.Contains(t, out, "myext-1.0")
	assert.NotContains(t, out, "Adblock Plus")
	assert.Contains(t, out, "1 extension")
}

func TestExtensionsList_InvalidKind(t *testing.T) {
	setupStdoutCapture(t)
	c := ExtensionsCmd{extensions: newFakeService(dirExt)}

	assert.Error(t, c.List(ListExtensionsInput{Kind: "zip"}))
}

func TestExtensionsList_Empty(t *testing.T) {
	setupStdoutCapture(t)
	c := ExtensionsCmd{extensions: newFakeService()}

	require.NoError(t, c.List(ListExtensionsInput{}))
	assert.Contains(t, outBuf.String(), "No extensions found")
}

func TestExtensionsList_JSONOutput(t *testing.T) {
	setupStdoutCapture(t)
	c := ExtensionsCmd{extensions: newFakeService(dirExt, regExt)}

	out := captureStdout(t, func() {
		require.NoError(t, c.List(ListExtensionsInput{Output: "json"}))
	})

	var decoded []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Adblock Plus", decoded[0]["name"])
	assert.Equal(t, "dir", decoded[0]["kind"])
	assert.Equal(t, "user", decoded[0]["source"])
	assert.Equal(t, "registry", decoded[1]["kind"])
}

func TestExtensionsList_JSONOutputEmptyIsArray(t *testing.T) {
	setupStdoutCapture(t)
	c := ExtensionsCmd{extensions: newFakeService(dirExt)}

	out := captureStdout(t, func() {
		require.NoError(t, c.List(ListExtensionsInput{Kind: "registry", Output: "json"}))
	})
	assert.Equal(t, "[]\n", out)
}

func TestExtensionsList_UnsupportedOutput(t *testing.T) {
	c := ExtensionsCmd{extensions: newFakeService()}
	assert.Error(t, c.List(ListExtensionsInput{Output: "yaml"}))
}

func TestExtensionsShow_PrintsProperties(t *testing.T) {
	setupStdoutCapture(t)
	c := ExtensionsCmd{extensions: newFakeService(dirExt)}

	require.NoError(t, c.Show(ShowExtensionInput{Name: "Adblock Plus"}))

	out := outBuf.String()
	assert.Contains(t, out, "Location")
	assert.Contains(t, out, dirExt.Locator)
}

func TestExtensionsShow_NotFound(t *testing.T) {
	setupStdoutCapture(t)
	c := ExtensionsCmd{extensions: newFakeService(dirExt)}

	err := c.Show(ShowExtensionInput{Name: "nope"})
	assert.ErrorIs(t, err, firefox.ErrExtensionNotFound)
}

func TestExtensionsShow_RevealOpensFolder(t *testing.T) {
	setupStdoutCapture(t)
	var opened []string
	c := ExtensionsCmd{
		extensions: newFakeService(dirExt, xpiExt),
		reveal: func(path string) error {
			opened = append(opened, path)
			return nil
		},
	}

	require.NoError(t, c.Show(ShowExtensionInput{Name: "Adblock Plus", Reveal: true}))
	require.NoError(t, c.Show(ShowExtensionInput{Name: "myext-1.0", Reveal: true}))

	assert.Equal(t, []string{dirExt.Locator, filepath.Dir(xpiExt.Locator)}, opened)
}

func TestExtensionsShow_RevealRegistryFails(t *testing.T) {
	setupStdoutCapture(t)
	c := ExtensionsCmd{
		extensions: newFakeService(regExt),
		reveal: func(path string) error {
			t.Fatalf("reveal should not be called, got %s", path)
			return nil
		},
	}

	assert.Error(t, c.Show(ShowExtensionInput{Name: regExt.Name, Reveal: true}))
}

func TestExtensionsRemove_DeletesAndRescans(t *testing.T) {
	setupStdoutCapture(t)
	fake := newFakeService(dirExt, xpiExt, regExt)
	c := ExtensionsCmd{extensions: fake}

	err := c.Remove(RemoveExtensionsInput{Names: []string{"myext-1.0", "helper@example.com", "myext-1.0"}, SkipConfirm: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"myext-1.0", "helper@example.com"}, fake.removed)
	assert.Equal(t, 1, fake.reloads)

	out := outBuf.String()
	assert.Contains(t, out, "Deleted extension: myext-1.0")
	assert.Contains(t, out, "1 extension remaining")
}

func TestExtensionsRemove_ReportsFailureAndContinues(t *testing.T) {
	setupStdoutCapture(t)
	fake := newFakeService(dirExt, xpiExt)
	fake.RemoveFunc = func(name string) (bool, error) {
		return name != "Adblock Plus", nil
	}
	c := ExtensionsCmd{extensions: fake}

	err := c.Remove(RemoveExtensionsInput{Names: []string{"Adblock Plus", "myext-1.0"}, SkipConfirm: true})
	require.Error(t, err)

	assert.Equal(t, []string{"Adblock Plus", "myext-1.0"}, fake.removed)
	assert.Equal(t, 1, fake.reloads)
	assert.Contains(t, outBuf.String(), "Failed to delete extension: Adblock Plus")
	assert.Contains(t, outBuf.String(), "Deleted extension: myext-1.0")
}

func TestExtensionsRemove_UnknownNameRemovesNothing(t *testing.T) {
	setupStdoutCapture(t)
	fake := newFakeService(dirExt)
	c := ExtensionsCmd{extensions: fake}

	err := c.Remove(RemoveExtensionsInput{Names: []string{"Adblock Plus", "ghost"}, SkipConfirm: true})
	assert.ErrorIs(t, err, firefox.ErrExtensionNotFound)
	assert.Empty(t, fake.removed)
}

func TestExtensionsRemove_EngineErrorAborts(t *testing.T) {
	setupStdoutCapture(t)
	fake := newFakeService(dirExt, xpiExt)
	fake.RemoveFunc = func(name string) (bool, error) {
		return false, firefox.ErrUnknownKind
	}
	c := ExtensionsCmd{extensions: fake}

	err := c.Remove(RemoveExtensionsInput{Names: []string{"Adblock Plus", "myext-1.0"}, SkipConfirm: true})
	assert.ErrorIs(t, err, firefox.ErrUnknownKind)
	assert.Equal(t, []string{"Adblock Plus"}, fake.removed)
}

func TestExtensionsRemove_ConfirmDeclined(t *testing.T) {
	setupStdoutCapture(t)
	fake := newFakeService(dirExt)
	var prompt string
	c := ExtensionsCmd{
		extensions: fake,
		confirm: func(msg string) bool {
			prompt = msg
			return false
		},
	}

	require.NoError(t, c.Remove(RemoveExtensionsInput{Names: []string{"Adblock Plus"}}))
	assert.Contains(t, prompt, "Adblock Plus")
	assert.Empty(t, fake.removed)
	assert.Zero(t, fake.reloads)
	assert.Contains(t, outBuf.String(), "Deletion cancelled")
}

func TestExtensionsRemove_BacksUpFirst(t *testing.T) {
	setupStdoutCapture(t)
	fake := newFakeService(dirExt)
	backups := &FakeBackupService{}
	c := ExtensionsCmd{extensions: fake, backups: backups}

	err := c.Remove(RemoveExtensionsInput{Names: []string{"Adblock Plus"}, SkipConfirm: true, BackupDir: "backups"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Adblock Plus"}, backups.saved)
	assert.Equal(t, []string{"Adblock Plus"}, fake.removed)
	assert.Contains(t, outBuf.String(), "2.0 KB")
}

func TestExtensionsRemove_BackupFailureSkipsRemoval(t *testing.T) {
	setupStdoutCapture(t)
	fake := newFakeService(dirExt, xpiExt)
	backups := &FakeBackupService{
		SaveFunc: func(ext firefox.Extension) (*backup.Result, error) {
			if ext.Kind == firefox.KindDirectory {
				return nil, errors.New("disk full")
			}
			return &backup.Result{Path: "x.xpi"}, nil
		},
	}
	c := ExtensionsCmd{extensions: fake, backups: backups}

	err := c.Remove(RemoveExtensionsInput{Names: []string{"Adblock Plus", "myext-1.0"}, SkipConfirm: true, BackupDir: "backups"})
	require.Error(t, err)

	assert.Equal(t, []string{"myext-1.0"}, fake.removed)
	assert.Contains(t, outBuf.String(), "disk full")
}
