package firefox

import (
	"io"
	"os"

	"github.com/pterm/pterm"
)

// Options configures an Engine.
type Options struct {
	// Roots locates the directory sources. Use RootsFromEnv for the real machine.
	Roots Roots

	// Registry backs the registry sources and registry removals. Nil disables them.
	Registry Registry

	// Logger receives scan and removal diagnostics. Nil discards them.
	Logger *pterm.Logger

	// TempDir is where scratch directories for archive inspection are created.
	// Defaults to os.TempDir().
	TempDir string
}

// Engine owns the extension catalog: it builds it by scanning every source
// and keeps it in step with removals. An Engine is not safe for concurrent use.
type Engine struct {
	roots    Roots
	registry Registry
	logger   *pterm.Logger
	tempDir  string

	catalog *Catalog

	removeAll  func(path string) error
	removeFile func(path string) error
}

// New creates an Engine and performs the initial full scan.
func New(opts Options) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = pterm.DefaultLogger.WithWriter(io.Discard)
	}
	tempDir := opts.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}

	e := &Engine{
		roots:      opts.Roots,
		registry:   opts.Registry,
		logger:     logger,
		tempDir:    tempDir,
		catalog:    NewCatalog(),
		removeAll:  os.RemoveAll,
		removeFile: os.Remove,
	}
	if err := e.Reload(); err != nil {
		return nil, err
	}
	return e, nil
}

// Reload discards the catalog and rebuilds it from scratch. On error the
// previous catalog is kept.
func (e *Engine) Reload() error {
	catalog, err := e.scan()
	if err != nil {
		return err
	}
	e.catalog = catalog
	return nil
}

// Catalog returns a snapshot of the current catalog.
func (e *Engine) Catalog() *Catalog {
	return e.catalog.Clone()
}

// Roots returns the roots the engine scans.
func (e *Engine) Roots() Roots {
	return e.roots
}
