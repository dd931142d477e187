package firefox

import "slices"

// Catalog maps unique display names to extensions, remembering insertion order.
// The zero value is an empty catalog.
type Catalog struct {
	order   []string
	entries map[string]Extension
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{entries: make(map[string]Extension)}
}

// UniqueName appends "1" to name until it no longer collides with a catalog key.
func (c *Catalog) UniqueName(name string) string {
	for c.Has(name) {
		name += uniqueSuffix
	}
	return name
}

// Add stores ext under a unique version of ext.Name and returns the stored record.
func (c *Catalog) Add(ext Extension) Extension {
	if c.entries == nil {
		c.entries = make(map[string]Extension)
	}
	ext.Name = c.UniqueName(ext.Name)
	c.entries[ext.Name] = ext
	c.order = append(c.order, ext.Name)
	return ext
}

func (c *Catalog) Has(name string) bool {
	_, ok := c.entries[name]
	return ok
}

func (c *Catalog) Get(name string) (Extension, bool) {
	ext, ok := c.entries[name]
	return ext, ok
}

// Delete drops name from the catalog. It reports whether the name was present.
func (c *Catalog) Delete(name string) bool {
	if !c.Has(name) {
		return false
	}
	delete(c.entries, name)
	if i := slices.Index(c.order, name); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
	return true
}

func (c *Catalog) Len() int {
	return len(c.order)
}

// Names returns the catalog keys in insertion order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.order...)
}

// Extensions returns the records in insertion order.
func (c *Catalog) Extensions() []Extension {
	out := make([]Extension, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.entries[name])
	}
	return out
}

// Clone returns an independent copy.
func (c *Catalog) Clone() *Catalog {
	clone := &Catalog{
		order:   c.Names(),
		entries: make(map[string]Extension, len(c.entries)),
	}
	for name, ext := range c.entries {
		clone.entries[name] = ext
	}
	return clone
}
