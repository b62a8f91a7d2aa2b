package schema

import "github.com/getkin/kin-openapi/openapi3"

// Catalog holds the named component schemas of one generation session in the
// order they were first seen. Each name is present at most once.
type Catalog struct {
	names   []string
	schemas openapi3.Schemas
}

// NewCatalog returns an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{schemas: openapi3.Schemas{}}
}

// Reserve claims name and returns its slot. The slot's Value is filled in by
// the caller. ok is false when name was already present, in which case the
// existing slot is returned.
func (c *Catalog) Reserve(name string) (slot *openapi3.SchemaRef, ok bool) {
	if existing, found := c.schemas[name]; found {
		return existing, false
	}
	slot = &openapi3.SchemaRef{}
	c.names = append(c.names, name)
	c.schemas[name] = slot
	return slot, true
}

// Set stores s under name, replacing any earlier value but keeping the
// position name was first seen at.
func (c *Catalog) Set(name string, s *openapi3.Schema) {
	slot, _ := c.Reserve(name)
	slot.Value = s
}

// Has reports whether name is in the catalog.
func (c *Catalog) Has(name string) bool {
	_, ok := c.schemas[name]
	return ok
}

// Get returns the schema stored under name.
func (c *Catalog) Get(name string) (*openapi3.Schema, bool) {
	slot, ok := c.schemas[name]
	if !ok {
		return nil, false
	}
	return slot.Value, true
}

// Len returns the number of names in the catalog.
func (c *Catalog) Len() int {
	return len(c.names)
}

// Names returns the names in first-discovery order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

// Schemas returns the catalog as an openapi3.Schemas map.
func (c *Catalog) Schemas() openapi3.Schemas {
	out := make(openapi3.Schemas, len(c.schemas))
	for name, slot := range c.schemas {
		out[name] = slot
	}
	return out
}
