package catalog

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownSite is returned by Get for ids not in the catalog.
var ErrUnknownSite = errors.New("unknown site")

// Catalog is an immutable, ordered set of sites.
type Catalog struct {
	sites []Site
	byID  map[string]int
}

// New validates sites and indexes them by id. Order is preserved.
func New(sites []Site) (*Catalog, error) {
	c := &Catalog{
		sites: slices.Clone(sites),
		byID:  make(map[string]int, len(sites)),
	}
	for i, s := range c.sites {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, fmt.Errorf("duplicate site id %q", s.ID)
		}
		c.sites[i].CameraPath = slices.Clone(s.CameraPath)
		c.byID[s.ID] = i
	}
	return c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(Defaults())
	if err != nil {
		panic(err)
	}
	return c
}

// Get returns the site with id.
func (c *Catalog) Get(id string) (Site, error) {
	i, ok := c.byID[id]
	if !ok {
		return Site{}, fmt.Errorf("%w: %s", ErrUnknownSite, id)
	}
	return c.sites[i], nil
}

// All returns a copy of every site in catalog order.
func (c *Catalog) All() []Site {
	return slices.Clone(c.sites)
}

// IDs returns site ids in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.sites))
	for i, s := range c.sites {
		ids[i] = s.ID
	}
	return ids
}

// Len returns the number of sites.
func (c *Catalog) Len() int {
	return len(c.sites)
}
