package handler

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Registration errors.
var (
	ErrTypeExists    = errors.New("type already registered")
	ErrInvalidPhrase = errors.New("invalid handler phrase")
)

// Catalog indexes target types by name.
type Catalog struct {
	mu    sync.RWMutex
	types map[string]*Type
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{types: make(map[string]*Type)}
}

// Register validates and adds types. If any type is invalid or its name is
// taken, including by another type in the same call, nothing is added.
func (c *Catalog) Register(types ...*Type) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	seen := make(map[string]bool, len(types))
	for _, t := range types {
		if t == nil {
			return fmt.Errorf("type is nil")
		}
		if err := t.Validate(); err != nil {
			return err
		}
		if _, exists := c.types[t.name]; exists || seen[t.name] {
			return fmt.Errorf("%w: %s", ErrTypeExists, t.name)
		}
		seen[t.name] = true
	}
	for _, t := range types {
		c.types[t.name] = t
	}
	return nil
}

// Lookup returns the type registered under name.
func (c *Catalog) Lookup(name string) (*Type, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.types[name]
	return t, ok
}

// Names returns registered type names, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.types))
	for name := range c.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks the type's own declarations.
func (t *Type) Validate() error {
	if t.name == "" {
		return fmt.Errorf("type name is required")
	}
	for _, h := range t.handlers {
		if h.Key() == "" {
			return fmt.Errorf("%w: %s on %s has no parameter placeholder", ErrInvalidPhrase, h, t.name)
		}
		if h.invoke == nil {
			return fmt.Errorf("%w: %s on %s has no function", ErrInvalidPhrase, h, t.name)
		}
	}
	return nil
}
