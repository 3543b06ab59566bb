package symbols

import (
	"slices"
	"sort"
	"strings"

	"github.com/agentstation/archsync/pkg/errors"
)

// Catalog maps symbol names to symbols. Names are unique.
type Catalog struct {
	byName map[string]Symbol
	names  []string // sorted
}

// NewCatalog builds a catalog from extracted entries. Entries repeating a name
// with identical address, size and kind are dropped; a repeated name with
// different attributes fails with a DuplicateSymbolError.
func NewCatalog(syms ...Symbol) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]Symbol, len(syms))}
	for _, s := range syms {
		if s.Name == "" {
			return nil, errors.NewValidationError("name", s.Address, "symbol name must not be empty")
		}
		if prev, ok := c.byName[s.Name]; ok {
			if prev.SameAttributes(s) {
				continue
			}
			return nil, &errors.DuplicateSymbolError{
				Name:          s.Name,
				FirstAddress:  prev.Address,
				FirstSize:     prev.Size,
				SecondAddress: s.Address,
				SecondSize:    s.Size,
			}
		}
		c.byName[s.Name] = s.clone()
		c.names = append(c.names, s.Name)
	}
	sort.Strings(c.names)
	return c, nil
}

// MustNewCatalog is like NewCatalog but panics on error. Intended for tests.
func MustNewCatalog(syms ...Symbol) *Catalog {
	c, err := NewCatalog(syms...)
	if err != nil {
		panic(err)
	}
	return c
}

// Len returns the number of symbols.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.names)
}

// Lookup returns the symbol with the given name.
func (c *Catalog) Lookup(name string) (Symbol, bool) {
	if c == nil {
		return Symbol{}, false
	}
	s, ok := c.byName[name]
	if !ok {
		return Symbol{}, false
	}
	return s.clone(), true
}

// Get returns the symbol with the given name or a NotFoundError.
func (c *Catalog) Get(name string) (Symbol, error) {
	s, ok := c.Lookup(name)
	if !ok {
		return Symbol{}, errors.NewNotFoundError("symbol", name)
	}
	return s, nil
}

// Names returns all symbol names in sorted order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	return slices.Clone(c.names)
}

// List returns all symbols sorted by name.
func (c *Catalog) List() []Symbol {
	return c.filter(func(Symbol) bool { return true })
}

// Functions returns function symbols sorted by name.
func (c *Catalog) Functions() []Symbol {
	return c.filter(Symbol.IsFunction)
}

// Objects returns data object symbols sorted by name.
func (c *Catalog) Objects() []Symbol {
	return c.filter(Symbol.IsObject)
}

// OfKind returns symbols of the given kinds. No kinds means all symbols.
func (c *Catalog) OfKind(kinds ...Kind) []Symbol {
	if len(kinds) == 0 {
		return c.List()
	}
	return c.filter(func(s Symbol) bool { return slices.Contains(kinds, s.Kind) })
}

// Search returns symbols whose name contains substr, case-insensitively.
func (c *Catalog) Search(substr string) []Symbol {
	needle := strings.ToLower(substr)
	return c.filter(func(s Symbol) bool {
		return strings.Contains(strings.ToLower(s.Name), needle)
	})
}

// ByAddress returns the symbols located at addr.
func (c *Catalog) ByAddress(addr uint64) []Symbol {
	return c.filter(func(s Symbol) bool { return s.Address == addr })
}

// Each calls fn for every symbol in name order until fn returns false.
func (c *Catalog) Each(fn func(Symbol) bool) {
	if c == nil {
		return
	}
	for _, name := range c.names {
		if !fn(c.byName[name]) {
			return
		}
	}
}

func (c *Catalog) filter(keep func(Symbol) bool) []Symbol {
	result := make([]Symbol, 0)
	c.Each(func(s Symbol) bool {
		if keep(s) {
			result = append(result, s.clone())
		}
		return true
	})
	return result
}

// Equal reports whether both catalogs hold the same symbols under
// (name, address, size, kind, signature).
func (c *Catalog) Equal(other *Catalog) bool {
	if c.Len() != other.Len() {
		return false
	}
	for _, name := range c.Names() {
		a := c.byName[name]
		b, ok := other.byName[name]
		if !ok || !a.Equal(b) {
			return false
		}
	}
	return true
}

// Stats summarizes a catalog.
type Stats struct {
	Total         int             `json:"total" yaml:"total"`
	ByKind        map[Kind]int    `json:"by_kind" yaml:"by_kind"`
	ByBinding     map[Binding]int `json:"by_binding" yaml:"by_binding"`
	WithSignature int             `json:"with_signature" yaml:"with_signature"`
}

// Stats returns totals by kind and binding.
func (c *Catalog) Stats() Stats {
	stats := Stats{
		ByKind:    make(map[Kind]int),
		ByBinding: make(map[Binding]int),
	}
	c.Each(func(s Symbol) bool {
		stats.Total++
		stats.ByKind[s.Kind]++
		if s.Binding != "" {
			stats.ByBinding[s.Binding]++
		}
		if len(s.Signature) > 0 {
			stats.WithSignature++
		}
		return true
	})
	return stats
}
