package symbols

import (
	"fmt"
	"slices"
)

// SymbolChange pairs the old and new state of a symbol present in both catalogs.
type SymbolChange struct {
	Name   string   `json:"name" yaml:"name"`
	Old    Symbol   `json:"old" yaml:"old"`
	New    Symbol   `json:"new" yaml:"new"`
	Fields []string `json:"fields" yaml:"fields"` // which attributes differ
}

// Delta is the difference between two catalogs.
type Delta struct {
	Added   []Symbol       `json:"added" yaml:"added"`
	Removed []Symbol       `json:"removed" yaml:"removed"`
	Changed []SymbolChange `json:"changed" yaml:"changed"`
}

// Compare computes what changed from before to after. Either catalog may be nil.
// Results are sorted by symbol name.
func Compare(before, after *Catalog) *Delta {
	d := &Delta{
		Added:   make([]Symbol, 0),
		Removed: make([]Symbol, 0),
		Changed: make([]SymbolChange, 0),
	}

	before.Each(func(s Symbol) bool {
		if _, ok := after.Lookup(s.Name); !ok {
			d.Removed = append(d.Removed, s.clone())
		}
		return true
	})

	after.Each(func(s Symbol) bool {
		prev, ok := before.Lookup(s.Name)
		if !ok {
			d.Added = append(d.Added, s.clone())
			return true
		}
		if fields := changedFields(prev, s); len(fields) > 0 {
			d.Changed = append(d.Changed, SymbolChange{Name: s.Name, Old: prev, New: s.clone(), Fields: fields})
		}
		return true
	})

	return d
}

func changedFields(a, b Symbol) []string {
	var fields []string
	if a.Address != b.Address {
		fields = append(fields, "address")
	}
	if a.Size != b.Size {
		fields = append(fields, "size")
	}
	if a.Kind != b.Kind {
		fields = append(fields, "kind")
	}
	if !slices.Equal(a.Signature, b.Signature) {
		fields = append(fields, "signature")
	}
	return fields
}

// IsEmpty reports whether nothing changed.
func (d *Delta) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// Affects reports whether name was removed or changed.
func (d *Delta) Affects(name string) bool {
	for _, s := range d.Removed {
		if s.Name == name {
			return true
		}
	}
	for _, c := range d.Changed {
		if c.Name == name {
			return true
		}
	}
	return false
}

// String returns a one-line summary.
func (d *Delta) String() string {
	return fmt.Sprintf("%d added, %d removed, %d changed", len(d.Added), len(d.Removed), len(d.Changed))
}
