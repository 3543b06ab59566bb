// Package symbols defines the normalized symbol catalog extracted from a
// compiled binary. A Catalog is built once per extraction and is read-only
// afterwards, so it can be shared freely between the matcher and callers.
package symbols

import (
	"fmt"
	"slices"
	"strings"
)

// Kind classifies a symbol.
type Kind string

const (
	// KindFunction is executable code.
	KindFunction Kind = "function"
	// KindObject is a data object (variables, TLS, common blocks).
	KindObject Kind = "object"
	// KindUnknown covers everything else.
	KindUnknown Kind = "unknown"
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// Rank orders kinds for tie-breaking: functions first, then objects.
func (k Kind) Rank() int {
	switch k {
	case KindFunction:
		return 0
	case KindObject:
		return 1
	default:
		return 2
	}
}

// ParseKind converts a string to a Kind. Unrecognized values yield KindUnknown.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "function", "func":
		return KindFunction
	case "object", "variable", "var":
		return KindObject
	default:
		return KindUnknown
	}
}

// Binding is the symbol's linkage.
type Binding string

// Symbol bindings.
const (
	BindingLocal  Binding = "local"
	BindingGlobal Binding = "global"
	BindingWeak   Binding = "weak"
	BindingOther  Binding = "other"
)

// Symbol is one entry from a compiled artifact.
type Symbol struct {
	Name      string   `json:"name" yaml:"name"`
	Address   uint64   `json:"address" yaml:"address"`
	Size      uint64   `json:"size" yaml:"size"`
	Kind      Kind     `json:"kind" yaml:"kind"`
	Signature []string `json:"signature,omitempty" yaml:"signature,omitempty"`
	Binding   Binding  `json:"binding,omitempty" yaml:"binding,omitempty"`
	Section   string   `json:"section,omitempty" yaml:"section,omitempty"`
}

// IsFunction reports whether the symbol is a function.
func (s Symbol) IsFunction() bool { return s.Kind == KindFunction }

// IsObject reports whether the symbol is a data object.
func (s Symbol) IsObject() bool { return s.Kind == KindObject }

// IsLocal reports whether the symbol has local binding.
func (s Symbol) IsLocal() bool { return s.Binding == BindingLocal }

// SameAttributes reports whether two entries describe the same symbol
// (address, size and kind). Used to tell exact duplicates from conflicts.
func (s Symbol) SameAttributes(other Symbol) bool {
	return s.Address == other.Address && s.Size == other.Size && s.Kind == other.Kind
}

// Equal compares name, address, size, kind and signature.
func (s Symbol) Equal(other Symbol) bool {
	return s.Name == other.Name && s.SameAttributes(other) && slices.Equal(s.Signature, other.Signature)
}

// Prototype renders the symbol as a C-like declaration for display.
func (s Symbol) Prototype() string {
	if s.Kind != KindFunction {
		return s.Name
	}
	return fmt.Sprintf("%s(%s)", s.Name, strings.Join(s.Signature, ", "))
}

func (s Symbol) clone() Symbol {
	s.Signature = slices.Clone(s.Signature)
	return s
}
