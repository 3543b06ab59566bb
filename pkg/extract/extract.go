// Package extract builds a symbol catalog from an ELF binary.
//
// The symbol table (.symtab, or .dynsym for stripped shared objects) provides
// names, addresses, sizes and kinds. Function signatures are read from DWARF
// debug information when present; binaries without it still extract, with
// empty signatures.
package extract

import (
	"bytes"
	"context"
	"debug/elf"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/agentstation/archsync/pkg/errors"
	"github.com/agentstation/archsync/pkg/symbols"
)

// Extract parses an ELF image and returns its symbol catalog.
// It keeps no state between calls; the same bytes always yield an equal catalog.
func Extract(data []byte, opts ...Option) (catalog *symbols.Catalog, err error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	// debug/elf can still panic on some corrupt inputs.
	defer func() {
		if r := recover(); r != nil {
			catalog = nil
			err = errors.NewMalformedBinaryError("", fmt.Sprintf("corrupt ELF structure: %v", r), nil)
		}
	}()

	if len(data) == 0 {
		return nil, errors.NewMalformedBinaryError("", "empty input", nil)
	}

	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, errors.NewMalformedBinaryError("", "not an ELF file", err)
	}
	defer func() { _ = f.Close() }()

	raw, section, err := readSymbolTable(f)
	if err != nil {
		return nil, err
	}

	var signatures map[string][]string
	if o.signatures {
		signatures = readSignatures(f, o.logger)
	}

	syms := make([]symbols.Symbol, 0, len(raw))
	skipped := 0
	for _, es := range raw {
		sym, ok := convert(f, es)
		if !ok {
			continue
		}
		if o.skipLocals && sym.IsLocal() {
			skipped++
			continue
		}
		if !o.filter.Allows(sym.Name) {
			skipped++
			continue
		}
		if sym.IsFunction() {
			if sig, found := signatures[sym.Name]; found {
				sym.Signature = sig
			}
		}
		syms = append(syms, sym)
	}

	catalog, err = symbols.NewCatalog(syms...)
	if err != nil {
		return nil, err
	}

	o.logger.Debug().
		Str("table", section).
		Str("class", f.Class.String()).
		Str("machine", f.Machine.String()).
		Int("entries", len(raw)).
		Int("filtered", skipped).
		Int("symbols", catalog.Len()).
		Int("signatures", len(signatures)).
		Msg("Extracted symbol catalog")

	return catalog, nil
}

// ExtractFile reads the binary at path and extracts its catalog.
func ExtractFile(ctx context.Context, path string, opts ...Option) (*symbols.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Extract(data, opts...)
}

// readSymbolTable returns the static symbol table, or the dynamic one when the
// static table has been stripped.
func readSymbolTable(f *elf.File) ([]elf.Symbol, string, error) {
	syms, err := f.Symbols()
	if err == nil {
		return syms, ".symtab", nil
	}
	if !stderrors.Is(err, elf.ErrNoSymbols) {
		return nil, "", errors.NewMalformedBinaryError(".symtab", err.Error(), err)
	}

	syms, err = f.DynamicSymbols()
	if err == nil {
		return syms, ".dynsym", nil
	}
	if stderrors.Is(err, elf.ErrNoSymbols) {
		return nil, "", errors.NewMalformedBinaryError(".symtab", "no symbol table", err)
	}
	return nil, "", errors.NewMalformedBinaryError(".dynsym", err.Error(), err)
}

// convert maps an ELF symbol to a catalog symbol. Unnamed, section, file,
// mapping and undefined entries are not part of the catalog.
func convert(f *elf.File, es elf.Symbol) (symbols.Symbol, bool) {
	if es.Name == "" || es.Section == elf.SHN_UNDEF {
		return symbols.Symbol{}, false
	}
	if elf.ST_TYPE(es.Info) == elf.STT_NOTYPE && isMappingSymbol(es.Name) {
		return symbols.Symbol{}, false
	}

	var kind symbols.Kind
	switch elf.ST_TYPE(es.Info) {
	case elf.STT_SECTION, elf.STT_FILE:
		return symbols.Symbol{}, false
	case elf.STT_FUNC:
		kind = symbols.KindFunction
	case elf.STT_OBJECT, elf.STT_TLS, elf.STT_COMMON:
		kind = symbols.KindObject
	default:
		kind = symbols.KindUnknown
	}

	return symbols.Symbol{
		Name:    es.Name,
		Address: es.Value,
		Size:    es.Size,
		Kind:    kind,
		Binding: binding(elf.ST_BIND(es.Info)),
		Section: sectionName(f, es.Section),
	}, true
}

// isMappingSymbol reports whether name is an ARM, AArch64 or RISC-V mapping
// symbol such as $t, $d, $x or $d.realdata. These mark code and data regions
// and repeat at many addresses.
func isMappingSymbol(name string) bool {
	if name == "" || name[0] != '$' {
		return false
	}
	if len(name) == 1 {
		return true
	}
	c := name[1]
	if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
		return false
	}
	return len(name) == 2 || name[2] == '.'
}

func binding(b elf.SymBind) symbols.Binding {
	switch b {
	case elf.STB_LOCAL:
		return symbols.BindingLocal
	case elf.STB_GLOBAL:
		return symbols.BindingGlobal
	case elf.STB_WEAK:
		return symbols.BindingWeak
	default:
		return symbols.BindingOther
	}
}

func sectionName(f *elf.File, idx elf.SectionIndex) string {
	switch idx {
	case elf.SHN_ABS:
		return "ABS"
	case elf.SHN_COMMON:
		return "COMMON"
	}
	if int(idx) < len(f.Sections) {
		return f.Sections[idx].Name
	}
	return ""
}
