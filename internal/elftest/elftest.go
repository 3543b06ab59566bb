// Package elftest writes minimal ELF images for tests that need a binary to
// extract symbols from.
package elftest

import (
	"bytes"
	"encoding/binary"
)

// Section indexes in images produced by Builder.
const (
	SectionText = 1
	SectionBSS  = 2
)

// Symbol types.
const (
	STTNotype  = 0
	STTObject  = 1
	STTFunc    = 2
	STTSection = 3
	STTFile    = 4
	STTTLS     = 6
)

// Symbol bindings.
const (
	STBLocal  = 0
	STBGlobal = 1
	STBWeak   = 2
)

// Sym is one symbol table entry.
type Sym struct {
	Name  string
	Type  byte
	Bind  byte
	Shndx uint16
	Value uint64
	Size  uint64
}

// Func returns a global function in .text.
func Func(name string, addr, size uint64) Sym {
	return Sym{Name: name, Type: STTFunc, Bind: STBGlobal, Shndx: SectionText, Value: addr, Size: size}
}

// Object returns a global data object in .bss.
func Object(name string, addr, size uint64) Sym {
	return Sym{Name: name, Type: STTObject, Bind: STBGlobal, Shndx: SectionBSS, Value: addr, Size: size}
}

// Builder writes minimal little-endian ELF64 executables.
type Builder struct {
	Syms       []Sym
	Dynamic    bool   // emit .dynsym/.dynstr instead of .symtab/.strtab
	NoSymtab   bool   // omit the symbol and string tables entirely
	SymtabPad  int    // trailing bytes that break the entry size
	BadStrLink bool   // point the symbol table at section 0
	DWARF      []byte // .debug_info contents, see DebugInfo
}

type section struct {
	name      string
	typ       uint32
	flags     uint64
	addr      uint64
	data      []byte
	size      uint64 // for NOBITS
	link      uint32
	info      uint32
	align     uint64
	entsize   uint64
	nameIndex uint32
}

// Build returns the encoded image.
func (b *Builder) Build() []byte {
	sections := []*section{
		{},
		{name: ".text", typ: 1, flags: 0x6, addr: 0x401000, data: make([]byte, 64), align: 16},
		{name: ".bss", typ: 8, flags: 0x3, addr: 0x404000, size: 0x400, align: 8},
	}

	if !b.NoSymtab {
		strtab := []byte{0}
		symtab := make([]byte, 24) // null symbol
		for _, s := range b.Syms {
			nameOff := uint32(len(strtab))
			strtab = append(strtab, s.Name...)
			strtab = append(strtab, 0)

			entry := make([]byte, 24)
			binary.LittleEndian.PutUint32(entry[0:], nameOff)
			entry[4] = s.Bind<<4 | s.Type&0xf
			binary.LittleEndian.PutUint16(entry[6:], s.Shndx)
			binary.LittleEndian.PutUint64(entry[8:], s.Value)
			binary.LittleEndian.PutUint64(entry[16:], s.Size)
			symtab = append(symtab, entry...)
		}
		symtab = append(symtab, make([]byte, b.SymtabPad)...)

		symName, strName, symType := ".symtab", ".strtab", uint32(2)
		if b.Dynamic {
			symName, strName, symType = ".dynsym", ".dynstr", 11
		}
		strIndex := uint32(len(sections) + 1)
		if b.BadStrLink {
			strIndex = 0
		}
		sections = append(sections,
			&section{name: symName, typ: symType, data: symtab, link: strIndex, info: 1, align: 8, entsize: 24},
			&section{name: strName, typ: 3, data: strtab, align: 1},
		)
	}

	if b.DWARF != nil {
		sections = append(sections,
			&section{name: ".debug_abbrev", typ: 1, data: abbrev(), align: 1},
			&section{name: ".debug_info", typ: 1, data: b.DWARF, align: 1},
		)
	}

	shstrtab := []byte{0}
	for _, s := range sections[1:] {
		s.nameIndex = uint32(len(shstrtab))
		shstrtab = append(shstrtab, s.name...)
		shstrtab = append(shstrtab, 0)
	}
	shstr := &section{name: ".shstrtab", typ: 3, align: 1}
	shstr.nameIndex = uint32(len(shstrtab))
	shstrtab = append(shstrtab, ".shstrtab"...)
	shstrtab = append(shstrtab, 0)
	shstr.data = shstrtab
	sections = append(sections, shstr)

	var body bytes.Buffer
	body.Write(make([]byte, 64))
	offsets := make([]uint64, len(sections))
	for i, s := range sections[1:] {
		if s.typ == 8 {
			offsets[i+1] = uint64(body.Len())
			continue
		}
		for body.Len()%8 != 0 {
			body.WriteByte(0)
		}
		offsets[i+1] = uint64(body.Len())
		body.Write(s.data)
	}
	for body.Len()%8 != 0 {
		body.WriteByte(0)
	}
	shoff := uint64(body.Len())

	for i, s := range sections {
		sh := make([]byte, 64)
		size := uint64(len(s.data))
		if s.typ == 8 {
			size = s.size
		}
		if i > 0 {
			binary.LittleEndian.PutUint32(sh[0:], s.nameIndex)
			binary.LittleEndian.PutUint32(sh[4:], s.typ)
			binary.LittleEndian.PutUint64(sh[8:], s.flags)
			binary.LittleEndian.PutUint64(sh[16:], s.addr)
			binary.LittleEndian.PutUint64(sh[24:], offsets[i])
			binary.LittleEndian.PutUint64(sh[32:], size)
			binary.LittleEndian.PutUint32(sh[40:], s.link)
			binary.LittleEndian.PutUint32(sh[44:], s.info)
			binary.LittleEndian.PutUint64(sh[48:], s.align)
			binary.LittleEndian.PutUint64(sh[56:], s.entsize)
		}
		body.Write(sh)
	}

	out := body.Bytes()
	hdr := out[:64]
	copy(hdr, []byte{0x7f, 'E', 'L', 'F', 2, 1, 1, 0})
	binary.LittleEndian.PutUint16(hdr[16:], 2)  // ET_EXEC
	binary.LittleEndian.PutUint16(hdr[18:], 62) // EM_X86_64
	binary.LittleEndian.PutUint32(hdr[20:], 1)
	binary.LittleEndian.PutUint64(hdr[24:], 0x401000)
	binary.LittleEndian.PutUint64(hdr[40:], shoff)
	binary.LittleEndian.PutUint16(hdr[52:], 64)
	binary.LittleEndian.PutUint16(hdr[54:], 56)
	binary.LittleEndian.PutUint16(hdr[58:], 64)
	binary.LittleEndian.PutUint16(hdr[60:], uint16(len(sections)))
	binary.LittleEndian.PutUint16(hdr[62:], uint16(len(sections)-1))
	return out
}

// abbrev declares compile_unit, subprogram(name), formal_parameter(type)
// and base_type(name, byte_size, encoding).
func abbrev() []byte {
	return []byte{
		1, 0x11, 1, 0, 0,
		2, 0x2e, 1, 0x03, 0x08, 0, 0,
		3, 0x05, 0, 0x49, 0x13, 0, 0,
		4, 0x24, 0, 0x03, 0x08, 0x0b, 0x0b, 0x3e, 0x0b, 0, 0,
		0,
	}
}

// DebugInfo encodes one DWARF 4 unit with an "int" base type and one
// subprogram per name in order, each taking funcs[name] int params.
func DebugInfo(funcs map[string]int, order ...string) []byte {
	var dies bytes.Buffer
	dies.WriteByte(1) // compile_unit

	const intOffset = 12 // unit header (11 bytes) + compile_unit code
	dies.WriteByte(4)
	dies.WriteString("int\x00")
	dies.WriteByte(4)
	dies.WriteByte(5)

	for _, name := range order {
		dies.WriteByte(2)
		dies.WriteString(name + "\x00")
		for range funcs[name] {
			dies.WriteByte(3)
			ref := make([]byte, 4)
			binary.LittleEndian.PutUint32(ref, intOffset)
			dies.Write(ref)
		}
		dies.WriteByte(0)
	}
	dies.WriteByte(0)

	unit := make([]byte, 11)
	binary.LittleEndian.PutUint32(unit[0:], uint32(7+dies.Len()))
	binary.LittleEndian.PutUint16(unit[4:], 4)
	binary.LittleEndian.PutUint32(unit[6:], 0)
	unit[10] = 8
	return append(unit, dies.Bytes()...)
}
