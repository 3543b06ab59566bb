package extract

import (
	"debug/dwarf"
	"debug/elf"

	"github.com/rs/zerolog"
)

// readSignatures collects parameter type names for every named subprogram in
// the DWARF info. Missing or unreadable debug info yields nil.
func readSignatures(f *elf.File, logger *zerolog.Logger) map[string][]string {
	d, err := f.DWARF()
	if err != nil {
		logger.Debug().Err(err).Msg("No usable debug information, signatures left empty")
		return nil
	}

	signatures := make(map[string][]string)
	r := d.Reader()
	for {
		entry, err := r.Next()
		if err != nil {
			logger.Debug().Err(err).Msg("Stopped reading debug information")
			break
		}
		if entry == nil {
			break
		}
		if entry.Tag != dwarf.TagSubprogram {
			continue
		}

		names := subprogramNames(entry)
		var params []string
		if entry.Children {
			params, err = readParams(d, r)
			if err != nil {
				logger.Debug().Err(err).Msg("Stopped reading debug information")
				break
			}
		}
		if len(params) == 0 {
			continue
		}
		for _, name := range names {
			if _, seen := signatures[name]; !seen {
				signatures[name] = params
			}
		}
	}
	return signatures
}

func subprogramNames(entry *dwarf.Entry) []string {
	var names []string
	if name, ok := entry.Val(dwarf.AttrName).(string); ok && name != "" {
		names = append(names, name)
	}
	if linkage, ok := entry.Val(dwarf.AttrLinkageName).(string); ok && linkage != "" {
		names = append(names, linkage)
	}
	return names
}

// readParams consumes the children of a subprogram entry.
func readParams(d *dwarf.Data, r *dwarf.Reader) ([]string, error) {
	var params []string
	for {
		child, err := r.Next()
		if err != nil {
			return nil, err
		}
		if child == nil || child.Tag == 0 {
			return params, nil
		}
		switch child.Tag {
		case dwarf.TagFormalParameter:
			params = append(params, typeName(d, child))
		case dwarf.TagUnspecifiedParameters:
			params = append(params, "...")
		}
		if child.Children {
			r.SkipChildren()
		}
	}
}

func typeName(d *dwarf.Data, entry *dwarf.Entry) string {
	off, ok := entry.Val(dwarf.AttrType).(dwarf.Offset)
	if !ok {
		return "?"
	}
	t, err := d.Type(off)
	if err != nil {
		return "?"
	}
	return t.String()
}
