// Package output renders command results as tables, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/archsync/internal/cmd/table"
)

// Format names an output encoding.
type Format string

const (
	// FormatTable renders a table with long cells shortened.
	FormatTable Format = "table"
	// FormatWide renders a table with cells in full.
	FormatWide Format = "wide"
	// FormatJSON renders indented JSON.
	FormatJSON Format = "json"
	// FormatYAML renders YAML.
	FormatYAML Format = "yaml"
)

// MaxCellWidth is the longest cell FormatTable prints before shortening it.
const MaxCellWidth = 48

// IsTable reports whether f renders as a table.
func (f Format) IsTable() bool {
	return f == FormatTable || f == FormatWide || f == ""
}

// Formatter encodes data to w.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// FormatterFunc adapts a function to Formatter.
type FormatterFunc func(io.Writer, any) error

// Format calls f.
func (f FormatterFunc) Format(w io.Writer, data any) error {
	return f(w, data)
}

// NewFormatter returns the formatter for format. Unknown formats give a table.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return FormatterFunc(writeJSON)
	case FormatYAML:
		return FormatterFunc(writeYAML)
	default:
		return &TableFormatter{Wide: format == FormatWide}
	}
}

// Write renders tableData for table formats and raw for everything else.
func Write(w io.Writer, format Format, tableData table.Data, raw any) error {
	if format.IsTable() {
		return NewFormatter(format).Format(w, tableData)
	}
	return NewFormatter(format).Format(w, raw)
}

func writeJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func writeYAML(w io.Writer, data any) error {
	out, err := yaml.MarshalWithOptions(data, yaml.Indent(2), yaml.IndentSequence(false))
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// TableFormatter renders table.Data. Other values are tabulated from their
// struct fields when possible and fall back to JSON.
type TableFormatter struct {
	Wide bool
}

// Format implements Formatter.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	if td, ok := data.(table.Data); ok {
		return f.render(w, td)
	}
	if td, ok := tabulate(data); ok {
		return f.render(w, td)
	}
	return writeJSON(w, data)
}

func (f *TableFormatter) render(w io.Writer, data table.Data) error {
	var cfg tablewriter.Config
	if len(data.ColumnAlignment) > 0 {
		align := make([]tw.Align, len(data.ColumnAlignment))
		for i, a := range data.ColumnAlignment {
			align[i] = twAlign(a)
		}
		cfg.Header.Alignment = tw.CellAlignment{PerColumn: align}
		cfg.Row.Alignment = tw.CellAlignment{PerColumn: align}
	}

	tbl := tablewriter.NewTable(w, tablewriter.WithConfig(cfg))
	if len(data.Headers) > 0 {
		tbl.Header(anySlice(data.Headers, 0)...)
	}
	limit := MaxCellWidth
	if f.Wide {
		limit = 0
	}
	for _, row := range data.Rows {
		if err := tbl.Append(anySlice(row, limit)...); err != nil {
			return err
		}
	}
	return tbl.Render()
}

func twAlign(a table.Align) tw.Align {
	switch a {
	case table.AlignLeft:
		return tw.AlignLeft
	case table.AlignCenter:
		return tw.AlignCenter
	case table.AlignRight:
		return tw.AlignRight
	default:
		return tw.Skip
	}
}

// anySlice converts cells for tablewriter, shortening those longer than
// limit runes. A zero limit keeps cells whole.
func anySlice(cells []string, limit int) []any {
	out := make([]any, len(cells))
	for i, c := range cells {
		if limit > 0 && utf8.RuneCountInString(c) > limit {
			c = string([]rune(c)[:limit-1]) + "…"
		}
		out[i] = c
	}
	return out
}

// tabulate lays out a struct as Property/Value rows, or a slice of structs
// as one row per element.
func tabulate(data any) (table.Data, bool) {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Pointer && !v.IsNil() {
		v = v.Elem()
	}

	switch {
	case v.Kind() == reflect.Struct:
		var td table.Data
		td.Headers = []string{"Property", "Value"}
		for i := range v.NumField() {
			if !v.Type().Field(i).IsExported() {
				continue
			}
			td.Rows = append(td.Rows, []string{headerName(v.Type().Field(i)), fmt.Sprint(v.Field(i).Interface())})
		}
		return td, true

	case v.Kind() == reflect.Slice && v.Len() > 0 && v.Index(0).Kind() == reflect.Struct:
		typ := v.Index(0).Type()
		var td table.Data
		var fields []int
		for i := range typ.NumField() {
			if typ.Field(i).IsExported() {
				fields = append(fields, i)
				td.Headers = append(td.Headers, headerName(typ.Field(i)))
			}
		}
		for i := range v.Len() {
			row := make([]string, len(fields))
			for j, field := range fields {
				row[j] = fmt.Sprint(v.Index(i).Field(field).Interface())
			}
			td.Rows = append(td.Rows, row)
		}
		return td, true
	}
	return table.Data{}, false
}

// headerName title-cases the field's json name, or returns the Go name.
func headerName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return field.Name
	}
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}

// DetectFormat returns explicit when set, table on a terminal and JSON when
// stdout is piped.
func DetectFormat(explicit string) Format {
	if explicit != "" {
		return Format(strings.ToLower(explicit))
	}
	fd := os.Stdout.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return FormatTable
	}
	return FormatJSON
}

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(s))
	switch format {
	case FormatTable, FormatJSON, FormatYAML, FormatWide, "":
		return format, nil
	default:
		return "", fmt.Errorf("invalid format %q: must be one of: table, wide, json, yaml", s)
	}
}
