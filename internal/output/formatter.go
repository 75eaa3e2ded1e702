package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"
)

// Formatter is the interface for output formatting
type Formatter interface {
	Print(data any) error
	PrintList(items any, columns []Column) error
	PrintError(err error)
	PrintHint(msg string)
}

// Column defines a column for table/list output
type Column struct {
	Name  string // Display name
	Key   string // Struct field name or map key
	Width int    // Width for rich mode (0 = auto)
}

// New creates a formatter for the specified mode writing to stdout/stderr
func New(mode string) Formatter {
	return NewWithWriters(mode, os.Stdout, os.Stderr)
}

// NewWithWriters creates a formatter that writes results to out and diagnostics to errOut
func NewWithWriters(mode string, out, errOut io.Writer) Formatter {
	switch mode {
	case "json":
		return &jsonFormatter{out: out, err: errOut}
	case "yaml":
		return &yamlFormatter{out: out, err: errOut}
	case "rich":
		return &richFormatter{out: out, err: errOut, profile: termenv.ColorProfile()}
	default:
		return &plainFormatter{out: out, err: errOut}
	}
}

// jsonFormatter outputs JSON
type jsonFormatter struct {
	out, err io.Writer
}

func (f *jsonFormatter) Print(data any) error {
	enc := json.NewEncoder(f.out)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func (f *jsonFormatter) PrintList(items any, columns []Column) error {
	return f.Print(map[string]any{
		"data":  items,
		"count": sliceLen(items),
	})
}

func (f *jsonFormatter) PrintError(err error) {
	enc := json.NewEncoder(f.err)
	enc.SetIndent("", "  ")
	_ = enc.Encode(map[string]string{"error": err.Error()})
}

// PrintHint is a no-op; JSON consumers read the exit code
func (f *jsonFormatter) PrintHint(msg string) {}

// yamlFormatter outputs YAML documents
type yamlFormatter struct {
	out, err io.Writer
}

func (f *yamlFormatter) Print(data any) error {
	enc := yaml.NewEncoder(f.out)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return enc.Close()
}

func (f *yamlFormatter) PrintList(items any, columns []Column) error {
	rows, err := extractRows(items, columns)
	if err != nil {
		return err
	}

	// Keyed by column name so the document matches what the table shows
	docs := make([]map[string]string, len(rows))
	for i, row := range rows {
		doc := make(map[string]string, len(columns))
		for _, col := range columns {
			doc[strings.ToLower(col.Name)] = row[col.Key]
		}
		docs[i] = doc
	}
	return f.Print(docs)
}

func (f *yamlFormatter) PrintError(err error) {
	fmt.Fprintf(f.err, "error: %v\n", err)
}

func (f *yamlFormatter) PrintHint(msg string) {
	fmt.Fprintf(f.err, "hint: %v\n", msg)
}

// plainFormatter outputs tab-separated values
type plainFormatter struct {
	out, err io.Writer
}

func (f *plainFormatter) Print(data any) error {
	for _, kv := range fieldsOf(data) {
		fmt.Fprintf(f.out, "%s\t%s\n", kv[0], kv[1])
	}
	return nil
}

func (f *plainFormatter) PrintList(items any, columns []Column) error {
	rows, err := extractRows(items, columns)
	if err != nil {
		return err
	}

	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = col.Name
	}
	fmt.Fprintf(f.out, "%s\n", strings.Join(headers, "\t"))

	for _, row := range rows {
		values := make([]string, len(columns))
		for j, col := range columns {
			values[j] = row[col.Key]
		}
		fmt.Fprintf(f.out, "%s\n", strings.Join(values, "\t"))
	}

	return nil
}

func (f *plainFormatter) PrintError(err error) {
	fmt.Fprintf(f.err, "error: %v\n", err)
}

func (f *plainFormatter) PrintHint(msg string) {
	fmt.Fprintf(f.err, "hint: %v\n", msg)
}

// richFormatter outputs styled content for terminal
type richFormatter struct {
	out, err io.Writer
	profile  termenv.Profile
}

func (f *richFormatter) Print(data any) error {
	keyStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("15"))

	for _, kv := range fieldsOf(data) {
		fmt.Fprintf(f.out, "%s: %s\n", f.style(keyStyle, kv[0]), f.style(valueStyle, kv[1]))
	}
	return nil
}

func (f *richFormatter) PrintList(items any, columns []Column) error {
	rows, err := extractRows(items, columns)
	if err != nil {
		return err
	}

	RenderTable(f.out, columns, rows)
	return nil
}

func (f *richFormatter) PrintError(err error) {
	errorStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("9"))

	fmt.Fprintf(f.err, "%s\n", f.style(errorStyle, "error: "+err.Error()))
}

func (f *richFormatter) PrintHint(msg string) {
	hintStyle := lipgloss.NewStyle().
		Faint(true).
		Foreground(lipgloss.Color("8"))

	fmt.Fprintf(f.err, "%s\n", f.style(hintStyle, "hint: "+msg))
}

// style renders s unless the terminal has no color support
func (f *richFormatter) style(st lipgloss.Style, s string) string {
	if f.profile == termenv.Ascii {
		return s
	}
	return st.Render(s)
}

// fieldsOf flattens a struct or map into ordered key/value pairs.
// Map keys are sorted; anything else prints as a single value.
func fieldsOf(data any) [][2]string {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		pairs := make([][2]string, 0, v.NumField())
		for i := 0; i < v.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			pairs = append(pairs, [2]string{t.Field(i).Name, fmt.Sprintf("%v", v.Field(i).Interface())})
		}
		return pairs
	case reflect.Map:
		pairs := make([][2]string, 0, v.Len())
		for _, k := range v.MapKeys() {
			pairs = append(pairs, [2]string{fmt.Sprintf("%v", k.Interface()), fmt.Sprintf("%v", v.MapIndex(k).Interface())})
		}
		sort.Slice(pairs, func(i, j int) bool { return pairs[i][0] < pairs[j][0] })
		return pairs
	default:
		return [][2]string{{"value", fmt.Sprintf("%v", data)}}
	}
}

// extractRows converts a slice of structs or maps into column-keyed rows
func extractRows(items any, columns []Column) ([]map[string]string, error) {
	v := reflect.ValueOf(items)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Slice {
		return nil, fmt.Errorf("PrintList requires a slice")
	}

	rows := make([]map[string]string, v.Len())
	for i := 0; i < v.Len(); i++ {
		item := v.Index(i)
		if item.Kind() == reflect.Ptr {
			item = item.Elem()
		}

		row := make(map[string]string)
		for _, col := range columns {
			switch item.Kind() {
			case reflect.Map:
				mapVal := item.MapIndex(reflect.ValueOf(col.Key))
				if mapVal.IsValid() {
					row[col.Key] = fmt.Sprintf("%v", mapVal.Interface())
				}
			case reflect.Struct:
				field := item.FieldByName(col.Key)
				if field.IsValid() {
					row[col.Key] = fmt.Sprintf("%v", field.Interface())
				}
			}
		}
		rows[i] = row
	}
	return rows, nil
}

func sliceLen(items any) int {
	v := reflect.ValueOf(items)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() == reflect.Slice {
		return v.Len()
	}
	return 0
}
