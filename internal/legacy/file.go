package legacy

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"
)

// assignment matches NAME=value and export NAME=value lines
var assignment = regexp.MustCompile(`^\s*(?:export\s+)?([A-Za-z_][A-Za-z0-9_]*)\s*=\s*(.*?)\s*$`)

// FileSource scans a shell script or env file for mapped assignments
type FileSource struct {
	Path     string
	Mappings []Mapping
}

// NewFileSource creates a file source for the given path and mappings
func NewFileSource(path string, mappings []Mapping) *FileSource {
	return &FileSource{Path: path, Mappings: mappings}
}

func (s *FileSource) Name() string {
	return "file:" + s.Path
}

// Recover scans the file. A missing file yields nothing.
// When a name is assigned more than once the last assignment wins.
func (s *FileSource) Recover() ([]Recovery, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open legacy file %s: %w", s.Path, err)
	}
	defer f.Close()

	wanted := make(map[string][]Mapping)
	for _, m := range s.Mappings {
		wanted[m.Name] = append(wanted[m.Name], m)
	}

	found := make(map[string]Recovery)
	var order []string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		match := assignment.FindStringSubmatch(scanner.Text())
		if match == nil {
			continue
		}
		name := match[1]
		if _, ok := wanted[name]; !ok {
			continue
		}

		r := Recovery{Source: s.Name() + ":" + name}
		value, err := unquote(match[2])
		switch {
		case err != nil:
			r.Rejected = err.Error()
		case value == "":
			continue
		case isVariableReference(value):
			r.Rejected = "value is a variable reference"
		default:
			r.Value = value
		}

		if _, seen := found[name]; !seen {
			order = append(order, name)
		}
		found[name] = r
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read legacy file %s: %w", s.Path, err)
	}

	var out []Recovery
	for _, name := range order {
		for _, m := range wanted[name] {
			r := found[name]
			r.Provider = m.Provider
			r.Field = m.Field
			out = append(out, r)
		}
	}
	return out, nil
}

// unquote reads the first shell word of an assignment's right-hand side.
// Single quotes are literal. Inside double quotes a backslash escapes only
// ", \, $ and `, as in bash. An unquoted word ends at whitespace or a shell
// operator, which drops trailing comments and a trailing ";".
func unquote(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}

	switch quote := raw[0]; quote {
	case '\'':
		end := strings.IndexByte(raw[1:], quote)
		if end < 0 {
			return "", fmt.Errorf("unterminated %c quote", quote)
		}
		return raw[1 : end+1], nil
	case '"':
		return unquoteDouble(raw[1:])
	}

	if end := strings.IndexFunc(raw, unicode.IsSpace); end >= 0 {
		raw = raw[:end]
	}
	// $(cmd) contains an operator, so references are left whole for the caller to reject
	if isVariableReference(raw) {
		return raw, nil
	}
	if end := strings.IndexFunc(raw, isOperator); end >= 0 {
		raw = raw[:end]
	}
	if strings.ContainsRune(raw, '\\') {
		return "", fmt.Errorf("unquoted value contains a backslash escape")
	}
	return raw, nil
}

func unquoteDouble(body string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '"':
			return b.String(), nil
		case c == '\\' && i+1 < len(body) && strings.IndexByte("\"\\$`", body[i+1]) >= 0:
			i++
			b.WriteByte(body[i])
		default:
			b.WriteByte(c)
		}
	}
	return "", fmt.Errorf("unterminated \" quote")
}

func isOperator(r rune) bool {
	return strings.ContainsRune(";&|<>()", r)
}
