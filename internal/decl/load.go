package decl

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"emerge/internal/source"
)

// ErrUnsupportedFormat is returned for files that are neither TOML nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported declaration file format")

type Format uint8

const (
	FormatTOML Format = iota + 1
	FormatYAML
)

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

// Parse decodes a declaration file into a Unit.
func Parse(file *source.File) (*Unit, error) {
	format, err := FormatOf(file.Path)
	if err != nil {
		return nil, err
	}
	return ParseAs(file, format)
}

// ParseAs decodes file with an explicit format.
func ParseAs(file *source.File, format Format) (*Unit, error) {
	var doc unitDoc
	switch format {
	case FormatTOML:
		meta, err := toml.Decode(string(file.Content), &doc)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file.Path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%s: unknown key %q", file.Path, undecoded[0].String())
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(file.Content))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%s: %w", file.Path, err)
		}
	default:
		return nil, fmt.Errorf("%s: %w", file.Path, ErrUnsupportedFormat)
	}

	b := builder{loc: locator{file: file.ID, content: file.Content}}
	unit, err := b.unit(&doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file.Path, err)
	}
	unit.File = file.ID
	return unit, nil
}

// normalizeIdent brings identifiers to NFC so equal names compare equal byte-wise.
func normalizeIdent(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

type unitDoc struct {
	Package string    `toml:"package" yaml:"package"`
	Types   []typeDoc `toml:"type" yaml:"types"`
}

type typeDoc struct {
	Name       string     `toml:"name" yaml:"name"`
	Kind       string     `toml:"kind" yaml:"kind"`
	Visibility string     `toml:"visibility" yaml:"visibility"`
	TypeParams stringList `toml:"type_params" yaml:"type_params"`
	Supertypes stringList `toml:"supertypes" yaml:"supertypes"`
	Members    []entryDoc `toml:"member" yaml:"members"`
}

type paramDoc struct {
	Name string `toml:"name" yaml:"name"`
	Type string `toml:"type" yaml:"type"`
}

type entryDoc struct {
	Kind       string `toml:"kind" yaml:"kind"`
	Name       string `toml:"name" yaml:"name"`
	Visibility string `toml:"visibility" yaml:"visibility"`

	// member variables
	Type         string `toml:"type" yaml:"type"`
	Init         string `toml:"init" yaml:"init"`
	Value        string `toml:"value" yaml:"value"`
	ValueType    string `toml:"value_type" yaml:"value_type"` // defaults to Type
	Throws       bool   `toml:"throws" yaml:"throws"`
	Decorated    bool   `toml:"decorated" yaml:"decorated"`
	Reassignable bool   `toml:"var" yaml:"var"`

	// functions, constructors and destructors
	Params   []paramDoc `toml:"params" yaml:"params"`
	Returns  string     `toml:"returns" yaml:"returns"`
	Override bool       `toml:"override" yaml:"override"`
	Nothrow  bool       `toml:"nothrow" yaml:"nothrow"`
	External bool       `toml:"external" yaml:"external"`
	Accessor string     `toml:"accessor" yaml:"accessor"`
	Abstract bool       `toml:"abstract" yaml:"abstract"`
	Body     []stmtDoc  `toml:"body" yaml:"body"`
}

type stmtDoc struct {
	Op     string    `toml:"op" yaml:"op"`
	Member string    `toml:"member" yaml:"member"`
	Value  string    `toml:"value" yaml:"value"`
	Type   string    `toml:"type" yaml:"type"`
	Throws bool      `toml:"throws" yaml:"throws"`
	Then   []stmtDoc `toml:"then" yaml:"then"`
	Else   []stmtDoc `toml:"else" yaml:"else"`
	Body   []stmtDoc `toml:"body" yaml:"body"`
}

// stringList accepts a single string or a list of strings.
type stringList []string

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*l = nil
			return nil
		}
		*l = stringList{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make(stringList, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: expected a type name", item.Line)
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	case yaml.AliasNode:
		return l.UnmarshalYAML(value.Alias)
	default:
		return fmt.Errorf("line %d: expected a string or a list of strings", value.Line)
	}
}

func (l *stringList) UnmarshalTOML(data any) error {
	switch v := data.(type) {
	case string:
		*l = stringList{v}
	case []any:
		out := make(stringList, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("expected a type name, got %T", item)
			}
			out = append(out, s)
		}
		*l = out
	default:
		return fmt.Errorf("expected a string or a list of strings, got %T", data)
	}
	return nil
}
