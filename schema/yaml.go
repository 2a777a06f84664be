package schema

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pombredanne/mentat"
)

// yamlSchema is the on-disk schema description:
//
//	attributes:
//	  - ident: ":person/name"
//	    entid: 65
//	    type: string
type yamlSchema struct {
	Attributes []yamlAttribute `yaml:"attributes"`
}

type yamlAttribute struct {
	Ident string `yaml:"ident"`
	Entid int64  `yaml:"entid"`
	Type  string `yaml:"type,omitempty"`
}

// ReadYAML decodes a schema description from r.
func ReadYAML(r io.Reader) (*Schema, error) {
	var doc yamlSchema
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding schema: %w", err)
	}
	s := New()
	for _, attr := range doc.Attributes {
		ident, err := parseIdent(attr.Ident)
		if err != nil {
			return nil, err
		}
		if attr.Type == "" {
			if err := s.Define(ident, attr.Entid); err != nil {
				return nil, err
			}
			continue
		}
		t, ok := mentat.ValueTypeByName(attr.Type)
		if !ok {
			return nil, fmt.Errorf("attribute %s: unknown value type %q", attr.Ident, attr.Type)
		}
		if err := s.DefineAttribute(ident, attr.Entid, t); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// LoadYAML reads a schema description from a file.
func LoadYAML(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := ReadYAML(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func parseIdent(text string) (*mentat.Keyword, error) {
	name, ok := strings.CutPrefix(text, ":")
	if !ok || name == "" {
		return nil, fmt.Errorf("invalid ident %q: idents start with a colon", text)
	}
	if ns, rest, ok := strings.Cut(name, "/"); ok {
		if ns == "" || rest == "" {
			return nil, fmt.Errorf("invalid ident %q", text)
		}
		return mentat.NewKeyword(ns, rest), nil
	}
	return mentat.NewKeyword("", name), nil
}
