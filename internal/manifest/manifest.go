// Package manifest reads the type graph produced by the guest compiler.
//
// A manifest is a YAML document listing compiled classes, interfaces and
// traits with their members:
//
//	types:
//	  - name: Foo
//	    kind: class
//	    extends: Base
//	    implements: [Countable]
//	    runtime_fields: true
//	    fields:
//	      - name: secret
//	        access: private
//	        default: 42
//	    constants:
//	      - name: LIMIT
//	        value: 10
//	    methods:
//	      - name: count
//	        params: 0
//	    constructors:
//	      - params: [context]
//	        fields_only: true
//
// Types may appear in any order; Build registers them base first.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/objmodel/internal/config"
	"github.com/funvibe/objmodel/internal/typesystem"
)

// Manifest is the top-level document.
type Manifest struct {
	Types []TypeSpec `yaml:"types"`

	// path is used only for error messages.
	path string
}

// TypeSpec describes one compiled type.
type TypeSpec struct {
	Name string `yaml:"name"`

	// Kind is "class" (default), "interface" or "trait".
	Kind string `yaml:"kind,omitempty"`

	// Extends names the base class. It may be defined in this manifest or
	// already registered.
	Extends string `yaml:"extends,omitempty"`

	Implements []string `yaml:"implements,omitempty"`

	// RuntimeFields gives instances a store for properties assigned without
	// a declaration. Declaring one of the compiler's runtime field slot
	// members has the same effect.
	RuntimeFields bool `yaml:"runtime_fields,omitempty"`

	// Hidden types are not visible to the guest runtime and are skipped when
	// enumerating fields.
	Hidden bool `yaml:"hidden,omitempty"`

	Fields       []FieldSpec  `yaml:"fields,omitempty"`
	Constants    []ConstSpec  `yaml:"constants,omitempty"`
	Methods      []MethodSpec `yaml:"methods,omitempty"`
	Constructors []CtorSpec   `yaml:"constructors,omitempty"`
}

type FieldSpec struct {
	Name   string `yaml:"name"`
	Access string `yaml:"access,omitempty"`
	Static bool   `yaml:"static,omitempty"`
	// Default is kept as a node so mappings keep their key order.
	Default yaml.Node `yaml:"default,omitempty"`
}

type ConstSpec struct {
	Name   string    `yaml:"name"`
	Access string    `yaml:"access,omitempty"`
	Value  yaml.Node `yaml:"value"`
}

type MethodSpec struct {
	Name   string `yaml:"name"`
	Access string `yaml:"access,omitempty"`
	Params int    `yaml:"params,omitempty"`
	Static bool   `yaml:"static,omitempty"`
}

// CtorSpec describes a host constructor. Params lists "context" for the
// implicit runtime context and "value" for an ordinary argument.
type CtorSpec struct {
	Access     string   `yaml:"access,omitempty"`
	Params     []string `yaml:"params,omitempty"`
	Static     bool     `yaml:"static,omitempty"`
	FieldsOnly bool     `yaml:"fields_only,omitempty"`
	Hidden     bool     `yaml:"hidden,omitempty"`
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses and validates manifest content.
// The path argument is used only for error messages.
func Parse(data []byte, path string) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	m.path = path
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Find searches for a manifest starting from dir and walking up to the
// filesystem root. It returns "" when there is none.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	base := strings.TrimSuffix(config.ManifestFileName, filepath.Ext(config.ManifestFileName))
	for {
		for _, ext := range config.ManifestFileExtensions {
			candidate := filepath.Join(dir, base+ext)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Validate checks the manifest for errors that do not need the registry:
// names, kinds, access levels, parameter kinds and duplicates.
func (m *Manifest) Validate() error {
	if len(m.Types) == 0 {
		return fmt.Errorf("%s: no types defined", m.path)
	}

	seen := make(map[string]bool, len(m.Types))
	for i, t := range m.Types {
		where := fmt.Sprintf("%s: types[%d]", m.path, i)
		if t.Name == "" {
			return fmt.Errorf("%s: name is required", where)
		}
		where = fmt.Sprintf("%s: %s", m.path, t.Name)
		if !typesystem.IsAllowedName(t.Name) {
			return fmt.Errorf("%s: %w", where, typesystem.ErrInvalidName)
		}
		key := typesystem.FoldName(t.Name)
		if seen[key] {
			return fmt.Errorf("%s: %w: type declared twice", where, typesystem.ErrDuplicateMember)
		}
		seen[key] = true

		kind, ok := typesystem.ParseKind(t.Kind)
		if !ok {
			return fmt.Errorf("%s: unknown kind %q", where, t.Kind)
		}
		if t.Extends != "" && typesystem.FoldName(t.Extends) == key {
			return fmt.Errorf("%s: extends itself", where)
		}
		if kind == typesystem.KindInterface && t.Extends != "" {
			return fmt.Errorf("%s: interfaces can not extend a class, use implements", where)
		}
		if kind != typesystem.KindClass && len(t.Constructors) > 0 {
			return fmt.Errorf("%s: only classes declare constructors", where)
		}

		for _, f := range t.Fields {
			if _, ok := typesystem.ParseAccess(f.Access); !ok {
				return fmt.Errorf("%s.%s: unknown access %q", where, f.Name, f.Access)
			}
			if f.Name == "" {
				return fmt.Errorf("%s: field name is required", where)
			}
		}
		for _, c := range t.Constants {
			if _, ok := typesystem.ParseAccess(c.Access); !ok {
				return fmt.Errorf("%s::%s: unknown access %q", where, c.Name, c.Access)
			}
		}
		for _, meth := range t.Methods {
			if _, ok := typesystem.ParseAccess(meth.Access); !ok {
				return fmt.Errorf("%s::%s(): unknown access %q", where, meth.Name, meth.Access)
			}
			if meth.Params < 0 {
				return fmt.Errorf("%s::%s(): negative parameter count", where, meth.Name)
			}
			switch typesystem.FoldName(meth.Name) {
			case typesystem.FoldName(config.ConstructorName):
				return fmt.Errorf("%s::%s(): declare constructors under constructors", where, meth.Name)
			case typesystem.FoldName(config.DestructorName):
				if meth.Static || meth.Params != 0 {
					return fmt.Errorf("%s::%s(): a destructor takes no parameters and is not static", where, meth.Name)
				}
			}
		}
		for j, c := range t.Constructors {
			if _, ok := typesystem.ParseAccess(c.Access); !ok {
				return fmt.Errorf("%s: constructors[%d]: unknown access %q", where, j, c.Access)
			}
			if _, err := paramKinds(c.Params); err != nil {
				return fmt.Errorf("%s: constructors[%d]: %w", where, j, err)
			}
		}
	}
	return nil
}

func paramKinds(params []string) ([]typesystem.ParamKind, error) {
	kinds := make([]typesystem.ParamKind, len(params))
	for i, p := range params {
		switch strings.ToLower(p) {
		case "context", "ctx":
			kinds[i] = typesystem.ParamContext
		case "value", "":
			kinds[i] = typesystem.ParamValue
		default:
			return nil, fmt.Errorf("unknown parameter kind %q", p)
		}
	}
	return kinds, nil
}
