package manifest

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/objmodel/internal/evaluator"
	"github.com/funvibe/objmodel/internal/symbols"
	"github.com/funvibe/objmodel/internal/typesystem"
)

// Build creates, seals and registers the descriptors of every type in the
// manifest. Types are built in dependency order; a base or interface not
// defined in the manifest must already be registered. The returned slice
// follows registration order.
func (m *Manifest) Build(reg *symbols.Registry) ([]*typesystem.TypeDescriptor, error) {
	specs := make(map[string]*TypeSpec, len(m.Types))
	names := make([]string, len(m.Types))
	for i := range m.Types {
		names[i] = m.Types[i].Name
		specs[typesystem.FoldName(m.Types[i].Name)] = &m.Types[i]
	}

	ordered, err := symbols.Order(names, func(name string) []string {
		spec := specs[typesystem.FoldName(name)]
		deps := append([]string(nil), spec.Implements...)
		if spec.Extends != "" {
			deps = append(deps, spec.Extends)
		}
		return deps
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.path, err)
	}

	built := make([]*typesystem.TypeDescriptor, 0, len(ordered))
	for _, name := range ordered {
		td, err := buildType(specs[typesystem.FoldName(name)], reg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.path, err)
		}
		if err := reg.Register(td); err != nil {
			return nil, fmt.Errorf("%s: %w", m.path, err)
		}
		built = append(built, td)
	}
	return built, nil
}

func buildType(spec *TypeSpec, reg *symbols.Registry) (*typesystem.TypeDescriptor, error) {
	kind, _ := typesystem.ParseKind(spec.Kind)
	td := typesystem.NewType(spec.Name, kind)

	if spec.Extends != "" {
		base, err := reg.Resolve(spec.Extends)
		if err != nil {
			return nil, fmt.Errorf("%s extends unknown type: %w", spec.Name, err)
		}
		if base.Kind() != typesystem.KindClass {
			return nil, fmt.Errorf("%s extends %s %s", spec.Name, base.Kind(), base.Name())
		}
		if err := td.Extend(base); err != nil {
			return nil, err
		}
	}
	for _, name := range spec.Implements {
		iface, err := reg.Resolve(name)
		if err != nil {
			return nil, fmt.Errorf("%s implements unknown type: %w", spec.Name, err)
		}
		if iface.Kind() != typesystem.KindInterface {
			return nil, fmt.Errorf("%s implements %s %s", spec.Name, iface.Kind(), iface.Name())
		}
		if err := td.Implement(iface); err != nil {
			return nil, err
		}
	}

	if spec.Hidden {
		if err := td.SetHidden(); err != nil {
			return nil, err
		}
	}
	if spec.RuntimeFields {
		if err := td.EnableRuntimeFields(); err != nil {
			return nil, err
		}
	}

	for _, f := range spec.Fields {
		access, _ := typesystem.ParseAccess(f.Access)
		switch {
		case typesystem.IsRuntimeFieldsSlot(f.Name, access, f.Static):
			if err := td.EnableRuntimeFields(); err != nil {
				return nil, err
			}
			continue
		case typesystem.IsContextField(f.Name, access, f.Static):
			continue
		}

		def, err := decodeValue(&f.Default)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", spec.Name, f.Name, err)
		}
		if f.Static {
			_, err = td.DeclareStaticField(f.Name, access, def)
		} else {
			_, err = td.DeclareField(f.Name, access, def)
		}
		if err != nil {
			return nil, err
		}
	}

	for _, c := range spec.Constants {
		access, _ := typesystem.ParseAccess(c.Access)
		v, err := decodeValue(&c.Value)
		if err != nil {
			return nil, fmt.Errorf("%s::%s: %w", spec.Name, c.Name, err)
		}
		if _, err := td.DeclareConstant(c.Name, access, v); err != nil {
			return nil, err
		}
	}

	for _, meth := range spec.Methods {
		access, _ := typesystem.ParseAccess(meth.Access)
		if _, err := td.DeclareMethod(meth.Name, access, meth.Params, meth.Static); err != nil {
			return nil, err
		}
	}

	for _, c := range spec.Constructors {
		access, _ := typesystem.ParseAccess(c.Access)
		params, _ := paramKinds(c.Params)
		_, err := td.DeclareConstructor(typesystem.ConstructorDescriptor{
			Access:     access,
			IsStatic:   c.Static,
			FieldsOnly: c.FieldsOnly,
			Hidden:     c.Hidden,
			Params:     params,
		})
		if err != nil {
			return nil, err
		}
	}

	if err := td.Seal(); err != nil {
		return nil, err
	}
	return td, nil
}

// decodeValue turns a YAML value into a guest value. Sequences and mappings
// become arrays, sequences keyed by position.
func decodeValue(n *yaml.Node) (evaluator.Value, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return decodeValue(n.Content[0])
	case yaml.AliasNode:
		return decodeValue(n.Alias)
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	case yaml.SequenceNode:
		arr := evaluator.NewArray()
		for i, item := range n.Content {
			v, err := decodeValue(item)
			if err != nil {
				return nil, err
			}
			arr.Set(strconv.Itoa(i), v)
		}
		return arr, nil
	case yaml.MappingNode:
		arr := evaluator.NewArray()
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := decodeValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			arr.Set(n.Content[i].Value, v)
		}
		return arr, nil
	}
	return nil, fmt.Errorf("line %d: unsupported value", n.Line)
}
