package params

import (
	"fmt"
	"os"

	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// rosParametersKey is the mapping key ROS 2 parameter files nest their
// values under, keyed by node name (or the /** wildcard).
const rosParametersKey = "ros__parameters"

// LoadFile reads a parameter YAML file and returns its parameters in
// document order. Two layouts are accepted: the ROS 2 layout, where each
// top-level key names a node and holds a ros__parameters mapping, and a bare
// mapping of parameter names to values. Nested mappings flatten into
// dot-separated names.
func LoadFile(path string) ([]Param, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("malformed parameter file %s: %w", path, err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parameter file %s: top level must be a mapping", path)
	}

	// The ROS layout is detected by the presence of at least one
	// ros__parameters mapping one level down.
	var out []Param
	rosLayout := false
	for i := 0; i+1 < len(root.Content); i += 2 {
		section := root.Content[i+1]
		if section.Kind != yaml.MappingNode {
			continue
		}
		for j := 0; j+1 < len(section.Content); j += 2 {
			if section.Content[j].Value == rosParametersKey {
				rosLayout = true
				flat, err := flatten(section.Content[j+1], "", path)
				if err != nil {
					return nil, err
				}
				out = append(out, flat...)
			}
		}
	}
	if rosLayout {
		return out, nil
	}
	return flatten(root, "", path)
}

func flatten(node *yaml.Node, prefix, path string) ([]Param, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parameter file %s: line %d: expected a mapping", path, node.Line)
	}
	var out []Param
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if prefix != "" {
			key = prefix + "." + key
		}
		val := node.Content[i+1]
		switch val.Kind {
		case yaml.MappingNode:
			nested, err := flatten(val, key, path)
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
		default:
			v, err := valueOf(val, path)
			if err != nil {
				return nil, err
			}
			out = append(out, Param{Name: key, Value: v})
		}
	}
	return out, nil
}

func valueOf(node *yaml.Node, path string) (cty.Value, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return scalarOf(node, path)
	case yaml.SequenceNode:
		if len(node.Content) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, 0, len(node.Content))
		for _, c := range node.Content {
			v, err := valueOf(c, path)
			if err != nil {
				return cty.NilVal, err
			}
			elems = append(elems, v)
		}
		return cty.TupleVal(elems), nil
	}
	return cty.NilVal, fmt.Errorf("parameter file %s: line %d: unsupported value kind", path, node.Line)
}

func scalarOf(node *yaml.Node, path string) (cty.Value, error) {
	switch node.Tag {
	case "!!str":
		return cty.StringVal(node.Value), nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return cty.NilVal, fmt.Errorf("parameter file %s: line %d: %w", path, node.Line, err)
		}
		return cty.BoolVal(b), nil
	case "!!int":
		var i int64
		if err := node.Decode(&i); err != nil {
			return cty.NilVal, fmt.Errorf("parameter file %s: line %d: %w", path, node.Line, err)
		}
		return cty.NumberIntVal(i), nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return cty.NilVal, fmt.Errorf("parameter file %s: line %d: %w", path, node.Line, err)
		}
		return cty.NumberFloatVal(f), nil
	}
	return cty.NilVal, fmt.Errorf("parameter file %s: line %d: unsupported scalar tag %s", path, node.Line, node.Tag)
}
