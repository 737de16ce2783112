// Package params holds the typed parameter model for resolved nodes.
// Parameter values use the cty value system so a bool stays a bool whether
// it came from an XML attribute or a parameter YAML file.
package params

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Param is one resolved node parameter.
type Param struct {
	Name  string
	Value cty.Value
}

// Infer converts an already-resolved attribute string into a typed value.
// Integers, floats and booleans are recognized; everything else stays a
// string.
func Infer(s string) cty.Value {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return cty.NumberIntVal(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return cty.NumberFloatVal(f)
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return cty.BoolVal(b)
	}
	return cty.StringVal(s)
}

// Format renders a value the way a launch frontend would print it.
func Format(v cty.Value) string {
	switch {
	case v.Type() == cty.String:
		return v.AsString()
	case v.Type() == cty.Bool:
		if v.True() {
			return "true"
		}
		return "false"
	case v.Type() == cty.Number:
		return v.AsBigFloat().Text('g', -1)
	case v.Type().IsTupleType():
		parts := make([]string, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			parts = append(parts, Format(ev))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return v.GoString()
}

// ToGo converts a value into plain Go data for JSON output.
func ToGo(v cty.Value) (any, error) {
	switch {
	case v.Type() == cty.String:
		return v.AsString(), nil
	case v.Type() == cty.Bool:
		return v.True(), nil
	case v.Type() == cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return f, nil
	case v.Type().IsTupleType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			g, err := ToGo(ev)
			if err != nil {
				return nil, err
			}
			out = append(out, g)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported parameter type %s", v.Type().FriendlyName())
}
