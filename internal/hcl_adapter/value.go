package hcl_adapter

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// valueToString renders a cty value the way ambient variables store it:
// booleans become ON or OFF, collections become ";"-separated lists.
func valueToString(v cty.Value) (string, error) {
	if v.IsNull() {
		return "", nil
	}
	if !v.IsWhollyKnown() {
		return "", fmt.Errorf("value is not known")
	}

	ty := v.Type()
	switch {
	case ty == cty.Bool:
		if v.True() {
			return "ON", nil
		}
		return "OFF", nil
	case ty.IsPrimitiveType():
		s, err := convert.Convert(v, cty.String)
		if err != nil {
			return "", err
		}
		return s.AsString(), nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		items, err := valueToList(v)
		if err != nil {
			return "", err
		}
		return strings.Join(items, ";"), nil
	}
	return "", fmt.Errorf("cannot use a value of type %s here", ty.FriendlyName())
}

// valueToList renders each element of a collection, or a single value as a
// one-element list.
func valueToList(v cty.Value) ([]string, error) {
	if v.IsNull() {
		return nil, nil
	}
	ty := v.Type()
	if !ty.IsListType() && !ty.IsTupleType() && !ty.IsSetType() {
		s, err := valueToString(v)
		if err != nil {
			return nil, err
		}
		return []string{s}, nil
	}

	var out []string
	for it := v.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		s, err := valueToString(elem)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
