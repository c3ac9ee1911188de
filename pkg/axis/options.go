package axis

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/leowmjw/go-scoreplot/pkg/util"
)

// ErrOptionType is returned when an option value cannot be converted to the
// attribute's type.
var ErrOptionType = errors.New("option value has wrong type")

// Setter assigns one option value onto an axis attribute.
type Setter func(v cty.Value) error

func assign(v cty.Value, want cty.Type, dst interface{}) error {
	converted, err := convert.Convert(v, want)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOptionType, err)
	}
	if err := gocty.FromCtyValue(converted, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrOptionType, err)
	}
	return nil
}

func boolOption(dst *bool) Setter {
	return func(v cty.Value) error {
		return assign(v, cty.Bool, dst)
	}
}

func stringOption(dst *string) Setter {
	return func(v cty.Value) error {
		return assign(v, cty.String, dst)
	}
}

// pinnedOption sets a boundary and keeps it from being recomputed. A null
// value releases the pin.
func pinnedOption(dst *float64, pinned *bool) Setter {
	return func(v cty.Value) error {
		if v.IsNull() {
			*dst, *pinned = math.NaN(), false
			return nil
		}
		if err := assign(v, cty.Number, dst); err != nil {
			return err
		}
		*pinned = true
		return nil
	}
}

// SplitOptionName splits "xHideUnused" into the role x and the attribute
// "hideUnused".
func SplitOptionName(name string) (Role, string, bool) {
	if len(name) < 2 {
		return "", "", false
	}
	role, err := ParseRole(name[:1])
	if err != nil {
		return "", "", false
	}
	r, size := utf8.DecodeRuneInString(name[1:])
	return role, string(unicode.ToLower(r)) + name[1+size:], true
}

// ApplyOptions assigns prefixed options onto the axis with the matching role.
// Names without a role prefix, for a role with no axis, or naming an
// attribute the axis lacks are ignored.
func ApplyOptions(axes []Axis, opts map[string]cty.Value) error {
	for _, name := range util.GetKeys(opts) {
		role, attr, ok := SplitOptionName(name)
		if !ok {
			continue
		}
		for _, a := range axes {
			if a == nil || a.Role() != role {
				continue
			}
			set, ok := a.Options()[attr]
			if !ok {
				continue
			}
			if err := set(opts[name]); err != nil {
				return fmt.Errorf("axis option %s: %w", name, err)
			}
		}
	}
	return nil
}

// OptionNames lists the attributes an axis accepts, prefixed with its role.
func OptionNames(a Axis) []string {
	var names []string
	for _, attr := range util.GetKeys(a.Options()) {
		names = append(names, string(a.Role())+strings.ToUpper(attr[:1])+attr[1:])
	}
	return names
}
