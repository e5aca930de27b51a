package registry

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// FloatArg decodes a numeric hook argument, falling back to def when the
// argument is absent.
func FloatArg(args map[string]cty.Value, name string, def float64) (float64, error) {
	val, ok := args[name]
	if !ok || val.IsNull() {
		return def, nil
	}
	var out float64
	if err := gocty.FromCtyValue(val, &out); err != nil {
		return 0, fmt.Errorf("argument %q must be a number: %w", name, err)
	}
	return out, nil
}

// StringArg decodes a string hook argument, falling back to def when the
// argument is absent.
func StringArg(args map[string]cty.Value, name string, def string) (string, error) {
	val, ok := args[name]
	if !ok || val.IsNull() {
		return def, nil
	}
	var out string
	if err := gocty.FromCtyValue(val, &out); err != nil {
		return "", fmt.Errorf("argument %q must be a string: %w", name, err)
	}
	return out, nil
}
