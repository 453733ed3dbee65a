package compiler

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// ConvertBindings converts a composition's top-level binding table into a
// canonical Object. Key filtering applies here and only here: bindings
// whose names begin with an underscore or are not entirely upper-case are
// private to the script and excluded from the document. Nested values are
// converted verbatim, without filtering.
func ConvertBindings(bindings starlark.StringDict, path string) (Value, error) {
	fields := make(map[string]Value, len(bindings))
	for name, v := range bindings {
		if !exportedName(name) {
			continue
		}
		converted, err := Convert(v, path+"."+name)
		if err != nil {
			return Value{}, err
		}
		fields[name] = converted
	}
	return Object(fields), nil
}

// exportedName reports whether a top-level binding belongs in the emitted
// document. The convention: upper-case names are configuration, everything
// else is a script-local helper.
func exportedName(name string) bool {
	return !strings.HasPrefix(name, "_") && name == strings.ToUpper(name)
}

// Convert recursively turns one script value into a canonical Value. The
// path argument labels the value for diagnostics (e.g. "app.prod.HOSTS[2]")
// and has no semantic effect.
func Convert(v starlark.Value, path string) (Value, error) {
	switch x := v.(type) {
	case starlark.NoneType:
		return Nil(), nil
	case starlark.Bool:
		return Bool(bool(x)), nil
	case starlark.Int:
		return Number(float64(x.Float())), nil
	case starlark.Float:
		return Number(float64(x)), nil
	case starlark.String:
		return String(string(x)), nil
	case *starlark.List:
		items := make([]Value, x.Len())
		for i := 0; i < x.Len(); i++ {
			converted, err := Convert(x.Index(i), fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return Value{}, err
			}
			items[i] = converted
		}
		return Array(items), nil
	case starlark.Tuple:
		items := make([]Value, len(x))
		for i, item := range x {
			converted, err := Convert(item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return Value{}, err
			}
			items[i] = converted
		}
		return Array(items), nil
	case *starlark.Dict:
		return convertDict(x, path)
	case *starlarkstruct.Struct:
		bindings := make(starlark.StringDict)
		x.ToStringDict(bindings)
		fields := make(map[string]Value, len(bindings))
		for name, attr := range bindings {
			converted, err := Convert(attr, path+"."+name)
			if err != nil {
				return Value{}, err
			}
			fields[name] = converted
		}
		return Object(fields), nil
	default:
		return Value{}, NewConversionError(path, fmt.Sprintf("Failed to extract %s: not a supported type", path))
	}
}

// convertDict applies the array/object disambiguation rule. A dict becomes
// an Array if and only if it holds no string keys; otherwise it becomes an
// Object and integer keys fold in under their decimal string form. Integer
// keys follow the source's 1-based indexing convention: a dict keyed 1..N
// yields an Array of length N, while an explicit key 0 keeps position 0.
func convertDict(d *starlark.Dict, path string) (Value, error) {
	fields := make(map[string]Value)
	indexed := make(map[int64]Value)
	maxIndex := int64(-1)

	for _, item := range d.Items() {
		key, val := item[0], item[1]
		switch k := key.(type) {
		case starlark.String:
			converted, err := Convert(val, fmt.Sprintf("%s.%s", path, string(k)))
			if err != nil {
				return Value{}, err
			}
			fields[string(k)] = converted
		case starlark.Int:
			idx, ok := k.Int64()
			if !ok {
				return Value{}, NewConversionError(path, fmt.Sprintf("%s contains an index out of range", path))
			}
			if err := collectIndexed(val, path, idx, indexed); err != nil {
				return Value{}, err
			}
			if idx > maxIndex {
				maxIndex = idx
			}
		case starlark.Float:
			idx := int64(math.Round(float64(k)))
			if err := collectIndexed(val, path, idx, indexed); err != nil {
				return Value{}, err
			}
			if idx > maxIndex {
				maxIndex = idx
			}
		default:
			return Value{}, NewConversionError(path,
				fmt.Sprintf("%s contains a key of unsupported type %s; must be string or integer", path, key.Type()))
		}
	}

	if len(fields) > 0 {
		for idx, v := range indexed {
			fields[strconv.FormatInt(idx, 10)] = v
		}
		return Object(fields), nil
	}

	if len(indexed) == 0 {
		return Array(nil), nil
	}

	items := make([]Value, maxIndex+1)
	for i := range items {
		items[i] = Nil()
	}
	for idx, v := range indexed {
		items[idx] = v
	}
	// 1-based dicts have no explicit slot 0; dropping the empty leading
	// slot normalizes them to 0-based arrays.
	if _, explicitZero := indexed[0]; !explicitZero {
		items = items[1:]
	}
	return Array(items), nil
}

// collectIndexed converts one integer-keyed entry into the in-progress
// array, rejecting negative indices.
func collectIndexed(val starlark.Value, path string, idx int64, indexed map[int64]Value) error {
	if idx < 0 {
		return NewConversionError(path, fmt.Sprintf("%s contains a negative integer key %d; must be string or integer", path, idx))
	}
	converted, err := Convert(val, fmt.Sprintf("%s[%d]", path, idx))
	if err != nil {
		return err
	}
	indexed[idx] = converted
	return nil
}
