package compiler

import (
	"math"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	// KindNil is the absent value.
	KindNil Kind = iota

	// KindBool is a boolean, kept distinct from Number so that true/false
	// survive serialization as booleans rather than 0/1.
	KindBool

	// KindNumber is a floating-point number.
	KindNumber

	// KindString is a string.
	KindString

	// KindArray is an ordered sequence of Values, densely indexed from 0.
	KindArray

	// KindObject is a mapping from unique string keys to Values.
	KindObject
)

// String returns the kind name as used in diagnostics.
func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is the canonical, structurally-typed result of converting a script
// value. It is immutable once constructed and safe to share.
type Value struct {
	kind Kind
	b    bool
	num  float64
	str  string
	arr  []Value
	obj  map[string]Value
}

// Nil returns the nil Value.
func Nil() Value {
	return Value{kind: KindNil}
}

// Bool returns a boolean Value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Number returns a numeric Value.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// String returns a string Value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Array returns an array Value holding the given elements.
func Array(items []Value) Value {
	return Value{kind: KindArray, arr: items}
}

// Object returns an object Value holding the given fields.
func Object(fields map[string]Value) Value {
	return Value{kind: KindObject, obj: fields}
}

// Kind reports which variant the Value holds.
func (v Value) Kind() Kind { return v.kind }

// BoolVal returns the boolean payload; valid only for KindBool.
func (v Value) BoolVal() bool { return v.b }

// NumberVal returns the numeric payload; valid only for KindNumber.
func (v Value) NumberVal() float64 { return v.num }

// StringVal returns the string payload; valid only for KindString.
func (v Value) StringVal() string { return v.str }

// Items returns the elements of an array Value; valid only for KindArray.
func (v Value) Items() []Value { return v.arr }

// Fields returns the fields of an object Value; valid only for KindObject.
func (v Value) Fields() map[string]Value { return v.obj }

// Field returns the named field of an object Value and whether it exists.
func (v Value) Field(name string) (Value, bool) {
	f, ok := v.obj[name]
	return f, ok
}

// Len returns the number of elements or fields for arrays and objects,
// and 0 for scalars.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return len(v.obj)
	default:
		return 0
	}
}

// Equal reports deep structural equality between two Values.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNil:
		return true
	case KindBool:
		return v.b == other.b
	case KindNumber:
		return v.num == other.num
	case KindString:
		return v.str == other.str
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.obj) != len(other.obj) {
			return false
		}
		for k, f := range v.obj {
			of, ok := other.obj[k]
			if !ok || !f.Equal(of) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// MarshalYAML implements yaml.Marshaler. Documents are emitted
// deterministically: object keys are sorted alphabetically, booleans keep
// the !!bool tag, and integral numbers render without a fractional part.
func (v Value) MarshalYAML() (interface{}, error) {
	return v.yamlNode(), nil
}

func (v Value) yamlNode() *yaml.Node {
	switch v.kind {
	case KindNil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.b)}
	case KindNumber:
		if isIntegral(v.num) {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(int64(v.num), 10)}
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(v.num, 'g', -1, 64)}
	case KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.str}
	case KindArray:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.arr {
			node.Content = append(node.Content, item.yamlNode())
		}
		return node
	case KindObject:
		keys := make([]string, 0, len(v.obj))
		for k := range v.obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range keys {
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				v.obj[k].yamlNode())
		}
		return node
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

// isIntegral reports whether f can be rendered exactly as an int64.
func isIntegral(f float64) bool {
	return f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1e15
}
