package ir

import (
	"slices"
	"unicode/utf16"
)

// Value is a sealed interface over the types canonical JSON accepts.
// There is no float variant: floats enter canonical form as decimal strings.
type Value interface {
	value()
}

// String is a canonical string value.
type String string

// Int is a canonical integer value.
type Int int64

// Bool is a canonical boolean value.
type Bool bool

// Array is an ordered list of values.
type Array []Value

// Object maps keys to values. Use SortedKeys for deterministic iteration.
type Object map[string]Value

func (String) value() {}
func (Int) value()    {}
func (Bool) value()   {}
func (Array) value()  {}
func (Object) value() {}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's string comparison uses UTF-8 bytes, which orders some keys differently.
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

func compareKeysRFC8785(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}

func stringArray(vals []string) Array {
	arr := make(Array, len(vals))
	for i, v := range vals {
		arr[i] = String(v)
	}
	return arr
}
