package canonical

import (
	"slices"
	"unicode/utf16"
)

// Value is a sealed interface over the value kinds that may appear in a
// canonical document. Only String, Int, Bool, Array and Object implement it.
// There is no float kind: float literals are rendered to their shortest
// decimal string before entering a document, so the encoding never depends on
// float formatting.
type Value interface {
	canonicalValue()
}

// String is a string value. It is NFC-normalized when marshaled.
type String string

func (String) canonicalValue() {}

// Int is an integer value.
type Int int64

func (Int) canonicalValue() {}

// Bool is a boolean value.
type Bool bool

func (Bool) canonicalValue() {}

// Array is an ordered list of values.
type Array []Value

func (Array) canonicalValue() {}

// Object maps keys to values. Use SortedKeys for deterministic iteration.
type Object map[string]Value

func (Object) canonicalValue() {}

// Pair is a key-value pair for Object construction.
type Pair struct {
	Key   string
	Value Value
}

// O is shorthand for Pair.
// Example: canonical.Obj(canonical.O("concept", canonical.String(id)))
func O(key string, value Value) Pair {
	return Pair{Key: key, Value: value}
}

// Obj creates an Object from pairs.
func Obj(pairs ...Pair) Object {
	obj := make(Object, len(pairs))
	for _, p := range pairs {
		obj[p.Key] = p.Value
	}
	return obj
}

// Strings converts a string slice to an Array of String.
func Strings(values ...string) Array {
	arr := make(Array, len(values))
	for i, v := range values {
		arr[i] = String(v)
	}
	return arr
}

// SortedKeys returns keys in RFC 8785 order (UTF-16 code units).
// Go's default string ordering compares UTF-8 bytes, which differs for
// characters outside the BMP.
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}
