package ptrpatch

import (
	"fmt"

	gyaml "github.com/goccy/go-yaml"
)

// Kind classifies a document node.
type Kind int

const (
	// KindScalar is any value that cannot hold children, including nil.
	KindScalar Kind = iota
	// KindObject is a string-keyed mapping: map[string]interface{} or an
	// ordered gyaml.MapSlice.
	KindObject
	// KindArray is an integer-indexed sequence: []interface{}.
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "scalar"
	}
}

// KindOf returns the kind of the given document node.
func KindOf(v interface{}) Kind {
	switch v.(type) {
	case map[string]interface{}, gyaml.MapSlice:
		return KindObject
	case []interface{}:
		return KindArray
	default:
		return KindScalar
	}
}

// lookupKey returns the value stored under key in an object node. MapSlice
// keys are compared as strings; on duplicates the last occurrence wins, like
// a decoder would.
func lookupKey(obj interface{}, key string) (interface{}, bool) {
	switch t := obj.(type) {
	case map[string]interface{}:
		v, ok := t[key]
		return v, ok
	case gyaml.MapSlice:
		if i := mapSliceIndex(t, key); i >= 0 {
			return t[i].Value, true
		}
	}
	return nil, false
}

// storeKey overwrites the value of an existing key in an object node. The
// key must have been found with lookupKey.
func storeKey(obj interface{}, key string, val interface{}) {
	switch t := obj.(type) {
	case map[string]interface{}:
		t[key] = val
	case gyaml.MapSlice:
		if i := mapSliceIndex(t, key); i >= 0 {
			t[i].Value = val
		}
	}
}

func mapSliceIndex(ms gyaml.MapSlice, key string) int {
	for i := len(ms) - 1; i >= 0; i-- {
		if keyEquals(ms[i].Key, key) {
			return i
		}
	}
	return -1
}

func keyEquals(k interface{}, want string) bool {
	switch vv := k.(type) {
	case string:
		return vv == want
	case fmt.Stringer:
		return vv.String() == want
	default:
		return false
	}
}

// deepCopy copies all containers of a document tree. Scalars are shared.
func deepCopy(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, e := range t {
			out[k] = deepCopy(e)
		}
		return out
	case gyaml.MapSlice:
		out := make(gyaml.MapSlice, len(t))
		for i, it := range t {
			out[i] = gyaml.MapItem{Key: it.Key, Value: deepCopy(it.Value)}
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = deepCopy(e)
		}
		return out
	default:
		return t
	}
}

// plainValue converts ordered mappings to map[string]interface{} so the tree
// can be encoded as JSON. Non-string keys are formatted with fmt.Sprint.
func plainValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, e := range t {
			out[k] = plainValue(e)
		}
		return out
	case gyaml.MapSlice:
		out := make(map[string]interface{}, len(t))
		for _, it := range t {
			out[fmt.Sprint(it.Key)] = plainValue(it.Value)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = plainValue(e)
		}
		return out
	default:
		return t
	}
}
