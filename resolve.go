package ptrpatch

import (
	"github.com/eluv-io/errors-go"
	gyaml "github.com/goccy/go-yaml"
)

// ParentRef is the result of resolving the parent of a pointer's terminal
// token. Node aliases the live container inside the document; it is never a
// copy.
type ParentRef struct {
	Node interface{}
	Kind Kind
}

// ResolveParent walks tokens from doc and returns the node they lead to. The
// tokens are expected to exclude the terminal token, so the returned node is
// the container the caller will address with it. An empty token list yields
// doc itself.
//
// Errors:
//   - invalid parent: a token descends into a scalar, or a non-numeric token
//     addresses an array
//   - missing parent: a key is absent or an index is out of range
func ResolveParent(doc interface{}, tokens []string) (ParentRef, error) {
	cur := doc
	for idx, tok := range tokens {
		mkerr := func() *errors.Error {
			return errors.E("resolve", "path", Pointer(tokens[:idx+1]).String(), "full_path", Pointer(tokens).String())
		}
		switch t := cur.(type) {
		case map[string]interface{}, gyaml.MapSlice:
			v, found := lookupKey(t, tok)
			if !found {
				return ParentRef{}, mkerr().WithKind(errors.K.NotExist).With("reason", reasonMissingParent)
			}
			cur = v
		case []interface{}:
			i, ok := parseIndex(tok)
			if !ok {
				return ParentRef{}, mkerr().WithKind(errors.K.Invalid).With("reason", reasonInvalidParent).
					With("detail", "invalid array index")
			}
			if i >= len(t) {
				return ParentRef{}, mkerr().WithKind(errors.K.NotExist).With("reason", reasonMissingParent).
					With("detail", "array index out of range")
			}
			cur = t[i]
		default:
			return ParentRef{}, mkerr().WithKind(errors.K.Invalid).With("reason", reasonInvalidParent).
				With("detail", "element is leaf")
		}
	}
	return ParentRef{Node: cur, Kind: KindOf(cur)}, nil
}

// locate finds the terminal token within parent and returns the value stored
// there and, for arrays, its index. op and pointer are used to build errors.
func locate(parent ParentRef, tok string, op string, pointer string) (interface{}, int, error) {
	switch parent.Kind {
	case KindObject:
		v, found := lookupKey(parent.Node, tok)
		if !found {
			return nil, -1, errors.E(op, errors.K.NotExist,
				"reason", reasonTargetNotFound,
				"pointer", pointer,
				"key", tok)
		}
		return v, -1, nil
	case KindArray:
		arr := parent.Node.([]interface{})
		i, ok := parseIndex(tok)
		if !ok {
			return nil, -1, errors.E(op, errors.K.Invalid,
				"reason", reasonInvalidParent,
				"pointer", pointer,
				"detail", "invalid array index",
				"index", tok)
		}
		if i >= len(arr) {
			return nil, -1, errors.E(op, errors.K.NotExist,
				"reason", reasonTargetNotFound,
				"pointer", pointer,
				"detail", "array index out of range",
				"index", i,
				"len", len(arr))
		}
		return arr[i], i, nil
	default:
		return nil, -1, errors.E(op, errors.K.Invalid,
			"reason", reasonInvalidParent,
			"pointer", pointer,
			"detail", "parent is a "+parent.Kind.String())
	}
}

// Get returns the value referenced by pointer in doc.
func Get(doc interface{}, pointer string) (interface{}, error) {
	ptr, err := ParsePointer(pointer)
	if err != nil {
		return nil, err
	}
	if ptr.IsRoot() {
		return doc, nil
	}
	parent, err := ResolveParent(doc, ptr.Parent())
	if err != nil {
		return nil, err
	}
	v, _, err := locate(parent, ptr.Last(), "get", pointer)
	return v, err
}
