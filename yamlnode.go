package ptrpatch

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/eluv-io/errors-go"
	gyaml "github.com/goccy/go-yaml"
	"gopkg.in/yaml.v3"
)

// ReplaceNode replaces the value referenced by pointer inside a YAML AST and
// returns the node previously stored there. root may be a DocumentNode or any
// node within a document; pointers are resolved relative to it with the same
// rules as Replace. Alias nodes are followed.
//
// value is converted with the same rules as a decoded JSON value. A *yaml.Node
// value (or the content of a DocumentNode) is inserted as a shallow copy, so
// the caller's node is never modified; its children are shared. When a scalar
// is replaced by a mapping or sequence, its inline comment moves to the key
// line.
func ReplaceNode(root *yaml.Node, pointer string, value interface{}) (*yaml.Node, error) {
	if root == nil {
		return nil, errors.E("replace node", errors.K.Invalid, "reason", reasonInvalidParent, "detail", "nil node")
	}
	ptr, err := ParsePointer(pointer)
	if err != nil {
		return nil, err
	}
	newNode := toYAMLNode(value)

	if ptr.IsRoot() {
		if root.Kind == yaml.DocumentNode {
			var prev *yaml.Node
			if len(root.Content) > 0 {
				prev = root.Content[0]
				copyComments(prev, newNode)
				root.Content[0] = newNode
			} else {
				root.Content = []*yaml.Node{newNode}
			}
			return prev, nil
		}
		prev := *root
		*root = *newNode
		copyComments(&prev, root)
		return &prev, nil
	}

	parent, err := resolveNodeParent(root, ptr.Parent())
	if err != nil {
		return nil, err
	}

	last := ptr.Last()
	switch parent.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(parent.Content); i += 2 {
			k := parent.Content[i]
			if k.Kind != yaml.ScalarNode || k.Value != last {
				continue
			}
			old := parent.Content[i+1]
			if old != nil && old.Kind == yaml.ScalarNode && (newNode.Kind == yaml.MappingNode || newNode.Kind == yaml.SequenceNode) {
				if c := strings.TrimSpace(old.LineComment); c != "" && k.LineComment == "" {
					k.LineComment = old.LineComment
				}
			} else {
				copyComments(old, newNode)
			}
			parent.Content[i+1] = newNode
			return old, nil
		}
		return nil, errors.E("replace node", errors.K.NotExist,
			"reason", reasonTargetNotFound,
			"pointer", pointer,
			"key", last)
	case yaml.SequenceNode:
		idx, ok := parseIndex(last)
		if !ok {
			return nil, errors.E("replace node", errors.K.Invalid,
				"reason", reasonInvalidParent,
				"pointer", pointer,
				"detail", "invalid array index",
				"index", last)
		}
		if idx >= len(parent.Content) {
			return nil, errors.E("replace node", errors.K.NotExist,
				"reason", reasonTargetNotFound,
				"pointer", pointer,
				"detail", "array index out of range",
				"index", idx,
				"len", len(parent.Content))
		}
		old := parent.Content[idx]
		copyComments(old, newNode)
		parent.Content[idx] = newNode
		return old, nil
	default:
		return nil, errors.E("replace node", errors.K.Invalid,
			"reason", reasonInvalidParent,
			"pointer", pointer,
			"detail", "parent is a "+nodeKindName(parent.Kind))
	}
}

// resolveNodeParent is the YAML AST counterpart of ResolveParent.
func resolveNodeParent(start *yaml.Node, tokens []string) (*yaml.Node, error) {
	cur := deref(start)
	for idx, tok := range tokens {
		mkerr := func() *errors.Error {
			return errors.E("resolve", "path", Pointer(tokens[:idx+1]).String(), "full_path", Pointer(tokens).String())
		}
		switch cur.Kind {
		case yaml.MappingNode:
			var child *yaml.Node
			for j := 0; j+1 < len(cur.Content); j += 2 {
				if cur.Content[j].Kind == yaml.ScalarNode && cur.Content[j].Value == tok {
					child = cur.Content[j+1]
					break
				}
			}
			if child == nil {
				return nil, mkerr().WithKind(errors.K.NotExist).With("reason", reasonMissingParent)
			}
			cur = deref(child)
		case yaml.SequenceNode:
			i, ok := parseIndex(tok)
			if !ok {
				return nil, mkerr().WithKind(errors.K.Invalid).With("reason", reasonInvalidParent).
					With("detail", "invalid array index")
			}
			if i >= len(cur.Content) {
				return nil, mkerr().WithKind(errors.K.NotExist).With("reason", reasonMissingParent).
					With("detail", "array index out of range")
			}
			cur = deref(cur.Content[i])
		default:
			return nil, mkerr().WithKind(errors.K.Invalid).With("reason", reasonInvalidParent).
				With("detail", "cannot traverse into "+nodeKindName(cur.Kind))
		}
	}
	return cur, nil
}

// deref unwraps document and alias nodes. A document without content yields
// an empty scalar.
func deref(n *yaml.Node) *yaml.Node {
	for n != nil {
		switch n.Kind {
		case yaml.DocumentNode:
			if len(n.Content) == 0 {
				return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null"}
			}
			n = n.Content[0]
		case yaml.AliasNode:
			n = n.Alias
		default:
			return n
		}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null"}
}

func nodeKindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "node kind " + strconv.Itoa(int(k))
	}
}

// copyComments copies inline and block comments from src to dst when present.
func copyComments(src, dst *yaml.Node) {
	if src == nil || dst == nil {
		return
	}
	if src.HeadComment != "" {
		dst.HeadComment = src.HeadComment
	}
	if src.LineComment != "" {
		dst.LineComment = src.LineComment
	}
	if src.FootComment != "" {
		dst.FootComment = src.FootComment
	}
}

// toYAMLNode converts a generic value to a YAML node. Mapping keys of plain
// maps are sorted so the output is stable.
func toYAMLNode(v interface{}) *yaml.Node {
	switch t := v.(type) {
	case *yaml.Node:
		if t == nil {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
		}
		if t.Kind == yaml.DocumentNode && len(t.Content) > 0 {
			t = t.Content[0]
		}
		// shallow copy: comments are written to the inserted node
		cp := *t
		return &cp
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case bool:
		if t {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "true"}
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "false"}
	case json.Number:
		if strings.ContainsAny(string(t), ".eE") {
			f, _ := t.Float64()
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(f, 'g', -1, 64)}
		}
		i, err := t.Int64()
		if err != nil {
			f, _ := t.Float64()
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(f, 'g', -1, 64)}
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(i, 10)}
	case float64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(t, 'g', -1, 64)}
	case int:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(t)}
	case int64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(t, 10)}
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: t}
	case []interface{}:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range t {
			seq.Content = append(seq.Content, toYAMLNode(e))
		}
		return seq
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		mp := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range keys {
			mp.Content = append(mp.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, toYAMLNode(t[k]))
		}
		return mp
	case gyaml.MapSlice:
		mp := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, it := range t {
			mp.Content = append(mp.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fmt.Sprint(it.Key)}, toYAMLNode(it.Value))
		}
		return mp
	default:
		// best-effort string
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fmt.Sprint(t)}
	}
}

// NodeValue converts a YAML node to a generic document tree: mappings become
// ordered gyaml.MapSlice values, sequences []interface{} and scalars their Go
// counterparts per tag. The result can be used with Replace and Get.
func NodeValue(n *yaml.Node) interface{} {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case yaml.DocumentNode, yaml.AliasNode:
		return NodeValue(deref(n))
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return nil
		case "!!bool":
			return strings.EqualFold(n.Value, "true")
		case "!!int":
			if i, err := strconv.ParseInt(n.Value, 10, 64); err == nil {
				return int(i)
			}
			return n.Value
		case "!!float":
			if f, err := strconv.ParseFloat(n.Value, 64); err == nil {
				return f
			}
			return n.Value
		default:
			return n.Value
		}
	case yaml.MappingNode:
		ms := gyaml.MapSlice{}
		for i := 0; i+1 < len(n.Content); i += 2 {
			if n.Content[i].Kind == yaml.ScalarNode {
				ms = append(ms, gyaml.MapItem{Key: n.Content[i].Value, Value: NodeValue(n.Content[i+1])})
			}
		}
		return ms
	case yaml.SequenceNode:
		arr := make([]interface{}, 0, len(n.Content))
		for _, c := range n.Content {
			arr = append(arr, NodeValue(c))
		}
		return arr
	default:
		return nil
	}
}
