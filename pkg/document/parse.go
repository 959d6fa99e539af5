package document

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Parse reads a YAML or JSON document into a Node tree. The result is the
// document's single root value. Syntax errors, repeated object keys,
// non-string keys, YAML aliases and non-core scalar tags are all rejected
// with a *Error.
func Parse(data []byte) (*Node, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &Error{Msg: fmt.Sprintf("invalid document: %v", err)}
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, &Error{Msg: "empty document"}
	}
	if len(root.Content) > 1 {
		return nil, Errorf(nodePos(root.Content[1]), "multiple documents in one file")
	}
	return convert(root.Content[0])
}

func nodePos(n *yaml.Node) Position {
	return Position{Line: n.Line, Column: n.Column}
}

func convert(n *yaml.Node) (*Node, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return convertScalar(n)
	case yaml.SequenceNode:
		out := &Node{Kind: Array, Pos: nodePos(n), Items: make([]*Node, 0, len(n.Content))}
		for _, item := range n.Content {
			child, err := convert(item)
			if err != nil {
				return nil, err
			}
			out.Items = append(out.Items, child)
		}
		return out, nil
	case yaml.MappingNode:
		return convertMapping(n)
	case yaml.AliasNode:
		return nil, Errorf(nodePos(n), "aliases are not supported")
	default:
		return nil, Errorf(nodePos(n), "unsupported node kind")
	}
}

func convertScalar(n *yaml.Node) (*Node, error) {
	out := &Node{Pos: nodePos(n)}
	switch n.Tag {
	case "!!null":
		out.Kind = Null
	case "!!bool":
		out.Kind = Bool
		if err := n.Decode(&out.BoolVal); err != nil {
			return nil, Errorf(out.Pos, "invalid boolean %q", n.Value)
		}
	case "!!int":
		out.Kind = Int
		if err := n.Decode(&out.IntVal); err != nil {
			return nil, Errorf(out.Pos, "invalid integer %q", n.Value)
		}
	case "!!float":
		out.Kind = Float
		if err := n.Decode(&out.FloatVal); err != nil {
			return nil, Errorf(out.Pos, "invalid number %q", n.Value)
		}
	case "!!str":
		out.Kind = String
		out.StrVal = n.Value
	default:
		return nil, Errorf(out.Pos, "unsupported value tag %s", n.Tag)
	}
	return out, nil
}

func convertMapping(n *yaml.Node) (*Node, error) {
	out := &Node{Kind: Object, Pos: nodePos(n), Entries: make([]Entry, 0, len(n.Content)/2)}
	seen := make(map[string]struct{}, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valNode := n.Content[i], n.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode || keyNode.Tag != "!!str" {
			return nil, Errorf(nodePos(keyNode), "object key must be a string")
		}
		key := keyNode.Value
		if _, dup := seen[key]; dup {
			return nil, Errorf(nodePos(keyNode), "duplicate key %q", key)
		}
		seen[key] = struct{}{}
		value, err := convert(valNode)
		if err != nil {
			return nil, err
		}
		out.Entries = append(out.Entries, Entry{Key: key, KeyPos: nodePos(keyNode), Value: value})
	}
	return out, nil
}
