package document

import "fmt"

// Kind identifies the value type a Node holds.
type Kind int

const (
	Null Kind = iota
	Bool
	Int
	Float
	String
	Array
	Object
)

// String returns the lower-case name of the kind, as used in diagnostics.
func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Int:
		return "integer"
	case Float:
		return "float"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Position is a line/column location in the source document. Both are
// 1-based. The zero Position marks nodes built in memory rather than parsed
// from a file.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// IsZero reports whether the position carries no source location.
func (p Position) IsZero() bool {
	return p.Line == 0 && p.Column == 0
}

func (p Position) String() string {
	if p.IsZero() {
		return "?"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Entry is a single key/value pair of an object node. KeyPos locates the key
// token itself, which is where schema diagnostics anchor.
type Entry struct {
	Key    string
	KeyPos Position
	Value  *Node
}

// Node is one value in a parsed document. Exactly the payload field matching
// Kind is meaningful; the others hold zero values.
type Node struct {
	Kind Kind
	Pos  Position

	BoolVal  bool
	IntVal   int64
	FloatVal float64
	StrVal   string
	Items    []*Node // Array elements, in file order
	Entries  []Entry // Object entries, in file order, keys unique
}

// Get returns the value stored under key, or false when the key is absent or
// the node is not an object. Use Entries to iterate in file order.
func (n *Node) Get(key string) (*Node, bool) {
	if n == nil || n.Kind != Object {
		return nil, false
	}
	for i := range n.Entries {
		if n.Entries[i].Key == key {
			return n.Entries[i].Value, true
		}
	}
	return nil, false
}

// Number returns the node's numeric value widened to float64. It is only
// meaningful for Int and Float nodes.
func (n *Node) Number() float64 {
	if n.Kind == Int {
		return float64(n.IntVal)
	}
	return n.FloatVal
}

// IsNumber reports whether the node holds an integer or a float.
func (n *Node) IsNumber() bool {
	return n != nil && (n.Kind == Int || n.Kind == Float)
}
