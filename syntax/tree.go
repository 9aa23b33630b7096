// Package syntax turns C and C++ source into an immutable, arena-backed
// syntax tree and answers structural queries over it.
//
// Nodes are addressed by NodeID, an index into the tree's arena. Children of
// a node occupy a contiguous run of IDs, so a node only stores the first
// child and a count. Every traversal in this package runs on an explicit
// stack; deeply nested input cannot exhaust the goroutine stack.
package syntax

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"stylesense/grammar"

	sitter "github.com/smacker/go-tree-sitter"
)

var ErrParse = errors.New("parse failed")

type NodeID int32

// None is returned where a node does not exist.
const None NodeID = -1

type Node struct {
	Kind  string
	Field string

	// Named is false for anonymous tokens such as "=" or "(".
	Named   bool
	Error   bool
	Missing bool

	StartByte uint32
	EndByte   uint32

	parent NodeID
	first  NodeID
	count  int32
}

type Tree struct {
	Language grammar.SupportedLanguage

	src   []byte
	nodes []Node
	lines *LineIndex
}

// Build parses src with the given grammar. Malformed input is not an error:
// the tree carries ERROR and MISSING nodes where the parser recovered.
func Build(ctx context.Context, src []byte, capability grammar.Capability) (*Tree, error) {
	if capability.TreeSitterLang() == nil {
		return nil, fmt.Errorf("%w: capability not activated", grammar.ErrGrammarLoad)
	}
	src = bytes.Clone(src)
	if src == nil {
		src = []byte{}
	}

	parser := capability.NewParser()
	defer parser.Close()

	st, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if st == nil {
		return nil, ErrParse
	}
	defer st.Close()

	t := flatten(st.RootNode(), src)
	t.Language = capability.Language
	if err := t.Validate(); err != nil {
		panic(err)
	}
	return t, nil
}

func convert(n *sitter.Node, field string, parent NodeID) Node {
	return Node{
		Kind:      n.Type(),
		Field:     field,
		Named:     n.IsNamed(),
		Error:     n.IsError(),
		Missing:   n.IsMissing(),
		StartByte: n.StartByte(),
		EndByte:   n.EndByte(),
		parent:    parent,
		first:     None,
	}
}

type pending struct {
	sn *sitter.Node
	id NodeID
}

func flatten(root *sitter.Node, src []byte) *Tree {
	t := &Tree{
		src:   src,
		nodes: []Node{convert(root, "", None)},
		lines: NewLineIndex(src),
	}

	stack := []pending{{root, 0}}
	var kids []*sitter.Node
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		count := int(p.sn.ChildCount())
		if count == 0 {
			continue
		}

		first := NodeID(len(t.nodes))
		t.nodes[p.id].first = first
		t.nodes[p.id].count = int32(count)

		kids = kids[:0]
		for i := 0; i < count; i++ {
			child := p.sn.Child(i)
			kids = append(kids, child)
			t.nodes = append(t.nodes, convert(child, p.sn.FieldNameForChild(i), p.id))
		}
		for i := count - 1; i >= 0; i-- {
			stack = append(stack, pending{kids[i], first + NodeID(i)})
		}
	}

	return t
}

func (t *Tree) Root() NodeID {
	return 0
}

// Source returns the snapshot the tree was built from. Callers must not
// modify it.
func (t *Tree) Source() []byte {
	return t.src
}

func (t *Tree) Len() int {
	return len(t.nodes)
}

func (t *Tree) Node(id NodeID) Node {
	return t.nodes[id]
}

func (t *Tree) Kind(id NodeID) string {
	return t.nodes[id].Kind
}

func (t *Tree) Parent(id NodeID) NodeID {
	return t.nodes[id].parent
}

func (t *Tree) ChildCount(id NodeID) int {
	return int(t.nodes[id].count)
}

func (t *Tree) Child(id NodeID, i int) NodeID {
	n := &t.nodes[id]
	if i < 0 || i >= int(n.count) {
		return None
	}
	return n.first + NodeID(i)
}

func (t *Tree) Children(id NodeID) []NodeID {
	n := &t.nodes[id]
	out := make([]NodeID, n.count)
	for i := range out {
		out[i] = n.first + NodeID(i)
	}
	return out
}

// ChildByField returns the first direct child recorded under field.
func (t *Tree) ChildByField(id NodeID, field string) NodeID {
	n := &t.nodes[id]
	for i := int32(0); i < n.count; i++ {
		if t.nodes[n.first+NodeID(i)].Field == field {
			return n.first + NodeID(i)
		}
	}
	return None
}

func (t *Tree) Content(id NodeID) []byte {
	n := &t.nodes[id]
	return t.src[n.StartByte:n.EndByte]
}

func (t *Tree) Lines() *LineIndex {
	return t.lines
}

// HasErrors reports whether the parser had to recover anywhere.
func (t *Tree) HasErrors() bool {
	for i := range t.nodes {
		if t.nodes[i].Error || t.nodes[i].Missing {
			return true
		}
	}
	return false
}

// Validate checks the structural invariants of the arena: ranges lie inside
// the source, children lie inside their parent and appear in source order.
func (t *Tree) Validate() error {
	size := uint32(len(t.src))
	for i := range t.nodes {
		n := &t.nodes[i]
		if n.StartByte > n.EndByte || n.EndByte > size {
			return fmt.Errorf("syntax: node %d (%s) has range [%d, %d) outside source of %d bytes",
				i, n.Kind, n.StartByte, n.EndByte, size)
		}
		prevEnd := n.StartByte
		for c := int32(0); c < n.count; c++ {
			child := &t.nodes[n.first+NodeID(c)]
			if child.parent != NodeID(i) {
				return fmt.Errorf("syntax: node %d lists child %d that points at parent %d",
					i, n.first+NodeID(c), child.parent)
			}
			if child.StartByte < prevEnd || child.EndByte > n.EndByte {
				return fmt.Errorf("syntax: child %s [%d, %d) of %s [%d, %d) is out of order or out of bounds",
					child.Kind, child.StartByte, child.EndByte, n.Kind, n.StartByte, n.EndByte)
			}
			prevEnd = child.EndByte
		}
	}
	return nil
}
