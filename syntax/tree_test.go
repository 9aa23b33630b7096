package syntax

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// randomTree builds a well-formed arena directly, bypassing the parser.
func randomTree(rng *rand.Rand, size int) *Tree {
	src := make([]byte, size)
	for i := range src {
		src[i] = ' '
	}
	t := &Tree{
		src:   src,
		nodes: []Node{{Kind: "root", StartByte: 0, EndByte: uint32(size), parent: None, first: None}},
		lines: NewLineIndex(src),
	}
	kinds := []string{"a", "b", "c"}

	stack := []NodeID{0}
	for len(stack) > 0 && len(t.nodes) < 400 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		parent := t.nodes[id]

		width := int(parent.EndByte - parent.StartByte)
		count := rng.Intn(4)
		if width < count {
			continue
		}
		// Pick sorted cut points and turn consecutive pairs into child ranges.
		cuts := make([]int, 0, 2*count)
		for i := 0; i < 2*count; i++ {
			cuts = append(cuts, int(parent.StartByte)+rng.Intn(width+1))
		}
		sortInts(cuts)

		first := NodeID(len(t.nodes))
		t.nodes[id].first = first
		t.nodes[id].count = int32(count)
		for i := 0; i < count; i++ {
			t.nodes = append(t.nodes, Node{
				Kind:      kinds[rng.Intn(len(kinds))],
				StartByte: uint32(cuts[2*i]),
				EndByte:   uint32(cuts[2*i+1]),
				parent:    id,
				first:     None,
			})
		}
		for i := count - 1; i >= 0; i-- {
			stack = append(stack, first+NodeID(i))
		}
	}
	return t
}

func sortInts(xs []int) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j] < xs[j-1]; j-- {
			xs[j], xs[j-1] = xs[j-1], xs[j]
		}
	}
}

func recursiveQuery(t *Tree, id NodeID, kind string, out *[]NodeID) {
	if t.Kind(id) == kind {
		*out = append(*out, id)
	}
	for _, c := range t.Children(id) {
		recursiveQuery(t, c, kind, out)
	}
}

func TestQueryPropertiesOnRandomTrees(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 200; iter++ {
		tree := randomTree(rng, 64+rng.Intn(512))
		require.NoError(t, tree.Validate())

		for _, kind := range []string{"a", "b", "c", "missing"} {
			got := tree.Query(tree.Root(), kind)

			var want []NodeID
			recursiveQuery(tree, tree.Root(), kind, &want)
			require.Equal(t, want, got)

			for i, id := range got {
				require.Equal(t, kind, tree.Kind(id))
				if i > 0 {
					require.LessOrEqual(t, tree.Node(got[i-1]).StartByte, tree.Node(id).StartByte)
				}
			}
		}
	}
}

func TestWalkSkipsChildren(t *testing.T) {
	tree := randomTree(rand.New(rand.NewSource(3)), 256)

	var visited int
	tree.Walk(tree.Root(), func(id NodeID) bool {
		visited++
		return id != tree.Root()
	})
	assert.Equal(t, 1, visited)
}

func TestValidateRejectsBrokenArenas(t *testing.T) {
	src := []byte("0123456789")
	tests := []struct {
		name  string
		nodes []Node
	}{
		{"range past source", []Node{
			{Kind: "root", StartByte: 0, EndByte: 11, parent: None, first: None},
		}},
		{"inverted range", []Node{
			{Kind: "root", StartByte: 5, EndByte: 2, parent: None, first: None},
		}},
		{"child escapes parent", []Node{
			{Kind: "root", StartByte: 0, EndByte: 5, parent: None, first: 1, count: 1},
			{Kind: "x", StartByte: 2, EndByte: 8, parent: 0, first: None},
		}},
		{"children out of order", []Node{
			{Kind: "root", StartByte: 0, EndByte: 10, parent: None, first: 1, count: 2},
			{Kind: "x", StartByte: 4, EndByte: 6, parent: 0, first: None},
			{Kind: "y", StartByte: 1, EndByte: 3, parent: 0, first: None},
		}},
		{"wrong parent link", []Node{
			{Kind: "root", StartByte: 0, EndByte: 10, parent: None, first: 1, count: 1},
			{Kind: "x", StartByte: 1, EndByte: 3, parent: 5, first: None},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := &Tree{src: src, nodes: tt.nodes, lines: NewLineIndex(src)}
			assert.Error(t, tree.Validate())
		})
	}
}

func TestLineIndex(t *testing.T) {
	src := []byte("ab\ncéd\n\U0001F600=x\n")
	idx := NewLineIndex(src)
	assert.Equal(t, 4, idx.LineCount())

	tests := []struct {
		off  uint32
		want Point
	}{
		{0, Point{0, 0}},
		{2, Point{0, 2}},
		{3, Point{1, 0}},
		{4, Point{1, 1}},
		// 'é' is two bytes but one UTF-16 unit.
		{6, Point{1, 2}},
		{8, Point{2, 0}},
		// The emoji is four bytes and a surrogate pair.
		{12, Point{2, 2}},
		{13, Point{2, 3}},
		{uint32(len(src)), Point{3, 0}},
		{uint32(len(src)) + 10, Point{3, 0}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, idx.Point(tt.off), "offset %d", tt.off)
	}

	assert.Equal(t, uint32(3), idx.LineStart(1))
	assert.Equal(t, 2, idx.Line(9))
}

func TestLineIndexEmpty(t *testing.T) {
	idx := NewLineIndex(nil)
	assert.Equal(t, 1, idx.LineCount())
	assert.Equal(t, Point{0, 0}, idx.Point(0))
}
