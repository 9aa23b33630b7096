package analysis

import (
	"stylesense/syntax"

	"github.com/sourcegraph/go-lsp"
)

type PointRange struct {
	StartPoint syntax.Point
	EndPoint   syntax.Point
	StartByte  uint32
	EndByte    uint32
}

func FromBytes(lines *syntax.LineIndex, start, end uint32) PointRange {
	return PointRange{
		StartPoint: lines.Point(start),
		EndPoint:   lines.Point(end),
		StartByte:  start,
		EndByte:    end,
	}
}

func FromNode(tree *syntax.Tree, id syntax.NodeID) PointRange {
	n := tree.Node(id)
	return FromBytes(tree.Lines(), n.StartByte, n.EndByte)
}

func (p PointRange) ToLSP() lsp.Range {
	return lsp.Range{
		Start: lsp.Position{Line: p.StartPoint.Line, Character: p.StartPoint.Character},
		End:   lsp.Position{Line: p.EndPoint.Line, Character: p.EndPoint.Character},
	}
}
