package analysis

import (
	"context"
	"sort"

	"stylesense/syntax"
)

// Nodes whose direct '=' child is a plain assignment or an initializer.
// Compound operators and comparisons are different token kinds and never
// appear as a '=' token, so they cannot match.
var assignmentCarriers = []string{
	syntax.KindAssignmentExpression,
	syntax.KindInitDeclarator,
	syntax.KindFieldDeclaration,
	"optional_parameter_declaration",
	"enumerator",
	"initializer_pair",
}

type DiagnosticsSpaceAroundAssignment struct{}

func (DiagnosticsSpaceAroundAssignment) Name() string {
	return "space-around-assignment"
}

func (DiagnosticsSpaceAroundAssignment) Description() string {
	return "Require a space on both sides of '=' in assignments and initializers"
}

func (DiagnosticsSpaceAroundAssignment) Analyze(ctx context.Context, fctx *FileContext) (diags []Diagnostic, err error) {
	tree := fctx.Tree
	src := tree.Source()

	for _, id := range tree.Query(tree.Root(), assignmentCarriers...) {
		op := tree.Token(id, "=")
		if op == syntax.None {
			continue
		}
		tok := tree.Node(op)
		if tok.Missing || tok.EndByte-tok.StartByte != 1 {
			continue
		}
		start, end := tok.StartByte, tok.EndByte

		if start > 0 && !isLineBreak(src[start-1]) && !isBlank(src[start-1]) {
			diags = append(diags, newDiagnostic(fctx, start-1, start+1,
				"Missing space before '='", insertSpace(start)))
		}
		if int(end) < len(src) && !isLineBreak(src[end]) && !isBlank(src[end]) {
			diags = append(diags, newDiagnostic(fctx, end-1, end+1,
				"Missing space after '='", insertSpace(end)))
		}
	}

	// A carrier can contain another carrier ahead of its own '=', as in
	// a[i=0] = 1, so pre-order alone does not sort by operator position.
	sort.SliceStable(diags, func(i, j int) bool {
		return diags[i].Span.StartByte < diags[j].Span.StartByte
	})
	return diags, nil
}
