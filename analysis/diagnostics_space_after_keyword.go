package analysis

import (
	"context"
	"fmt"

	"stylesense/syntax"
)

var controlKeywords = map[string]string{
	syntax.KindIfStatement:     "if",
	syntax.KindWhileStatement:  "while",
	syntax.KindDoStatement:     "while",
	syntax.KindForStatement:    "for",
	syntax.KindForRangeLoop:    "for",
	syntax.KindSwitchStatement: "switch",
}

type DiagnosticsSpaceAfterKeyword struct{}

func (DiagnosticsSpaceAfterKeyword) Name() string {
	return "space-after-keyword"
}

func (DiagnosticsSpaceAfterKeyword) Description() string {
	return "Require a space between a control keyword and its opening parenthesis"
}

func (DiagnosticsSpaceAfterKeyword) Analyze(ctx context.Context, fctx *FileContext) (diags []Diagnostic, err error) {
	tree := fctx.Tree
	src := tree.Source()

	kinds := make([]string, 0, len(controlKeywords))
	for kind := range controlKeywords {
		kinds = append(kinds, kind)
	}

	for _, id := range tree.Query(tree.Root(), kinds...) {
		keyword := controlKeywords[tree.Kind(id)]
		kw := tree.Token(id, keyword)
		if kw == syntax.None {
			continue
		}
		end := tree.Node(kw).EndByte
		if int(end) >= len(src) || src[end] != '(' {
			continue
		}
		diags = append(diags, newDiagnostic(fctx, tree.Node(kw).StartByte, end+1,
			fmt.Sprintf("Missing space after '%s'", keyword), insertSpace(end)))
	}

	return diags, nil
}
