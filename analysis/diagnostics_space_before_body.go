package analysis

import (
	"context"

	"stylesense/syntax"
)

type DiagnosticsSpaceBeforeBody struct{}

func (DiagnosticsSpaceBeforeBody) Name() string {
	return "space-before-body"
}

func (DiagnosticsSpaceBeforeBody) Description() string {
	return "Require a space between a control statement's condition and its opening brace"
}

func (DiagnosticsSpaceBeforeBody) Analyze(ctx context.Context, fctx *FileContext) (diags []Diagnostic, err error) {
	tree := fctx.Tree

	for _, id := range tree.Query(tree.Root(),
		syntax.KindIfStatement,
		syntax.KindWhileStatement,
		syntax.KindForStatement,
		syntax.KindForRangeLoop,
		syntax.KindSwitchStatement,
	) {
		gap, ok := tree.ConditionBodyGap(id)
		if !ok || gap > 0 {
			continue
		}
		cond, body, _ := tree.ConditionBody(id)
		condEnd := tree.Node(cond).EndByte
		bodyStart := tree.Node(body).StartByte

		var fix []Edit
		if condEnd == bodyStart {
			fix = append(fix, insertSpace(bodyStart))
		}
		diags = append(diags, newDiagnostic(fctx, condEnd-1, bodyStart+1,
			"Missing space between condition and body", fix...))
	}

	return diags, nil
}
