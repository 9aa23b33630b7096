package analysis

import (
	"context"

	"github.com/sourcegraph/go-lsp"
)

// SourceTag identifies this engine on every published diagnostic.
const SourceTag = "style-engine"

// Rule is one independently pluggable style check. Analyze must not modify
// fctx; it may return an error or even panic, and the engine will skip only
// this rule.
type Rule interface {
	Name() string
	Description() string
	Analyze(ctx context.Context, fctx *FileContext) (diags []Diagnostic, err error)
}

type Diagnostic struct {
	lsp.Diagnostic

	Rule string
	Span PointRange
	Fix  []Edit
}

// Edit replaces the bytes [Start, End) with With. Start == End inserts.
type Edit struct {
	Start uint32
	End   uint32
	With  string
}

func newDiagnostic(fctx *FileContext, start, end uint32, message string, fix ...Edit) Diagnostic {
	span := FromBytes(fctx.Tree.Lines(), start, end)
	return Diagnostic{
		Diagnostic: lsp.Diagnostic{
			Range:    span.ToLSP(),
			Severity: lsp.DiagnosticSeverity(lsp.Warning),
			Source:   SourceTag,
			Message:  message,
		},
		Span: span,
		Fix:  fix,
	}
}

func insertSpace(at uint32) Edit {
	return Edit{Start: at, End: at, With: " "}
}

func isBlank(b byte) bool {
	return b == ' ' || b == '\t'
}

func isLineBreak(b byte) bool {
	return b == '\n' || b == '\r'
}
