// Package analysis evaluates style rules over C and C++ syntax trees.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stylesense/config"
	"stylesense/grammar"
	"stylesense/logging"
	"stylesense/metrics"
	"stylesense/syntax"

	"github.com/sourcegraph/go-lsp"
)

// FileContext is everything a rule may look at for one analysis pass.
type FileContext struct {
	URI      string
	Language grammar.SupportedLanguage
	Body     []byte
	Tree     *syntax.Tree
}

// RuleError records a rule that failed; the engine skips it and keeps going.
type RuleError struct {
	Rule  string
	Cause error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %s failed: %v", e.Rule, e.Cause)
}

func (e *RuleError) Unwrap() error {
	return e.Cause
}

type Result struct {
	Diagnostics []Diagnostic
	RuleErrors  map[string]error
	// Incomplete is set when the parser had to recover from malformed input.
	Incomplete bool
}

type Engine struct {
	Registry *grammar.Registry
	Rules    []Rule
	Config   *config.Config
	Metrics  *metrics.Metrics
}

func New(cfg *config.Config) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Engine{
		Registry: grammar.Default(),
		Rules:    DefaultRules,
		Config:   cfg,
	}
}

// Parse builds the file context for one revision of a document.
func (e *Engine) Parse(ctx context.Context, uri string, lang grammar.SupportedLanguage, body []byte) (*FileContext, error) {
	capability, err := e.Registry.Capability(lang)
	if err != nil {
		return nil, err
	}
	tree, err := syntax.Build(ctx, body, capability)
	if err != nil {
		return nil, fmt.Errorf("failed to build syntax tree for %s: %w", uri, err)
	}
	return &FileContext{
		URI:      uri,
		Language: lang,
		Body:     tree.Source(),
		Tree:     tree,
	}, nil
}

// Run evaluates every enabled rule against fctx.
func (e *Engine) Run(ctx context.Context, fctx *FileContext) *Result {
	logger := logging.FromContext(ctx)
	result := &Result{
		RuleErrors: map[string]error{},
		Incomplete: fctx.Tree.HasErrors(),
	}
	sup := collectSuppressions(fctx.Tree)

	for _, rule := range e.Rules {
		name := rule.Name()
		if !e.Config.RuleEnabled(name) {
			continue
		}

		diags, err := runRule(ctx, rule, fctx)
		if err != nil {
			result.RuleErrors[name] = err
			e.Metrics.IncRuleFailure(name)
			logger.Error("rule evaluation failed",
				logging.FieldRule, name, logging.FieldURI, fctx.URI, logging.FieldError, err)
			continue
		}

		severity := toLSPSeverity(e.Config.RuleSeverity(name))
		for _, d := range diags {
			if !sup.empty() && sup.suppressed(name, d.Span.StartPoint.Line) {
				continue
			}
			d.Rule = name
			d.Severity = severity
			d.Source = SourceTag
			result.Diagnostics = append(result.Diagnostics, d)
		}
	}

	return result
}

func runRule(ctx context.Context, rule Rule, fctx *FileContext) (diags []Diagnostic, err error) {
	defer func() {
		if r := recover(); r != nil {
			diags = nil
			err = &RuleError{Rule: rule.Name(), Cause: fmt.Errorf("panic: %v", r)}
		}
	}()

	diags, err = rule.Analyze(ctx, fctx)
	if err != nil {
		var re *RuleError
		if !errors.As(err, &re) {
			err = &RuleError{Rule: rule.Name(), Cause: err}
		}
		return nil, err
	}
	return diags, nil
}

// Analyze parses body and runs the rules over it.
func (e *Engine) Analyze(ctx context.Context, uri string, lang grammar.SupportedLanguage, body []byte) (*Result, error) {
	started := time.Now()
	fctx, err := e.Parse(ctx, uri, lang, body)
	if err != nil {
		return nil, err
	}
	result := e.Run(ctx, fctx)
	e.Metrics.ObserveAnalysis(time.Since(started))
	return result, nil
}

// Diagnose is Analyze reduced to the protocol diagnostics.
func (e *Engine) Diagnose(ctx context.Context, uri string, lang grammar.SupportedLanguage, body []byte) ([]lsp.Diagnostic, error) {
	result, err := e.Analyze(ctx, uri, lang, body)
	if err != nil {
		return nil, err
	}
	out := make([]lsp.Diagnostic, 0, len(result.Diagnostics))
	for _, d := range result.Diagnostics {
		out = append(out, d.Diagnostic)
	}
	return out, nil
}

func toLSPSeverity(s config.Severity) lsp.DiagnosticSeverity {
	switch s {
	case config.SeverityError:
		return lsp.DiagnosticSeverity(lsp.Error)
	case config.SeverityInformation:
		return lsp.DiagnosticSeverity(lsp.Information)
	case config.SeverityHint:
		return lsp.DiagnosticSeverity(lsp.Hint)
	default:
		return lsp.DiagnosticSeverity(lsp.Warning)
	}
}
