package analysis

import (
	"strings"

	"stylesense/syntax"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Suppression comments look like
//
//	// stylesense: disable-next-line space-around-assignment, space-after-keyword
//	/* stylesense: disable */
//	x=1; // stylesense: disable-line -- generated code
//
// A directive without rule names applies to every rule.
type Directive struct {
	Scope  string   `"stylesense" ":" @("disable-next-line" | "disable-line" | "disable")`
	Rules  []string `( @Ident ( "," @Ident )* )?`
	Reason string   `@Reason?`
}

const (
	scopeFile     = "disable"
	scopeLine     = "disable-line"
	scopeNextLine = "disable-next-line"
)

var directiveLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Reason", Pattern: `--.*`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_-]*`},
	{Name: "Punct", Pattern: `[:,]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var directiveParser = participle.MustBuild[Directive](
	participle.Lexer(directiveLexer),
	participle.Elide("Whitespace"),
)

// ParseDirective parses the body of a comment, delimiters included. ok is
// false for ordinary comments and for malformed directives.
func ParseDirective(comment string) (d *Directive, ok bool) {
	text := commentBody(comment)
	if !strings.HasPrefix(text, "stylesense") {
		return nil, false
	}
	d, err := directiveParser.ParseString("", text)
	if err != nil {
		return nil, false
	}
	return d, true
}

func commentBody(comment string) string {
	switch {
	case strings.HasPrefix(comment, "//"):
		comment = strings.TrimPrefix(comment, "//")
	case strings.HasPrefix(comment, "/*"):
		comment = strings.TrimSuffix(strings.TrimPrefix(comment, "/*"), "*/")
	}
	return strings.TrimSpace(comment)
}

// suppressions is keyed by rule name; the empty name means every rule.
type suppressions struct {
	file  map[string]bool
	lines map[int]map[string]bool
}

func collectSuppressions(tree *syntax.Tree) *suppressions {
	s := &suppressions{file: map[string]bool{}, lines: map[int]map[string]bool{}}
	lines := tree.Lines()

	for _, id := range tree.Comments(tree.Root()) {
		d, ok := ParseDirective(string(tree.Content(id)))
		if !ok {
			continue
		}
		n := tree.Node(id)
		rules := d.Rules
		if len(rules) == 0 {
			rules = []string{""}
		}

		switch d.Scope {
		case scopeFile:
			for _, r := range rules {
				s.file[r] = true
			}
		case scopeLine:
			s.add(lines.Line(n.StartByte), rules)
		case scopeNextLine:
			s.add(lines.Line(n.EndByte)+1, rules)
		}
	}
	return s
}

func (s *suppressions) add(line int, rules []string) {
	m, ok := s.lines[line]
	if !ok {
		m = map[string]bool{}
		s.lines[line] = m
	}
	for _, r := range rules {
		m[r] = true
	}
}

func (s *suppressions) suppressed(rule string, line int) bool {
	if s.file[""] || s.file[rule] {
		return true
	}
	m := s.lines[line]
	return m[""] || m[rule]
}

func (s *suppressions) empty() bool {
	return len(s.file) == 0 && len(s.lines) == 0
}
