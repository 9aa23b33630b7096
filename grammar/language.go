// Package grammar resolves language identifiers to tree-sitter grammars.
//
// Grammars are process-wide: each one is loaded at most once, the first time
// it is asked for, and a failed load is remembered for the life of the
// process.
package grammar

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrGrammarLoad         = errors.New("failed to load grammar")
)

// SupportedLanguage is a closed set. Adding a variant means adding a case to
// every switch in this package and a loader to DefaultLoaders.
type SupportedLanguage int

const (
	C SupportedLanguage = iota
	CPP

	numLanguages
)

func (l SupportedLanguage) String() string {
	switch l {
	case C:
		return "c"
	case CPP:
		return "cpp"
	default:
		panic(fmt.Sprintf("grammar: invalid SupportedLanguage %d", int(l)))
	}
}

// Languages lists every supported language in declaration order.
func Languages() []SupportedLanguage {
	return []SupportedLanguage{C, CPP}
}

// ParseLanguageID maps an editor language identifier to a SupportedLanguage.
func ParseLanguageID(id string) (SupportedLanguage, error) {
	switch strings.ToLower(strings.TrimSpace(id)) {
	case "c":
		return C, nil
	case "cpp", "c++", "cxx":
		return CPP, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, id)
	}
}

// ForFile picks a language from a file extension.
func ForFile(path string) (SupportedLanguage, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".c", ".h":
		return C, nil
	case ".cc", ".cpp", ".cxx", ".c++", ".hpp", ".hh", ".hxx", ".h++":
		return CPP, nil
	default:
		return 0, fmt.Errorf("%w: file %s", ErrUnsupportedLanguage, path)
	}
}
