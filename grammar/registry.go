package grammar

import (
	"context"
	"fmt"
	"sync"

	"stylesense/logging"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
)

// Loader produces the tree-sitter grammar for one language.
type Loader func() *sitter.Language

func DefaultLoaders() map[SupportedLanguage]Loader {
	return map[SupportedLanguage]Loader{
		C:   c.GetLanguage,
		CPP: cpp.GetLanguage,
	}
}

// Capability is an activated grammar. The zero value is not usable.
type Capability struct {
	Language SupportedLanguage
	lang     *sitter.Language
}

func (c Capability) TreeSitterLang() *sitter.Language {
	return c.lang
}

// NewParser returns a parser bound to the grammar. Parsers are not safe for
// concurrent use, so every analysis pass gets its own.
func (c Capability) NewParser() *sitter.Parser {
	parser := sitter.NewParser()
	parser.SetLanguage(c.lang)
	return parser
}

type entry struct {
	once sync.Once
	lang *sitter.Language
	err  error
}

type Registry struct {
	loaders map[SupportedLanguage]Loader
	entries [numLanguages]entry
}

func NewRegistry(loaders map[SupportedLanguage]Loader) *Registry {
	return &Registry{loaders: loaders}
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default is the process-wide registry backed by the bundled grammars.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry(DefaultLoaders())
	})
	return defaultRegistry
}

// Resolve maps a language identifier to a capability using the default
// registry.
func Resolve(languageID string) (Capability, error) {
	return Default().Resolve(languageID)
}

func (r *Registry) Resolve(languageID string) (Capability, error) {
	lang, err := ParseLanguageID(languageID)
	if err != nil {
		return Capability{}, err
	}
	return r.Capability(lang)
}

// Capability activates the grammar for lang, loading it on first use.
func (r *Registry) Capability(lang SupportedLanguage) (Capability, error) {
	if lang < 0 || lang >= numLanguages {
		return Capability{}, fmt.Errorf("%w: %d", ErrUnsupportedLanguage, int(lang))
	}

	e := &r.entries[lang]
	e.once.Do(func() {
		e.lang, e.err = load(r.loaders[lang], lang)
		if e.err != nil {
			logging.FromContext(context.Background()).Error("grammar unavailable",
				logging.FieldLanguage, lang.String(), logging.FieldError, e.err)
		}
	})
	if e.err != nil {
		return Capability{}, e.err
	}
	return Capability{Language: lang, lang: e.lang}, nil
}

func load(loader Loader, lang SupportedLanguage) (l *sitter.Language, err error) {
	if loader == nil {
		return nil, fmt.Errorf("%w: no grammar registered for %s", ErrGrammarLoad, lang)
	}
	defer func() {
		if r := recover(); r != nil {
			l, err = nil, fmt.Errorf("%w: %s: %v", ErrGrammarLoad, lang, r)
		}
	}()
	l = loader()
	if l == nil {
		return nil, fmt.Errorf("%w: %s grammar is nil", ErrGrammarLoad, lang)
	}
	return l, nil
}
