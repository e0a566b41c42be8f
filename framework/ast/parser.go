package ast

import (
	"context"
	"fmt"
	"sort"
)

// Parser converts file contents into an ordered node sequence.
type Parser interface {
	Parse(ctx context.Context, content []byte, path string) (*ParseResult, error)
	Language() Language
}

// Versioned is implemented by parsers whose output depends on settings.
type Versioned interface {
	Version() string
}

// ParseResult captures nodes and metadata for one file.
type ParseResult struct {
	Language Language
	Path     string
	Nodes    []Node
	Metadata *FileMetadata
	// Warnings holds syntax errors tolerated by a lenient parser.
	Warnings []ParseError
}

// Navigator builds a fresh navigator over the parsed nodes.
func (r *ParseResult) Navigator() *Navigator {
	return NewNavigator(r.Nodes)
}

// ParserRegistry keeps parser implementations keyed by language.
type ParserRegistry struct {
	parsers map[Language]Parser
}

// NewParserRegistry constructs a registry.
func NewParserRegistry() *ParserRegistry {
	return &ParserRegistry{parsers: make(map[Language]Parser)}
}

// Register adds a parser keyed by its Language.
func (pr *ParserRegistry) Register(parser Parser) {
	if parser == nil {
		return
	}
	pr.parsers[parser.Language()] = parser
}

// GetParser retrieves a parser by language identifier.
func (pr *ParserRegistry) GetParser(language Language) (Parser, bool) {
	parser, ok := pr.parsers[language]
	return parser, ok
}

// Parse dispatches to the parser registered for language.
func (pr *ParserRegistry) Parse(ctx context.Context, language Language, content []byte, path string) (*ParseResult, error) {
	parser, ok := pr.GetParser(language)
	if !ok {
		return nil, fmt.Errorf("%w for %s", ErrNoParser, language)
	}
	return parser.Parse(ctx, content, path)
}

// Version returns the parser version for language, or "" when unversioned.
func (pr *ParserRegistry) Version(language Language) string {
	if parser, ok := pr.parsers[language]; ok {
		if v, ok := parser.(Versioned); ok {
			return v.Version()
		}
	}
	return ""
}

// SupportedLanguages returns all registered languages, sorted.
func (pr *ParserRegistry) SupportedLanguages() []Language {
	langs := make([]Language, 0, len(pr.parsers))
	for lang := range pr.parsers {
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}

// NewDefaultRegistry registers a tree-sitter parser for every supported language.
func NewDefaultRegistry(opts ParserOptions) *ParserRegistry {
	registry := NewParserRegistry()
	for _, lang := range supportedLanguages {
		registry.Register(NewTreeSitterParser(lang, opts))
	}
	return registry
}
