package ast

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
)

const (
	// DefaultMaxFileSize bounds the input accepted by TreeSitterParser.
	DefaultMaxFileSize int64 = 10 * 1024 * 1024

	treeSitterParserVersion = "tree-sitter"
)

// ParserOptions tunes node extraction.
type ParserOptions struct {
	// Nested emits constructs found inside other constructs (methods inside
	// classes). When false only the outermost constructs are emitted.
	Nested bool
	// Tolerant keeps nodes from trees with syntax errors and reports the
	// errors as warnings instead of failing.
	Tolerant    bool
	MaxFileSize int64
	// Kinds replaces the default navigable kinds per language.
	Kinds map[Language][]Kind
}

// DefaultParserOptions emits nested constructs and rejects broken trees.
func DefaultParserOptions() ParserOptions {
	return ParserOptions{Nested: true, MaxFileSize: DefaultMaxFileSize}
}

// TreeSitterParser extracts constructs using a tree-sitter grammar. Each
// Parse call creates its own tree-sitter parser, so one instance can be
// shared across goroutines.
type TreeSitterParser struct {
	grammar Grammar
	kinds   map[Kind]bool
	opts    ParserOptions
	version string
}

// NewTreeSitterParser binds a parser to lang. It panics for languages
// without a grammar, which cannot happen for values from ResolveLanguage.
func NewTreeSitterParser(lang Language, opts ParserOptions) *TreeSitterParser {
	grammar, ok := GrammarFor(lang)
	if !ok {
		panic(fmt.Sprintf("no tree-sitter grammar for %q", lang))
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	kinds := grammar.Kinds
	if override, ok := opts.Kinds[lang]; ok && len(override) > 0 {
		kinds = override
	}
	set := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return &TreeSitterParser{grammar: grammar, kinds: set, opts: opts, version: parserVersion(kinds, opts)}
}

func (p *TreeSitterParser) Language() Language { return p.grammar.Language }

// Version fingerprints the options that shape the node sequence, so cached
// sequences built with different settings are not reused.
func (p *TreeSitterParser) Version() string { return p.version }

func parserVersion(kinds []Kind, opts ParserOptions) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	sort.Strings(names)
	return fmt.Sprintf("%s;nested=%t;tolerant=%t;kinds=%s",
		treeSitterParserVersion, opts.Nested, opts.Tolerant, strings.Join(names, ","))
}

// Parse builds the node sequence for content in depth-first pre-order.
func (p *TreeSitterParser) Parse(ctx context.Context, content []byte, path string) (*ParseResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse canceled before start: %w", err)
	}
	if int64(len(content)) > p.opts.MaxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrTreeBuild, path, len(content), p.opts.MaxFileSize)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(p.grammar.TreeSitter())
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTreeBuild, path, err)
	}
	if tree == nil {
		return nil, fmt.Errorf("%w: %s: grammar returned no tree", ErrTreeBuild, path)
	}
	defer tree.Close()
	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("%w: %s: tree has no root", ErrTreeBuild, path)
	}

	result := &ParseResult{Language: p.grammar.Language, Path: path}
	if root.HasError() {
		perr := p.firstSyntaxError(root, path)
		if !p.opts.Tolerant {
			return nil, perr
		}
		result.Warnings = append(result.Warnings, *perr)
	}

	nodes, err := p.collect(root, content)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse canceled after extraction: %w", err)
	}
	result.Nodes = nodes
	result.Metadata = &FileMetadata{
		ID:            GenerateFileID(path),
		Path:          path,
		Language:      p.grammar.Language,
		LineCount:     CountLines(content),
		ContentHash:   HashContent(content),
		NodeCount:     len(nodes),
		IndexedAt:     time.Now().UTC(),
		ParserVersion: p.version,
	}
	return result, nil
}

func (p *TreeSitterParser) collect(root *sitter.Node, source []byte) ([]Node, error) {
	var nodes []Node
	var walk func(n *sitter.Node) error
	walk = func(n *sitter.Node) error {
		count := int(n.NamedChildCount())
		for i := 0; i < count; i++ {
			child := n.NamedChild(i)
			if child == nil {
				continue
			}
			emitted := false
			if p.isConstruct(child) {
				node, err := p.toNode(child, source)
				if err != nil {
					return err
				}
				nodes = append(nodes, node)
				emitted = true
			}
			if emitted && !p.opts.Nested {
				continue
			}
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root); err != nil {
		return nil, err
	}
	return nodes, nil
}

func (p *TreeSitterParser) isConstruct(n *sitter.Node) bool {
	kind := Kind(n.Type())
	if !p.kinds[kind] {
		return false
	}
	if p.grammar.bodyRequired[kind] && !hasBody(n) {
		return false
	}
	return true
}

// toNode keeps the kind and name of n. A Python definition wrapped by
// decorators takes the span of the decorated_definition so the decorator
// lines belong to it.
func (p *TreeSitterParser) toNode(n *sitter.Node, source []byte) (Node, error) {
	outer := n
	if parent := n.Parent(); parent != nil && parent.Type() == "decorated_definition" {
		outer = parent
	}
	start, end := outer.StartPoint(), outer.EndPoint()
	span := Span{
		StartRow: int(start.Row),
		StartCol: int(start.Column),
		EndRow:   int(end.Row),
		EndCol:   int(end.Column),
	}
	return NewNode(Kind(n.Type()), constructName(n, source), span)
}

// firstSyntaxError locates the earliest ERROR or MISSING node.
func (p *TreeSitterParser) firstSyntaxError(root *sitter.Node, path string) *ParseError {
	perr := &ParseError{Path: path, Language: p.grammar.Language, Message: "source contains syntax errors"}
	var find func(n *sitter.Node) bool
	find = func(n *sitter.Node) bool {
		if n.Type() == "ERROR" || n.IsMissing() {
			pt := n.StartPoint()
			perr.Line = int(pt.Row)
			perr.Column = int(pt.Column)
			if n.IsMissing() {
				perr.Message = fmt.Sprintf("missing %s", n.Type())
			} else {
				perr.Message = "unexpected syntax"
			}
			return true
		}
		count := int(n.ChildCount())
		for i := 0; i < count; i++ {
			child := n.Child(i)
			if child != nil && (child.HasError() || child.IsMissing()) && find(child) {
				return true
			}
		}
		return false
	}
	find(root)
	return perr
}
