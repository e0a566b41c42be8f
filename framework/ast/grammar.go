package ast

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
)

// Grammar binds a language to its tree-sitter grammar and the node kinds
// treated as navigable constructs.
type Grammar struct {
	Language Language
	Kinds    []Kind
	// bodyRequired lists kinds that only count as constructs when they carry
	// a body, so `struct foo x;` is skipped while `struct foo { ... }` is kept.
	bodyRequired map[Kind]bool
	load         func() *sitter.Language
}

// TreeSitter returns the compiled grammar.
func (g Grammar) TreeSitter() *sitter.Language { return g.load() }

var grammars = map[Language]Grammar{
	LanguageC: {
		Language: LanguageC,
		Kinds: []Kind{
			"function_definition",
			"struct_specifier",
			"union_specifier",
			"enum_specifier",
		},
		bodyRequired: map[Kind]bool{
			"struct_specifier": true,
			"union_specifier":  true,
			"enum_specifier":   true,
		},
		load: c.GetLanguage,
	},
	LanguageCpp: {
		Language: LanguageCpp,
		Kinds: []Kind{
			"namespace_definition",
			"class_specifier",
			"struct_specifier",
			"union_specifier",
			"enum_specifier",
			"function_definition",
			"lambda_expression",
		},
		bodyRequired: map[Kind]bool{
			"class_specifier":  true,
			"struct_specifier": true,
			"union_specifier":  true,
			"enum_specifier":   true,
		},
		load: cpp.GetLanguage,
	},
	LanguagePython: {
		Language: LanguagePython,
		Kinds: []Kind{
			"class_definition",
			"function_definition",
		},
		load: python.GetLanguage,
	},
	LanguageRust: {
		Language: LanguageRust,
		Kinds: []Kind{
			"mod_item",
			"struct_item",
			"enum_item",
			"union_item",
			"trait_item",
			"impl_item",
			"function_item",
			"macro_definition",
		},
		load: rust.GetLanguage,
	},
	LanguageCSharp: {
		Language: LanguageCSharp,
		Kinds: []Kind{
			"namespace_declaration",
			"file_scoped_namespace_declaration",
			"class_declaration",
			"struct_declaration",
			"interface_declaration",
			"enum_declaration",
			"record_declaration",
			"constructor_declaration",
			"destructor_declaration",
			"method_declaration",
			"property_declaration",
			"local_function_statement",
		},
		load: csharp.GetLanguage,
	},
}

// GrammarFor returns the grammar bound to lang.
func GrammarFor(lang Language) (Grammar, bool) {
	g, ok := grammars[lang]
	return g, ok
}

var identifierKinds = map[string]bool{
	"identifier":           true,
	"field_identifier":     true,
	"type_identifier":      true,
	"qualified_identifier": true,
	"destructor_name":      true,
	"operator_name":        true,
	"namespace_identifier": true,
}

const maxDeclaratorDepth = 8

// anonymousKinds never carry a name even when a declarator is present.
var anonymousKinds = map[string]bool{
	"lambda_expression": true,
}

// constructName finds the identifier of a construct. C and C++ bury function
// names in declarator chains; everything else exposes a "name" field.
func constructName(node *sitter.Node, source []byte) string {
	if anonymousKinds[node.Type()] {
		return ""
	}
	if name := node.ChildByFieldName("name"); name != nil {
		return name.Content(source)
	}
	if decl := node.ChildByFieldName("declarator"); decl != nil {
		return declaratorName(decl, source)
	}
	return ""
}

func declaratorName(node *sitter.Node, source []byte) string {
	for depth := 0; node != nil && depth < maxDeclaratorDepth; depth++ {
		if identifierKinds[node.Type()] {
			return node.Content(source)
		}
		next := node.ChildByFieldName("declarator")
		if next == nil && node.NamedChildCount() > 0 {
			next = node.NamedChild(0)
		}
		node = next
	}
	return ""
}

func hasBody(node *sitter.Node) bool {
	return node.ChildByFieldName("body") != nil
}
