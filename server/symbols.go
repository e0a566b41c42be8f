package server

import (
	"strings"

	"go.lsp.dev/protocol"

	"github.com/lexcodex/treejumper/framework/ast"
)

// symbolKinds maps fragments of grammar node kinds to LSP symbol kinds.
// The first matching fragment wins.
var symbolKinds = []struct {
	fragment string
	kind     protocol.SymbolKind
}{
	{"namespace", protocol.SymbolKindNamespace},
	{"mod_item", protocol.SymbolKindModule},
	{"constructor", protocol.SymbolKindConstructor},
	{"destructor", protocol.SymbolKindMethod},
	{"method", protocol.SymbolKindMethod},
	{"property", protocol.SymbolKindProperty},
	{"interface", protocol.SymbolKindInterface},
	{"trait", protocol.SymbolKindInterface},
	{"enum", protocol.SymbolKindEnum},
	{"struct", protocol.SymbolKindStruct},
	{"union", protocol.SymbolKindStruct},
	{"class", protocol.SymbolKindClass},
	{"record", protocol.SymbolKindClass},
	{"impl", protocol.SymbolKindObject},
}

// SymbolKind classifies a node kind for editors.
func SymbolKind(kind ast.Kind) protocol.SymbolKind {
	k := string(kind)
	for _, entry := range symbolKinds {
		if strings.Contains(k, entry.fragment) {
			return entry.kind
		}
	}
	return protocol.SymbolKindFunction
}

// documentSymbols renders the node sequence as a flat outline. Anonymous
// nodes are labelled with their kind because editors require a name.
func documentSymbols(nodes []ast.Node) []protocol.DocumentSymbol {
	out := make([]protocol.DocumentSymbol, 0, len(nodes))
	for _, node := range nodes {
		name, named := node.Name()
		if !named || name == "" {
			name = string(node.Kind())
		}
		rng := toRange(node.Span())
		out = append(out, protocol.DocumentSymbol{
			Name:           name,
			Detail:         string(node.Kind()),
			Kind:           SymbolKind(node.Kind()),
			Range:          rng,
			SelectionRange: rng,
		})
	}
	return out
}

func toRange(span ast.Span) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: uint32(span.StartRow), Character: uint32(span.StartCol)},
		End:   protocol.Position{Line: uint32(span.EndRow), Character: uint32(span.EndCol)},
	}
}
