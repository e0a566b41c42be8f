package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net"
	"testing"
	"time"

	"github.com/sourcegraph/jsonrpc2"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/lexcodex/treejumper/framework/ast"
)

const greeterURI = "file:///workspace/greeter.py"

const greeterSource = `class Greeter:
    def hello(self):
        return "hi"

def main():
    Greeter().hello()
`

type harness struct {
	server *NavServer
	client *jsonrpc2.Conn
	done   chan error
}

func startServer(t *testing.T) *harness {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	serverSide, clientSide := net.Pipe()
	srv := NewNavServer(nil, log.New(io.Discard, "", 0))
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, serverSide) }()

	noop := jsonrpc2.HandlerWithError(func(context.Context, *jsonrpc2.Conn, *jsonrpc2.Request) (interface{}, error) {
		return nil, nil
	})
	client := jsonrpc2.NewConn(ctx, jsonrpc2.NewBufferedStream(clientSide, jsonrpc2.VSCodeObjectCodec{}), noop)
	t.Cleanup(func() {
		client.Close()
		cancel()
	})
	return &harness{server: srv, client: client, done: done}
}

func (h *harness) call(t *testing.T, method string, params, result interface{}) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return h.client.Call(ctx, method, params, result)
}

func (h *harness) notify(t *testing.T, method string, params interface{}) {
	t.Helper()
	require.NoError(t, h.client.Notify(context.Background(), method, params))
}

func (h *harness) open(t *testing.T, uri, languageID, text string) {
	t.Helper()
	h.notify(t, "textDocument/didOpen", protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        protocol.DocumentURI(uri),
			LanguageID: protocol.LanguageIdentifier(languageID),
			Text:       text,
		},
	})
}

func position(uri string, line uint32) protocol.TextDocumentPositionParams {
	return protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
		Position:     protocol.Position{Line: line},
	}
}

func document(uri string) DocumentParams {
	return DocumentParams{TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)}}
}

func nodeName(t *testing.T, node *ast.Node) string {
	t.Helper()
	require.NotNil(t, node)
	name, _ := node.Name()
	return name
}

func TestNavServerInitialize(t *testing.T) {
	h := startServer(t)
	var result InitializeResult
	require.NoError(t, h.call(t, "initialize", map[string]interface{}{
		"processId":    1,
		"rootUri":      "file:///workspace",
		"capabilities": map[string]interface{}{},
		"clientInfo":   map[string]string{"name": "test"},
	}, &result))
	require.Equal(t, true, result.Capabilities["documentSymbolProvider"])
	require.Equal(t, "treejumper", result.ServerInfo["name"])
}

func TestNavServerNavigation(t *testing.T) {
	h := startServer(t)
	h.open(t, greeterURI, "python", greeterSource)

	var containing []ast.Node
	require.NoError(t, h.call(t, MethodContaining, position(greeterURI, 1), &containing))
	require.Len(t, containing, 2)
	require.Equal(t, ast.Kind("class_definition"), containing[0].Kind())

	var none []ast.Node
	require.NoError(t, h.call(t, MethodContaining, position(greeterURI, 3), &none))
	require.Empty(t, none)

	var node *ast.Node
	require.NoError(t, h.call(t, MethodInnermost, position(greeterURI, 2), &node))
	require.Equal(t, "hello", nodeName(t, node))

	require.NoError(t, h.call(t, MethodCurrent, document(greeterURI), &node))
	require.Equal(t, "Greeter", nodeName(t, node))
	require.NoError(t, h.call(t, MethodNext, document(greeterURI), &node))
	require.Equal(t, "hello", nodeName(t, node))
	require.NoError(t, h.call(t, MethodNext, document(greeterURI), &node))
	require.Equal(t, "main", nodeName(t, node))

	require.NoError(t, h.call(t, MethodNext, document(greeterURI), &node))
	require.Nil(t, node)
	require.NoError(t, h.call(t, MethodCurrent, document(greeterURI), &node))
	require.Equal(t, "main", nodeName(t, node))

	require.NoError(t, h.call(t, MethodSeek, position(greeterURI, 3), &node))
	require.Equal(t, "main", nodeName(t, node))
	require.NoError(t, h.call(t, MethodPrevious, document(greeterURI), &node))
	require.Equal(t, "hello", nodeName(t, node))
}

func TestNavServerDocumentSymbols(t *testing.T) {
	h := startServer(t)
	h.open(t, "file:///workspace/lib.rs", "rust", "struct Config {}\nimpl Config {\n    fn new() {}\n}\n")

	var symbols []protocol.DocumentSymbol
	require.NoError(t, h.call(t, "textDocument/documentSymbol", protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///workspace/lib.rs"},
	}, &symbols))
	require.Len(t, symbols, 3)
	require.Equal(t, "Config", symbols[0].Name)
	require.Equal(t, protocol.SymbolKindStruct, symbols[0].Kind)
	require.Equal(t, "impl_item", symbols[1].Name)
	require.Equal(t, protocol.SymbolKindObject, symbols[1].Kind)
	require.Equal(t, protocol.SymbolKindFunction, symbols[2].Kind)
	require.Equal(t, uint32(2), symbols[2].Range.Start.Line)
}

func TestNavServerChangeRebuildsNavigator(t *testing.T) {
	h := startServer(t)
	h.open(t, greeterURI, "python", greeterSource)

	var node *ast.Node
	require.NoError(t, h.call(t, MethodNext, document(greeterURI), &node))
	require.Equal(t, "hello", nodeName(t, node))

	h.notify(t, "textDocument/didChange", map[string]interface{}{
		"textDocument":   map[string]interface{}{"uri": greeterURI, "version": 2},
		"contentChanges": []map[string]string{{"text": "def only():\n    pass\n"}},
	})
	require.NoError(t, h.call(t, MethodCurrent, document(greeterURI), &node))
	require.Equal(t, "only", nodeName(t, node))

	h.notify(t, "textDocument/didChange", map[string]interface{}{
		"textDocument":   map[string]interface{}{"uri": greeterURI, "version": 3},
		"contentChanges": []map[string]string{{"text": "def broken(:\n"}},
	})
	err := h.call(t, MethodCurrent, document(greeterURI), &node)
	var rpcErr *jsonrpc2.Error
	require.True(t, errors.As(err, &rpcErr), "got %v", err)
	require.Equal(t, CodeDocumentUnavailable, rpcErr.Code)
	require.Contains(t, rpcErr.Message, "parse")

	doc, ok := h.server.Document(greeterURI)
	require.True(t, ok)
	require.ErrorIs(t, doc.Err(), ast.ErrParse)

	h.notify(t, "textDocument/didClose", protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(greeterURI)},
	})
	err = h.call(t, MethodCurrent, document(greeterURI), &node)
	require.True(t, errors.As(err, &rpcErr))
	require.Equal(t, int64(jsonrpc2.CodeInvalidParams), rpcErr.Code)
}

func TestNavServerLanguageFallsBackToExtension(t *testing.T) {
	h := startServer(t)
	h.open(t, "file:///workspace/main.c", "plaintext", "int main(void) { return 0; }\n")
	h.open(t, "file:///workspace/notes.txt", "plaintext", "hello\n")

	var node *ast.Node
	require.NoError(t, h.call(t, MethodCurrent, document("file:///workspace/main.c"), &node))
	require.Equal(t, "main", nodeName(t, node))

	err := h.call(t, MethodCurrent, document("file:///workspace/notes.txt"), &node)
	var rpcErr *jsonrpc2.Error
	require.True(t, errors.As(err, &rpcErr))
	require.Contains(t, rpcErr.Message, "unsupported language")
}

func TestNavServerShutdownAndExit(t *testing.T) {
	h := startServer(t)
	var raw json.RawMessage
	require.NoError(t, h.call(t, "shutdown", nil, &raw))

	err := h.call(t, MethodCurrent, document(greeterURI), &raw)
	var rpcErr *jsonrpc2.Error
	require.True(t, errors.As(err, &rpcErr))
	require.Equal(t, CodeServerShutDown, rpcErr.Code)

	err = h.call(t, "unknown/method", nil, &raw)
	require.True(t, errors.As(err, &rpcErr))
	require.Equal(t, CodeServerShutDown, rpcErr.Code)

	h.notify(t, "exit", nil)
	select {
	case err := <-h.done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not exit")
	}
}

func TestNavServerUnknownMethod(t *testing.T) {
	h := startServer(t)
	var raw json.RawMessage
	err := h.call(t, "workspace/symbol", map[string]string{}, &raw)
	var rpcErr *jsonrpc2.Error
	require.True(t, errors.As(err, &rpcErr))
	require.Equal(t, int64(jsonrpc2.CodeMethodNotFound), rpcErr.Code)
}

func TestUriToPath(t *testing.T) {
	require.Equal(t, "/tmp/a b.rs", uriToPath("file:///tmp/a%20b.rs"))
	require.Equal(t, "relative.py", uriToPath("relative.py"))
}
