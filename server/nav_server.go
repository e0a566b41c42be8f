package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"
	"sync"

	"github.com/sourcegraph/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/lexcodex/treejumper/framework/ast"
)

// JSON-RPC error codes outside the reserved range.
const (
	CodeDocumentUnavailable int64 = -32001
	CodeServerShutDown      int64 = -32002
)

// Custom navigation methods.
const (
	MethodContaining = "treejumper/containing"
	MethodInnermost  = "treejumper/innermost"
	MethodNext       = "treejumper/next"
	MethodPrevious   = "treejumper/previous"
	MethodCurrent    = "treejumper/current"
	MethodSeek       = "treejumper/seek"
)

// NavServer answers navigation requests for documents held open by an
// editor. Each buffer owns one navigator, rebuilt on every change.
type NavServer struct {
	manager   *ast.IndexManager
	logger    *log.Logger
	mu        sync.RWMutex
	documents map[string]*Document
	shutdown  bool
	exitOnce  sync.Once
	exit      chan struct{}
}

// Document tracks an open buffer. nav is nil while the latest text fails
// to parse; err then holds the reason.
type Document struct {
	URI        string
	LanguageID string
	Language   ast.Language
	Text       string
	nav        *ast.Navigator
	err        error
}

// InitializeResult partial struct.
type InitializeResult struct {
	Capabilities map[string]interface{} `json:"capabilities"`
	ServerInfo   map[string]string      `json:"serverInfo"`
}

// DocumentParams identifies a buffer without a position.
type DocumentParams struct {
	TextDocument protocol.TextDocumentIdentifier `json:"textDocument"`
}

// NewNavServer builds a server instance.
func NewNavServer(manager *ast.IndexManager, logger *log.Logger) *NavServer {
	if logger == nil {
		logger = log.Default()
	}
	if manager == nil {
		manager = ast.NewIndexManager(nil, ast.IndexConfig{Parser: ast.DefaultParserOptions()}, logger)
	}
	return &NavServer{
		manager:   manager,
		logger:    logger,
		documents: make(map[string]*Document),
		exit:      make(chan struct{}),
	}
}

// Serve speaks JSON-RPC over rwc until the client sends exit, the stream
// closes or ctx is canceled.
func (s *NavServer) Serve(ctx context.Context, rwc io.ReadWriteCloser) error {
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(ctx, stream, jsonrpc2.HandlerWithError(s.handle))
	defer conn.Close()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-conn.DisconnectNotify():
		return nil
	case <-s.exit:
		return nil
	}
}

// Stdio joins stdin and stdout into the stream Serve expects.
func Stdio(in io.ReadCloser, out io.WriteCloser) io.ReadWriteCloser {
	return &stdioReadWriteCloser{reader: in, writer: out}
}

type stdioReadWriteCloser struct {
	reader io.ReadCloser
	writer io.WriteCloser
}

func (s *stdioReadWriteCloser) Read(p []byte) (int, error)  { return s.reader.Read(p) }
func (s *stdioReadWriteCloser) Write(p []byte) (int, error) { return s.writer.Write(p) }

func (s *stdioReadWriteCloser) Close() error {
	errIn := s.reader.Close()
	errOut := s.writer.Close()
	return errors.Join(errIn, errOut)
}

func (s *NavServer) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	switch req.Method {
	case "initialize":
		return s.initialize(req)
	case "initialized":
		return nil, nil
	case "shutdown":
		s.mu.Lock()
		s.shutdown = true
		s.mu.Unlock()
		return nil, nil
	case "exit":
		s.exitOnce.Do(func() { close(s.exit) })
		return nil, nil
	}

	s.mu.RLock()
	down := s.shutdown
	s.mu.RUnlock()
	if down {
		return nil, &jsonrpc2.Error{Code: CodeServerShutDown, Message: "server is shut down"}
	}

	switch req.Method {
	case "textDocument/didOpen":
		var params protocol.DidOpenTextDocumentParams
		if err := decode(req, &params); err != nil {
			return nil, err
		}
		item := params.TextDocument
		s.update(ctx, string(item.URI), string(item.LanguageID), item.Text)
		return nil, nil
	case "textDocument/didChange":
		var params protocol.DidChangeTextDocumentParams
		if err := decode(req, &params); err != nil {
			return nil, err
		}
		if len(params.ContentChanges) == 0 {
			return nil, nil
		}
		uri := string(params.TextDocument.URI)
		s.mu.RLock()
		doc, ok := s.documents[uri]
		s.mu.RUnlock()
		if !ok {
			s.logger.Printf("change for untracked document %s", uri)
			return nil, nil
		}
		// Full sync: the last change carries the whole buffer.
		s.update(ctx, uri, doc.LanguageID, params.ContentChanges[len(params.ContentChanges)-1].Text)
		return nil, nil
	case "textDocument/didClose":
		var params protocol.DidCloseTextDocumentParams
		if err := decode(req, &params); err != nil {
			return nil, err
		}
		s.mu.Lock()
		delete(s.documents, string(params.TextDocument.URI))
		s.mu.Unlock()
		return nil, nil
	case "textDocument/documentSymbol":
		var params protocol.DocumentSymbolParams
		if err := decode(req, &params); err != nil {
			return nil, err
		}
		return s.withNavigator(string(params.TextDocument.URI), func(nav *ast.Navigator) (interface{}, error) {
			return documentSymbols(nav.Nodes()), nil
		})
	case MethodContaining, MethodInnermost, MethodSeek:
		var params protocol.TextDocumentPositionParams
		if err := decode(req, &params); err != nil {
			return nil, err
		}
		line := int(params.Position.Line)
		return s.withNavigator(string(params.TextDocument.URI), func(nav *ast.Navigator) (interface{}, error) {
			switch req.Method {
			case MethodContaining:
				found := nav.Containing(line)
				if found == nil {
					found = []ast.Node{}
				}
				return found, nil
			case MethodInnermost:
				return optional(nav.Innermost(line)), nil
			default:
				return optional(nav.Seek(line)), nil
			}
		})
	case MethodNext, MethodPrevious, MethodCurrent:
		var params DocumentParams
		if err := decode(req, &params); err != nil {
			return nil, err
		}
		return s.withNavigator(string(params.TextDocument.URI), func(nav *ast.Navigator) (interface{}, error) {
			switch req.Method {
			case MethodNext:
				return optional(nav.Next()), nil
			case MethodPrevious:
				return optional(nav.Previous()), nil
			default:
				return optional(nav.Current()), nil
			}
		})
	}
	if req.Notif {
		return nil, nil
	}
	return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: fmt.Sprintf("method not handled: %s", req.Method)}
}

func (s *NavServer) initialize(req *jsonrpc2.Request) (interface{}, error) {
	var params protocol.InitializeParams
	if err := decode(req, &params); err != nil {
		return nil, err
	}
	client := "unknown client"
	if params.ClientInfo != nil && params.ClientInfo.Name != "" {
		client = params.ClientInfo.Name
	}
	s.logger.Printf("initialize from %s", client)
	return &InitializeResult{
		Capabilities: map[string]interface{}{
			"textDocumentSync":       1,
			"documentSymbolProvider": true,
			"experimental": map[string]interface{}{
				"treejumper": []string{
					MethodContaining,
					MethodInnermost,
					MethodNext,
					MethodPrevious,
					MethodCurrent,
					MethodSeek,
				},
			},
		},
		ServerInfo: map[string]string{"name": "treejumper"},
	}, nil
}

// update reparses a buffer. A failed parse drops the old navigator so no
// request is answered from stale text.
func (s *NavServer) update(ctx context.Context, uri, languageID, text string) {
	doc := &Document{URI: uri, LanguageID: languageID, Text: text}
	lang, err := s.resolveLanguage(uri, languageID)
	if err == nil {
		doc.Language = lang
		doc.nav, err = s.manager.OpenSource(ctx, lang, uriToPath(uri), []byte(text))
	}
	if err != nil {
		doc.err = err
		s.logger.Printf("document %s unavailable: %v", uri, err)
	}
	s.mu.Lock()
	s.documents[uri] = doc
	s.mu.Unlock()
}

func (s *NavServer) resolveLanguage(uri, languageID string) (ast.Language, error) {
	if languageID != "" {
		if lang, err := ast.ResolveLanguage(languageID); err == nil {
			return lang, nil
		}
	}
	return s.manager.Detect(uriToPath(uri))
}

func (s *NavServer) withNavigator(uri string, fn func(nav *ast.Navigator) (interface{}, error)) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[uri]
	if !ok {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: fmt.Sprintf("document %s not open", uri)}
	}
	if doc.nav == nil {
		return nil, &jsonrpc2.Error{Code: CodeDocumentUnavailable, Message: doc.err.Error()}
	}
	return fn(doc.nav)
}

// Document returns a snapshot of an open buffer.
func (s *NavServer) Document(uri string) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[uri]
	if !ok {
		return Document{}, false
	}
	return *doc, true
}

// Err reports why the buffer has no navigator.
func (d Document) Err() error {
	return d.err
}

func optional(node ast.Node, ok bool) *ast.Node {
	if !ok {
		return nil
	}
	return &node
}

func decode(req *jsonrpc2.Request, v interface{}) error {
	if req.Params == nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "missing params"}
	}
	if err := json.Unmarshal(*req.Params, v); err != nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
	}
	return nil
}

func uriToPath(uri string) string {
	if !strings.HasPrefix(uri, "file://") {
		return uri
	}
	parsed, err := url.Parse(uri)
	if err != nil {
		return strings.TrimPrefix(uri, "file://")
	}
	return parsed.Path
}
