package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/lexcodex/treejumper/framework/ast"
)

// newManager builds an IndexManager from the workspace config. The SQLite
// index is only opened when withStore is set; callers close it through the
// returned func.
func newManager(withStore bool) (*ast.IndexManager, func(), error) {
	config := resolvedCfg.IndexConfig(flagWorkspace)
	logger := newLogger("index")
	if !withStore {
		return ast.NewIndexManager(nil, config, logger), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(resolvedCfg.IndexPath), 0o755); err != nil {
		return nil, nil, err
	}
	store, err := ast.NewSQLiteStore(resolvedCfg.IndexPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open index %s: %w", resolvedCfg.IndexPath, err)
	}
	return ast.NewIndexManager(store, config, logger), func() { _ = store.Close() }, nil
}

// languageFor picks the language of path: --lang, then the extension, then
// the configured default.
func languageFor(manager *ast.IndexManager, path string) (ast.Language, error) {
	if flagLang != "" {
		return ast.ResolveLanguage(flagLang)
	}
	lang, err := manager.Detect(path)
	if err == nil {
		return lang, nil
	}
	if resolvedCfg.DefaultLanguage != "" && errors.Is(err, ast.ErrUnsupportedLanguage) {
		return resolvedCfg.DefaultLanguage, nil
	}
	return "", err
}

type openedFile struct {
	Path     string
	Language ast.Language
	Source   []byte
	Nav      *ast.Navigator
}

// openFile builds a navigator for path through the workspace index, so an
// unchanged file reuses the stored sequence instead of being reparsed.
func openFile(ctx context.Context, path string) (*openedFile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	manager, closeFn, err := newManager(true)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	lang, err := languageFor(manager, abs)
	if err != nil {
		return nil, err
	}
	source, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	nav, err := manager.OpenAs(ctx, lang, abs)
	if err != nil {
		return nil, err
	}
	return &openedFile{Path: abs, Language: lang, Source: source, Nav: nav}, nil
}

// parseLine converts a 1-based line argument into a 0-based row.
func parseLine(raw string) (int, error) {
	line, err := strconv.Atoi(raw)
	if err != nil || line < 1 {
		return 0, fmt.Errorf("invalid line %q: want a number >= 1", raw)
	}
	return line - 1, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printNodes lists nodes with 1-based line numbers, or as JSON with the
// 0-based spans the node model uses.
func printNodes(w io.Writer, nodes []ast.Node) error {
	if flagJSON {
		if nodes == nil {
			nodes = []ast.Node{}
		}
		return writeJSON(w, nodes)
	}
	for _, node := range nodes {
		printNode(w, node)
	}
	return nil
}

func printNode(w io.Writer, node ast.Node) {
	start, end := node.LineSpan()
	fmt.Fprintf(w, "%5d-%-5d %s\n", start+1, end+1, node.Label())
}

// printOptional prints one node or reports that none was found.
func printOptional(w io.Writer, node ast.Node, ok bool, absent string) error {
	if flagJSON {
		if !ok {
			return writeJSON(w, nil)
		}
		return writeJSON(w, node)
	}
	if !ok {
		fmt.Fprintln(w, absent)
		return nil
	}
	printNode(w, node)
	return nil
}
