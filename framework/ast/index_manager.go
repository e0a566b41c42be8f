package ast

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
)

// IndexConfig configures the IndexManager.
type IndexConfig struct {
	WorkspacePath   string
	ParallelWorkers int
	IgnorePatterns  []string
	Parser          ParserOptions
	// Extensions remaps file extensions onto languages.
	Extensions map[string]Language
}

// IndexManager turns files into navigators, caching parsed sequences in an
// optional IndexStore.
type IndexManager struct {
	store            IndexStore
	parserRegistry   *ParserRegistry
	languageDetector *LanguageDetector
	mu               sync.Mutex
	indexing         map[string]bool
	config           IndexConfig
	ignore           *ignoreMatcher
	logger           *log.Logger
}

// NewIndexManager builds a manager with tree-sitter parsers for every
// supported language. store may be nil to disable caching.
func NewIndexManager(store IndexStore, config IndexConfig, logger *log.Logger) *IndexManager {
	if logger == nil {
		logger = log.Default()
	}
	detector := NewLanguageDetector()
	for ext, lang := range config.Extensions {
		detector.Override(ext, lang)
	}
	return &IndexManager{
		store:            store,
		parserRegistry:   NewDefaultRegistry(config.Parser),
		languageDetector: detector,
		indexing:         make(map[string]bool),
		config:           config,
		ignore:           newIgnoreMatcher(config.IgnorePatterns),
		logger:           logger,
	}
}

// RegisterParser replaces the parser used for its language.
func (im *IndexManager) RegisterParser(parser Parser) {
	if parser == nil {
		return
	}
	im.mu.Lock()
	defer im.mu.Unlock()
	im.parserRegistry.Register(parser)
}

// Detect resolves the language of path using configured overrides.
func (im *IndexManager) Detect(path string) (Language, error) {
	return im.languageDetector.Detect(path)
}

// Open returns a navigator over the constructs of the file at path. The
// stored sequence is reused when the file content is unchanged.
func (im *IndexManager) Open(ctx context.Context, path string) (*Navigator, error) {
	lang, err := im.languageDetector.Detect(path)
	if err != nil {
		return nil, err
	}
	return im.OpenAs(ctx, lang, path)
}

// OpenAs is Open with an explicit language.
func (im *IndexManager) OpenAs(ctx context.Context, lang Language, path string) (*Navigator, error) {
	result, err := im.indexFile(ctx, lang, path)
	if err != nil {
		return nil, err
	}
	return result.Navigator(), nil
}

// OpenSource parses an in-memory buffer. Nothing is persisted.
func (im *IndexManager) OpenSource(ctx context.Context, lang Language, path string, content []byte) (*Navigator, error) {
	result, err := im.ParseSource(ctx, lang, path, content)
	if err != nil {
		return nil, err
	}
	return result.Navigator(), nil
}

// ParseSource parses an in-memory buffer and returns the raw result.
func (im *IndexManager) ParseSource(ctx context.Context, lang Language, path string, content []byte) (*ParseResult, error) {
	im.mu.Lock()
	registry := im.parserRegistry
	im.mu.Unlock()
	return registry.Parse(ctx, lang, content, path)
}

func (im *IndexManager) parserVersion(lang Language) string {
	im.mu.Lock()
	defer im.mu.Unlock()
	return im.parserRegistry.Version(lang)
}

// IndexFile parses and stores the sequence for a file path.
func (im *IndexManager) IndexFile(ctx context.Context, path string) error {
	lang, err := im.languageDetector.Detect(path)
	if err != nil {
		return err
	}
	_, err = im.indexFile(ctx, lang, path)
	return err
}

func (im *IndexManager) indexFile(ctx context.Context, lang Language, path string) (*ParseResult, error) {
	im.mu.Lock()
	if im.indexing[path] {
		im.mu.Unlock()
		return nil, fmt.Errorf("index already running for %s", path)
	}
	im.indexing[path] = true
	im.mu.Unlock()
	defer func() {
		im.mu.Lock()
		delete(im.indexing, path)
		im.mu.Unlock()
	}()

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	contentHash := HashContent(content)

	if im.store != nil {
		existing, err := im.store.GetFileByPath(path)
		if err != nil {
			return nil, fmt.Errorf("lookup %s: %w", path, err)
		}
		if existing != nil && existing.ContentHash == contentHash &&
			existing.Language == lang && existing.ParserVersion == im.parserVersion(lang) {
			nodes, err := im.store.GetNodesByFile(existing.ID)
			if err == nil {
				return &ParseResult{Language: lang, Path: path, Nodes: nodes, Metadata: existing}, nil
			}
			im.logger.Printf("cached nodes for %s unreadable, reparsing: %v", path, err)
		}
	}

	result, err := im.ParseSource(ctx, lang, path, content)
	if err != nil {
		return nil, err
	}
	for _, w := range result.Warnings {
		im.logger.Printf("tolerated syntax error: %v", &w)
	}
	if err := im.persist(result, contentHash); err != nil {
		return nil, fmt.Errorf("persist %s: %w", path, err)
	}
	return result, nil
}

func (im *IndexManager) persist(result *ParseResult, contentHash string) error {
	if im.store == nil {
		return nil
	}
	if result.Metadata == nil {
		return fmt.Errorf("parse result missing metadata")
	}
	if result.Metadata.ContentHash == "" {
		result.Metadata.ContentHash = contentHash
	}
	tx, err := im.store.BeginTransaction()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := tx.SaveFile(result.Metadata); err != nil {
		return err
	}
	if err := tx.SaveNodes(result.Metadata.ID, result.Nodes); err != nil {
		return err
	}
	return tx.Commit()
}

// IndexReport summarizes a workspace run.
type IndexReport struct {
	Files   int
	Indexed int
	Failed  int
	// Pruned counts stored files that no longer exist in the workspace.
	Pruned int
}

// IndexWorkspace walks the workspace and indexes every supported file.
// Per-file failures are logged and counted, not returned.
func (im *IndexManager) IndexWorkspace(ctx context.Context) (IndexReport, error) {
	root := im.config.WorkspacePath
	if root == "" {
		root = "."
	}
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if path != root && im.shouldIgnore(root, path) {
				return filepath.SkipDir
			}
			return nil
		}
		if im.shouldIgnore(root, path) || !im.languageDetector.Supports(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return IndexReport{}, err
	}
	report := IndexReport{Files: len(files)}
	pruned, err := im.prune(root, files)
	if err != nil {
		return IndexReport{}, err
	}
	report.Pruned = pruned
	var failed int64
	if im.config.ParallelWorkers > 1 {
		failed = im.indexFilesParallel(ctx, files)
	} else {
		failed = im.indexFilesSequential(ctx, files)
	}
	report.Failed = int(failed)
	report.Indexed = report.Files - report.Failed
	return report, ctx.Err()
}

// prune drops stored files under root that the walk did not find.
func (im *IndexManager) prune(root string, files []string) (int, error) {
	if im.store == nil {
		return 0, nil
	}
	stored, err := im.store.ListFiles("")
	if err != nil {
		return 0, fmt.Errorf("list indexed files: %w", err)
	}
	seen := make(map[string]bool, len(files))
	for _, f := range files {
		seen[f] = true
	}
	pruned := 0
	for _, meta := range stored {
		rel, err := filepath.Rel(root, meta.Path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		if seen[meta.Path] {
			continue
		}
		if err := im.store.DeleteFile(meta.ID); err != nil {
			return pruned, fmt.Errorf("prune %s: %w", meta.Path, err)
		}
		pruned++
	}
	return pruned, nil
}

func (im *IndexManager) shouldIgnore(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	return im.ignore.Match(rel)
}

func (im *IndexManager) indexFilesSequential(ctx context.Context, files []string) int64 {
	var failed int64
	for _, file := range files {
		if ctx.Err() != nil {
			break
		}
		if err := im.IndexFile(ctx, file); err != nil {
			im.logger.Printf("index warning: %v", err)
			failed++
		}
	}
	return failed
}

func (im *IndexManager) indexFilesParallel(ctx context.Context, files []string) int64 {
	workerCount := im.config.ParallelWorkers
	var failed atomic.Int64
	var wg sync.WaitGroup
	fileCh := make(chan string)
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range fileCh {
				if err := im.IndexFile(ctx, file); err != nil {
					im.logger.Printf("index warning: %s: %v", file, err)
					failed.Add(1)
				}
			}
		}()
	}
	for _, file := range files {
		if ctx.Err() != nil {
			break
		}
		fileCh <- file
	}
	close(fileCh)
	wg.Wait()
	return failed.Load()
}

// Search routes to the underlying store.
func (im *IndexManager) Search(query NodeQuery) ([]IndexedNode, error) {
	if im.store == nil {
		return nil, fmt.Errorf("index store not configured")
	}
	return im.store.SearchNodes(query)
}

// Stats proxies store.GetStats for callers.
func (im *IndexManager) Stats() (*IndexStats, error) {
	if im.store == nil {
		return nil, fmt.Errorf("index store not configured")
	}
	return im.store.GetStats()
}

// Store exposes the underlying IndexStore for advanced queries.
func (im *IndexManager) Store() IndexStore {
	return im.store
}
