package workspacecfg

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lexcodex/treejumper/framework/ast"
	"gopkg.in/yaml.v3"
)

// WorkspaceConfig models the persisted workspace settings.
type WorkspaceConfig struct {
	Workspace       string              `yaml:"-"`
	DefaultLanguage string              `yaml:"default_language,omitempty"`
	Extensions      map[string]string   `yaml:"extensions,omitempty"`
	Kinds           map[string][]string `yaml:"kinds,omitempty"`
	Nested          *bool               `yaml:"nested,omitempty"`
	Tolerant        bool                `yaml:"tolerant"`
	MaxFileSize     int64               `yaml:"max_file_size,omitempty"`
	IgnorePatterns  []string            `yaml:"ignore_patterns,omitempty"`
	ParallelWorkers int                 `yaml:"parallel_workers,omitempty"`
	IndexPath       string              `yaml:"index_path,omitempty"`
	LogPath         string              `yaml:"log_path,omitempty"`
}

// Resolved is a WorkspaceConfig with every alias turned into a Language.
type Resolved struct {
	DefaultLanguage ast.Language
	Extensions      map[string]ast.Language
	Parser          ast.ParserOptions
	IgnorePatterns  []string
	ParallelWorkers int
	IndexPath       string
	LogPath         string
}

// ConfigDir resolves the directory storing workspace settings.
func ConfigDir(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, ".treejumper")
}

// ConfigFile returns the workspace YAML path.
func ConfigFile(workspace string) string {
	return filepath.Join(ConfigDir(workspace), "config.yaml")
}

// Default returns the settings used when no file exists. Paths are
// relative to the workspace.
func Default(workspace string) *WorkspaceConfig {
	nested := true
	return &WorkspaceConfig{
		Workspace:       workspace,
		Nested:          &nested,
		MaxFileSize:     ast.DefaultMaxFileSize,
		IgnorePatterns:  []string{".git", ".treejumper", "node_modules", "target", "build", "bin", "obj"},
		ParallelWorkers: 4,
		IndexPath:       filepath.Join(".treejumper", "index.db"),
	}
}

// Load reads the workspace configuration. A missing file yields Default.
// An explicit path overrides the workspace location.
func Load(workspace, path string) (*WorkspaceConfig, error) {
	if path == "" {
		path = ConfigFile(workspace)
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(workspace), nil
	}
	if err != nil {
		return nil, err
	}
	cfg := Default(workspace)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Workspace = workspace
	return cfg, nil
}

// Save writes the configuration back to disk.
func Save(cfg *WorkspaceConfig) error {
	if cfg == nil {
		return errors.New("workspace config missing")
	}
	if cfg.Workspace == "" {
		return errors.New("workspace path missing")
	}
	if err := os.MkdirAll(ConfigDir(cfg.Workspace), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(ConfigFile(cfg.Workspace), data, 0o644)
}

// Normalize resolves language aliases and fills defaults. Unsupported
// language names fail with the exact text found in the file.
func (w *WorkspaceConfig) Normalize() (*Resolved, error) {
	if w == nil {
		return nil, errors.New("workspace config missing")
	}
	defaults := Default(w.Workspace)
	out := &Resolved{
		Extensions:      make(map[string]ast.Language, len(w.Extensions)),
		Parser:          ast.DefaultParserOptions(),
		IgnorePatterns:  w.IgnorePatterns,
		ParallelWorkers: w.ParallelWorkers,
		IndexPath:       w.IndexPath,
		LogPath:         w.LogPath,
	}
	if w.DefaultLanguage != "" {
		lang, err := ast.ResolveLanguage(w.DefaultLanguage)
		if err != nil {
			return nil, fmt.Errorf("default_language: %w", err)
		}
		out.DefaultLanguage = lang
	}
	for _, ext := range sortedKeys(w.Extensions) {
		lang, err := ast.ResolveLanguage(w.Extensions[ext])
		if err != nil {
			return nil, fmt.Errorf("extensions[%s]: %w", ext, err)
		}
		out.Extensions[strings.TrimPrefix(strings.ToLower(ext), ".")] = lang
	}
	if len(w.Kinds) > 0 {
		out.Parser.Kinds = make(map[ast.Language][]ast.Kind, len(w.Kinds))
		for _, name := range sortedKeys(w.Kinds) {
			lang, err := ast.ResolveLanguage(name)
			if err != nil {
				return nil, fmt.Errorf("kinds: %w", err)
			}
			kinds := make([]ast.Kind, 0, len(w.Kinds[name]))
			for _, k := range w.Kinds[name] {
				kinds = append(kinds, ast.Kind(k))
			}
			out.Parser.Kinds[lang] = kinds
		}
	}
	if w.Nested != nil {
		out.Parser.Nested = *w.Nested
	}
	out.Parser.Tolerant = w.Tolerant
	if w.MaxFileSize > 0 {
		out.Parser.MaxFileSize = w.MaxFileSize
	}
	if out.ParallelWorkers <= 0 {
		out.ParallelWorkers = defaults.ParallelWorkers
	}
	if out.IndexPath == "" {
		out.IndexPath = defaults.IndexPath
	}
	if !filepath.IsAbs(out.IndexPath) && w.Workspace != "" {
		out.IndexPath = filepath.Join(w.Workspace, out.IndexPath)
	}
	if out.LogPath != "" && !filepath.IsAbs(out.LogPath) && w.Workspace != "" {
		out.LogPath = filepath.Join(w.Workspace, out.LogPath)
	}
	return out, nil
}

// IndexConfig converts resolved settings into IndexManager options.
func (r *Resolved) IndexConfig(workspace string) ast.IndexConfig {
	return ast.IndexConfig{
		WorkspacePath:   workspace,
		ParallelWorkers: r.ParallelWorkers,
		IgnorePatterns:  r.IgnorePatterns,
		Parser:          r.Parser,
		Extensions:      r.Extensions,
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
