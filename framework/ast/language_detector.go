package ast

import (
	"path/filepath"
	"strings"
)

// LanguageDetector maps filenames/extensions to languages.
type LanguageDetector struct {
	extensionMap map[string]Language
}

// NewLanguageDetector seeds the extension table from every supported
// language. Shared extensions keep their first owner, so ".h" is C.
func NewLanguageDetector() *LanguageDetector {
	ld := &LanguageDetector{extensionMap: make(map[string]Language)}
	for _, lang := range supportedLanguages {
		for _, ext := range languageExtensions[lang] {
			key := "." + ext
			if _, taken := ld.extensionMap[key]; !taken {
				ld.extensionMap[key] = lang
			}
		}
	}
	return ld
}

// Override remaps an extension, with or without leading dot.
func (ld *LanguageDetector) Override(ext string, lang Language) {
	ld.extensionMap[normalizeExt(ext)] = lang
}

// Detect returns the language for path. Unknown extensions fail with an
// UnsupportedLanguageError carrying the path.
func (ld *LanguageDetector) Detect(path string) (Language, error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(path)))
	if lang, ok := ld.extensionMap[ext]; ok && ext != "" {
		return lang, nil
	}
	return "", &UnsupportedLanguageError{Input: path}
}

// Supports is a cheap check used while walking a workspace.
func (ld *LanguageDetector) Supports(path string) bool {
	_, err := ld.Detect(path)
	return err == nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
