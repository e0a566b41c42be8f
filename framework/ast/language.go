package ast

import (
	"sort"

	"golang.org/x/text/cases"
)

// Language is the canonical tag of a supported source language.
type Language string

const (
	LanguageC      Language = "c"
	LanguageCpp    Language = "cpp"
	LanguagePython Language = "python"
	LanguageRust   Language = "rust"
	LanguageCSharp Language = "csharp"
)

var supportedLanguages = []Language{
	LanguageC,
	LanguageCpp,
	LanguagePython,
	LanguageRust,
	LanguageCSharp,
}

var languageAliases = map[string]Language{
	"c":      LanguageC,
	"cpp":    LanguageCpp,
	"c++":    LanguageCpp,
	"cxx":    LanguageCpp,
	"python": LanguagePython,
	"py":     LanguagePython,
	"rust":   LanguageRust,
	"rs":     LanguageRust,
	"csharp": LanguageCSharp,
	"c#":     LanguageCSharp,
	"cs":     LanguageCSharp,
}

var languageExtensions = map[Language][]string{
	LanguageC:      {"c", "h"},
	LanguageCpp:    {"cpp", "cc", "cxx", "hpp", "hh", "hxx", "h"},
	LanguagePython: {"py", "pyi"},
	LanguageRust:   {"rs"},
	LanguageCSharp: {"cs"},
}

var languageDisplayNames = map[Language]string{
	LanguageC:      "C",
	LanguageCpp:    "C++",
	LanguagePython: "Python",
	LanguageRust:   "Rust",
	LanguageCSharp: "C#",
}

// ResolveLanguage maps a name or alias, in any letter case, to a Language.
func ResolveLanguage(input string) (Language, error) {
	if lang, ok := languageAliases[cases.Fold().String(input)]; ok {
		return lang, nil
	}
	return "", &UnsupportedLanguageError{Input: input}
}

// SupportedLanguages lists every language in a stable order.
func SupportedLanguages() []Language {
	out := make([]Language, len(supportedLanguages))
	copy(out, supportedLanguages)
	return out
}

// Extensions returns the file extensions (without dot) owned by the language.
func (l Language) Extensions() []string {
	exts := languageExtensions[l]
	out := make([]string, len(exts))
	copy(out, exts)
	return out
}

// Aliases returns every name ResolveLanguage maps to l, sorted.
func (l Language) Aliases() []string {
	var out []string
	for alias, lang := range languageAliases {
		if lang == l {
			out = append(out, alias)
		}
	}
	sort.Strings(out)
	return out
}

func (l Language) DisplayName() string {
	if name, ok := languageDisplayNames[l]; ok {
		return name
	}
	return string(l)
}

// Valid reports whether l is one of the supported languages.
func (l Language) Valid() bool {
	_, ok := languageExtensions[l]
	return ok
}

func (l Language) String() string { return string(l) }
