package ast

import (
	"errors"
	"testing"
)

func TestResolveLanguage(t *testing.T) {
	cases := map[string]Language{
		"rust":   LanguageRust,
		"RUST":   LanguageRust,
		"rs":     LanguageRust,
		"Python": LanguagePython,
		"py":     LanguagePython,
		"c":      LanguageC,
		"C":      LanguageC,
		"cpp":    LanguageCpp,
		"C++":    LanguageCpp,
		"c#":     LanguageCSharp,
		"CS":     LanguageCSharp,
		"csharp": LanguageCSharp,
	}
	for input, want := range cases {
		got, err := ResolveLanguage(input)
		if err != nil {
			t.Fatalf("resolve %q: %v", input, err)
		}
		if got != want {
			t.Fatalf("resolve %q = %s, want %s", input, got, want)
		}
	}
}

func TestResolveLanguageUnsupported(t *testing.T) {
	for _, input := range []string{"cobol", "", " rust", "Go"} {
		_, err := ResolveLanguage(input)
		if !errors.Is(err, ErrUnsupportedLanguage) {
			t.Fatalf("resolve %q: expected ErrUnsupportedLanguage, got %v", input, err)
		}
		var unsupported *UnsupportedLanguageError
		if !errors.As(err, &unsupported) || unsupported.Input != input {
			t.Fatalf("resolve %q: input not preserved: %v", input, err)
		}
	}
	_, err := ResolveLanguage("cobol")
	if err.Error() != "unsupported language: cobol" {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestLanguageExtensions(t *testing.T) {
	if !contains(LanguageRust.Extensions(), "rs") {
		t.Fatal("rust should own rs")
	}
	if !contains(LanguagePython.Extensions(), "py") {
		t.Fatal("python should own py")
	}
	if !contains(LanguageC.Extensions(), "h") || !contains(LanguageCpp.Extensions(), "h") {
		t.Fatal("h is shared between c and c++")
	}
	exts := LanguageCSharp.Extensions()
	exts[0] = "mutated"
	if LanguageCSharp.Extensions()[0] != "cs" {
		t.Fatal("extension table must not be mutable through the returned slice")
	}
	for _, lang := range SupportedLanguages() {
		if len(lang.Extensions()) == 0 {
			t.Fatalf("%s has no extensions", lang)
		}
		if _, ok := GrammarFor(lang); !ok {
			t.Fatalf("%s has no grammar", lang)
		}
		if !lang.Valid() {
			t.Fatalf("%s reported invalid", lang)
		}
	}
	if Language("go").Valid() {
		t.Fatal("go is not supported")
	}
	if LanguageCpp.DisplayName() != "C++" || LanguageCSharp.DisplayName() != "C#" {
		t.Fatal("unexpected display names")
	}
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

func TestLanguageAliasesResolveBack(t *testing.T) {
	for _, lang := range SupportedLanguages() {
		aliases := lang.Aliases()
		if !contains(aliases, string(lang)) {
			t.Fatalf("%s missing its canonical alias: %v", lang, aliases)
		}
		for _, alias := range aliases {
			if got, err := ResolveLanguage(alias); err != nil || got != lang {
				t.Fatalf("alias %q resolved to %s (%v)", alias, got, err)
			}
		}
	}
}
