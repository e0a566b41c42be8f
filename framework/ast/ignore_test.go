package ast

import "testing"

func TestIgnoreMatcher(t *testing.T) {
	m := newIgnoreMatcher([]string{"target", "*.gen.rs", "third_party/**/tests", "/docs/", " "})
	cases := map[string]bool{
		"target":                           true,
		"crates/core/target/debug/main.rs": true,
		"src/schema.gen.rs":                true,
		"src/schema.rs":                    false,
		"third_party/tests":                true,
		"third_party/zlib/contrib/tests":   true,
		"third_party/zlib/src/inflate.c":   false,
		"docs":                             true,
		"src/docs":                         false,
		"targets/lib.rs":                   false,
	}
	for path, want := range cases {
		if got := m.Match(path); got != want {
			t.Fatalf("Match(%q) = %v, want %v", path, got, want)
		}
	}
}
