package ast

import (
	"bytes"
	"crypto/sha256"
	"fmt"
)

// GenerateFileID produces a stable identifier for a file path.
func GenerateFileID(path string) string {
	sum := sha256.Sum256([]byte(path))
	return fmt.Sprintf("file:%x", sum[:8])
}

// HashContent returns a hash for change detection.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return fmt.Sprintf("%x", sum[:])
}

// CountLines counts rows the way tree-sitter numbers them.
func CountLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	return bytes.Count(content, []byte("\n")) + 1
}
