package ast

import "time"

// FileMetadata stores per-file statistics and indexing metadata.
type FileMetadata struct {
	ID            string    `json:"id"`
	Path          string    `json:"path"`
	Language      Language  `json:"language"`
	LineCount     int       `json:"line_count"`
	ContentHash   string    `json:"content_hash"`
	NodeCount     int       `json:"node_count"`
	IndexedAt     time.Time `json:"indexed_at"`
	ParserVersion string    `json:"parser_version"`
}
