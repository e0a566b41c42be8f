package ast

// IndexStore persists parsed node sequences so unchanged files can be
// reopened without reparsing.
type IndexStore interface {
	SaveFile(metadata *FileMetadata) error
	GetFile(fileID string) (*FileMetadata, error)
	GetFileByPath(path string) (*FileMetadata, error)
	ListFiles(language Language) ([]*FileMetadata, error)
	DeleteFile(fileID string) error
	GetNodesByFile(fileID string) ([]Node, error)
	SearchNodes(query NodeQuery) ([]IndexedNode, error)
	BeginTransaction() (Transaction, error)
	Vacuum() error
	GetStats() (*IndexStats, error)
	Close() error
}

// NodeQuery filters nodes. NamePattern is SQL LIKE syntax with backslash as
// the escape character; anonymous nodes never match it.
type NodeQuery struct {
	Kinds       []Kind
	Languages   []Language
	NamePattern string
	Limit       int
	Offset      int
}

// IndexedNode is a stored node with the file it came from.
type IndexedNode struct {
	Node    Node   `json:"node"`
	FileID  string `json:"file_id"`
	Path    string `json:"path"`
	Ordinal int    `json:"ordinal"`
}

// Transaction abstracts batched operations.
type Transaction interface {
	SaveFile(metadata *FileMetadata) error
	// SaveNodes replaces the node sequence of a file, keeping order.
	SaveNodes(fileID string, nodes []Node) error
	DeleteFile(fileID string) error
	Commit() error
	Rollback() error
}

// IndexStats exposes counts.
type IndexStats struct {
	TotalFiles      int
	TotalNodes      int
	NodesByKind     map[Kind]int
	FilesByLanguage map[Language]int
	DatabaseSize    int64
}
