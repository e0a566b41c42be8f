package ast

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists node sequences in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens/creates the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// Workers share one connection; SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}
	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS files (
		id TEXT PRIMARY KEY,
		path TEXT NOT NULL UNIQUE,
		language TEXT,
		line_count INTEGER,
		content_hash TEXT,
		node_count INTEGER,
		indexed_at TIMESTAMP,
		parser_version TEXT
	);
	CREATE TABLE IF NOT EXISTS nodes (
		file_id TEXT NOT NULL,
		ordinal INTEGER NOT NULL,
		kind TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		start_row INTEGER,
		start_col INTEGER,
		end_row INTEGER,
		end_col INTEGER,
		PRIMARY KEY(file_id, ordinal),
		FOREIGN KEY(file_id) REFERENCES files(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS nodes_name ON nodes(name);
	CREATE INDEX IF NOT EXISTS nodes_kind ON nodes(kind);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Prepare(query string) (*sql.Stmt, error)
}

// SaveFile upserts metadata.
func (s *SQLiteStore) SaveFile(metadata *FileMetadata) error {
	return upsertFile(s.db, metadata)
}

func upsertFile(db execer, metadata *FileMetadata) error {
	if metadata == nil {
		return errors.New("metadata required")
	}
	query := `
	INSERT INTO files (
		id, path, language, line_count, content_hash, node_count,
		indexed_at, parser_version
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		path=excluded.path,
		language=excluded.language,
		line_count=excluded.line_count,
		content_hash=excluded.content_hash,
		node_count=excluded.node_count,
		indexed_at=excluded.indexed_at,
		parser_version=excluded.parser_version
	`
	_, err := db.Exec(query,
		metadata.ID,
		metadata.Path,
		metadata.Language,
		metadata.LineCount,
		metadata.ContentHash,
		metadata.NodeCount,
		metadata.IndexedAt,
		metadata.ParserVersion,
	)
	return err
}

const fileColumns = `id, path, language, line_count, content_hash, node_count, indexed_at, parser_version`

// GetFile returns nil without error when the id is unknown.
func (s *SQLiteStore) GetFile(id string) (*FileMetadata, error) {
	row := s.db.QueryRow(`SELECT `+fileColumns+` FROM files WHERE id = ?`, id)
	return scanFile(row)
}

// GetFileByPath returns nil without error when the path was never indexed.
func (s *SQLiteStore) GetFileByPath(path string) (*FileMetadata, error) {
	row := s.db.QueryRow(`SELECT `+fileColumns+` FROM files WHERE path = ?`, path)
	return scanFile(row)
}

func (s *SQLiteStore) ListFiles(language Language) ([]*FileMetadata, error) {
	var rows *sql.Rows
	var err error
	if language == "" {
		rows, err = s.db.Query(`SELECT ` + fileColumns + ` FROM files ORDER BY path`)
	} else {
		rows, err = s.db.Query(`SELECT `+fileColumns+` FROM files WHERE language = ? ORDER BY path`, language)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFiles(rows)
}

func (s *SQLiteStore) DeleteFile(id string) error {
	return deleteFile(s.db, id)
}

func deleteFile(db execer, id string) error {
	if _, err := db.Exec(`DELETE FROM nodes WHERE file_id = ?`, id); err != nil {
		return err
	}
	_, err := db.Exec(`DELETE FROM files WHERE id = ?`, id)
	return err
}

func replaceNodes(db execer, fileID string, nodes []Node) error {
	if _, err := db.Exec(`DELETE FROM nodes WHERE file_id = ?`, fileID); err != nil {
		return err
	}
	if len(nodes) == 0 {
		return nil
	}
	stmt, err := db.Prepare(`INSERT INTO nodes (
		file_id, ordinal, kind, name,
		start_row, start_col, end_row, end_col
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, node := range nodes {
		name, _ := node.Name()
		span := node.Span()
		if _, err := stmt.Exec(
			fileID,
			i,
			node.Kind(),
			name,
			span.StartRow,
			span.StartCol,
			span.EndRow,
			span.EndCol,
		); err != nil {
			return err
		}
	}
	return nil
}

// GetNodesByFile returns the stored sequence in its original order.
func (s *SQLiteStore) GetNodesByFile(fileID string) ([]Node, error) {
	rows, err := s.db.Query(`SELECT kind, name, start_row, start_col, end_row, end_col
		FROM nodes WHERE file_id = ? ORDER BY ordinal`, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var nodes []Node
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, rows.Err()
}

func (s *SQLiteStore) SearchNodes(query NodeQuery) ([]IndexedNode, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0)
	builder.WriteString(`SELECT n.kind, n.name, n.start_row, n.start_col, n.end_row, n.end_col,
		n.file_id, f.path, n.ordinal
		FROM nodes n INNER JOIN files f ON f.id = n.file_id WHERE 1=1`)
	if len(query.Kinds) > 0 {
		builder.WriteString(" AND n.kind IN (")
		builder.WriteString(placeholders(len(query.Kinds)))
		builder.WriteString(")")
		for _, k := range query.Kinds {
			args = append(args, k)
		}
	}
	if len(query.Languages) > 0 {
		builder.WriteString(" AND f.language IN (")
		builder.WriteString(placeholders(len(query.Languages)))
		builder.WriteString(")")
		for _, l := range query.Languages {
			args = append(args, l)
		}
	}
	if query.NamePattern != "" {
		builder.WriteString(` AND n.name <> '' AND n.name LIKE ? ESCAPE '\'`)
		args = append(args, query.NamePattern)
	}
	builder.WriteString(" ORDER BY f.path, n.ordinal")
	if query.Limit > 0 {
		builder.WriteString(fmt.Sprintf(" LIMIT %d", query.Limit))
	}
	if query.Offset > 0 {
		if query.Limit <= 0 {
			builder.WriteString(" LIMIT -1")
		}
		builder.WriteString(fmt.Sprintf(" OFFSET %d", query.Offset))
	}
	rows, err := s.db.Query(builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	results := make([]IndexedNode, 0)
	for rows.Next() {
		var (
			kind, name                         string
			startRow, startCol, endRow, endCol int
			hit                                IndexedNode
		)
		if err := rows.Scan(&kind, &name, &startRow, &startCol, &endRow, &endCol,
			&hit.FileID, &hit.Path, &hit.Ordinal); err != nil {
			return nil, err
		}
		node, err := NewNode(Kind(kind), name, Span{StartRow: startRow, StartCol: startCol, EndRow: endRow, EndCol: endCol})
		if err != nil {
			return nil, fmt.Errorf("stored node %s#%d: %w", hit.Path, hit.Ordinal, err)
		}
		hit.Node = node
		results = append(results, hit)
	}
	return results, rows.Err()
}

// BeginTransaction starts a batch operation.
func (s *SQLiteStore) BeginTransaction() (Transaction, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx}, nil
}

type sqliteTx struct {
	tx *sql.Tx
}

func (t *sqliteTx) SaveFile(metadata *FileMetadata) error {
	return upsertFile(t.tx, metadata)
}

func (t *sqliteTx) SaveNodes(fileID string, nodes []Node) error {
	return replaceNodes(t.tx, fileID, nodes)
}

func (t *sqliteTx) DeleteFile(fileID string) error {
	return deleteFile(t.tx, fileID)
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

// Rollback after Commit is a no-op so it can be deferred.
func (t *sqliteTx) Rollback() error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

// Vacuum performs database maintenance.
func (s *SQLiteStore) Vacuum() error {
	_, err := s.db.Exec(`VACUUM`)
	return err
}

// GetStats aggregates counts.
func (s *SQLiteStore) GetStats() (*IndexStats, error) {
	stats := &IndexStats{
		NodesByKind:     make(map[Kind]int),
		FilesByLanguage: make(map[Language]int),
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM files`).Scan(&stats.TotalFiles); err != nil {
		return nil, err
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM nodes`).Scan(&stats.TotalNodes); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`SELECT kind, COUNT(*) FROM nodes GROUP BY kind`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var k Kind
		var count int
		if err := rows.Scan(&k, &count); err != nil {
			rows.Close()
			return nil, err
		}
		stats.NodesByKind[k] = count
	}
	rows.Close()
	rows, err = s.db.Query(`SELECT language, COUNT(*) FROM files GROUP BY language`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var l Language
		var count int
		if err := rows.Scan(&l, &count); err != nil {
			rows.Close()
			return nil, err
		}
		stats.FilesByLanguage[l] = count
	}
	rows.Close()
	var pageCount, pageSize int64
	if err := s.db.QueryRow(`PRAGMA page_count`).Scan(&pageCount); err != nil {
		return nil, fmt.Errorf("page count: %w", err)
	}
	if err := s.db.QueryRow(`PRAGMA page_size`).Scan(&pageSize); err != nil {
		return nil, fmt.Errorf("page size: %w", err)
	}
	stats.DatabaseSize = pageCount * pageSize
	return stats, nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "?"
	}
	return strings.Join(parts, ",")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row *sql.Row) (*FileMetadata, error) {
	meta, err := scanFileRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return meta, err
}

func scanFileRow(row rowScanner) (*FileMetadata, error) {
	meta := &FileMetadata{}
	err := row.Scan(
		&meta.ID,
		&meta.Path,
		&meta.Language,
		&meta.LineCount,
		&meta.ContentHash,
		&meta.NodeCount,
		&meta.IndexedAt,
		&meta.ParserVersion,
	)
	if err != nil {
		return nil, err
	}
	return meta, nil
}

func scanFiles(rows *sql.Rows) ([]*FileMetadata, error) {
	results := make([]*FileMetadata, 0)
	for rows.Next() {
		meta, err := scanFileRow(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, meta)
	}
	return results, rows.Err()
}

func scanNode(row rowScanner) (Node, error) {
	var (
		kind, name                         string
		startRow, startCol, endRow, endCol int
	)
	if err := row.Scan(&kind, &name, &startRow, &startCol, &endRow, &endCol); err != nil {
		return Node{}, err
	}
	return NewNode(Kind(kind), name, Span{StartRow: startRow, StartCol: startCol, EndRow: endRow, EndCol: endCol})
}
