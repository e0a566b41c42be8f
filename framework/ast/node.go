package ast

import (
	"encoding/json"
	"fmt"
)

// Kind names the grammar category of a construct, e.g. "function_definition".
// The vocabulary is owned by each grammar; any string is accepted.
type Kind string

// Span holds zero-indexed start and end positions of a construct.
type Span struct {
	StartRow int `json:"start_row"`
	StartCol int `json:"start_col"`
	EndRow   int `json:"end_row"`
	EndCol   int `json:"end_col"`
}

// Validate checks the ordering invariant of the span.
func (s Span) Validate() error {
	if s.StartRow < 0 || s.StartCol < 0 || s.EndRow < 0 || s.EndCol < 0 {
		return invalidNode("negative position in %s", s)
	}
	if s.StartRow > s.EndRow {
		return invalidNode("start row %d after end row %d", s.StartRow, s.EndRow)
	}
	if s.StartRow == s.EndRow && s.StartCol > s.EndCol {
		return invalidNode("start column %d after end column %d on row %d", s.StartCol, s.EndCol, s.StartRow)
	}
	return nil
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", s.StartRow, s.StartCol, s.EndRow, s.EndCol)
}

// Node represents one syntactic construct extracted from a parse tree.
// Nodes are values; there is no way to mutate one after construction.
type Node struct {
	kind  Kind
	name  string
	named bool
	span  Span
}

// NewNode builds a named node. An empty name yields an anonymous node.
func NewNode(kind Kind, name string, span Span) (Node, error) {
	if err := span.Validate(); err != nil {
		return Node{}, fmt.Errorf("%s %q: %w", kind, name, err)
	}
	return Node{kind: kind, name: name, named: name != "", span: span}, nil
}

// NewAnonymousNode builds a node without an identifier, such as a Rust impl block.
func NewAnonymousNode(kind Kind, span Span) (Node, error) {
	return NewNode(kind, "", span)
}

// MustNode is like NewNode but panics on an invalid span.
func MustNode(kind Kind, name string, span Span) Node {
	node, err := NewNode(kind, name, span)
	if err != nil {
		panic(err)
	}
	return node
}

func (n Node) Kind() Kind { return n.kind }

// Name returns the identifier and whether the construct has one.
func (n Node) Name() (string, bool) { return n.name, n.named }

func (n Node) Span() Span { return n.span }

// LineSpan returns the inclusive row range (start_row, end_row).
func (n Node) LineSpan() (int, int) { return n.span.StartRow, n.span.EndRow }

// Contains reports whether line falls inside the node's row range.
func (n Node) Contains(line int) bool {
	return n.span.StartRow <= line && line <= n.span.EndRow
}

// Width is the number of rows the node covers.
func (n Node) Width() int { return n.span.EndRow - n.span.StartRow + 1 }

// Equal compares every field.
func (n Node) Equal(other Node) bool { return n == other }

// Label is a short human readable form used by outlines.
func (n Node) Label() string {
	if n.named {
		return fmt.Sprintf("%s %s", n.kind, n.name)
	}
	return string(n.kind)
}

func (n Node) String() string {
	return fmt.Sprintf("%s [%s]", n.Label(), n.span)
}

type nodeJSON struct {
	Kind Kind    `json:"kind"`
	Name *string `json:"name,omitempty"`
	Span
}

func (n Node) MarshalJSON() ([]byte, error) {
	payload := nodeJSON{Kind: n.kind, Span: n.span}
	if n.named {
		name := n.name
		payload.Name = &name
	}
	return json.Marshal(payload)
}

func (n *Node) UnmarshalJSON(data []byte) error {
	var payload nodeJSON
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	name := ""
	if payload.Name != nil {
		name = *payload.Name
	}
	node, err := NewNode(payload.Kind, name, payload.Span)
	if err != nil {
		return err
	}
	*n = node
	return nil
}
