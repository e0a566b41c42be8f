package ast

// Navigator walks an ordered sequence of nodes with a single cursor.
//
// The sequence is fixed at construction; rebuild the Navigator when the
// underlying source changes. A Navigator is owned by one buffer and is not
// safe for concurrent use.
type Navigator struct {
	nodes   []Node
	current int
}

// NewNavigator copies nodes and places the cursor on the first one.
func NewNavigator(nodes []Node) *Navigator {
	owned := make([]Node, len(nodes))
	copy(owned, nodes)
	return &Navigator{nodes: owned}
}

// Containing returns every node whose row range includes line, in
// construction order. Nested constructs all appear; the result is not
// ranked by specificity. Use Innermost for the narrowest match.
func (n *Navigator) Containing(line int) []Node {
	var found []Node
	for _, node := range n.nodes {
		if node.Contains(line) {
			found = append(found, node)
		}
	}
	return found
}

// Innermost returns the narrowest node containing line. On equal widths the
// later node wins, which is the deeper one in depth-first order.
func (n *Navigator) Innermost(line int) (Node, bool) {
	idx := n.innermostIndex(line)
	if idx < 0 {
		return Node{}, false
	}
	return n.nodes[idx], true
}

func (n *Navigator) innermostIndex(line int) int {
	best := -1
	for i, node := range n.nodes {
		if !node.Contains(line) {
			continue
		}
		if best < 0 || node.Width() <= n.nodes[best].Width() {
			best = i
		}
	}
	return best
}

// Next advances the cursor. It returns false without moving when the cursor
// is already on the last node or the sequence is empty.
func (n *Navigator) Next() (Node, bool) {
	if n.current+1 >= len(n.nodes) {
		return Node{}, false
	}
	n.current++
	return n.nodes[n.current], true
}

// Previous moves the cursor back one node; false at the first node.
func (n *Navigator) Previous() (Node, bool) {
	if n.current <= 0 || len(n.nodes) == 0 {
		return Node{}, false
	}
	n.current--
	return n.nodes[n.current], true
}

// Current returns the node under the cursor.
func (n *Navigator) Current() (Node, bool) {
	if len(n.nodes) == 0 {
		return Node{}, false
	}
	return n.nodes[n.current], true
}

// First moves the cursor to the start of the sequence.
func (n *Navigator) First() (Node, bool) {
	if len(n.nodes) == 0 {
		return Node{}, false
	}
	n.current = 0
	return n.nodes[0], true
}

// Last moves the cursor to the end of the sequence.
func (n *Navigator) Last() (Node, bool) {
	if len(n.nodes) == 0 {
		return Node{}, false
	}
	n.current = len(n.nodes) - 1
	return n.nodes[n.current], true
}

// Seek moves the cursor to the innermost node containing line, or failing
// that to the first node that starts after line.
func (n *Navigator) Seek(line int) (Node, bool) {
	if idx := n.innermostIndex(line); idx >= 0 {
		n.current = idx
		return n.nodes[idx], true
	}
	for i, node := range n.nodes {
		if node.span.StartRow > line {
			n.current = i
			return node, true
		}
	}
	return Node{}, false
}

// Nodes returns a copy of the full sequence in construction order.
func (n *Navigator) Nodes() []Node {
	out := make([]Node, len(n.nodes))
	copy(out, n.nodes)
	return out
}

func (n *Navigator) Len() int { return len(n.nodes) }

// Index reports the cursor position. It is 0 for an empty sequence.
func (n *Navigator) Index() int { return n.current }
