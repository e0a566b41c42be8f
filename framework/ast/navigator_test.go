package ast

import "testing"

func twoFunctions() []Node {
	return []Node{
		MustNode("function", "foo", Span{StartRow: 0, EndRow: 5, EndCol: 1}),
		MustNode("function", "bar", Span{StartRow: 6, EndRow: 10, EndCol: 1}),
	}
}

func overlapping() []Node {
	return []Node{
		MustNode("class", "MyClass", Span{StartRow: 0, EndRow: 20, EndCol: 1}),
		MustNode("fn", "method1", Span{StartRow: 2, StartCol: 4, EndRow: 8, EndCol: 5}),
		MustNode("fn", "method2", Span{StartRow: 10, StartCol: 4, EndRow: 15, EndCol: 5}),
	}
}

// nameOf returns a checker that fails the test when the navigator returned
// no node, so calls read nameOf(t)(nav.Next()).
func nameOf(t *testing.T) func(Node, bool) string {
	t.Helper()
	return func(node Node, ok bool) string {
		t.Helper()
		if !ok {
			t.Fatal("expected a node, got none")
		}
		name, _ := node.Name()
		return name
	}
}

func TestNavigatorStartsAtFirstNode(t *testing.T) {
	nav := NewNavigator(twoFunctions())
	if nav.Index() != 0 {
		t.Fatalf("index = %d", nav.Index())
	}
	if got := nameOf(t)(nav.Current()); got != "foo" {
		t.Fatalf("current = %s", got)
	}
}

func TestNavigatorContaining(t *testing.T) {
	nav := NewNavigator(twoFunctions())
	found := nav.Containing(3)
	if len(found) != 1 {
		t.Fatalf("expected 1 node, got %d", len(found))
	}
	if name, _ := found[0].Name(); name != "foo" {
		t.Fatalf("found %s", name)
	}
	if got := nav.Containing(5); len(got) != 1 {
		t.Fatalf("end row is inclusive, got %v", got)
	}
}

func TestNavigatorContainingOverlapKeepsConstructionOrder(t *testing.T) {
	nodes := overlapping()
	nav := NewNavigator(nodes)

	got := nav.Containing(3)
	if len(got) != 2 || got[0] != nodes[0] || got[1] != nodes[1] {
		t.Fatalf("line 3: %v", got)
	}
	got = nav.Containing(12)
	if len(got) != 2 || got[0] != nodes[0] || got[1] != nodes[2] {
		t.Fatalf("line 12: %v", got)
	}
	if got = nav.Containing(25); len(got) != 0 {
		t.Fatalf("line 25: %v", got)
	}
}

func TestNavigatorContainingMatchesSpanDefinition(t *testing.T) {
	nodes := overlapping()
	nav := NewNavigator(nodes)
	for line := -2; line <= 22; line++ {
		found := map[Node]bool{}
		for _, n := range nav.Containing(line) {
			found[n] = true
		}
		for _, n := range nodes {
			start, end := n.LineSpan()
			want := start <= line && line <= end
			if found[n] != want {
				t.Fatalf("line %d node %v: in result=%v, want %v", line, n, found[n], want)
			}
		}
	}
}

func TestNavigatorWalk(t *testing.T) {
	nav := NewNavigator([]Node{
		MustNode("fn", "main", Span{EndRow: 10, EndCol: 1}),
		MustNode("struct", "Config", Span{StartRow: 12, EndRow: 20, EndCol: 1}),
		MustNode("impl", "", Span{StartRow: 22, EndRow: 30, EndCol: 1}),
	})
	if got := nameOf(t)(nav.Current()); got != "main" {
		t.Fatalf("current = %s", got)
	}
	if got := nameOf(t)(nav.Next()); got != "Config" {
		t.Fatalf("next = %s", got)
	}
	node, ok := nav.Next()
	if !ok {
		t.Fatal("expected impl node")
	}
	if _, named := node.Name(); named {
		t.Fatal("impl should be anonymous")
	}
	if _, ok := nav.Next(); ok {
		t.Fatal("next past the end must report absence")
	}
	if nav.Index() != 2 {
		t.Fatalf("cursor moved past the end: %d", nav.Index())
	}
	if got := nameOf(t)(nav.Previous()); got != "Config" {
		t.Fatalf("previous = %s", got)
	}
}

func TestNavigatorRoundTrip(t *testing.T) {
	nodes := overlapping()
	for start := 0; start < len(nodes); start++ {
		nav := NewNavigator(nodes)
		for i := 0; i < start; i++ {
			nav.Next()
		}
		before, _ := nav.Current()
		if _, ok := nav.Next(); ok {
			nav.Previous()
		} else if nav.Index() != start {
			t.Fatalf("failed next moved the cursor from %d to %d", start, nav.Index())
		}
		after, _ := nav.Current()
		if before != after {
			t.Fatalf("round trip from %d ended on %v, want %v", start, after, before)
		}
	}
}

func TestNavigatorBoundaries(t *testing.T) {
	nav := NewNavigator(twoFunctions())
	if _, ok := nav.Previous(); ok {
		t.Fatal("previous at index 0 must report absence")
	}
	if nav.Index() != 0 {
		t.Fatalf("cursor moved: %d", nav.Index())
	}

	single := NewNavigator(twoFunctions()[:1])
	for i := 0; i < 3; i++ {
		if _, ok := single.Next(); ok {
			t.Fatal("single-node navigator cannot advance")
		}
		if _, ok := single.Previous(); ok {
			t.Fatal("single-node navigator cannot retreat")
		}
	}
	if got := nameOf(t)(single.Current()); got != "foo" {
		t.Fatalf("current = %s", got)
	}
}

func TestNavigatorEmpty(t *testing.T) {
	for _, nav := range []*Navigator{NewNavigator(nil), NewNavigator([]Node{})} {
		for i := 0; i < 3; i++ {
			if _, ok := nav.Next(); ok {
				t.Fatal("empty navigator advanced")
			}
			if _, ok := nav.Previous(); ok {
				t.Fatal("empty navigator retreated")
			}
		}
		if _, ok := nav.Current(); ok {
			t.Fatal("empty navigator has no current node")
		}
		if _, ok := nav.First(); ok {
			t.Fatal("empty navigator has no first node")
		}
		if _, ok := nav.Last(); ok {
			t.Fatal("empty navigator has no last node")
		}
		if _, ok := nav.Seek(0); ok {
			t.Fatal("empty navigator cannot seek")
		}
		if got := nav.Containing(0); len(got) != 0 {
			t.Fatalf("containing on empty = %v", got)
		}
		if nav.Len() != 0 || len(nav.Nodes()) != 0 {
			t.Fatal("empty navigator reported nodes")
		}
	}
}

func TestNavigatorOwnsItsNodes(t *testing.T) {
	nodes := twoFunctions()
	nav := NewNavigator(nodes)
	nodes[0] = MustNode("function", "mutated", Span{EndRow: 1})
	if got := nameOf(t)(nav.Current()); got != "foo" {
		t.Fatalf("navigator aliased the caller's slice: %s", got)
	}
	out := nav.Nodes()
	out[1] = MustNode("function", "mutated", Span{EndRow: 1})
	if got := nameOf(t)(nav.Next()); got != "bar" {
		t.Fatalf("Nodes leaked internal storage: %s", got)
	}
}

func TestNavigatorInnermost(t *testing.T) {
	nav := NewNavigator(overlapping())
	if got := nameOf(t)(nav.Innermost(3)); got != "method1" {
		t.Fatalf("innermost(3) = %s", got)
	}
	if got := nameOf(t)(nav.Innermost(9)); got != "MyClass" {
		t.Fatalf("innermost(9) = %s", got)
	}
	if _, ok := nav.Innermost(30); ok {
		t.Fatal("innermost outside every node must be absent")
	}
	if nav.Index() != 0 {
		t.Fatal("innermost must not move the cursor")
	}
}

func TestNavigatorSeek(t *testing.T) {
	nav := NewNavigator([]Node{
		MustNode("fn", "a", Span{StartRow: 2, EndRow: 4}),
		MustNode("fn", "b", Span{StartRow: 8, EndRow: 12}),
		MustNode("fn", "inner", Span{StartRow: 9, EndRow: 10}),
	})
	if got := nameOf(t)(nav.Seek(10)); got != "inner" || nav.Index() != 2 {
		t.Fatalf("seek(10) = %s at %d", got, nav.Index())
	}
	if got := nameOf(t)(nav.Seek(6)); got != "b" || nav.Index() != 1 {
		t.Fatalf("seek(6) = %s at %d", got, nav.Index())
	}
	if got := nameOf(t)(nav.Seek(0)); got != "a" || nav.Index() != 0 {
		t.Fatalf("seek(0) = %s at %d", got, nav.Index())
	}
	nav.Last()
	if _, ok := nav.Seek(40); ok {
		t.Fatal("seek past every node must be absent")
	}
	if nav.Index() != 2 {
		t.Fatalf("failed seek moved the cursor to %d", nav.Index())
	}
	if got := nameOf(t)(nav.First()); got != "a" {
		t.Fatalf("first = %s", got)
	}
}
