package query

// Walk visits n and its descendants depth-first, parents before children.
// depth is 1 for n. Returning false from fn skips the node's children.
func Walk(n Node, fn func(node Node, depth int) bool) {
	walk(n, 1, fn)
}

func walk(n Node, depth int, fn func(Node, int) bool) {
	if !present(n) {
		return
	}
	if !fn(n, depth) {
		return
	}
	if g, ok := n.(*Group); ok {
		for _, child := range g.Children {
			walk(child, depth+1, fn)
		}
	}
}

// Find returns the node with the given id, or nil when absent.
func Find(root Node, id string) Node {
	var found Node
	Walk(root, func(n Node, _ int) bool {
		if found != nil {
			return false
		}
		if n.NodeID() == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindParent returns the group whose direct children include id, or nil
// when id is absent or is the root itself.
func FindParent(root Node, id string) *Group {
	var parent *Group
	Walk(root, func(n Node, _ int) bool {
		if parent != nil {
			return false
		}
		g, ok := n.(*Group)
		if !ok {
			return false
		}
		for _, child := range g.Children {
			if present(child) && child.NodeID() == id {
				parent = g
				return false
			}
		}
		return true
	})
	return parent
}

// Depth returns the maximum group nesting of n. A condition has depth 0,
// a group with only leaves (or none) has depth 1.
func Depth(n Node) int {
	g, ok := n.(*Group)
	if !ok || g == nil {
		return 0
	}
	deepest := 0
	for _, child := range g.Children {
		if d := Depth(child); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

// CountConditions counts leaf conditions under n. A nil node or a group
// with a nil children list counts as zero.
func CountConditions(n Node) int {
	count := 0
	Walk(n, func(node Node, _ int) bool {
		if _, ok := node.(*Condition); ok {
			count++
		}
		return true
	})
	return count
}

// present reports whether n is a non-nil node, including typed nils.
func present(n Node) bool {
	switch node := n.(type) {
	case *Condition:
		return node != nil
	case *Group:
		return node != nil
	}
	return false
}
