package query

// Clone deep-copies a tree. The copy is structurally equal to root, shares
// no slices, maps or nodes with it, and keeps every id.
func Clone(root *Group) *Group {
	if root == nil {
		return nil
	}
	return cloneGroup(root)
}

// CloneNode deep-copies any node.
func CloneNode(n Node) Node {
	switch node := n.(type) {
	case *Condition:
		if node == nil {
			return nil
		}
		return cloneCondition(node)
	case *Group:
		if node == nil {
			return nil
		}
		return cloneGroup(node)
	}
	return nil
}

func cloneCondition(c *Condition) *Condition {
	return &Condition{
		ID:               c.ID,
		Field:            c.Field,
		Operator:         c.Operator,
		Value:            cloneValue(c.Value),
		CustomExpression: c.CustomExpression,
	}
}

func cloneGroup(g *Group) *Group {
	children := make([]Node, 0, len(g.Children))
	for _, child := range g.Children {
		if cloned := CloneNode(child); cloned != nil {
			children = append(children, cloned)
		}
	}
	return &Group{
		ID:       g.ID,
		Logical:  g.Logical,
		Children: children,
	}
}

// Equal reports whether two trees are structurally equal: same ids, kinds,
// fields, operators, values and child order.
func Equal(a, b Node) bool {
	switch x := a.(type) {
	case *Condition:
		y, ok := b.(*Condition)
		if !ok || x == nil || y == nil {
			return ok && x == nil && y == nil
		}
		return x.ID == y.ID &&
			x.Field == y.Field &&
			x.Operator == y.Operator &&
			x.CustomExpression == y.CustomExpression &&
			valuesEqual(x.Value, y.Value)
	case *Group:
		y, ok := b.(*Group)
		if !ok || x == nil || y == nil {
			return ok && x == nil && y == nil
		}
		if x.ID != y.ID || x.Logical != y.Logical || len(x.Children) != len(y.Children) {
			return false
		}
		for i := range x.Children {
			if !Equal(x.Children[i], y.Children[i]) {
				return false
			}
		}
		return true
	}
	return a == nil && b == nil
}
