package query

import (
	"errors"
	"fmt"
)

var (
	// ErrNilRoot is returned when an edit is applied to a nil tree.
	ErrNilRoot = errors.New("query: nil root")
	// ErrNodeNotFound is returned when an edit targets an id that is not in the tree.
	ErrNodeNotFound = errors.New("query: node not found")
	// ErrNotAGroup is returned when an edit expects a group id but finds a condition.
	ErrNotAGroup = errors.New("query: node is not a group")
	// ErrNotACondition is returned when an edit expects a condition id but finds a group.
	ErrNotACondition = errors.New("query: node is not a condition")
	// ErrRootRemoval is returned when RemoveNode or MoveNode targets the root.
	ErrRootRemoval = errors.New("query: the root group cannot be removed or moved")
	// ErrCycle is returned when MoveNode would place a group inside itself.
	ErrCycle = errors.New("query: cannot move a group into its own subtree")
)

// locateGroup clones root and finds the group id in the clone.
func locateGroup(root *Group, id string) (*Group, *Group, error) {
	if root == nil {
		return nil, nil, ErrNilRoot
	}
	next := Clone(root)
	switch n := Find(next, id).(type) {
	case *Group:
		return next, n, nil
	case *Condition:
		return nil, nil, fmt.Errorf("%w: %s", ErrNotAGroup, id)
	}
	return nil, nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
}

// AddCondition returns a copy of root with a copy of cond appended to the
// group groupID.
func AddCondition(root *Group, groupID string, cond *Condition) (*Group, error) {
	if cond == nil {
		return nil, errors.New("query: nil condition")
	}
	next, target, err := locateGroup(root, groupID)
	if err != nil {
		return nil, err
	}
	target.Children = append(target.Children, cloneCondition(cond))
	return next, nil
}

// AddGroup returns a copy of root with a copy of group appended to the
// group parentID.
func AddGroup(root *Group, parentID string, group *Group) (*Group, error) {
	if group == nil {
		return nil, errors.New("query: nil group")
	}
	next, target, err := locateGroup(root, parentID)
	if err != nil {
		return nil, err
	}
	target.Children = append(target.Children, cloneGroup(group))
	return next, nil
}

// RemoveNode returns a copy of root without the node id and its subtree.
func RemoveNode(root *Group, id string) (*Group, error) {
	if root == nil {
		return nil, ErrNilRoot
	}
	if root.ID == id {
		return nil, ErrRootRemoval
	}
	next := Clone(root)
	parent := FindParent(next, id)
	if parent == nil {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	parent.Children = removeChild(parent.Children, id)
	return next, nil
}

// UpdateCondition returns a copy of root in which fn has been applied to the
// copy of condition id. fn cannot change the condition's id.
func UpdateCondition(root *Group, id string, fn func(c *Condition)) (*Group, error) {
	if root == nil {
		return nil, ErrNilRoot
	}
	next := Clone(root)
	switch n := Find(next, id).(type) {
	case *Condition:
		fn(n)
		n.ID = id
		return next, nil
	case *Group:
		return nil, fmt.Errorf("%w: %s", ErrNotACondition, id)
	}
	return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
}

// UpdateGroup returns a copy of root in which fn has been applied to the copy
// of group id. fn cannot change the group's id.
func UpdateGroup(root *Group, id string, fn func(g *Group)) (*Group, error) {
	next, target, err := locateGroup(root, id)
	if err != nil {
		return nil, err
	}
	fn(target)
	target.ID = id
	return next, nil
}

// MoveNode returns a copy of root with node id detached from its parent and
// inserted into group targetID at index. An index outside the target's
// children appends.
func MoveNode(root *Group, id, targetID string, index int) (*Group, error) {
	if root == nil {
		return nil, ErrNilRoot
	}
	if root.ID == id {
		return nil, ErrRootRemoval
	}
	next := Clone(root)
	node := Find(next, id)
	if node == nil {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	if g, ok := node.(*Group); ok && Find(g, targetID) != nil {
		return nil, fmt.Errorf("%w: %s into %s", ErrCycle, id, targetID)
	}
	var target *Group
	switch n := Find(next, targetID).(type) {
	case *Group:
		target = n
	case *Condition:
		return nil, fmt.Errorf("%w: %s", ErrNotAGroup, targetID)
	default:
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, targetID)
	}

	parent := FindParent(next, id)
	parent.Children = removeChild(parent.Children, id)

	if index < 0 || index > len(target.Children) {
		index = len(target.Children)
	}
	target.Children = append(target.Children, nil)
	copy(target.Children[index+1:], target.Children[index:])
	target.Children[index] = node
	return next, nil
}

func removeChild(children []Node, id string) []Node {
	out := make([]Node, 0, len(children))
	for _, child := range children {
		if present(child) && child.NodeID() == id {
			continue
		}
		out = append(out, child)
	}
	return out
}
