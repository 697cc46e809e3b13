// Package junos builds and renders Junos-style hierarchical configuration
// trees: curly-brace blocks, flat "set" commands, and replace-semantics
// merging of regenerated blocks.
package junos

import "strings"

// Node is one element of a configuration tree. It is either a leaf
// (terminated by ;), a block (children in {}), or a raw pass-through line.
type Node struct {
	// Keys is the sequence of identifiers forming this node's identity.
	// Examples:
	//   "applications" -> ["applications"]
	//   "from-zone trust to-zone untrust" -> ["from-zone", "trust", "to-zone", "untrust"]
	//   "address CORP_0 10.0.0.0/8" -> ["address", "CORP_0", "10.0.0.0/8"]
	Keys []string

	// Children are the nodes within this block's braces. nil for leaves.
	Children []*Node

	// IsLeaf is true when the node is terminated by ; (no block body).
	IsLeaf bool

	// Replace marks a regenerable block: rendering prefixes it with
	// "replace:" and merging lets it supersede a same-keyed sibling.
	Replace bool

	// Comment lines are rendered as a /* ... */ block immediately before
	// the node (after the replace: line when both are present). An empty
	// string renders as a bare "**" separator line.
	Comment []string

	// Raw, when non-empty, is emitted verbatim at the current indentation
	// instead of Keys. Raw nodes carry no keys and no children.
	Raw string
}

// Block returns a container node with the given keys.
func Block(keys ...string) *Node {
	return &Node{Keys: keys}
}

// Leaf returns a leaf node with the given keys.
func Leaf(keys ...string) *Node {
	return &Node{Keys: keys, IsLeaf: true}
}

// RawLine returns a node emitted verbatim.
func RawLine(line string) *Node {
	return &Node{Raw: line, IsLeaf: true}
}

// BracketList returns a leaf rendering a Junos name list: zero members
// as "key [ ];", one member as "key m;", several as "key [ m1 m2 ];".
func BracketList(key string, members ...string) *Node {
	switch len(members) {
	case 0:
		return Leaf(key, "[ ]")
	case 1:
		return Leaf(key, members[0])
	default:
		return Leaf(key, "[ "+strings.Join(members, " ")+" ]")
	}
}

// Add appends children and returns the node.
func (n *Node) Add(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Name returns the first key of the node.
func (n *Node) Name() string {
	if len(n.Keys) == 0 {
		return ""
	}
	return n.Keys[0]
}

// KeyPath returns the full key path as a single string.
func (n *Node) KeyPath() string {
	return strings.Join(n.Keys, " ")
}

// FindChild returns the first child whose name matches.
func (n *Node) FindChild(name string) *Node {
	for _, child := range n.Children {
		if child.Name() == name {
			return child
		}
	}
	return nil
}

// FindChildren returns all children whose name matches.
func (n *Node) FindChildren(name string) []*Node {
	var result []*Node
	for _, child := range n.Children {
		if child.Name() == name {
			result = append(result, child)
		}
	}
	return result
}

// Tree is the root of a configuration document.
type Tree struct {
	Children []*Node
}

// Add appends top-level nodes and returns the tree.
func (t *Tree) Add(nodes ...*Node) *Tree {
	t.Children = append(t.Children, nodes...)
	return t
}

// FindChild returns the first top-level child matching name.
func (t *Tree) FindChild(name string) *Node {
	for _, child := range t.Children {
		if child.Name() == name {
			return child
		}
	}
	return nil
}

// Clone creates a deep copy of the tree.
func (t *Tree) Clone() *Tree {
	if t == nil {
		return nil
	}
	return &Tree{Children: cloneNodes(t.Children)}
}

func cloneNode(n *Node) *Node {
	return &Node{
		Keys:     append([]string(nil), n.Keys...),
		Children: cloneNodes(n.Children),
		IsLeaf:   n.IsLeaf,
		Replace:  n.Replace,
		Comment:  append([]string(nil), n.Comment...),
		Raw:      n.Raw,
	}
}

func cloneNodes(nodes []*Node) []*Node {
	if nodes == nil {
		return nil
	}
	result := make([]*Node, len(nodes))
	for i, n := range nodes {
		result[i] = cloneNode(n)
	}
	return result
}

// keysEqual returns true if two key slices are identical.
func keysEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
