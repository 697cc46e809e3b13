package junos

// Merge folds other's nodes into t. A replace-qualified block displaces
// any existing sibling with the same keys, plain containers merge
// recursively, and a leaf overwrites a same-keyed leaf. Nodes are deep
// copied, so other stays usable by the caller.
func (t *Tree) Merge(other *Tree) {
	if other == nil {
		return
	}
	t.Children = mergeNodes(t.Children, other.Children)
}

func mergeNodes(dst, src []*Node) []*Node {
	for _, n := range src {
		if n.Raw != "" {
			if !containsRaw(dst, n.Raw) {
				dst = append(dst, cloneNode(n))
			}
			continue
		}
		idx := -1
		for i, d := range dst {
			if d.Raw == "" && keysEqual(d.Keys, n.Keys) {
				idx = i
				break
			}
		}
		if idx < 0 {
			dst = append(dst, cloneNode(n))
			continue
		}
		if n.Replace || n.IsLeaf || dst[idx].IsLeaf {
			dst[idx] = cloneNode(n)
			continue
		}
		dst[idx].Children = mergeNodes(dst[idx].Children, n.Children)
		if len(n.Comment) > 0 {
			dst[idx].Comment = append([]string(nil), n.Comment...)
		}
	}
	return dst
}

func containsRaw(nodes []*Node, raw string) bool {
	for _, n := range nodes {
		if n.Raw == raw {
			return true
		}
	}
	return false
}
