package junos

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnrenderableObject reports a tree node with no serialization rule.
// Emitters only construct renderable nodes, so hitting it means the tree
// was assembled by hand and assembled wrong.
var ErrUnrenderableObject = errors.New("unrenderable object")

// Format renders the tree as hierarchical configuration text with
// 4-space indentation. Comment blocks and replace: prefixes are emitted
// exactly as carried on the nodes; nothing is interpolated.
func (t *Tree) Format() (string, error) {
	var b strings.Builder
	if err := formatNodes(&b, t.Children, 0); err != nil {
		return "", err
	}
	return b.String(), nil
}

func formatNodes(b *strings.Builder, nodes []*Node, indent int) error {
	prefix := strings.Repeat("    ", indent)
	for _, n := range nodes {
		if err := renderable(n); err != nil {
			return err
		}
		if n.Raw != "" {
			fmt.Fprintf(b, "%s%s\n", prefix, n.Raw)
			continue
		}
		head := n.KeyPath()
		switch {
		case n.Replace && len(n.Comment) > 0:
			// The group form: replace: on its own line, then the
			// provenance comment, then the block itself.
			fmt.Fprintf(b, "%sreplace:\n", prefix)
			formatComment(b, prefix, n.Comment)
		case n.Replace:
			head = "replace: " + head
		case len(n.Comment) > 0:
			formatComment(b, prefix, n.Comment)
		}
		if n.IsLeaf {
			fmt.Fprintf(b, "%s%s;\n", prefix, head)
			continue
		}
		fmt.Fprintf(b, "%s%s {\n", prefix, head)
		if err := formatNodes(b, n.Children, indent+1); err != nil {
			return err
		}
		fmt.Fprintf(b, "%s}\n", prefix)
	}
	return nil
}

func formatComment(b *strings.Builder, prefix string, lines []string) {
	fmt.Fprintf(b, "%s/*\n", prefix)
	for _, line := range lines {
		if line == "" {
			fmt.Fprintf(b, "%s**\n", prefix)
		} else {
			fmt.Fprintf(b, "%s** %s\n", prefix, line)
		}
	}
	fmt.Fprintf(b, "%s*/\n", prefix)
}

// FormatSet renders the tree as flat "set" commands. Replace-qualified
// blocks are preceded by a "delete" of their path, which is how replace
// semantics are expressed in command form. Comments and raw pass-through
// lines have no command form and are omitted.
func (t *Tree) FormatSet() (string, error) {
	var b strings.Builder
	if err := formatSetNodes(&b, t.Children, nil); err != nil {
		return "", err
	}
	return b.String(), nil
}

func formatSetNodes(b *strings.Builder, nodes []*Node, prefix []string) error {
	for _, n := range nodes {
		if err := renderable(n); err != nil {
			return err
		}
		if n.Raw != "" {
			continue
		}
		path := append(prefix, n.Keys...)
		if n.Replace {
			fmt.Fprintf(b, "delete %s\n", strings.Join(path, " "))
		}
		if n.IsLeaf {
			fmt.Fprintf(b, "set %s\n", strings.Join(path, " "))
		} else {
			if err := formatSetNodes(b, n.Children, path); err != nil {
				return err
			}
		}
	}
	return nil
}

func renderable(n *Node) error {
	switch {
	case n == nil:
		return fmt.Errorf("%w: nil node", ErrUnrenderableObject)
	case n.Raw != "" && (len(n.Keys) > 0 || len(n.Children) > 0):
		return fmt.Errorf("%w: raw node %q carries keys or children", ErrUnrenderableObject, n.Raw)
	case n.Raw == "" && len(n.Keys) == 0:
		return fmt.Errorf("%w: node with no keys", ErrUnrenderableObject)
	case n.Replace && n.IsLeaf:
		return fmt.Errorf("%w: replace on leaf %q", ErrUnrenderableObject, n.KeyPath())
	}
	return nil
}
