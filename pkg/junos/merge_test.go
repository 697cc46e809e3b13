package junos

import (
	"strings"
	"testing"
)

func groupTree(name string, leaves ...string) *Tree {
	g := Block(name)
	g.Replace = true
	for _, l := range leaves {
		g.Add(Leaf(l))
	}
	return (&Tree{}).Add(Block("groups").Add(g))
}

func TestMergeAppendsNewBlocks(t *testing.T) {
	base := &Tree{}
	base.Merge(groupTree("fw-a", "one"))
	base.Merge(groupTree("fw-b", "two"))

	got, err := base.Format()
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	want := `groups {
    replace: fw-a {
        one;
    }
    replace: fw-b {
        two;
    }
}
`
	if got != want {
		t.Errorf("merged output:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestMergeReplaceIsolation(t *testing.T) {
	base := &Tree{}
	base.Merge(groupTree("fw-a", "one", "stale"))
	base.Merge(groupTree("fw-a", "two"))

	got, err := base.Format()
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if strings.Contains(got, "stale") || strings.Contains(got, "one") {
		t.Errorf("replaced block kept stale children:\n%s", got)
	}
	if !strings.Contains(got, "two;") {
		t.Errorf("replaced block missing new child:\n%s", got)
	}

	groups := base.FindChild("groups")
	if groups == nil {
		t.Fatal("missing groups node")
	}
	if groups.Name() != "groups" {
		t.Errorf("node name = %q, want groups", groups.Name())
	}
	if len(groups.FindChildren("fw-a")) != 1 {
		t.Errorf("expected exactly one fw-a block, got %d", len(groups.FindChildren("fw-a")))
	}
}

func TestMergeLeafOverwrite(t *testing.T) {
	base := (&Tree{}).Add(Leaf("apply-groups", "fw-a"))
	base.Merge((&Tree{}).Add(Leaf("apply-groups", "fw-a")))

	if len(base.Children) != 1 {
		t.Fatalf("expected 1 leaf after merging identical leaves, got %d", len(base.Children))
	}

	// A leaf with different keys is a different node.
	base.Merge((&Tree{}).Add(Leaf("apply-groups", "fw-b")))
	if len(base.Children) != 2 {
		t.Fatalf("expected 2 leaves, got %d", len(base.Children))
	}
}

func TestMergeRecursiveContainers(t *testing.T) {
	first := &Tree{}
	ab := Block("address-book")
	ab.Replace = true
	first.Add(Block("security").Add(ab))

	second := &Tree{}
	pol := Block("policies")
	pol.Replace = true
	second.Add(Block("security").Add(pol))

	base := &Tree{}
	base.Merge(first)
	base.Merge(second)

	sec := base.FindChild("security")
	if sec == nil {
		t.Fatal("missing security node")
	}
	if len(sec.Children) != 2 {
		t.Fatalf("expected address-book and policies under one security node, got %d children", len(sec.Children))
	}
	if sec.FindChild("address-book") == nil || sec.FindChild("policies") == nil {
		t.Error("containers were not merged recursively")
	}
}

func TestMergeRawDedup(t *testing.T) {
	line := "term raw-override { then { reject; } }"
	src := (&Tree{}).Add(RawLine(line))

	base := &Tree{}
	base.Merge(src)
	base.Merge(src)

	if len(base.Children) != 1 {
		t.Fatalf("expected raw line merged once, got %d nodes", len(base.Children))
	}
}

func TestMergeDeepCopies(t *testing.T) {
	src := groupTree("fw-a", "one")
	base := &Tree{}
	base.Merge(src)

	// Mutating the source after the merge must not leak into the target.
	src.FindChild("groups").FindChild("fw-a").Add(Leaf("mutated"))

	got, err := base.Format()
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if strings.Contains(got, "mutated") {
		t.Errorf("merge shares nodes with its source:\n%s", got)
	}
}

func TestCloneIndependence(t *testing.T) {
	orig := groupTree("fw-a", "one")
	clone := orig.Clone()

	orig.FindChild("groups").FindChild("fw-a").Add(Leaf("mutated"))

	got, err := clone.Format()
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if strings.Contains(got, "mutated") {
		t.Errorf("clone shares nodes with the original:\n%s", got)
	}
}
