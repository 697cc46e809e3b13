package appbook

import (
	"testing"

	"github.com/pcreech/aclgen/pkg/policy"
)

func TestResolveTermNaming(t *testing.T) {
	b := New()

	set := b.ResolveTerm("test-filter-good-term-1", []policy.ServiceSpec{
		{Protocol: "tcp", Port: policy.PortRange{Lo: 25, Hi: 25}},
		{Protocol: "udp", Port: policy.PortRange{Lo: 53, Hi: 53}},
	})

	if set.Name != "test-filter-good-term-1-app" {
		t.Errorf("set name = %q", set.Name)
	}
	if len(set.Apps) != 2 {
		t.Fatalf("expected 2 applications, got %d", len(set.Apps))
	}
	if set.Apps[0].Name != "test-filter-good-term-1-app1" {
		t.Errorf("first application = %q", set.Apps[0].Name)
	}
	if set.Apps[1].Name != "test-filter-good-term-1-app2" {
		t.Errorf("second application = %q", set.Apps[1].Name)
	}
}

func TestTupleReuseAcrossTerms(t *testing.T) {
	b := New()
	smtp := policy.ServiceSpec{Protocol: "tcp", Port: policy.PortRange{Lo: 25, Hi: 25}}

	first := b.ResolveTerm("good-term-1", []policy.ServiceSpec{smtp})
	second := b.ResolveTerm("good-term-2", []policy.ServiceSpec{smtp})

	// One object, two sets wrapping it.
	if got := len(b.Applications()); got != 1 {
		t.Fatalf("expected 1 application, got %d", got)
	}
	if b.Applications()[0].Name != "good-term-1-app1" {
		t.Errorf("application = %q, want good-term-1-app1", b.Applications()[0].Name)
	}
	if len(first.Apps) != 1 || len(second.Apps) != 1 {
		t.Fatal("each term set should have one member")
	}
	if first.Apps[0] != second.Apps[0] {
		t.Error("terms should share the deduplicated object")
	}
	if first.Name == second.Name {
		t.Error("term sets must keep distinct names")
	}
	if got := len(b.Sets()); got != 2 {
		t.Errorf("expected 2 sets, got %d", got)
	}
}

func TestSingleMemberSetMaterialized(t *testing.T) {
	b := New()
	set := b.ResolveTerm("allow-ping", []policy.ServiceSpec{{Protocol: "icmp"}})

	if set.Name != "allow-ping-app" {
		t.Errorf("set name = %q", set.Name)
	}
	if len(set.Apps) != 1 || set.Apps[0].Name != "allow-ping-app1" {
		t.Errorf("set members: %+v", set.Apps)
	}
}

func TestDuplicateTupleWithinTerm(t *testing.T) {
	b := New()
	smtp := policy.ServiceSpec{Protocol: "tcp", Port: policy.PortRange{Lo: 25, Hi: 25}}

	set := b.ResolveTerm("t", []policy.ServiceSpec{smtp, smtp})
	if len(set.Apps) != 1 {
		t.Errorf("expected duplicate tuple collapsed, got %d members", len(set.Apps))
	}
	if got := len(b.Applications()); got != 1 {
		t.Errorf("expected 1 application, got %d", got)
	}
}

func TestIdentityIncludesSourcePortAndTimeout(t *testing.T) {
	b := New()
	base := policy.ServiceSpec{Protocol: "tcp", Port: policy.PortRange{Lo: 25, Hi: 25}}
	withSrc := base
	withSrc.SourcePort = policy.PortRange{Lo: 1024, Hi: 65535}
	withTimeout := base
	withTimeout.Timeout = 900

	set := b.ResolveTerm("t", []policy.ServiceSpec{base, withSrc, withTimeout})
	if len(set.Apps) != 3 {
		t.Fatalf("expected 3 distinct applications, got %d", len(set.Apps))
	}
	if got := len(b.Applications()); got != 3 {
		t.Errorf("expected 3 applications in the book, got %d", got)
	}
}
