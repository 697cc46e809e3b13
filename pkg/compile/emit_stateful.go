package compile

import (
	"fmt"
	"net/netip"

	"github.com/pcreech/aclgen/pkg/addrbook"
	"github.com/pcreech/aclgen/pkg/appbook"
	"github.com/pcreech/aclgen/pkg/junos"
	"github.com/pcreech/aclgen/pkg/policy"
)

// statefulEmitter assembles the services stateful-firewall dialect: one
// replace-qualified group per filter holding the rule-set and its
// applications, applied through a trailing apply-groups line. Address
// matches render their literals inline; unconstrained sides omit the
// clause entirely.
type statefulEmitter struct {
	doc   *policy.Document
	apps  *appbook.Book
	phase phase
	terms []*junos.Node
}

func newStatefulEmitter(doc *policy.Document, apps *appbook.Book) *statefulEmitter {
	return &statefulEmitter{doc: doc, apps: apps}
}

func (e *statefulEmitter) AddRule(r *Rule) error {
	if e.phase == phaseFinalized {
		return fmt.Errorf("%w: stateful-firewall emitter", ErrFinalized)
	}
	e.phase = phaseCollecting

	if r.IsRaw {
		for _, line := range r.Raw {
			e.terms = append(e.terms, junos.RawLine(line))
		}
		return nil
	}

	term := junos.Block("term", r.Name)
	if r.Comment != "" {
		term.Comment = []string{r.Comment}
	}

	from := junos.Block("from")
	if prefixes := flattenPrefixes(r.Src); len(prefixes) > 0 {
		from.Add(inlineAddresses("source-address", prefixes))
	}
	if prefixes := flattenPrefixes(r.Dst); len(prefixes) > 0 {
		from.Add(inlineAddresses("destination-address", prefixes))
	}
	from.Add(junos.Leaf("application-sets", r.Apps.Name))
	term.Add(from)

	then := junos.Block("then")
	if r.Count {
		then.Add(junos.Leaf("count"))
	}
	if r.Log {
		then.Add(junos.Leaf("syslog"))
	}
	then.Add(junos.Leaf(statefulAction(r.Action)))
	term.Add(then)

	e.terms = append(e.terms, term)
	return nil
}

func (e *statefulEmitter) Finalize() (*junos.Tree, error) {
	if e.phase == phaseFinalized {
		return nil, fmt.Errorf("%w: stateful-firewall emitter", ErrFinalized)
	}
	e.phase = phaseFinalized

	rule := junos.Block("rule", e.doc.Name)
	rule.Add(junos.Leaf("match-direction", e.doc.MatchDirection()))
	rule.Add(e.terms...)

	group := junos.Block(e.doc.Name)
	group.Replace = true
	group.Comment = headerComment(e.doc)
	group.Add(junos.Block("services").Add(junos.Block("stateful-firewall").Add(rule)))
	group.Add(applicationsNode(e.apps))

	tree := &junos.Tree{}
	tree.Add(junos.Block("groups").Add(group))
	tree.Add(junos.Leaf("apply-groups", e.doc.Name))
	return tree, nil
}

// statefulAction maps the model action onto the dialect's tokens; the
// hard drop is spelled discard here.
func statefulAction(a policy.Action) string {
	switch a {
	case policy.ActionAccept:
		return "accept"
	case policy.ActionDeny:
		return "discard"
	default:
		return "reject"
	}
}

func inlineAddresses(key string, prefixes []netip.Prefix) *junos.Node {
	b := junos.Block(key)
	for _, p := range prefixes {
		b.Add(junos.Leaf(p.String()))
	}
	return b
}

func flattenPrefixes(refs []addrbook.Ref) []netip.Prefix {
	var out []netip.Prefix
	seen := make(map[netip.Prefix]bool)
	for _, r := range refs {
		for _, p := range r.Prefixes() {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out
}
