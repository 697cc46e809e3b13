package compile

import (
	"fmt"

	"github.com/pcreech/aclgen/pkg/addrbook"
	"github.com/pcreech/aclgen/pkg/appbook"
	"github.com/pcreech/aclgen/pkg/junos"
	"github.com/pcreech/aclgen/pkg/policy"
)

// zoneEmitter assembles the from-zone/to-zone dialect: security policies
// matching by address-book name (never inline literals), a regenerated
// global address-book, and a top-level applications block. Actions are
// spelled permit/deny/reject here.
type zoneEmitter struct {
	doc      *policy.Document
	book     *addrbook.Book
	apps     *appbook.Book
	opts     Options
	phase    phase
	policies []*junos.Node
}

func newZoneEmitter(doc *policy.Document, book *addrbook.Book, apps *appbook.Book, opts Options) *zoneEmitter {
	return &zoneEmitter{doc: doc, book: book, apps: apps, opts: opts}
}

func (e *zoneEmitter) AddRule(r *Rule) error {
	if e.phase == phaseFinalized {
		return fmt.Errorf("%w: zone-policy emitter", ErrFinalized)
	}
	e.phase = phaseCollecting

	if r.IsRaw {
		for _, line := range r.Raw {
			e.policies = append(e.policies, junos.RawLine(line))
		}
		return nil
	}

	pol := junos.Block("policy", r.Name)
	if r.Comment != "" {
		pol.Comment = []string{r.Comment}
	}

	match := junos.Block("match")
	if n := matchAddresses("source-address", r.Src, e.opts.zoneEmptySource()); n != nil {
		match.Add(n)
	}
	if n := matchAddresses("destination-address", r.Dst, e.opts.zoneEmptyDestination()); n != nil {
		match.Add(n)
	}
	match.Add(junos.Leaf("application", r.Apps.Name))
	pol.Add(match)

	then := junos.Block("then")
	then.Add(junos.Leaf(zoneAction(r.Action)))
	if r.Log {
		// Denied sessions never close, so only permits log at session-close.
		logNode := junos.Block("log")
		if r.Action == policy.ActionAccept {
			logNode.Add(junos.Leaf("session-close"))
		} else {
			logNode.Add(junos.Leaf("session-init"))
		}
		then.Add(logNode)
	}
	if r.Count {
		then.Add(junos.Leaf("count"))
	}
	pol.Add(then)

	e.policies = append(e.policies, pol)
	return nil
}

func (e *zoneEmitter) Finalize() (*junos.Tree, error) {
	if e.phase == phaseFinalized {
		return nil, fmt.Errorf("%w: zone-policy emitter", ErrFinalized)
	}
	e.phase = phaseFinalized

	global := junos.Block("global")
	for _, a := range e.book.Addresses() {
		global.Add(junos.Leaf("address", a.Name, a.Prefix.String()))
	}
	for _, s := range e.book.Sets() {
		sn := junos.Block("address-set", s.Name)
		for _, a := range s.Addrs {
			sn.Add(junos.Leaf("address", a.Name))
		}
		global.Add(sn)
	}
	addressBook := junos.Block("address-book")
	addressBook.Replace = true
	addressBook.Add(global)

	zonePair := junos.Block("from-zone", e.doc.FromZone, "to-zone", e.doc.ToZone)
	zonePair.Comment = headerComment(e.doc)
	zonePair.Add(e.policies...)

	policies := junos.Block("policies")
	policies.Replace = true
	policies.Add(zonePair)

	security := junos.Block("security")
	security.Add(addressBook, policies)

	applications := applicationsNode(e.apps)
	applications.Replace = true

	tree := &junos.Tree{}
	tree.Add(security, applications)
	return tree, nil
}

// zoneAction maps the model action onto the dialect's tokens: accepts
// become permits.
func zoneAction(a policy.Action) string {
	switch a {
	case policy.ActionAccept:
		return "permit"
	case policy.ActionDeny:
		return "deny"
	default:
		return "reject"
	}
}

// matchAddresses renders one match side by reference name, applying the
// configured convention when the side is unconstrained. A nil return
// means the clause is omitted.
func matchAddresses(key string, refs []addrbook.Ref, empty EmptyMatch) *junos.Node {
	if len(refs) == 0 {
		switch empty {
		case EmptyAny:
			return junos.Leaf(key, "any")
		case EmptyList:
			return junos.BracketList(key)
		default:
			return nil
		}
	}
	names := make([]string, len(refs))
	for i, r := range refs {
		names[i] = r.Name()
	}
	return junos.BracketList(key, names...)
}
