// Package addrbook resolves the IP literals a policy references into
// deterministically named address objects and address-sets, deduplicating
// across every term and dialect sharing the book.
package addrbook

import (
	"errors"
	"fmt"
	"net/netip"
	"sync"
)

// ErrInvalidAddress reports a malformed literal or a prefix length
// exceeding the address family's bit width.
var ErrInvalidAddress = errors.New("invalid address")

// Address is a named, resolved wrapper around one IP prefix. Names are
// unique within the book; identical prefixes always resolve to the same
// Address no matter which token first referenced them.
type Address struct {
	Name   string
	Token  string // group token the address was first resolved under; empty for bare literals
	Prefix netip.Prefix
}

// Set is an ordered, unique group of addresses sharing one token. IPv4
// and IPv6 members live in the same set when a token mixes families.
// Addrs grows under the owning book's lock for as long as resolution
// runs; concurrent readers go through Book.Sets, which copies it.
type Set struct {
	Name  string
	Addrs []*Address
}

func (s *Set) contains(a *Address) bool {
	for _, m := range s.Addrs {
		if m == a {
			return true
		}
	}
	return false
}

// Ref is what one match-clause entry resolves to: a single address
// object or a named set. Exactly one of Addr and Set is non-nil. The
// prefix list is snapshotted under the book's lock when the reference
// is resolved, so rendering one document never reads set members a
// concurrently resolving document may still be appending.
type Ref struct {
	Addr *Address
	Set  *Set

	prefixes []netip.Prefix
}

// Name returns the configuration name the reference renders as.
func (r Ref) Name() string {
	switch {
	case r.Set != nil:
		return r.Set.Name
	case r.Addr != nil:
		return r.Addr.Name
	}
	return ""
}

// Prefixes returns the literals behind the reference in first-seen
// order, as they stood at resolution time, for dialects that render
// matches inline.
func (r Ref) Prefixes() []netip.Prefix {
	return r.prefixes
}

// Book deduplicates and names every literal a compilation touches.
// Object names are <TOKEN>_<n> with a per-token counter assigned in
// first-seen order, so identical input always renders identical names.
// A fresh Book per document restarts naming at _0; one Book may instead
// be shared across documents as a global address-book, in which case
// resolution is single-writer behind the lock and assigned names never
// change afterwards.
type Book struct {
	mu       sync.Mutex
	byPrefix map[netip.Prefix]*Address
	sets     map[string]*Set
	counters map[string]int
	addrs    []*Address
	setNames []string
}

// New returns an empty book.
func New() *Book {
	return &Book{
		byPrefix: make(map[netip.Prefix]*Address),
		sets:     make(map[string]*Set),
		counters: make(map[string]int),
	}
}

// ParseLiteral parses a CIDR literal, accepting a bare IP as a
// full-length prefix. Host bits beyond the prefix length are masked off,
// so 10.0.0.1/8 and 10.0.0.0/8 are the same object.
func ParseLiteral(s string) (netip.Prefix, error) {
	if p, err := netip.ParsePrefix(s); err == nil {
		return p.Masked(), nil
	}
	if a, err := netip.ParseAddr(s); err == nil {
		return netip.PrefixFrom(a, a.BitLen()), nil
	}
	return netip.Prefix{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
}

// Object resolves one literal carrying no group token. The address
// renders by its own name and joins no set.
func (b *Book) Object(literal string) (Ref, error) {
	p, err := ParseLiteral(literal)
	if err != nil {
		return Ref{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return Ref{Addr: b.resolve("", p), prefixes: []netip.Prefix{p}}, nil
}

// Group resolves a token's literals into the token-named set, creating
// or extending it. Literals already known keep their existing object
// name, so a prefix is never defined under two names.
func (b *Book) Group(token string, literals []string) (Ref, error) {
	if token == "" {
		return Ref{}, fmt.Errorf("%w: empty group token", ErrInvalidAddress)
	}
	prefixes := make([]netip.Prefix, 0, len(literals))
	for _, l := range literals {
		p, err := ParseLiteral(l)
		if err != nil {
			return Ref{}, fmt.Errorf("group %q: %w", token, err)
		}
		prefixes = append(prefixes, p)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	set := b.sets[token]
	if set == nil {
		set = &Set{Name: token}
		b.sets[token] = set
		b.setNames = append(b.setNames, token)
	}
	for _, p := range prefixes {
		addr := b.resolve(token, p)
		if !set.contains(addr) {
			set.Addrs = append(set.Addrs, addr)
		}
	}
	snapshot := make([]netip.Prefix, len(set.Addrs))
	for i, a := range set.Addrs {
		snapshot[i] = a.Prefix
	}
	return Ref{Set: set, prefixes: snapshot}, nil
}

// resolve returns the existing object for p or creates one named with
// the token's next index. Callers hold mu.
func (b *Book) resolve(token string, p netip.Prefix) *Address {
	if a, ok := b.byPrefix[p]; ok {
		return a
	}
	n := b.counters[token]
	b.counters[token] = n + 1
	a := &Address{
		Name:   fmt.Sprintf("%s_%d", token, n),
		Token:  token,
		Prefix: p,
	}
	b.byPrefix[p] = a
	b.addrs = append(b.addrs, a)
	return a
}

// Addresses returns every resolved object in first-seen order.
func (b *Book) Addresses() []*Address {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Address(nil), b.addrs...)
}

// Sets returns every set in first-seen order. Member lists are copied
// under the lock, so callers may range them while other documents are
// still resolving against the book.
func (b *Book) Sets() []*Set {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Set, len(b.setNames))
	for i, name := range b.setNames {
		s := b.sets[name]
		out[i] = &Set{Name: s.Name, Addrs: append([]*Address(nil), s.Addrs...)}
	}
	return out
}
