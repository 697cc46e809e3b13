// Package appbook deduplicates the protocol/port tuples a policy
// references into named application objects grouped into per-term
// application-sets.
package appbook

import (
	"fmt"

	"github.com/pcreech/aclgen/pkg/policy"
)

// Application is a named wrapper around one service tuple.
type Application struct {
	Name string
	Spec policy.ServiceSpec
}

// Set is the application-set wrapping one term's tuples. Every term gets
// exactly one set, single-member or not: both dialects match
// applications by named token, and uniform materialization keeps
// repeated match blocks referencing identical names instead of
// re-emitting equivalent objects under fresh ones.
type Set struct {
	Name string
	Apps []*Application
}

func (s *Set) contains(a *Application) bool {
	for _, m := range s.Apps {
		if m == a {
			return true
		}
	}
	return false
}

// Book deduplicates application objects across the terms of one
// compilation. The first term to use a tuple names it <base>-app<N>,
// N being the tuple's 1-based position within that term; later terms
// reuse the object inside their own sets.
type Book struct {
	byIdent map[policy.ServiceSpec]*Application
	apps    []*Application
	sets    []*Set
}

// New returns an empty book.
func New() *Book {
	return &Book{byIdent: make(map[policy.ServiceSpec]*Application)}
}

// ResolveTerm materializes the set named <base>-app for one term's
// resolved tuples. Tuples the book has seen before keep their original
// object names.
func (b *Book) ResolveTerm(base string, specs []policy.ServiceSpec) *Set {
	set := &Set{Name: base + "-app"}
	for i, spec := range specs {
		app, ok := b.byIdent[spec]
		if !ok {
			app = &Application{
				Name: fmt.Sprintf("%s-app%d", base, i+1),
				Spec: spec,
			}
			b.byIdent[spec] = app
			b.apps = append(b.apps, app)
		}
		if !set.contains(app) {
			set.Apps = append(set.Apps, app)
		}
	}
	b.sets = append(b.sets, set)
	return set
}

// Applications returns every distinct object in first-seen order.
func (b *Book) Applications() []*Application {
	return b.apps
}

// Sets returns every term set in creation order.
func (b *Book) Sets() []*Set {
	return b.sets
}
