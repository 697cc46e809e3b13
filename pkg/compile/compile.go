// Package compile turns abstract policy documents into rendered
// configuration trees for the supported output dialects. Each document
// compiles in one synchronous pass: addresses and services resolve into
// named objects, terms normalize into ordered rules, and a
// dialect-specific emitter assembles the output tree. Any resolution
// error aborts the whole document; partial policy output is never
// produced.
package compile

import (
	"errors"
	"fmt"

	"github.com/pcreech/aclgen/pkg/addrbook"
	"github.com/pcreech/aclgen/pkg/appbook"
	"github.com/pcreech/aclgen/pkg/junos"
	"github.com/pcreech/aclgen/pkg/policy"
)

var (
	// ErrDuplicateTermName reports two terms sharing a name within one
	// filter, which would make rule references ambiguous.
	ErrDuplicateTermName = errors.New("duplicate term name")

	// ErrMissingAction reports a term without an action when
	// Options.RequireAction is set.
	ErrMissingAction = errors.New("missing action")

	// ErrFinalized reports reuse of an emitter after Finalize. A
	// re-compile always starts a fresh instance.
	ErrFinalized = errors.New("emitter already finalized")
)

// EmptyMatch selects how the zone dialect renders a term side with no
// address constraint. The stateful dialect always omits the clause.
type EmptyMatch int

const (
	// EmptyDefault applies the per-side convention: any for sources, an
	// explicit empty list for destinations.
	EmptyDefault EmptyMatch = iota
	// EmptyOmit drops the clause.
	EmptyOmit
	// EmptyAny renders the any token.
	EmptyAny
	// EmptyList renders an explicit empty list.
	EmptyList
)

// Options tune one compilation. The zero value is ready to use.
type Options struct {
	// RequireAction turns a term without an action into an error.
	// Without it, such terms get the fail-closed reject action.
	RequireAction bool

	// ZoneEmptySource and ZoneEmptyDestination pin the zone-dialect
	// rendering of unconstrained match sides.
	ZoneEmptySource      EmptyMatch
	ZoneEmptyDestination EmptyMatch

	// Book, when set, is a global address-book shared across documents.
	// When nil each compilation gets a fresh book and object naming
	// restarts at _0.
	Book *addrbook.Book
}

func (o Options) zoneEmptySource() EmptyMatch {
	if o.ZoneEmptySource == EmptyDefault {
		return EmptyAny
	}
	return o.ZoneEmptySource
}

func (o Options) zoneEmptyDestination() EmptyMatch {
	if o.ZoneEmptyDestination == EmptyDefault {
		return EmptyList
	}
	return o.ZoneEmptyDestination
}

// Compile translates one document for the selected target and returns
// the finished output tree.
func Compile(doc *policy.Document, target policy.Target, opts Options) (*junos.Tree, error) {
	book := opts.Book
	if book == nil {
		book = addrbook.New()
	}
	apps := appbook.New()

	var em Emitter
	var base setBaseFunc
	switch target {
	case policy.TargetStateful:
		em = newStatefulEmitter(doc, apps)
		base = func(d *policy.Document, t *policy.Term) string { return d.Name + "-" + t.Name }
	case policy.TargetZone:
		if doc.FromZone == "" || doc.ToZone == "" {
			return nil, fmt.Errorf("%w: %s: zone-policy target needs a from-zone and to-zone", policy.ErrInvalidDocument, doc.Name)
		}
		em = newZoneEmitter(doc, book, apps, opts)
		base = func(_ *policy.Document, t *policy.Term) string { return t.Name }
	default:
		return nil, fmt.Errorf("%w: unknown target %q", policy.ErrInvalidDocument, target)
	}

	rules, err := normalize(doc, target, book, apps, base, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", doc.Name, err)
	}
	for _, r := range rules {
		if err := em.AddRule(r); err != nil {
			return nil, fmt.Errorf("%s: %w", doc.Name, err)
		}
	}
	tree, err := em.Finalize()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", doc.Name, err)
	}
	return tree, nil
}

// Render compiles a document and serializes the result.
func Render(doc *policy.Document, target policy.Target, opts Options) (string, error) {
	tree, err := Compile(doc, target, opts)
	if err != nil {
		return "", err
	}
	return tree.Format()
}
