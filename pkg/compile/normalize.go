package compile

import (
	"fmt"

	"github.com/pcreech/aclgen/pkg/addrbook"
	"github.com/pcreech/aclgen/pkg/appbook"
	"github.com/pcreech/aclgen/pkg/policy"
)

// Rule is one normalized term: references resolved into named objects,
// action pinned, position in the rule-set assigned. A rule with IsRaw
// set carries verbatim output lines, possibly none, and nothing else.
type Rule struct {
	Index   int
	Name    string
	Comment string
	Action  policy.Action
	Src     []addrbook.Ref
	Dst     []addrbook.Ref
	Apps    *appbook.Set
	Log     bool
	Count   bool
	IsRaw   bool
	Raw     []string
}

// setBaseFunc derives the application-set base name for a term, which
// is the one naming rule that differs between dialects.
type setBaseFunc func(*policy.Document, *policy.Term) string

func normalize(doc *policy.Document, target policy.Target, book *addrbook.Book, apps *appbook.Book, base setBaseFunc, opts Options) ([]*Rule, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(doc.Terms))
	rules := make([]*Rule, 0, len(doc.Terms))
	for i, term := range doc.Terms {
		if seen[term.Name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTermName, term.Name)
		}
		seen[term.Name] = true

		if lines, ok := term.Verbatim[target]; ok {
			rules = append(rules, &Rule{
				Index: i,
				Name:  term.Name,
				IsRaw: true,
				Raw:   append([]string(nil), lines...),
			})
			continue
		}
		if len(term.Verbatim) > 0 && len(term.Services) == 0 {
			// Verbatim for another target only; this term contributes
			// nothing here.
			continue
		}

		action := term.Action
		if action == policy.ActionUnset {
			if opts.RequireAction {
				return nil, fmt.Errorf("%w: term %q", ErrMissingAction, term.Name)
			}
			// Fail closed rather than inferring a permissive default.
			action = policy.ActionReject
		}

		src, err := resolveAddrs(book, doc.Defs, term.Source)
		if err != nil {
			return nil, fmt.Errorf("term %q: %w", term.Name, err)
		}
		dst, err := resolveAddrs(book, doc.Defs, term.Destination)
		if err != nil {
			return nil, fmt.Errorf("term %q: %w", term.Name, err)
		}

		var specs []policy.ServiceSpec
		for _, ref := range term.Services {
			expanded, err := ref.Resolve(doc.Defs)
			if err != nil {
				return nil, fmt.Errorf("term %q: %w", term.Name, err)
			}
			specs = append(specs, expanded...)
		}

		rules = append(rules, &Rule{
			Index:   i,
			Name:    term.Name,
			Comment: term.Comment,
			Action:  action,
			Src:     src,
			Dst:     dst,
			Apps:    apps.ResolveTerm(base(doc, term), specs),
			Log:     term.Log,
			Count:   term.Count,
		})
	}
	return rules, nil
}

// resolveAddrs maps one match side's entries through the address-book:
// defined network tokens become sets, everything else must parse as a
// literal and becomes a bare object.
func resolveAddrs(book *addrbook.Book, defs *policy.Definitions, entries []string) ([]addrbook.Ref, error) {
	var refs []addrbook.Ref
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		var (
			ref addrbook.Ref
			err error
		)
		if defs != nil && defs.Networks != nil {
			if _, ok := defs.Networks[e]; ok {
				literals, lerr := defs.ExpandNetwork(e)
				if lerr != nil {
					return nil, lerr
				}
				ref, err = book.Group(e, literals)
			} else {
				ref, err = book.Object(e)
			}
		} else {
			ref, err = book.Object(e)
		}
		if err != nil {
			return nil, err
		}
		if !seen[ref.Name()] {
			seen[ref.Name()] = true
			refs = append(refs, ref)
		}
	}
	return refs, nil
}
