package compile

import (
	"strconv"

	"github.com/pcreech/aclgen/pkg/appbook"
	"github.com/pcreech/aclgen/pkg/junos"
	"github.com/pcreech/aclgen/pkg/policy"
)

// Emitter accumulates normalized rules and assembles them into an
// output tree. Instances are single-use: empty until the first rule,
// collecting while rules arrive, finalized once the tree is built.
// Transitions run one way only.
type Emitter interface {
	AddRule(*Rule) error
	Finalize() (*junos.Tree, error)
}

type phase int

const (
	phaseEmpty phase = iota
	phaseCollecting
	phaseFinalized
)

// headerComment builds the provenance block carried on every
// regenerated rule-set. The placeholders are assembled from split
// literals so version-control keyword expansion can never fire on this
// file, and the compiler never populates them.
func headerComment(doc *policy.Document) []string {
	lines := []string{
		"$" + "Id:" + "$",
		"$" + "Date:" + "$",
		"$" + "Revision:" + "$",
	}
	if len(doc.Comments) > 0 {
		lines = append(lines, "")
		lines = append(lines, doc.Comments...)
	}
	return lines
}

// applicationsNode renders one compilation's application objects and
// sets, objects first, each group in first-seen order.
func applicationsNode(apps *appbook.Book) *junos.Node {
	n := junos.Block("applications")
	for _, app := range apps.Applications() {
		n.Add(applicationNode(app))
	}
	for _, set := range apps.Sets() {
		sn := junos.Block("application-set", set.Name)
		for _, app := range set.Apps {
			sn.Add(junos.Leaf("application", app.Name))
		}
		n.Add(sn)
	}
	return n
}

func applicationNode(app *appbook.Application) *junos.Node {
	n := junos.Block("application", app.Name)
	n.Add(junos.Leaf("protocol", app.Spec.Protocol))
	if !app.Spec.SourcePort.IsZero() {
		n.Add(junos.Leaf("source-port", app.Spec.SourcePort.String()))
	}
	if !app.Spec.Port.IsZero() {
		n.Add(junos.Leaf("destination-port", app.Spec.Port.String()))
	}
	if app.Spec.Timeout > 0 {
		n.Add(junos.Leaf("inactivity-timeout", strconv.Itoa(app.Spec.Timeout)))
	}
	return n
}
