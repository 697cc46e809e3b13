// Package policy defines the abstract access-control model the compiler
// consumes: documents of ordered terms, reusable network and service
// definitions, and the validation rules for protocols, ports, and actions.
package policy

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Errors reported while validating or resolving the policy model.
var (
	ErrInvalidDocument     = errors.New("invalid policy document")
	ErrUnsupportedProtocol = errors.New("unsupported protocol")
	ErrInvalidPort         = errors.New("invalid port")
	ErrUnknownNetwork      = errors.New("unknown network")
	ErrUnknownService      = errors.New("unknown service")
)

// Target selects an output dialect.
type Target string

const (
	// TargetStateful emits a services stateful-firewall rule-set under a
	// reusable configuration group applied via apply-groups.
	TargetStateful Target = "stateful-firewall"

	// TargetZone emits from-zone/to-zone security policies backed by the
	// global address-book.
	TargetZone Target = "zone-policy"
)

// Action is a term's disposition.
type Action int

const (
	ActionUnset Action = iota
	ActionAccept
	ActionDeny
	ActionReject
)

func (a Action) String() string {
	switch a {
	case ActionAccept:
		return "accept"
	case ActionDeny:
		return "deny"
	case ActionReject:
		return "reject"
	}
	return ""
}

// ParseAction maps an input token to an Action. The empty token maps to
// ActionUnset; whether that becomes a fail-closed reject or a hard error
// is decided during normalization, not here.
func ParseAction(s string) (Action, error) {
	switch s {
	case "":
		return ActionUnset, nil
	case "accept":
		return ActionAccept, nil
	case "deny":
		return ActionDeny, nil
	case "reject":
		return ActionReject, nil
	}
	return ActionUnset, fmt.Errorf("%w: unknown action %q", ErrInvalidDocument, s)
}

// PortRange is a single port or an inclusive range. The zero value means
// unconstrained; a single port has Lo == Hi.
type PortRange struct {
	Lo, Hi uint16
}

// IsZero reports whether the range is unconstrained.
func (p PortRange) IsZero() bool { return p.Lo == 0 && p.Hi == 0 }

func (p PortRange) String() string {
	switch {
	case p.IsZero():
		return ""
	case p.Lo == p.Hi:
		return strconv.Itoa(int(p.Lo))
	}
	return fmt.Sprintf("%d-%d", p.Lo, p.Hi)
}

// ParsePortRange parses "25" or "1024-65535". Ports run 1-65535 and a
// range must not be inverted. The empty string is the zero range.
func ParsePortRange(s string) (PortRange, error) {
	if s == "" {
		return PortRange{}, nil
	}
	loStr, hiStr, ranged := strings.Cut(s, "-")
	lo, err := parsePort(loStr)
	if err != nil {
		return PortRange{}, err
	}
	hi := lo
	if ranged {
		if hi, err = parsePort(hiStr); err != nil {
			return PortRange{}, err
		}
	}
	if hi < lo {
		return PortRange{}, fmt.Errorf("%w: inverted range %q", ErrInvalidPort, s)
	}
	return PortRange{Lo: lo, Hi: hi}, nil
}

func parsePort(s string) (uint16, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 65535 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPort, s)
	}
	return uint16(n), nil
}

// ValidProtocol reports whether p is in the recognized enumeration:
// tcp, udp, icmp, or a numeric IP protocol 0-255.
func ValidProtocol(p string) bool {
	switch p {
	case "tcp", "udp", "icmp":
		return true
	case "":
		return false
	}
	for _, r := range p {
		if r < '0' || r > '9' {
			return false
		}
	}
	n, err := strconv.Atoi(p)
	return err == nil && n <= 255
}

// ServiceSpec is one resolved protocol/port tuple. The struct value is
// the identity applications are deduplicated by.
type ServiceSpec struct {
	Protocol   string
	Port       PortRange // destination port; zero means none
	SourcePort PortRange
	Timeout    int // inactivity-timeout in seconds; 0 means platform default
}

// ServiceRef is a term's service reference: either a name resolved
// against the document definitions and then the built-in table, or an
// inline tuple. The two forms are mutually exclusive.
type ServiceRef struct {
	Name       string
	Protocol   string
	Port       string
	SourcePort string
	Timeout    int
}

// Resolve expands the reference into concrete specs, following named
// definitions (which may reference further names).
func (r ServiceRef) Resolve(defs *Definitions) ([]ServiceSpec, error) {
	return r.resolve(defs, make(map[string]bool))
}

func (r ServiceRef) resolve(defs *Definitions, visited map[string]bool) ([]ServiceSpec, error) {
	if r.Name == "" {
		return r.inline()
	}
	if r.Protocol != "" || r.Port != "" || r.SourcePort != "" {
		return nil, fmt.Errorf("%w: service reference %q mixes a name with an inline tuple", ErrInvalidDocument, r.Name)
	}
	if visited[r.Name] {
		return nil, fmt.Errorf("%w: service %q references itself", ErrInvalidDocument, r.Name)
	}
	visited[r.Name] = true
	if defs != nil {
		if refs, ok := defs.Services[r.Name]; ok {
			var specs []ServiceSpec
			for _, ref := range refs {
				expanded, err := ref.resolve(defs, visited)
				if err != nil {
					return nil, fmt.Errorf("service %q: %w", r.Name, err)
				}
				specs = append(specs, expanded...)
			}
			return specs, nil
		}
	}
	if specs, ok := BuiltinServices[r.Name]; ok {
		return append([]ServiceSpec(nil), specs...), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownService, r.Name)
}

func (r ServiceRef) inline() ([]ServiceSpec, error) {
	if !ValidProtocol(r.Protocol) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProtocol, r.Protocol)
	}
	port, err := ParsePortRange(r.Port)
	if err != nil {
		return nil, err
	}
	src, err := ParsePortRange(r.SourcePort)
	if err != nil {
		return nil, err
	}
	return []ServiceSpec{{Protocol: r.Protocol, Port: port, SourcePort: src, Timeout: r.Timeout}}, nil
}

// Definitions are the reusable named networks and services shared by all
// documents decoded from one input. Network members are CIDR literals or
// further network tokens; service members are tuples or further names.
type Definitions struct {
	Networks map[string][]string
	Services map[string][]ServiceRef
}

// ExpandNetwork flattens a network token to its literals, following
// nested token references with cycle detection.
func (d *Definitions) ExpandNetwork(token string) ([]string, error) {
	return d.expandNetwork(token, make(map[string]bool))
}

func (d *Definitions) expandNetwork(token string, visited map[string]bool) ([]string, error) {
	if visited[token] {
		return nil, fmt.Errorf("%w: cycle through %q", ErrUnknownNetwork, token)
	}
	visited[token] = true
	if d == nil || d.Networks == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNetwork, token)
	}
	members, ok := d.Networks[token]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNetwork, token)
	}
	var result []string
	for _, m := range members {
		if _, nested := d.Networks[m]; nested {
			expanded, err := d.expandNetwork(m, visited)
			if err != nil {
				return nil, fmt.Errorf("network %q: %w", token, err)
			}
			result = append(result, expanded...)
			continue
		}
		result = append(result, m)
	}
	return result, nil
}

// Term is one firewall rule: match clauses plus an action. An empty
// Source or Destination matches any; how "any" renders differs per
// dialect and is decided by the emitters.
type Term struct {
	Name        string
	Comment     string
	Source      []string // CIDR literals or network tokens
	Destination []string
	Services    []ServiceRef
	Action      Action
	Log         bool
	Count       bool

	// Verbatim lines bypass compilation: when a term carries lines for
	// the selected target they are emitted as-is, in place of the term,
	// and no match clauses are generated for it.
	Verbatim map[Target][]string
}

// Document is one compilable policy: a named, ordered term list plus the
// dialect contexts it may be rendered into. Term order is significant
// (first match wins) and is preserved through every stage.
type Document struct {
	Name      string
	Direction string // stateful match-direction; defaults to input-output
	FromZone  string
	ToZone    string
	Comments  []string // header comment lines after the metadata placeholders
	Terms     []*Term
	Defs      *Definitions
}

// MatchDirection returns the stateful-dialect direction.
func (d *Document) MatchDirection() string {
	if d.Direction == "" {
		return "input-output"
	}
	return d.Direction
}

// Validate checks document structure. Resolution checks (address
// parsing, service expansion, duplicate term names) happen during
// compilation; this catches what no target could accept.
func (d *Document) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: document has no name", ErrInvalidDocument)
	}
	for _, t := range d.Terms {
		if t == nil || t.Name == "" {
			return fmt.Errorf("%w: %s contains an unnamed term", ErrInvalidDocument, d.Name)
		}
		if len(t.Services) == 0 && len(t.Verbatim) == 0 {
			return fmt.Errorf("%w: term %q has no service reference", ErrInvalidDocument, t.Name)
		}
	}
	return nil
}

// File is the result of decoding one policy input: shared definitions
// plus the documents referencing them.
type File struct {
	Defs      *Definitions
	Documents []*Document
}
