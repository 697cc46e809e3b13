package policy

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

type hclFile struct {
	Networks []hclNetwork    `hcl:"network,block"`
	Services []hclServiceDef `hcl:"service,block"`
	Policies []hclPolicy     `hcl:"policy,block"`
}

type hclNetwork struct {
	Token    string   `hcl:"token,label"`
	Prefixes []string `hcl:"prefixes"`
}

type hclServiceDef struct {
	Name    string       `hcl:"name,label"`
	Entries []hclService `hcl:"entry,block"`
}

type hclService struct {
	Name       string `hcl:"name,optional"`
	Protocol   string `hcl:"protocol,optional"`
	Port       string `hcl:"port,optional"`
	SourcePort string `hcl:"source_port,optional"`
	Timeout    int    `hcl:"timeout,optional"`
}

type hclPolicy struct {
	Name      string    `hcl:"name,label"`
	Direction string    `hcl:"direction,optional"`
	FromZone  string    `hcl:"from_zone,optional"`
	ToZone    string    `hcl:"to_zone,optional"`
	Comments  []string  `hcl:"comments,optional"`
	Terms     []hclTerm `hcl:"term,block"`
}

type hclTerm struct {
	Name        string        `hcl:"name,label"`
	Comment     string        `hcl:"comment,optional"`
	Source      []string      `hcl:"source,optional"`
	Destination []string      `hcl:"destination,optional"`
	Action      string        `hcl:"action,optional"`
	Log         bool          `hcl:"log,optional"`
	Count       bool          `hcl:"count,optional"`
	Services    []hclService  `hcl:"service,block"`
	Verbatim    []hclVerbatim `hcl:"verbatim,block"`
}

type hclVerbatim struct {
	Target string   `hcl:"target,label"`
	Lines  []string `hcl:"lines"`
}

// DecodeHCL decodes one HCL policy input into the model. filename only
// labels diagnostics; the bytes come from the host.
func DecodeHCL(filename string, data []byte) (*File, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: parse %s: %s", ErrInvalidDocument, filename, diags.Error())
	}

	var raw hclFile
	if diags := gohcl.DecodeBody(f.Body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("%w: decode %s: %s", ErrInvalidDocument, filename, diags.Error())
	}

	defs := &Definitions{
		Networks: make(map[string][]string, len(raw.Networks)),
		Services: make(map[string][]ServiceRef, len(raw.Services)),
	}
	for _, n := range raw.Networks {
		defs.Networks[n.Token] = n.Prefixes
	}
	for _, s := range raw.Services {
		for _, e := range s.Entries {
			defs.Services[s.Name] = append(defs.Services[s.Name], e.ref())
		}
	}

	file := &File{Defs: defs}
	for _, p := range raw.Policies {
		doc := &Document{
			Name:      p.Name,
			Direction: p.Direction,
			FromZone:  p.FromZone,
			ToZone:    p.ToZone,
			Comments:  p.Comments,
			Defs:      defs,
		}
		for _, t := range p.Terms {
			term, err := t.term()
			if err != nil {
				return nil, fmt.Errorf("policy %q: %w", p.Name, err)
			}
			doc.Terms = append(doc.Terms, term)
		}
		if err := doc.Validate(); err != nil {
			return nil, err
		}
		file.Documents = append(file.Documents, doc)
	}
	return file, nil
}

func (s hclService) ref() ServiceRef {
	return ServiceRef{
		Name:       s.Name,
		Protocol:   s.Protocol,
		Port:       s.Port,
		SourcePort: s.SourcePort,
		Timeout:    s.Timeout,
	}
}

func (t hclTerm) term() (*Term, error) {
	action, err := ParseAction(t.Action)
	if err != nil {
		return nil, fmt.Errorf("term %q: %w", t.Name, err)
	}
	raw := make(map[string][]string, len(t.Verbatim))
	for _, v := range t.Verbatim {
		raw[v.Target] = append(raw[v.Target], v.Lines...)
	}
	verbatim, err := verbatimTargets(raw)
	if err != nil {
		return nil, fmt.Errorf("term %q: %w", t.Name, err)
	}
	term := &Term{
		Name:        t.Name,
		Comment:     t.Comment,
		Source:      t.Source,
		Destination: t.Destination,
		Action:      action,
		Log:         t.Log,
		Count:       t.Count,
		Verbatim:    verbatim,
	}
	for _, s := range t.Services {
		term.Services = append(term.Services, s.ref())
	}
	return term, nil
}
