package policy

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// portScalar accepts both quoted and bare YAML scalars, so `port: 25`
// and `port: "1024-65535"` both decode.
type portScalar string

func (p *portScalar) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("port must be a scalar, got %s", value.Tag)
	}
	*p = portScalar(value.Value)
	return nil
}

type yamlFile struct {
	Networks map[string][]string      `yaml:"networks,omitempty"`
	Services map[string][]yamlService `yaml:"services,omitempty"`
	Policies []yamlPolicy             `yaml:"policies"`
}

type yamlService struct {
	Name       string     `yaml:"name,omitempty"`
	Protocol   string     `yaml:"protocol,omitempty"`
	Port       portScalar `yaml:"port,omitempty"`
	SourcePort portScalar `yaml:"source_port,omitempty"`
	Timeout    int        `yaml:"timeout,omitempty"`
}

type yamlPolicy struct {
	Name      string     `yaml:"name"`
	Direction string     `yaml:"direction,omitempty"`
	FromZone  string     `yaml:"from_zone,omitempty"`
	ToZone    string     `yaml:"to_zone,omitempty"`
	Comments  []string   `yaml:"comments,omitempty"`
	Terms     []yamlTerm `yaml:"terms"`
}

type yamlTerm struct {
	Name        string              `yaml:"name"`
	Comment     string              `yaml:"comment,omitempty"`
	Source      []string            `yaml:"source,omitempty"`
	Destination []string            `yaml:"destination,omitempty"`
	Services    []yamlService       `yaml:"services,omitempty"`
	Action      string              `yaml:"action,omitempty"`
	Log         bool                `yaml:"log,omitempty"`
	Count       bool                `yaml:"count,omitempty"`
	Verbatim    map[string][]string `yaml:"verbatim,omitempty"`
}

// DecodeYAML decodes one YAML policy input into the model. Unknown
// fields are rejected. No file I/O happens here; the host hands in the
// bytes.
func DecodeYAML(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var raw yamlFile
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty input", ErrInvalidDocument)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	defs := &Definitions{
		Networks: raw.Networks,
		Services: make(map[string][]ServiceRef, len(raw.Services)),
	}
	for name, svcs := range raw.Services {
		for _, s := range svcs {
			defs.Services[name] = append(defs.Services[name], s.ref())
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

func (s yamlService) ref() ServiceRef {
	return ServiceRef{
		Name:       s.Name,
		Protocol:   s.Protocol,
		Port:       string(s.Port),
		SourcePort: string(s.SourcePort),
		Timeout:    s.Timeout,
	}
}

func (t yamlTerm) term() (*Term, error) {
	action, err := ParseAction(t.Action)
	if err != nil {
		return nil, fmt.Errorf("term %q: %w", t.Name, err)
	}
	verbatim, err := verbatimTargets(t.Verbatim)
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

func verbatimTargets(raw map[string][]string) (map[Target][]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[Target][]string, len(raw))
	for k, lines := range raw {
		switch t := Target(k); t {
		case TargetStateful, TargetZone:
			out[t] = lines
		default:
			return nil, fmt.Errorf("%w: unknown verbatim target %q", ErrInvalidDocument, k)
		}
	}
	return out, nil
}
