package policy

import (
	"errors"
	"testing"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		in      string
		want    Action
		wantErr bool
	}{
		{"", ActionUnset, false},
		{"accept", ActionAccept, false},
		{"deny", ActionDeny, false},
		{"reject", ActionReject, false},
		{"permit", ActionUnset, true},
		{"ACCEPT", ActionUnset, true},
	}
	for _, tt := range tests {
		got, err := ParseAction(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidDocument) {
				t.Errorf("ParseAction(%q) err = %v, want ErrInvalidDocument", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAction(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAction(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParsePortRange(t *testing.T) {
	tests := []struct {
		in      string
		want    PortRange
		wantErr bool
	}{
		{"", PortRange{}, false},
		{"25", PortRange{Lo: 25, Hi: 25}, false},
		{"1024-65535", PortRange{Lo: 1024, Hi: 65535}, false},
		{"25 - 30", PortRange{Lo: 25, Hi: 30}, false},
		{"0", PortRange{}, true},
		{"65536", PortRange{}, true},
		{"443-80", PortRange{}, true},
		{"80-", PortRange{}, true},
		{"-80", PortRange{}, true},
		{"abc", PortRange{}, true},
	}
	for _, tt := range tests {
		got, err := ParsePortRange(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidPort) {
				t.Errorf("ParsePortRange(%q) err = %v, want ErrInvalidPort", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePortRange(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePortRange(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPortRangeString(t *testing.T) {
	tests := []struct {
		in   PortRange
		want string
	}{
		{PortRange{}, ""},
		{PortRange{Lo: 25, Hi: 25}, "25"},
		{PortRange{Lo: 1024, Hi: 65535}, "1024-65535"},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("%+v.String() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidProtocol(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"tcp", true},
		{"udp", true},
		{"icmp", true},
		{"0", true},
		{"6", true},
		{"255", true},
		{"256", false},
		{"", false},
		{"TCP", false},
		{"+6", false},
		{"-1", false},
		{"1e2", false},
	}
	for _, tt := range tests {
		if got := ValidProtocol(tt.in); got != tt.want {
			t.Errorf("ValidProtocol(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestServiceRefResolveInline(t *testing.T) {
	specs, err := ServiceRef{Protocol: "tcp", Port: "25"}.Resolve(nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(specs) != 1 {
		t.Fatalf("expected 1 spec, got %d", len(specs))
	}
	want := ServiceSpec{Protocol: "tcp", Port: PortRange{Lo: 25, Hi: 25}}
	if specs[0] != want {
		t.Errorf("spec = %+v, want %+v", specs[0], want)
	}

	if _, err := (ServiceRef{Protocol: "sctp"}).Resolve(nil); !errors.Is(err, ErrUnsupportedProtocol) {
		t.Errorf("bad protocol err = %v, want ErrUnsupportedProtocol", err)
	}
	if _, err := (ServiceRef{Protocol: "tcp", Port: "99999"}).Resolve(nil); !errors.Is(err, ErrInvalidPort) {
		t.Errorf("bad port err = %v, want ErrInvalidPort", err)
	}
}

func TestServiceRefResolveNamed(t *testing.T) {
	defs := &Definitions{
		Services: map[string][]ServiceRef{
			"mail": {
				{Protocol: "tcp", Port: "25"},
				{Protocol: "tcp", Port: "465"},
			},
			"web": {
				{Name: "http"},
				{Name: "https"},
			},
			// Definitions shadow the built-in table.
			"ssh": {
				{Protocol: "tcp", Port: "2222"},
			},
		},
	}

	specs, err := ServiceRef{Name: "mail"}.Resolve(defs)
	if err != nil {
		t.Fatalf("Resolve(mail): %v", err)
	}
	if len(specs) != 2 || specs[0].Port.Lo != 25 || specs[1].Port.Lo != 465 {
		t.Errorf("mail specs = %+v", specs)
	}

	specs, err = ServiceRef{Name: "web"}.Resolve(defs)
	if err != nil {
		t.Fatalf("Resolve(web): %v", err)
	}
	if len(specs) != 2 || specs[0].Port.Lo != 80 || specs[1].Port.Lo != 443 {
		t.Errorf("web specs = %+v", specs)
	}

	specs, err = ServiceRef{Name: "ssh"}.Resolve(defs)
	if err != nil {
		t.Fatalf("Resolve(ssh): %v", err)
	}
	if len(specs) != 1 || specs[0].Port.Lo != 2222 {
		t.Errorf("shadowed ssh specs = %+v", specs)
	}
}

func TestServiceRefResolveBuiltin(t *testing.T) {
	specs, err := ServiceRef{Name: "dns"}.Resolve(nil)
	if err != nil {
		t.Fatalf("Resolve(dns): %v", err)
	}
	if len(specs) != 2 {
		t.Fatalf("expected tcp and udp specs for dns, got %d", len(specs))
	}
	if specs[0].Protocol != "tcp" || specs[1].Protocol != "udp" {
		t.Errorf("dns specs = %+v", specs)
	}

	if _, err := (ServiceRef{Name: "no-such-service"}).Resolve(nil); !errors.Is(err, ErrUnknownService) {
		t.Errorf("unknown service err = %v, want ErrUnknownService", err)
	}
}

func TestServiceRefResolveErrors(t *testing.T) {
	// A name combined with an inline tuple is ambiguous.
	_, err := ServiceRef{Name: "ssh", Protocol: "tcp"}.Resolve(nil)
	if !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("mixed ref err = %v, want ErrInvalidDocument", err)
	}

	// Definition cycles terminate.
	defs := &Definitions{
		Services: map[string][]ServiceRef{
			"a": {{Name: "b"}},
			"b": {{Name: "a"}},
		},
	}
	_, err = ServiceRef{Name: "a"}.Resolve(defs)
	if !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("cyclic ref err = %v, want ErrInvalidDocument", err)
	}
}

func TestExpandNetwork(t *testing.T) {
	defs := &Definitions{
		Networks: map[string][]string{
			"CORP": {"10.0.0.0/8"},
			"LABS": {"172.16.0.0/12", "2001:db8::/32"},
			"ALL":  {"CORP", "LABS"},
		},
	}

	got, err := defs.ExpandNetwork("ALL")
	if err != nil {
		t.Fatalf("ExpandNetwork: %v", err)
	}
	want := []string{"10.0.0.0/8", "172.16.0.0/12", "2001:db8::/32"}
	if len(got) != len(want) {
		t.Fatalf("expected %d literals, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("literal %d: got %q, want %q", i, got[i], want[i])
		}
	}

	if _, err := defs.ExpandNetwork("NOPE"); !errors.Is(err, ErrUnknownNetwork) {
		t.Errorf("unknown token err = %v, want ErrUnknownNetwork", err)
	}
}

func TestExpandNetworkCycle(t *testing.T) {
	defs := &Definitions{
		Networks: map[string][]string{
			"A": {"B"},
			"B": {"A"},
		},
	}
	if _, err := defs.ExpandNetwork("A"); !errors.Is(err, ErrUnknownNetwork) {
		t.Errorf("cycle err = %v, want ErrUnknownNetwork", err)
	}
}

func TestDocumentValidate(t *testing.T) {
	valid := &Document{
		Name: "edge-out",
		Terms: []*Term{
			{Name: "allow-mail", Services: []ServiceRef{{Name: "smtp"}}},
			{Name: "raw-only", Verbatim: map[Target][]string{TargetStateful: {"x;"}}},
		},
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid document: %v", err)
	}

	tests := []struct {
		name string
		doc  *Document
	}{
		{"no document name", &Document{}},
		{"unnamed term", &Document{Name: "d", Terms: []*Term{{Services: []ServiceRef{{Name: "smtp"}}}}}},
		{"term without services", &Document{Name: "d", Terms: []*Term{{Name: "t"}}}},
	}
	for _, tt := range tests {
		if err := tt.doc.Validate(); !errors.Is(err, ErrInvalidDocument) {
			t.Errorf("%s: err = %v, want ErrInvalidDocument", tt.name, err)
		}
	}
}

func TestMatchDirection(t *testing.T) {
	d := &Document{Name: "d"}
	if got := d.MatchDirection(); got != "input-output" {
		t.Errorf("default direction = %q, want input-output", got)
	}
	d.Direction = "output"
	if got := d.MatchDirection(); got != "output" {
		t.Errorf("direction = %q, want output", got)
	}
}
