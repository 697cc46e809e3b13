package policy

// BuiltinServices contains well-known service names terms may reference
// without a definitions entry. Document definitions shadow these.
var BuiltinServices = map[string][]ServiceSpec{
	// --- Basic services ---
	"ftp":    {{Protocol: "tcp", Port: PortRange{21, 21}}},
	"ssh":    {{Protocol: "tcp", Port: PortRange{22, 22}}},
	"telnet": {{Protocol: "tcp", Port: PortRange{23, 23}}},
	"smtp":   {{Protocol: "tcp", Port: PortRange{25, 25}}},
	"smtps":  {{Protocol: "tcp", Port: PortRange{465, 465}}},
	"http":   {{Protocol: "tcp", Port: PortRange{80, 80}}},
	"https":  {{Protocol: "tcp", Port: PortRange{443, 443}}},

	// --- Name service ---
	"dns":     {{Protocol: "tcp", Port: PortRange{53, 53}}, {Protocol: "udp", Port: PortRange{53, 53}}},
	"dns-tcp": {{Protocol: "tcp", Port: PortRange{53, 53}}},
	"dns-udp": {{Protocol: "udp", Port: PortRange{53, 53}}},

	// --- Mail retrieval ---
	"pop3":  {{Protocol: "tcp", Port: PortRange{110, 110}}},
	"imap":  {{Protocol: "tcp", Port: PortRange{143, 143}}},
	"imaps": {{Protocol: "tcp", Port: PortRange{993, 993}}},

	// --- Network management ---
	"ntp":    {{Protocol: "udp", Port: PortRange{123, 123}}},
	"snmp":   {{Protocol: "udp", Port: PortRange{161, 161}}},
	"syslog": {{Protocol: "udp", Port: PortRange{514, 514}}},
	"tftp":   {{Protocol: "udp", Port: PortRange{69, 69}}},

	// --- Routing & auth ---
	"bgp":    {{Protocol: "tcp", Port: PortRange{179, 179}}},
	"ldap":   {{Protocol: "tcp", Port: PortRange{389, 389}}},
	"radius": {{Protocol: "udp", Port: PortRange{1812, 1812}}},
	"tacacs": {{Protocol: "tcp", Port: PortRange{49, 49}}},

	// --- VPN ---
	"ike": {{Protocol: "udp", Port: PortRange{500, 500}}},
	"esp": {{Protocol: "50"}},
	"gre": {{Protocol: "47"}},

	// --- Windows ---
	"smb": {{Protocol: "tcp", Port: PortRange{445, 445}}},
	"rdp": {{Protocol: "tcp", Port: PortRange{3389, 3389}}},

	// --- Diagnostics ---
	"ping":       {{Protocol: "icmp"}},
	"traceroute": {{Protocol: "udp", Port: PortRange{33434, 33523}}},

	// --- Wildcards ---
	"tcp-any": {{Protocol: "tcp"}},
	"udp-any": {{Protocol: "udp"}},

	// --- Ephemeral responders ---
	"tcp-established": {{Protocol: "tcp", Port: PortRange{1024, 65535}}},
	"udp-established": {{Protocol: "udp", Port: PortRange{1024, 65535}}},
}
