package search

// Expansions maps a phrase, matched as a lowercase substring of the query,
// to the synonyms folded into the expanded query. Frozen at build time.
// Expansion is applied to queries only; indexed postings do not depend on
// this table.
var Expansions = map[string][]string{
	"sql injection":         {"sqli", "injection attack", "database injection"},
	"sqli":                  {"sql injection", "injection attack"},
	"xss":                   {"cross-site scripting", "script injection"},
	"cross-site scripting":  {"xss", "script injection"},
	"csrf":                  {"cross-site request forgery", "request forgery"},
	"idor":                  {"insecure direct object reference", "object reference"},
	"ssrf":                  {"server-side request forgery", "request forgery"},
	"rce":                   {"remote code execution", "code execution"},
	"lfi":                   {"local file inclusion", "file inclusion"},
	"rfi":                   {"remote file inclusion", "file inclusion"},
	"dos":                   {"denial of service", "availability attack"},
	"mitm":                  {"man in the middle", "man-in-the-middle"},
	"dns":                   {"domain name system", "name resolution"},
	"tcp":                   {"transmission control protocol", "transport layer"},
	"udp":                   {"user datagram protocol", "transport layer"},
	"http":                  {"hypertext transfer protocol", "web protocol"},
	"https":                 {"http secure", "tls", "ssl"},
	"api":                   {"application programming interface", "endpoint"},
	"rest":                  {"representational state transfer", "restful api"},
	"osi":                   {"open systems interconnection", "network layers"},
	"vpn":                   {"virtual private network", "tunnel"},
	"ssh":                   {"secure shell", "remote shell"},
	"gdpr":                  {"general data protection regulation", "data privacy"},
	"ctf":                   {"capture the flag", "security competition"},
	"owasp":                 {"open web application security project", "web security"},
	"cidr":                  {"classless inter-domain routing", "ip range"},
	"nat":                   {"network address translation", "address translation"},
	"dhcp":                  {"dynamic host configuration protocol", "ip assignment"},
	"arp":                   {"address resolution protocol", "mac resolution"},
	"vlan":                  {"virtual local area network", "network segmentation"},
	"firewall":              {"packet filter", "network security device"},
	"regex":                 {"regular expression", "pattern matching"},
	"orm":                   {"object relational mapping", "database mapping"},
	"jwt":                   {"json web token", "authentication token"},
	"cors":                  {"cross-origin resource sharing", "origin policy"},
}

// SubjectContext maps a subject id to extra context terms injected into
// every query scoped to that subject.
var SubjectContext = map[string][]string{
	"networks":   {"protocol", "packet", "routing", "topology"},
	"pentesting": {"exploit", "vulnerability", "attack", "payload"},
	"backend":    {"server", "api", "database", "service"},
	"linux":      {"shell", "kernel", "filesystem", "permissions"},
	"ctf":        {"flag", "challenge", "exploit", "writeup"},
	"scripting":  {"automation", "bash", "python", "command"},
	"privacy":    {"data protection", "anonymity", "encryption", "consent"},
}
