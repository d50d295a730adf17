package tools

import (
	"fmt"
	"net/netip"
	"net/url"
	"strings"
)

var blockedHosts = map[string]bool{
	"localhost":                true,
	"metadata.google.internal": true,
}

// Ranges that netip has no predicate for but which must never be reached
// from a tool call.
var reservedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("192.0.2.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("198.51.100.0/24"),
	netip.MustParsePrefix("203.0.113.0/24"),
	netip.MustParsePrefix("240.0.0.0/4"),
	netip.MustParsePrefix("2001:db8::/32"),
	netip.MustParsePrefix("64:ff9b::/96"),
}

// checkURL applies a static SSRF policy to a user-supplied URL. Hostnames
// are not resolved; only literal IP hosts are range-checked.
func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL")
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("only http and https URLs are allowed")
	}

	host := strings.ToLower(u.Hostname())
	if blockedHosts[host] {
		return fmt.Errorf("'%s' is not an allowed host", host)
	}

	addr, err := netip.ParseAddr(host)
	if err != nil {
		return nil
	}
	addr = addr.Unmap()

	if addr.IsPrivate() || addr.IsLoopback() || addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() || addr.IsUnspecified() || addr.IsMulticast() {
		return fmt.Errorf("private and internal IP addresses are not allowed")
	}
	for _, p := range reservedPrefixes {
		if p.Contains(addr) {
			return fmt.Errorf("private and internal IP addresses are not allowed")
		}
	}
	return nil
}
