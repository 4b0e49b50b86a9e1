package connectors

import (
	"errors"
	"fmt"
	"net/netip"
	"net/url"
	"strings"
)

// ErrHTTPTargetRejected indicates an outbound URL was blocked before any
// network call was attempted.
var ErrHTTPTargetRejected = errors.New("http target rejected")

// Guard validates arbitrary user-configured URLs before the engine dials
// them. It applies to the http_request and webhook node types; the fixed
// provider endpoints (Slack, Telegram, Twilio, Meta, OpenAI) are not
// guarded.
//
// AllowLoopback exists for local development and tests only; production
// configuration leaves it false.
type Guard struct {
	// AllowedHosts, when non-empty, restricts targets to hostnames that
	// match an entry exactly or end with ".{entry}".
	AllowedHosts []string

	AllowLoopback bool
}

// IsTargetRejected checks if an error indicates a blocked outbound target.
func IsTargetRejected(err error) bool {
	return errors.Is(err, ErrHTTPTargetRejected)
}

// Check validates a raw URL against the guard policy. It must be called
// before any request is issued.
func (g *Guard) Check(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: unparseable url %q", ErrHTTPTargetRejected, rawURL)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("%w: scheme %q not allowed", ErrHTTPTargetRejected, parsed.Scheme)
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return fmt.Errorf("%w: missing host", ErrHTTPTargetRejected)
	}

	if !g.AllowLoopback {
		if host == "localhost" || strings.HasSuffix(host, ".local") {
			return fmt.Errorf("%w: host %q is internal", ErrHTTPTargetRejected, host)
		}

		if addr, err := netip.ParseAddr(host); err == nil {
			if isPrivateAddr(addr) {
				return fmt.Errorf("%w: address %s is private or internal", ErrHTTPTargetRejected, addr)
			}
		}
	}

	if len(g.AllowedHosts) > 0 && !g.hostAllowed(host) {
		return fmt.Errorf("%w: host %q not in allowlist", ErrHTTPTargetRejected, host)
	}

	return nil
}

func (g *Guard) hostAllowed(host string) bool {
	for _, allowed := range g.AllowedHosts {
		allowed = strings.ToLower(allowed)
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}

	return false
}

var privateV4Ranges = []string{
	"10.0.0.0/8",
	"127.0.0.0/8",
	"169.254.0.0/16",
	"172.16.0.0/12",
	"192.168.0.0/16",
}

func isPrivateAddr(addr netip.Addr) bool {
	if addr.Is4() || addr.Is4In6() {
		v4 := addr.Unmap()
		for _, cidr := range privateV4Ranges {
			prefix := netip.MustParsePrefix(cidr)
			if prefix.Contains(v4) {
				return true
			}
		}

		return false
	}

	return addr.IsLoopback() || addr.IsLinkLocalUnicast() || addr.IsPrivate()
}
