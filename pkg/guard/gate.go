package guard

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gobwas/glob"

	"github.com/user/webshot/pkg/errcode"
)

// Admission is the outcome of a successful URL admission.
type Admission struct {
	URL  *url.URL
	Host string // normalized ASCII host
}

// Gate admits or rejects caller-supplied URLs. The zero value applies only
// the built-in rules; extra host patterns can be added with NewGate.
type Gate struct {
	patterns []hostPattern
}

type hostPattern struct {
	raw string
	g   glob.Glob
}

// NewGate creates a Gate that additionally blocks hosts matching any of the
// given glob patterns. Patterns use '.' as the separator, so "*.internal"
// matches one label and "**.internal" any depth.
func NewGate(patterns ...string) (*Gate, error) {
	g := &Gate{}
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		compiled, err := glob.Compile(p, '.')
		if err != nil {
			return nil, fmt.Errorf("compile host pattern %q: %w", p, err)
		}
		g.patterns = append(g.patterns, hostPattern{raw: p, g: compiled})
	}
	return g, nil
}

var defaultGate = &Gate{}

// Admit runs the built-in admission rules on rawURL.
func Admit(rawURL string) (Admission, error) {
	return defaultGate.Admit(rawURL)
}

// Admit parses and validates rawURL. Failures are coded InvalidURL for
// unparsable URLs or non-http(s) schemes and BlockedDomain for restricted
// domains, private/loopback literals and pattern matches, checked in that
// order.
func (g *Gate) Admit(rawURL string) (Admission, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || !u.IsAbs() {
		return Admission{}, errcode.New(errcode.InvalidURL, "URL is not valid")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Admission{}, errcode.New(errcode.InvalidURL, "only http and https URLs are allowed")
	}
	if u.Hostname() == "" {
		return Admission{}, errcode.New(errcode.InvalidURL, "URL has no host")
	}

	host := Normalize(u.Hostname())

	if IsRestrictedDomain(host) {
		return Admission{}, errcode.Newf(errcode.BlockedDomain, "government sites are not allowed: %s", host)
	}
	if IsPrivateOrLoopback(host) {
		return Admission{}, errcode.Newf(errcode.BlockedDomain, "private or loopback addresses are not allowed: %s", host)
	}
	if p, ok := g.match(host); ok {
		return Admission{}, errcode.Newf(errcode.BlockedDomain, "host %s is blocked by pattern %q", host, p)
	}

	return Admission{URL: u, Host: host}, nil
}

// Patterns returns the extra host patterns of the gate.
func (g *Gate) Patterns() []string {
	out := make([]string, len(g.patterns))
	for i, p := range g.patterns {
		out[i] = p.raw
	}
	return out
}

func (g *Gate) match(host string) (string, bool) {
	if g == nil || len(g.patterns) == 0 {
		return "", false
	}
	canon := CanonicalHost(host)
	for _, p := range g.patterns {
		if p.g.Match(canon) {
			return p.raw, true
		}
	}
	return "", false
}
