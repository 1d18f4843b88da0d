package guard

import (
	"net/netip"
	"strconv"
	"strings"
)

// IsPrivateOrLoopback reports whether an already normalized host is
// "localhost" or a loopback/private-network IP literal. DNS names are never
// resolved.
//
// IPv4: 127/8, 10/8, 172.16/12, 192.168/16.
// IPv6: ::1, fc00::/7, fe80::/10.
func IsPrivateOrLoopback(host string) bool {
	if strings.TrimSuffix(host, ".") == "localhost" {
		return true
	}
	addr, ok := ParseLiteral(host)
	if !ok {
		return false
	}
	if addr.Is4In6() {
		addr = addr.Unmap()
	}

	if addr.Is4() {
		b := addr.As4()
		switch {
		case b[0] == 127:
			return true
		case b[0] == 10:
			return true
		case b[0] == 172 && b[1] >= 16 && b[1] <= 31:
			return true
		case b[0] == 192 && b[1] == 168:
			return true
		}
		return false
	}

	if addr == netip.IPv6Loopback() {
		return true
	}
	b := addr.As16()
	if b[0]&0xfe == 0xfc {
		return true
	}
	if b[0] == 0xfe && b[1]&0xc0 == 0x80 {
		return true
	}
	return false
}

// IsIPLiteral reports whether host is an IPv4 or IPv6 address literal.
func IsIPLiteral(host string) bool {
	_, ok := ParseLiteral(host)
	return ok
}

// ParseLiteral parses host as an IP address literal the way a browser would
// before connecting: brackets around IPv6 are stripped, a trailing root dot
// is ignored, and legacy IPv4 spellings (single number, octal or hex parts,
// shortened forms such as "127.1") are accepted.
func ParseLiteral(host string) (netip.Addr, bool) {
	h := strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	if h == "" {
		return netip.Addr{}, false
	}
	if addr, err := netip.ParseAddr(h); err == nil {
		return addr, true
	}
	if strings.Contains(h, ":") {
		return netip.Addr{}, false
	}
	return parseLegacyIPv4(strings.TrimSuffix(h, "."))
}

// CanonicalHost returns the dotted-quad or compressed IPv6 form of an IP
// literal host, or the host itself for DNS names.
func CanonicalHost(host string) string {
	addr, ok := ParseLiteral(host)
	if !ok {
		return strings.TrimSuffix(host, ".")
	}
	if addr.Is4In6() {
		addr = addr.Unmap()
	}
	return addr.String()
}

// parseLegacyIPv4 implements the WHATWG IPv4 parser: up to four parts, each
// decimal, octal (leading 0) or hex (0x), the last part filling the
// remaining bytes.
func parseLegacyIPv4(s string) (netip.Addr, bool) {
	parts := strings.Split(s, ".")
	if len(parts) == 0 || len(parts) > 4 {
		return netip.Addr{}, false
	}

	nums := make([]uint64, len(parts))
	for i, p := range parts {
		n, ok := parseIPv4Part(p)
		if !ok {
			return netip.Addr{}, false
		}
		nums[i] = n
	}

	last := len(nums) - 1
	for _, n := range nums[:last] {
		if n > 255 {
			return netip.Addr{}, false
		}
	}
	if nums[last] >= 1<<(8*(5-len(nums))) {
		return netip.Addr{}, false
	}

	v := nums[last]
	for i, n := range nums[:last] {
		v += n << (8 * (3 - i))
	}
	return netip.AddrFrom4([4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}), true
}

func parseIPv4Part(p string) (uint64, bool) {
	if p == "" {
		return 0, false
	}
	base := 10
	switch {
	case len(p) >= 2 && (p[:2] == "0x" || p[:2] == "0X"):
		base = 16
		p = p[2:]
		if p == "" {
			return 0, true
		}
	case len(p) >= 2 && p[0] == '0':
		base = 8
		p = p[1:]
	}
	n, err := strconv.ParseUint(p, base, 32)
	if err != nil {
		return 0, false
	}
	return n, true
}
