// Package guard decides whether a capture request may reach a renderer at
// all: URL admission (scheme, private/loopback literals, restricted domains)
// and render-surface geometry bounds.
package guard

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

// browserProfile maps hosts the way browsers do (UTS #46, non-transitional,
// no STD3 or hyphen restrictions), so "foo_bar.ｇｏｖ" becomes "foo_bar.gov".
var browserProfile = idna.New(
	idna.MapForLookup(),
	idna.Transitional(false),
	idna.StrictDomainName(false),
	idna.CheckHyphens(false),
)

// Normalize canonicalizes a hostname to lowercase ASCII. Internationalized
// labels are mapped and converted to Punycode; when conversion fails or
// yields nothing the trimmed, lowercased input is returned unchanged.
func Normalize(host string) string {
	lower := strings.ToLower(strings.TrimSpace(host))
	ascii, err := browserProfile.ToASCII(lower)
	if err != nil || ascii == "" || !isASCII(ascii) {
		return lower
	}
	return ascii
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
