package guard

import "strings"

// restrictedLabel marks government domains: "*.gov" and "*.gov.<cc>".
const restrictedLabel = "gov"

// IsRestrictedDomain reports whether a normalized host belongs to a
// restricted domain category. IP literals are never restricted.
func IsRestrictedDomain(host string) bool {
	if IsIPLiteral(host) {
		return false
	}

	labels := make([]string, 0, 4)
	for _, l := range strings.Split(host, ".") {
		if l != "" {
			labels = append(labels, l)
		}
	}
	if len(labels) == 0 {
		return false
	}

	if labels[len(labels)-1] == restrictedLabel {
		return true
	}
	return len(labels) >= 2 && labels[len(labels)-2] == restrictedLabel
}
