// Package scoring computes the 1-5 severity/repeat-offense tier for a case
// from the subjects of prior cases.
package scoring

import "strings"

// Subject is the free-text identity used for repeat-offense matching. Either
// field may be empty; empty fields are excluded from their match dimension,
// never treated as wildcards.
type Subject struct {
	Name    string
	Address string
}

// Matches reports whether two identity strings refer to the same subject:
// case-insensitive, either value containing the other. Empty strings never
// match.
func Matches(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// MatchCount counts prior cases matching the subject. Address and name are
// counted separately and the maximum is taken, not the sum, so a single
// repeat subject matched on both fields is not double-counted.
func MatchCount(subject Subject, priors []Subject) int {
	addressMatches := 0
	nameMatches := 0
	for _, p := range priors {
		if Matches(subject.Address, p.Address) {
			addressMatches++
		}
		if Matches(subject.Name, p.Name) {
			nameMatches++
		}
	}
	if addressMatches > nameMatches {
		return addressMatches
	}
	return nameMatches
}

// Score maps a match count to the 1-5 tier.
func Score(matchCount int) int {
	switch {
	case matchCount <= 0:
		return 1
	case matchCount == 1:
		return 2
	case matchCount == 2:
		return 3
	case matchCount == 3:
		return 4
	default:
		return 5
	}
}
