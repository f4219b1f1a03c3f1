package entities

import (
	"fmt"
	"regexp"
	"strings"
)

type matchKind int

const (
	matchContains matchKind = iota
	matchExact
	matchPattern
)

// Match describes how an actual string value has to relate to an
// expected one: substring containment, exact equality or a regexp.
// The variant is chosen by the caller through the constructors below.
type Match struct {
	kind    matchKind
	literal string
	pattern *regexp.Regexp
}

// Contains - matches when the actual value contains s as a substring.
func Contains(s string) Match {
	return Match{kind: matchContains, literal: s}
}

// Is - matches when the actual value equals s exactly.
func Is(s string) Match {
	return Match{kind: matchExact, literal: s}
}

// Pattern - matches when the actual value matches re.
func Pattern(re *regexp.Regexp) Match {
	return Match{kind: matchPattern, pattern: re}
}

// Test reports whether actual satisfies the match.
func (m Match) Test(actual string) bool {
	switch m.kind {
	case matchExact:
		return actual == m.literal
	case matchPattern:
		return m.pattern.MatchString(actual)
	default:
		return strings.Contains(actual, m.literal)
	}
}

// Value returns the expected literal, or the pattern source for
// pattern matches.
func (m Match) Value() string {
	if m.kind == matchPattern {
		return m.pattern.String()
	}
	return m.literal
}

// IsExact reports whether the match requires exact equality. ExpectPage
// resolves exact matches against the full base URL.
func (m Match) IsExact() bool {
	return m.kind == matchExact
}

// Description - positive wording used while waiting for the match.
func (m Match) Description() string {
	switch m.kind {
	case matchExact:
		return fmt.Sprintf("is: '%s'", m.literal)
	case matchPattern:
		return fmt.Sprintf("matches: '%s'", m.pattern.String())
	default:
		return fmt.Sprintf("contains: '%s'", m.literal)
	}
}

// NegativeDescription - wording used in timeout messages when the
// match never held.
func (m Match) NegativeDescription() string {
	switch m.kind {
	case matchExact:
		return fmt.Sprintf("was not: '%s'", m.literal)
	case matchPattern:
		return fmt.Sprintf("did not match: '%s'", m.pattern.String())
	default:
		return fmt.Sprintf("did not contain: '%s'", m.literal)
	}
}
