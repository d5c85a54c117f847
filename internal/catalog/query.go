package catalog

import (
	"strings"
	"unicode"
)

// Query represents a parsed user input
type Query struct {
	Raw           string   // Original input
	Fragments     []string // Space-separated fragments
	HasDot        bool     // Whether input scopes the search to an app
	AppFragments  []string // Fragments before first dot (empty if no dot)
	LinkFragments []string // Fragments matched against link names
}

// ParseQuery parses user input into a structured query
// Examples:
//   - "taco place" -> link names only: ["taco", "place"]
//   - "yelp.tacos" -> app ["yelp"] + link ["tacos"]
//   - "yelp.taco pl" -> app ["yelp"] + link ["taco", "pl"]
func ParseQuery(input string) *Query {
	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" {
		return &Query{Raw: input}
	}

	q := &Query{
		Raw:    input,
		HasDot: strings.Contains(input, "."),
	}

	if !q.HasDot {
		q.Fragments = splitAndClean(input, " ")
		q.LinkFragments = q.Fragments
		return q
	}

	appPart, linkPart, _ := strings.Cut(input, ".")
	q.AppFragments = splitAndClean(appPart, " ")
	for _, part := range strings.Split(linkPart, ".") {
		q.LinkFragments = append(q.LinkFragments, splitAndClean(part, " ")...)
	}

	q.Fragments = make([]string, 0, len(q.AppFragments)+len(q.LinkFragments))
	q.Fragments = append(q.Fragments, q.AppFragments...)
	q.Fragments = append(q.Fragments, q.LinkFragments...)

	return q
}

// splitAndClean splits a string by separator and returns non-empty parts
func splitAndClean(s, sep string) []string {
	parts := strings.Split(s, sep)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}

// Words splits a display name into lowercase matching words.
// Example: "Taco Place - Downtown" -> ["taco", "place", "downtown"]
func Words(name string) []string {
	return strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// normalizeFragment normalizes a fragment for matching
func normalizeFragment(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, s)
}
