package models

import "strings"

// Domains is the closed set of tags the role classifier may return.
var Domains = []string{"devops", "frontend", "backend", "data", "cloud", "security"}

// IsKnownDomain reports whether tag is one of Domains.
func IsKnownDomain(tag string) bool {
	for _, d := range Domains {
		if d == tag {
			return true
		}
	}
	return false
}

// NormalizeTag trims whitespace and surrounding quotes and lowercases a
// classifier reply.
func NormalizeTag(raw string) string {
	tag := strings.TrimSpace(raw)
	tag = strings.Trim(tag, "\"'`.")
	return strings.ToLower(strings.TrimSpace(tag))
}

// QuestionCandidate is one ranked hit from a question source. Lower Distance
// is a better match.
type QuestionCandidate struct {
	Text     string
	Domain   string
	Distance float64
}
