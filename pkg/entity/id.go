package entity

import "regexp"

// idPattern is the canonical id grammar: slash-separated segments of
// letters, digits, '-' and '_', each starting with a letter or digit.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*(/[A-Za-z0-9][A-Za-z0-9_-]*)*$`)

// ValidID reports whether id is a canonical entity id such as "npc/mira-01".
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}
