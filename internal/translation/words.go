package translation

import (
	"regexp"
	"strings"
)

var (
	cjkWordPattern   = regexp.MustCompile(`^[\x{4e00}-\x{9fff}]{1,3}$`)
	latinWordPattern = regexp.MustCompile(`^[a-zA-Z]+(?:-[a-zA-Z]+)?$`)
)

// IsSingleWord reports whether text looks like a dictionary word: one to three
// CJK ideographs, or Latin letters with at most one internal hyphen.
func IsSingleWord(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	return cjkWordPattern.MatchString(trimmed) || latinWordPattern.MatchString(trimmed)
}
