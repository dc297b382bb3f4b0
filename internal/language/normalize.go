package language

import "strings"

// Auto is the code used when the source language should be detected by the provider.
const Auto = "auto"

// isoToAppCode covers the ISO 639-1 codes whose application code differs.
// The application keeps the codes stored settings have always used.
var isoToAppCode = map[string]string{
	"ja": "jp",
	"ko": "kor",
	"fr": "fra",
	"es": "spa",
}

// NormalizeTag lowercases a language tag and joins its subtags with "-".
// Blank values and values with non-letter subtags yield "".
func NormalizeTag(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}

	trimmed = strings.ReplaceAll(trimmed, "_", "-")
	parts := strings.Split(trimmed, "-")
	normalized := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !isAlphaLower(part) {
			return ""
		}
		normalized = append(normalized, part)
	}

	if len(normalized) == 0 {
		return ""
	}
	return strings.Join(normalized, "-")
}

// PrimarySubtag returns "en" for "en-US".
func PrimarySubtag(raw string) string {
	tag := NormalizeTag(raw)
	if tag == "" {
		return ""
	}
	if dash := strings.IndexByte(tag, '-'); dash >= 0 {
		return tag[:dash]
	}
	return tag
}

// AppCode converts user or detector input ("EN-us", "ja", "zh_CN", "kor") into
// an application language code. Codes that are already application codes pass
// through, as do codes nobody maps.
func AppCode(raw string) string {
	code := PrimarySubtag(raw)
	if code == "" {
		return ""
	}
	if mapped, ok := isoToAppCode[code]; ok {
		return mapped
	}
	return code
}

// IsAuto reports whether code asks for source language detection.
func IsAuto(code string) bool {
	return code == "" || PrimarySubtag(code) == Auto
}

func isAlphaLower(value string) bool {
	for _, r := range value {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
