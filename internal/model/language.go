package model

import "strings"

// Language selects which rendering of a LocalizedText is returned.
type Language string

const (
	// English is the default rendering.
	English Language = "en"
	// Arabic selects the alternate rendering.
	Arabic Language = "ar"
)

// ParseLanguage maps an Accept-Language header value to a supported
// language. Anything mentioning Arabic selects Arabic; everything else,
// including an empty header, selects English.
func ParseLanguage(header string) Language {
	if strings.Contains(strings.ToLower(header), "ar") {
		return Arabic
	}
	return English
}
