package chat

import (
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// RemoveTags strips <tag> markup such as colours and icons
func RemoveTags(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}

// SanitizeName cleans a display name so it matches entity names.
// Icons are dropped and non-breaking spaces become regular spaces.
func SanitizeName(name string) string {
	name = RemoveTags(name)
	name = strings.ReplaceAll(name, "\u00a0", " ")
	return strings.TrimSpace(name)
}

// SanitizeMessage normalizes message text for command matching
func SanitizeMessage(text string) string {
	return strings.ToLower(SanitizeName(text))
}
