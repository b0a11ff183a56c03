package web

import (
	"regexp"
	"strings"
)

// profileURLRegex matches TikTok profile URLs and captures the handle.
// Accepts www., m. and bare tiktok.com, with or without a scheme.
// Anything after the handle (path, query, fragment) is ignored.
var profileURLRegex = regexp.MustCompile(
	`(?i)^(?:https?://)?(?:www\.|m\.)?tiktok\.com/@([^/?#\s]+)`,
)

// NormalizeTargetID reduces user input to a bare profile handle: whitespace
// is trimmed, a profile URL is reduced to its handle and a leading "@" is
// dropped. Input that is none of these is returned trimmed.
func NormalizeTargetID(raw string) string {
	s := strings.TrimSpace(raw)

	if matches := profileURLRegex.FindStringSubmatch(s); matches != nil {
		return matches[1]
	}

	s = strings.TrimPrefix(s, "@")
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
