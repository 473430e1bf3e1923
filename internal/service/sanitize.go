package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// textPolicy strips every tag; comments, names and bios are plain text.
var textPolicy = bluemonday.StrictPolicy()

// sanitizeText removes markup from user input. Entities added by the policy
// are decoded again unless decoding would bring back a tag opener.
func sanitizeText(raw string) string {
	clean := textPolicy.Sanitize(raw)
	if decoded := html.UnescapeString(clean); !strings.ContainsRune(decoded, '<') {
		return strings.TrimSpace(decoded)
	}
	return strings.TrimSpace(clean)
}
