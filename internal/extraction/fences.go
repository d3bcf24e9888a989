package extraction

import (
	"regexp"
	"strings"
)

var fencePattern = regexp.MustCompile("```json\\n?|```")

// StripFences removes markdown code fences the model wraps around JSON.
func StripFences(text string) string {
	return strings.TrimSpace(fencePattern.ReplaceAllString(text, ""))
}
