package utils

import "strings"

// TruncateForLog shortens s to limit runes, appending an ellipsis when
// truncated. Newlines are flattened so previews stay on one log line.
func TruncateForLog(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
