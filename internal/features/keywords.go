package features

import (
	"strings"

	"github.com/spigell/scholar-matcher/internal/textnorm"
)

// ParseKeywordList reads a publication keyword cell. Exports store either a
// bracketed list of quoted strings (['a', "b"]) or a delimited string using
// "||", ";" or ",".
func ParseKeywordList(cell string) []string {
	s := strings.TrimSpace(cell)
	if textnorm.IsMissing(s) {
		return nil
	}

	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		return parseQuotedList(s[1 : len(s)-1])
	}

	var parts []string
	switch {
	case strings.Contains(s, "||"):
		parts = strings.Split(s, "||")
	case strings.Contains(s, ";"):
		parts = strings.Split(s, ";")
	default:
		parts = strings.Split(s, ",")
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseQuotedList(body string) []string {
	var (
		out     []string
		cur     strings.Builder
		quote   rune
		escaped bool
	)
	for _, r := range body {
		switch {
		case quote == 0:
			if r == '\'' || r == '"' {
				quote = r
				cur.Reset()
			}
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == quote:
			if item := strings.TrimSpace(cur.String()); item != "" {
				out = append(out, item)
			}
			quote = 0
		default:
			cur.WriteRune(r)
		}
	}
	return out
}
