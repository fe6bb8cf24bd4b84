package component

import "strings"

// NormalizeCode left-pads a component code with zeros to at least four
// characters; longer codes pass through unchanged. Empty input yields the
// empty string, which callers treat as "no code" and skip.
func NormalizeCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	if len(code) >= 4 {
		return code
	}
	return strings.Repeat("0", 4-len(code)) + code
}
