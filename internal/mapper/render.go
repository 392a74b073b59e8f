package mapper

import (
	"regexp"
)

var tokenPattern = regexp.MustCompile(`\{\{\s*([A-Za-z][A-Za-z0-9_]*)\s*\}\}`)

// Render substitutes every {{variable}} token in body with the resolved
// variable's formatted value. Tokens with no matching variable are replaced
// by a bracketed display name so no raw {{...}} survives; each such token
// is reported as a warning. Output is deterministic for a given input.
func Render(body string, values map[string]Resolved) (string, []string) {
	var warnings []string
	rendered := tokenPattern.ReplaceAllStringFunc(body, func(tok string) string {
		name := tokenPattern.FindStringSubmatch(tok)[1]
		if r, ok := values[name]; ok {
			return r.Formatted
		}
		warnings = append(warnings, "unresolved template token: "+name)
		return "[" + DisplayName(name) + "]"
	})
	return rendered, warnings
}
