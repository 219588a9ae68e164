// Package template provides {{var}} token substitution for automation step
// configuration and workflow name templates.
package template

import (
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`\{\{\s*([^}]+?)\s*\}\}`)

// Substitute replaces every {{key}} token in s, resolving each key against the
// sources in order (first source wins). An unresolved token is left literally
// in place: substitution never fails.
func Substitute(s string, sources ...map[string]string) string {
	return tokenPattern.ReplaceAllStringFunc(s, func(token string) string {
		key := strings.TrimSpace(tokenPattern.FindStringSubmatch(token)[1])

		for _, source := range sources {
			if value, ok := source[key]; ok {
				return value
			}
		}

		return token
	})
}

// Tokens returns the distinct token keys appearing in s, in order of first
// appearance.
func Tokens(s string) []string {
	seen := make(map[string]bool)
	keys := make([]string, 0)

	for _, match := range tokenPattern.FindAllStringSubmatch(s, -1) {
		key := strings.TrimSpace(match[1])
		if seen[key] {
			continue
		}

		seen[key] = true

		keys = append(keys, key)
	}

	return keys
}

// ResolveName resolves a workflow name template against captured field values.
// Resolution is all-or-nothing: the boolean is false unless every token
// resolved, and callers must then leave the instance name untouched.
//
// Each token is matched directly first, then by normalized name so templates
// written against field labels still resolve ("Monto Total" -> monto_total).
func ResolveName(nameTemplate string, fields map[string]string) (string, bool) {
	normalized := make(map[string]string, len(fields))
	for name, value := range fields {
		normalized[NormalizeFieldName(name)] = value
	}

	values := make(map[string]string)

	for _, key := range Tokens(nameTemplate) {
		value, ok := fields[key]
		if !ok {
			value, ok = normalized[NormalizeFieldName(key)]
		}

		if !ok {
			return "", false
		}

		values[key] = value
	}

	return Substitute(nameTemplate, values), true
}

// NormalizeFieldName lowercases, maps spaces to underscores and strips every
// character that is not alphanumeric or underscore.
func NormalizeFieldName(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	lowered = strings.ReplaceAll(lowered, " ", "_")

	var b strings.Builder

	for _, r := range lowered {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}

	return b.String()
}
