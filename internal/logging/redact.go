package logging

import (
	"regexp"
	"strings"
)

// secretPatterns match credential-shaped substrings that must never reach
// log output or terminal dumps verbatim.
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(api[_-]?key|secret[_-]?key|access[_-]?token|password)[=:\s]+["']?([^\s"']+)["']?`),
	regexp.MustCompile(`sk-[A-Za-z0-9-_]{20,}`),
}

// MaskSecret obscures a credential while keeping enough of it to recognize
// which key is configured. Short values are fully masked.
func MaskSecret(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 8 {
		return strings.Repeat("*", len(value))
	}
	return value[:4] + strings.Repeat("*", len(value)-8) + value[len(value)-4:]
}

// Redact replaces credential-shaped substrings with masked versions. Used
// on free-form strings (error messages, config dumps) before display.
func Redact(input string) string {
	out := input
	for _, pattern := range secretPatterns {
		out = pattern.ReplaceAllStringFunc(out, func(match string) string {
			for _, sep := range []string{"=", ":"} {
				if parts := strings.SplitN(match, sep, 2); len(parts) == 2 {
					return parts[0] + sep + MaskSecret(strings.Trim(parts[1], `"' `))
				}
			}
			return MaskSecret(match)
		})
	}
	return out
}
