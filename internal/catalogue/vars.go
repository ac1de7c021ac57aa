package catalogue

import (
	"regexp"
	"strings"
)

// varPattern matches variable references in the format ${varname}.
var varPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// escapePlaceholder temporarily stands in for an escaped $${ so that the
// following name is not substituted. NUL cannot occur in catalogue strings.
const escapePlaceholder = "\x00ESCAPED\x00"

// shellSafe matches values that need no quoting in a POSIX shell word.
var shellSafe = regexp.MustCompile(`^[A-Za-z0-9_@%+=:,./-]+$`)

// ShellQuote returns s as a single POSIX shell word. Safe values are returned
// unchanged.
func ShellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if shellSafe.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Interpolate replaces ${var} with values from vars, shell-quoted so that a
// path with spaces stays one word. $${var} becomes a literal ${var}; unknown
// variables are kept as-is.
func Interpolate(cmd string, vars map[string]string) string {
	result := strings.ReplaceAll(cmd, "$${", escapePlaceholder)

	result = varPattern.ReplaceAllStringFunc(result, func(match string) string {
		name := match[2 : len(match)-1]
		if val, ok := vars[name]; ok {
			return ShellQuote(val)
		}
		return match
	})

	return strings.ReplaceAll(result, escapePlaceholder, "${")
}
