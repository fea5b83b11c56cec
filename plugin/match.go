package plugin

import "strings"

// Match reports whether a value satisfies a subscription filter pattern. A
// blank pattern (empty or whitespace-only) is a wildcard that matches
// everything; any other pattern matches only by equality.
func Match(value, pattern string) bool {
	if strings.TrimSpace(pattern) == "" {
		return true
	}
	return value == pattern
}
