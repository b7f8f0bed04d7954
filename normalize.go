package icannreport

import "strings"

// stripTrailingWhitespaceFromLines removes trailing spaces and tabs from
// every line of s without touching line-break structure: input ending in a
// newline stays newline-terminated, input without one gains none.
func stripTrailingWhitespaceFromLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
