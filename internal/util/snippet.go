package util

import "strings"

// ColumnOf returns the 1-based column of the first occurrence of needle on
// the given line, or 1 when not found.
func ColumnOf(source string, line int, needle string) int {
	lines := strings.Split(source, "\n")
	if line < 1 || line > len(lines) || needle == "" {
		return 1
	}
	if idx := strings.Index(lines[line-1], needle); idx >= 0 {
		return idx + 1
	}
	return 1
}
