package util

import (
	"strconv"
	"strings"
)

// ParseCount keeps only the digits of a medal cell. Anything unparsable counts as zero.
func ParseCount(input string) int {
	var b strings.Builder
	for _, r := range Normalize(input) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0
	}
	return n
}
