package coa

import (
	"strconv"
	"strings"
)

// NextChildCode returns prefix + the smallest unused positive integer suffix
// among existing codes under the prefix. It is a first-fit allocator: a gap
// left by a deleted child is reused before extending past the current
// maximum, so codes freed by deletions never collide with later ones.
func NextChildCode(prefix string, existing map[string]struct{}) (string, error) {
	if prefix == "" {
		return "", ErrInvalidPrefix
	}
	used := make(map[int]struct{})
	for code := range existing {
		if !strings.HasPrefix(code, prefix) || code == prefix {
			continue
		}
		n, err := strconv.Atoi(code[len(prefix):])
		if err != nil || n <= 0 {
			continue
		}
		used[n] = struct{}{}
	}
	n := 1
	for {
		if _, taken := used[n]; !taken {
			return prefix + strconv.Itoa(n), nil
		}
		n++
	}
}
