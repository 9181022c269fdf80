package util

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
)

// SetKey returns a deterministic key identifying an id set: order and
// duplicates are ignored, so equivalent requests map to the same key.
func SetKey(prefix string, ids []string) string {
	s := make([]string, len(ids))
	copy(s, ids)
	sort.Strings(s)

	uniq := s[:0]
	for i, id := range s {
		if i == 0 || id != s[i-1] {
			uniq = append(uniq, id)
		}
	}

	sum := sha256.Sum256([]byte(strings.Join(uniq, ",")))
	return fmt.Sprintf("%s:%x", prefix, sum[:8])
}
