package match

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// Delimiter separates passage contents in assembled context.
const Delimiter = "\n"

// Match is one stored passage returned by similarity search.
type Match struct {
	ID         string
	Content    string
	Similarity float64
}

// Set is an ordered list of matches: similarity descending, ties broken by id ascending.
// Numeric ids compare as numbers and sort before non-numeric ones.
type Set []Match

// Select drops candidates below threshold, orders the rest and caps the result at topK.
// Scores are compared at float32 precision, the precision vector stores report.
// Candidates are not modified. A non-positive topK yields an empty set.
func Select(candidates []Match, threshold float64, topK int) Set {
	if topK <= 0 {
		return Set{}
	}
	out := make(Set, 0, min(len(candidates), topK))
	for _, c := range candidates {
		if float32(c.Similarity) >= float32(threshold) {
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b Match) int {
		if c := cmp.Compare(b.Similarity, a.Similarity); c != 0 {
			return c
		}
		return compareIDs(a.ID, b.ID)
	})
	if len(out) > topK {
		out = out[:topK]
	}
	return out
}

func compareIDs(a, b string) int {
	na, errA := strconv.ParseUint(a, 10, 64)
	nb, errB := strconv.ParseUint(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		return cmp.Compare(na, nb)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return strings.Compare(a, b)
}

// Empty reports whether the set holds no matches.
func (s Set) Empty() bool { return len(s) == 0 }

// Top returns the best match. ok is false for an empty set.
func (s Set) Top() (m Match, ok bool) {
	if len(s) == 0 {
		return Match{}, false
	}
	return s[0], true
}

// Assemble joins match contents with Delimiter in set order.
// Returns "" for an empty list.
func Assemble(matches []Match) string {
	if len(matches) == 0 {
		return ""
	}
	parts := make([]string, len(matches))
	for i, m := range matches {
		parts[i] = m.Content
	}
	return strings.Join(parts, Delimiter)
}
