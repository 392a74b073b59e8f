package mapper

import (
	"sort"
	"strings"
)

// maxFuzzyDepth bounds the recursive walk so arbitrarily nested input
// cannot blow the stack.
const maxFuzzyDepth = 6

// fuzzyResolve walks the merged data object scoring each leaf by how many
// of the variable's underscore-separated terms appear in the leaf's key or
// any ancestor key. The highest-scoring non-empty scalar wins. Keys are
// visited in sorted order so equal scores resolve deterministically.
func fuzzyResolve(name string, data map[string]any) (any, int) {
	terms := splitTerms(name)
	if len(terms) == 0 {
		return nil, 0
	}
	best, score := walkFuzzy(data, terms, nil, 0)
	return best, score
}

func walkFuzzy(node any, terms []string, ancestors []string, depth int) (any, int) {
	if depth > maxFuzzyDepth {
		return nil, 0
	}
	switch t := node.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var best any
		bestScore := 0
		for _, k := range keys {
			child := t[k]
			path := append(append([]string(nil), ancestors...), splitTerms(k)...)
			switch child.(type) {
			case map[string]any, []any:
				if v, s := walkFuzzy(child, terms, path, depth+1); s > bestScore {
					best, bestScore = v, s
				}
			default:
				if isEmptyValue(child) {
					continue
				}
				if s := overlap(terms, path); s > bestScore {
					best, bestScore = child, s
				}
			}
		}
		return best, bestScore
	case []any:
		var best any
		bestScore := 0
		for _, child := range t {
			if v, s := walkFuzzy(child, terms, ancestors, depth+1); s > bestScore {
				best, bestScore = v, s
			}
		}
		return best, bestScore
	default:
		return nil, 0
	}
}

func splitTerms(s string) []string {
	raw := strings.Split(strings.ToLower(s), "_")
	terms := raw[:0]
	for _, t := range raw {
		if t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// overlap counts variable terms present among the key terms.
func overlap(terms, keyTerms []string) int {
	n := 0
	for _, t := range terms {
		for _, k := range keyTerms {
			if t == k {
				n++
				break
			}
		}
	}
	return n
}
