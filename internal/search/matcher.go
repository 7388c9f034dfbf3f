package search

import "jinqiu/internal/model"

// MatchAny reports whether the poem matches any of the query variants.
// Each variant is tested independently as a literal substring.
func MatchAny(p model.Poem, queries []string) bool {
	for _, q := range queries {
		if p.ContainsText(q) {
			return true
		}
	}
	return false
}

// Filter returns the poems matching q as a literal substring, in input order.
func Filter(poems []model.Poem, q string) []model.Poem {
	if q == "" {
		return nil
	}
	var out []model.Poem
	for _, p := range poems {
		if p.ContainsText(q) {
			out = append(out, p)
		}
	}
	return out
}
