// Package model defines shared data structures.
package model

import "strings"

// Dynasty labels attached by the loader from collection metadata.
const (
	DynastyTang   = "唐"
	DynastySong   = "宋"
	DynastyQing   = "清"
	DynastyWudai  = "五代"
	DynastyPreQin = "先秦"
	DynastyModern = "今"
)

// Placeholders used when a source record is missing a field.
const (
	UntitledTitle   = "无题"
	AnonymousAuthor = "佚名"
)

// Poem is the canonical in-memory record for one poem.
//
// Content is a flat ordered sequence of lines; elements never contain raw
// newline characters. Order is meaningful and preserved end-to-end.
type Poem struct {
	ID      string
	Title   string
	Author  string
	Dynasty string
	Content []string
	Tags    []string
}

// ContainsText reports whether q is a literal substring of the title, the
// author, or any content line. Matching is case-sensitive with no
// normalization.
func (p Poem) ContainsText(q string) bool {
	if q == "" {
		return false
	}
	if strings.Contains(p.Title, q) || strings.Contains(p.Author, q) {
		return true
	}
	for _, line := range p.Content {
		if strings.Contains(line, q) {
			return true
		}
	}
	return false
}
