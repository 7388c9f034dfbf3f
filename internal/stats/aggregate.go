// Package stats contains corpus statistics and reporting.
package stats

import (
	"sort"
	"strings"

	"jinqiu/internal/model"
)

// Report section sizes.
const (
	TopAuthorCount = 10
	TopTextCount   = 20
)

// Segmenter splits a content line into word segments.
type Segmenter interface {
	Segment(line string) []string
}

// Entry is one counted text with its frequency.
type Entry struct {
	Text  string
	Count int
}

// Report holds the aggregated corpus statistics.
type Report struct {
	TangAuthors []Entry
	SongAuthors []Entry
	TopChars    []Entry
	TopSegments []Entry
}

// stopChars are excluded from character and segment frequencies: common
// function words and punctuation.
var stopChars = map[string]struct{}{}

func init() {
	for _, s := range []string{
		"的", "了", "在", "是", "我", "有", "和", "就", "不", "人", "都", "一", "一个",
		"上", "也", "很", "到", "说", "要", "去", "你", "会", "着", "没有", "看", "好",
		"自己", "这",
		"，", "。", "？", "！", "、", "：", "；", "“", "”", "‘", "’", "（", "）", "《", "》",
	} {
		stopChars[s] = struct{}{}
	}
}

// Build aggregates author tallies and character/segment frequencies over the
// corpus. A nil segmenter skips the segment section.
func Build(poems []model.Poem, seg Segmenter) Report {
	tang := newCounter()
	song := newCounter()
	chars := newCounter()
	segments := newCounter()

	for _, p := range poems {
		switch p.Dynasty {
		case model.DynastyTang:
			tang.add(p.Author)
		case model.DynastySong:
			song.add(p.Author)
		}
		for _, line := range p.Content {
			for _, r := range line {
				if !isHan(r) {
					continue
				}
				c := string(r)
				if _, stop := stopChars[c]; stop {
					continue
				}
				chars.add(c)
			}
			if seg == nil {
				continue
			}
			for _, s := range seg.Segment(line) {
				if len([]rune(s)) < 2 || !allHan(s) {
					continue
				}
				if _, stop := stopChars[s]; stop {
					continue
				}
				segments.add(s)
			}
		}
	}

	return Report{
		TangAuthors: tang.top(TopAuthorCount),
		SongAuthors: song.top(TopAuthorCount),
		TopChars:    chars.top(TopTextCount),
		TopSegments: segments.top(TopTextCount),
	}
}

// PoemsContaining returns the poems whose content includes word, in corpus
// order. Matching is plain containment over content lines only.
func PoemsContaining(poems []model.Poem, word string) []model.Poem {
	if word == "" {
		return nil
	}
	var out []model.Poem
	for _, p := range poems {
		for _, line := range p.Content {
			if strings.Contains(line, word) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

type counter struct {
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: map[string]int{}}
}

func (c *counter) add(text string) {
	c.counts[text]++
}

// top returns the n highest-count entries, ties broken lexicographically.
func (c *counter) top(n int) []Entry {
	if n <= 0 || len(c.counts) == 0 {
		return nil
	}
	items := make([]Entry, 0, len(c.counts))
	for text, count := range c.counts {
		items = append(items, Entry{Text: text, Count: count})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count == items[j].Count {
			return items[i].Text < items[j].Text
		}
		return items[i].Count > items[j].Count
	})
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}

func isHan(r rune) bool {
	return r >= 0x4e00 && r <= 0x9fa5
}

func allHan(s string) bool {
	for _, r := range s {
		if !isHan(r) {
			return false
		}
	}
	return s != ""
}
