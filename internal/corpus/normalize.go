package corpus

import (
	"encoding/json"
	"fmt"
	"strings"

	"jinqiu/internal/model"
)

// FlexLines decodes a content field that may be a JSON array of strings or a
// single newline-delimited string. The string form is split exactly once at
// decode time; empty lines are discarded.
type FlexLines []string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexLines) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = SplitLines(s)
		return nil
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return err
	}
	*f = lines
	return nil
}

// RawPoem is the superset of field spellings seen across source files.
type RawPoem struct {
	Title      string    `json:"title"`
	Rhythmic   string    `json:"rhythmic"`
	Author     string    `json:"author"`
	AuthorName string    `json:"authorName"`
	Chapter    string    `json:"chapter"`
	Section    string    `json:"section"`
	Paragraphs FlexLines `json:"paragraphs"`
	Para       FlexLines `json:"para"`
	Content    FlexLines `json:"content"`
	Contents   FlexLines `json:"contents"`
	Tags       []string  `json:"tags"`
}

// DecodeRecords parses one source file: a JSON array of loosely-typed records.
func DecodeRecords(data []byte) ([]RawPoem, error) {
	var records []RawPoem
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	return records, nil
}

// SplitLines splits a newline-delimited string into trimmed non-empty lines.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// Normalize maps one raw record into a canonical poem using the field
// resolution order fixed for the given kind. It never fails: missing fields
// degrade to placeholders, never to a dropped record. ID and Dynasty are
// attached by the caller.
func Normalize(kind Kind, raw RawPoem) model.Poem {
	var p model.Poem
	switch kind {
	case KindTang:
		p.Title = firstNonEmpty(raw.Title, model.UntitledTitle)
		p.Author = firstNonEmpty(raw.Author, model.AnonymousAuthor)
		p.Content = firstLines(raw.Contents, raw.Paragraphs)
	case KindSong:
		p.Title = firstNonEmpty(raw.Rhythmic, raw.Title, model.UntitledTitle)
		p.Author = firstNonEmpty(raw.Author, model.AnonymousAuthor)
		p.Content = firstLines(raw.Paragraphs)
	case KindNalan:
		p.Title = firstNonEmpty(raw.Title, raw.Rhythmic, model.UntitledTitle)
		p.Author = firstNonEmpty(raw.Author, "纳兰性德")
		p.Content = firstLines(raw.Para, raw.Paragraphs)
	case KindWudai:
		p.Title = firstNonEmpty(raw.Title, raw.Rhythmic, model.UntitledTitle)
		p.Author = firstNonEmpty(raw.Author, model.AnonymousAuthor)
		p.Content = firstLines(raw.Paragraphs, raw.Content, raw.Para, raw.Contents)
	case KindShijing:
		title := raw.Title
		if title == "" && raw.Chapter != "" && raw.Section != "" {
			title = raw.Chapter + "·" + raw.Section
		}
		p.Title = firstNonEmpty(title, model.UntitledTitle)
		p.Author = model.AnonymousAuthor
		p.Content = firstLines(raw.Content, raw.Paragraphs)
	default: // KindGeneric
		p.Title = firstNonEmpty(raw.Title, raw.Rhythmic, model.UntitledTitle)
		p.Author = firstNonEmpty(raw.Author, raw.AuthorName, model.AnonymousAuthor)
		p.Content = firstLines(raw.Paragraphs, raw.Content, raw.Para, raw.Contents)
	}
	p.Content = flattenLines(p.Content)
	p.Tags = []string{}
	return p
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstLines(candidates ...FlexLines) []string {
	for _, c := range candidates {
		if len(c) > 0 {
			return c
		}
	}
	return nil
}

// flattenLines enforces the canonical content invariant: a flat ordered
// sequence with no embedded newline characters and no empty elements.
func flattenLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.ContainsRune(line, '\n') {
			out = append(out, SplitLines(line)...)
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}
