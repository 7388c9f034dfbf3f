package search

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"jinqiu/internal/corpus"
	"jinqiu/internal/model"
)

// DefaultIndexPath locates the file list for the large external scan.
const DefaultIndexPath = "search_index.json"

// IndexEntry is one file of the large external corpus.
type IndexEntry struct {
	Path     string `json:"path"`
	Dynasty  string `json:"dynasty"`
	Category string `json:"category"`
}

// Searcher scans the external multi-file corpus for query matches.
// Wrap the fetcher in a corpus.CachingFetcher so repeat queries skip the
// network. Zero-value fields fall back to sensible defaults at Search time.
type Searcher struct {
	Fetcher        corpus.Fetcher
	Simplify       Converter
	Traditionalize Converter
	IndexPath      string
	Logger         *zap.Logger
	Rand           *rand.Rand
}

type externalSource struct {
	path    string
	kind    corpus.Kind
	dynasty string
	tag     string
}

// mediumSources lists the curated collections scanned before the large
// file-index corpus.
func mediumSources() []externalSource {
	sources := []externalSource{
		{path: "唐诗三百首/tang_poem.json", kind: corpus.KindTang, dynasty: model.DynastyTang, tag: "唐诗三百首"},
		{path: "宋词三百首/song_poem.json", kind: corpus.KindSong, dynasty: model.DynastySong, tag: "宋词三百首"},
		{path: "纳兰性德/纳兰性德诗集.json", kind: corpus.KindNalan, dynasty: model.DynastyQing, tag: "纳兰性德"},
		{path: "五代诗词/nantang/poetrys.json", kind: corpus.KindWudai, dynasty: model.DynastyWudai, tag: "五代诗词"},
	}
	if col, ok := corpus.Lookup("wudai"); ok {
		for _, path := range col.Paths[1:] {
			sources = append(sources, externalSource{
				path:    path,
				kind:    corpus.KindWudai,
				dynasty: model.DynastyWudai,
				tag:     "花间集",
			})
		}
	}
	return sources
}

// Search scans the curated collections and then the indexed large corpus for
// poems matching any script variant of query. Matches from each file are
// appended to the result and handed to onBatch as the file completes, so
// partial results are visible before the scan finishes. Fetch and parse
// failures are swallowed per file. The scan stops early only when ctx is
// done; the accumulated results are still returned alongside ctx's error.
func (s *Searcher) Search(ctx context.Context, query string, onBatch func([]model.Poem)) ([]model.Poem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rng := s.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	queries := ExpandQuery(query, s.Simplify, s.Traditionalize)

	var results []model.Poem
	seen := map[string]struct{}{}

	scan := func(src externalSource) []model.Poem {
		data, err := s.Fetcher.Fetch(ctx, src.path)
		if err != nil {
			logger.Warn("failed to fetch search file", zap.String("path", src.path), zap.Error(err))
			return nil
		}
		records, err := corpus.DecodeRecords(data)
		if err != nil {
			logger.Warn("failed to parse search file", zap.String("path", src.path), zap.Error(err))
			return nil
		}
		var batch []model.Poem
		for _, raw := range records {
			p := corpus.Normalize(src.kind, raw)
			p.Dynasty = src.dynasty
			if !matchSource(raw, p.Content, queries) {
				continue
			}
			key := dedupeKey(src.tag, p)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			p.ID = fmt.Sprintf("ext-%s-%s-%s-%s", src.tag, p.Author, p.Title, randomSuffix(rng))
			batch = append(batch, p)
		}
		return batch
	}

	emit := func(batch []model.Poem) {
		if len(batch) == 0 {
			return
		}
		results = append(results, batch...)
		if onBatch != nil {
			onBatch(batch)
		}
	}

	for _, src := range mediumSources() {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		emit(scan(src))
	}

	index, err := s.loadIndex(ctx)
	if err != nil {
		logger.Warn("search index unavailable", zap.Error(err))
		return results, nil
	}
	for _, entry := range index {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		emit(scan(externalSource{
			path:    entry.Path,
			kind:    corpus.KindGeneric,
			dynasty: entry.Dynasty,
			tag:     entry.Category + "·" + entry.Dynasty,
		}))
	}
	return results, nil
}

func (s *Searcher) loadIndex(ctx context.Context) ([]IndexEntry, error) {
	path := s.IndexPath
	if path == "" {
		path = DefaultIndexPath
	}
	data, err := s.Fetcher.Fetch(ctx, path)
	if err != nil {
		return nil, err
	}
	var index []IndexEntry
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to decode search index: %w", err)
	}
	return index, nil
}

// matchSource tests the query variants against the record's own title,
// author, and content fields. Placeholder titles and authors substituted by
// normalization are not source text and must never match.
func matchSource(raw corpus.RawPoem, content []string, queries []string) bool {
	for _, q := range queries {
		if q == "" {
			continue
		}
		if containsAny(q, raw.Title, raw.Rhythmic, raw.Author, raw.AuthorName) {
			return true
		}
		for _, line := range content {
			if strings.Contains(line, q) {
				return true
			}
		}
	}
	return false
}

func containsAny(q string, fields ...string) bool {
	for _, f := range fields {
		if f != "" && strings.Contains(f, q) {
			return true
		}
	}
	return false
}

// dedupeKey identifies a poem across files independently of its randomized
// result id.
func dedupeKey(tag string, p model.Poem) string {
	first := ""
	if len(p.Content) > 0 {
		first = p.Content[0]
	}
	return tag + "\x00" + p.Author + "\x00" + p.Title + "\x00" + first
}

const suffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

func randomSuffix(rng *rand.Rand) string {
	b := make([]byte, 9)
	for i := range b {
		b[i] = suffixAlphabet[rng.Intn(len(suffixAlphabet))]
	}
	return string(b)
}
