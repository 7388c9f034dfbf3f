package search

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"jinqiu/internal/corpus"
	"jinqiu/internal/model"
)

type fakeConverter struct {
	mapping map[string]string
	err     error
}

func (c *fakeConverter) Convert(s string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	if v, ok := c.mapping[s]; ok {
		return v, nil
	}
	return s, nil
}

func TestExpandQuery(t *testing.T) {
	toSimp := &fakeConverter{mapping: map[string]string{"詩": "诗"}}
	toTrad := &fakeConverter{mapping: map[string]string{"詩": "詩", "诗": "詩"}}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "traditional input", query: "詩", want: []string{"詩", "诗"}},
		{name: "simplified input", query: "诗", want: []string{"诗", "詩"}},
		{name: "no variants", query: "abc", want: []string{"abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpandQuery(tt.query, toSimp, toTrad)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ExpandQuery(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestExpandQueryToleratesConverterFailures(t *testing.T) {
	broken := &fakeConverter{err: errors.New("table missing")}
	got := ExpandQuery("诗", broken, nil)
	if !reflect.DeepEqual(got, []string{"诗"}) {
		t.Fatalf("expected the bare query, got %v", got)
	}
}

func TestMatchAny(t *testing.T) {
	p := model.Poem{Title: "静夜思", Author: "李白", Content: []string{"床前明月光，"}}
	if !MatchAny(p, []string{"夜", "missing"}) {
		t.Fatal("expected a title match")
	}
	if !MatchAny(p, []string{"missing", "明月"}) {
		t.Fatal("expected a content match")
	}
	if MatchAny(p, []string{"missing"}) {
		t.Fatal("unexpected match")
	}
}

func TestFilter(t *testing.T) {
	poems := []model.Poem{
		{ID: "a", Title: "静夜思", Content: []string{"床前明月光，"}},
		{ID: "b", Title: "春晓", Content: []string{"春眠不觉晓，"}},
	}
	got := Filter(poems, "月")
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("unexpected filter result: %v", got)
	}
	if Filter(poems, "") != nil {
		t.Fatal("empty query must yield no results")
	}
}

func writeSearchFixture(t *testing.T, dir, path, content string) {
	t.Helper()
	full := filepath.Join(dir, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestSearcher(dir string) *Searcher {
	return &Searcher{
		Fetcher: corpus.NewCachingFetcher(&corpus.DirFetcher{Dir: dir}),
		Rand:    rand.New(rand.NewSource(1)),
	}
}

func TestSearchStreamsPerFileBatches(t *testing.T) {
	dir := t.TempDir()
	writeSearchFixture(t, dir, "唐诗三百首/tang_poem.json",
		`[{"title": "静夜思", "author": "李白", "contents": ["床前明月光，"]}]`)
	writeSearchFixture(t, dir, "search_index.json",
		`[{"path": "全唐诗/poet.tang.0.json", "dynasty": "唐", "category": "全唐诗"}]`)
	writeSearchFixture(t, dir, "全唐诗/poet.tang.0.json",
		`[{"title": "月下独酌", "author": "李白", "paragraphs": ["花间一壶酒，"]}]`)

	var batches [][]model.Poem
	s := newTestSearcher(dir)
	results, err := s.Search(context.Background(), "李白", func(batch []model.Poem) {
		batches = append(batches, batch)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if len(batches) != 2 || len(batches[0]) != 1 || len(batches[1]) != 1 {
		t.Fatalf("expected one batch per matching file, got %v", batches)
	}
	if batches[0][0].Title != "静夜思" || batches[1][0].Title != "月下独酌" {
		t.Fatalf("unexpected batch order: %v", batches)
	}
	for _, p := range results {
		if !strings.HasPrefix(p.ID, "ext-") {
			t.Fatalf("external result id missing prefix: %s", p.ID)
		}
	}
	if results[1].Dynasty != model.DynastyTang {
		t.Fatalf("index entry dynasty not applied: %s", results[1].Dynasty)
	}
}

func TestSearchVariantExpansionMatches(t *testing.T) {
	dir := t.TempDir()
	// Content stored in Traditional script; query arrives in Simplified.
	writeSearchFixture(t, dir, "唐诗三百首/tang_poem.json",
		`[{"title": "無題", "author": "某", "contents": ["晚風吹過。"]}]`)

	s := newTestSearcher(dir)
	s.Traditionalize = &fakeConverter{mapping: map[string]string{"晚风": "晚風"}}
	s.Simplify = &fakeConverter{}

	results, err := s.Search(context.Background(), "晚风", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected a variant match, got %v", results)
	}
}

func TestSearchSwallowsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	// Only one medium file exists and there is no index.
	writeSearchFixture(t, dir, "宋词三百首/song_poem.json",
		`[{"rhythmic": "水调歌头", "author": "苏轼", "paragraphs": ["明月几时有？"]}]`)

	s := newTestSearcher(dir)
	results, err := s.Search(context.Background(), "明月", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Title != "水调歌头" {
		t.Fatalf("unexpected results: %v", results)
	}
}

func TestSearchDeduplicatesAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	poem := `[{"title": "静夜思", "author": "李白", "paragraphs": ["床前明月光，"]}]`
	writeSearchFixture(t, dir, "search_index.json",
		`[{"path": "a.json", "dynasty": "唐", "category": "全唐诗"},
		  {"path": "b.json", "dynasty": "唐", "category": "全唐诗"}]`)
	writeSearchFixture(t, dir, "a.json", poem)
	writeSearchFixture(t, dir, "b.json", poem)

	s := newTestSearcher(dir)
	results, err := s.Search(context.Background(), "静夜思", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected the duplicate to be dropped, got %d results", len(results))
	}
}

func TestSearchIgnoresPlaceholderFields(t *testing.T) {
	dir := t.TempDir()
	// No title and no author: normalization fills 无题/佚名, but those
	// placeholders are not source text and must not be searchable.
	writeSearchFixture(t, dir, "唐诗三百首/tang_poem.json",
		`[{"contents": ["床前明月光，"]},
		  {"title": "无题二首", "author": "李商隐", "contents": ["昨夜星辰昨夜风，"]}]`)

	s := newTestSearcher(dir)
	results, err := s.Search(context.Background(), "无题", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Title != "无题二首" {
		t.Fatalf("expected only the genuinely titled poem, got %v", results)
	}

	results, err = s.Search(context.Background(), "佚名", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("placeholder author must not match, got %v", results)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	s := newTestSearcher(t.TempDir())
	results, err := s.Search(context.Background(), "   ", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results != nil {
		t.Fatalf("expected no results, got %v", results)
	}
}

func TestSearchStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newTestSearcher(t.TempDir())
	_, err := s.Search(ctx, "月", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
