package corpus

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"jinqiu/internal/model"
)

// Loader fetches and normalizes poem collections.
type Loader struct {
	fetcher Fetcher
	logger  *zap.Logger
}

// NewLoader builds a loader. A nil logger falls back to a no-op logger.
func NewLoader(fetcher Fetcher, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{fetcher: fetcher, logger: logger}
}

// LoadAll fetches every home-corpus source concurrently and returns the
// merged records in source order. A failed source contributes zero records
// and logs a warning; it never aborts the others.
func (l *Loader) LoadAll(ctx context.Context) []model.Poem {
	sources := HomeSources()
	results := make([][]model.Poem, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			poems, err := l.loadSource(ctx, src)
			if err != nil {
				l.logger.Warn("failed to load source",
					zap.String("tag", src.Tag),
					zap.String("path", src.Path),
					zap.Error(err))
				return nil
			}
			results[i] = poems
			return nil
		})
	}
	// Tasks swallow their own failures, so Wait cannot return an error.
	_ = g.Wait()

	var all []model.Poem
	for _, poems := range results {
		all = append(all, poems...)
	}
	return all
}

func (l *Loader) loadSource(ctx context.Context, src HomeSource) ([]model.Poem, error) {
	data, err := l.fetcher.Fetch(ctx, src.Path)
	if err != nil {
		return nil, err
	}
	records, err := DecodeRecords(data)
	if err != nil {
		return nil, err
	}
	poems := make([]model.Poem, 0, len(records))
	for i, raw := range records {
		p := Normalize(src.Kind, raw)
		p.ID = fmt.Sprintf("%s-%d", src.Tag, i)
		p.Dynasty = src.Dynasty
		poems = append(poems, p)
	}
	return poems, nil
}

// LoadPage fetches one page of one category. The returned flag reports
// whether later pages may yield more data. Single-file categories only
// yield data at page 0; sharded categories map each page to a distinct
// numeric-offset file; the composite category merges its sub-sources at
// page 0. Fetch or parse failures contribute zero records.
func (l *Loader) LoadPage(ctx context.Context, key string, page int) ([]model.Poem, bool, error) {
	col, ok := Lookup(key)
	if !ok {
		return nil, false, fmt.Errorf("unknown category %q", key)
	}

	switch {
	case col.Key == CustomKey:
		return nil, false, nil
	case col.Sharded():
		return l.loadShard(ctx, col, page)
	default:
		if page > 0 {
			return nil, false, nil
		}
		return l.loadComposite(ctx, col), false, nil
	}
}

// loadComposite fetches every backing file of a page-0 category in sequence
// and merges the results. A failed file is skipped with a warning.
func (l *Loader) loadComposite(ctx context.Context, col Collection) []model.Poem {
	var records []RawPoem
	for _, path := range col.Paths {
		data, err := l.fetcher.Fetch(ctx, path)
		if err != nil {
			l.logger.Warn("failed to load category file",
				zap.String("category", col.Key),
				zap.String("path", path),
				zap.Error(err))
			continue
		}
		part, err := DecodeRecords(data)
		if err != nil {
			l.logger.Warn("failed to parse category file",
				zap.String("category", col.Key),
				zap.String("path", path),
				zap.Error(err))
			continue
		}
		records = append(records, part...)
	}

	poems := make([]model.Poem, 0, len(records))
	for i, raw := range records {
		p := Normalize(col.Kind, raw)
		p.ID = fmt.Sprintf("%s-%d", col.Key, i)
		p.Dynasty = col.Dynasty
		poems = append(poems, p)
	}
	return poems
}

// loadShard fetches the single file backing one page of a sharded category.
// A missing or unreadable shard ends the family: no records, no more pages.
func (l *Loader) loadShard(ctx context.Context, col Collection, page int) ([]model.Poem, bool, error) {
	path := fmt.Sprintf(col.ShardPattern, page*col.ShardStep)
	data, err := l.fetcher.Fetch(ctx, path)
	if err != nil {
		l.logger.Warn("shard not available",
			zap.String("category", col.Key),
			zap.String("path", path),
			zap.Error(err))
		return nil, false, nil
	}
	records, err := DecodeRecords(data)
	if err != nil {
		l.logger.Warn("failed to parse shard",
			zap.String("category", col.Key),
			zap.String("path", path),
			zap.Error(err))
		return nil, false, nil
	}

	poems := make([]model.Poem, 0, len(records))
	for i, raw := range records {
		p := Normalize(col.Kind, raw)
		p.ID = fmt.Sprintf("%s-%d-%d", col.Key, page*col.ShardStep, i)
		p.Dynasty = col.Dynasty
		poems = append(poems, p)
	}
	return poems, true, nil
}

// LoadReadme fetches the long-form description document for a category.
func (l *Loader) LoadReadme(ctx context.Context, key string) (string, error) {
	col, ok := Lookup(key)
	if !ok {
		return "", fmt.Errorf("unknown category %q", key)
	}
	if col.ReadmePath == "" {
		return "", fmt.Errorf("category %q has no description document", key)
	}
	data, err := l.fetcher.Fetch(ctx, col.ReadmePath)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// LoadCoupletSource fetches the classical pairing text for the couplet game.
func (l *Loader) LoadCoupletSource(ctx context.Context) (string, error) {
	data, err := l.fetcher.Fetch(ctx, CoupletSourcePath)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
