package corpus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewFetcherSelection(t *testing.T) {
	if _, ok := NewFetcher("https://example.com/corpus").(*HTTPFetcher); !ok {
		t.Fatal("expected HTTP fetcher for an https base")
	}
	if _, ok := NewFetcher("/var/lib/corpus").(*DirFetcher); !ok {
		t.Fatal("expected directory fetcher for a local path")
	}
}

func TestDirFetcher(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "a.json"), []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := &DirFetcher{Dir: dir}
	data, err := f.Fetch(context.Background(), "sub/a.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "[]" {
		t.Fatalf("unexpected data: %q", data)
	}
	if _, err := f.Fetch(context.Background(), "missing.json"); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

type countingFetcher struct {
	calls map[string]int
	fail  bool
}

func (f *countingFetcher) Fetch(_ context.Context, path string) ([]byte, error) {
	f.calls[path]++
	if f.fail {
		return nil, errors.New("unavailable")
	}
	return []byte(path), nil
}

func TestCachingFetcher(t *testing.T) {
	inner := &countingFetcher{calls: map[string]int{}}
	f := NewCachingFetcher(inner)

	for i := 0; i < 3; i++ {
		data, err := f.Fetch(context.Background(), "a.json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != "a.json" {
			t.Fatalf("unexpected data: %q", data)
		}
	}
	if inner.calls["a.json"] != 1 {
		t.Fatalf("expected 1 inner call, got %d", inner.calls["a.json"])
	}
}

func TestCachingFetcherDoesNotCacheFailures(t *testing.T) {
	inner := &countingFetcher{calls: map[string]int{}, fail: true}
	f := NewCachingFetcher(inner)

	if _, err := f.Fetch(context.Background(), "a.json"); err == nil {
		t.Fatal("expected an error")
	}
	inner.fail = false
	data, err := f.Fetch(context.Background(), "a.json")
	if err != nil {
		t.Fatalf("unexpected error after recovery: %v", err)
	}
	if string(data) != "a.json" {
		t.Fatalf("unexpected data: %q", data)
	}
	if inner.calls["a.json"] != 2 {
		t.Fatalf("expected the failure to be retried, got %d calls", inner.calls["a.json"])
	}
}
