package stats

import (
	"fmt"

	"github.com/go-ego/gse"
)

// GseSegmenter is a Segmenter backed by a gse dictionary.
type GseSegmenter struct {
	seg gse.Segmenter
}

// NewGseSegmenter loads the embedded default dictionary.
func NewGseSegmenter() (*GseSegmenter, error) {
	var s GseSegmenter
	if err := s.seg.LoadDict(); err != nil {
		return nil, fmt.Errorf("failed to load segmenter dictionary: %w", err)
	}
	return &s, nil
}

// Segment implements Segmenter.
func (s *GseSegmenter) Segment(line string) []string {
	return s.seg.Cut(line, true)
}
