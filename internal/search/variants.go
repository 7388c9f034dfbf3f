// Package search implements literal substring search over the corpus,
// with script-variant query expansion for the external multi-file scan.
package search

import (
	"fmt"

	"github.com/liuzl/gocc"
)

// Converter rewrites text from one Chinese script to another.
type Converter interface {
	Convert(s string) (string, error)
}

// OpenCCConverter is a Converter backed by an OpenCC conversion table.
type OpenCCConverter struct {
	cc *gocc.OpenCC
}

// NewSimplifier returns a Traditional-to-Simplified converter.
func NewSimplifier() (*OpenCCConverter, error) {
	return newOpenCC("t2s")
}

// NewTraditionalizer returns a Simplified-to-Traditional converter.
func NewTraditionalizer() (*OpenCCConverter, error) {
	return newOpenCC("s2t")
}

func newOpenCC(conversion string) (*OpenCCConverter, error) {
	cc, err := gocc.New(conversion)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s conversion table: %w", conversion, err)
	}
	return &OpenCCConverter{cc: cc}, nil
}

// Convert implements Converter.
func (c *OpenCCConverter) Convert(s string) (string, error) {
	return c.cc.Convert(s)
}

// ExpandQuery returns the deduplicated variant set for a query: the original,
// its Simplified form, and its Traditional form, in that order. A nil
// converter or a conversion failure drops that variant only.
func ExpandQuery(q string, toSimplified, toTraditional Converter) []string {
	variants := []string{q}
	seen := map[string]struct{}{q: {}}
	for _, conv := range []Converter{toSimplified, toTraditional} {
		if conv == nil {
			continue
		}
		v, err := conv.Convert(q)
		if err != nil || v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		variants = append(variants, v)
	}
	return variants
}
