// Package quiz generates and scores word games over the poem corpus.
package quiz

import (
	"math/rand"
	"time"
)

// Session shape shared by both games.
const (
	SessionQuestions = 10
	PointsPerCorrect = 10

	sessionAttempts = 100
	blankRetries    = 20
	optionDraws     = 100
)

// Generator produces randomized game questions.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewSeeded returns a Generator driven by the given source. A nil source
// falls back to a time seed.
func NewSeeded(rnd *rand.Rand) *Generator {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rnd: rnd}
}

func isHan(r rune) bool {
	return r >= 0x4e00 && r <= 0x9fa5
}

func (g *Generator) shuffle(options []string) {
	g.rnd.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
}
