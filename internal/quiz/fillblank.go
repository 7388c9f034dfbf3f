package quiz

import (
	"strings"

	"jinqiu/internal/model"
)

// BlankMarker replaces the hidden character in a fill-blank prompt.
const BlankMarker = "___"

const minBlankLineRunes = 5

// FillBlank is one fill-blank question.
type FillBlank struct {
	Poem    model.Poem
	Prompt  string // source line with BlankMarker at the hidden position
	Answer  string
	Options []string

	UserAnswer string
	Correct    bool
}

// Answered reports whether the question has received an answer.
func (q *FillBlank) Answered() bool {
	return q.UserAnswer != ""
}

// FillBlankSession is one round of up to SessionQuestions questions.
type FillBlankSession struct {
	Questions []FillBlank
	Score     int
}

// NewFillBlankSession draws a fresh question set from the corpus. Starved
// corpora yield fewer questions rather than an error.
func NewFillBlankSession(g *Generator, poems []model.Poem) *FillBlankSession {
	return &FillBlankSession{Questions: g.FillBlankQuestions(poems)}
}

// Answer records the answer for question i. Only the first answer counts;
// repeated answers and out-of-range indices are ignored.
func (s *FillBlankSession) Answer(i int, option string) {
	if i < 0 || i >= len(s.Questions) {
		return
	}
	q := &s.Questions[i]
	if q.Answered() {
		return
	}
	q.UserAnswer = option
	q.Correct = option == q.Answer
	if q.Correct {
		s.Score += PointsPerCorrect
	}
}

// Truncate keeps at most n questions. Answered questions past the cut are
// discarded along with their points, so call it before play starts.
func (s *FillBlankSession) Truncate(n int) {
	if n >= 0 && n < len(s.Questions) {
		s.Questions = s.Questions[:n]
	}
}

// Complete reports whether every question has been answered.
func (s *FillBlankSession) Complete() bool {
	for i := range s.Questions {
		if !s.Questions[i].Answered() {
			return false
		}
	}
	return len(s.Questions) > 0
}

// MaxScore is the score a perfect round would reach.
func (s *FillBlankSession) MaxScore() int {
	return len(s.Questions) * PointsPerCorrect
}

// FillBlankQuestions builds up to SessionQuestions questions under a bounded
// attempt budget. Each question hides one Han character of a random line of
// at least five runes; an attempt that finds no eligible line or character is
// simply skipped.
func (g *Generator) FillBlankQuestions(poems []model.Poem) []FillBlank {
	if len(poems) == 0 {
		return nil
	}

	var questions []FillBlank
	for attempts := 0; len(questions) < SessionQuestions && attempts < sessionAttempts; attempts++ {
		p := poems[g.rnd.Intn(len(poems))]
		var eligible []string
		for _, line := range p.Content {
			if len([]rune(line)) >= minBlankLineRunes {
				eligible = append(eligible, line)
			}
		}
		if len(eligible) == 0 {
			continue
		}
		line := []rune(eligible[g.rnd.Intn(len(eligible))])

		idx := -1
		for try := 0; try < blankRetries; try++ {
			i := g.rnd.Intn(len(line))
			if isHan(line[i]) {
				idx = i
				break
			}
		}
		if idx == -1 {
			continue
		}

		answer := string(line[idx])
		questions = append(questions, FillBlank{
			Poem:    p,
			Prompt:  string(line[:idx]) + BlankMarker + string(line[idx+1:]),
			Answer:  answer,
			Options: g.blankOptions(answer, poems),
		})
	}
	return questions
}

// blankOptions builds the shuffled option set: the answer plus up to three
// distinct Han-character distractors drawn from random corpus lines under a
// bounded draw budget. A starved corpus yields fewer than four options.
func (g *Generator) blankOptions(answer string, poems []model.Poem) []string {
	options := []string{answer}
	seen := map[string]struct{}{answer: {}}

	for draws := 0; len(options) < 4 && draws < optionDraws; draws++ {
		p := poems[g.rnd.Intn(len(poems))]
		if len(p.Content) == 0 {
			continue
		}
		line := []rune(p.Content[g.rnd.Intn(len(p.Content))])
		if len(line) == 0 {
			continue
		}
		r := line[g.rnd.Intn(len(line))]
		if !isHan(r) {
			continue
		}
		c := string(r)
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		options = append(options, c)
	}

	g.shuffle(options)
	return options
}

// HighlightPrompt splits a prompt around its blank for rendering.
func HighlightPrompt(prompt string) (before, after string) {
	before, after, _ = strings.Cut(prompt, BlankMarker)
	return before, after
}
