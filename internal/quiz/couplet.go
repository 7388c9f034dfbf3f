package quiz

import "strings"

// Pairing games draw clauses centered on the pairing character.
const (
	PairChar = '对'

	coupletOptionCount = 12
	minClauseRunes     = 3
)

// CoupletBlank is one hidden character of a couplet question.
type CoupletBlank struct {
	Index int // rune index into the clause
	Char  string
}

// Couplet is one pairing question. UserAnswers holds one slot per blank, in
// blank order; an empty string marks an unfilled slot. The question resolves
// itself the moment the last slot fills.
type Couplet struct {
	Text    string
	Blanks  []CoupletBlank
	Options []string

	UserAnswers []string
	Answered    bool
	Correct     bool
}

// ParseClauses splits the pairing source text into eligible clauses: trimmed
// segments between sentence punctuation that contain the pairing character
// and span at least three runes.
func ParseClauses(text string) []string {
	segments := strings.FieldsFunc(text, func(r rune) bool {
		return r == '，' || r == '。' || r == '；' || r == '\n' || r == '\r'
	})
	var clauses []string
	for _, s := range segments {
		s = strings.TrimSpace(s)
		if !strings.ContainsRune(s, PairChar) {
			continue
		}
		if len([]rune(s)) < minClauseRunes {
			continue
		}
		clauses = append(clauses, s)
	}
	return clauses
}

// CoupletSession is one round of up to SessionQuestions questions.
type CoupletSession struct {
	Questions []Couplet
	Score     int
}

// NewCoupletSession draws a fresh question set from the parsed clauses.
func NewCoupletSession(g *Generator, clauses []string) *CoupletSession {
	return &CoupletSession{Questions: g.CoupletQuestions(clauses)}
}

// Fill places option into the first empty slot of question i. Filling the
// last slot resolves the question: every slot must match its blank by
// position for the answer to count.
func (s *CoupletSession) Fill(i int, option string) {
	if i < 0 || i >= len(s.Questions) {
		return
	}
	q := &s.Questions[i]
	if q.Answered {
		return
	}
	slot := -1
	for j, a := range q.UserAnswers {
		if a == "" {
			slot = j
			break
		}
	}
	if slot == -1 {
		return
	}
	q.UserAnswers[slot] = option

	for _, a := range q.UserAnswers {
		if a == "" {
			return
		}
	}
	q.Answered = true
	q.Correct = true
	for j, a := range q.UserAnswers {
		if a != q.Blanks[j].Char {
			q.Correct = false
			break
		}
	}
	if q.Correct {
		s.Score += PointsPerCorrect
	}
}

// Clear empties slot j of question i so another option can be placed.
// Resolved questions are immutable.
func (s *CoupletSession) Clear(i, j int) {
	if i < 0 || i >= len(s.Questions) {
		return
	}
	q := &s.Questions[i]
	if q.Answered || j < 0 || j >= len(q.UserAnswers) {
		return
	}
	q.UserAnswers[j] = ""
}

// Truncate keeps at most n questions.
func (s *CoupletSession) Truncate(n int) {
	if n >= 0 && n < len(s.Questions) {
		s.Questions = s.Questions[:n]
	}
}

// Complete reports whether every question has resolved.
func (s *CoupletSession) Complete() bool {
	for i := range s.Questions {
		if !s.Questions[i].Answered {
			return false
		}
	}
	return len(s.Questions) > 0
}

// MaxScore is the score a perfect round would reach.
func (s *CoupletSession) MaxScore() int {
	return len(s.Questions) * PointsPerCorrect
}

// CoupletQuestions draws up to SessionQuestions distinct clauses and blanks
// one character, or a contiguous same-side pair of characters, on either side
// of the pairing character. Fewer eligible clauses yield a shorter round.
func (g *Generator) CoupletQuestions(clauses []string) []Couplet {
	if len(clauses) == 0 {
		return nil
	}

	var questions []Couplet
	used := map[int]struct{}{}
	for len(questions) < SessionQuestions && len(used) < len(clauses) {
		idx := g.rnd.Intn(len(clauses))
		if _, ok := used[idx]; ok {
			continue
		}
		used[idx] = struct{}{}

		runes := []rune(clauses[idx])
		pairIdx := -1
		for i, r := range runes {
			if r == PairChar {
				pairIdx = i
				break
			}
		}
		if pairIdx == -1 {
			continue
		}

		// Blankable positions: strictly left or strictly right of the
		// pairing character. Pairs are contiguous and never straddle it.
		var all []int
		var pairs [][2]int
		for i := 0; i < pairIdx; i++ {
			all = append(all, i)
			if i+1 < pairIdx {
				pairs = append(pairs, [2]int{i, i + 1})
			}
		}
		for i := pairIdx + 1; i < len(runes); i++ {
			all = append(all, i)
			if i+1 < len(runes) {
				pairs = append(pairs, [2]int{i, i + 1})
			}
		}
		if len(all) == 0 {
			continue
		}

		var chosen []int
		if len(pairs) > 0 && g.rnd.Float64() > 0.5 {
			p := pairs[g.rnd.Intn(len(pairs))]
			chosen = []int{p[0], p[1]}
		} else {
			chosen = []int{all[g.rnd.Intn(len(all))]}
		}

		blanks := make([]CoupletBlank, len(chosen))
		correct := make([]string, len(chosen))
		for i, c := range chosen {
			blanks[i] = CoupletBlank{Index: c, Char: string(runes[c])}
			correct[i] = string(runes[c])
		}

		questions = append(questions, Couplet{
			Text:        clauses[idx],
			Blanks:      blanks,
			Options:     g.coupletOptions(correct, clauses),
			UserAnswers: make([]string, len(blanks)),
		})
	}
	return questions
}

// coupletOptions builds the shuffled option pool: the correct characters plus
// Han-character distractors drawn from random clauses, excluding the pairing
// character, up to twelve entries under a bounded draw budget.
func (g *Generator) coupletOptions(correct []string, clauses []string) []string {
	var options []string
	seen := map[string]struct{}{}
	for _, c := range correct {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		options = append(options, c)
	}

	for draws := 0; len(options) < coupletOptionCount && draws < optionDraws; draws++ {
		clause := []rune(clauses[g.rnd.Intn(len(clauses))])
		if len(clause) == 0 {
			continue
		}
		r := clause[g.rnd.Intn(len(clause))]
		if r == PairChar || !isHan(r) {
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
