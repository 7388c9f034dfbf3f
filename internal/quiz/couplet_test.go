package quiz

import (
	"strings"
	"testing"
)

const coupletSource = "云对雨，雪对风，晚照对晴空。\n来鸿对去燕，宿鸟对鸣虫。\n三尺剑，六钧弓，岭北对江东。\n人间清暑殿，天上广寒宫。\n"

func TestParseClauses(t *testing.T) {
	clauses := ParseClauses(coupletSource)
	want := []string{"云对雨", "雪对风", "晚照对晴空", "来鸿对去燕", "宿鸟对鸣虫", "岭北对江东"}
	if len(clauses) != len(want) {
		t.Fatalf("clauses = %v, want %v", clauses, want)
	}
	for i := range want {
		if clauses[i] != want[i] {
			t.Fatalf("clauses[%d] = %q, want %q", i, clauses[i], want[i])
		}
	}
}

func TestParseClausesFiltersIneligible(t *testing.T) {
	// No pairing character, or too short once split.
	if clauses := ParseClauses("三尺剑，六钧弓。\n对，一对。"); len(clauses) != 0 {
		t.Fatalf("unexpected clauses: %v", clauses)
	}
	// Three runes is the eligibility floor.
	if clauses := ParseClauses("云对雨。"); len(clauses) != 1 || clauses[0] != "云对雨" {
		t.Fatalf("unexpected clauses: %v", clauses)
	}
}

func TestCoupletQuestions(t *testing.T) {
	g := testGenerator()
	clauses := ParseClauses(coupletSource)
	questions := g.CoupletQuestions(clauses)
	if len(questions) != len(clauses) {
		t.Fatalf("expected one question per clause, got %d of %d", len(questions), len(clauses))
	}

	for qi, q := range questions {
		runes := []rune(q.Text)
		pairIdx := strings.IndexRune(q.Text, PairChar)
		pairRuneIdx := len([]rune(q.Text[:pairIdx]))

		if len(q.Blanks) < 1 || len(q.Blanks) > 2 {
			t.Fatalf("question %d has %d blanks", qi, len(q.Blanks))
		}
		for _, b := range q.Blanks {
			if b.Index == pairRuneIdx {
				t.Fatalf("question %d blanks the pairing character", qi)
			}
			if b.Index < 0 || b.Index >= len(runes) {
				t.Fatalf("question %d blank out of range: %d", qi, b.Index)
			}
			if string(runes[b.Index]) != b.Char {
				t.Fatalf("question %d blank %d does not match text", qi, b.Index)
			}
		}
		if len(q.Blanks) == 2 {
			a, b := q.Blanks[0].Index, q.Blanks[1].Index
			if b != a+1 {
				t.Fatalf("question %d pair not contiguous: %d, %d", qi, a, b)
			}
			if (a < pairRuneIdx) != (b < pairRuneIdx) {
				t.Fatalf("question %d pair straddles the pairing character", qi)
			}
		}

		if len(q.Options) > coupletOptionCount {
			t.Fatalf("question %d has %d options", qi, len(q.Options))
		}
		optionSet := map[string]struct{}{}
		for _, o := range q.Options {
			if o == string(PairChar) {
				t.Fatalf("question %d offers the pairing character", qi)
			}
			if _, dup := optionSet[o]; dup {
				t.Fatalf("question %d has duplicate option %q", qi, o)
			}
			optionSet[o] = struct{}{}
		}
		for _, b := range q.Blanks {
			if _, ok := optionSet[b.Char]; !ok {
				t.Fatalf("question %d options miss blank %q", qi, b.Char)
			}
		}
		if len(q.UserAnswers) != len(q.Blanks) {
			t.Fatalf("question %d answer slots mismatch", qi)
		}
	}
}

func TestCoupletSessionResolve(t *testing.T) {
	s := &CoupletSession{Questions: []Couplet{{
		Text:        "云对雨",
		Blanks:      []CoupletBlank{{Index: 0, Char: "云"}, {Index: 2, Char: "雨"}},
		Options:     []string{"云", "雨", "霜", "风"},
		UserAnswers: make([]string, 2),
	}}}

	// A mistaken fill can be cleared until the question resolves.
	s.Fill(0, "霜")
	if s.Questions[0].UserAnswers[0] != "霜" {
		t.Fatal("fill must take the first empty slot")
	}
	s.Clear(0, 0)
	if s.Questions[0].UserAnswers[0] != "" {
		t.Fatal("clear must empty the slot")
	}

	s.Fill(0, "云")
	if s.Questions[0].Answered {
		t.Fatal("question must not resolve before all slots fill")
	}
	s.Fill(0, "雨")
	q := s.Questions[0]
	if !q.Answered || !q.Correct {
		t.Fatalf("expected a correct resolution, got %+v", q)
	}
	if s.Score != PointsPerCorrect {
		t.Fatalf("score = %d, want %d", s.Score, PointsPerCorrect)
	}
	if !s.Complete() {
		t.Fatal("session must be complete")
	}

	// Resolved questions are immutable.
	s.Clear(0, 0)
	s.Fill(0, "风")
	if s.Questions[0].UserAnswers[0] != "云" {
		t.Fatal("resolved question must not change")
	}
}

func TestCoupletSessionWrongOrder(t *testing.T) {
	s := &CoupletSession{Questions: []Couplet{{
		Text:        "云对雨",
		Blanks:      []CoupletBlank{{Index: 0, Char: "云"}, {Index: 2, Char: "雨"}},
		UserAnswers: make([]string, 2),
	}}}

	// Right characters in the wrong slots resolve as incorrect.
	s.Fill(0, "雨")
	s.Fill(0, "云")
	q := s.Questions[0]
	if !q.Answered || q.Correct {
		t.Fatalf("expected an incorrect resolution, got %+v", q)
	}
	if s.Score != 0 {
		t.Fatalf("score = %d, want 0", s.Score)
	}
}
