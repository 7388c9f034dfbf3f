package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"jinqiu/internal/quiz"
)

const (
	quizFillBlank = iota
	quizCouplet
)

var (
	blankStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#C89A3A")).
			Underline(true)
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	optionStyle    = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	optionUsedStyle = optionStyle.Copy().
			Foreground(lipgloss.Color("#5A5A5A")).
			BorderForeground(lipgloss.Color("#3A3A3A"))
)

// QuizModel runs a fill-blank or couplet round.
type QuizModel struct {
	mode    int
	fill    *quiz.FillBlankSession
	couplet *quiz.CoupletSession

	index    int
	finished bool

	width  int
	height int
}

// NewFillBlankModel runs the given fill-blank round.
func NewFillBlankModel(s *quiz.FillBlankSession) *QuizModel {
	return &QuizModel{mode: quizFillBlank, fill: s}
}

// NewCoupletModel runs the given couplet round.
func NewCoupletModel(s *quiz.CoupletSession) *QuizModel {
	return &QuizModel{mode: quizCouplet, couplet: s}
}

// Init implements tea.Model.
func (m *QuizModel) Init() tea.Cmd {
	return nil
}

func (m *QuizModel) questionCount() int {
	if m.mode == quizCouplet {
		return len(m.couplet.Questions)
	}
	return len(m.fill.Questions)
}

func (m *QuizModel) score() int {
	if m.mode == quizCouplet {
		return m.couplet.Score
	}
	return m.fill.Score
}

func (m *QuizModel) maxScore() int {
	if m.mode == quizCouplet {
		return m.couplet.MaxScore()
	}
	return m.fill.MaxScore()
}

// Update implements tea.Model.
func (m *QuizModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *QuizModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	}
	if m.finished {
		return m, nil
	}

	switch msg.String() {
	case "left", "h":
		if m.index > 0 {
			m.index--
		}
		return m, nil
	case "right", "l", "enter":
		if m.index < m.questionCount()-1 {
			m.index++
		} else if m.answered(m.index) {
			m.finished = true
		}
		return m, nil
	}

	if m.mode == quizCouplet {
		return m.handleCoupletKey(msg)
	}
	return m.handleFillKey(msg)
}

func (m *QuizModel) answered(i int) bool {
	if m.mode == quizCouplet {
		return m.couplet.Questions[i].Answered
	}
	return m.fill.Questions[i].Answered()
}

func (m *QuizModel) handleFillKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	q := &m.fill.Questions[m.index]
	if i := optionIndex(msg.String(), len(q.Options)); i >= 0 {
		m.fill.Answer(m.index, q.Options[i])
	}
	return m, nil
}

func (m *QuizModel) handleCoupletKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	q := &m.couplet.Questions[m.index]
	key := msg.String()
	if key == "backspace" {
		// Clear the last filled slot.
		for j := len(q.UserAnswers) - 1; j >= 0; j-- {
			if q.UserAnswers[j] != "" {
				m.couplet.Clear(m.index, j)
				break
			}
		}
		return m, nil
	}
	if i := optionIndex(key, len(q.Options)); i >= 0 {
		m.couplet.Fill(m.index, q.Options[i])
	}
	return m, nil
}

// optionIndex maps option hotkeys 1-9 and a-c to option positions.
func optionIndex(key string, count int) int {
	if len(key) != 1 {
		return -1
	}
	c := key[0]
	var i int
	switch {
	case c >= '1' && c <= '9':
		i = int(c - '1')
	case c >= 'a' && c <= 'c':
		i = 9 + int(c-'a')
	default:
		return -1
	}
	if i >= count {
		return -1
	}
	return i
}

// View implements tea.Model.
func (m *QuizModel) View() string {
	if m.questionCount() == 0 {
		return mutedStyle.Render("题目不足，换个语料再试。") + "\n" + footerStyle.Render("q 退出")
	}
	if m.finished {
		return m.viewResult()
	}
	if m.mode == quizCouplet {
		return m.viewCouplet()
	}
	return m.viewFillBlank()
}

func (m *QuizModel) header(name string) string {
	return titleStyle.Render(name) +
		mutedStyle.Render(fmt.Sprintf("  第 %d / %d 题  得分 %d", m.index+1, m.questionCount(), m.score()))
}

func (m *QuizModel) viewFillBlank() string {
	q := &m.fill.Questions[m.index]
	var b strings.Builder
	b.WriteString(m.header("诗词填空"))
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%s · %s", q.Poem.Dynasty, q.Poem.Author)))
	b.WriteString("\n")
	b.WriteString(selectedStyle.Render(q.Poem.Title))
	b.WriteString("\n\n")

	before, after := quiz.HighlightPrompt(q.Prompt)
	blank := blankStyle.Render("？")
	if q.Answered() {
		if q.Correct {
			blank = correctStyle.Render(q.Answer)
		} else {
			blank = incorrectStyle.Render(q.Answer)
		}
	}
	b.WriteString(before + blank + after)
	b.WriteString("\n\n")

	cells := make([]string, 0, len(q.Options))
	for i, o := range q.Options {
		label := fmt.Sprintf("%d %s", i+1, o)
		style := optionStyle
		if q.Answered() {
			switch o {
			case q.Answer:
				style = optionStyle.Copy().BorderForeground(lipgloss.Color("#52C41A"))
			case q.UserAnswer:
				style = optionStyle.Copy().BorderForeground(lipgloss.Color("#FF4D4F"))
			default:
				style = optionUsedStyle
			}
		}
		cells = append(cells, style.Render(label))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	b.WriteString("\n\n")

	if q.Answered() {
		if q.Correct {
			b.WriteString(correctStyle.Render("回答正确！"))
		} else {
			b.WriteString(incorrectStyle.Render("回答错误"))
		}
		b.WriteString("\n")
	}
	b.WriteString(footerStyle.Render("1-4 作答 · ←/→ 切题 · enter 下一题 · q 退出"))
	return b.String()
}

func (m *QuizModel) viewCouplet() string {
	q := &m.couplet.Questions[m.index]
	var b strings.Builder
	b.WriteString(m.header("对对子"))
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render("来源《声律启蒙》"))
	b.WriteString("\n\n")

	runes := []rune(q.Text)
	var line strings.Builder
	for i, r := range runes {
		slot := -1
		for j, blank := range q.Blanks {
			if blank.Index == i {
				slot = j
				break
			}
		}
		if slot == -1 {
			line.WriteRune(r)
			continue
		}
		switch {
		case q.Answered && q.Correct:
			line.WriteString(correctStyle.Render(q.Blanks[slot].Char))
		case q.Answered:
			line.WriteString(incorrectStyle.Render(q.Blanks[slot].Char))
		case q.UserAnswers[slot] != "":
			line.WriteString(blankStyle.Render(q.UserAnswers[slot]))
		default:
			line.WriteString(blankStyle.Render("？"))
		}
	}
	b.WriteString(selectedStyle.Render(line.String()))
	b.WriteString("\n\n")

	used := map[string]bool{}
	for _, a := range q.UserAnswers {
		if a != "" {
			used[a] = true
		}
	}
	cells := make([]string, 0, len(q.Options))
	for i, o := range q.Options {
		label := fmt.Sprintf("%s %s", hotkeyLabel(i), o)
		style := optionStyle
		if q.Answered || used[o] {
			style = optionUsedStyle
		}
		cells = append(cells, style.Render(label))
	}
	for i := 0; i < len(cells); i += 6 {
		end := i + 6
		if end > len(cells) {
			end = len(cells)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells[i:end]...))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if q.Answered {
		if q.Correct {
			b.WriteString(correctStyle.Render("对仗工整！"))
		} else {
			b.WriteString(incorrectStyle.Render("还需推敲：" + q.Text))
		}
		b.WriteString("\n")
	}
	b.WriteString(footerStyle.Render("1-9/a-c 填字 · backspace 清除 · enter 下一题 · q 退出"))
	return b.String()
}

func hotkeyLabel(i int) string {
	if i < 9 {
		return fmt.Sprintf("%d", i+1)
	}
	return string(rune('a' + i - 9))
}

func (m *QuizModel) viewResult() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("挑战完成！"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("最终得分：%s / %d\n\n",
		selectedStyle.Render(fmt.Sprintf("%d", m.score())), m.maxScore()))

	if m.mode == quizCouplet {
		for i := range m.couplet.Questions {
			q := &m.couplet.Questions[i]
			b.WriteString(resultLine(i, q.Text, q.Correct))
		}
	} else {
		for i := range m.fill.Questions {
			q := &m.fill.Questions[i]
			b.WriteString(resultLine(i, q.Poem.Title, q.Correct))
		}
	}
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("q 退出"))
	return b.String()
}

func resultLine(i int, text string, correct bool) string {
	mark := incorrectStyle.Render("✗")
	if correct {
		mark = correctStyle.Render("✓")
	}
	return fmt.Sprintf("%2d. %s %s\n", i+1, mark, text)
}
