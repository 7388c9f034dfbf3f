// Package tui provides the Bubble Tea reading interface.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"jinqiu/internal/corpus"
	"jinqiu/internal/model"
	"jinqiu/internal/search"
)

const (
	browseCategories = iota
	browsePoems
	browseReadme
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#C89A3A")).
			Bold(true).
			Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	previewStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
)

type pageLoadedMsg struct {
	key   string
	page  int
	poems []model.Poem
	more  bool
	err   error
}

type readmeMsg struct {
	key  string
	text string
	err  error
}

// BrowseModel implements the category and poem browser.
type BrowseModel struct {
	loader *corpus.Loader
	custom *corpus.CustomLibrary

	mode     int
	catIndex int
	category corpus.Collection

	poems    []model.Poem
	page     int
	hasMore  bool
	loading  bool
	notice   string
	errMsg   string

	poemTable table.Model
	filter    textinput.Model
	filtering bool
	preview   viewport.Model
	readme    viewport.Model

	width  int
	height int
}

// NewBrowseModel constructs the browser over the given loader and custom
// library.
func NewBrowseModel(loader *corpus.Loader, custom *corpus.CustomLibrary) *BrowseModel {
	filter := textinput.New()
	filter.Placeholder = "筛选题目、作者或诗句"
	filter.CharLimit = 64

	columns := []table.Column{
		{Title: "题目", Width: 24},
		{Title: "作者", Width: 12},
		{Title: "朝代", Width: 6},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	return &BrowseModel{
		loader:    loader,
		custom:    custom,
		poemTable: t,
		filter:    filter,
		preview:   viewport.New(40, 12),
		readme:    viewport.New(80, 20),
	}
}

// Init implements tea.Model.
func (m *BrowseModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil
	case pageLoadedMsg:
		return m.applyPage(msg)
	case readmeMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.mode = browseReadme
		m.readme.SetContent(renderMarkdown(msg.text, m.readmeWidth()))
		m.readme.GotoTop()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *BrowseModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.filtering {
		switch msg.Type {
		case tea.KeyEsc:
			m.filtering = false
			m.filter.Blur()
			m.filter.SetValue("")
			m.refreshRows()
			return m, nil
		case tea.KeyEnter:
			m.filtering = false
			m.filter.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.refreshRows()
		return m, cmd
	}

	switch m.mode {
	case browseCategories:
		return m.handleCategoryKey(msg)
	case browsePoems:
		return m.handlePoemKey(msg)
	case browseReadme:
		switch msg.String() {
		case "q", "esc":
			m.mode = browsePoems
			return m, nil
		}
		var cmd tea.Cmd
		m.readme, cmd = m.readme.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *BrowseModel) handleCategoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.catIndex > 0 {
			m.catIndex--
		}
	case "down", "j":
		if m.catIndex < len(corpus.Catalog)-1 {
			m.catIndex++
		}
	case "enter":
		m.category = corpus.Catalog[m.catIndex]
		m.mode = browsePoems
		m.page = 0
		m.poems = nil
		m.notice = ""
		m.errMsg = ""
		if m.category.Key == corpus.CustomKey {
			m.poems = m.custom.Poems()
			m.hasMore = false
			m.refreshRows()
			return m, nil
		}
		m.loading = true
		return m, m.loadPage(m.category.Key, 0)
	}
	return m, nil
}

func (m *BrowseModel) handlePoemKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.mode = browseCategories
		m.filter.SetValue("")
		return m, nil
	case "/":
		m.filtering = true
		m.filter.Focus()
		return m, nil
	case "n":
		if m.hasMore && !m.loading {
			m.loading = true
			return m, m.loadPage(m.category.Key, m.page+1)
		}
		return m, nil
	case "r":
		if m.category.ReadmePath != "" && !m.loading {
			m.loading = true
			return m, m.loadReadme(m.category.Key)
		}
		return m, nil
	case "a":
		if p, ok := m.selectedPoem(); ok {
			if m.custom.Add(p) {
				m.notice = fmt.Sprintf("已收入个性化：%s", p.Title)
			} else {
				m.notice = fmt.Sprintf("已在个性化中：%s", p.Title)
			}
		}
		return m, nil
	case "d":
		if p, ok := m.selectedPoem(); ok {
			if m.custom.Remove(p.ID) {
				m.notice = fmt.Sprintf("已移出个性化：%s", p.Title)
				if m.category.Key == corpus.CustomKey {
					m.poems = m.custom.Poems()
					m.refreshRows()
				}
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.poemTable, cmd = m.poemTable.Update(msg)
	m.updatePreview()
	return m, cmd
}

func (m *BrowseModel) applyPage(msg pageLoadedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.key != m.category.Key {
		// A category switch outran the fetch; drop the stale page.
		return m, nil
	}
	if msg.err != nil {
		m.errMsg = msg.err.Error()
		return m, nil
	}
	m.page = msg.page
	m.hasMore = msg.more
	m.poems = append(m.poems, msg.poems...)
	m.refreshRows()
	return m, nil
}

func (m *BrowseModel) loadPage(key string, page int) tea.Cmd {
	return func() tea.Msg {
		poems, more, err := m.loader.LoadPage(context.Background(), key, page)
		return pageLoadedMsg{key: key, page: page, poems: poems, more: more, err: err}
	}
}

func (m *BrowseModel) loadReadme(key string) tea.Cmd {
	return func() tea.Msg {
		text, err := m.loader.LoadReadme(context.Background(), key)
		return readmeMsg{key: key, text: text, err: err}
	}
}

func (m *BrowseModel) visiblePoems() []model.Poem {
	q := strings.TrimSpace(m.filter.Value())
	if q == "" {
		return m.poems
	}
	return search.Filter(m.poems, q)
}

func (m *BrowseModel) refreshRows() {
	visible := m.visiblePoems()
	rows := make([]table.Row, 0, len(visible))
	for _, p := range visible {
		rows = append(rows, table.Row{p.Title, p.Author, p.Dynasty})
	}
	m.poemTable.SetRows(rows)
	if m.poemTable.Cursor() >= len(rows) {
		m.poemTable.SetCursor(0)
	}
	m.updatePreview()
}

func (m *BrowseModel) selectedPoem() (model.Poem, bool) {
	visible := m.visiblePoems()
	i := m.poemTable.Cursor()
	if i < 0 || i >= len(visible) {
		return model.Poem{}, false
	}
	return visible[i], true
}

func (m *BrowseModel) updatePreview() {
	p, ok := m.selectedPoem()
	if !ok {
		m.preview.SetContent(mutedStyle.Render("无诗可读"))
		return
	}
	var b strings.Builder
	b.WriteString(selectedStyle.Render(p.Title))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%s · %s", p.Dynasty, p.Author)))
	b.WriteString("\n\n")
	b.WriteString(strings.Join(p.Content, "\n"))
	m.preview.SetContent(b.String())
	m.preview.GotoTop()
}

func (m *BrowseModel) resize() {
	if m.width <= 0 {
		return
	}
	tableWidth := m.width / 2
	m.poemTable.SetWidth(tableWidth)
	m.preview.Width = m.width - tableWidth - 4
	if m.height > 8 {
		m.poemTable.SetHeight(m.height - 6)
		m.preview.Height = m.height - 6
	}
	m.readme.Width = m.readmeWidth()
	if m.height > 4 {
		m.readme.Height = m.height - 3
	}
}

func (m *BrowseModel) readmeWidth() int {
	if m.width > 4 {
		return m.width - 4
	}
	return 76
}

// View implements tea.Model.
func (m *BrowseModel) View() string {
	switch m.mode {
	case browseReadme:
		header := titleStyle.Render(m.category.Name)
		return header + "\n" + m.readme.View() + "\n" + footerStyle.Render("q 返回")
	case browsePoems:
		return m.viewPoems()
	default:
		return m.viewCategories()
	}
}

func (m *BrowseModel) viewCategories() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("今朝诗集"))
	b.WriteString("\n\n")
	for i, c := range corpus.Catalog {
		cursor := "  "
		name := c.Name
		if i == m.catIndex {
			cursor = "> "
			name = selectedStyle.Render(name)
		}
		extra := ""
		if c.Key == corpus.CustomKey {
			extra = mutedStyle.Render(fmt.Sprintf("（%d 首）", m.custom.Len()))
		}
		b.WriteString(cursor + name + extra + "\n")
	}
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("↑/↓ 选择 · enter 进入 · q 退出"))
	return b.String()
}

func (m *BrowseModel) viewPoems() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.category.Name))
	if m.loading {
		b.WriteString(mutedStyle.Render("  加载中…"))
	}
	b.WriteString("\n")

	if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.poemTable.View(),
		previewStyle.Render(m.preview.View()))
	b.WriteString(body)
	b.WriteString("\n")

	if m.errMsg != "" {
		b.WriteString(errorStyle.Render(m.errMsg))
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}

	hints := []string{"/ 筛选", "a 收藏", "d 移出", "esc 返回"}
	if m.hasMore {
		hints = append([]string{"n 下一页"}, hints...)
	}
	if m.category.ReadmePath != "" {
		hints = append(hints, "r 简介")
	}
	b.WriteString(footerStyle.Render(strings.Join(hints, " · ")))
	return b.String()
}

// renderMarkdown renders a description document for the terminal, falling
// back to the raw text when the renderer fails.
func renderMarkdown(text string, width int) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}
	out, err := renderer.Render(text)
	if err != nil {
		return text
	}
	return out
}
