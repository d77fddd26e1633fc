// Package viewer provides a Bubble Tea pager for report cards.
package viewer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/gradebook/internal/report"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true).Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// Model implements the Bubble Tea report pager.
type Model struct {
	title   string
	content string

	viewport viewport.Model
	ready    bool

	width  int
	height int
}

// NewModel constructs a pager over content.
func NewModel(title, content string) *Model {
	return &Model{
		title:    title,
		content:  highlight(content),
		viewport: viewport.New(0, 0),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "g", "home":
			m.viewport.GotoTop()
			return m, nil
		case "G", "end":
			m.viewport.GotoBottom()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return ""
	}
	return strings.Join([]string{m.renderHeader(), m.viewport.View(), m.renderFooter()}, "\n")
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	headerHeight := lipgloss.Height(m.renderHeader())
	footerHeight := lipgloss.Height(m.renderFooter())
	bodyHeight := m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	m.viewport.Width = m.width
	m.viewport.Height = bodyHeight
	if !m.ready {
		m.viewport.SetContent(m.content)
		m.ready = true
	}
}

func (m *Model) renderHeader() string {
	return headerStyle.Render(m.title)
}

func (m *Model) renderFooter() string {
	percent := int(m.viewport.ScrollPercent() * 100)
	return footerStyle.Render(fmt.Sprintf("%3d%%  ↑/↓ scroll · g/G top/bottom · q quit", percent))
}

func highlight(content string) string {
	content = strings.ReplaceAll(content, report.PassGlyph, passStyle.Render(report.PassGlyph))
	return strings.ReplaceAll(content, report.FailGlyph, failStyle.Render(report.FailGlyph))
}
