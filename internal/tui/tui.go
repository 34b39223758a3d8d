package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"newsdesk/internal/core"
	"newsdesk/internal/headline"
)

// model holds the state of the draft review screen: the draft itself and
// the candidate image the cursor is on.
type model struct {
	draft       core.Draft
	plan        headline.Plan
	selectedIdx int
	width       int
	height      int
	chosen      string
	quitting    bool
}

// InitialModel builds the review screen for a draft.
func InitialModel(draft core.Draft) model {
	selected := 0
	for i, url := range draft.ImageOptions {
		if url == draft.ImageURL {
			selected = i
			break
		}
	}
	return model{
		draft:       draft,
		plan:        headline.Format(draft.Headline),
		selectedIdx: selected,
	}
}

// Init is the first command that will be run.
func (m model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model accordingly.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.selectedIdx > 0 {
				m.selectedIdx--
			}
		case "down", "j":
			if m.selectedIdx < len(m.draft.ImageOptions)-1 {
				m.selectedIdx++
			}
		case "enter":
			if len(m.draft.ImageOptions) > 0 {
				m.chosen = m.draft.ImageOptions[m.selectedIdx]
			}
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("160")).Padding(0, 1)
	panelStyle     = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1)
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Margin(1, 0, 0, 0)
)

// View renders the review screen.
func (m model) View() string {
	if m.quitting {
		return ""
	}

	headlineBlock := ""
	for _, line := range m.plan.Lines {
		headlineBlock += titleStyle.Render(line) + "\n"
	}
	lastLine := ""
	if m.plan.Prefix != "" {
		lastLine = titleStyle.Render(m.plan.Prefix) + " "
	}
	lastLine += highlightStyle.Render(m.plan.Highlight)
	headlineBlock += lastLine

	body := headlineBlock + "\n\n"
	if m.draft.Summary != "" {
		body += m.draft.Summary + "\n\n"
	}
	if m.draft.NewsURL != "" {
		body += dimStyle.Render("Source: "+m.draft.NewsURL) + "\n\n"
	}

	if len(m.draft.ImageOptions) == 0 {
		body += dimStyle.Render("No image candidates yet.")
	} else {
		body += "Image candidates:\n"
		for i, url := range m.draft.ImageOptions {
			marker := "  "
			line := truncate(url, 70)
			if i == m.selectedIdx {
				marker = "> "
				line = selectedStyle.Render(line)
			}
			if url == m.draft.ImageURL {
				line += dimStyle.Render(" (current)")
			}
			body += marker + line + "\n"
		}
	}

	help := helpStyle.Render("up/down: move  enter: choose image  q: quit")
	return panelStyle.Render(body) + "\n" + help
}

// ChosenImage returns the image the operator picked, empty when the
// review was dismissed without a choice.
func (m model) ChosenImage() string {
	return m.chosen
}

// Run shows the review screen and returns the chosen image URL, if any.
func Run(draft core.Draft) (string, error) {
	program := tea.NewProgram(InitialModel(draft))
	final, err := program.Run()
	if err != nil {
		return "", fmt.Errorf("review UI failed: %w", err)
	}
	if m, ok := final.(model); ok {
		return m.ChosenImage(), nil
	}
	return "", nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
