package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shopfront/internal/logtail"
)

// logState holds the log overlay.
type logState struct {
	open     bool
	viewport viewport.Model
	lines    []string
	err      error
}

type logTailMsg struct {
	lines []string
	err   error
}

// openLogs shows the overlay and reads the log file's tail.
func (m *Model) openLogs() tea.Cmd {
	m.logs.open = true
	m.logs.viewport = viewport.New(max(m.width-4, 1), max(m.height-3, 1))
	m.logs.viewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))
	return m.readLogs()
}

func (m *Model) readLogs() tea.Cmd {
	path := m.logPath
	return func() tea.Msg {
		if path == "" {
			return logTailMsg{err: fmt.Errorf("no log file configured")}
		}
		lines, err := logtail.Read(path, LogTailLines)
		if err != nil {
			return logTailMsg{err: err}
		}
		return logTailMsg{lines: logtail.FormatLines(lines, time.Local)}
	}
}

func (m *Model) handleLogTail(msg logTailMsg) {
	m.logs.err = msg.err
	m.logs.lines = msg.lines
	m.logs.viewport.SetContent(m.renderLogContent())
	m.logs.viewport.GotoBottom()
}

func (m *Model) renderLogContent() string {
	styles := m.theme.Styles()
	if m.logs.err != nil {
		return styles.DangerText.Render("Unable to read logs: " + m.logs.err.Error())
	}
	if len(m.logs.lines) == 0 {
		return styles.MutedText.Render("No log entries yet.")
	}
	out := make([]string, len(m.logs.lines))
	for i, line := range m.logs.lines {
		out[i] = colorizeLogLine(line, styles)
	}
	return strings.Join(out, "\n")
}

// colorizeLogLine colors the level column of a formatted line.
func colorizeLogLine(line string, styles Styles) string {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return styles.Text.Render(line)
	}
	var st lipgloss.Style
	switch fields[1] {
	case "ERROR", "FATAL", "PANIC", "DPANIC":
		st = styles.DangerText
	case "WARN":
		st = styles.WarningText
	case "DEBUG":
		st = styles.FaintText
	default:
		return styles.Text.Render(line)
	}
	return st.Render(line)
}

func (m *Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Logs), key.Matches(msg, m.keys.Escape):
		m.logs.open = false
	case msg.String() == "r":
		return m, m.readLogs()
	case key.Matches(msg, m.keys.Down):
		m.logs.viewport.ScrollDown(1)
	case key.Matches(msg, m.keys.Up):
		m.logs.viewport.ScrollUp(1)
	case key.Matches(msg, m.keys.PageDown):
		m.logs.viewport.PageDown()
	case key.Matches(msg, m.keys.PageUp):
		m.logs.viewport.PageUp()
	case key.Matches(msg, m.keys.Top):
		m.logs.viewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.logs.viewport.GotoBottom()
	}
	return m, nil
}

func (m Model) renderLogs() string {
	title := "Logs"
	if m.logPath != "" {
		title = "Logs · " + filepath.Base(m.logPath)
	}
	styles := m.theme.Styles()
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Width(max(m.width-2, 1))
	header := styles.AccentText.Bold(true).Render(title) + "  " +
		styles.FaintText.Render("r reload · esc close")
	return header + "\n" + box.Render(m.logs.viewport.View())
}
