package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader draws the title and the current address, or the address
// input while it is open.
func (m *Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)

	logo := bg.Render("shopfront", styles.Logo)
	var address string
	switch {
	case m.addressing:
		address = m.address.View()
	case m.hist != nil:
		address = bg.Render(m.hist.Location().String(), styles.AccentText)
	}
	parts := []string{logo, address}
	if m.hist != nil {
		var nav string
		if m.hist.CanGoBack() {
			nav = bg.Render("◀ b", styles.MutedText)
		}
		if m.hist.CanGoForward() {
			if nav != "" {
				nav += bg.Render(" ", styles.MutedText)
			}
			nav += bg.Render("f ▶", styles.MutedText)
		}
		if nav != "" {
			parts = append(parts, nav)
		}
	}
	return bg.FillLine(bg.Join(parts, "  "), m.width)
}

// renderStatus draws the toast, or the scroll position and focus when no
// toast is up.
func (m *Model) renderStatus() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Background)

	if m.toasts != nil {
		if t, ok := m.toasts.Current(); ok {
			badge := styles.ToastStyle(t.Kind).Render(string(t.Kind))
			return bg.FillLine(badge+bg.Render(" "+t.Message, styles.Text), m.width)
		}
	}

	var parts []string
	if total := len(m.pg.lines); total > m.vp.Height {
		parts = append(parts, bg.Render(fmt.Sprintf("%3.0f%%", m.vp.ScrollPercent()*100), styles.FaintText))
	}
	switch {
	case m.editing:
		parts = append(parts, bg.Render("editing · enter apply · esc leave", styles.WarningText))
	case !m.focused.IsZero():
		parts = append(parts, bg.Render("focus: "+label(m.focused), styles.MutedText))
	}
	return bg.FillLine(bg.Join(parts, "  "), m.width)
}

// renderCommandBar lists the short help bindings.
func (m *Model) renderCommandBar() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Warning))

	var parts []string
	for _, binding := range m.keys.ShortHelp() {
		h := binding.Help()
		parts = append(parts, bg.Render(h.Key, keyStyle)+bg.Render(" "+h.Desc, styles.MutedText))
	}
	return bg.FillLine(bg.Join(parts, "  "), m.width)
}
