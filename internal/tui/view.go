package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/studyclock/internal/study"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.err != nil {
		return docStyle.Render(dangerStyle.Render("Error: "+m.err.Error()) + "\n\n" + m.help.View(m.keys))
	}

	s := m.snapshot
	header := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(s.HeaderTitle),
		subtleStyle.Render(s.HeaderText),
	)
	day := dayStyle.Render(fmt.Sprintf("%s %s", s.DayTitle, s.DayLabel))

	sections := []string{
		lipgloss.JoinHorizontal(lipgloss.Center, header, "  ", day),
		sectionStyle.Render("Today"),
		subtleStyle.Render(s.Expires),
		m.viewRows(0, s.Daily),
	}
	if s.ShowWeekly {
		sections = append(sections,
			sectionStyle.Render("This week"),
			subtleStyle.Render(s.ExpiresWeekly),
			m.viewRows(len(s.Daily), s.Weekly),
		)
	}
	if m.status != "" {
		sections = append(sections, "", warningStyle.Render(m.status))
	}
	sections = append(sections, "", m.help.View(m.keys))

	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) viewRows(offset int, rows []study.CategoryState) string {
	var b strings.Builder
	for i, r := range rows {
		cursor := "  "
		title := r.Title
		if offset+i == m.cursor {
			cursor = "> "
			title = selectedStyle.Render(title)
		}
		mark := "○"
		if r.Complete {
			mark = doneStyle.Render("✓")
		}
		fmt.Fprintf(&b, "%s%s %s  %s\n", cursor, mark, title, subtleStyle.Render(r.Detail))
	}
	return strings.TrimRight(b.String(), "\n")
}
