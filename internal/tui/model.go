// Package tui is the participant dashboard: today's activities, their
// completion and the time left before they expire, refreshed every second.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/studyclock/internal/logger"
	"github.com/julianstephens/studyclock/internal/rotation"
	"github.com/julianstephens/studyclock/internal/study"
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

type Model struct {
	engine   *study.Engine
	snapshot study.Snapshot
	err      error
	status   string
	cursor   int
	keys     KeyMap
	help     help.Model
	quitting bool
	width    int
	height   int
}

func NewModel(engine *study.Engine) Model {
	m := Model{
		engine: engine,
		keys:   DefaultKeyMap(),
		help:   help.New(),
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m *Model) refresh() {
	snap, err := m.engine.Today(context.Background())
	if err != nil {
		// Logged once per distinct error, not on every tick.
		if m.err == nil || m.err.Error() != err.Error() {
			logger.Error("Failed to load dashboard", "error", err)
		}
		m.err = err
		return
	}
	m.err = nil
	m.snapshot = snap
	if n := len(m.rows()); m.cursor >= n && n > 0 {
		m.cursor = n - 1
	}
}

// rows are the selectable activities: the daily list, then the weekly list
// once weekly activities are shown.
func (m Model) rows() []study.CategoryState {
	rows := append([]study.CategoryState{}, m.snapshot.Daily...)
	if m.snapshot.ShowWeekly {
		rows = append(rows, m.snapshot.Weekly...)
	}
	return rows
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TickMsg:
		m.refresh()
		return m, tick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.rows())-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Refresh):
			m.refresh()
		case key.Matches(msg, m.keys.Start):
			m.startSelected()
		}
	}
	return m, nil
}

func (m *Model) startSelected() {
	rows := m.rows()
	if len(rows) == 0 {
		return
	}
	row := rows[m.cursor]
	if row.Complete {
		m.status = fmt.Sprintf("%s is already done.", row.Title)
		return
	}
	_, scheduled, err := m.engine.Start(context.Background(), row.Category)
	switch {
	case errors.Is(err, rotation.ErrNoSchedule):
		m.status = fmt.Sprintf("%s is not available yet. Try again after the next sync.", row.Title)
	case err != nil:
		m.status = fmt.Sprintf("Could not start %s: %v", row.Title, err)
	default:
		m.status = fmt.Sprintf("Started %s. Run 'studyclock complete %s' when finished.", scheduled.ActivityIdentifier, row.Category)
	}
}
