// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// JobItem is one selectable processing job run.
type JobItem struct {
	Name    string
	Status  string
	Created time.Time
}

// SelectJobs presents the job list and returns the two runs the user picked,
// or nil if the selection was aborted.
func SelectJobs(items []JobItem) []JobItem {
	p := tea.NewProgram(model{items: items})
	m, _ := p.Run()
	return m.(model).selected
}

type model struct {
	items    []JobItem
	cursor   int
	selected []JobItem
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "w":
			return m, tea.WindowSize()
		case "q", "esc":
			m.selected = nil
			return m, tea.Quit
		case "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case " ":
			if contains(m.selected, m.items[m.cursor]) {
				// Remove item from selected
				for i, v := range m.selected {
					if v.Name == m.items[m.cursor].Name {
						m.selected = append(m.selected[:i], m.selected[i+1:]...)
						break
					}
				}
			} else if len(m.selected) < 2 {
				m.selected = append(m.selected, m.items[m.cursor])
			}
		case "enter":
			if len(m.selected) == 2 {
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m model) View() string {
	s := "Select two analysis runs:\n\n"
	for i, job := range m.items {
		cursor := " "
		if m.cursor == i {
			cursor = ">"
		}
		mark := " "
		if contains(m.selected, job) {
			mark = "x"
		}

		s += fmt.Sprintf("%s [%s] %-60s %-10s %s\n", cursor, mark, job.Name, job.Status, job.Created.Format("2006-01-02T15:04:05Z"))
	}
	return s + "\nSPACE: toggle, ENTER: go, Q/ESCAPE: quit\n"
}

func contains(jobs []JobItem, job JobItem) bool {
	for _, j := range jobs {
		if j.Name == job.Name {
			return true
		}
	}
	return false
}
