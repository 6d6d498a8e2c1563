// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package poll

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// checkMsg carries one poll result into the update loop.
type checkMsg struct {
	done   bool
	status string
	err    error
}

type tickMsg struct{}

type waitModel struct {
	ctx      context.Context
	label    string
	interval time.Duration
	deadline time.Time
	fn       Func

	sp     spinner.Model
	status string
	err    error
}

func waitTUI(ctx context.Context, label string, interval, budget time.Duration, fn Func) error {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := waitModel{
		ctx:      ctx,
		label:    label,
		interval: interval,
		fn:       fn,
		sp:       sp,
	}
	if budget > 0 {
		m.deadline = time.Now().Add(budget)
	}

	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return err
	}
	return final.(waitModel).err
}

func (m waitModel) Init() tea.Cmd {
	return tea.Batch(m.sp.Tick, m.check())
}

// check runs one poll in a command so the UI stays responsive.
func (m waitModel) check() tea.Cmd {
	return func() tea.Msg {
		done, status, err := m.fn(m.ctx)
		return checkMsg{done: done, status: status, err: err}
	}
}

func (m waitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.err = context.Canceled
			return m, tea.Quit
		}
	case checkMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.status = msg.status
		if msg.done {
			return m, tea.Quit
		}
		if !m.deadline.IsZero() && time.Now().After(m.deadline) {
			m.err = fmt.Errorf("timed out waiting for %s (last status: %s)", m.label, m.status)
			return m, tea.Quit
		}
		return m, tea.Tick(m.interval, func(time.Time) tea.Msg { return tickMsg{} })
	case tickMsg:
		return m, m.check()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.sp, cmd = m.sp.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m waitModel) View() string {
	status := m.status
	if status == "" {
		status = "checking"
	}
	return fmt.Sprintf("%s %s: %s (q to abort)\n", m.sp.View(), m.label, status)
}
