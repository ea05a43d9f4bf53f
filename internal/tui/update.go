package tui

import (
	"context"
	"strings"

	"github.com/IceWhaleTech/forgeterm"

	tea "github.com/charmbracelet/bubbletea"
)

// Update handles events.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.WindowSize = msg
		m.Viewport.Width = msg.Width
		m.Viewport.Height = msg.Height - 2 // prompt line + footer
		if m.Viewport.Height < 1 {
			m.Viewport.Height = 1
		}
		m.Input.Width = msg.Width - len(m.prompt()) - 1
		m.Ready = true
		m.refresh()
		return m, nil

	case commandDoneMsg:
		m.finish(msg)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+d":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case "enter":
			if m.Running {
				return m, nil
			}
			return m, m.submit(m.Input.Value())
		case "up":
			if !m.Running {
				m.recall(-1)
			}
			return m, nil
		case "down":
			if !m.Running {
				m.recall(1)
			}
			return m, nil
		case "pgup", "pgdown":
			m.Viewport, cmd = m.Viewport.Update(msg)
			return m, cmd
		}
	}

	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

// submit echoes line into the transcript and returns a command that runs it
// on the session off the UI goroutine.
func (m *AppModel) submit(line string) tea.Cmd {
	m.Lock.Lock()
	clearing := isClear(m.Session, line)
	m.Lock.Unlock()

	m.Input.SetValue("")
	m.HistoryIdx = -1
	m.Draft = ""
	m.Running = true
	if !clearing {
		m.appendLines(promptStyle.Render(m.prompt()) + " " + line)
		m.refresh()
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	s, lock := m.Session, m.Lock
	return func() tea.Msg {
		defer cancel()
		lock.Lock()
		defer lock.Unlock()
		result := s.ProcessCommandContext(ctx, line)
		return commandDoneMsg{clear: clearing, result: result, prompt: promptFor(s)}
	}
}

// finish appends a command's output to the transcript.
func (m *AppModel) finish(msg commandDoneMsg) {
	m.Running = false
	m.cancel = nil
	m.Prompt = msg.prompt

	if msg.clear && msg.result.ExitCode == forgeterm.ExitOK {
		m.Lines = nil
		m.refresh()
		return
	}

	if msg.result.Output != "" {
		style := outputStyle
		if msg.result.ExitCode != forgeterm.ExitOK {
			style = errorStyle
		}
		for _, l := range strings.Split(msg.result.Output, "\n") {
			m.appendLines(style.Render(l))
		}
	}
	m.refresh()
}

// recall moves through history; dir is -1 for older, 1 for newer.
func (m *AppModel) recall(dir int) {
	m.Lock.Lock()
	history := m.Session.History()
	m.Lock.Unlock()

	if len(history) == 0 {
		return
	}

	switch {
	case dir < 0 && m.HistoryIdx == -1:
		m.Draft = m.Input.Value()
		m.HistoryIdx = len(history) - 1
	case dir < 0 && m.HistoryIdx > 0:
		m.HistoryIdx--
	case dir > 0 && m.HistoryIdx >= 0:
		m.HistoryIdx++
	default:
		return
	}

	if m.HistoryIdx >= len(history) {
		m.HistoryIdx = -1
		m.Input.SetValue(m.Draft)
	} else {
		m.Input.SetValue(history[m.HistoryIdx])
	}
	m.Input.CursorEnd()
}

func (m *AppModel) appendLines(lines ...string) {
	m.Lines = append(m.Lines, lines...)
	if over := len(m.Lines) - scrollbackLimit; over > 0 {
		m.Lines = m.Lines[over:]
	}
}

func (m *AppModel) refresh() {
	m.Viewport.SetContent(strings.Join(m.Lines, "\n"))
	m.Viewport.GotoBottom()
}

// isClear reports whether line resolves to the clear builtin.
func isClear(s *forgeterm.Session, line string) bool {
	tokens := s.Aliases().Expand(forgeterm.Tokenize(forgeterm.Sanitize(line)))
	return len(tokens) > 0 && tokens[0] == "clear"
}
