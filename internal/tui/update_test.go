package tui

import (
	"strings"
	"testing"

	"github.com/IceWhaleTech/forgeterm"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestModel() AppModel {
	return InitialModel(forgeterm.NewSession(forgeterm.SessionOptions{ID: "tui"}), nil)
}

// enter submits line and feeds the finished command back into the model.
func enter(m AppModel, line string) AppModel {
	m.Input.SetValue(line)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		return next.(AppModel)
	}
	done, _ := next.(AppModel).Update(cmd())
	return done.(AppModel)
}

func key(m AppModel, k tea.KeyType) AppModel {
	next, _ := m.Update(tea.KeyMsg{Type: k})
	return next.(AppModel)
}

func TestSubmitAppendsTranscript(t *testing.T) {
	m := newTestModel()
	start := len(m.Lines)

	m = enter(m, "pwd")
	if len(m.Lines) != start+2 {
		t.Fatalf("Expected prompt and output lines, got %v", m.Lines)
	}
	if !strings.Contains(m.Lines[start], "user@forge:~/project$") || !strings.Contains(m.Lines[start], "pwd") {
		t.Errorf("Unexpected prompt line: %q", m.Lines[start])
	}
	if !strings.Contains(m.Lines[start+1], "/home/user/project") {
		t.Errorf("Unexpected output line: %q", m.Lines[start+1])
	}
	if m.Input.Value() != "" {
		t.Errorf("Expected input to be cleared, got %q", m.Input.Value())
	}
}

func TestSubmitRunsOffTheUIGoroutine(t *testing.T) {
	m := newTestModel()
	m.Input.SetValue("cd ..")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(AppModel)

	if cmd == nil {
		t.Fatal("Expected enter to return a command")
	}
	if !m.Running {
		t.Error("Expected model to be running until the result arrives")
	}
	if m.prompt() != "user@forge:~/project$" {
		t.Errorf("Prompt changed before the command finished: %q", m.prompt())
	}

	m.Input.SetValue("pwd")
	if _, again := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); again != nil {
		t.Error("Expected enter to be ignored while a command runs")
	}

	msg := cmd()
	if _, ok := msg.(commandDoneMsg); !ok {
		t.Fatalf("Expected commandDoneMsg, got %T", msg)
	}
	next, _ = m.Update(msg)
	m = next.(AppModel)
	if m.Running {
		t.Error("Expected model to be idle after the result arrives")
	}
	if m.prompt() != "user@forge:~$" {
		t.Errorf("Expected prompt user@forge:~$, got %q", m.prompt())
	}
}

func TestSubmitUpdatesPrompt(t *testing.T) {
	m := newTestModel()
	m = enter(m, "cd ..")
	if got := m.prompt(); got != "user@forge:~$" {
		t.Errorf("Expected prompt user@forge:~$, got %q", got)
	}
}

func TestSubmitClear(t *testing.T) {
	m := newTestModel()
	m = enter(m, "ls")
	m = enter(m, "clear")
	if len(m.Lines) != 0 {
		t.Errorf("Expected clear to empty the transcript, got %v", m.Lines)
	}
}

func TestHistoryRecall(t *testing.T) {
	m := newTestModel()
	m = enter(m, "pwd")
	m = enter(m, "ls")

	m.Input.SetValue("draft")
	m = key(m, tea.KeyUp)
	if m.Input.Value() != "ls" {
		t.Errorf("Expected ls, got %q", m.Input.Value())
	}
	m = key(m, tea.KeyUp)
	if m.Input.Value() != "pwd" {
		t.Errorf("Expected pwd, got %q", m.Input.Value())
	}
	m = key(m, tea.KeyUp)
	if m.Input.Value() != "pwd" {
		t.Errorf("Expected to stay on oldest entry, got %q", m.Input.Value())
	}
	m = key(m, tea.KeyDown)
	m = key(m, tea.KeyDown)
	if m.Input.Value() != "draft" || m.HistoryIdx != -1 {
		t.Errorf("Expected draft restored, got %q (idx %d)", m.Input.Value(), m.HistoryIdx)
	}
}

func TestWindowSize(t *testing.T) {
	m := newTestModel()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(AppModel)
	if !m.Ready {
		t.Error("Expected model to be ready after a resize")
	}
	if m.Viewport.Height != 22 {
		t.Errorf("Expected viewport height 22, got %d", m.Viewport.Height)
	}
}

func TestQuitKeys(t *testing.T) {
	m := newTestModel()
	for _, k := range []tea.KeyType{tea.KeyCtrlC, tea.KeyCtrlD} {
		_, cmd := m.Update(tea.KeyMsg{Type: k})
		if cmd == nil {
			t.Fatalf("Expected a quit command for %v", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("Expected tea.QuitMsg for %v", k)
		}
	}
}
