package tui

import (
	"context"
	"sync"

	"github.com/IceWhaleTech/forgeterm"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// scrollbackLimit bounds the rendered transcript.
const scrollbackLimit = 5000

// AppModel holds the REPL state.
type AppModel struct {
	// Data
	Session *forgeterm.Session
	Lock    sync.Locker
	Lines   []string

	// UI State
	WindowSize tea.WindowSizeMsg
	Ready      bool
	Prompt     string
	Running    bool
	HistoryIdx int // -1 when not browsing history
	Draft      string
	cancel     context.CancelFunc

	// Components
	Input    textinput.Model
	Viewport viewport.Model
}

// InitialModel returns the REPL state for s. lock guards every command run
// on s and may be shared with a FUSE mount of the same session.
func InitialModel(s *forgeterm.Session, lock sync.Locker) AppModel {
	if lock == nil {
		lock = &sync.Mutex{}
	}

	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 4096
	ti.Focus()

	return AppModel{
		Session:    s,
		Lock:       lock,
		Prompt:     promptFor(s),
		HistoryIdx: -1,
		Input:      ti,
		Lines:      []string{welcomeStyle.Render("forgeterm: type 'help' to see available commands.")},
	}
}

// Init implements tea.Model.
func (m AppModel) Init() tea.Cmd {
	return textinput.Blink
}

// commandDoneMsg carries the result of a command run off the UI goroutine.
type commandDoneMsg struct {
	clear  bool
	result forgeterm.CommandResult
	prompt string
}
