// Package tui provides a Bubble Tea terminal user interface for takeout-restore.
package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/takeout-restore/internal/config"
	"github.com/handiism/takeout-restore/internal/restore"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	playlistStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateReconciling
	StateCopying
	StateComplete
	StateError
)

const (
	inputRoot = iota
	outputRoot
)

// maxLogs is the number of log lines kept on screen.
const maxLogs = 10

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   restore.ProgressLevel
}

// eventSink buffers progress events raised on manager goroutines until the
// next tick drains them.
type eventSink struct {
	mu     sync.Mutex
	events []restore.ProgressEvent
}

func (s *eventSink) push(e restore.ProgressEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *eventSink) drain() []restore.ProgressEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.events
	s.events = nil
	return events
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	inputs    []textinput.Model
	focus     int
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logs      []LogEntry
	playlists []string
	err       error

	ctx    context.Context
	cancel context.CancelFunc

	manager *restore.Manager
	sink    *eventSink

	doneFiles  int32
	totalFiles int32
	copied     int32
	skipped    int32
	failed     int32

	// Options
	playlist bool
	coverArt bool
	verbose  bool

	width  int
	height int
}

// NewModel creates a new TUI model using settings.
func NewModel(settings *config.Settings) Model {
	in := textinput.New()
	in.Placeholder = "/path/to/Takeout/Google Play Music"
	in.Focus()
	in.CharLimit = 500
	in.Width = 60

	out := textinput.New()
	out.Placeholder = "/path/to/restored"
	out.CharLimit = 500
	out.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:    StateInput,
		inputs:   []textinput.Model{in, out},
		spinner:  sp,
		progress: prog,
		settings: settings,
		playlist: settings.CreatePlaylist,
		coverArt: settings.SaveCoverArtInFolder,
		logs:     make([]LogEntry, 0),
		sink:     &eventSink{},
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ReconcileDoneMsg is sent when the pool is built and every playlist
	// is reconciled.
	ReconcileDoneMsg struct {
		Playlists []string
		Manager   *restore.Manager
		Err       error
	}

	// CopyDoneMsg is sent when every playlist has been materialized.
	CopyDoneMsg struct {
		Err error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateCopying || m.state == StateReconciling {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			}

		case "tab", "shift+tab", "up", "down":
			if m.state == StateInput {
				m.inputs[m.focus].Blur()
				m.focus = (m.focus + 1) % len(m.inputs)
				cmds = append(cmds, m.inputs[m.focus].Focus())
				return m, tea.Batch(cmds...)
			}

		case "enter":
			if m.state == StateInput {
				if m.inputs[inputRoot].Value() == "" || m.inputs[outputRoot].Value() == "" {
					m.inputs[m.focus].Blur()
					m.focus = (m.focus + 1) % len(m.inputs)
					return m, m.inputs[m.focus].Focus()
				}
				m.state = StateReconciling
				return m, tea.Batch(m.reconcile(), m.spinner.Tick, m.tickProgress())
			}

		case "ctrl+p":
			if m.state == StateInput {
				m.playlist = !m.playlist
			}

		case "ctrl+k":
			if m.state == StateInput {
				m.coverArt = !m.coverArt
			}

		case "ctrl+l":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				// Reset for a new run, keeping the entered paths
				m.state = StateInput
				m.logs = nil
				m.playlists = nil
				m.err = nil
				m.doneFiles, m.totalFiles = 0, 0
				m.copied, m.skipped, m.failed = 0, 0, 0
				m.manager = nil
				m.sink.drain()
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.focus = inputRoot
				m.inputs[outputRoot].Blur()
				cmds = append(cmds, m.inputs[inputRoot].Focus())
				return m, tea.Batch(cmds...)
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ReconcileDoneMsg:
		m.appendLogs()
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else if m.state == StateReconciling {
			m.playlists = msg.Playlists
			m.manager = msg.Manager
			m.state = StateCopying
			cmds = append(cmds, m.materialize())
		}

	case CopyDoneMsg:
		m.appendLogs()
		if m.manager != nil {
			m.doneFiles, m.totalFiles = m.manager.GetProgress()
			m.copied, m.skipped, m.failed = m.manager.GetFileCounts()
		}
		if msg.Err != nil && m.ctx.Err() == nil {
			m.state = StateError
			m.err = msg.Err
		} else if m.ctx.Err() != nil {
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		} else {
			m.state = StateComplete
		}

	case TickMsg:
		if m.state != StateReconciling && m.state != StateCopying {
			break
		}
		m.appendLogs()
		cmds = append(cmds, m.tickProgress())

		if m.manager != nil && m.state == StateCopying {
			m.doneFiles, m.totalFiles = m.manager.GetProgress()

			var percent float64
			if m.totalFiles > 0 {
				percent = float64(m.doneFiles) / float64(m.totalFiles)
			}
			cmds = append(cmds, m.progress.SetPercent(percent))
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// appendLogs moves buffered progress events into the visible log.
func (m *Model) appendLogs() {
	for _, event := range m.sink.drain() {
		if event.Level == restore.LevelVerbose && !m.verbose {
			continue
		}
		m.logs = append(m.logs, LogEntry{Message: event.Message, Level: event.Level})
	}
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Takeout Restore"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Rebuild playlist folders from a music export"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateReconciling:
		b.WriteString(m.viewReconciling())
	case StateCopying:
		b.WriteString(m.viewCopying())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func checkbox(on bool) string {
	if on {
		return "[×]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Export folder (contains Tracks and Playlists):"))
	b.WriteString("\n")
	b.WriteString(m.inputs[inputRoot].View())
	b.WriteString("\n\n")
	b.WriteString(subtitleStyle.Render("Output folder:"))
	b.WriteString("\n")
	b.WriteString(m.inputs[outputRoot].View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Create playlist file (ctrl+p)\n", checkbox(m.playlist)))
	b.WriteString(fmt.Sprintf("  %s Save folder cover art (ctrl+k)\n", checkbox(m.coverArt)))
	b.WriteString(fmt.Sprintf("  %s Verbose/debug output (ctrl+l)\n", checkbox(m.verbose)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Duplicate positions: %s", m.settings.DuplicatePositionPolicy)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewReconciling() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Reading tracks and playlists..."))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewCopying() string {
	var b strings.Builder

	if len(m.playlists) > 0 {
		b.WriteString(successStyle.Render(fmt.Sprintf("Found %d playlist(s):", len(m.playlists))))
		b.WriteString("\n")
		for _, name := range m.playlists {
			b.WriteString(playlistStyle.Render(fmt.Sprintf("  ♪ %s", name)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	var percent float64
	if m.totalFiles > 0 {
		percent = float64(m.doneFiles) / float64(m.totalFiles)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf("Files: %d/%d", m.doneFiles, m.totalFiles)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	box := boxStyle.Render(fmt.Sprintf(
		"Restore Complete!\n\n"+
			"Playlists: %d\n"+
			"Copied: %d\n"+
			"Already present: %d\n"+
			"Failed: %d",
		len(m.playlists),
		m.copied,
		m.skipped,
		m.failed,
	))
	return box + "\n" + m.renderLogs()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case restore.LevelError:
			style = errorStyle
			prefix = "✗"
		case restore.LevelWarning:
			style = warningStyle
			prefix = "!"
		case restore.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case restore.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • tab: switch field • ctrl+p: playlist • ctrl+k: cover art • ctrl+l: verbose • esc: quit"
	case StateReconciling, StateCopying:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new restore • q: quit"
	}
	return ""
}

// runSettings returns a copy of the settings with the toggled options applied.
func (m Model) runSettings() *config.Settings {
	settings := *m.settings
	settings.CreatePlaylist = m.playlist
	settings.SaveCoverArtInFolder = m.coverArt
	return &settings
}

// reconcile builds the pool and reconciles every playlist.
func (m Model) reconcile() tea.Cmd {
	ctx, sink := m.ctx, m.sink
	input := m.inputs[inputRoot].Value()
	settings := m.runSettings()

	return func() tea.Msg {
		manager := restore.NewManager(settings, sink.push)
		if err := manager.Initialize(ctx, input); err != nil {
			return ReconcileDoneMsg{Err: err}
		}

		return ReconcileDoneMsg{
			Playlists: manager.GetPlaylistNames(),
			Manager:   manager,
		}
	}
}

// materialize copies every playlist in the background.
func (m Model) materialize() tea.Cmd {
	ctx, manager := m.ctx, m.manager
	output := m.inputs[outputRoot].Value()

	return func() tea.Msg {
		if manager == nil {
			return CopyDoneMsg{Err: fmt.Errorf("no manager")}
		}
		return CopyDoneMsg{Err: manager.Materialize(ctx, output)}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
