// Package tui provides a Bubble Tea terminal user interface for
// album-downloader.
package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/handiism/album-downloader/internal/config"
	"github.com/handiism/album-downloader/internal/download"
	"github.com/handiism/album-downloader/internal/model"
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

	albumStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

const maxLogs = 10

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateInitializing
	StateDownloading
	StateComplete
	StateError
)

// Level is the severity of a log line shown in the UI.
type Level int

const (
	LevelInfo Level = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   Level
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logger    zerolog.Logger
	logs      []LogEntry
	album     *model.Album
	result    *download.Result
	err       error

	ctx    context.Context
	cancel context.CancelFunc

	manager *download.Manager
	events  chan tea.Msg

	filesTotal    int32
	filesSettled  int32
	receivedBytes int64

	// Options
	playlist bool
	tags     bool
	verbose  bool

	width  int
	height int
}

// NewModel creates a new TUI model. settings is copied per download, so
// the option toggles never change the caller's value.
func NewModel(settings *config.Settings, logger zerolog.Logger) Model {
	ti := textinput.New()
	ti.Placeholder = "https://example.com/album/name"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		logger:    logger,
		logs:      make([]LogEntry, 0),
		ctx:       ctx,
		cancel:    cancel,
		playlist:  settings.Playlist.Enabled,
		tags:      settings.Tags.Enabled,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// InitDoneMsg is sent when the album page has been fetched and parsed.
	InitDoneMsg struct {
		Manager *download.Manager
		Events  chan tea.Msg
		Err     error
	}

	// WaveMsg is sent when a wave of downloads starts.
	WaveMsg struct {
		Wave  int
		Tasks int
	}

	// OutcomeMsg is sent when a file settles.
	OutcomeMsg struct {
		Index   int
		Outcome download.Outcome
	}

	// DownloadDoneMsg is sent when the download finished or aborted.
	DownloadDoneMsg struct {
		Result *download.Result
		Err    error
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
			if m.state == StateDownloading || m.state == StateInitializing {
				m.cancel()
				m.appendLog(LogEntry{Message: "Cancelling, waiting for running downloads to stop", Level: LevelWarning})
			}

		case "enter":
			if m.state == StateInput && strings.TrimSpace(m.textInput.Value()) != "" {
				m.state = StateInitializing
				return m, tea.Batch(m.initializeDownload(), m.spinner.Tick)
			}

		case "ctrl+p":
			if m.state == StateInput {
				m.playlist = !m.playlist
			}

		case "ctrl+t":
			if m.state == StateInput {
				m.tags = !m.tags
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
				m.reset()
				return m, nil
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case InitDoneMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
			break
		}
		m.manager = msg.Manager
		m.album = msg.Manager.Album()
		m.events = msg.Events
		m.state = StateDownloading
		cmds = append(cmds, m.startDownload(), waitForEvent(m.events), m.tickProgress())

	case WaveMsg:
		m.appendLog(LogEntry{Message: fmt.Sprintf("Wave %d: %d file(s)", msg.Wave+1, msg.Tasks), Level: LevelVerbose})
		cmds = append(cmds, waitForEvent(m.events))

	case OutcomeMsg:
		m.appendLog(outcomeLog(msg.Outcome))
		cmds = append(cmds, waitForEvent(m.events))

	case DownloadDoneMsg:
		m.result = msg.Result
		m.refreshProgress()
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = errors.New("cancelled by user")
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
		}

	case TickMsg:
		if m.manager != nil && m.state == StateDownloading {
			m.refreshProgress()

			var percent float64
			if m.filesTotal > 0 {
				percent = float64(m.filesSettled) / float64(m.filesTotal)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) reset() {
	m.state = StateInput
	m.logs = nil
	m.album = nil
	m.result = nil
	m.err = nil
	m.filesSettled = 0
	m.filesTotal = 0
	m.receivedBytes = 0
	m.manager = nil
	m.events = nil
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.textInput.SetValue("")
	m.textInput.Focus()
}

func (m *Model) refreshProgress() {
	if m.manager == nil {
		return
	}
	m.receivedBytes, m.filesSettled, m.filesTotal = m.manager.GetProgress()
}

func (m *Model) appendLog(entry LogEntry) {
	if entry.Level == LevelVerbose && !m.verbose {
		return
	}
	m.logs = append(m.logs, entry)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

func outcomeLog(out download.Outcome) LogEntry {
	name := filepath.Base(out.Task.Path)

	switch out.Kind {
	case download.KindDownloaded:
		return LogEntry{Message: "Downloaded: " + name, Level: LevelSuccess}
	case download.KindSkippedExisting:
		return LogEntry{Message: "Exists, skipped: " + name, Level: LevelVerbose}
	case download.KindSkippedNotFound:
		return LogEntry{Message: "Host not found, skipped: " + name, Level: LevelWarning}
	case download.KindSkippedHTTPError:
		return LogEntry{Message: fmt.Sprintf("HTTP %d, skipped: %s", out.StatusCode, name), Level: LevelWarning}
	case download.KindFatal:
		return LogEntry{Message: fmt.Sprintf("Failed: %s: %v", name, out.Err), Level: LevelError}
	default:
		return LogEntry{Message: name, Level: LevelInfo}
	}
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// waitForEvent delivers the next hook event of a running download.
func waitForEvent(events chan tea.Msg) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("🎵 Album Downloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Download every track of an album page"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateInitializing:
		b.WriteString(m.viewInitializing())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
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
		return "[x]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter album URL:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s Create playlist (ctrl+p)\n", checkbox(m.playlist))
	fmt.Fprintf(&b, "  %s Write ID3 tags (ctrl+t)\n", checkbox(m.tags))
	fmt.Fprintf(&b, "  %s Show skipped files and waves (ctrl+l)\n", checkbox(m.verbose))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Download path: %s | Concurrency: %d",
		m.settings.Download.Path, m.settings.Download.Concurrency)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewInitializing() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Fetching album page..."))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	if m.album != nil {
		b.WriteString(albumStyle.Render(fmt.Sprintf("♪ %s - %s (%d tracks)", m.album.Artist, m.album.Title, len(m.album.Tracks))))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(m.album.Path))
		b.WriteString("\n\n")
	}

	var percent float64
	if m.filesTotal > 0 {
		percent = float64(m.filesSettled) / float64(m.filesTotal)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Files: %d/%d | Downloaded: %.2f MB",
		m.filesSettled,
		m.filesTotal,
		float64(m.receivedBytes)/1024/1024,
	)))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var downloaded, skipped int
	if m.result != nil {
		for _, out := range m.result.Tracks {
			switch {
			case out.Kind == download.KindDownloaded:
				downloaded++
			case out.Skipped():
				skipped++
			}
		}
	}

	return boxStyle.Render(fmt.Sprintf(
		"✨ Download Complete!\n\n"+
			"Downloaded: %d\n"+
			"Skipped: %d\n"+
			"Size: %.2f MB",
		downloaded,
		skipped,
		float64(m.receivedBytes)/1024/1024,
	)) + "\n\n" + m.renderLogs()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		fmt.Fprintf(&b, "  %s", m.err.Error())
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, entry := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch entry.Level {
		case LevelError:
			style = errorStyle
			prefix = "✗"
		case LevelWarning:
			style = warningStyle
			prefix = "!"
		case LevelSuccess:
			style = successStyle
			prefix = "✓"
		case LevelInfo:
			style = infoStyle
			prefix = "›"
		case LevelVerbose:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + entry.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • ctrl+p: playlist • ctrl+t: tags • ctrl+l: verbose • esc: quit"
	case StateInitializing, StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new download • q: quit"
	}
	return ""
}

// initializeDownload fetches the album page and creates the manager.
func (m Model) initializeDownload() tea.Cmd {
	ctx := m.ctx
	albumURL := strings.TrimSpace(m.textInput.Value())

	settings := *m.settings
	settings.Playlist.Enabled = m.playlist
	settings.Tags.Enabled = m.tags

	return func() tea.Msg {
		events := make(chan tea.Msg, 64)
		send := func(msg tea.Msg) {
			select {
			case events <- msg:
			case <-ctx.Done():
			}
		}

		manager := download.NewManager(&settings, m.logger, download.Hooks{
			OnWaveStart: func(wave int, tasks []model.Task) {
				send(WaveMsg{Wave: wave, Tasks: len(tasks)})
			},
			OnOutcome: func(index int, out download.Outcome) {
				send(OutcomeMsg{Index: index, Outcome: out})
			},
		})

		if _, err := manager.Initialize(ctx, albumURL, nil); err != nil {
			return InitDoneMsg{Err: err}
		}

		return InitDoneMsg{
			Manager: manager,
			Events:  events,
		}
	}
}

// startDownload runs the download in the background.
func (m Model) startDownload() tea.Cmd {
	ctx := m.ctx
	manager := m.manager
	events := m.events

	return func() tea.Msg {
		res, err := manager.Download(ctx)
		// Hooks are not called once Download returned.
		close(events)
		return DownloadDoneMsg{Result: res, Err: err}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings, logger zerolog.Logger) error {
	p := tea.NewProgram(NewModel(settings, logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
