// Package ui is the bubbletea shell of the terminal: a chat viewport, an
// input line, and the wiring that runs network and voice work off the UI
// goroutine. Workers never touch model state; everything comes back as a
// tea.Msg.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"alexterm/internal/api"
	"alexterm/internal/poller"
	"alexterm/internal/store"
	"alexterm/internal/voice"
)

const (
	startupRetries    = 5
	startupRetryDelay = 2 * time.Second

	shutdownWait = 2 * time.Second

	greeting = "Welcome back"
)

var banner = strings.TrimLeft(`
   _   _    ___ _  __
  /_\ | |  | __\ \/ /
 / _ \| |__| _| >  <
/_/ \_\____|___/_/\_\
`, "\n")

// Deps carries everything the shell needs from main.
type Deps struct {
	Client       *api.Client
	Store        *store.Store
	Voice        *voice.Engine
	PollInterval time.Duration
}

type (
	connectedMsg     struct{ snap *api.HealthSnapshot }
	connectFailedMsg struct{}
	statusResultMsg  struct {
		snap *api.HealthSnapshot
		ok   bool
	}
	responseMsg   struct{ text string }
	sendErrMsg    struct{ text string }
	autonomousMsg struct{ msg api.Message }
	transcriptMsg struct{ text string }
	micErrMsg     struct{ text string }
	ttsErrMsg     struct{ text string }
	btSinkMsg     struct{ sink string }
	shutdownMsg   struct{}
)

type Model struct {
	deps  Deps
	theme theme

	viewport viewport.Model
	input    textinput.Model
	spin     spinner.Model

	lines []string

	online    bool
	voiceOn   bool
	sending   bool
	recording bool
	quitting  bool
	ready     bool

	pollCancel context.CancelFunc
	pollDone   <-chan struct{}
	pollCh     <-chan api.Message
}

func New(deps Deps) Model {
	in := textinput.New()
	in.Placeholder = "Type a message to ALEX..."
	in.CharLimit = 0
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		deps:    deps,
		theme:   newTheme(),
		input:   in,
		spin:    sp,
		voiceOn: deps.Store.VoiceEnabled(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spin.Tick,
		m.connectCmd(),
	)
}

// connectCmd is the startup health check: several attempts before giving up.
func (m Model) connectCmd() tea.Cmd {
	client := m.deps.Client
	return func() tea.Msg {
		snap, ok := client.HealthWithRetry(context.Background(), startupRetries, startupRetryDelay)
		if !ok {
			return connectFailedMsg{}
		}
		return connectedMsg{snap: snap}
	}
}

func (m Model) statusCmd() tea.Cmd {
	client := m.deps.Client
	return func() tea.Msg {
		snap, ok := client.Health(context.Background())
		return statusResultMsg{snap: snap, ok: ok}
	}
}

func (m Model) sendCmd(text string) tea.Cmd {
	client := m.deps.Client
	return func() tea.Msg {
		resp, errStr := client.SendMessage(context.Background(), text)
		if errStr != "" {
			return sendErrMsg{text: errStr}
		}
		return responseMsg{text: resp}
	}
}

// speakCmd runs TTS in the background. A busy engine means another reply is
// still being voiced; that is silently skipped.
func (m Model) speakCmd(text string) tea.Cmd {
	engine := m.deps.Voice
	return func() tea.Msg {
		err := engine.Speak(context.Background(), text)
		if err == nil || errors.Is(err, voice.ErrBusy) {
			return nil
		}
		return ttsErrMsg{text: err.Error()}
	}
}

func (m Model) listenCmd() tea.Cmd {
	engine := m.deps.Voice
	return func() tea.Msg {
		text, err := engine.Listen(context.Background())
		if err != nil {
			if errors.Is(err, voice.ErrBusy) {
				return nil
			}
			return micErrMsg{text: err.Error()}
		}
		return transcriptMsg{text: text}
	}
}

func (m Model) detectSinkCmd() tea.Cmd {
	return func() tea.Msg {
		return btSinkMsg{sink: voice.DetectBluetoothSink(context.Background())}
	}
}

// waitForAutonomous re-arms itself after every delivered message.
func waitForAutonomous(ch <-chan api.Message) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return autonomousMsg{msg: msg}
	}
}

// shutdownCmd joins the poller and any voice workers with bounded waits,
// then quits. Nothing is forcibly terminated.
func (m Model) shutdownCmd() tea.Cmd {
	st := m.deps.Store
	engine := m.deps.Voice
	cancel := m.pollCancel
	done := m.pollDone
	return func() tea.Msg {
		st.RemoveMarker()
		if cancel != nil {
			cancel()
			select {
			case <-done:
			case <-time.After(shutdownWait):
			}
		}
		engine.Wait(shutdownWait)
		return shutdownMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			if m.quitting {
				return m, nil
			}
			m.quitting = true
			return m, m.shutdownCmd()
		case tea.KeyCtrlR:
			if cmd := m.startRecording(); cmd != nil {
				return m, cmd
			}
			return m, nil
		case tea.KeyEnter:
			if cmd := m.submit(); cmd != nil {
				return m, cmd
			}
			return m, nil
		}

	case shutdownMsg:
		return m, tea.Quit

	case connectedMsg:
		m.online = true
		m.appendSystem(fmt.Sprintf("Connected to ALEX (uptime: %s)", formatUptime(msg.snap.UptimeSeconds)))
		m.appendBanner()
		cmds = append(cmds, m.detectSinkCmd(), m.startPoller())
		if m.voiceOn {
			cmds = append(cmds, m.speakCmd(greeting))
		}

	case connectFailedMsg:
		m.online = false
		m.appendSystem("Failed to connect to ALEX. Is the service running?")
		m.appendSystem("Retry with /status or restart ALEX: sudo systemctl restart alex")

	case statusResultMsg:
		m.online = msg.ok
		if msg.ok {
			m.appendSystem(statusLine(msg.snap))
		} else {
			m.appendSystem("ALEX is offline")
		}

	case btSinkMsg:
		if msg.sink != "" {
			m.appendSystem("Bluetooth audio: " + msg.sink)
		} else {
			m.appendSystem("No Bluetooth speaker detected (using default audio)")
		}

	case responseMsg:
		m.sending = false
		m.appendAlex(msg.text)
		if m.voiceOn && msg.text != "" {
			cmds = append(cmds, m.speakCmd(msg.text))
		}

	case sendErrMsg:
		m.sending = false
		m.appendSystem("Error: " + msg.text)

	case autonomousMsg:
		m.appendAlex(fmt.Sprintf("[%s] %s", msg.msg.Title, msg.msg.Content()))
		cmds = append(cmds, waitForAutonomous(m.pollCh))
		if m.voiceOn {
			cmds = append(cmds, m.speakCmd(msg.msg.Content()))
		}

	case transcriptMsg:
		m.recording = false
		m.input.SetValue(msg.text)
		if cmd := m.submit(); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case micErrMsg:
		m.recording = false
		m.appendSystem("Mic: " + msg.text)

	case ttsErrMsg:
		m.appendSystem("TTS error: " + msg.text)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit handles the enter key: slash commands locally, everything else to
// ALEX. Input stays blocked while a send is in flight.
func (m *Model) submit() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.sending {
		return nil
	}
	m.input.SetValue("")

	if strings.HasPrefix(text, "/") {
		return m.handleSlash(text)
	}

	m.appendUser(text)
	m.sending = true
	return m.sendCmd(text)
}

func (m *Model) handleSlash(raw string) tea.Cmd {
	cmd := strings.ToLower(strings.Fields(raw)[0])

	switch cmd {
	case "/voice":
		m.voiceOn = !m.voiceOn
		m.deps.Store.SetVoiceEnabled(m.voiceOn)
		state := "OFF"
		if m.voiceOn {
			state = "ON"
		}
		m.appendSystem("Voice output " + state)
	case "/clear":
		m.lines = nil
		m.refreshViewport()
	case "/status":
		m.appendSystem("Checking ALEX status...")
		return m.statusCmd()
	default:
		m.appendSystem("Unknown command: " + cmd)
		m.appendSystem("Available: /voice, /clear, /status")
	}
	return nil
}

func (m *Model) startRecording() tea.Cmd {
	if m.recording || m.deps.Voice.Busy() {
		return nil
	}
	m.recording = true
	return m.listenCmd()
}

func (m *Model) startPoller() tea.Cmd {
	p := poller.New(m.deps.Client, m.deps.Store, m.deps.PollInterval)
	ctx, cancel := context.WithCancel(context.Background())
	m.pollCancel = cancel
	m.pollDone = p.Done()
	m.pollCh = p.Messages()
	go p.Run(ctx)
	return waitForAutonomous(m.pollCh)
}

// --- chat history ---

func (m *Model) appendLine(line string) {
	m.lines = append(m.lines, line)
	m.refreshViewport()
}

func (m *Model) appendUser(text string) {
	m.appendLine(m.theme.user.Render("You: ") + text)
}

func (m *Model) appendAlex(text string) {
	m.appendLine(m.theme.alex.Render("ALEX: " + text))
}

func (m *Model) appendSystem(text string) {
	m.appendLine(m.theme.system.Render(text))
}

func (m *Model) appendBanner() {
	m.appendLine(m.theme.banner.Render(banner))
	m.appendSystem("ALEX Terminal v1.0 | Type a message or use /voice, /clear, /status")
}

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	width := m.viewport.Width
	wrapped := make([]string, len(m.lines))
	for i, line := range m.lines {
		wrapped[i] = lipgloss.NewStyle().Width(width).Render(line)
	}
	m.viewport.SetContent(strings.Join(wrapped, "\n"))
	m.viewport.GotoBottom()
}

func (m *Model) resize(w, h int) {
	headerHeight := 1
	footerHeight := 4
	m.input.Width = w - 4

	if !m.ready {
		m.viewport = viewport.New(w, h-headerHeight-footerHeight)
		m.ready = true
	} else {
		m.viewport.Width = w
		m.viewport.Height = h - headerHeight - footerHeight
	}
	m.refreshViewport()
}

// --- rendering ---

func (m Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}
	if !m.ready {
		return "Starting ALEX Terminal..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderInput())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	status := m.theme.offline.Render("OFFLINE")
	if m.online {
		status = m.theme.online.Render("ONLINE")
	}
	title := m.theme.title.Render("ALEX - Global Economist")

	gap := m.viewport.Width - lipgloss.Width(title) - lipgloss.Width(status)
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + status
}

func (m Model) renderInput() string {
	if m.sending {
		return m.theme.input.Render(m.spin.View() + " ALEX is thinking...")
	}
	if m.recording {
		return m.theme.input.Render(m.spin.View() + " Recording...")
	}
	return m.theme.input.Render(m.input.View())
}

func (m Model) renderFooter() string {
	voiceState := "voice off"
	if m.voiceOn {
		voiceState = "voice on"
	}
	return m.theme.help.Render(
		"enter send • ctrl+r mic • /voice /clear /status • ctrl+c quit • " + voiceState,
	)
}

// --- status formatting ---

func formatUptime(secs int64) string {
	return fmt.Sprintf("%dh %dm", secs/3600, (secs%3600)/60)
}

func statusLine(snap *api.HealthSnapshot) string {
	return fmt.Sprintf(
		"ALEX Status: OK | Uptime: %s | RAM: %.0fMB | Telegram: %s | Redis: %s",
		formatUptime(snap.UptimeSeconds), snap.Memory.RSSMB, snap.Telegram, snap.Redis,
	)
}
