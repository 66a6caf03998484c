package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"umchat/pkg/bus"
	"umchat/pkg/config"
	"umchat/pkg/dialog"
	"umchat/pkg/logger"
	"umchat/pkg/skill"
	"umchat/pkg/speech"
)

var (
	userStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	botStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	chipStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Border(lipgloss.RoundedBorder()).Padding(0, 1)
	cardBoxStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
)

func chatCmd() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Skill.Endpoint == "" {
		fmt.Println("No skill endpoint configured.")
		fmt.Println("Set skill.endpoint in the config file or UMCHAT_SKILL_ENDPOINT,")
		fmt.Println("or run `umchat serve` and point the endpoint at it.")
		os.Exit(1)
	}

	session, err := newSession(cfg)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := bus.New()
	defer b.Close()

	recognizer, synth := speechBoundary(cfg)
	recognizer.OnInterimTranscript(func(text string) {
		b.PublishUpdate(bus.Update{Kind: bus.UpdateInterim, Transcript: text})
	})

	go runSendPump(ctx, session, b, synth)

	model := newChatModel(cfg, session, b, recognizer, synth)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func speechBoundary(cfg *config.Config) (speech.Recognizer, speech.Synthesizer) {
	if cfg.Speech.Enabled {
		bridge := speech.NewBridge(cfg.Speech.BridgeURL)
		return bridge, bridge
	}
	return speech.Noop{}, speech.Noop{}
}

// runSendPump consumes utterances from the bus, drives the session, and
// publishes fresh entry snapshots back.
func runSendPump(ctx context.Context, session *dialog.Session, b *bus.Bus, synth speech.Synthesizer) {
	for {
		u, ok := b.ConsumeUtterance(ctx)
		if !ok {
			return
		}
		if strings.TrimSpace(u.Text) == "" {
			// Voice captures resolve empty on stop; nothing to send.
			continue
		}

		entries, err := session.Send(ctx, u.Text)
		if err != nil {
			logger.ErrorCF("chat", "Send rejected", map[string]interface{}{
				logger.FieldError: err.Error(),
			})
			continue
		}
		b.PublishUpdate(bus.Update{Kind: bus.UpdateEntries, Entries: entries})

		if u.Source == bus.SourceVoice && len(entries) > 0 {
			last := entries[len(entries)-1]
			if last.IsBot && last.CardType != skill.CardTypeError {
				if speak := skill.FilterSpeakable(last.Text); speak != "" {
					_ = synth.SpeakText(speak)
				}
			}
		}
	}
}

type chatModel struct {
	cfg        *config.Config
	session    *dialog.Session
	bus        *bus.Bus
	recognizer speech.Recognizer
	synth      speech.Synthesizer

	viewport viewport.Model
	input    textinput.Model

	entries   []dialog.DisplayEntry
	interim   string
	listening bool
	waiting   bool
	ready     bool
	width     int
	height    int
}

func newChatModel(cfg *config.Config, session *dialog.Session, b *bus.Bus, recognizer speech.Recognizer, synth speech.Synthesizer) *chatModel {
	input := textinput.New()
	input.Placeholder = "Введите сообщение..."
	input.Focus()

	return &chatModel{
		cfg:        cfg,
		session:    session,
		bus:        b,
		recognizer: recognizer,
		synth:      synth,
		input:      input,
		entries:    session.Entries(),
	}
}

type updateMsg bus.Update

func (m *chatModel) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		u, ok := <-m.bus.Updates()
		if !ok {
			return nil
		}
		return updateMsg(u)
	}
}

func (m *chatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForUpdate())
}

func (m *chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		inputHeight := 3
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-inputHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - inputHeight
		}
		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.synth.CancelSpeech()
			return m, tea.Quit
		case "ctrl+l":
			m.session.Clear()
			m.entries = nil
			m.refreshViewport()
			return m, nil
		case "ctrl+v":
			return m, m.toggleListening()
		case "enter":
			return m, m.submit()
		default:
			if cmd := m.quickReplyShortcut(msg.String()); cmd != nil {
				return m, cmd
			}
		}

	case updateMsg:
		switch msg.Kind {
		case bus.UpdateEntries:
			m.entries = msg.Entries
			m.waiting = false
			m.listening = false
			m.interim = ""
			m.refreshViewport()
			m.viewport.GotoBottom()
		case bus.UpdateInterim:
			m.interim = msg.Transcript
		}
		return m, m.waitForUpdate()
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *chatModel) submit() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return nil
	}
	m.input.Reset()
	m.waiting = true
	m.bus.PublishUtterance(bus.Utterance{Text: text, Source: bus.SourceTyped})
	return nil
}

// quickReplyShortcut resends the numbered chip when the input is empty.
func (m *chatModel) quickReplyShortcut(key string) tea.Cmd {
	if m.input.Value() != "" {
		return nil
	}
	idx, err := strconv.Atoi(key)
	if err != nil || idx < 1 {
		return nil
	}
	replies := m.lastReplies()
	if idx > len(replies) {
		return nil
	}
	btn := replies[idx-1]
	if btn.URL != "" {
		// Navigation buttons only show their target in a terminal.
		m.interim = btn.URL
		return nil
	}
	m.waiting = true
	m.bus.PublishUtterance(bus.Utterance{Text: btn.Title, Source: bus.SourceChip})
	return nil
}

func (m *chatModel) toggleListening() tea.Cmd {
	if m.listening {
		m.listening = false
		m.recognizer.StopListening()
		return nil
	}
	m.listening = true
	return func() tea.Msg {
		transcript, err := m.recognizer.StartListening(context.Background())
		if err != nil {
			logger.WarnCF("chat", "Voice capture failed", map[string]interface{}{
				logger.FieldError: err.Error(),
			})
			return nil
		}
		if transcript != "" {
			m.bus.PublishUtterance(bus.Utterance{Text: transcript, Source: bus.SourceVoice})
		}
		return nil
	}
}

// lastReplies returns the quick replies of the most recent bot entry;
// chips are only ever offered for the trailing exchange.
func (m *chatModel) lastReplies() []skill.CardButton {
	if len(m.entries) == 0 {
		return nil
	}
	last := m.entries[len(m.entries)-1]
	if !last.IsBot {
		return nil
	}
	return last.Buttons
}

func (m *chatModel) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderEntries())
}

func (m *chatModel) renderEntries() string {
	var sb strings.Builder
	for _, entry := range m.entries {
		sb.WriteString(renderEntry(entry))
		sb.WriteString("\n")
	}
	if replies := m.lastReplies(); len(replies) > 0 {
		var chips []string
		for i, btn := range replies {
			chips = append(chips, chipStyle.Render(fmt.Sprintf("%d %s", i+1, btn.Title)))
		}
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, chips...))
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderEntry(entry dialog.DisplayEntry) string {
	stamp := dimStyle.Render(dialog.FormatDate(entry.Date))

	if !entry.IsBot {
		return fmt.Sprintf("%s %s %s", stamp, userStyle.Render("Вы:"), entry.Text)
	}

	switch {
	case entry.CardType == skill.CardTypeError:
		return fmt.Sprintf("%s %s", stamp, errorStyle.Render(entry.Text))
	case entry.CardType == skill.CardTypeCard && entry.Image != nil:
		return fmt.Sprintf("%s %s %s\n%s", stamp, botStyle.Render("Бот:"), entry.Text, renderImage(*entry.Image))
	case entry.CardType == skill.CardTypeList && entry.List != nil:
		return fmt.Sprintf("%s %s %s\n%s", stamp, botStyle.Render("Бот:"), entry.Text, renderList(entry))
	default:
		return fmt.Sprintf("%s %s %s", stamp, botStyle.Render("Бот:"), entry.Text)
	}
}

func renderImage(img skill.ImagePayload) string {
	var lines []string
	if img.Title != "" {
		lines = append(lines, img.Title)
	}
	if img.Description != "" {
		lines = append(lines, img.Description)
	}
	if img.Src != "" {
		lines = append(lines, dimStyle.Render(img.Src))
	}
	if img.Button != nil {
		lines = append(lines, chipStyle.Render(img.Button.Title))
	}
	return cardBoxStyle.Render(strings.Join(lines, "\n"))
}

func renderList(entry dialog.DisplayEntry) string {
	list := entry.List
	var lines []string
	if list.Title != "" {
		lines = append(lines, list.Title)
	}
	for _, img := range list.Images {
		line := "• " + img.Title
		if img.Description != "" {
			line += ": " + img.Description
		}
		lines = append(lines, line)
	}
	if list.Footer != nil {
		lines = append(lines, dimStyle.Render(list.Footer.Text))
	}
	return cardBoxStyle.Render(strings.Join(lines, "\n"))
}

func (m *chatModel) View() string {
	if !m.ready {
		return "Загрузка..."
	}

	status := ""
	if m.listening {
		status = " 🎤"
		if m.interim != "" {
			status += " " + dimStyle.Render(m.interim)
		}
	} else if m.waiting {
		status = " " + dimStyle.Render("...")
	} else if m.interim != "" {
		status = " " + dimStyle.Render(m.interim)
	}

	return fmt.Sprintf("%s\n%s%s\n%s",
		m.viewport.View(),
		m.input.View(),
		status,
		dimStyle.Render("enter: отправить · 1-9: кнопки · ctrl+v: голос · ctrl+l: очистить · esc: выход"))
}
