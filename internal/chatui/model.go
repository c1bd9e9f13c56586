// Package chatui is the terminal front end for the chat relay.
package chatui

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"chatbot-backend/internal/client"
	"chatbot-backend/internal/config"
	"chatbot-backend/internal/models"
)

const (
	errEmptyInput     = "Please enter a question"
	errFetch          = "An error occurred while fetching data."
	errStreamResponse = "An error occurred while streaming response."
	errStreamConnect  = "Connection to streaming API failed."

	// settleDelay keeps the live buffer on screen briefly after the reply is committed.
	settleDelay = 100 * time.Millisecond
)

var randomQuestions = []string{
	"What is the capital of France?",
	"How does photosynthesis work?",
	"What is the meaning of life?",
	"Can you explain quantum mechanics?",
}

var providerNames = []string{config.ProviderGoogle, config.ProviderOllama}

// Chatter is the relay API the UI drives. *client.Client satisfies it.
type Chatter interface {
	Chat(ctx context.Context, req models.ChatRequest) (string, error)
	Stream(ctx context.Context, req models.ChatRequest, onChunk func(string)) error
}

type (
	replyMsg struct {
		message string
		text    string
		err     error
	}
	chunkMsg struct {
		stream int
		text   string
	}
	streamEndMsg struct {
		stream int
		err    error
	}
	settleMsg struct{ stream int }
)

type streamEvent struct {
	text string
	end  bool
	err  error
}

// Model is the bubbletea model for one chat session.
type Model struct {
	chat  Chatter
	input textinput.Model
	pick  func(n int) int

	history    []models.HistoryEntry
	provider   string
	err        string
	streaming  bool
	streamText strings.Builder
	pending    bool

	streamID int
	events   <-chan streamEvent
	cancel   context.CancelFunc
	width    int
}

// New returns a model that sends requests through chat to provider.
func New(chat Chatter, provider string) *Model {
	ti := textinput.New()
	ti.Placeholder = "Type your question here..."
	ti.Prompt = "> "
	ti.CharLimit = 4000
	ti.Focus()

	if provider == "" {
		provider = config.ProviderGoogle
	}

	return &Model{
		chat:     chat,
		input:    ti,
		pick:     rand.IntN,
		provider: provider,
	}
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-4, 10)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case replyMsg:
		m.pending = false
		if msg.err != nil {
			m.err = errFetch
			return m, nil
		}
		m.history = append(m.history,
			entry(models.RoleUser, msg.message),
			entry(models.RoleModel, msg.text),
		)
		m.input.SetValue("")
		return m, nil

	case chunkMsg:
		if msg.stream != m.streamID || !m.streaming {
			return m, nil
		}
		m.streamText.WriteString(msg.text)
		return m, waitForEvent(m.streamID, m.events)

	case streamEndMsg:
		if msg.stream != m.streamID || !m.streaming {
			return m, nil
		}
		m.stopStream()
		if msg.err != nil {
			m.streaming = false
			if errors.Is(msg.err, client.ErrStreamFailed) {
				m.err = errStreamResponse
			} else {
				m.err = errStreamConnect
			}
			m.input.Focus()
			return m, nil
		}
		m.history = append(m.history, entry(models.RoleModel, m.streamText.String()))
		id := m.streamID
		return m, tea.Tick(settleDelay, func(time.Time) tea.Msg { return settleMsg{stream: id} })

	case settleMsg:
		if msg.stream != m.streamID {
			return m, nil
		}
		m.streaming = false
		m.streamText.Reset()
		m.input.Focus()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.stopStream()
		return m, tea.Quit
	case "enter":
		return m, m.submit()
	case "ctrl+s":
		return m, m.startStream()
	case "ctrl+l":
		if !m.streaming {
			m.clear()
		}
		return m, nil
	case "ctrl+r":
		if !m.streaming {
			m.input.SetValue(randomQuestions[m.pick(len(randomQuestions))])
			m.input.CursorEnd()
			m.err = ""
		}
		return m, nil
	case "tab":
		if !m.streaming {
			m.toggleProvider()
		}
		return m, nil
	}

	if m.streaming {
		return m, nil
	}
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.err = ""
	}
	return m, cmd
}

func (m *Model) submit() tea.Cmd {
	if m.streaming || m.pending {
		return nil
	}
	value := m.input.Value()
	if strings.TrimSpace(value) == "" {
		m.err = errEmptyInput
		return nil
	}
	m.err = ""
	m.pending = true

	chat := m.chat
	req := m.request(value)
	return func() tea.Msg {
		text, err := chat.Chat(context.Background(), req)
		return replyMsg{message: req.Message, text: text, err: err}
	}
}

func (m *Model) startStream() tea.Cmd {
	if m.streaming || m.pending {
		return nil
	}
	value := m.input.Value()
	if strings.TrimSpace(value) == "" {
		m.err = errEmptyInput
		return nil
	}

	req := m.request(value)
	m.err = ""
	m.history = append(m.history, entry(models.RoleUser, value))
	m.streaming = true
	m.streamText.Reset()
	m.input.SetValue("")
	m.input.Blur()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.streamID++
	m.events = runStream(ctx, m.chat, req)
	return waitForEvent(m.streamID, m.events)
}

func (m *Model) clear() {
	m.stopStream()
	m.history = nil
	m.input.SetValue("")
	m.err = ""
	m.streamText.Reset()
	m.streaming = false
	m.streamID++
}

func (m *Model) toggleProvider() {
	for i, name := range providerNames {
		if name == m.provider {
			m.provider = providerNames[(i+1)%len(providerNames)]
			return
		}
	}
	m.provider = providerNames[0]
}

func (m *Model) stopStream() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// request snapshots the transcript so later appends cannot alias it.
func (m *Model) request(message string) models.ChatRequest {
	history := make([]models.HistoryEntry, len(m.history))
	copy(history, m.history)
	return models.ChatRequest{Message: message, History: history, Provider: m.provider}
}

func entry(role, text string) models.HistoryEntry {
	return models.HistoryEntry{Role: role, Parts: []models.Part{{Text: text}}}
}

// runStream drives chat.Stream on its own goroutine. The channel closes
// after exactly one end event.
func runStream(ctx context.Context, chat Chatter, req models.ChatRequest) <-chan streamEvent {
	events := make(chan streamEvent, 16)
	go func() {
		defer close(events)
		err := chat.Stream(ctx, req, func(text string) {
			select {
			case events <- streamEvent{text: text}:
			case <-ctx.Done():
			}
		})
		select {
		case events <- streamEvent{end: true, err: err}:
		case <-ctx.Done():
		}
	}()
	return events
}

func waitForEvent(stream int, events <-chan streamEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok || ev.end {
			return streamEndMsg{stream: stream, err: ev.err}
		}
		return chunkMsg{stream: stream, text: ev.text}
	}
}
