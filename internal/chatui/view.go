package chatui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"chatbot-backend/internal/config"
	"chatbot-backend/internal/models"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	modelStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	activeStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	indicatorStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("8"))
)

var providerLabels = map[string]string{
	config.ProviderGoogle: "Google Gemini",
	config.ProviderOllama: "Ollama",
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("AI Chat Assistant"))
	b.WriteString("\n")
	b.WriteString(m.providerLine())
	b.WriteString("\n\n")

	for _, e := range m.history {
		writeTurn(&b, e.Role, e.Text(), m.width)
	}
	if m.streaming && m.streamText.Len() > 0 && !m.committed() {
		writeTurn(&b, models.RoleModel, m.streamText.String(), m.width)
	}

	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.err != "" {
		b.WriteString(errorStyle.Render(m.err))
		b.WriteString("\n")
	}
	if m.streaming {
		b.WriteString(indicatorStyle.Render("Streaming from " + providerLabels[m.provider] + "..."))
		b.WriteString("\n")
	}

	b.WriteString(mutedStyle.Render("enter submit • ctrl+s stream • ctrl+r random • tab provider • ctrl+l clear • esc quit"))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) providerLine() string {
	parts := make([]string, 0, len(providerNames))
	for _, name := range providerNames {
		label := providerLabels[name]
		if name == m.provider {
			parts = append(parts, activeStyle.Render("(•) "+label))
		} else {
			parts = append(parts, mutedStyle.Render("( ) "+label))
		}
	}
	return strings.Join(parts, "  ")
}

// committed reports whether the streamed reply is already the last transcript turn.
func (m *Model) committed() bool {
	n := len(m.history)
	return n > 0 && m.history[n-1].Role == models.RoleModel
}

func writeTurn(b *strings.Builder, role, text string, width int) {
	header := userStyle.Render("You:")
	if role != models.RoleUser {
		header = modelStyle.Render("AI Assistant:")
	}
	body := lipgloss.NewStyle().PaddingLeft(2)
	if width > 4 {
		body = body.Width(width - 2)
	}
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(body.Render(text))
	b.WriteString("\n\n")
}
